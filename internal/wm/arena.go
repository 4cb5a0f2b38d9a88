package wm

// NodeId is a stable generational handle into the node arena. Handles held
// elsewhere survive unrelated removals: a slot reuse bumps the generation, so
// stale ids simply stop resolving.
type NodeId struct {
	index      uint32
	generation uint32
}

type slot struct {
	generation uint32
	rect       *rectangle
}

type arena struct {
	slots []slot
	free  []uint32
}

// insert stores a rectangle and returns its handle. Generations start at 1 so
// the zero NodeId never resolves.
func (a *arena) insert(r *rectangle) NodeId {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.generation++
		s.rect = r
		return NodeId{index: idx, generation: s.generation}
	}
	a.slots = append(a.slots, slot{generation: 1, rect: r})
	return NodeId{index: uint32(len(a.slots) - 1), generation: 1}
}

// get resolves a handle, returning nil for stale or never-issued ids.
func (a *arena) get(id NodeId) *rectangle {
	if int(id.index) >= len(a.slots) {
		return nil
	}
	s := &a.slots[id.index]
	if s.generation != id.generation || s.rect == nil {
		return nil
	}
	return s.rect
}

// remove frees a slot for reuse. Removing a stale id is a no-op.
func (a *arena) remove(id NodeId) {
	if a.get(id) == nil {
		return
	}
	a.slots[id.index].rect = nil
	a.free = append(a.free, id.index)
}

func (a *arena) len() int {
	return len(a.slots) - len(a.free)
}
