package wm

// Snapshot is a point-in-time copy of the layout tree, safe to serialize
// outside the event loop goroutine.
type Snapshot struct {
	Focused uint32        `json:"focused,omitempty"`
	Clients int           `json:"clients"`
	Root    *SnapshotNode `json:"root,omitempty"`
}

// SnapshotNode mirrors one layout node.
type SnapshotNode struct {
	Kind     string          `json:"kind"`
	Rect     Rect            `json:"rect"`
	Axis     string          `json:"axis,omitempty"`
	Client   uint32          `json:"client,omitempty"`
	Frame    uint32          `json:"frame,omitempty"`
	Focused  bool            `json:"focused,omitempty"`
	Children []*SnapshotNode `json:"children,omitempty"`
}

// Snapshot copies the tree structure. Must be called from the loop goroutine.
func (t *Tree) Snapshot() Snapshot {
	snap := Snapshot{
		Focused: uint32(t.focused),
		Clients: len(t.clients),
	}
	if t.hasRoot {
		snap.Root = t.snapshotNode(t.root)
	}
	return snap
}

func (t *Tree) snapshotNode(id NodeId) *SnapshotNode {
	node := t.nodes.get(id)
	if node == nil {
		return nil
	}
	switch b := node.body.(type) {
	case *leaf:
		return &SnapshotNode{
			Kind:    "leaf",
			Rect:    node.dims,
			Client:  uint32(b.framed.Client),
			Frame:   uint32(b.framed.Frame),
			Focused: b.framed.Client == t.focused,
		}
	case *pane:
		sn := &SnapshotNode{
			Kind: "pane",
			Rect: node.dims,
			Axis: b.axis.String(),
		}
		for _, child := range b.children {
			if c := t.snapshotNode(child); c != nil {
				sn.Children = append(sn.Children, c)
			}
		}
		return sn
	}
	return nil
}

// Leaves flattens a snapshot into its leaf nodes.
func (s Snapshot) Leaves() []*SnapshotNode {
	var out []*SnapshotNode
	var walk func(n *SnapshotNode)
	walk = func(n *SnapshotNode) {
		if n == nil {
			return
		}
		if n.Kind == "leaf" {
			out = append(out, n)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(s.Root)
	return out
}
