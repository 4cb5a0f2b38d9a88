package wm

import (
	"fmt"
	"slices"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/hungl6844/xcrab/internal/config"
	"github.com/hungl6844/xcrab/internal/x11"
)

// Tree is the recursive screen partition. Nodes live in a generational arena;
// panes and leaves reference each other by NodeId only, so the root's
// self-parent is a sentinel rather than a cycle in memory.
//
// Tree is not safe for concurrent use: the event loop goroutine owns it and
// runs every mutation to completion before picking up the next event.
type Tree struct {
	nodes   arena
	clients map[xproto.Window]NodeId
	focused xproto.Window // 0 when no client is focused
	root    NodeId
	hasRoot bool

	frames framer
	cfg    *config.Config
}

// NewTree builds an empty tree driving the given framer.
func NewTree(frames framer, cfg *config.Config) *Tree {
	return &Tree{
		clients: make(map[xproto.Window]NodeId),
		frames:  frames,
		cfg:     cfg,
	}
}

// Focused returns the client window that should hold keyboard input, or 0.
func (t *Tree) Focused() xproto.Window {
	return t.focused
}

// HasClient reports whether win is a managed client window.
func (t *Tree) HasClient(win xproto.Window) bool {
	_, ok := t.clients[win]
	return ok
}

// ClientCount returns the number of managed clients.
func (t *Tree) ClientCount() int {
	return len(t.clients)
}

// AddClient tiles a new client to the right of the focused window.
func (t *Tree) AddClient(win xproto.Window) error {
	return t.AddClientDirection(win, Right)
}

// AddClientDirection frames win and inserts its leaf next to the focused one,
// reusing the nearest ancestor pane whose orientation matches the direction.
// When no such ancestor exists the focused leaf is wrapped in a new pane, so
// a cross-axis insert splits only the focused tile and never resizes windows
// outside it.
func (t *Tree) AddClientDirection(win xproto.Window, dir Direction) error {
	if t.HasClient(win) {
		return nil
	}
	if t.focused == 0 {
		return t.addRootClient(win)
	}

	fw, err := t.frames.Frame(win)
	if err != nil {
		// The client vanished before we could adopt it.
		return x11.MayNotExist(err)
	}

	axis := dir.Axis()
	focusedId, ok := t.clients[t.focused]
	if !ok {
		return fmt.Errorf("focused window %d: %w", t.focused, x11.ErrClientMissing)
	}

	// Walk up from the focused leaf to the nearest pane splitting along the
	// requested axis. Falling off the root means no such pane exists: wrap
	// the focused leaf itself (which is the root when the root is a leaf).
	pivot := focusedId
	anchorId := t.nodes.get(pivot).parent
	for {
		if anchorId == pivot {
			pivot = focusedId
			anchorId = t.insertPaneAbove(focusedId, axis)
			break
		}
		anchor := t.nodes.get(anchorId)
		if p, ok := anchor.body.(*pane); ok && p.axis == axis {
			break
		}
		pivot = anchorId
		anchorId = anchor.parent
	}

	return t.insertLeaf(anchorId, pivot, dir, win, fw)
}

// AddClientDirectionImmediate is the local variant: instead of searching
// upward it wraps the focused leaf in a fresh pane whenever its parent's
// orientation does not match, producing deeper but more predictable trees.
func (t *Tree) AddClientDirectionImmediate(win xproto.Window, dir Direction) error {
	if t.HasClient(win) {
		return nil
	}
	if t.focused == 0 {
		return t.addRootClient(win)
	}

	fw, err := t.frames.Frame(win)
	if err != nil {
		return x11.MayNotExist(err)
	}

	axis := dir.Axis()
	focusedId, ok := t.clients[t.focused]
	if !ok {
		return fmt.Errorf("focused window %d: %w", t.focused, x11.ErrClientMissing)
	}

	anchorId := t.nodes.get(focusedId).parent
	matches := false
	if anchorId != focusedId {
		if p, ok := t.nodes.get(anchorId).body.(*pane); ok && p.axis == axis {
			matches = true
		}
	}
	if !matches {
		anchorId = t.insertPaneAbove(focusedId, axis)
	}

	return t.insertLeaf(anchorId, focusedId, dir, win, fw)
}

// addRootClient creates the very first leaf, sized to the root geometry minus
// the outer gap.
func (t *Tree) addRootClient(win xproto.Window) error {
	fw, err := t.frames.Frame(win)
	if err != nil {
		return x11.MayNotExist(err)
	}

	rootGeom, err := t.frames.RootGeometry()
	if err != nil {
		return err
	}
	og := int(t.cfg.OuterGapSize)
	dims := Rect{
		X: satInt16(int(rootGeom.X) + og),
		Y: satInt16(int(rootGeom.Y) + og),
		W: satUint16(int(rootGeom.W) - 2*og),
		H: satUint16(int(rootGeom.H) - 2*og),
	}

	id := t.nodes.insert(&rectangle{body: &leaf{framed: fw}})
	t.nodes.get(id).parent = id
	t.root = id
	t.hasRoot = true
	t.clients[win] = id
	t.focused = win

	if err := t.recompute(id, dims); err != nil {
		return err
	}
	if err := t.frames.Map(fw); err != nil {
		return err
	}
	return t.frames.Focus(win)
}

// insertLeaf registers a freshly framed client as a new child of anchor,
// placed relative to pivot, then recomputes and maps it.
func (t *Tree) insertLeaf(anchorId, pivot NodeId, dir Direction, win xproto.Window, fw FramedWin) error {
	anchor := t.nodes.get(anchorId)
	p := anchor.mustPane()

	idx := slices.Index(p.children, pivot)
	if idx < 0 {
		panic("pivot is not a child of its anchor pane")
	}
	if dir.After() {
		idx++
	}

	leafId := t.nodes.insert(&rectangle{
		parent: anchorId,
		body:   &leaf{framed: fw},
	})
	p.children = slices.Insert(p.children, idx, leafId)
	t.clients[win] = leafId
	t.focused = win

	if err := t.recompute(anchorId, anchor.dims); err != nil {
		return err
	}
	if err := t.frames.Map(fw); err != nil {
		return err
	}
	return t.frames.Focus(win)
}

// insertPaneAbove splices a fresh pane between node and its parent; the node
// becomes the pane's only child. When node was the root, the pane takes over
// as the new self-parented root.
func (t *Tree) insertPaneAbove(nodeId NodeId, axis Axis) NodeId {
	node := t.nodes.get(nodeId)
	parentId := node.parent

	paneId := t.nodes.insert(&rectangle{
		dims: node.dims,
		body: &pane{children: []NodeId{nodeId}, axis: axis},
	})

	if parentId == nodeId {
		t.nodes.get(paneId).parent = paneId
		t.root = paneId
	} else {
		t.nodes.get(paneId).parent = parentId
		parent := t.nodes.get(parentId).mustPane()
		i := slices.Index(parent.children, nodeId)
		if i < 0 {
			panic("node missing from its parent's children")
		}
		parent.children[i] = paneId
	}
	node.parent = paneId
	return paneId
}

// RemoveClient drops win from the tree, unframes it, and hands focus to an
// arbitrary surviving client.
func (t *Tree) RemoveClient(win xproto.Window) error {
	id, ok := t.clients[win]
	if !ok {
		return fmt.Errorf("remove of window %d: %w", win, x11.ErrClientMissing)
	}

	node := t.nodes.get(id)
	lf := node.mustLeaf()
	if err := t.frames.Unframe(lf.framed); err != nil {
		return err
	}

	parentId := node.parent
	delete(t.clients, win)
	if parentId == id {
		// Removing the root leaf empties the tree.
		t.nodes.remove(id)
		t.hasRoot = false
		t.root = NodeId{}
	} else {
		parent := t.nodes.get(parentId).mustPane()
		i := slices.Index(parent.children, id)
		if i < 0 {
			panic("leaf missing from its parent's children")
		}
		parent.children = slices.Delete(parent.children, i, i+1)
		t.nodes.remove(id)
	}

	if t.focused == win {
		t.focused = 0
		for w := range t.clients {
			t.focused = w
			break
		}
		if t.focused != 0 {
			if err := t.frames.Focus(t.focused); err != nil {
				return err
			}
		}
	}

	if parentId != id {
		pnode := t.nodes.get(parentId)
		return t.recompute(parentId, pnode.dims)
	}
	return nil
}

// DestroyFocusedClient removes the focused client from the layout before
// killing it, so the kill's UnmapNotify arrives for an unknown window and is
// ignored.
func (t *Tree) DestroyFocusedClient() error {
	if t.focused == 0 {
		return nil
	}
	id, ok := t.clients[t.focused]
	if !ok {
		return fmt.Errorf("focused window %d: %w", t.focused, x11.ErrClientMissing)
	}
	fw := t.nodes.get(id).mustLeaf().framed

	if err := t.RemoveClient(fw.Client); err != nil {
		return err
	}
	return t.frames.KillClient(fw)
}

// SetFocus moves keyboard focus to win and recomputes its parent's subtree so
// border colors refresh.
func (t *Tree) SetFocus(win xproto.Window) error {
	id, ok := t.clients[win]
	if !ok {
		return fmt.Errorf("focus of window %d: %w", win, x11.ErrClientMissing)
	}
	t.focused = win
	if err := t.frames.Focus(win); err != nil {
		return err
	}

	parentId := t.nodes.get(id).parent
	pnode := t.nodes.get(parentId)
	return t.recompute(parentId, pnode.dims)
}

// UpdateFocused is SetFocus minus the recompute, for callers that already
// recomputed the affected subtree.
func (t *Tree) UpdateFocused(win xproto.Window) error {
	if !t.HasClient(win) {
		return fmt.Errorf("focus of window %d: %w", win, x11.ErrClientMissing)
	}
	t.focused = win
	return t.frames.Focus(win)
}

// FocusDirection moves focus to the nearest leaf in the given direction, or
// does nothing when no neighbour exists.
func (t *Tree) FocusDirection(dir Direction) error {
	if t.focused == 0 {
		return nil
	}
	axis := dir.Axis()
	pivot, ok := t.clients[t.focused]
	if !ok {
		return fmt.Errorf("focused window %d: %w", t.focused, x11.ErrClientMissing)
	}

	cur := t.nodes.get(pivot).parent
	for {
		if cur == pivot {
			return nil
		}
		node := t.nodes.get(cur)
		if p, ok := node.body.(*pane); ok && p.axis == axis {
			idx := slices.Index(p.children, pivot)
			if idx < 0 {
				panic("walk pivot missing from its parent's children")
			}
			step := -1
			if dir.After() {
				step = 1
			}
			if j := idx + step; j >= 0 && j < len(p.children) {
				target, ok := t.descendToLeaf(p.children[j], dir)
				if !ok {
					return nil
				}
				return t.SetFocus(t.nodes.get(target).mustLeaf().framed.Client)
			}
		}
		pivot = cur
		cur = node.parent
	}
}

// descendToLeaf walks down a subtree to the leaf nearest the origin of the
// movement: entering a matching-axis pane from the right picks its last
// child, from the left its first. Reports false when the walk dead-ends in an
// empty pane.
func (t *Tree) descendToLeaf(id NodeId, dir Direction) (NodeId, bool) {
	for {
		node := t.nodes.get(id)
		p, ok := node.body.(*pane)
		if !ok {
			return id, true
		}
		if len(p.children) == 0 {
			return NodeId{}, false
		}
		if p.axis == dir.Axis() && !dir.After() {
			id = p.children[len(p.children)-1]
		} else {
			id = p.children[0]
		}
	}
}
