package wm

import "github.com/BurntSushi/xgb/xproto"

// FramedWin pairs a manager-created frame window with the client window
// reparented into it.
type FramedWin struct {
	Frame  xproto.Window
	Client xproto.Window
}

// rectangle is a layout tree node: either a pane splitting its area among
// ordered children, or a leaf holding one framed client. The root is its own
// parent.
type rectangle struct {
	parent NodeId
	dims   Rect
	body   body
}

type body interface {
	isBody()
}

type pane struct {
	children []NodeId
	axis     Axis
}

type leaf struct {
	framed FramedWin
}

func (*pane) isBody() {}
func (*leaf) isBody() {}

func (r *rectangle) mustPane() *pane {
	p, ok := r.body.(*pane)
	if !ok {
		panic("layout node is not a pane")
	}
	return p
}

func (r *rectangle) mustLeaf() *leaf {
	l, ok := r.body.(*leaf)
	if !ok {
		panic("layout node is not a leaf")
	}
	return l
}
