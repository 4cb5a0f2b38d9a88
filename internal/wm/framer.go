package wm

import "github.com/BurntSushi/xgb/xproto"

// framer abstracts the X requests the layout tree issues for its leaves.
// The production implementation talks to the server; tests substitute a
// recording fake.
type framer interface {
	// Frame wraps a client window in a freshly created frame window.
	Frame(win xproto.Window) (FramedWin, error)

	// Configure positions the frame at rect and resizes the client to the
	// frame's interior, picking the border color from the focus state.
	Configure(fw FramedWin, rect Rect, focused xproto.Window) error

	// Map maps the client, then the frame.
	Map(fw FramedWin) error

	// Unmap unmaps the frame, then the client.
	Unmap(fw FramedWin) error

	// Unframe surrenders the client back to the root window and destroys
	// the frame.
	Unframe(fw FramedWin) error

	// KillClient closes the client, via WM_DELETE_WINDOW when advertised.
	KillClient(fw FramedWin) error

	// Focus directs keyboard input to the client window.
	Focus(win xproto.Window) error

	// RootGeometry returns the root window's geometry.
	RootGeometry() (Rect, error)
}
