package wm

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/hungl6844/xcrab/internal/config"
	"github.com/hungl6844/xcrab/internal/x11"
)

// xFramer issues the framing protocol over a live X connection. Requests
// targeting the client window are filtered through MayNotExist since the
// application can destroy it at any moment; requests targeting our own frame
// windows are not.
type xFramer struct {
	conn *x11.Conn
	cfg  *config.Config
}

func newXFramer(conn *x11.Conn, cfg *config.Config) *xFramer {
	return &xFramer{conn: conn, cfg: cfg}
}

func (f *xFramer) Frame(win xproto.Window) (FramedWin, error) {
	x := f.conn.X

	geom, err := xproto.GetGeometry(x, xproto.Drawable(win)).Reply()
	if err != nil {
		return FramedWin{}, err
	}

	frame, err := xproto.NewWindowId(x)
	if err != nil {
		return FramedWin{}, fmt.Errorf("failed to allocate frame window id: %w", err)
	}

	screen := f.conn.Screen
	if err := xproto.CreateWindowChecked(
		x,
		screen.RootDepth,
		frame,
		screen.Root,
		geom.X, geom.Y,
		geom.Width, geom.Height,
		f.cfg.BorderSize,
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwBackPixel|xproto.CwBorderPixel|xproto.CwEventMask,
		[]uint32{
			0x000000,
			f.cfg.BorderColor,
			xproto.EventMaskSubstructureRedirect | xproto.EventMaskSubstructureNotify,
		},
	).Check(); err != nil {
		return FramedWin{}, fmt.Errorf("failed to create frame: %w", err)
	}

	// Focus-on-click needs button presses from the client.
	if err := xproto.ChangeWindowAttributesChecked(
		x, win, xproto.CwEventMask,
		[]uint32{xproto.EventMaskButtonPress},
	).Check(); err != nil {
		return FramedWin{}, err
	}

	// The save-set returns the client to the root if we exit uncleanly.
	if err := xproto.ChangeSaveSetChecked(x, xproto.SetModeInsert, win).Check(); err != nil {
		return FramedWin{}, err
	}

	if err := xproto.ReparentWindowChecked(x, win, frame, 0, 0).Check(); err != nil {
		return FramedWin{}, err
	}

	return FramedWin{Frame: frame, Client: win}, nil
}

func (f *xFramer) Configure(fw FramedWin, rect Rect, focused xproto.Window) error {
	x := f.conn.X

	color := f.cfg.BorderColor
	if fw.Client == focused {
		color = f.cfg.FocusedColor
	}
	if err := xproto.ChangeWindowAttributesChecked(
		x, fw.Frame, xproto.CwBorderPixel, []uint32{color},
	).Check(); err != nil {
		return err
	}

	innerW, innerH := innerSize(rect, f.cfg.BorderSize)

	const frameMask = xproto.ConfigWindowX | xproto.ConfigWindowY |
		xproto.ConfigWindowWidth | xproto.ConfigWindowHeight |
		xproto.ConfigWindowBorderWidth
	if err := xproto.ConfigureWindowChecked(x, fw.Frame, frameMask, []uint32{
		uint32(int32(rect.X)),
		uint32(int32(rect.Y)),
		uint32(innerW),
		uint32(innerH),
		uint32(f.cfg.BorderSize),
	}).Check(); err != nil {
		return err
	}

	// The client sits at (-1,-1) so the frame's border does not show up in
	// the client's own coordinate space.
	const clientMask = xproto.ConfigWindowX | xproto.ConfigWindowY |
		xproto.ConfigWindowWidth | xproto.ConfigWindowHeight
	return x11.MayNotExist(xproto.ConfigureWindowChecked(x, fw.Client, clientMask, []uint32{
		uint32(int32(-1)),
		uint32(int32(-1)),
		uint32(innerW),
		uint32(innerH),
	}).Check())
}

// innerSize shrinks a tile rectangle by the border on every side, saturating
// at 1x1.
func innerSize(rect Rect, border uint16) (uint16, uint16) {
	return satUint16(int(rect.W) - 2*int(border)), satUint16(int(rect.H) - 2*int(border))
}

func (f *xFramer) Map(fw FramedWin) error {
	x := f.conn.X
	if err := x11.MayNotExist(xproto.MapWindowChecked(x, fw.Client).Check()); err != nil {
		return err
	}
	return xproto.MapWindowChecked(x, fw.Frame).Check()
}

func (f *xFramer) Unmap(fw FramedWin) error {
	x := f.conn.X
	if err := xproto.UnmapWindowChecked(x, fw.Frame).Check(); err != nil {
		return err
	}
	return x11.MayNotExist(xproto.UnmapWindowChecked(x, fw.Client).Check())
}

func (f *xFramer) Unframe(fw FramedWin) error {
	x := f.conn.X
	if err := xproto.UnmapWindowChecked(x, fw.Frame).Check(); err != nil {
		return err
	}
	if err := x11.MayNotExist(xproto.UnmapWindowChecked(x, fw.Client).Check()); err != nil {
		return err
	}
	if err := x11.MayNotExist(xproto.ReparentWindowChecked(
		x, fw.Client, f.conn.Root(), 0, 0,
	).Check()); err != nil {
		return err
	}
	if err := x11.MayNotExist(xproto.ChangeSaveSetChecked(
		x, xproto.SetModeDelete, fw.Client,
	).Check()); err != nil {
		return err
	}
	return xproto.DestroyWindowChecked(x, fw.Frame).Check()
}

func (f *xFramer) KillClient(fw FramedWin) error {
	x := f.conn.X

	protocols, err := f.conn.WindowAtoms(fw.Client, f.conn.Atoms.WMProtocols)
	if err != nil {
		// The client is already gone, nothing left to kill.
		return x11.MayNotExist(err)
	}

	for _, atom := range protocols {
		if atom != f.conn.Atoms.WMDeleteWindow {
			continue
		}
		ev := xproto.ClientMessageEvent{
			Format: 32,
			Window: fw.Client,
			Type:   f.conn.Atoms.WMProtocols,
			Data: xproto.ClientMessageDataUnionData32New([]uint32{
				uint32(f.conn.Atoms.WMDeleteWindow),
				0, 0, 0, 0,
			}),
		}
		return x11.MayNotExist(xproto.SendEventChecked(
			x, false, fw.Client, xproto.EventMaskNoEvent, string(ev.Bytes()),
		).Check())
	}

	// No WM_DELETE_WINDOW support, destroy the hard way.
	return x11.MayNotExist(xproto.DestroyWindowChecked(x, fw.Client).Check())
}

func (f *xFramer) Focus(win xproto.Window) error {
	return x11.MayNotExist(xproto.SetInputFocusChecked(
		f.conn.X, xproto.InputFocusNone, win, xproto.TimeCurrentTime,
	).Check())
}

func (f *xFramer) RootGeometry() (Rect, error) {
	geom, err := xproto.GetGeometry(f.conn.X, xproto.Drawable(f.conn.Root())).Reply()
	if err != nil {
		return Rect{}, fmt.Errorf("failed to query root geometry: %w", err)
	}
	return Rect{X: geom.X, Y: geom.Y, W: geom.Width, H: geom.Height}, nil
}
