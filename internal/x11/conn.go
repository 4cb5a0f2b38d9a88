package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// Atoms holds the atoms the window manager interns at startup.
type Atoms struct {
	WMProtocols    xproto.Atom
	WMDeleteWindow xproto.Atom
}

// Conn wraps the X connection together with the default screen and the
// interned atoms. It is owned exclusively by the event loop goroutine.
type Conn struct {
	X      *xgb.Conn
	Screen *xproto.ScreenInfo
	Atoms  Atoms
}

// Connect establishes the X connection and interns the ICCCM atoms.
func Connect() (*Conn, error) {
	x, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	setup := xproto.Setup(x)
	if setup == nil || len(setup.Roots) == 0 {
		x.Close()
		return nil, fmt.Errorf("could not parse X setup info")
	}
	c := &Conn{
		X:      x,
		Screen: setup.DefaultScreen(x),
	}

	if c.Atoms.WMProtocols, err = c.Atom("WM_PROTOCOLS"); err != nil {
		x.Close()
		return nil, err
	}
	if c.Atoms.WMDeleteWindow, err = c.Atom("WM_DELETE_WINDOW"); err != nil {
		x.Close()
		return nil, err
	}

	return c, nil
}

// Root returns the root window of the default screen.
func (c *Conn) Root() xproto.Window {
	return c.Screen.Root
}

// Close closes the X connection.
func (c *Conn) Close() {
	c.X.Close()
}

// Atom interns an atom by name.
func (c *Conn) Atom(name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(c.X, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to intern atom %q: %w", name, err)
	}
	return reply.Atom, nil
}

// WindowAtoms reads a window property as a list of atoms.
func (c *Conn) WindowAtoms(win xproto.Window, prop xproto.Atom) ([]xproto.Atom, error) {
	reply, err := xproto.GetProperty(
		c.X,
		false,
		win,
		prop,
		xproto.GetPropertyTypeAny,
		0,
		64,
	).Reply()
	if err != nil {
		return nil, err
	}
	return DecodeAtoms(reply.Value), nil
}

// DecodeAtoms decodes a property value holding 32-bit atoms.
func DecodeAtoms(value []byte) []xproto.Atom {
	atoms := make([]xproto.Atom, 0, len(value)/4)
	for v := value; len(v) >= 4; v = v[4:] {
		atoms = append(atoms, xproto.Atom(
			uint32(v[0])|uint32(v[1])<<8|uint32(v[2])<<16|uint32(v[3])<<24))
	}
	return atoms
}
