package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

const (
	loKeycode = 8
	hiKeycode = 255
)

// Keymap maps keycodes to the keysym columns the server advertises for them.
type Keymap [256][]xproto.Keysym

// LoadKeymap fetches the server's keyboard mapping for the full keycode range.
func LoadKeymap(x *xgb.Conn) (*Keymap, error) {
	reply, err := xproto.GetKeyboardMapping(x, loKeycode, hiKeycode-loKeycode+1).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to load keyboard mapping: %w", err)
	}
	if reply == nil {
		return nil, fmt.Errorf("empty keyboard mapping reply")
	}

	var km Keymap
	per := int(reply.KeysymsPerKeycode)
	for i := 0; i < hiKeycode-loKeycode+1; i++ {
		km[loKeycode+i] = reply.Keysyms[i*per : (i+1)*per]
	}
	return &km, nil
}

// SymbolAt returns the unshifted keysym for a keycode, or 0 when the keycode
// produces nothing.
func (km *Keymap) SymbolAt(code xproto.Keycode) xproto.Keysym {
	syms := km[code]
	if len(syms) == 0 {
		return 0
	}
	return syms[0]
}

// KeycodesOf returns every keycode whose keysym columns contain sym. Grabs
// need all of them since a symbol can live on several physical keys.
func (km *Keymap) KeycodesOf(sym xproto.Keysym) []xproto.Keycode {
	var codes []xproto.Keycode
	for code, syms := range km {
		for _, s := range syms {
			if s == sym {
				codes = append(codes, xproto.Keycode(code))
				break
			}
		}
	}
	return codes
}
