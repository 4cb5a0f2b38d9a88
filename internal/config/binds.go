package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
)

// Keybind maps a modifier mask and key to an action string. The action string
// is validated by the action parser when the window manager starts.
type Keybind struct {
	Mods   uint16
	Key    rune
	Action string
}

// ParseBind parses a bind spec of the form "C-S-x": every token but the last
// names a modifier (C=Control, S=Shift, A=Alt/mod1, W=Super/mod4), the last is
// a single letter key. Matching is case-insensitive since viper folds map keys.
func ParseBind(spec, action string) (Keybind, error) {
	tokens := strings.Split(spec, "-")
	if len(tokens) == 0 || tokens[len(tokens)-1] == "" {
		return Keybind{}, fmt.Errorf("empty bind spec")
	}

	var mods uint16
	for _, tok := range tokens[:len(tokens)-1] {
		switch strings.ToUpper(tok) {
		case "C":
			mods |= xproto.ModMaskControl
		case "S":
			mods |= xproto.ModMaskShift
		case "A":
			mods |= xproto.ModMask1
		case "W":
			mods |= xproto.ModMask4
		default:
			return Keybind{}, fmt.Errorf("unknown modifier %q", tok)
		}
	}

	key := strings.ToLower(tokens[len(tokens)-1])
	if len(key) != 1 || key[0] < 'a' || key[0] > 'z' {
		return Keybind{}, fmt.Errorf("key must be a single letter, got %q", tokens[len(tokens)-1])
	}

	return Keybind{Mods: mods, Key: rune(key[0]), Action: action}, nil
}

// Keysym returns the X keysym for the bind's key. Keysyms for latin letters
// coincide with their ASCII codes.
func (b Keybind) Keysym() xproto.Keysym {
	return xproto.Keysym(b.Key)
}

// Spec renders the bind back into its config-file form.
func (b Keybind) Spec() string {
	var sb strings.Builder
	if b.Mods&xproto.ModMaskControl != 0 {
		sb.WriteString("C-")
	}
	if b.Mods&xproto.ModMaskShift != 0 {
		sb.WriteString("S-")
	}
	if b.Mods&xproto.ModMask1 != 0 {
		sb.WriteString("A-")
	}
	if b.Mods&xproto.ModMask4 != 0 {
		sb.WriteString("W-")
	}
	sb.WriteRune(b.Key)
	return sb.String()
}
