package wm

import (
	"fmt"
	"strings"
)

// ActionKind enumerates the control-plane verbs.
type ActionKind uint8

const (
	// ActionClose closes the focused client.
	ActionClose ActionKind = iota
	// ActionFocus moves focus to a neighbouring tile.
	ActionFocus
)

// Action is a parsed control-plane command.
type Action struct {
	Kind ActionKind
	Dir  Direction
}

// ParseAction parses a whitespace-separated action string. The verb is
// case-insensitive; the error text for an unknown verb is the exact body the
// control client receives.
func ParseAction(input string) (Action, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return Action{}, fmt.Errorf("empty action")
	}

	switch strings.ToLower(fields[0]) {
	case "close":
		if len(fields) != 1 {
			return Action{}, fmt.Errorf("close takes no arguments")
		}
		return Action{Kind: ActionClose}, nil
	case "focus":
		if len(fields) != 2 {
			return Action{}, fmt.Errorf("focus takes a direction (up, down, left, right)")
		}
		dir, err := ParseDirection(fields[1])
		if err != nil {
			return Action{}, err
		}
		return Action{Kind: ActionFocus, Dir: dir}, nil
	default:
		return Action{}, fmt.Errorf("Unknown action: %s", fields[0])
	}
}

// Eval applies the action to the layout tree.
func (a Action) Eval(t *Tree) error {
	switch a.Kind {
	case ActionClose:
		return t.DestroyFocusedClient()
	case ActionFocus:
		return t.FocusDirection(a.Dir)
	default:
		return fmt.Errorf("unhandled action kind %d", a.Kind)
	}
}
