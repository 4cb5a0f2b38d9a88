package x11

import (
	"errors"

	"github.com/BurntSushi/xgb/xproto"
)

// ErrClientMissing marks an operation on a window the manager does not know
// about. It signals a bookkeeping invariant violation and is fatal.
var ErrClientMissing = errors.New("window is not a managed client")

// IsWindowGone reports whether err is an X BadWindow error, meaning the target
// window was destroyed between our decision to act and the request reaching
// the server.
func IsWindowGone(err error) bool {
	var we xproto.WindowError
	return errors.As(err, &we)
}

// MayNotExist filters the errors of a request whose target window is allowed
// to have vanished. BadWindow is swallowed, everything else propagates.
func MayNotExist(err error) error {
	if err == nil || IsWindowGone(err) {
		return nil
	}
	return err
}

// IsAccessError reports whether err is an X Access error, the response to a
// SubstructureRedirect selection when another window manager is running.
func IsAccessError(err error) bool {
	var ae xproto.AccessError
	return errors.As(err, &ae)
}
