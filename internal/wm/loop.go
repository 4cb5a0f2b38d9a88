package wm

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/hungl6844/xcrab/internal/config"
	"github.com/hungl6844/xcrab/internal/logger"
	"github.com/hungl6844/xcrab/internal/msg"
	"github.com/hungl6844/xcrab/internal/x11"
)

// Event is a layout change notification for the debug event feed.
type Event struct {
	Kind   string `json:"kind"` // "map", "unmap" or "focus"
	Window uint32 `json:"window"`
}

// boundAction is a keybinding resolved against the action parser.
type boundAction struct {
	mods   uint16
	sym    xproto.Keysym
	action Action
}

// xEvent carries one item off the X wire: an event or an unsolicited error.
type xEvent struct {
	ev  xgb.Event
	err xgb.Error
}

// WM owns the X connection and the layout tree. All tree mutations happen on
// the goroutine running Run; the control listener and the event pump feed it
// through channels.
type WM struct {
	conn   *x11.Conn
	cfg    *config.Config
	tree   *Tree
	keymap *x11.Keymap
	binds  []boundAction

	xevents   chan xEvent
	snapshots chan chan Snapshot
	done      chan struct{}
	onEvent   func(Event)
}

// New connects to the X server and prepares the manager. Keybinding action
// strings are validated here; a bad one aborts startup.
func New(cfg *config.Config) (*WM, error) {
	conn, err := x11.Connect()
	if err != nil {
		return nil, err
	}

	keymap, err := x11.LoadKeymap(conn.X)
	if err != nil {
		conn.Close()
		return nil, err
	}

	var binds []boundAction
	for _, b := range cfg.Binds {
		act, err := ParseAction(b.Action)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("keybinding action %q: %w", b.Action, err)
		}
		binds = append(binds, boundAction{mods: b.Mods, sym: b.Keysym(), action: act})
	}

	wm := &WM{
		conn:      conn,
		cfg:       cfg,
		keymap:    keymap,
		binds:     binds,
		xevents:   make(chan xEvent),
		snapshots: make(chan chan Snapshot),
		done:      make(chan struct{}),
	}
	wm.tree = NewTree(newXFramer(conn, cfg), cfg)
	return wm, nil
}

// SetEventHook registers a callback invoked from the loop goroutine for every
// layout event. The callback must not block.
func (wm *WM) SetEventHook(fn func(Event)) {
	wm.onEvent = fn
}

// SnapshotFunc returns a function other goroutines can call to obtain a
// consistent tree snapshot, produced by the loop between handlers.
func (wm *WM) SnapshotFunc() func() Snapshot {
	return func() Snapshot {
		ch := make(chan Snapshot, 1)
		select {
		case wm.snapshots <- ch:
		case <-wm.done:
			return Snapshot{}
		}
		select {
		case s := <-ch:
			return s
		case <-wm.done:
			return Snapshot{}
		}
	}
}

// Run takes over window management and dispatches events until a fatal error.
func (wm *WM) Run() error {
	defer close(wm.done)
	defer wm.conn.Close()
	log := logger.WithComponent("wm")

	if err := wm.become(); err != nil {
		return err
	}
	if err := wm.adoptExisting(); err != nil {
		return err
	}
	wm.grabKeys()

	listener, err := msg.Listen(wm.cfg.Msg.SocketPath)
	if err != nil {
		return err
	}
	defer listener.Close()
	log.Info().Str("socket", wm.cfg.Msg.SocketPath).Msg("control socket ready")

	go wm.pumpEvents()

	requests := listener.Requests()
	for {
		// Biased select: drain control messages first so X event storms
		// cannot starve the control plane.
		select {
		case req := <-requests:
			if err := wm.dispatchRequest(req); err != nil {
				return err
			}
			continue
		default:
		}

		select {
		case req := <-requests:
			if err := wm.dispatchRequest(req); err != nil {
				return err
			}
		case ch := <-wm.snapshots:
			ch <- wm.tree.Snapshot()
		case xe, ok := <-wm.xevents:
			if !ok {
				return fmt.Errorf("X connection closed")
			}
			if err := wm.dispatchX(xe); err != nil {
				return err
			}
		}
	}
}

// become selects the redirect masks on the root, the act that makes this
// process the window manager.
func (wm *WM) become() error {
	err := xproto.ChangeWindowAttributesChecked(
		wm.conn.X,
		wm.conn.Root(),
		xproto.CwEventMask,
		[]uint32{
			xproto.EventMaskSubstructureRedirect |
				xproto.EventMaskSubstructureNotify |
				xproto.EventMaskKeyPress,
		},
	).Check()
	if x11.IsAccessError(err) {
		return fmt.Errorf("could not become the window manager, is another one running?")
	}
	return err
}

// adoptExisting tiles every viewable non-override-redirect top-level window
// that predates us. The server stays grabbed so the set cannot change under
// our feet.
func (wm *WM) adoptExisting() error {
	log := logger.WithComponent("wm")
	x := wm.conn.X

	if err := xproto.GrabServerChecked(x).Check(); err != nil {
		return fmt.Errorf("failed to grab server: %w", err)
	}
	defer func() {
		if err := xproto.UngrabServerChecked(x).Check(); err != nil {
			log.Error().Err(err).Msg("failed to ungrab server")
		}
	}()

	tree, err := xproto.QueryTree(x, wm.conn.Root()).Reply()
	if err != nil {
		return fmt.Errorf("failed to query existing windows: %w", err)
	}

	for _, child := range tree.Children {
		attr, err := xproto.GetWindowAttributes(x, child).Reply()
		if err != nil {
			continue
		}
		if attr.OverrideRedirect || attr.MapState != xproto.MapStateViewable {
			continue
		}
		if err := wm.tree.AddClient(child); err != nil {
			return err
		}
		log.Debug().Uint32("window", uint32(child)).Msg("adopted existing window")
	}
	return nil
}

// grabKeys installs passive grabs for every keybinding, with and without
// NumLock (mod2) so bindings keep working either way.
func (wm *WM) grabKeys() {
	log := logger.WithComponent("wm")
	for _, b := range wm.binds {
		codes := wm.keymap.KeycodesOf(b.sym)
		if len(codes) == 0 {
			log.Warn().Uint32("keysym", uint32(b.sym)).Msg("no keycode produces bound key")
			continue
		}
		for _, code := range codes {
			for _, mods := range []uint16{b.mods, b.mods | xproto.ModMask2} {
				if err := xproto.GrabKeyChecked(
					wm.conn.X,
					false,
					wm.conn.Root(),
					mods,
					code,
					xproto.GrabModeAsync,
					xproto.GrabModeAsync,
				).Check(); err != nil {
					log.Warn().Err(err).Uint8("keycode", uint8(code)).Msg("key grab failed")
				}
			}
		}
	}
}

// pumpEvents moves X events onto a channel the select loop can multiplex.
func (wm *WM) pumpEvents() {
	for {
		ev, xerr := wm.conn.X.WaitForEvent()
		if ev == nil && xerr == nil {
			close(wm.xevents)
			return
		}
		select {
		case wm.xevents <- xEvent{ev: ev, err: xerr}:
		case <-wm.done:
			return
		}
	}
}

// dispatchRequest evaluates one control-socket action. The verdict always
// goes back to the client; a parse error goes only to the client, while
// evaluation errors that are not a vanished window also abort the loop.
func (wm *WM) dispatchRequest(req msg.Request) error {
	prevFocus := wm.tree.Focused()

	act, err := ParseAction(req.Action)
	if err != nil {
		req.Reply <- err
		return nil
	}

	err = act.Eval(wm.tree)
	if x11.IsWindowGone(err) {
		err = nil
	}
	req.Reply <- err
	if err != nil {
		return err
	}

	wm.publishFocusChange(prevFocus)
	return nil
}

// dispatchX handles one X event or unsolicited error.
func (wm *WM) dispatchX(xe xEvent) error {
	log := logger.WithComponent("wm")

	if xe.err != nil {
		if x11.IsWindowGone(xe.err) {
			log.Debug().Str("error", xe.err.Error()).Msg("late BadWindow, ignoring")
			return nil
		}
		return fmt.Errorf("X error: %s", xe.err.Error())
	}

	prevFocus := wm.tree.Focused()
	var err error
	switch e := xe.ev.(type) {
	case xproto.MapRequestEvent:
		err = wm.handleMapRequest(e)
	case xproto.ConfigureRequestEvent:
		err = wm.handleConfigureRequest(e)
	case xproto.UnmapNotifyEvent:
		err = wm.handleUnmapNotify(e)
	case xproto.ButtonPressEvent:
		err = wm.handleButtonPress(e)
	case xproto.KeyPressEvent:
		err = wm.handleKeyPress(e)
	default:
		// Everything else is noise to a tiling manager.
	}
	if x11.IsWindowGone(err) {
		return nil
	}
	if err != nil {
		return err
	}

	wm.publishFocusChange(prevFocus)
	return nil
}

func (wm *WM) handleMapRequest(e xproto.MapRequestEvent) error {
	attr, err := xproto.GetWindowAttributes(wm.conn.X, e.Window).Reply()
	if err == nil && attr.OverrideRedirect {
		return nil
	}
	if err := wm.tree.AddClient(e.Window); err != nil {
		return err
	}
	if wm.tree.HasClient(e.Window) {
		wm.publish(Event{Kind: "map", Window: uint32(e.Window)})
	}
	return nil
}

// handleConfigureRequest forwards the request, stripping geometry for managed
// clients (the layout owns it) and the sibling always: some clients supply
// bogus siblings and the forward would die with a BadMatch.
func (wm *WM) handleConfigureRequest(e xproto.ConfigureRequestEvent) error {
	mask := e.ValueMask &^ xproto.ConfigWindowSibling
	if wm.tree.HasClient(e.Window) {
		mask &^= xproto.ConfigWindowX | xproto.ConfigWindowY |
			xproto.ConfigWindowWidth | xproto.ConfigWindowHeight
	}
	if mask == 0 {
		return nil
	}
	return x11.MayNotExist(xproto.ConfigureWindowChecked(
		wm.conn.X, e.Window, mask, configureRequestValues(e, mask),
	).Check())
}

// configureRequestValues assembles the value list in mask bit order.
func configureRequestValues(e xproto.ConfigureRequestEvent, mask uint16) []uint32 {
	var vals []uint32
	if mask&xproto.ConfigWindowX != 0 {
		vals = append(vals, uint32(int32(e.X)))
	}
	if mask&xproto.ConfigWindowY != 0 {
		vals = append(vals, uint32(int32(e.Y)))
	}
	if mask&xproto.ConfigWindowWidth != 0 {
		vals = append(vals, uint32(e.Width))
	}
	if mask&xproto.ConfigWindowHeight != 0 {
		vals = append(vals, uint32(e.Height))
	}
	if mask&xproto.ConfigWindowBorderWidth != 0 {
		vals = append(vals, uint32(e.BorderWidth))
	}
	if mask&xproto.ConfigWindowSibling != 0 {
		vals = append(vals, uint32(e.Sibling))
	}
	if mask&xproto.ConfigWindowStackMode != 0 {
		vals = append(vals, uint32(e.StackMode))
	}
	return vals
}

func (wm *WM) handleUnmapNotify(e xproto.UnmapNotifyEvent) error {
	if !wm.tree.HasClient(e.Window) || e.Event == wm.conn.Root() {
		return nil
	}
	if err := wm.tree.RemoveClient(e.Window); err != nil {
		return err
	}
	wm.publish(Event{Kind: "unmap", Window: uint32(e.Window)})
	return nil
}

func (wm *WM) handleButtonPress(e xproto.ButtonPressEvent) error {
	if e.Detail != 1 || !wm.tree.HasClient(e.Event) {
		return nil
	}
	return wm.tree.SetFocus(e.Event)
}

func (wm *WM) handleKeyPress(e xproto.KeyPressEvent) error {
	sym := wm.keymap.SymbolAt(e.Detail)
	state := e.State &^ xproto.ModMask2
	for _, b := range wm.binds {
		if b.sym == sym && b.mods == state {
			if err := b.action.Eval(wm.tree); err != nil {
				return err
			}
		}
	}
	return nil
}

func (wm *WM) publish(ev Event) {
	if wm.onEvent != nil {
		wm.onEvent(ev)
	}
}

func (wm *WM) publishFocusChange(prev xproto.Window) {
	if cur := wm.tree.Focused(); cur != prev && cur != 0 {
		wm.publish(Event{Kind: "focus", Window: uint32(cur)})
	}
}
