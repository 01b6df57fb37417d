//go:build linux

package platform

import (
	"errors"
	"fmt"
	"os"

	"github.com/1broseidon/winpump/internal/x11"
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
)

// x11Driver owns one top-level X11 window and the connection it lives on.
type x11Driver struct {
	// guard shares the connection with Wake callers; every other field is
	// only touched on the pump thread.
	guard connGuard[*x11.Connection]
	conn  *x11.Connection
	wid   xproto.Window

	masks     x11.ModMasks
	monitors  []Monitor
	bounds    Rect
	resizable bool
	mapped    bool
	blank     xproto.Cursor
}

var _ Driver = (*x11Driver)(nil)

func newX11Driver() (Driver, error) {
	return &x11Driver{}, nil
}

func (d *x11Driver) Name() string { return BackendX11 }

func (d *x11Driver) Open(cfg Config) (Handle, Geometry, error) {
	display := cfg.Display
	if display == "" {
		display = os.Getenv("DISPLAY")
	}

	conn, err := x11.NewConnectionDisplay(cfg.Display)
	if err != nil {
		return Handle{}, Geometry{}, &NativeError{Op: "connect to X server", Err: err}
	}

	key := ClassKey(BackendX11, display, cfg.ClassName)
	err = registerClass(key, func() error {
		for _, name := range x11.ClassAtoms {
			if _, err := conn.Atom(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		conn.Close()
		return Handle{}, Geometry{}, &NativeError{Op: "register window class", Code: x11.ErrorCode(err), Err: err}
	}

	wid, err := conn.CreateWindow(x11.WindowOptions{
		X:           cfg.X,
		Y:           cfg.Y,
		Width:       cfg.Width,
		Height:      cfg.Height,
		HasPosition: cfg.HasPosition,
		Title:       cfg.Title,
		ClassName:   cfg.ClassName,
		Resizable:   cfg.Resizable,
		Decorations: cfg.Decorations,
		Icon:        cfg.Icon,
	})
	if err != nil {
		conn.Close()
		return Handle{}, Geometry{}, &NativeError{Op: "create window", Code: x11.ErrorCode(err), Err: err}
	}

	d.masks = conn.ModMasks()
	if monitors, err := conn.GetMonitors(); err == nil {
		d.monitors = convertMonitors(monitors)
		randr.SelectInput(conn.Conn(), conn.Root, randr.NotifyMaskScreenChange)
	}
	d.bounds = Rect{X: cfg.X, Y: cfg.Y, Width: cfg.Width, Height: cfg.Height}
	d.resizable = cfg.Resizable

	geom := Geometry{Bounds: d.bounds, Scale: d.scaleFor(d.bounds), Monitors: d.monitors}
	if cfg.Visible {
		if err := conn.Map(wid); err != nil {
			conn.DestroyWindow(wid)
			conn.Close()
			return Handle{}, Geometry{}, &NativeError{Op: "map window", Code: x11.ErrorCode(err), Err: err}
		}
		geom.Visible = true
		d.mapped = true
		if cfg.Focus {
			// The window manager decides; a FocusIn follows if it agrees.
			conn.FocusWindow(wid)
		}
	}

	d.conn, d.wid = conn, wid
	d.guard.set(conn)
	return Handle{Backend: BackendX11, Display: display, Window: WindowID(wid)}, geom, nil
}

func (d *x11Driver) NextEvent() (Event, error) {
	conn, wid := d.conn, d.wid
	if conn == nil {
		return Event{}, ErrConnectionClosed
	}

	for {
		xev, err := conn.WaitForEvent()
		if errors.Is(err, x11.ErrClosed) {
			return Event{}, ErrConnectionClosed
		}
		if err != nil {
			var xerr xgb.Error
			if errors.As(err, &xerr) {
				// Asynchronous errors belong to unchecked requests that
				// already reported through their own cookie, if at all.
				continue
			}
			return Event{}, &NativeError{Op: "wait for event", Err: err}
		}

		if ev, ok := d.translate(conn, wid, xev); ok {
			return ev, nil
		}
	}
}

// translate maps an X event to a neutral one. The second result is false
// for events the window does not surface.
func (d *x11Driver) translate(conn *x11.Connection, wid xproto.Window, xev xgb.Event) (Event, bool) {
	switch e := xev.(type) {
	case xproto.ClientMessageEvent:
		switch {
		case conn.IsWake(e):
			return Event{Kind: EventWake}, true
		case conn.IsDelete(e):
			return Event{Kind: EventCloseRequest}, true
		}

	case xproto.DestroyNotifyEvent:
		if e.Window == wid {
			return Event{Kind: EventDestroyed}, true
		}

	case xproto.ConfigureNotifyEvent:
		if e.Window != wid {
			break
		}
		bounds := Rect{X: int(e.X), Y: int(e.Y), Width: int(e.Width), Height: int(e.Height)}
		// Reparenting window managers report coordinates relative to the
		// frame; ask the server for root-relative ones.
		if x, y, _, _, err := conn.WindowBounds(wid); err == nil {
			bounds.X, bounds.Y = x, y
		}
		d.bounds = bounds
		return Event{Kind: EventConfigure, Bounds: bounds, Scale: d.scaleFor(bounds)}, true

	case randr.ScreenChangeNotifyEvent:
		ev := Event{Kind: EventConfigure, Bounds: d.bounds}
		if monitors, err := conn.GetMonitors(); err == nil {
			d.monitors = convertMonitors(monitors)
			ev.Monitors = d.monitors
		}
		ev.Scale = d.scaleFor(d.bounds)
		return ev, true

	case xproto.MapNotifyEvent:
		if e.Window == wid {
			d.mapped = true
			return Event{Kind: EventVisibility, Visible: true}, true
		}

	case xproto.UnmapNotifyEvent:
		if e.Window == wid {
			d.mapped = false
			return Event{Kind: EventVisibility, Visible: false}, true
		}

	case xproto.FocusInEvent:
		if e.Event == wid && e.Detail != xproto.NotifyDetailPointer {
			return Event{Kind: EventFocus, Focused: true}, true
		}

	case xproto.FocusOutEvent:
		if e.Event == wid && e.Detail != xproto.NotifyDetailPointer {
			return Event{Kind: EventFocus, Focused: false}, true
		}

	case xproto.ExposeEvent:
		// Only the last rectangle of a batch asks for a repaint.
		if e.Window == wid && e.Count == 0 {
			return Event{Kind: EventExpose}, true
		}

	case xproto.KeyPressEvent:
		return d.keyEvent(conn, e.Detail, e.State, true), true

	case xproto.KeyReleaseEvent:
		return d.keyEvent(conn, e.Detail, e.State, false), true

	case xproto.ButtonPressEvent:
		if ev, ok := scrollEvent(byte(e.Detail), int(e.EventX), int(e.EventY)); ok {
			ev.Mods = d.mods(e.State)
			return ev, true
		}
		return Event{
			Kind:    EventButton,
			Button:  int(e.Detail),
			Pressed: true,
			Mods:    d.mods(e.State),
			X:       int(e.EventX),
			Y:       int(e.EventY),
		}, true

	case xproto.ButtonReleaseEvent:
		if isScrollButton(byte(e.Detail)) {
			break
		}
		return Event{
			Kind:   EventButton,
			Button: int(e.Detail),
			Mods:   d.mods(e.State),
			X:      int(e.EventX),
			Y:      int(e.EventY),
		}, true

	case xproto.MotionNotifyEvent:
		return Event{
			Kind: EventMotion,
			Mods: d.mods(e.State),
			X:    int(e.EventX),
			Y:    int(e.EventY),
		}, true
	}
	return Event{}, false
}

func (d *x11Driver) keyEvent(conn *x11.Connection, code xproto.Keycode, state uint16, pressed bool) Event {
	return Event{
		Kind:    EventKey,
		Code:    uint32(code),
		Name:    conn.KeyName(state, code),
		Pressed: pressed,
		Mods:    d.mods(state),
	}
}

func (d *x11Driver) mods(state uint16) Modifiers {
	var m Modifiers
	if state&d.masks.Shift != 0 {
		m |= ModShift
	}
	if state&d.masks.Ctrl != 0 {
		m |= ModCtrl
	}
	if state&d.masks.Alt != 0 {
		m |= ModAlt
	}
	if state&d.masks.Super != 0 {
		m |= ModSuper
	}
	return m
}

// X11 reports wheel motion as presses of buttons 4 to 7.
func isScrollButton(button byte) bool {
	return button >= 4 && button <= 7
}

func scrollEvent(button byte, x, y int) (Event, bool) {
	ev := Event{Kind: EventScroll, X: x, Y: y}
	switch button {
	case 4:
		ev.DeltaY = 1
	case 5:
		ev.DeltaY = -1
	case 6:
		ev.DeltaX = -1
	case 7:
		ev.DeltaX = 1
	default:
		return Event{}, false
	}
	return ev, true
}

func (d *x11Driver) scaleFor(bounds Rect) float64 {
	mon, ok := MonitorAt(d.monitors, bounds)
	if !ok || mon.Scale == 0 {
		return 1
	}
	return mon.Scale
}

func convertMonitors(monitors []x11.Monitor) []Monitor {
	out := make([]Monitor, 0, len(monitors))
	for _, m := range monitors {
		out = append(out, Monitor{
			Name:    m.Name,
			Bounds:  Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height},
			Scale:   m.Scale(),
			Primary: m.Primary,
		})
	}
	return out
}

// Wake may race Close; the guard keeps the connection open until the wake
// request has been written.
func (d *x11Driver) Wake() error {
	return d.guard.use(func(conn *x11.Connection) error {
		return conn.PostWake(d.wid)
	})
}

func (d *x11Driver) Apply(cmd Command) error {
	conn, wid := d.conn, d.wid
	if conn == nil {
		return fmt.Errorf("apply %s: window not open", cmd.Kind)
	}

	var err error
	switch cmd.Kind {
	case CommandSetTitle:
		err = conn.SetTitle(wid, cmd.Title)
	case CommandSetVisible:
		if cmd.Visible {
			err = conn.Map(wid)
		} else {
			err = conn.Unmap(wid)
		}
	case CommandRedraw:
		err = conn.Redraw(wid)
	case CommandFocus:
		err = conn.FocusWindow(wid)
	case CommandSetPosition:
		err = conn.Move(wid, cmd.X, cmd.Y)
	case CommandSetSize:
		if !d.resizable {
			err = conn.SetSizeHints(wid, cmd.Width, cmd.Height, false)
		}
		if err == nil {
			err = conn.Resize(wid, cmd.Width, cmd.Height)
		}
	case CommandSetFullscreen:
		err = conn.SetFullscreen(wid, cmd.Fullscreen, d.mapped)
	case CommandSetCursorVisible:
		err = d.setCursorVisible(cmd.Visible)
	case CommandSetCursorMode:
		if cmd.Confine {
			err = conn.ConfinePointer(wid)
		} else {
			err = conn.ReleasePointer()
		}
	default:
		err = fmt.Errorf("unknown command %s", cmd.Kind)
	}
	if err != nil {
		return &NativeError{Op: cmd.Kind.String(), Code: x11.ErrorCode(err), Err: err}
	}
	return nil
}

func (d *x11Driver) setCursorVisible(visible bool) error {
	if visible {
		return d.conn.SetCursor(d.wid, 0)
	}
	if d.blank == 0 {
		blank, err := d.conn.BlankCursor()
		if err != nil {
			return err
		}
		d.blank = blank
	}
	return d.conn.SetCursor(d.wid, d.blank)
}

func (d *x11Driver) Destroy() error {
	if d.conn == nil {
		return nil
	}
	if err := d.conn.DestroyWindow(d.wid); err != nil {
		return &NativeError{Op: "destroy window", Code: x11.ErrorCode(err), Err: err}
	}
	return nil
}

// Close waits for in-flight Wake calls before closing the connection;
// xgb panics on requests issued after Close.
func (d *x11Driver) Close() error {
	d.guard.close(func(conn *x11.Connection) {
		conn.Close()
	})
	d.conn = nil
	return nil
}
