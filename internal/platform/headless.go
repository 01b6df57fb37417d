package platform

import (
	"fmt"
	"sync"
	"sync/atomic"
)

var nextHeadlessID atomic.Uint32

// DefaultHeadlessMonitors is the monitor layout a headless driver starts
// with.
var DefaultHeadlessMonitors = []Monitor{
	{Name: "HEADLESS-1", Bounds: Rect{Width: 1920, Height: 1080}, Scale: 1, Primary: true},
}

// Headless is an in-memory driver. It has no display; events arrive through
// Inject and from the driver's own reactions to commands, in the same order a
// native subsystem would deliver them.
type Headless struct {
	mu      sync.Mutex
	cond    *sync.Cond
	events  []Event
	applied []Command

	cfg       Config
	id        WindowID
	opened    bool
	destroyed bool
	closed    bool

	bounds     Rect
	restore    Rect
	fullscreen bool
	monitors   []Monitor
	cursor     CursorState

	openErr   error
	openPanic any
	nextErr   error
}

var _ Driver = (*Headless)(nil)

// CursorState is the pointer configuration a headless window was given.
type CursorState struct {
	Hidden   bool
	Confined bool
}

// NewHeadless returns a headless driver ready to Open.
func NewHeadless() *Headless {
	h := &Headless{monitors: DefaultHeadlessMonitors}
	h.cond = sync.NewCond(&h.mu)
	return h
}

// SetMonitors replaces the monitor layout and reports the change the way a
// display reconfiguration would.
func (h *Headless) SetMonitors(monitors []Monitor) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.monitors = append([]Monitor(nil), monitors...)
	if h.opened && !h.destroyed {
		h.push(Event{Kind: EventConfigure, Bounds: h.bounds, Scale: h.scaleFor(h.bounds), Monitors: h.monitors})
	}
}

// Cursor returns the pointer configuration applied so far.
func (h *Headless) Cursor() CursorState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor
}

// FailOpen makes the next Open fail with err.
func (h *Headless) FailOpen(err error) {
	h.mu.Lock()
	h.openErr = err
	h.mu.Unlock()
}

// PanicOpen makes the next Open panic with v.
func (h *Headless) PanicOpen(v any) {
	h.mu.Lock()
	h.openPanic = v
	h.mu.Unlock()
}

// FailNext makes NextEvent return err once every queued event is consumed,
// as if the native connection broke.
func (h *Headless) FailNext(err error) {
	h.mu.Lock()
	h.nextErr = err
	h.mu.Unlock()
	h.cond.Broadcast()
}

// Inject simulates a native event. It is safe to call from any goroutine.
// Events injected after Close are dropped.
func (h *Headless) Inject(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ev.Kind == EventConfigure {
		h.bounds = ev.Bounds
	}
	h.push(ev)
}

// Applied returns the commands executed so far.
func (h *Headless) Applied() []Command {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Command(nil), h.applied...)
}

// Title returns the current window title.
func (h *Headless) Title() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cfg.Title
}

// Closed reports whether Close has released the window.
func (h *Headless) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

func (h *Headless) Name() string { return BackendHeadless }

func (h *Headless) Open(cfg Config) (Handle, Geometry, error) {
	h.mu.Lock()
	openErr, openPanic := h.openErr, h.openPanic
	h.openErr, h.openPanic = nil, nil
	h.mu.Unlock()

	if openPanic != nil {
		panic(openPanic)
	}

	key := ClassKey(BackendHeadless, "", cfg.ClassName)
	if err := registerClass(key, func() error { return nil }); err != nil {
		return Handle{}, Geometry{}, err
	}
	if openErr != nil {
		return Handle{}, Geometry{}, &NativeError{Op: "create window", Code: 1, Err: openErr}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Handle{}, Geometry{}, &NativeError{
			Op:   "create window",
			Code: 2,
			Err:  fmt.Errorf("invalid size %dx%d", cfg.Width, cfg.Height),
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.cfg = cfg
	h.id = WindowID(nextHeadlessID.Add(1))
	h.opened = true
	h.bounds = Rect{X: cfg.X, Y: cfg.Y, Width: cfg.Width, Height: cfg.Height}

	geom := Geometry{
		Bounds:   h.bounds,
		Scale:    h.scaleFor(h.bounds),
		Visible:  cfg.Visible,
		Focused:  cfg.Visible && cfg.Focus,
		Monitors: h.monitors,
	}
	return Handle{Backend: BackendHeadless, Window: h.id}, geom, nil
}

func (h *Headless) NextEvent() (Event, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for len(h.events) == 0 {
		if h.closed {
			return Event{}, ErrConnectionClosed
		}
		if h.nextErr != nil {
			err := h.nextErr
			h.nextErr = nil
			return Event{}, err
		}
		h.cond.Wait()
	}
	ev := h.events[0]
	h.events[0] = Event{}
	h.events = h.events[1:]
	return ev, nil
}

func (h *Headless) Wake() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrConnectionClosed
	}
	h.push(Event{Kind: EventWake})
	return nil
}

func (h *Headless) Apply(cmd Command) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.opened || h.destroyed {
		return fmt.Errorf("apply %s: window not open", cmd.Kind)
	}
	h.applied = append(h.applied, cmd)

	switch cmd.Kind {
	case CommandSetTitle:
		h.cfg.Title = cmd.Title
	case CommandSetVisible:
		if h.cfg.Visible != cmd.Visible {
			h.cfg.Visible = cmd.Visible
			h.push(Event{Kind: EventVisibility, Visible: cmd.Visible})
		}
	case CommandRedraw:
		h.push(Event{Kind: EventExpose})
	case CommandFocus:
		h.push(Event{Kind: EventFocus, Focused: true})
	case CommandSetPosition:
		h.configure(Rect{X: cmd.X, Y: cmd.Y, Width: h.bounds.Width, Height: h.bounds.Height})
	case CommandSetSize:
		h.configure(Rect{X: h.bounds.X, Y: h.bounds.Y, Width: cmd.Width, Height: cmd.Height})
	case CommandSetFullscreen:
		if cmd.Fullscreen == h.fullscreen {
			break
		}
		h.fullscreen = cmd.Fullscreen
		if !cmd.Fullscreen {
			h.configure(h.restore)
			break
		}
		h.restore = h.bounds
		if mon, ok := MonitorAt(h.monitors, h.bounds); ok {
			h.configure(mon.Bounds)
		} else if mon, ok := PrimaryMonitor(h.monitors); ok {
			h.configure(mon.Bounds)
		}
	case CommandSetCursorVisible:
		h.cursor.Hidden = !cmd.Visible
	case CommandSetCursorMode:
		if cmd.Confine && !h.cfg.Visible {
			return &NativeError{Op: cmd.Kind.String(), Code: 1, Err: fmt.Errorf("window is not viewable")}
		}
		h.cursor.Confined = cmd.Confine
	}
	return nil
}

// configure moves the window to r and reports it, as a window manager
// would after a geometry request. It must be called with h.mu held.
func (h *Headless) configure(r Rect) {
	if r == h.bounds {
		return
	}
	h.bounds = r
	h.push(Event{Kind: EventConfigure, Bounds: r, Scale: h.scaleFor(r)})
}

func (h *Headless) scaleFor(r Rect) float64 {
	if mon, ok := MonitorAt(h.monitors, r); ok && mon.Scale != 0 {
		return mon.Scale
	}
	return 1
}

func (h *Headless) Destroy() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.destroyed {
		return nil
	}
	h.destroyed = true
	h.push(Event{Kind: EventDestroyed})
	return nil
}

func (h *Headless) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	h.events = nil
	h.cond.Broadcast()
	return nil
}

// push must be called with h.mu held.
func (h *Headless) push(ev Event) {
	if h.closed {
		return
	}
	h.events = append(h.events, ev)
	h.cond.Signal()
}
