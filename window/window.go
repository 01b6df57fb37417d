// Package window creates one native window and pumps its events on a
// dedicated OS thread.
//
// New blocks until the window exists, then returns a Window whose Next
// method yields translated messages in native order, starting with Created
// and ending with Destroyed. The consumer never touches the native handle;
// control calls are queued to the pump and executed there.
package window

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/1broseidon/winpump/internal/platform"
	"github.com/1broseidon/winpump/internal/queue"
)

// RawHandle identifies the native window for graphics interop.
type RawHandle struct {
	Backend string `json:"backend"`
	Display string `json:"display,omitempty"`
	Window  uint32 `json:"window"`
}

// Window is the consumer's view of a pumped window. Its methods are safe
// for concurrent use.
type Window struct {
	settings Settings
	driver   platform.Driver
	logger   *slog.Logger
	handle   platform.Handle

	state    atomic.Pointer[State]
	input    atomic.Pointer[input]
	monitors atomic.Pointer[[]platform.Monitor]
	messages *queue.Queue[Message]
	done     chan struct{}

	cmdMu    sync.Mutex
	commands []command

	redrawPending atomic.Bool

	// Pump-only.
	finished bool

	// recvMu serializes receivers; resultMu guards what they learned.
	recvMu    sync.Mutex
	resultMu  sync.Mutex
	exhausted bool
	err       error

	closeOnce sync.Once
}

// New creates the window on a new pump goroutine and waits until it
// exists. On failure the error is a *CreationError and the pump has
// already exited.
func New(settings Settings) (*Window, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	driver, err := platform.New(settings.Backend)
	if err != nil {
		return nil, &CreationError{Kind: CreationFailed, Err: err}
	}
	return newWithDriver(settings, driver)
}

func newWithDriver(settings Settings, driver platform.Driver) (*Window, error) {
	logger := settings.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var opts []queue.Option[Message]
	if settings.CoalesceGeometry {
		opts = append(opts, queue.WithCoalesce(geometryKey, settings.CoalesceThreshold))
	}

	w := &Window{
		settings: settings,
		driver:   driver,
		logger:   logger.With("component", "window", "backend", driver.Name()),
		messages: queue.New(opts...),
		done:     make(chan struct{}),
	}
	w.state.Store(&State{
		Width:         settings.Width,
		Height:        settings.Height,
		Title:         settings.Title,
		CursorVisible: true,
		Stage:         StageInitializing,
	})
	w.input.Store(&input{})
	w.monitors.Store(&[]platform.Monitor{})

	ready := make(chan outcome, 1)
	go w.pump(ready)

	if out := <-ready; out.err != nil {
		<-w.done
		w.messages.Release()
		return nil, out.err
	}
	return w, nil
}

// State returns the latest snapshot. It never blocks the pump.
func (w *Window) State() State {
	return *w.state.Load()
}

// Next blocks for the next message. It returns false once the sequence is
// exhausted, which happens right after Destroyed has been returned.
func (w *Window) Next() (Message, bool) {
	w.recvMu.Lock()
	defer w.recvMu.Unlock()
	if w.isExhausted() {
		return nil, false
	}
	msg, ok := <-w.messages.Out()
	return w.observe(msg, ok)
}

// Poll returns the next message if one is ready. A false result means
// nothing is waiting or the sequence is exhausted; Done tells them apart.
func (w *Window) Poll() (Message, bool) {
	w.recvMu.Lock()
	defer w.recvMu.Unlock()
	if w.isExhausted() {
		return nil, false
	}
	select {
	case msg, ok := <-w.messages.Out():
		return w.observe(msg, ok)
	default:
		return nil, false
	}
}

// All ranges over the remaining messages. Breaking out of the loop leaves
// the rest for a later Next or All.
func (w *Window) All() iter.Seq[Message] {
	return func(yield func(Message) bool) {
		for {
			msg, ok := w.Next()
			if !ok || !yield(msg) {
				return
			}
		}
	}
}

// Err reports why the sequence ended: nil after an orderly Destroyed,
// Destroyed.Err after an abnormal one, ErrChannelDisconnected when the
// stream ended without Destroyed. It is nil before exhaustion.
func (w *Window) Err() error {
	w.resultMu.Lock()
	defer w.resultMu.Unlock()
	return w.err
}

// Done is closed once the pump goroutine has returned.
func (w *Window) Done() <-chan struct{} {
	return w.done
}

// observe must be called with recvMu held.
func (w *Window) observe(msg Message, ok bool) (Message, bool) {
	if !ok {
		w.resultMu.Lock()
		if !w.exhausted {
			w.exhausted = true
			w.err = ErrChannelDisconnected
		}
		w.resultMu.Unlock()
		return nil, false
	}
	if d, isDestroyed := msg.(Destroyed); isDestroyed {
		// Destroyed is pushed last, right before the pump returns.
		<-w.done
		w.resultMu.Lock()
		w.exhausted = true
		w.err = d.Err
		w.resultMu.Unlock()
		w.messages.Release()
	}
	return msg, true
}

func (w *Window) isExhausted() bool {
	w.resultMu.Lock()
	defer w.resultMu.Unlock()
	return w.exhausted
}

// RawHandle exports the native handle while the window is alive.
func (w *Window) RawHandle() (RawHandle, error) {
	if !w.alive() || w.exited() {
		return RawHandle{}, ErrInvalidHandle
	}
	return RawHandle{
		Backend: w.handle.Backend,
		Display: w.handle.Display,
		Window:  uint32(w.handle.Window),
	}, nil
}

// RequestRedraw asks for a RedrawRequested message. Requests made while
// one is outstanding are merged into it.
func (w *Window) RequestRedraw() error {
	if !w.alive() {
		return ErrInvalidHandle
	}
	if !w.redrawPending.CompareAndSwap(false, true) {
		return nil
	}
	if err := w.send(command{kind: cmdNative, native: platform.Command{Kind: platform.CommandRedraw}}); err != nil {
		w.redrawPending.Store(false)
		return err
	}
	return nil
}

// RequestClose behaves like the window manager's close button.
func (w *Window) RequestClose() error {
	return w.send(command{kind: cmdClose})
}

// SetTitle changes the window title.
func (w *Window) SetTitle(title string) error {
	return w.send(command{kind: cmdTitle, text: title})
}

// SetSubtitle changes the text shown right after the title.
func (w *Window) SetSubtitle(subtitle string) error {
	return w.send(command{kind: cmdSubtitle, text: subtitle})
}

// SetPosition moves the window's outer corner. The window manager may
// adjust the request; a Moved message reports where it ended up.
func (w *Window) SetPosition(x, y int) error {
	if err := checkPosition(x, y); err != nil {
		return err
	}
	return w.send(command{kind: cmdNative, native: platform.Command{Kind: platform.CommandSetPosition, X: x, Y: y}})
}

// SetSize asks for a new inner size. A Resized message reports the result.
func (w *Window) SetSize(width, height int) error {
	if err := checkSize(width, height); err != nil {
		return err
	}
	return w.send(command{kind: cmdNative, native: platform.Command{Kind: platform.CommandSetSize, Width: width, Height: height}})
}

// SetFullscreen enters or leaves fullscreen on the current monitor.
func (w *Window) SetFullscreen(fullscreen bool) error {
	return w.send(command{kind: cmdNative, native: platform.Command{Kind: platform.CommandSetFullscreen, Fullscreen: fullscreen}})
}

// SetCursorVisible shows or hides the pointer while it is over the window.
func (w *Window) SetCursorVisible(visible bool) error {
	return w.send(command{kind: cmdNative, native: platform.Command{Kind: platform.CommandSetCursorVisible, Visible: visible}})
}

// SetCursorMode confines the pointer to the window or releases it.
func (w *Window) SetCursorMode(mode CursorMode) error {
	if mode != CursorNormal && mode != CursorConfined {
		return fmt.Errorf("invalid cursor mode %s", mode)
	}
	return w.send(command{kind: cmdNative, native: platform.Command{Kind: platform.CommandSetCursorMode, Confine: mode == CursorConfined}})
}

// SetVisible maps or unmaps the window.
func (w *Window) SetVisible(visible bool) error {
	return w.send(command{kind: cmdNative, native: platform.Command{Kind: platform.CommandSetVisible, Visible: visible}})
}

// Focus asks the window manager to activate the window.
func (w *Window) Focus() error {
	return w.send(command{kind: cmdNative, native: platform.Command{Kind: platform.CommandFocus}})
}

// Destroy commits destruction. Under CloseDefer this is how the consumer
// accepts a CloseRequested; it may also be called at any time before.
func (w *Window) Destroy() error {
	return w.send(command{kind: cmdDestroy})
}

// KeepOpen cancels a pending deferred close and returns the window to
// normal operation. It has no effect otherwise.
func (w *Window) KeepOpen() error {
	return w.send(command{kind: cmdKeepOpen})
}

// PostUser queues a User message carrying payload. It is delivered in
// order with native events.
func (w *Window) PostUser(payload any) error {
	return w.send(command{kind: cmdUser, payload: payload})
}

// Close destroys the window if needed, discards undelivered messages and
// waits for the pump to exit. It returns the same result as Err and may
// be called more than once.
func (w *Window) Close() error {
	w.closeOnce.Do(func() {
		if err := w.Destroy(); err != nil && !errors.Is(err, ErrInvalidHandle) {
			w.logger.Warn("destroy on close failed", "error", err)
		}
		<-w.done

		w.recvMu.Lock()
		defer w.recvMu.Unlock()
		for !w.isExhausted() {
			msg, ok := <-w.messages.Out()
			w.observe(msg, ok)
		}
	})
	return w.Err()
}

// alive reports whether destruction has not been committed yet.
func (w *Window) alive() bool {
	st := w.state.Load()
	return !st.Destroyed && st.Stage != StageDestroying
}

// exited reports whether the pump goroutine has returned.
func (w *Window) exited() bool {
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

// send queues cmd for the pump and wakes it.
func (w *Window) send(cmd command) error {
	if !w.alive() || w.exited() {
		return ErrInvalidHandle
	}

	w.cmdMu.Lock()
	w.commands = append(w.commands, cmd)
	w.cmdMu.Unlock()

	if err := w.driver.Wake(); err != nil {
		// The pump released the connection while cmd was being queued.
		if errors.Is(err, platform.ErrConnectionClosed) || !w.alive() || w.exited() {
			return ErrInvalidHandle
		}
		return fmt.Errorf("wake pump for %s: %w", cmd.kind, err)
	}
	return nil
}
