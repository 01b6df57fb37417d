package window

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/1broseidon/winpump/internal/platform"
)

type commandKind int

const (
	cmdNative commandKind = iota
	cmdClose
	cmdDestroy
	cmdKeepOpen
	cmdUser
	cmdTitle
	cmdSubtitle
)

func (k commandKind) String() string {
	switch k {
	case cmdNative:
		return "native"
	case cmdClose:
		return "close"
	case cmdDestroy:
		return "destroy"
	case cmdKeepOpen:
		return "keep-open"
	case cmdUser:
		return "user"
	case cmdTitle:
		return "title"
	case cmdSubtitle:
		return "subtitle"
	default:
		return fmt.Sprintf("command(%d)", int(k))
	}
}

type command struct {
	kind    commandKind
	native  platform.Command
	text    string
	payload any
}

// outcome is written exactly once to the creation barrier.
type outcome struct {
	err error
}

// pump owns the native window for its whole life. It runs on its own OS
// thread; the thread is not unlocked, so the runtime discards it when the
// goroutine returns.
func (w *Window) pump(ready chan<- outcome) {
	runtime.LockOSThread()
	defer close(w.done)

	signaled := false
	defer func() {
		r := recover()
		switch {
		case !signaled:
			// Open panicked or the goroutine exited through Goexit.
			w.driver.Close()
			ready <- outcome{err: &CreationError{
				Kind: ThreadSpawnFailed,
				Err:  fmt.Errorf("pump exited before the window was created: %v", r),
			}}
		case r != nil:
			w.logger.Error("pump panicked", "panic", r)
			w.finish(fmt.Errorf("pump panicked: %v", r))
			w.messages.Close()
		case !w.finished:
			// Goexit: end the stream without Destroyed.
			w.driver.Close()
			w.messages.Close()
		}
	}()

	if err := w.open(); err != nil {
		w.logger.Error("window creation failed", "error", err)
		w.driver.Close()
		signaled = true
		ready <- outcome{err: err}
		return
	}

	w.logger.Debug("window created", "window", w.handle.Window, "display", w.handle.Display)
	w.messages.Push(Created{})
	signaled = true
	ready <- outcome{}

	w.loop()
}

func (w *Window) open() error {
	s := w.settings
	cfg := platform.Config{
		Title:       s.Title,
		ClassName:   s.ClassName,
		Width:       s.Width,
		Height:      s.Height,
		Resizable:   s.Resizable,
		Visible:     s.Visible,
		Decorations: s.Decorations,
		Focus:       s.Focus == FocusOnCreate,
		Icon:        s.Icon,
		Display:     s.Display,
	}
	if cfg.ClassName == "" {
		cfg.ClassName = DefaultClassName
	}
	if s.Position != nil {
		cfg.X, cfg.Y = s.Position.X, s.Position.Y
		cfg.HasPosition = true
	}

	handle, geom, err := w.driver.Open(cfg)
	if err != nil {
		cerr := &CreationError{Kind: CreationFailed, Err: err}
		var nerr *platform.NativeError
		if errors.As(err, &nerr) {
			cerr.Code = nerr.Code
		}
		return cerr
	}

	w.handle = handle
	w.monitors.Store(&geom.Monitors)
	w.state.Store(&State{
		Width:         geom.Bounds.Width,
		Height:        geom.Bounds.Height,
		X:             geom.Bounds.X,
		Y:             geom.Bounds.Y,
		Visible:       geom.Visible,
		Focused:       geom.Focused,
		Scale:         geom.Scale,
		Title:         s.Title,
		CursorVisible: true,
		Stage:         StageRunning,
	})
	return nil
}

// loop retrieves and dispatches native events until the window is gone.
func (w *Window) loop() {
	for {
		ev, err := w.driver.NextEvent()
		if err != nil {
			w.logger.Error("event retrieval failed", "error", err)
			w.finish(fmt.Errorf("retrieve event: %w", err))
			return
		}
		if ev.Kind == platform.EventDestroyed {
			w.logger.Debug("window destroyed")
			w.finish(nil)
			return
		}
		if err := w.dispatch(ev); err != nil {
			w.logger.Error("pump failed", "event", ev.Kind, "error", err)
			w.finish(err)
			return
		}
	}
}

func (w *Window) dispatch(ev platform.Event) error {
	switch ev.Kind {
	case platform.EventWake:
		return w.runCommands()

	case platform.EventCloseRequest:
		return w.closeRequested()

	case platform.EventConfigure:
		w.configure(ev)

	case platform.EventFocus:
		if w.state.Load().Focused != ev.Focused {
			if !ev.Focused {
				// Releases are not delivered to an unfocused window.
				w.input.Store(&input{})
			}
			w.update(func(st *State) { st.Focused = ev.Focused })
			w.messages.Push(FocusChanged{Focused: ev.Focused})
		}

	case platform.EventVisibility:
		if w.state.Load().Visible != ev.Visible {
			w.update(func(st *State) { st.Visible = ev.Visible })
			w.messages.Push(VisibilityChanged{Visible: ev.Visible})
		}

	case platform.EventExpose:
		w.redrawPending.Store(false)
		w.messages.Push(RedrawRequested{})

	case platform.EventKey:
		mods := modifiers(ev.Mods)
		w.input.Store(w.input.Load().withKey(ev.Code, ev.Name, ev.Pressed, mods))
		w.messages.Push(Key{
			Code:  ev.Code,
			Name:  ev.Name,
			State: buttonState(ev.Pressed),
			Mods:  mods,
		})

	case platform.EventButton:
		w.input.Store(w.input.Load().withButton(ev.Button, ev.Pressed, modifiers(ev.Mods)))
		w.messages.Push(MouseButton{
			Button: ev.Button,
			State:  buttonState(ev.Pressed),
			X:      ev.X,
			Y:      ev.Y,
			Mods:   modifiers(ev.Mods),
		})

	case platform.EventMotion:
		w.input.Store(w.input.Load().withMods(modifiers(ev.Mods)))
		w.messages.Push(MouseMove{X: ev.X, Y: ev.Y})

	case platform.EventScroll:
		w.messages.Push(Scroll{DeltaX: ev.DeltaX, DeltaY: ev.DeltaY, X: ev.X, Y: ev.Y})
	}
	return nil
}

// configure publishes the new geometry, then queues one message per
// property that changed.
func (w *Window) configure(ev platform.Event) {
	if ev.Monitors != nil {
		monitors := ev.Monitors
		w.monitors.Store(&monitors)
	}
	old := w.state.Load()
	b := ev.Bounds
	resized := b.Width != old.Width || b.Height != old.Height
	moved := b.X != old.X || b.Y != old.Y
	rescaled := ev.Scale != 0 && ev.Scale != old.Scale
	if !resized && !moved && !rescaled {
		return
	}

	w.update(func(st *State) {
		st.Width, st.Height = b.Width, b.Height
		st.X, st.Y = b.X, b.Y
		if rescaled {
			st.Scale = ev.Scale
		}
	})
	if resized {
		w.messages.Push(Resized{Width: b.Width, Height: b.Height})
	}
	if moved {
		w.messages.Push(Moved{X: b.X, Y: b.Y})
	}
	if rescaled {
		w.messages.Push(ScaleFactorChanged{Scale: ev.Scale})
	}
}

func (w *Window) runCommands() error {
	w.cmdMu.Lock()
	cmds := w.commands
	w.commands = nil
	w.cmdMu.Unlock()

	for _, cmd := range cmds {
		if err := w.execute(cmd); err != nil {
			return err
		}
	}
	return nil
}

// execute runs one command on the pump thread. Only failures that leave
// the window unusable are returned.
func (w *Window) execute(cmd command) error {
	stage := w.state.Load().Stage
	if stage == StageDestroying {
		w.logger.Debug("command dropped after destroy", "command", cmd.kind)
		return nil
	}

	switch cmd.kind {
	case cmdNative:
		if err := w.driver.Apply(cmd.native); err != nil {
			w.logger.Warn("command failed", "command", cmd.native.Kind, "error", err)
			if cmd.native.Kind == platform.CommandRedraw {
				w.redrawPending.Store(false)
			}
			return nil
		}
		w.applied(cmd.native)
	case cmdTitle, cmdSubtitle:
		st := w.state.Load()
		title, subtitle := st.Title, st.Subtitle
		if cmd.kind == cmdTitle {
			title = cmd.text
		} else {
			subtitle = cmd.text
		}
		native := platform.Command{Kind: platform.CommandSetTitle, Title: title + subtitle}
		if err := w.driver.Apply(native); err != nil {
			w.logger.Warn("command failed", "command", cmd.kind, "error", err)
			return nil
		}
		w.update(func(st *State) { st.Title, st.Subtitle = title, subtitle })
	case cmdClose:
		return w.closeRequested()
	case cmdDestroy:
		return w.commitDestroy()
	case cmdKeepOpen:
		if stage == StageShuttingDown {
			w.logger.Debug("deferred close cancelled")
			w.update(func(st *State) { st.Stage = StageRunning })
		}
	case cmdUser:
		w.messages.Push(User{Payload: cmd.payload})
	}
	return nil
}

// applied records the effect of a native command that produces no event of
// its own.
func (w *Window) applied(cmd platform.Command) {
	switch cmd.Kind {
	case platform.CommandSetFullscreen:
		w.update(func(st *State) { st.Fullscreen = cmd.Fullscreen })
	case platform.CommandSetCursorVisible:
		w.update(func(st *State) { st.CursorVisible = cmd.Visible })
	case platform.CommandSetCursorMode:
		mode := CursorNormal
		if cmd.Confine {
			mode = CursorConfined
		}
		w.update(func(st *State) { st.CursorMode = mode })
	}
}

func (w *Window) closeRequested() error {
	if w.state.Load().Stage != StageRunning {
		return nil
	}
	w.update(func(st *State) { st.Stage = StageShuttingDown })
	w.messages.Push(CloseRequested{})
	if w.settings.Close == CloseAuto {
		return w.commitDestroy()
	}
	return nil
}

// commitDestroy starts the irreversible part of shutdown. The loop keeps
// pumping until the native destroy notification arrives.
func (w *Window) commitDestroy() error {
	if w.state.Load().Stage == StageDestroying {
		return nil
	}
	w.update(func(st *State) { st.Stage = StageDestroying })
	if err := w.driver.Destroy(); err != nil {
		return fmt.Errorf("destroy window: %w", err)
	}
	return nil
}

// finish releases the native connection, marks the state destroyed and
// queues the terminal message. It runs at most once.
func (w *Window) finish(cause error) {
	if w.finished {
		return
	}
	w.finished = true

	if err := w.driver.Close(); err != nil {
		w.logger.Warn("closing native connection failed", "error", err)
	}
	w.update(func(st *State) {
		st.Stage = StageDestroying
		st.Destroyed = true
	})
	w.messages.Push(Destroyed{Err: cause})
	w.messages.Close()
}

// update publishes a modified copy of the current state. Only the pump
// calls it, so there is a single writer.
func (w *Window) update(mutate func(*State)) {
	next := *w.state.Load()
	mutate(&next)
	w.state.Store(&next)
}

func buttonState(pressed bool) ButtonState {
	if pressed {
		return Pressed
	}
	return Released
}

func modifiers(m platform.Modifiers) Modifiers {
	var out Modifiers
	if m&platform.ModShift != 0 {
		out |= ModShift
	}
	if m&platform.ModCtrl != 0 {
		out |= ModCtrl
	}
	if m&platform.ModAlt != 0 {
		out |= ModAlt
	}
	if m&platform.ModSuper != 0 {
		out |= ModSuper
	}
	return out
}
