package window

import (
	"fmt"
	"strings"
)

// Message is one translated window event. The set of variants is closed;
// switch on the concrete type.
type Message interface {
	// Kind is a stable lower-case name for the variant.
	Kind() string
	String() string
	isMessage()
}

// ButtonState is the state a key or button moved into.
type ButtonState int

const (
	Released ButtonState = iota
	Pressed
)

func (s ButtonState) String() string {
	if s == Pressed {
		return "pressed"
	}
	return "released"
}

// Modifiers is the set of modifier keys held during an input event.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModSuper
)

func (m Modifiers) String() string {
	if m == 0 {
		return "none"
	}
	var parts []string
	for _, mod := range []struct {
		bit  Modifiers
		name string
	}{
		{ModShift, "shift"},
		{ModCtrl, "ctrl"},
		{ModAlt, "alt"},
		{ModSuper, "super"},
	} {
		if m&mod.bit != 0 {
			parts = append(parts, mod.name)
		}
	}
	return strings.Join(parts, "+")
}

// Created is always the first message.
type Created struct{}

// CloseRequested reports a close request from the window manager or from
// RequestClose. It is advisory under CloseDefer.
type CloseRequested struct{}

// Destroyed is always the last message. Err is nil for an orderly
// destruction and describes the failure when the pump terminated
// abnormally.
type Destroyed struct {
	Err error
}

type Resized struct {
	Width  int
	Height int
}

type Moved struct {
	X int
	Y int
}

type FocusChanged struct {
	Focused bool
}

type ScaleFactorChanged struct {
	Scale float64
}

type VisibilityChanged struct {
	Visible bool
}

// RedrawRequested asks the consumer to repaint, either because the window
// was exposed or in answer to RequestRedraw.
type RedrawRequested struct{}

type Key struct {
	Code  uint32
	Name  string
	State ButtonState
	Mods  Modifiers
}

type MouseButton struct {
	Button int
	State  ButtonState
	X      int
	Y      int
	Mods   Modifiers
}

type MouseMove struct {
	X int
	Y int
}

// Scroll carries wheel motion in lines; positive DeltaY scrolls up.
type Scroll struct {
	DeltaX float64
	DeltaY float64
	X      int
	Y      int
}

// User carries a value posted with PostUser, in order with native events.
type User struct {
	Payload any
}

func (Created) isMessage()            {}
func (CloseRequested) isMessage()     {}
func (Destroyed) isMessage()          {}
func (Resized) isMessage()            {}
func (Moved) isMessage()              {}
func (FocusChanged) isMessage()       {}
func (ScaleFactorChanged) isMessage() {}
func (VisibilityChanged) isMessage()  {}
func (RedrawRequested) isMessage()    {}
func (Key) isMessage()                {}
func (MouseButton) isMessage()        {}
func (MouseMove) isMessage()          {}
func (Scroll) isMessage()             {}
func (User) isMessage()               {}

func (Created) Kind() string            { return "created" }
func (CloseRequested) Kind() string     { return "close_requested" }
func (Destroyed) Kind() string          { return "destroyed" }
func (Resized) Kind() string            { return "resized" }
func (Moved) Kind() string              { return "moved" }
func (FocusChanged) Kind() string       { return "focus_changed" }
func (ScaleFactorChanged) Kind() string { return "scale_factor_changed" }
func (VisibilityChanged) Kind() string  { return "visibility_changed" }
func (RedrawRequested) Kind() string    { return "redraw_requested" }
func (Key) Kind() string                { return "key" }
func (MouseButton) Kind() string        { return "mouse_button" }
func (MouseMove) Kind() string          { return "mouse_move" }
func (Scroll) Kind() string             { return "scroll" }
func (User) Kind() string               { return "user" }

func (Created) String() string        { return "Created" }
func (CloseRequested) String() string { return "CloseRequested" }

func (m Destroyed) String() string {
	if m.Err != nil {
		return fmt.Sprintf("Destroyed(err=%v)", m.Err)
	}
	return "Destroyed"
}

func (m Resized) String() string { return fmt.Sprintf("Resized(%dx%d)", m.Width, m.Height) }
func (m Moved) String() string   { return fmt.Sprintf("Moved(%d,%d)", m.X, m.Y) }

func (m FocusChanged) String() string {
	return fmt.Sprintf("FocusChanged(%t)", m.Focused)
}

func (m ScaleFactorChanged) String() string {
	return fmt.Sprintf("ScaleFactorChanged(%g)", m.Scale)
}

func (m VisibilityChanged) String() string {
	return fmt.Sprintf("VisibilityChanged(%t)", m.Visible)
}

func (RedrawRequested) String() string { return "RedrawRequested" }

func (m Key) String() string {
	name := m.Name
	if name == "" {
		name = fmt.Sprintf("#%d", m.Code)
	}
	if m.Mods != 0 {
		return fmt.Sprintf("Key(%s %s, %s)", name, m.State, m.Mods)
	}
	return fmt.Sprintf("Key(%s %s)", name, m.State)
}

func (m MouseButton) String() string {
	return fmt.Sprintf("MouseButton(%d %s at %d,%d)", m.Button, m.State, m.X, m.Y)
}

func (m MouseMove) String() string { return fmt.Sprintf("MouseMove(%d,%d)", m.X, m.Y) }

func (m Scroll) String() string {
	return fmt.Sprintf("Scroll(%g,%g at %d,%d)", m.DeltaX, m.DeltaY, m.X, m.Y)
}

func (m User) String() string { return fmt.Sprintf("User(%v)", m.Payload) }

// geometryKey marks the messages that may be coalesced.
func geometryKey(m Message) (string, bool) {
	switch m.(type) {
	case Resized, Moved, ScaleFactorChanged:
		return m.Kind(), true
	}
	return "", false
}
