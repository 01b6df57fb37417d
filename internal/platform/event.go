package platform

import "fmt"

// EventKind identifies a translated native event.
type EventKind int

const (
	EventNone EventKind = iota
	EventWake
	EventCloseRequest
	EventDestroyed
	EventConfigure
	EventFocus
	EventVisibility
	EventExpose
	EventKey
	EventButton
	EventMotion
	EventScroll
)

var eventKindNames = map[EventKind]string{
	EventNone:         "none",
	EventWake:         "wake",
	EventCloseRequest: "close-request",
	EventDestroyed:    "destroyed",
	EventConfigure:    "configure",
	EventFocus:        "focus",
	EventVisibility:   "visibility",
	EventExpose:       "expose",
	EventKey:          "key",
	EventButton:       "button",
	EventMotion:       "motion",
	EventScroll:       "scroll",
}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Modifiers is a bit set of held modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModSuper
)

// Event is a native event translated into neutral terms. Only the fields
// relevant to Kind are set.
type Event struct {
	Kind EventKind

	// EventConfigure: Bounds, Scale (0 when unknown). Monitors is set when
	// the monitor layout changed and nil otherwise.
	Bounds   Rect
	Scale    float64
	Monitors []Monitor

	// EventFocus / EventVisibility.
	Focused bool
	Visible bool

	// EventKey: Code, Name. EventButton: Button. Both: Pressed, Mods.
	Code    uint32
	Name    string
	Button  int
	Pressed bool
	Mods    Modifiers

	// EventButton / EventMotion / EventScroll pointer position.
	X int
	Y int

	// EventScroll.
	DeltaX float64
	DeltaY float64
}
