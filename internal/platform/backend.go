package platform

import (
	"errors"
	"fmt"
	"image"
)

// WindowID is a platform-neutral native window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Config is everything a driver needs to create the native window.
type Config struct {
	Title       string
	ClassName   string
	Width       int
	Height      int
	X           int
	Y           int
	HasPosition bool
	Resizable   bool
	Visible     bool
	Decorations bool
	Focus       bool
	Icon        image.Image
	Display     string
}

// Handle describes a created native window for interop.
type Handle struct {
	Backend string
	Display string
	Window  WindowID
}

// Geometry is the window state known right after creation.
type Geometry struct {
	Bounds   Rect
	Scale    float64
	Visible  bool
	Focused  bool
	Monitors []Monitor
}

// CommandKind identifies a control command executed on the pump thread.
type CommandKind int

const (
	CommandSetTitle CommandKind = iota
	CommandSetVisible
	CommandRedraw
	CommandFocus
	CommandSetPosition
	CommandSetSize
	CommandSetFullscreen
	CommandSetCursorVisible
	CommandSetCursorMode
)

func (k CommandKind) String() string {
	switch k {
	case CommandSetTitle:
		return "set-title"
	case CommandSetVisible:
		return "set-visible"
	case CommandRedraw:
		return "redraw"
	case CommandFocus:
		return "focus"
	case CommandSetPosition:
		return "set-position"
	case CommandSetSize:
		return "set-size"
	case CommandSetFullscreen:
		return "set-fullscreen"
	case CommandSetCursorVisible:
		return "set-cursor-visible"
	case CommandSetCursorMode:
		return "set-cursor-mode"
	default:
		return fmt.Sprintf("command(%d)", int(k))
	}
}

// Command is a native mutation requested by the consumer. Only the fields
// relevant to Kind are set.
type Command struct {
	Kind  CommandKind
	Title string
	// CommandSetVisible and CommandSetCursorVisible.
	Visible bool
	// CommandSetPosition: X, Y. CommandSetSize: Width, Height.
	X      int
	Y      int
	Width  int
	Height int

	Fullscreen bool
	// Confine keeps the pointer inside the window (CommandSetCursorMode).
	Confine bool
}

// NativeError is a creation or runtime failure reported by the windowing
// subsystem. Code is the native error code, 0 when there is none.
type NativeError struct {
	Op   string
	Code int
	Err  error
}

func (e *NativeError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s: native error %d: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NativeError) Unwrap() error { return e.Err }

// ErrConnectionClosed is returned by NextEvent once the native connection is
// gone without a destroy notification.
var ErrConnectionClosed = errors.New("native connection closed")

// Driver abstracts one native window and its event source.
//
// Open, NextEvent, Apply, Destroy and Close are only ever called from the
// goroutine that owns the window (locked to its OS thread). Wake is the only
// method safe to call from any goroutine.
type Driver interface {
	// Name is the backend name reported in handles.
	Name() string
	// Open creates the native window.
	Open(cfg Config) (Handle, Geometry, error)
	// NextEvent blocks until the next native event.
	NextEvent() (Event, error)
	// Wake posts an EventWake to the owning thread.
	Wake() error
	// Apply executes a control command.
	Apply(cmd Command) error
	// Destroy requests destruction; an EventDestroyed follows.
	Destroy() error
	// Close releases the native connection. It is the last call.
	Close() error
}

// New returns the driver for a backend name.
func New(backend string) (Driver, error) {
	switch backend {
	case "", BackendX11:
		return newX11Driver()
	case BackendHeadless:
		return NewHeadless(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}

const (
	BackendX11      = "x11"
	BackendHeadless = "headless"
)
