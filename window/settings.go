package window

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
)

// Defaults used by DefaultSettings.
const (
	DefaultTitle             = "winpump"
	DefaultWidth             = 800
	DefaultHeight            = 600
	DefaultClassName         = "winpump"
	DefaultCoalesceThreshold = 64
)

// Geometry limits. X11 carries sizes as 16-bit unsigned and positions as
// 16-bit signed values.
const (
	MaxDimension  = 65535
	MinCoordinate = -32768
	MaxCoordinate = 32767
)

// Backends accepted in Settings.Backend.
const (
	BackendX11      = "x11"
	BackendHeadless = "headless"
)

// Position is an outer window position in screen pixels.
type Position struct {
	X int
	Y int
}

// FocusPolicy controls whether the window asks for input focus when it is
// first shown.
type FocusPolicy int

const (
	FocusOnCreate FocusPolicy = iota
	FocusNone
)

func (p FocusPolicy) String() string {
	switch p {
	case FocusOnCreate:
		return "on-create"
	case FocusNone:
		return "none"
	default:
		return fmt.Sprintf("FocusPolicy(%d)", int(p))
	}
}

// ParseFocusPolicy parses "on-create" or "none".
func ParseFocusPolicy(s string) (FocusPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on-create", "":
		return FocusOnCreate, nil
	case "none":
		return FocusNone, nil
	default:
		return 0, fmt.Errorf("unknown focus policy %q (want on-create or none)", s)
	}
}

// ClosePolicy decides what happens after a close request.
type ClosePolicy int

const (
	// CloseAuto destroys the window right after CloseRequested is queued.
	CloseAuto ClosePolicy = iota
	// CloseDefer leaves the decision to the consumer: Destroy commits,
	// KeepOpen cancels.
	CloseDefer
)

func (p ClosePolicy) String() string {
	switch p {
	case CloseAuto:
		return "auto"
	case CloseDefer:
		return "defer"
	default:
		return fmt.Sprintf("ClosePolicy(%d)", int(p))
	}
}

// ParseClosePolicy parses "auto" or "defer".
func ParseClosePolicy(s string) (ClosePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto", "":
		return CloseAuto, nil
	case "defer":
		return CloseDefer, nil
	default:
		return 0, fmt.Errorf("unknown close policy %q (want auto or defer)", s)
	}
}

// Settings is the immutable configuration consumed once by New.
type Settings struct {
	Title  string
	Width  int
	Height int
	// Position is the requested outer position; nil leaves placement to
	// the window manager.
	Position    *Position
	Resizable   bool
	Visible     bool
	Decorations bool
	Focus       FocusPolicy
	Icon        image.Image
	ClassName   string
	Close       ClosePolicy

	// CoalesceGeometry lets a stalled consumer receive only the latest of
	// consecutive Resized, Moved or ScaleFactorChanged messages once
	// CoalesceThreshold messages are waiting. Input and lifecycle messages
	// are never coalesced.
	CoalesceGeometry  bool
	CoalesceThreshold int

	Backend string
	Display string
	Logger  *slog.Logger
}

// DefaultSettings returns a visible, resizable, decorated 800x600 window.
func DefaultSettings() Settings {
	return Settings{
		Title:             DefaultTitle,
		Width:             DefaultWidth,
		Height:            DefaultHeight,
		Resizable:         true,
		Visible:           true,
		Decorations:       true,
		Focus:             FocusOnCreate,
		ClassName:         DefaultClassName,
		Close:             CloseAuto,
		CoalesceThreshold: DefaultCoalesceThreshold,
		Backend:           BackendX11,
	}
}

// Validate reports every problem with s at once.
func (s Settings) Validate() error {
	var errs []error
	if err := checkSize(s.Width, s.Height); err != nil {
		errs = append(errs, err)
	}
	if s.Position != nil {
		if err := checkPosition(s.Position.X, s.Position.Y); err != nil {
			errs = append(errs, err)
		}
	}
	switch s.Backend {
	case "", BackendX11, BackendHeadless:
	default:
		errs = append(errs, fmt.Errorf("unknown backend %q (want %s or %s)", s.Backend, BackendX11, BackendHeadless))
	}
	if s.Focus != FocusOnCreate && s.Focus != FocusNone {
		errs = append(errs, fmt.Errorf("invalid focus policy %s", s.Focus))
	}
	if s.Close != CloseAuto && s.Close != CloseDefer {
		errs = append(errs, fmt.Errorf("invalid close policy %s", s.Close))
	}
	if s.CoalesceGeometry && s.CoalesceThreshold < 1 {
		errs = append(errs, fmt.Errorf("coalesce threshold must be at least 1, got %d", s.CoalesceThreshold))
	}
	return errors.Join(errs...)
}

func checkSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("size must be positive, got %dx%d", width, height)
	}
	if width > MaxDimension || height > MaxDimension {
		return fmt.Errorf("size must not exceed %d, got %dx%d", MaxDimension, width, height)
	}
	return nil
}

func checkPosition(x, y int) error {
	if x < MinCoordinate || x > MaxCoordinate || y < MinCoordinate || y > MaxCoordinate {
		return fmt.Errorf("position must be within %d..%d, got %d,%d", MinCoordinate, MaxCoordinate, x, y)
	}
	return nil
}
