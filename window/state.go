package window

import "fmt"

// Stage is the pump's position in the window lifecycle.
type Stage int

const (
	StageInitializing Stage = iota
	StageRunning
	StageShuttingDown
	StageDestroying
)

func (s Stage) String() string {
	switch s {
	case StageInitializing:
		return "initializing"
	case StageRunning:
		return "running"
	case StageShuttingDown:
		return "shutting-down"
	case StageDestroying:
		return "destroying"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// CursorMode controls whether the pointer may leave the window.
type CursorMode int

const (
	CursorNormal CursorMode = iota
	// CursorConfined keeps the pointer inside the window while it is
	// visible.
	CursorConfined
)

func (m CursorMode) String() string {
	switch m {
	case CursorNormal:
		return "normal"
	case CursorConfined:
		return "confined"
	default:
		return fmt.Sprintf("CursorMode(%d)", int(m))
	}
}

// ParseCursorMode parses "normal" or "confined".
func ParseCursorMode(s string) (CursorMode, error) {
	switch s {
	case "normal", "":
		return CursorNormal, nil
	case "confined":
		return CursorConfined, nil
	default:
		return 0, fmt.Errorf("unknown cursor mode %q (want normal or confined)", s)
	}
}

func (m CursorMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *CursorMode) UnmarshalText(text []byte) error {
	mode, err := ParseCursorMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// State is a consistent snapshot of the window's mutable properties.
// Snapshots are immutable; the pump publishes a new one for every change
// before queueing the message that describes it.
type State struct {
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	X         int     `json:"x"`
	Y         int     `json:"y"`
	Visible   bool    `json:"visible"`
	Focused   bool    `json:"focused"`
	Scale     float64 `json:"scale"`
	Title     string  `json:"title"`
	// Subtitle is shown after Title in the native title bar.
	Subtitle      string     `json:"subtitle,omitempty"`
	Fullscreen    bool       `json:"fullscreen"`
	CursorVisible bool       `json:"cursor_visible"`
	CursorMode    CursorMode `json:"cursor_mode"`
	Stage         Stage      `json:"stage"`
	Destroyed     bool       `json:"destroyed"`
}

// MarshalText lets Stage render by name in JSON and YAML.
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a stage name produced by MarshalText.
func (s *Stage) UnmarshalText(text []byte) error {
	for _, st := range []Stage{StageInitializing, StageRunning, StageShuttingDown, StageDestroying} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown stage %q", text)
}
