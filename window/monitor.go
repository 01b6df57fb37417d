package window

import "github.com/1broseidon/winpump/internal/platform"

// Monitor describes one output of the window's display.
type Monitor struct {
	Name    string  `json:"name"`
	X       int     `json:"x"`
	Y       int     `json:"y"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Scale   float64 `json:"scale"`
	Primary bool    `json:"primary"`
}

func toMonitor(m platform.Monitor) Monitor {
	return Monitor{
		Name:    m.Name,
		X:       m.Bounds.X,
		Y:       m.Bounds.Y,
		Width:   m.Bounds.Width,
		Height:  m.Bounds.Height,
		Scale:   m.Scale,
		Primary: m.Primary,
	}
}

// Monitors lists the display's monitors as last reported by the pump. The
// list is empty when the backend cannot enumerate them.
func (w *Window) Monitors() []Monitor {
	monitors := *w.monitors.Load()
	out := make([]Monitor, 0, len(monitors))
	for _, m := range monitors {
		out = append(out, toMonitor(m))
	}
	return out
}

// CurrentMonitor returns the monitor holding most of the window.
func (w *Window) CurrentMonitor() (Monitor, bool) {
	st := w.state.Load()
	bounds := platform.Rect{X: st.X, Y: st.Y, Width: st.Width, Height: st.Height}
	m, ok := platform.MonitorAt(*w.monitors.Load(), bounds)
	if !ok {
		return Monitor{}, false
	}
	return toMonitor(m), true
}

// PrimaryMonitor returns the display's primary monitor.
func (w *Window) PrimaryMonitor() (Monitor, bool) {
	m, ok := platform.PrimaryMonitor(*w.monitors.Load())
	if !ok {
		return Monitor{}, false
	}
	return toMonitor(m), true
}
