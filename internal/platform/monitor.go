package platform

// Monitor is one output of the display the window lives on.
type Monitor struct {
	Name    string
	Bounds  Rect
	Scale   float64
	Primary bool
}

// MonitorAt returns the monitor sharing the largest area with r. The second
// result is false when no monitor overlaps r.
func MonitorAt(monitors []Monitor, r Rect) (Monitor, bool) {
	best, bestArea := -1, 0
	for i, mon := range monitors {
		if area := overlap(mon.Bounds, r); area > bestArea {
			best, bestArea = i, area
		}
	}
	if best < 0 {
		return Monitor{}, false
	}
	return monitors[best], true
}

// PrimaryMonitor returns the monitor flagged primary, falling back to the
// one at the origin and then to the first.
func PrimaryMonitor(monitors []Monitor) (Monitor, bool) {
	for _, mon := range monitors {
		if mon.Primary {
			return mon, true
		}
	}
	if mon, ok := MonitorAt(monitors, Rect{Width: 1, Height: 1}); ok {
		return mon, true
	}
	if len(monitors) > 0 {
		return monitors[0], true
	}
	return Monitor{}, false
}

func overlap(a, b Rect) int {
	x1 := max(a.X, b.X)
	y1 := max(a.Y, b.Y)
	x2 := min(a.X+a.Width, b.X+b.Width)
	y2 := min(a.Y+a.Height, b.Y+b.Height)
	if x2 <= x1 || y2 <= y1 {
		return 0
	}
	return (x2 - x1) * (y2 - y1)
}
