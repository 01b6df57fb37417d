package x11

import (
	"fmt"
	"math"

	"github.com/BurntSushi/xgb/randr"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
	// MmWidth is the physical width reported by the output, 0 if unknown.
	MmWidth int
	Primary bool
}

// Scale is the monitor's DPI relative to 96, rounded to quarter steps and
// never below 1.
func (m Monitor) Scale() float64 {
	if m.MmWidth <= 0 || m.Width <= 0 {
		return 1
	}
	dpi := float64(m.Width) / (float64(m.MmWidth) / 25.4)
	scale := math.Round(dpi/96*4) / 4
	if scale < 1 {
		return 1
	}
	return scale
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var primary randr.Output
	if reply, err := randr.GetOutputPrimary(c.Conn(), c.Root).Reply(); err == nil {
		primary = reply.Output
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		mon := Monitor{
			ID:     i,
			Name:   fmt.Sprintf("Monitor%d", i),
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		}
		for _, out := range crtcInfo.Outputs {
			if primary != 0 && out == primary {
				mon.Primary = true
			}
		}
		outputInfo, err := randr.GetOutputInfo(c.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			mon.Name = string(outputInfo.Name)
			mon.MmWidth = int(outputInfo.MmWidth)
		}
		monitors = append(monitors, mon)
	}

	return monitors, nil
}
