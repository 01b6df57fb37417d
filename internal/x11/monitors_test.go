package x11

import "testing"

func TestMonitorScale(t *testing.T) {
	tests := []struct {
		name string
		mon  Monitor
		want float64
	}{
		{name: "unknown physical size", mon: Monitor{Width: 1920}, want: 1},
		{name: "96 dpi", mon: Monitor{Width: 1920, MmWidth: 508}, want: 1},
		{name: "192 dpi", mon: Monitor{Width: 3840, MmWidth: 508}, want: 2},
		{name: "144 dpi", mon: Monitor{Width: 2880, MmWidth: 508}, want: 1.5},
		{name: "low dpi clamps", mon: Monitor{Width: 1024, MmWidth: 600}, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mon.Scale(); got != tt.want {
				t.Fatalf("Scale() = %v, want %v", got, tt.want)
			}
		})
	}
}
