package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/1broseidon/winpump/internal/ipc"
	"github.com/1broseidon/winpump/window"
)

func TestControlArgumentsRejected(t *testing.T) {
	tests := []struct {
		name  string
		parse func([]string) (func(*ipc.Client) error, error)
		args  []string
	}{
		{name: "move x", parse: parseMove, args: []string{"left", "0"}},
		{name: "move y", parse: parseMove, args: []string{"0", "1.5"}},
		{name: "resize", parse: parseResize, args: []string{"800"}},
		{name: "fullscreen", parse: parseFullscreen, args: []string{"maybe"}},
		{name: "cursor", parse: parseCursor, args: []string{"grabbed"}},
		{name: "cursor empty", parse: parseCursor, args: []string{""}},
	}
	for _, tt := range tests {
		if _, err := tt.parse(tt.args); err == nil {
			t.Errorf("%s: parse(%q) error = nil, want error", tt.name, tt.args)
		}
	}
}

func TestControlCommandsDriveWindow(t *testing.T) {
	settings := window.DefaultSettings()
	settings.Backend = window.BackendHeadless
	settings.ClassName = t.Name()
	w, err := window.New(settings)
	if err != nil {
		t.Fatalf("window.New() error: %v", err)
	}
	defer w.Close()

	socket := filepath.Join(t.TempDir(), "w.sock")
	srv := ipc.NewServer(socket, w)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer srv.Stop()
	client := ipc.NewClient(socket)

	steps := []struct {
		parse func([]string) (func(*ipc.Client) error, error)
		args  []string
		done  func(window.State) bool
	}{
		{parseSubtitle, []string{"draft"}, func(st window.State) bool { return st.Subtitle == "draft" }},
		{parseMove, []string{"30", "-40"}, func(st window.State) bool { return st.X == 30 && st.Y == -40 }},
		{parseResize, []string{"300x200"}, func(st window.State) bool { return st.Width == 300 && st.Height == 200 }},
		{parseFullscreen, []string{"on"}, func(st window.State) bool { return st.Fullscreen }},
		{parseFullscreen, []string{"off"}, func(st window.State) bool { return !st.Fullscreen }},
		{parseCursor, []string{"hide"}, func(st window.State) bool { return !st.CursorVisible }},
		{parseCursor, []string{"confined"}, func(st window.State) bool { return st.CursorMode == window.CursorConfined }},
	}
	for _, step := range steps {
		fn, err := step.parse(step.args)
		if err != nil {
			t.Fatalf("parse(%q) error: %v", step.args, err)
		}
		if err := fn(client); err != nil {
			t.Fatalf("command %q error: %v", step.args, err)
		}
		deadline := time.Now().Add(2 * time.Second)
		for !step.done(w.State()) {
			if time.Now().After(deadline) {
				t.Fatalf("command %q never reached the window state: %+v", step.args, w.State())
			}
			time.Sleep(5 * time.Millisecond)
		}
	}

	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus() error: %v", err)
	}
	if len(status.Monitors) == 0 || !status.Monitors[0].Primary {
		t.Fatalf("status monitors = %+v, want the headless primary monitor", status.Monitors)
	}
}

func TestFormatMonitor(t *testing.T) {
	m := window.Monitor{Name: "DP-1", X: 1920, Width: 2560, Height: 1440, Scale: 1.5, Primary: true}
	if got, want := formatMonitor(m), "DP-1 2560x1440+1920+0 scale=1.50 primary"; got != want {
		t.Fatalf("formatMonitor() = %q, want %q", got, want)
	}
}
