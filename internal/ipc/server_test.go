package ipc

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/1broseidon/winpump/window"
)

type fakeController struct {
	mu       sync.Mutex
	state    window.State
	monitors []window.Monitor
	calls    []string
	posted   []any
	failErr  error
}

func (f *fakeController) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.failErr
}

func (f *fakeController) State() window.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeController) RawHandle() (window.RawHandle, error) {
	if f.State().Destroyed {
		return window.RawHandle{}, window.ErrInvalidHandle
	}
	return window.RawHandle{Backend: window.BackendHeadless, Window: 7}, nil
}

func (f *fakeController) SetTitle(title string) error {
	f.mu.Lock()
	f.state.Title = title
	f.mu.Unlock()
	return f.record("title:" + title)
}

func (f *fakeController) Monitors() []window.Monitor {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.monitors
}

func (f *fakeController) SetSubtitle(subtitle string) error {
	return f.record("subtitle:" + subtitle)
}

func (f *fakeController) SetPosition(x, y int) error {
	return f.record(fmt.Sprintf("position:%d,%d", x, y))
}

func (f *fakeController) SetSize(width, height int) error {
	return f.record(fmt.Sprintf("size:%dx%d", width, height))
}

func (f *fakeController) SetFullscreen(fullscreen bool) error {
	return f.record(fmt.Sprintf("fullscreen:%t", fullscreen))
}

func (f *fakeController) SetCursorVisible(visible bool) error {
	return f.record(fmt.Sprintf("cursor-visible:%t", visible))
}

func (f *fakeController) SetCursorMode(mode window.CursorMode) error {
	return f.record("cursor-mode:" + mode.String())
}

func (f *fakeController) SetVisible(visible bool) error {
	if visible {
		return f.record("show")
	}
	return f.record("hide")
}

func (f *fakeController) Focus() error         { return f.record("focus") }
func (f *fakeController) RequestRedraw() error { return f.record("redraw") }
func (f *fakeController) RequestClose() error  { return f.record("close") }

func (f *fakeController) PostUser(payload any) error {
	f.mu.Lock()
	f.posted = append(f.posted, payload)
	f.mu.Unlock()
	return f.record("post")
}

func (f *fakeController) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func startServer(t *testing.T, ctl Controller) (*Server, *Client) {
	t.Helper()
	socket := filepath.Join(t.TempDir(), "w.sock")
	srv := NewServer(socket, ctl)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	t.Cleanup(srv.Stop)
	return srv, NewClient(socket)
}

func TestClientCommandsReachController(t *testing.T) {
	ctl := &fakeController{}
	_, client := startServer(t, ctl)

	steps := []func() error{
		func() error { return client.SetTitle("hello") },
		func() error { return client.SetVisible(false) },
		func() error { return client.SetVisible(true) },
		client.Focus,
		client.Redraw,
		func() error { return client.Post(map[string]int{"n": 1}) },
		client.RequestClose,
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d error: %v", i, err)
		}
	}

	want := []string{"title:hello", "hide", "show", "focus", "redraw", "post", "close"}
	if diff := cmp.Diff(want, ctl.Calls()); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
	wantPosted := []any{map[string]any{"n": float64(1)}}
	if diff := cmp.Diff(wantPosted, ctl.posted); diff != "" {
		t.Fatalf("posted mismatch (-want +got):\n%s", diff)
	}
}

func TestGeometryAndCursorCommandsReachController(t *testing.T) {
	ctl := &fakeController{}
	_, client := startServer(t, ctl)

	hidden := false
	confined := window.CursorConfined
	steps := []func() error{
		func() error { return client.SetSubtitle("draft") },
		func() error { return client.SetPosition(-20, 40) },
		func() error { return client.SetSize(800, 600) },
		func() error { return client.SetFullscreen(true) },
		func() error { return client.SetCursor(&hidden, nil) },
		func() error { return client.SetCursor(nil, &confined) },
		func() error { return client.SetCursor(&hidden, &confined) },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d error: %v", i, err)
		}
	}

	want := []string{
		"subtitle:draft",
		"position:-20,40",
		"size:800x600",
		"fullscreen:true",
		"cursor-visible:false",
		"cursor-mode:confined",
		"cursor-visible:false",
		"cursor-mode:confined",
	}
	if diff := cmp.Diff(want, ctl.Calls()); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestSetCursorRejectsEmptyPayload(t *testing.T) {
	ctl := &fakeController{}
	_, client := startServer(t, ctl)

	err := client.SetCursor(nil, nil)
	if err == nil || !strings.Contains(err.Error(), "nothing to change") {
		t.Fatalf("SetCursor(nil, nil) error = %v", err)
	}
	if _, err := client.sendRequest(&Request{Command: CommandSetCursor, Payload: []byte(`{"mode":"grabbed"}`)}); err == nil {
		t.Fatal("unknown cursor mode error = nil, want error")
	}
	if len(ctl.Calls()) != 0 {
		t.Fatalf("controller calls = %v, want none", ctl.Calls())
	}
}

func TestGetStatus(t *testing.T) {
	ctl := &fakeController{
		state: window.State{
			Width: 640, Height: 480, Visible: true, Scale: 1, Title: "demo", Stage: window.StageRunning,
		},
		monitors: []window.Monitor{{Name: "DP-1", Width: 1920, Height: 1080, Scale: 1, Primary: true}},
	}
	srv, client := startServer(t, ctl)
	srv.Observe(window.Created{})
	srv.Observe(window.Resized{Width: 640, Height: 480})
	srv.Observe(window.Resized{Width: 640, Height: 480})

	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus() error: %v", err)
	}
	if diff := cmp.Diff(ctl.state, status.Window); diff != "" {
		t.Fatalf("window state mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(ctl.monitors, status.Monitors); diff != "" {
		t.Fatalf("monitors mismatch (-want +got):\n%s", diff)
	}
	if status.Handle.Window != 7 {
		t.Fatalf("Handle.Window = %d, want 7", status.Handle.Window)
	}
	wantCounts := map[string]int{"created": 1, "resized": 2}
	if diff := cmp.Diff(wantCounts, status.Messages); diff != "" {
		t.Fatalf("message counts mismatch (-want +got):\n%s", diff)
	}
	if status.LastMessage != "Resized(640x480)" {
		t.Fatalf("LastMessage = %q", status.LastMessage)
	}
}

func TestGetStatusAfterDestroyOmitsHandle(t *testing.T) {
	ctl := &fakeController{state: window.State{Stage: window.StageDestroying, Destroyed: true}}
	_, client := startServer(t, ctl)

	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus() error: %v", err)
	}
	if !status.Window.Destroyed || status.Handle.Window != 0 {
		t.Fatalf("status = %+v, want destroyed state without handle", status)
	}
}

func TestControllerErrorBecomesErrorResponse(t *testing.T) {
	ctl := &fakeController{failErr: window.ErrInvalidHandle}
	_, client := startServer(t, ctl)

	err := client.Redraw()
	if err == nil {
		t.Fatal("Redraw() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "Failed to request redraw") {
		t.Fatalf("Redraw() error = %q", err)
	}
}

func TestUnknownAndMalformedRequests(t *testing.T) {
	ctl := &fakeController{}
	srv, client := startServer(t, ctl)

	if _, err := client.sendRequest(&Request{Command: "NOPE"}); err == nil || !strings.Contains(err.Error(), "Unknown command") {
		t.Fatalf("unknown command error = %v", err)
	}
	if err := client.sendPayload(CommandSetVisible, "not-an-object"); err == nil {
		t.Fatal("malformed payload error = nil, want error")
	}

	conn, err := net.Dial("unix", srv.SocketPath())
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	defer conn.Close()
	conn.Write([]byte("{not json\n"))
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 512)
	n, _ := conn.Read(buf)
	if !strings.Contains(string(buf[:n]), "Invalid request") {
		t.Fatalf("response = %q, want invalid request error", buf[:n])
	}

	if len(ctl.Calls()) != 0 {
		t.Fatalf("controller calls = %v, want none", ctl.Calls())
	}
}

func TestStartRemovesStaleSocket(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "stale.sock")
	if err := os.WriteFile(socket, nil, 0600); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	srv := NewServer(socket, &fakeController{})
	if err := srv.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer srv.Stop()

	if err := NewClient(socket).Ping(); err != nil {
		t.Fatalf("Ping() error: %v", err)
	}
}

func TestStartRefusesLiveSocket(t *testing.T) {
	first, _ := startServer(t, &fakeController{})

	second := NewServer(first.SocketPath(), &fakeController{})
	err := second.Start()
	if !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("Start() error = %v, want ErrAlreadyRunning", err)
	}
}

func TestStopRemovesSocket(t *testing.T) {
	srv, client := startServer(t, &fakeController{})
	srv.Stop()

	if _, err := os.Stat(srv.SocketPath()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("socket still present after Stop: %v", err)
	}
	if err := client.Ping(); err == nil {
		t.Fatal("Ping() after Stop error = nil, want error")
	}
}

func TestServerDrivesHeadlessWindow(t *testing.T) {
	settings := window.DefaultSettings()
	settings.Backend = window.BackendHeadless
	settings.ClassName = t.Name()
	w, err := window.New(settings)
	if err != nil {
		t.Fatalf("window.New() error: %v", err)
	}
	defer w.Close()

	_, client := startServer(t, w)
	if err := client.Post("hello"); err != nil {
		t.Fatalf("Post() error: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for posted message")
		default:
		}
		msg, ok := w.Poll()
		if !ok {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		if user, isUser := msg.(window.User); isUser {
			if user.Payload != "hello" {
				t.Fatalf("User payload = %#v, want %q", user.Payload, "hello")
			}
			return
		}
	}
}
