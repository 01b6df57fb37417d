package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/1broseidon/winpump/internal/ipc"
	"github.com/1broseidon/winpump/window"
)

type fakeClient struct {
	status *ipc.StatusData
	err    error
	calls  []string
	posted []any
}

func (f *fakeClient) GetStatus() (*ipc.StatusData, error) { return f.status, f.err }

func (f *fakeClient) SetTitle(title string) error {
	f.calls = append(f.calls, "title:"+title)
	return f.err
}

func (f *fakeClient) SetSubtitle(subtitle string) error {
	f.calls = append(f.calls, "subtitle:"+subtitle)
	return f.err
}

func (f *fakeClient) SetPosition(x, y int) error {
	f.calls = append(f.calls, fmt.Sprintf("position:%d,%d", x, y))
	return f.err
}

func (f *fakeClient) SetSize(width, height int) error {
	f.calls = append(f.calls, fmt.Sprintf("size:%dx%d", width, height))
	return f.err
}

func (f *fakeClient) SetFullscreen(fullscreen bool) error {
	f.calls = append(f.calls, fmt.Sprintf("fullscreen:%t", fullscreen))
	return f.err
}

func (f *fakeClient) SetCursor(visible *bool, mode *window.CursorMode) error {
	call := "cursor"
	if visible != nil {
		call += fmt.Sprintf(" visible=%t", *visible)
	}
	if mode != nil {
		call += " mode=" + mode.String()
	}
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeClient) SetVisible(visible bool) error {
	if visible {
		f.calls = append(f.calls, "show")
	} else {
		f.calls = append(f.calls, "hide")
	}
	return f.err
}

func (f *fakeClient) Focus() error        { f.calls = append(f.calls, "focus"); return f.err }
func (f *fakeClient) Redraw() error       { f.calls = append(f.calls, "redraw"); return f.err }
func (f *fakeClient) RequestClose() error { f.calls = append(f.calls, "close"); return f.err }

func (f *fakeClient) Post(value any) error {
	f.calls = append(f.calls, "post")
	f.posted = append(f.posted, value)
	return f.err
}

func TestHandleStatus(t *testing.T) {
	client := &fakeClient{status: &ipc.StatusData{
		Window: window.State{
			Width: 1024, Height: 768, X: 10, Y: 20, Scale: 1.5,
			Visible: true, Focused: true, Title: "demo", Subtitle: "draft", Stage: window.StageRunning,
			Fullscreen: true, CursorVisible: true, CursorMode: window.CursorConfined,
		},
		Handle:        window.RawHandle{Backend: "x11", Window: 0x400001},
		Monitors:      []window.Monitor{{Name: "DP-1", Width: 2560, Height: 1440, Scale: 1.5, Primary: true}},
		UptimeSeconds: 12,
		Messages:      map[string]int{"created": 1},
		LastMessage:   "Created",
	}}
	s := NewServer(client)

	_, got, err := s.handleStatus(context.Background(), nil, StatusInput{})
	if err != nil {
		t.Fatalf("handleStatus() error: %v", err)
	}
	want := StatusOutput{
		Title: "demo", Subtitle: "draft", Width: 1024, Height: 768, X: 10, Y: 20, Scale: 1.5,
		Visible: true, Focused: true, Fullscreen: true, CursorVisible: true, CursorMode: "confined",
		Stage: "running", Backend: "x11", WindowID: 0x400001,
		Monitors:      []window.Monitor{{Name: "DP-1", Width: 2560, Height: 1440, Scale: 1.5, Primary: true}},
		UptimeSeconds: 12,
		Messages: map[string]int{"created": 1}, LastMessage: "Created",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("status mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleStatusConnectionError(t *testing.T) {
	s := NewServer(&fakeClient{err: errors.New("dial unix: no such file")})

	_, _, err := s.handleStatus(context.Background(), nil, StatusInput{})
	if err == nil || !strings.Contains(err.Error(), "window_status") {
		t.Fatalf("handleStatus() error = %v, want wrapped connection error", err)
	}
}

func TestControlToolsForward(t *testing.T) {
	client := &fakeClient{}
	s := NewServer(client)
	ctx := context.Background()

	var acks []AckOutput
	collect := func(_ any, out AckOutput, err error) {
		if err != nil {
			t.Fatalf("tool error: %v", err)
		}
		acks = append(acks, out)
	}
	collect(s.handleSetTitle(ctx, nil, SetTitleInput{Title: "x"}))
	collect(s.handleSetVisible(ctx, nil, SetVisibleInput{Visible: false}))
	collect(s.handleFocus(ctx, nil, EmptyInput{}))
	collect(s.handleRequestRedraw(ctx, nil, EmptyInput{}))
	collect(s.handlePost(ctx, nil, PostInput{Value: map[string]any{"k": "v"}}))
	collect(s.handleRequestClose(ctx, nil, EmptyInput{}))

	wantCalls := []string{"title:x", "hide", "focus", "redraw", "post", "close"}
	if diff := cmp.Diff(wantCalls, client.calls); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
	wantAcks := []AckOutput{
		{OK: true, Action: "set_title"},
		{OK: true, Action: "hide"},
		{OK: true, Action: "focus"},
		{OK: true, Action: "request_redraw"},
		{OK: true, Action: "post"},
		{OK: true, Action: "request_close"},
	}
	if diff := cmp.Diff(wantAcks, acks); diff != "" {
		t.Fatalf("acks mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{map[string]any{"k": "v"}}, client.posted); diff != "" {
		t.Fatalf("posted mismatch (-want +got):\n%s", diff)
	}
}

func TestGeometryAndCursorToolsForward(t *testing.T) {
	client := &fakeClient{}
	s := NewServer(client)
	ctx := context.Background()

	var acks []string
	collect := func(_ any, out AckOutput, err error) {
		if err != nil {
			t.Fatalf("tool error: %v", err)
		}
		acks = append(acks, out.Action)
	}
	hidden := false
	collect(s.handleSetSubtitle(ctx, nil, SetSubtitleInput{Subtitle: "draft"}))
	collect(s.handleSetPosition(ctx, nil, SetPositionInput{X: 5, Y: -5}))
	collect(s.handleSetSize(ctx, nil, SetSizeInput{Width: 320, Height: 200}))
	collect(s.handleSetFullscreen(ctx, nil, SetFullscreenInput{Fullscreen: true}))
	collect(s.handleSetFullscreen(ctx, nil, SetFullscreenInput{}))
	collect(s.handleSetCursor(ctx, nil, SetCursorInput{Visible: &hidden}))
	collect(s.handleSetCursor(ctx, nil, SetCursorInput{Mode: "confined"}))

	wantCalls := []string{
		"subtitle:draft",
		"position:5,-5",
		"size:320x200",
		"fullscreen:true",
		"fullscreen:false",
		"cursor visible=false",
		"cursor mode=confined",
	}
	if diff := cmp.Diff(wantCalls, client.calls); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
	wantAcks := []string{
		"set_subtitle", "set_position", "set_size",
		"enter_fullscreen", "leave_fullscreen", "set_cursor", "set_cursor",
	}
	if diff := cmp.Diff(wantAcks, acks); diff != "" {
		t.Fatalf("acks mismatch (-want +got):\n%s", diff)
	}
}

func TestSetCursorToolRejectsBadInput(t *testing.T) {
	client := &fakeClient{}
	s := NewServer(client)

	if _, _, err := s.handleSetCursor(context.Background(), nil, SetCursorInput{}); err == nil {
		t.Fatal("empty input error = nil, want error")
	}
	if _, _, err := s.handleSetCursor(context.Background(), nil, SetCursorInput{Mode: "grabbed"}); err == nil {
		t.Fatal("unknown mode error = nil, want error")
	}
	if len(client.calls) != 0 {
		t.Fatalf("calls = %v, want none", client.calls)
	}
}

func TestControlToolErrorIsReported(t *testing.T) {
	s := NewServer(&fakeClient{err: errors.New("winpump error: invalid window handle")})

	_, out, err := s.handleRequestRedraw(context.Background(), nil, EmptyInput{})
	if err == nil {
		t.Fatal("handleRequestRedraw() error = nil, want error")
	}
	if out.OK {
		t.Fatalf("ack = %+v, want OK=false", out)
	}
}
