package platform

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func openHeadless(t *testing.T, cfg Config) *Headless {
	t.Helper()
	h := NewHeadless()
	if _, _, err := h.Open(cfg); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return h
}

func TestHeadlessOpenGeometry(t *testing.T) {
	h := NewHeadless()
	handle, geom, err := h.Open(Config{ClassName: t.Name(), Width: 640, Height: 480, X: 3, Y: 4, Visible: true, Focus: true})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if handle.Backend != BackendHeadless || handle.Window == 0 {
		t.Fatalf("Open() handle = %+v", handle)
	}
	want := Geometry{
		Bounds:   Rect{X: 3, Y: 4, Width: 640, Height: 480},
		Scale:    1,
		Visible:  true,
		Focused:  true,
		Monitors: DefaultHeadlessMonitors,
	}
	if diff := cmp.Diff(want, geom); diff != "" {
		t.Fatalf("Open() geometry mismatch (-want +got):\n%s", diff)
	}
}

func TestHeadlessOpenRejectsEmptySize(t *testing.T) {
	_, _, err := NewHeadless().Open(Config{ClassName: t.Name()})
	var nerr *NativeError
	if !errors.As(err, &nerr) || nerr.Code != 2 {
		t.Fatalf("Open() error = %v, want NativeError code 2", err)
	}
}

func TestHeadlessRegistersClassOnce(t *testing.T) {
	key := ClassKey(BackendHeadless, "", t.Name())
	for i := 1; i <= 3; i++ {
		openHeadless(t, Config{ClassName: t.Name(), Width: 1, Height: 1})
		if got := ClassUses(key); got != i {
			t.Fatalf("ClassUses() = %d, want %d", got, i)
		}
	}
}

func TestRegisterClassRetriesAfterFailure(t *testing.T) {
	key := ClassKey("test", "", t.Name())
	calls := 0
	failing := func() error {
		calls++
		return errors.New("no")
	}
	if err := registerClass(key, failing); err == nil {
		t.Fatalf("registerClass() error = nil, want failure")
	}
	if ClassUses(key) != 0 {
		t.Fatalf("failed registration was recorded")
	}
	if err := registerClass(key, func() error { calls++; return nil }); err != nil {
		t.Fatalf("registerClass() error = %v", err)
	}
	if err := registerClass(key, failing); err != nil {
		t.Fatalf("registerClass() re-ran register: %v", err)
	}
	if calls != 2 {
		t.Fatalf("register called %d times, want 2", calls)
	}
}

func TestHeadlessCommandReactions(t *testing.T) {
	h := openHeadless(t, Config{ClassName: t.Name(), Width: 10, Height: 10, Visible: true})

	cmds := []Command{
		{Kind: CommandSetTitle, Title: "t"},
		{Kind: CommandSetVisible, Visible: true}, // unchanged: no event
		{Kind: CommandSetVisible, Visible: false},
		{Kind: CommandRedraw},
	}
	for _, cmd := range cmds {
		if err := h.Apply(cmd); err != nil {
			t.Fatalf("Apply(%s) error = %v", cmd.Kind, err)
		}
	}

	for _, want := range []EventKind{EventVisibility, EventExpose} {
		ev, err := h.NextEvent()
		if err != nil {
			t.Fatalf("NextEvent() error = %v", err)
		}
		if ev.Kind != want {
			t.Fatalf("NextEvent() kind = %v, want %v", ev.Kind, want)
		}
	}
	if h.Title() != "t" {
		t.Fatalf("Title() = %q, want t", h.Title())
	}
	if got := len(h.Applied()); got != len(cmds) {
		t.Fatalf("Applied() has %d commands, want %d", got, len(cmds))
	}
}

func TestHeadlessGeometryReactions(t *testing.T) {
	h := openHeadless(t, Config{ClassName: t.Name(), X: 5, Y: 5, Width: 100, Height: 100, Visible: true})

	cmds := []Command{
		{Kind: CommandSetPosition, X: 20, Y: 30},
		{Kind: CommandSetPosition, X: 20, Y: 30}, // unchanged: no event
		{Kind: CommandSetSize, Width: 300, Height: 200},
		{Kind: CommandSetFullscreen, Fullscreen: true},
		{Kind: CommandSetFullscreen, Fullscreen: true}, // already fullscreen
		{Kind: CommandSetFullscreen},
	}
	for _, cmd := range cmds {
		if err := h.Apply(cmd); err != nil {
			t.Fatalf("Apply(%s) error = %v", cmd.Kind, err)
		}
	}

	want := []Rect{
		{X: 20, Y: 30, Width: 100, Height: 100},
		{X: 20, Y: 30, Width: 300, Height: 200},
		{Width: 1920, Height: 1080},
		{X: 20, Y: 30, Width: 300, Height: 200},
	}
	var got []Rect
	for range want {
		ev, err := h.NextEvent()
		if err != nil {
			t.Fatalf("NextEvent() error = %v", err)
		}
		if ev.Kind != EventConfigure {
			t.Fatalf("NextEvent() kind = %v, want configure", ev.Kind)
		}
		got = append(got, ev.Bounds)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("configure bounds mismatch (-want +got):\n%s", diff)
	}
}

func TestHeadlessCursor(t *testing.T) {
	h := openHeadless(t, Config{ClassName: t.Name(), Width: 10, Height: 10})

	// Not mapped: the grab is refused.
	if err := h.Apply(Command{Kind: CommandSetCursorMode, Confine: true}); err == nil {
		t.Fatalf("confine on a hidden window error = nil")
	}
	if err := h.Apply(Command{Kind: CommandSetVisible, Visible: true}); err != nil {
		t.Fatalf("Apply(set-visible) error = %v", err)
	}
	if err := h.Apply(Command{Kind: CommandSetCursorMode, Confine: true}); err != nil {
		t.Fatalf("confine error = %v", err)
	}
	if err := h.Apply(Command{Kind: CommandSetCursorVisible, Visible: false}); err != nil {
		t.Fatalf("hide cursor error = %v", err)
	}
	if got, want := h.Cursor(), (CursorState{Hidden: true, Confined: true}); got != want {
		t.Fatalf("Cursor() = %+v, want %+v", got, want)
	}
}

func TestHeadlessSetMonitorsReportsLayout(t *testing.T) {
	h := openHeadless(t, Config{ClassName: t.Name(), Width: 10, Height: 10})
	layout := []Monitor{{Name: "hidpi", Bounds: Rect{Width: 3840, Height: 2160}, Scale: 2}}
	h.SetMonitors(layout)

	ev, err := h.NextEvent()
	if err != nil {
		t.Fatalf("NextEvent() error = %v", err)
	}
	if ev.Kind != EventConfigure || ev.Scale != 2 {
		t.Fatalf("NextEvent() = %v scale %v, want configure at scale 2", ev.Kind, ev.Scale)
	}
	if diff := cmp.Diff(layout, ev.Monitors); diff != "" {
		t.Fatalf("monitors mismatch (-want +got):\n%s", diff)
	}
}

func TestHeadlessDestroyThenClose(t *testing.T) {
	h := openHeadless(t, Config{ClassName: t.Name(), Width: 10, Height: 10})

	if err := h.Destroy(); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}
	if err := h.Destroy(); err != nil {
		t.Fatalf("second Destroy() error = %v", err)
	}
	ev, err := h.NextEvent()
	if err != nil || ev.Kind != EventDestroyed {
		t.Fatalf("NextEvent() = %v, %v, want destroyed", ev.Kind, err)
	}
	if err := h.Apply(Command{Kind: CommandRedraw}); err == nil {
		t.Fatalf("Apply() after Destroy error = nil")
	}

	h.Close()
	if _, err := h.NextEvent(); !errors.Is(err, ErrConnectionClosed) {
		t.Fatalf("NextEvent() after Close error = %v, want ErrConnectionClosed", err)
	}
	if err := h.Wake(); !errors.Is(err, ErrConnectionClosed) {
		t.Fatalf("Wake() after Close error = %v, want ErrConnectionClosed", err)
	}
}

func TestHeadlessFailNextAfterQueuedEvents(t *testing.T) {
	h := openHeadless(t, Config{ClassName: t.Name(), Width: 10, Height: 10})
	broken := errors.New("broken")
	h.Inject(Event{Kind: EventMotion})
	h.FailNext(broken)

	if ev, err := h.NextEvent(); err != nil || ev.Kind != EventMotion {
		t.Fatalf("NextEvent() = %v, %v, want queued motion first", ev.Kind, err)
	}
	if _, err := h.NextEvent(); !errors.Is(err, broken) {
		t.Fatalf("NextEvent() error = %v, want %v", err, broken)
	}
}

func TestEventKindString(t *testing.T) {
	if got := EventConfigure.String(); got != "configure" {
		t.Fatalf("EventConfigure.String() = %q", got)
	}
	if got := EventKind(99).String(); got != "event(99)" {
		t.Fatalf("EventKind(99).String() = %q", got)
	}
}
