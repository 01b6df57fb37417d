package main

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/1broseidon/winpump/window"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		w, h    int
		wantErr bool
	}{
		{in: "1024x768", w: 1024, h: 768},
		{in: "640X480", w: 640, h: 480},
		{in: "1024", wantErr: true},
		{in: "0x768", wantErr: true},
		{in: "axb", wantErr: true},
		{in: "100x-1", wantErr: true},
	}
	for _, tt := range tests {
		w, h, err := parseSize(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseSize(%q) error = nil, want error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseSize(%q) error: %v", tt.in, err)
			continue
		}
		if w != tt.w || h != tt.h {
			t.Errorf("parseSize(%q) = %dx%d, want %dx%d", tt.in, w, h, tt.w, tt.h)
		}
	}
}

func TestPrinterText(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf, false)
	p.print(window.Created{})
	p.print(window.Resized{Width: 10, Height: 20})

	got := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{"Created", "Resized(10x20)"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestPrinterJSON(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf, true)
	p.print(window.Resized{Width: 10, Height: 20})
	p.print(window.Destroyed{Err: errors.New("connection lost")})
	p.print(window.Destroyed{})

	got := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{
		`{"kind":"resized","data":{"Width":10,"Height":20}}`,
		`{"kind":"destroyed","error":"connection lost"}`,
		`{"kind":"destroyed"}`,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatCounts(t *testing.T) {
	got := formatCounts(map[string]int{"resized": 3, "created": 1, "key": 2})
	if want := "created=1 key=2 resized=3"; got != want {
		t.Fatalf("formatCounts() = %q, want %q", got, want)
	}
}

func TestCloseOnSignalHandlesBackToBackSignals(t *testing.T) {
	s := window.DefaultSettings()
	s.Backend = window.BackendHeadless
	s.ClassName = t.Name()
	s.Close = window.CloseDefer
	w, err := window.New(s)
	if err != nil {
		t.Fatalf("window.New() error = %v", err)
	}
	defer w.Close()

	// Both signals arrive before the handler runs.
	sigCh := make(chan os.Signal, 2)
	sigCh <- os.Interrupt
	sigCh <- syscall.SIGTERM

	handled := make(chan struct{})
	go func() {
		closeOnSignal(sigCh, w, slog.New(slog.DiscardHandler))
		close(handled)
	}()

	var kinds []string
	for msg := range w.All() {
		kinds = append(kinds, msg.Kind())
	}
	want := []string{"created", "close_requested", "destroyed"}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
	if err := w.Err(); err != nil {
		t.Fatalf("Err() = %v, want nil", err)
	}

	select {
	case <-handled:
	case <-time.After(2 * time.Second):
		t.Fatalf("closeOnSignal did not return after the window was destroyed")
	}
}

func TestCloseOnSignalReturnsWhenWindowEnds(t *testing.T) {
	s := window.DefaultSettings()
	s.Backend = window.BackendHeadless
	s.ClassName = t.Name()
	w, err := window.New(s)
	if err != nil {
		t.Fatalf("window.New() error = %v", err)
	}

	handled := make(chan struct{})
	go func() {
		closeOnSignal(make(chan os.Signal), w, slog.New(slog.DiscardHandler))
		close(handled)
	}()

	w.Close()
	select {
	case <-handled:
	case <-time.After(2 * time.Second):
		t.Fatalf("closeOnSignal did not return after Close")
	}
}
