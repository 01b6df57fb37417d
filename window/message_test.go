package window

import (
	"errors"
	"testing"
)

func TestMessageString(t *testing.T) {
	tests := []struct {
		msg  Message
		want string
	}{
		{Created{}, "Created"},
		{Destroyed{}, "Destroyed"},
		{Destroyed{Err: errors.New("gone")}, "Destroyed(err=gone)"},
		{Resized{Width: 1024, Height: 768}, "Resized(1024x768)"},
		{Moved{X: -5, Y: 10}, "Moved(-5,10)"},
		{ScaleFactorChanged{Scale: 1.5}, "ScaleFactorChanged(1.5)"},
		{Key{Code: 38, Name: "a", State: Pressed}, "Key(a pressed)"},
		{Key{Code: 38, State: Released, Mods: ModCtrl | ModShift}, "Key(#38 released, shift+ctrl)"},
		{MouseButton{Button: 3, State: Pressed, X: 1, Y: 2}, "MouseButton(3 pressed at 1,2)"},
		{Scroll{DeltaY: -1, X: 4, Y: 5}, "Scroll(0,-1 at 4,5)"},
		{User{Payload: "ping"}, "User(ping)"},
	}
	for _, tt := range tests {
		if got := tt.msg.String(); got != tt.want {
			t.Fatalf("%T.String() = %q, want %q", tt.msg, got, tt.want)
		}
	}
}

func TestGeometryKey(t *testing.T) {
	for _, msg := range []Message{Resized{}, Moved{}, ScaleFactorChanged{}} {
		if _, ok := geometryKey(msg); !ok {
			t.Fatalf("geometryKey(%T) not coalescible", msg)
		}
	}
	for _, msg := range []Message{Created{}, Destroyed{}, Key{}, MouseMove{}, FocusChanged{}, User{}} {
		if _, ok := geometryKey(msg); ok {
			t.Fatalf("geometryKey(%T) coalescible, want exact delivery", msg)
		}
	}
}
