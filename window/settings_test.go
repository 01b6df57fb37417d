package window

import (
	"strings"
	"testing"
)

func TestDefaultSettingsAreValid(t *testing.T) {
	if err := DefaultSettings().Validate(); err != nil {
		t.Fatalf("DefaultSettings().Validate() = %v", err)
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{name: "zero width", mutate: func(s *Settings) { s.Width = 0 }, wantErr: "size must be positive"},
		{name: "negative height", mutate: func(s *Settings) { s.Height = -1 }, wantErr: "size must be positive"},
		{name: "width beyond protocol", mutate: func(s *Settings) { s.Width = 70000 }, wantErr: "must not exceed 65535"},
		{name: "largest size", mutate: func(s *Settings) { s.Width, s.Height = MaxDimension, MaxDimension }},
		{name: "position beyond protocol", mutate: func(s *Settings) { s.Position = &Position{X: 40000} }, wantErr: "position must be within"},
		{name: "negative position", mutate: func(s *Settings) { s.Position = &Position{X: MinCoordinate, Y: -1} }},
		{name: "position below range", mutate: func(s *Settings) { s.Position = &Position{Y: MinCoordinate - 1} }, wantErr: "position must be within"},
		{name: "unknown backend", mutate: func(s *Settings) { s.Backend = "wayland" }, wantErr: "unknown backend"},
		{name: "bad focus", mutate: func(s *Settings) { s.Focus = 7 }, wantErr: "invalid focus policy"},
		{name: "bad close", mutate: func(s *Settings) { s.Close = 7 }, wantErr: "invalid close policy"},
		{
			name: "coalesce without threshold",
			mutate: func(s *Settings) {
				s.CoalesceGeometry = true
				s.CoalesceThreshold = 0
			},
			wantErr: "coalesce threshold",
		},
		{name: "threshold ignored when off", mutate: func(s *Settings) { s.CoalesceThreshold = 0 }},
		{name: "empty backend", mutate: func(s *Settings) { s.Backend = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	s := DefaultSettings()
	s.Width = 0
	s.Backend = "wayland"

	err := s.Validate()
	if err == nil {
		t.Fatalf("Validate() = nil, want error")
	}
	for _, want := range []string{"size must be positive", "unknown backend"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("Validate() = %q, missing %q", err, want)
		}
	}
}

func TestParsePolicies(t *testing.T) {
	if p, err := ParseFocusPolicy("None"); err != nil || p != FocusNone {
		t.Fatalf("ParseFocusPolicy(None) = %v, %v", p, err)
	}
	if p, err := ParseFocusPolicy(""); err != nil || p != FocusOnCreate {
		t.Fatalf("ParseFocusPolicy(\"\") = %v, %v", p, err)
	}
	if _, err := ParseFocusPolicy("always"); err == nil {
		t.Fatalf("ParseFocusPolicy(always) error = nil")
	}
	if p, err := ParseClosePolicy("defer"); err != nil || p != CloseDefer {
		t.Fatalf("ParseClosePolicy(defer) = %v, %v", p, err)
	}
	if _, err := ParseClosePolicy("never"); err == nil {
		t.Fatalf("ParseClosePolicy(never) error = nil")
	}
	for _, p := range []ClosePolicy{CloseAuto, CloseDefer} {
		if got, err := ParseClosePolicy(p.String()); err != nil || got != p {
			t.Fatalf("ParseClosePolicy(%q) = %v, %v", p.String(), got, err)
		}
	}
}
