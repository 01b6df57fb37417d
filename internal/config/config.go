package config

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"strings"

	"github.com/1broseidon/winpump/window"
)

// Config is the effective configuration after defaults and every loaded
// file have been merged.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Logging LoggingConfig `yaml:"logging"`
	Control ControlConfig `yaml:"control"`
}

type PositionConfig struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// WindowConfig mirrors window.Settings in file form.
type WindowConfig struct {
	Title             string          `yaml:"title"`
	Width             int             `yaml:"width"`
	Height            int             `yaml:"height"`
	Position          *PositionConfig `yaml:"position,omitempty"`
	Resizable         bool            `yaml:"resizable"`
	Visible           bool            `yaml:"visible"`
	Decorations       bool            `yaml:"decorations"`
	Focus             string          `yaml:"focus"`
	Icon              string          `yaml:"icon,omitempty"`
	ClassName         string          `yaml:"class_name"`
	ClosePolicy       string          `yaml:"close_policy"`
	CoalesceGeometry  bool            `yaml:"coalesce_geometry"`
	CoalesceThreshold int             `yaml:"coalesce_threshold"`
	Backend           string          `yaml:"backend"`
	Display           string          `yaml:"display,omitempty"`
}

// JournalConfig controls the on-disk message journal.
type JournalConfig struct {
	Enabled   bool   `yaml:"enabled"`
	File      string `yaml:"file,omitempty"`
	MaxSizeMB int    `yaml:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files"`
}

type LoggingConfig struct {
	Level   string        `yaml:"level"`
	Journal JournalConfig `yaml:"journal"`
}

// ControlConfig controls the unix-socket control surface of `winpump run`.
type ControlConfig struct {
	Enabled bool   `yaml:"enabled"`
	Socket  string `yaml:"socket,omitempty"`
}

func DefaultConfig() *Config {
	defaults := window.DefaultSettings()
	return &Config{
		Window: WindowConfig{
			Title:             defaults.Title,
			Width:             defaults.Width,
			Height:            defaults.Height,
			Resizable:         defaults.Resizable,
			Visible:           defaults.Visible,
			Decorations:       defaults.Decorations,
			Focus:             defaults.Focus.String(),
			ClassName:         defaults.ClassName,
			ClosePolicy:       defaults.Close.String(),
			CoalesceThreshold: defaults.CoalesceThreshold,
			Backend:           defaults.Backend,
		},
		Logging: LoggingConfig{
			Level: "info",
			Journal: JournalConfig{
				MaxSizeMB: 10,
				MaxFiles:  3,
			},
		},
		Control: ControlConfig{
			Enabled: true,
		},
	}
}

func (c *Config) Validate() error {
	w := c.Window
	if w.Width <= 0 {
		return &ValidationError{Path: "window.width", Err: fmt.Errorf("width must be > 0")}
	}
	if w.Height <= 0 {
		return &ValidationError{Path: "window.height", Err: fmt.Errorf("height must be > 0")}
	}
	if strings.TrimSpace(w.ClassName) == "" {
		return &ValidationError{Path: "window.class_name", Err: fmt.Errorf("class_name must not be empty")}
	}
	if _, err := window.ParseFocusPolicy(w.Focus); err != nil {
		return &ValidationError{Path: "window.focus", Err: err}
	}
	if _, err := window.ParseClosePolicy(w.ClosePolicy); err != nil {
		return &ValidationError{Path: "window.close_policy", Err: err}
	}
	if w.CoalesceThreshold < 1 {
		return &ValidationError{Path: "window.coalesce_threshold", Err: fmt.Errorf("coalesce_threshold must be >= 1")}
	}
	switch w.Backend {
	case window.BackendX11, window.BackendHeadless:
	default:
		return &ValidationError{Path: "window.backend", Err: fmt.Errorf("backend must be one of: x11, headless")}
	}

	if _, err := ParseLogLevel(c.Logging.Level); err != nil {
		return &ValidationError{Path: "logging.level", Err: err}
	}
	if c.Logging.Journal.MaxSizeMB <= 0 {
		return &ValidationError{Path: "logging.journal.max_size_mb", Err: fmt.Errorf("max_size_mb must be > 0")}
	}
	if c.Logging.Journal.MaxFiles < 0 {
		return &ValidationError{Path: "logging.journal.max_files", Err: fmt.Errorf("max_files must be >= 0")}
	}
	return nil
}

// ParseLogLevel maps debug, info, warning and error to slog levels.
func ParseLogLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warning", "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log level must be one of: debug, info, warning, error")
	}
}

// WindowSettings converts the window section into window.Settings. The icon
// file, if any, is decoded here.
func (c *Config) WindowSettings(logger *slog.Logger) (window.Settings, error) {
	w := c.Window
	focus, err := window.ParseFocusPolicy(w.Focus)
	if err != nil {
		return window.Settings{}, err
	}
	closePolicy, err := window.ParseClosePolicy(w.ClosePolicy)
	if err != nil {
		return window.Settings{}, err
	}

	s := window.Settings{
		Title:             w.Title,
		Width:             w.Width,
		Height:            w.Height,
		Resizable:         w.Resizable,
		Visible:           w.Visible,
		Decorations:       w.Decorations,
		Focus:             focus,
		ClassName:         w.ClassName,
		Close:             closePolicy,
		CoalesceGeometry:  w.CoalesceGeometry,
		CoalesceThreshold: w.CoalesceThreshold,
		Backend:           w.Backend,
		Display:           w.Display,
		Logger:            logger,
	}
	if w.Position != nil {
		s.Position = &window.Position{X: w.Position.X, Y: w.Position.Y}
	}
	if w.Icon != "" {
		icon, err := loadIcon(w.Icon)
		if err != nil {
			return window.Settings{}, &ValidationError{Path: "window.icon", Err: err}
		}
		s.Icon = icon
	}
	return s, nil
}

func loadIcon(path string) (image.Image, error) {
	path, err := expandHome(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open icon: %w", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode icon %s: %w", path, err)
	}
	return img, nil
}
