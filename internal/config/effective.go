package config

import "fmt"

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig applies raw over the defaults.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if w := raw.Window; w != nil {
		set(&cfg.Window.Title, w.Title)
		set(&cfg.Window.Width, w.Width)
		set(&cfg.Window.Height, w.Height)
		if w.Position != nil {
			pos := PositionConfig{}
			set(&pos.X, w.Position.X)
			set(&pos.Y, w.Position.Y)
			cfg.Window.Position = &pos
		}
		set(&cfg.Window.Resizable, w.Resizable)
		set(&cfg.Window.Visible, w.Visible)
		set(&cfg.Window.Decorations, w.Decorations)
		set(&cfg.Window.Focus, w.Focus)
		set(&cfg.Window.Icon, w.Icon)
		set(&cfg.Window.ClassName, w.ClassName)
		set(&cfg.Window.ClosePolicy, w.ClosePolicy)
		set(&cfg.Window.CoalesceGeometry, w.CoalesceGeometry)
		set(&cfg.Window.CoalesceThreshold, w.CoalesceThreshold)
		set(&cfg.Window.Backend, w.Backend)
		set(&cfg.Window.Display, w.Display)
	}

	if l := raw.Logging; l != nil {
		set(&cfg.Logging.Level, l.Level)
		if j := l.Journal; j != nil {
			set(&cfg.Logging.Journal.Enabled, j.Enabled)
			set(&cfg.Logging.Journal.File, j.File)
			set(&cfg.Logging.Journal.MaxSizeMB, j.MaxSizeMB)
			set(&cfg.Logging.Journal.MaxFiles, j.MaxFiles)
		}
	}

	if c := raw.Control; c != nil {
		set(&cfg.Control.Enabled, c.Enabled)
		set(&cfg.Control.Socket, c.Socket)
	}

	if cfg.Logging.Journal.File != "" {
		path, err := expandHome(cfg.Logging.Journal.File)
		if err != nil {
			return nil, &ValidationError{Path: "logging.journal.file", Err: err}
		}
		cfg.Logging.Journal.File = path
	}

	return cfg, nil
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
