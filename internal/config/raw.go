package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

// Raw* types hold what a single file set; nil means "not set here".

type RawPosition struct {
	X *int `yaml:"x"`
	Y *int `yaml:"y"`
}

type RawWindow struct {
	Title             *string      `yaml:"title"`
	Width             *int         `yaml:"width"`
	Height            *int         `yaml:"height"`
	Position          *RawPosition `yaml:"position"`
	Resizable         *bool        `yaml:"resizable"`
	Visible           *bool        `yaml:"visible"`
	Decorations       *bool        `yaml:"decorations"`
	Focus             *string      `yaml:"focus"`
	Icon              *string      `yaml:"icon"`
	ClassName         *string      `yaml:"class_name"`
	ClosePolicy       *string      `yaml:"close_policy"`
	CoalesceGeometry  *bool        `yaml:"coalesce_geometry"`
	CoalesceThreshold *int         `yaml:"coalesce_threshold"`
	Backend           *string      `yaml:"backend"`
	Display           *string      `yaml:"display"`
}

type RawJournal struct {
	Enabled   *bool   `yaml:"enabled"`
	File      *string `yaml:"file"`
	MaxSizeMB *int    `yaml:"max_size_mb"`
	MaxFiles  *int    `yaml:"max_files"`
}

type RawLogging struct {
	Level   *string     `yaml:"level"`
	Journal *RawJournal `yaml:"journal"`
}

type RawControl struct {
	Enabled *bool   `yaml:"enabled"`
	Socket  *string `yaml:"socket"`
}

type RawConfig struct {
	Include IncludeList `yaml:"include"`
	Window  *RawWindow  `yaml:"window"`
	Logging *RawLogging `yaml:"logging"`
	Control *RawControl `yaml:"control"`
}

// merge overlays o on r field by field; set fields in o win.
func (r RawConfig) merge(o RawConfig) RawConfig {
	out := r
	if o.Window != nil {
		w := RawWindow{}
		if r.Window != nil {
			w = *r.Window
		}
		mergePtr(&w.Title, o.Window.Title)
		mergePtr(&w.Width, o.Window.Width)
		mergePtr(&w.Height, o.Window.Height)
		if o.Window.Position != nil {
			p := RawPosition{}
			if w.Position != nil {
				p = *w.Position
			}
			mergePtr(&p.X, o.Window.Position.X)
			mergePtr(&p.Y, o.Window.Position.Y)
			w.Position = &p
		}
		mergePtr(&w.Resizable, o.Window.Resizable)
		mergePtr(&w.Visible, o.Window.Visible)
		mergePtr(&w.Decorations, o.Window.Decorations)
		mergePtr(&w.Focus, o.Window.Focus)
		mergePtr(&w.Icon, o.Window.Icon)
		mergePtr(&w.ClassName, o.Window.ClassName)
		mergePtr(&w.ClosePolicy, o.Window.ClosePolicy)
		mergePtr(&w.CoalesceGeometry, o.Window.CoalesceGeometry)
		mergePtr(&w.CoalesceThreshold, o.Window.CoalesceThreshold)
		mergePtr(&w.Backend, o.Window.Backend)
		mergePtr(&w.Display, o.Window.Display)
		out.Window = &w
	}
	if o.Logging != nil {
		l := RawLogging{}
		if r.Logging != nil {
			l = *r.Logging
		}
		mergePtr(&l.Level, o.Logging.Level)
		if o.Logging.Journal != nil {
			j := RawJournal{}
			if l.Journal != nil {
				j = *l.Journal
			}
			mergePtr(&j.Enabled, o.Logging.Journal.Enabled)
			mergePtr(&j.File, o.Logging.Journal.File)
			mergePtr(&j.MaxSizeMB, o.Logging.Journal.MaxSizeMB)
			mergePtr(&j.MaxFiles, o.Logging.Journal.MaxFiles)
			l.Journal = &j
		}
		out.Logging = &l
	}
	if o.Control != nil {
		c := RawControl{}
		if r.Control != nil {
			c = *r.Control
		}
		mergePtr(&c.Enabled, o.Control.Enabled)
		mergePtr(&c.Socket, o.Control.Socket)
		out.Control = &c
	}
	return out
}

func mergePtr[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}
