package config

import (
	"fmt"
	"sort"
)

// explainPaths maps every YAML path accepted by Explain to its value.
var explainPaths = map[string]func(*Config) any{
	"window.title":                func(c *Config) any { return c.Window.Title },
	"window.width":                func(c *Config) any { return c.Window.Width },
	"window.height":               func(c *Config) any { return c.Window.Height },
	"window.position":             func(c *Config) any { return c.Window.Position },
	"window.resizable":            func(c *Config) any { return c.Window.Resizable },
	"window.visible":              func(c *Config) any { return c.Window.Visible },
	"window.decorations":          func(c *Config) any { return c.Window.Decorations },
	"window.focus":                func(c *Config) any { return c.Window.Focus },
	"window.icon":                 func(c *Config) any { return c.Window.Icon },
	"window.class_name":           func(c *Config) any { return c.Window.ClassName },
	"window.close_policy":         func(c *Config) any { return c.Window.ClosePolicy },
	"window.coalesce_geometry":    func(c *Config) any { return c.Window.CoalesceGeometry },
	"window.coalesce_threshold":   func(c *Config) any { return c.Window.CoalesceThreshold },
	"window.backend":              func(c *Config) any { return c.Window.Backend },
	"window.display":              func(c *Config) any { return c.Window.Display },
	"logging.level":               func(c *Config) any { return c.Logging.Level },
	"logging.journal.enabled":     func(c *Config) any { return c.Logging.Journal.Enabled },
	"logging.journal.file":        func(c *Config) any { return c.Logging.Journal.File },
	"logging.journal.max_size_mb": func(c *Config) any { return c.Logging.Journal.MaxSizeMB },
	"logging.journal.max_files":   func(c *Config) any { return c.Logging.Journal.MaxFiles },
	"control.enabled":             func(c *Config) any { return c.Control.Enabled },
	"control.socket":              func(c *Config) any { return c.Control.Socket },
}

// ExplainPaths lists the paths Explain understands, sorted.
func ExplainPaths() []string {
	paths := make([]string, 0, len(explainPaths))
	for p := range explainPaths {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Explain returns the effective value at the given YAML path and the file
// position that set it, or a default source.
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	lookup, ok := explainPaths[path]
	if !ok {
		return nil, Source{}, fmt.Errorf("unknown path: %s", path)
	}
	if src, ok := res.Sources[path]; ok {
		return lookup(res.Config), src, nil
	}
	return lookup(res.Config), Source{Kind: SourceDefault}, nil
}
