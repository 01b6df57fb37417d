// Package eventlog records window messages to a size-rotated journal file.
package eventlog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/1broseidon/winpump/window"
)

// Config holds configuration for the journal.
type Config struct {
	Enabled   bool
	Level     slog.Level
	FilePath  string
	MaxSizeMB int
	MaxFiles  int
}

// DefaultPath is ~/.local/state/winpump/messages.log.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "state", "winpump", "messages.log"), nil
}

// messageLevel returns the journal level of a message. High-rate input is
// debug; lifecycle and geometry are info; abnormal ends are errors.
func messageLevel(msg window.Message) slog.Level {
	switch m := msg.(type) {
	case window.Key, window.MouseButton, window.MouseMove, window.Scroll, window.RedrawRequested:
		return slog.LevelDebug
	case window.Destroyed:
		if m.Err != nil {
			return slog.LevelError
		}
	}
	return slog.LevelInfo
}

// Journal writes one line per message with file rotation.
type Journal struct {
	mu          sync.Mutex
	file        *os.File
	config      Config
	currentSize int64
	now         func() time.Time
}

// New opens the journal. A disabled config yields a Journal that records
// nothing.
func New(cfg Config) (*Journal, error) {
	if !cfg.Enabled {
		return &Journal{config: cfg}, nil
	}
	if cfg.MaxSizeMB <= 0 {
		return nil, fmt.Errorf("journal max size must be positive, got %d", cfg.MaxSizeMB)
	}

	dir := filepath.Dir(cfg.FilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory %s: %w", dir, err)
	}

	f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal %s: %w", cfg.FilePath, err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat journal: %w", err)
	}

	return &Journal{
		file:        f,
		config:      cfg,
		currentSize: stat.Size(),
		now:         time.Now,
	}, nil
}

// Record appends msg with the window state observed alongside it.
func (j *Journal) Record(msg window.Message, st window.State) {
	if j == nil || !j.config.Enabled || msg == nil {
		return
	}
	if messageLevel(msg) < j.config.Level {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return
	}

	maxBytes := int64(j.config.MaxSizeMB) * 1024 * 1024
	if j.currentSize >= maxBytes {
		if err := j.rotate(); err != nil {
			fmt.Fprintf(os.Stderr, "journal rotation failed: %v\n", err)
		}
		if j.file == nil {
			return
		}
	}

	var sb strings.Builder
	sb.WriteString(j.now().Format("2006-01-02 15:04:05.000"))
	sb.WriteString(" [")
	sb.WriteString(strings.ToUpper(msg.Kind()))
	sb.WriteString("]")
	writeDetails(&sb, messageDetails(msg))
	fmt.Fprintf(&sb, " stage=%s size=%dx%d", st.Stage, st.Width, st.Height)
	sb.WriteString("\n")

	n, err := j.file.WriteString(sb.String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to write journal entry: %v\n", err)
		return
	}
	j.currentSize += int64(n)
}

func messageDetails(msg window.Message) map[string]any {
	switch m := msg.(type) {
	case window.Destroyed:
		if m.Err != nil {
			return map[string]any{"error": m.Err.Error()}
		}
	case window.Resized:
		return map[string]any{"width": m.Width, "height": m.Height}
	case window.Moved:
		return map[string]any{"x": m.X, "y": m.Y}
	case window.FocusChanged:
		return map[string]any{"focused": m.Focused}
	case window.ScaleFactorChanged:
		return map[string]any{"scale": m.Scale}
	case window.VisibilityChanged:
		return map[string]any{"visible": m.Visible}
	case window.Key:
		return map[string]any{"code": m.Code, "name": m.Name, "state": m.State.String(), "mods": m.Mods.String()}
	case window.MouseButton:
		return map[string]any{"button": m.Button, "state": m.State.String(), "x": m.X, "y": m.Y}
	case window.MouseMove:
		return map[string]any{"x": m.X, "y": m.Y}
	case window.Scroll:
		return map[string]any{"dx": m.DeltaX, "dy": m.DeltaY}
	case window.User:
		return map[string]any{"payload": fmt.Sprint(m.Payload)}
	}
	return nil
}

// writeDetails appends key=value pairs in sorted key order.
func writeDetails(sb *strings.Builder, details map[string]any) {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch val := details[k].(type) {
		case string:
			fmt.Fprintf(sb, " %s=%q", k, val)
		default:
			fmt.Fprintf(sb, " %s=%v", k, val)
		}
	}
}

// Close closes the journal file.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return nil
	}
	err := j.file.Close()
	j.file = nil
	return err
}

// rotate shifts messages.log to messages.log.1, .1 to .2 and so on,
// keeping at most MaxFiles rotated files.
func (j *Journal) rotate() error {
	if j.file != nil {
		j.file.Close()
		j.file = nil
	}

	basePath := j.config.FilePath
	for i := j.config.MaxFiles; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d", basePath, i)
		if i == j.config.MaxFiles {
			os.Remove(oldPath)
		} else {
			os.Rename(oldPath, fmt.Sprintf("%s.%d", basePath, i+1))
		}
	}

	if j.config.MaxFiles > 0 {
		if err := os.Rename(basePath, basePath+".1"); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to rotate journal: %w", err)
		}
	} else if err := os.Remove(basePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to truncate journal: %w", err)
	}

	f, err := os.OpenFile(basePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open new journal: %w", err)
	}

	j.file = f
	j.currentSize = 0
	return nil
}
