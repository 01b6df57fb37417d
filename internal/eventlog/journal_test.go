package eventlog

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/winpump/window"
)

func openJournal(t *testing.T, cfg Config) *Journal {
	t.Helper()
	j, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	j.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	t.Cleanup(func() { j.Close() })
	return j
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestJournal_DisabledWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.log")
	j, err := New(Config{FilePath: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	j.Record(window.Created{}, window.State{})
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no journal file, stat err = %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestJournal_RecordFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "messages.log")
	j := openJournal(t, Config{Enabled: true, Level: slog.LevelDebug, FilePath: path, MaxSizeMB: 1, MaxFiles: 1})

	st := window.State{Width: 1024, Height: 768, Stage: window.StageRunning}
	j.Record(window.Resized{Width: 1024, Height: 768}, st)
	j.Record(window.Key{Code: 9, Name: "Escape", State: window.Pressed}, st)
	j.Record(window.Destroyed{Err: errors.New("lost")}, st)
	j.Close()

	want := strings.Join([]string{
		`2024-01-02 03:04:05.000 [RESIZED] height=768 width=1024 stage=running size=1024x768`,
		`2024-01-02 03:04:05.000 [KEY] code=9 mods="none" name="Escape" state="pressed" stage=running size=1024x768`,
		`2024-01-02 03:04:05.000 [DESTROYED] error="lost" stage=running size=1024x768`,
		``,
	}, "\n")
	if got := readFile(t, path); got != want {
		t.Fatalf("journal =\n%s\nwant\n%s", got, want)
	}
}

func TestJournal_LevelFiltersInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.log")
	j := openJournal(t, Config{Enabled: true, Level: slog.LevelInfo, FilePath: path, MaxSizeMB: 1, MaxFiles: 1})

	j.Record(window.MouseMove{X: 1, Y: 2}, window.State{})
	j.Record(window.Created{}, window.State{})
	j.Close()

	got := readFile(t, path)
	if strings.Contains(got, "MOUSE_MOVE") || !strings.Contains(got, "[CREATED]") {
		t.Fatalf("unexpected journal contents:\n%s", got)
	}
}

func TestJournal_Rotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.log")
	j := openJournal(t, Config{Enabled: true, FilePath: path, MaxSizeMB: 1, MaxFiles: 2})

	// Pretend the file is already full.
	j.currentSize = 1024 * 1024
	j.Record(window.Created{}, window.State{})
	j.currentSize = 1024 * 1024
	j.Record(window.CloseRequested{}, window.State{})
	j.currentSize = 1024 * 1024
	j.Record(window.Destroyed{}, window.State{})
	j.Close()

	if got := readFile(t, path); !strings.Contains(got, "[DESTROYED]") {
		t.Fatalf("current journal = %q, want DESTROYED", got)
	}
	if got := readFile(t, path+".1"); !strings.Contains(got, "[CLOSE_REQUESTED]") {
		t.Fatalf("journal.1 = %q, want CLOSE_REQUESTED", got)
	}
	if got := readFile(t, path+".2"); !strings.Contains(got, "[CREATED]") {
		t.Fatalf("journal.2 = %q, want CREATED", got)
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Fatalf("expected no journal.3, stat err = %v", err)
	}
}

func TestNew_RejectsZeroSize(t *testing.T) {
	if _, err := New(Config{Enabled: true, FilePath: filepath.Join(t.TempDir(), "x.log")}); err == nil {
		t.Fatalf("expected error for zero max size")
	}
}

func TestDefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath: %v", err)
	}
	if want := filepath.Join(home, ".local", "state", "winpump", "messages.log"); got != want {
		t.Fatalf("DefaultPath() = %q, want %q", got, want)
	}
}
