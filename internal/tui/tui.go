package tui

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/winpump/internal/ipc"
)

// DefaultInterval is how often the monitor polls the control socket.
const DefaultInterval = 500 * time.Millisecond

// Client is the control surface the monitor drives. *ipc.Client satisfies it.
type Client interface {
	GetStatus() (*ipc.StatusData, error)
	SetTitle(title string) error
	SetVisible(visible bool) error
	Focus() error
	Redraw() error
	RequestClose() error
}

var _ Client = (*ipc.Client)(nil)

// Run starts the monitor and blocks until the user quits.
func Run(client Client, interval time.Duration) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("monitor requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	p := tea.NewProgram(newModel(client, interval), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
