package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/1broseidon/winpump/internal/config"
	"github.com/1broseidon/winpump/internal/eventlog"
	"github.com/1broseidon/winpump/internal/ipc"
	"github.com/1broseidon/winpump/internal/runtimepath"
	"github.com/1broseidon/winpump/window"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runWindow(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "close":
		os.Exit(runSimple("close", "Ask the running window to close.", os.Args[2:], (*ipc.Client).RequestClose))
	case "show":
		os.Exit(runSimple("show", "Show the running window.", os.Args[2:], func(c *ipc.Client) error { return c.SetVisible(true) }))
	case "hide":
		os.Exit(runSimple("hide", "Hide the running window.", os.Args[2:], func(c *ipc.Client) error { return c.SetVisible(false) }))
	case "focus":
		os.Exit(runSimple("focus", "Ask the window manager to activate the running window.", os.Args[2:], (*ipc.Client).Focus))
	case "redraw":
		os.Exit(runSimple("redraw", "Request a redraw of the running window.", os.Args[2:], (*ipc.Client).Redraw))
	case "title":
		os.Exit(runTitle(os.Args[2:]))
	case "subtitle":
		os.Exit(runWithArgs("subtitle", "Set the text shown after the window title. An empty TEXT clears it.", []string{"TEXT"}, os.Args[2:], parseSubtitle))
	case "move":
		os.Exit(runWithArgs("move", "Move the window frame to X,Y in screen pixels.", []string{"X", "Y"}, os.Args[2:], parseMove))
	case "resize":
		os.Exit(runWithArgs("resize", "Resize the client area.", []string{"WIDTHxHEIGHT"}, os.Args[2:], parseResize))
	case "fullscreen":
		os.Exit(runWithArgs("fullscreen", "Enter or leave fullscreen.", []string{"on|off"}, os.Args[2:], parseFullscreen))
	case "cursor":
		os.Exit(runWithArgs("cursor", "Show or hide the pointer, or confine it to the window.", []string{"show|hide|normal|confined"}, os.Args[2:], parseCursor))
	case "post":
		os.Exit(runPost(os.Args[2:]))
	case "monitor":
		os.Exit(runMonitor(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: winpump <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                 Open a window and print its messages (foreground)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  status              Show the running window's state")
	fmt.Fprintln(w, "  title [TITLE]       Set the window title (prompts when omitted)")
	fmt.Fprintln(w, "  subtitle TEXT       Set the text shown after the title")
	fmt.Fprintln(w, "  move X Y            Move the window")
	fmt.Fprintln(w, "  resize WxH          Resize the client area")
	fmt.Fprintln(w, "  fullscreen on|off   Enter or leave fullscreen")
	fmt.Fprintln(w, "  cursor MODE         Pointer: show, hide, normal or confined")
	fmt.Fprintln(w, "  show                Show the window")
	fmt.Fprintln(w, "  hide                Hide the window")
	fmt.Fprintln(w, "  focus               Activate the window")
	fmt.Fprintln(w, "  redraw              Request a redraw")
	fmt.Fprintln(w, "  post VALUE          Deliver a user message to the window's consumer")
	fmt.Fprintln(w, "  close               Request the window to close")
	fmt.Fprintln(w, "  monitor             Open a live status monitor")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'winpump <command> --help' for command-specific options.")
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

// parseSize parses WIDTHxHEIGHT.
func parseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid size %q (want WIDTHxHEIGHT)", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil || w <= 0 {
		return 0, 0, fmt.Errorf("invalid width in %q", s)
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h <= 0 {
		return 0, 0, fmt.Errorf("invalid height in %q", s)
	}
	return w, h, nil
}

func runWindow(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/winpump/config.yaml)")
	headless := fs.Bool("headless", false, "Use the in-memory backend instead of X11")
	title := fs.String("title", "", "Window title (overrides config)")
	size := fs.String("size", "", "Window size as WIDTHxHEIGHT (overrides config)")
	asJSON := fs.Bool("json", false, "Print messages as JSON lines")
	noControl := fs.Bool("no-control", false, "Do not serve the control socket")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winpump run [--path PATH] [--headless] [--title T] [--size WxH] [--json] [--no-control]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Open a window, print every message it delivers and serve the control")
		fmt.Fprintln(os.Stderr, "socket until the window is destroyed. SIGINT or SIGTERM requests close;")
		fmt.Fprintln(os.Stderr, "a second signal destroys the window.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "run takes no arguments")
		fs.Usage()
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg := res.Config
	if *headless {
		cfg.Window.Backend = window.BackendHeadless
	}
	if *title != "" {
		cfg.Window.Title = *title
	}
	if *size != "" {
		w, h, err := parseSize(*size)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		cfg.Window.Width, cfg.Window.Height = w, h
	}

	level, err := config.ParseLogLevel(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	journal, err := openJournal(cfg.Logging, level)
	if err != nil {
		logger.Warn("message journal disabled", "error", err)
		journal, _ = eventlog.New(eventlog.Config{})
	}
	defer journal.Close()

	settings, err := cfg.WindowSettings(logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	w, err := window.New(settings)
	if err != nil {
		var ce *window.CreationError
		if errors.As(err, &ce) {
			logger.Error("window creation failed", "kind", ce.Kind.String(), "code", ce.Code, "error", ce.Err)
		} else {
			logger.Error("window creation failed", "error", err)
		}
		return 1
	}
	defer w.Close()

	var srv *ipc.Server
	if cfg.Control.Enabled && !*noControl {
		srv, err = startControl(cfg.Control.Socket, w)
		if err != nil {
			logger.Warn("control socket disabled", "error", err)
		} else {
			defer srv.Stop()
		}
	}

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go closeOnSignal(sigCh, w, logger)

	out := newPrinter(os.Stdout, *asJSON)
	for msg := range w.All() {
		if srv != nil {
			srv.Observe(msg)
		}
		journal.Record(msg, w.State())
		out.print(msg)

		if _, ok := msg.(window.CloseRequested); ok && settings.Close == window.CloseDefer {
			// Nothing to save; a deferred close is confirmed immediately.
			if err := w.Destroy(); err != nil && !errors.Is(err, window.ErrInvalidHandle) {
				logger.Warn("destroy failed", "error", err)
			}
		}
	}

	if err := w.Err(); err != nil {
		logger.Error("window ended abnormally", "error", err)
		return 1
	}
	return 0
}

func openJournal(cfg config.LoggingConfig, level slog.Level) (*eventlog.Journal, error) {
	if !cfg.Journal.Enabled {
		return eventlog.New(eventlog.Config{})
	}
	file := cfg.Journal.File
	if file == "" {
		var err error
		file, err = eventlog.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return eventlog.New(eventlog.Config{
		Enabled:   true,
		Level:     level,
		FilePath:  file,
		MaxSizeMB: cfg.Journal.MaxSizeMB,
		MaxFiles:  cfg.Journal.MaxFiles,
	})
}

func startControl(socket string, w *window.Window) (*ipc.Server, error) {
	path, err := runtimepath.SocketPath(socket)
	if err != nil {
		return nil, err
	}
	srv := ipc.NewServer(path, w)
	if err := srv.Start(); err != nil {
		return nil, err
	}
	return srv, nil
}

// closeOnSignal requests close on the first signal and destroys the window
// on the second. sigCh must already be registered so no signal is lost
// between the two.
func closeOnSignal(sigCh <-chan os.Signal, w *window.Window, logger *slog.Logger) {
	select {
	case <-w.Done():
		return
	case <-sigCh:
	}

	logger.Info("signal received, requesting close")
	if err := w.RequestClose(); err != nil {
		if !errors.Is(err, window.ErrInvalidHandle) {
			logger.Warn("close request failed", "error", err)
		}
		return
	}

	select {
	case <-w.Done():
	case <-sigCh:
		logger.Info("second signal, destroying window")
		if err := w.Destroy(); err != nil && !errors.Is(err, window.ErrInvalidHandle) {
			logger.Warn("destroy failed", "error", err)
		}
	}
}

// printer writes messages as text or JSON lines.
type printer struct {
	out    io.Writer
	asJSON bool
	enc    *json.Encoder
}

func newPrinter(out io.Writer, asJSON bool) *printer {
	return &printer{out: out, asJSON: asJSON, enc: json.NewEncoder(out)}
}

type messageLine struct {
	Kind  string         `json:"kind"`
	Data  window.Message `json:"data,omitempty"`
	Error string         `json:"error,omitempty"`
}

func (p *printer) print(msg window.Message) {
	if !p.asJSON {
		fmt.Fprintln(p.out, msg.String())
		return
	}
	line := messageLine{Kind: msg.Kind(), Data: msg}
	if d, ok := msg.(window.Destroyed); ok {
		line.Data = nil
		if d.Err != nil {
			line.Error = d.Err.Error()
		}
	}
	p.enc.Encode(line)
}
