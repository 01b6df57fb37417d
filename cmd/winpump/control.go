package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/1broseidon/winpump/internal/ipc"
	"github.com/1broseidon/winpump/internal/runtimepath"
	"github.com/1broseidon/winpump/internal/tui"
	"github.com/1broseidon/winpump/window"
)

// newClient resolves the control socket from the flag, then the config file,
// then the runtime directory.
func newClient(socket string) (*ipc.Client, error) {
	if socket == "" {
		if cfg, err := loadConfig(""); err == nil {
			socket = cfg.Config.Control.Socket
		}
	}
	path, err := runtimepath.SocketPath(socket)
	if err != nil {
		return nil, err
	}
	return ipc.NewClient(path), nil
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket := fs.String("socket", "", "Control socket path")
	asJSON := fs.Bool("json", false, "Print status as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winpump status [--socket PATH] [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show the running window's state via the control socket.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client, err := newClient(*socket)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	st := status.Window
	fmt.Printf("title:          %s\n", st.Title)
	if st.Subtitle != "" {
		fmt.Printf("subtitle:       %s\n", st.Subtitle)
	}
	fmt.Printf("stage:          %s\n", st.Stage)
	fmt.Printf("size:           %dx%d\n", st.Width, st.Height)
	fmt.Printf("position:       %d,%d\n", st.X, st.Y)
	fmt.Printf("scale:          %.2f\n", st.Scale)
	fmt.Printf("visible:        %v\n", st.Visible)
	fmt.Printf("focused:        %v\n", st.Focused)
	fmt.Printf("fullscreen:     %v\n", st.Fullscreen)
	fmt.Printf("cursor:         %s\n", formatCursor(st))
	fmt.Printf("destroyed:      %v\n", st.Destroyed)
	if status.Handle.Window != 0 {
		fmt.Printf("handle:         %s 0x%x\n", status.Handle.Backend, status.Handle.Window)
	}
	for _, m := range status.Monitors {
		fmt.Printf("monitor:        %s\n", formatMonitor(m))
	}
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	if len(status.Messages) > 0 {
		fmt.Printf("messages:       %s\n", formatCounts(status.Messages))
	}
	return 0
}

// formatCounts renders counts as "kind=n" pairs sorted by kind.
func formatCounts(counts map[string]int) string {
	kinds := make([]string, 0, len(counts))
	for kind := range counts {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	parts := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		parts = append(parts, fmt.Sprintf("%s=%d", kind, counts[kind]))
	}
	return strings.Join(parts, " ")
}

func formatCursor(st window.State) string {
	visibility := "visible"
	if !st.CursorVisible {
		visibility = "hidden"
	}
	return visibility + " " + st.CursorMode.String()
}

func formatMonitor(m window.Monitor) string {
	out := fmt.Sprintf("%s %dx%d+%d+%d scale=%.2f", m.Name, m.Width, m.Height, m.X, m.Y, m.Scale)
	if m.Primary {
		out += " primary"
	}
	return out
}

// runSimple runs a control command that takes no arguments.
func runSimple(name, help string, args []string, fn func(*ipc.Client) error) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket := fs.String("socket", "", "Control socket path")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: winpump %s [--socket PATH]\n", name)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, help)
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		fs.Usage()
		return 2
	}

	client, err := newClient(*socket)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := fn(client); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// runWithArgs runs a control command taking exactly len(names) positional
// arguments. parse turns them into the request before the socket is dialed,
// so bad arguments are reported as usage errors.
func runWithArgs(name, help string, names []string, args []string, parse func([]string) (func(*ipc.Client) error, error)) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket := fs.String("socket", "", "Control socket path")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: winpump %s [--socket PATH] %s\n", name, strings.Join(names, " "))
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, help)
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != len(names) {
		fmt.Fprintf(os.Stderr, "%s requires %s\n", name, strings.Join(names, " "))
		fs.Usage()
		return 2
	}
	fn, err := parse(fs.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	client, err := newClient(*socket)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := fn(client); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func parseSubtitle(args []string) (func(*ipc.Client) error, error) {
	return func(c *ipc.Client) error { return c.SetSubtitle(args[0]) }, nil
}

func parseMove(args []string) (func(*ipc.Client) error, error) {
	x, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, fmt.Errorf("invalid x %q", args[0])
	}
	y, err := strconv.Atoi(args[1])
	if err != nil {
		return nil, fmt.Errorf("invalid y %q", args[1])
	}
	return func(c *ipc.Client) error { return c.SetPosition(x, y) }, nil
}

func parseResize(args []string) (func(*ipc.Client) error, error) {
	w, h, err := parseSize(args[0])
	if err != nil {
		return nil, err
	}
	return func(c *ipc.Client) error { return c.SetSize(w, h) }, nil
}

func parseFullscreen(args []string) (func(*ipc.Client) error, error) {
	var on bool
	switch strings.ToLower(args[0]) {
	case "on", "true", "1":
		on = true
	case "off", "false", "0":
	default:
		return nil, fmt.Errorf("invalid fullscreen value %q (want on or off)", args[0])
	}
	return func(c *ipc.Client) error { return c.SetFullscreen(on) }, nil
}

// parseCursor accepts show, hide, or a cursor mode name.
func parseCursor(args []string) (func(*ipc.Client) error, error) {
	switch args[0] {
	case "show", "hide":
		visible := args[0] == "show"
		return func(c *ipc.Client) error { return c.SetCursor(&visible, nil) }, nil
	}
	mode, err := window.ParseCursorMode(args[0])
	if err != nil || args[0] == "" {
		return nil, fmt.Errorf("invalid cursor setting %q (want show, hide, normal or confined)", args[0])
	}
	return func(c *ipc.Client) error { return c.SetCursor(nil, &mode) }, nil
}

func runTitle(args []string) int {
	fs := flag.NewFlagSet("title", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket := fs.String("socket", "", "Control socket path")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winpump title [--socket PATH] [TITLE]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Set the window title. Without TITLE, prompts interactively.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "title takes at most one argument (quote titles with spaces)")
		fs.Usage()
		return 2
	}

	client, err := newClient(*socket)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	var title string
	if fs.NArg() == 1 {
		title = fs.Arg(0)
	} else {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintln(os.Stderr, "title requires TITLE when stdin is not a terminal")
			return 2
		}
		if status, err := client.GetStatus(); err == nil {
			title = status.Window.Title
		}
		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Window Title").
				Value(&title),
		))
		if err := form.Run(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	if err := client.SetTitle(title); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runPost(args []string) int {
	fs := flag.NewFlagSet("post", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket := fs.String("socket", "", "Control socket path")
	asJSON := fs.Bool("json", false, "Parse VALUE as JSON instead of sending it as a string")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winpump post [--socket PATH] [--json] VALUE")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Deliver VALUE to the window's consumer as a User message.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "post requires exactly one VALUE")
		fs.Usage()
		return 2
	}

	var value any = fs.Arg(0)
	if *asJSON {
		if err := json.Unmarshal([]byte(fs.Arg(0)), &value); err != nil {
			fmt.Fprintf(os.Stderr, "invalid JSON value: %v\n", err)
			return 2
		}
	}

	client, err := newClient(*socket)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := client.Post(value); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runMonitor(args []string) int {
	fs := flag.NewFlagSet("monitor", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket := fs.String("socket", "", "Control socket path")
	interval := fs.Duration("interval", tui.DefaultInterval, "Status poll interval")

	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stderr, "Usage: winpump monitor [--socket PATH] [--interval D]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Live view of the running window's state and message counts.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  r         Request redraw")
		fmt.Fprintln(os.Stderr, "  v         Toggle visibility")
		fmt.Fprintln(os.Stderr, "  f         Focus the window")
		fmt.Fprintln(os.Stderr, "  t         Edit the title")
		fmt.Fprintln(os.Stderr, "  c         Request close")
		fmt.Fprintln(os.Stderr, "  q, Ctrl+C Quit")
		return 0
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	client, err := newClient(*socket)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := tui.Run(client, *interval); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
