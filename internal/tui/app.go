package tui

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/winpump/internal/ipc"
	"github.com/1broseidon/winpump/window"
)

type statusMsg struct {
	status *ipc.StatusData
	err    error
}

type tickMsg time.Time

type actionMsg struct {
	action string
	err    error
}

// model is the root bubbletea model for the monitor.
type model struct {
	client   Client
	interval time.Duration

	status    *ipc.StatusData
	connected bool
	lastErr   string
	notice    string

	messages table.Model

	// Title editing
	editing bool
	form    *huh.Form

	// The form binds to titleDraft, so it must outlive model copies.
	titleDraft *string

	width  int
	height int
}

func newModel(client Client, interval time.Duration) model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Message", Width: 24},
			{Title: "Count", Width: 8},
		}),
		table.WithHeight(8),
	)
	return model{
		client:   client,
		interval: interval,
		messages: t,
	}
}

func (m model) fetchStatus() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		status, err := client.GetStatus()
		return statusMsg{status: status, err: err}
	}
}

func (m model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func runAction(action string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return actionMsg{action: action, err: fn()}
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.fetchStatus(), m.tick())
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.messages.SetHeight(max(3, m.height-16))
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.fetchStatus(), m.tick())

	case statusMsg:
		m.applyStatus(msg)
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.lastErr = fmt.Sprintf("%s: %v", msg.action, msg.err)
			m.notice = ""
		} else {
			m.lastErr = ""
			m.notice = msg.action + " sent"
		}
		return m, m.fetchStatus()
	}

	if m.editing {
		return m.updateForm(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch km.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "r":
		return m, runAction("redraw", m.client.Redraw)
	case "f":
		return m, runAction("focus", m.client.Focus)
	case "c":
		return m, runAction("close", m.client.RequestClose)
	case "v":
		visible := true
		if m.status != nil {
			visible = !m.status.Window.Visible
		}
		client := m.client
		action := "hide"
		if visible {
			action = "show"
		}
		return m, runAction(action, func() error { return client.SetVisible(visible) })
	case "t":
		return m, m.startEditing()
	}
	return m, nil
}

func (m *model) applyStatus(msg statusMsg) {
	if msg.err != nil {
		m.connected = false
		m.lastErr = msg.err.Error()
		return
	}
	m.connected = true
	m.status = msg.status

	kinds := make([]string, 0, len(msg.status.Messages))
	for kind := range msg.status.Messages {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	rows := make([]table.Row, 0, len(kinds))
	for _, kind := range kinds {
		rows = append(rows, table.Row{kind, strconv.Itoa(msg.status.Messages[kind])})
	}
	m.messages.SetRows(rows)
}

func (m *model) startEditing() tea.Cmd {
	m.titleDraft = new(string)
	if m.status != nil {
		*m.titleDraft = m.status.Window.Title
	}

	w := max(40, m.width-4)
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("title").
				Title("Window Title").
				Description("Applied when you press enter; esc cancels").
				Value(m.titleDraft),
		),
	).WithWidth(w).WithShowHelp(false)
	m.editing = true
	return m.form.Init()
}

func (m model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.editing = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		title := *m.titleDraft
		m.editing = false
		m.form = nil
		client := m.client
		return m, runAction("set title", func() error { return client.SetTitle(title) })
	}
	return m, cmd
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var body string
	switch {
	case m.editing:
		body = m.form.View()
	case m.status != nil:
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			renderState(m.status.Window, m.status.Handle),
			"  ",
			m.messages.View(),
		)
		if m.status.LastMessage != "" {
			body = lipgloss.JoinVertical(lipgloss.Left, body, "last: "+m.status.LastMessage)
		}
	default:
		body = "waiting for status..."
	}

	var footer string
	switch {
	case m.lastErr != "":
		footer = errorStyle.Render(m.lastErr)
	case m.notice != "":
		footer = noticeStyle.Render(m.notice)
	}

	var st window.State
	if m.status != nil {
		st = m.status.Window
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		renderStatusBar(m.connected, st, m.width),
		body,
		footer,
		renderHelpBar(m.width),
	)
}
