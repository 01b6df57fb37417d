package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/winpump/window"
)

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(10)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))
)

// renderStatusBar renders the connection line at the top of the screen.
func renderStatusBar(connected bool, st window.State, width int) string {
	var status string
	switch {
	case !connected:
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
		status = dot + " window not reachable"
	case st.Destroyed:
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("●")
		status = dot + " window destroyed"
	default:
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
		status = strings.Join([]string{dot + " connected", "stage:" + st.Stage.String()}, "  ")
	}

	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(status)
}

// renderState renders the window properties as a label/value panel.
func renderState(st window.State, handle window.RawHandle) string {
	rows := [][2]string{
		{"title", st.Title},
		{"size", fmt.Sprintf("%dx%d", st.Width, st.Height)},
		{"position", fmt.Sprintf("%d,%d", st.X, st.Y)},
		{"scale", fmt.Sprintf("%.2f", st.Scale)},
		{"visible", yesNo(st.Visible)},
		{"focused", yesNo(st.Focused)},
		{"fullscreen", yesNo(st.Fullscreen)},
		{"cursor", fmt.Sprintf("%s, %s", yesNo(st.CursorVisible), st.CursorMode)},
	}
	if st.Subtitle != "" {
		rows = slices.Insert(rows, 1, [2]string{"subtitle", st.Subtitle})
	}
	if handle.Window != 0 {
		rows = append(rows, [2]string{"handle", fmt.Sprintf("%s 0x%x", handle.Backend, handle.Window)})
	}

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, labelStyle.Render(r[0])+valueStyle.Render(r[1]))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

// renderHelpBar renders the bottom help/keybinding bar.
func renderHelpBar(width int) string {
	help := "r: redraw  v: show/hide  f: focus  t: title  c: close  q/ctrl-c: quit"
	style := lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	return style.Render(help)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
