package tui

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/workspace/internal/ipc"
)

// Tab identifies a TUI tab.
type Tab int

const (
	TabActions Tab = iota
	TabStatus
	tabCount // sentinel for iteration
)

func (t Tab) String() string {
	switch t {
	case TabActions:
		return "Actions"
	case TabStatus:
		return "Status"
	default:
		return "?"
	}
}

var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("250")).
				Background(lipgloss.Color("236")).
				Padding(0, 2)

	tabBarStyle = lipgloss.NewStyle().
			MarginBottom(1)

	tabGap = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		SetString(" ")

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(14)
)

// renderTabBar renders the tab bar with the given active tab and width.
func renderTabBar(active Tab, width int) string {
	var tabs []string
	for i := Tab(0); i < tabCount; i++ {
		label := string(rune('1'+i)) + ":" + i.String()
		if i == active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, intersperse(tabs, tabGap.Render())...)
	return tabBarStyle.Width(width).Render(row)
}

// intersperse inserts sep between each element of items.
func intersperse(items []string, sep string) []string {
	if len(items) <= 1 {
		return items
	}
	result := make([]string, 0, len(items)*2-1)
	for i, item := range items {
		if i > 0 {
			result = append(result, sep)
		}
		result = append(result, item)
	}
	return result
}

// renderStatusBar renders the broker connection line.
func renderStatusBar(broker string, st *ipc.StatusData, width int) string {
	var status string
	if st != nil {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
		parts := []string{dot + " " + st.Surface, st.State, "theme:" + st.Theme}
		if !st.BrokerActive {
			parts = append(parts, "broker disabled")
		}
		status = strings.Join(parts, "  ")
	} else {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
		status = dot + " " + broker + " not running"
	}

	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(status)
}

// renderStatusTab lays the snapshot out as label/value rows.
func renderStatusTab(st *ipc.StatusData, lastErr string, width int) string {
	if st == nil {
		msg := "workspace not running"
		if lastErr != "" {
			msg = lastErr
		}
		return lipgloss.NewStyle().
			Width(width).
			Foreground(lipgloss.Color("241")).
			Padding(0, 1).
			Render(msg)
	}

	broker := "enabled"
	if !st.BrokerActive {
		broker = "disabled"
	}
	background := "none"
	if st.Background {
		background = "shown"
	}
	rows := [][2]string{
		{"surface", st.Surface},
		{"state", st.State},
		{"host", st.Host},
		{"broker", st.Broker + " (" + broker + ")"},
		{"theme", st.Theme},
		{"shell", st.Shell},
		{"background", background},
		{"windows", strconv.Itoa(st.Visitors)},
		{"uptime", formatUptime(st.UptimeSeconds)},
		{"session", st.ID},
	}
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, labelStyle.Render(r[0])+r[1])
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(lines, "\n"))
}

// renderHelpBar renders the bottom help/keybinding bar.
func renderHelpBar(width int) string {
	help := "tab: switch tabs  1-2: jump to tab  enter: run  r: refresh  q/ctrl-c: quit"
	style := lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	return style.Render(help)
}

func formatUptime(seconds int64) string {
	return (time.Duration(seconds) * time.Second).String()
}
