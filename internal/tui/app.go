package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/workspace/internal/ipc"
)

const (
	refreshInterval = 2 * time.Second
	confirmKey      = "confirm"
)

// statusMsg carries a fresh snapshot, or the error fetching it.
type statusMsg struct {
	status *ipc.StatusData
	err    error
}

// resultMsg is sent after an action completes.
type resultMsg struct {
	text string
	err  error
}

// clearResultMsg clears the result line after a delay.
type clearResultMsg struct{}

type tickMsg struct{}

// model is the root bubbletea model for the TUI.
type model struct {
	client Client
	broker string

	activeTab Tab
	actions   list.Model

	status  *ipc.StatusData
	lastErr string
	result  string

	// confirm is the Close Workspace confirmation while it is shown.
	confirm *huh.Form
	pending actionItem

	width  int
	height int
}

func newModel(client Client, broker string) model {
	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)

	l := list.New(buildActionItems(), delegate, 0, 0)
	l.Title = "Workspace"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return model{
		client:  client,
		broker:  broker,
		actions: l,
	}
}

func (m model) fetchStatus() tea.Cmd {
	return func() tea.Msg {
		st, err := m.client.Status()
		return statusMsg{status: st, err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

func clearResultLater() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg { return clearResultMsg{} })
}

// runAction runs item off the UI goroutine.
func (m model) runAction(item actionItem) tea.Cmd {
	return func() tea.Msg {
		text, err := item.run(m.client)
		return resultMsg{text: text, err: err}
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.fetchStatus(), tick())
}

// contentHeight returns the height available for tab content.
func (m model) contentHeight() int {
	// status bar (1) + tab bar (2 with margin) + result (1) + help bar (1)
	return max(m.height-5, 1)
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.actions.SetSize(m.width, m.contentHeight())
		return m, nil

	case statusMsg:
		if msg.err != nil {
			m.status = nil
			m.lastErr = msg.err.Error()
		} else {
			m.status = msg.status
			m.lastErr = ""
		}
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.fetchStatus(), tick())

	case resultMsg:
		if msg.err != nil {
			m.result = fmt.Sprintf("error: %v", msg.err)
		} else {
			m.result = msg.text
		}
		return m, tea.Batch(m.fetchStatus(), clearResultLater())

	case clearResultMsg:
		m.result = ""
		return m, nil
	}

	// The confirmation captures all input while shown.
	if m.confirm != nil {
		return m.updateConfirm(msg)
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1":
			m.activeTab = TabActions
			return m, nil
		case "2":
			m.activeTab = TabStatus
			return m, nil
		case "r":
			return m, m.fetchStatus()
		case "enter":
			if m.activeTab != TabActions {
				return m, nil
			}
			item, ok := m.actions.SelectedItem().(actionItem)
			if !ok {
				return m, nil
			}
			if item.confirm {
				return m.startConfirm(item)
			}
			return m, m.runAction(item)
		}
	}

	if m.activeTab == TabActions {
		var cmd tea.Cmd
		m.actions, cmd = m.actions.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) startConfirm(item actionItem) (tea.Model, tea.Cmd) {
	m.pending = item
	m.confirm = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key(confirmKey).
				Title(item.title + "?").
				Description("The workspace refuses to close while windows are open on it.").
				Affirmative("Close").
				Negative("Cancel"),
		),
	)
	return m, m.confirm.Init()
}

func (m model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.confirm = nil
			return m, nil
		}
	}

	form, cmd := m.confirm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.confirm = f
	}

	switch m.confirm.State {
	case huh.StateCompleted:
		confirmed := m.confirm.GetBool(confirmKey)
		m.confirm = nil
		if confirmed {
			return m, m.runAction(m.pending)
		}
		return m, nil
	case huh.StateAborted:
		m.confirm = nil
		return m, nil
	}
	return m, cmd
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.broker, m.status, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.width)

	var content string
	switch {
	case m.confirm != nil:
		content = lipgloss.NewStyle().Padding(1, 2).Render(m.confirm.View())
	case m.activeTab == TabStatus:
		content = renderStatusTab(m.status, m.lastErr, m.width)
	default:
		content = m.actions.View()
	}
	content = lipgloss.NewStyle().Height(m.contentHeight()).Render(content)

	result := lipgloss.NewStyle().
		Foreground(lipgloss.Color("42")).
		Padding(0, 1).
		Render(m.result)

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		result,
		helpBar,
	)
}
