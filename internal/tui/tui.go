// Package tui is a terminal front end for a running workspace: it shows
// the session status and runs menu actions over the broker socket.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/workspace/internal/ipc"
)

// Client is the broker client the TUI drives. *ipc.Client implements it.
type Client interface {
	Status() (*ipc.StatusData, error)
	Appear() (*ipc.StatusData, error)
	Enable() (*ipc.StatusData, error)
	Disable() (*ipc.StatusData, error)
	Kill() (*ipc.StatusData, error)
	Shell() (*ipc.StatusData, error)
	Theme(name string) (*ipc.StatusData, error)
	Arrange(strategy string) (*ipc.ArrangeData, error)
}

// Run starts the TUI and blocks until the user quits.
func Run(client Client, brokerName string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	p := tea.NewProgram(newModel(client, brokerName), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
