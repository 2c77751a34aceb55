package menu

import (
	"github.com/1broseidon/workspace/internal/theme"
	"github.com/1broseidon/workspace/internal/tiling"
)

// Action is a decoded menu selection. The concrete types below are the
// only implementations.
type Action interface {
	action()
}

// SelectDefaultSurface makes Name the default surface for new windows.
type SelectDefaultSurface struct {
	Name string
}

// ArrangeWindows runs one of the layout strategies.
type ArrangeWindows struct {
	Strategy tiling.Strategy
}

// SelectTheme switches the palette transform.
type SelectTheme struct {
	Theme theme.Theme
}

type About struct{}

// Quit asks the session to run the close protocol.
type Quit struct{}

// ToggleShell opens the shell console, or closes it when already open.
type ToggleShell struct{}

func (SelectDefaultSurface) action() {}
func (ArrangeWindows) action()       {}
func (SelectTheme) action()          {}
func (About) action()                {}
func (Quit) action()                 {}
func (ToggleShell) action()          {}
