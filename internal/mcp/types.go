package mcp

import "github.com/1broseidon/workspace/internal/ipc"

// EmptyInput is the input for tools without arguments.
type EmptyInput struct{}

// StatusOutput wraps the session snapshot returned by most tools.
type StatusOutput struct {
	Workspace ipc.StatusData `json:"workspace"`
}

// KillOutput is the output for the workspace_kill tool.
type KillOutput struct {
	Closed bool   `json:"closed"`
	Reason string `json:"reason,omitempty"`
}

// ArrangeInput is the input for the workspace_arrange tool.
type ArrangeInput struct {
	Strategy string `json:"strategy" jsonschema:"required,One of horizontal, vertical, grid, cascade, maximize"`
}

// ArrangeOutput is the output for the workspace_arrange tool.
type ArrangeOutput struct {
	Strategy string `json:"strategy"`
	Arranged int    `json:"arranged"`
}

// ThemeInput is the input for the workspace_theme tool.
type ThemeInput struct {
	Theme string `json:"theme" jsonschema:"required,Theme name: workbench, dark, sepia, blue or green"`
}

// DefaultSurfaceInput is the input for the workspace_default_surface tool.
type DefaultSurfaceInput struct {
	Surface string `json:"surface" jsonschema:"required,Surface name as listed by the window manager, e.g. Workspace.1"`
}
