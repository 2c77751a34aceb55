// Package mcp exposes a running workspace to MCP clients over stdio.
// Every tool forwards to the session's broker socket.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/workspace/internal/ipc"
)

const (
	ServerName    = "workspace"
	ServerVersion = "1.0.0"
)

// Controller is the broker client the tools drive. *ipc.Client
// implements it.
type Controller interface {
	Status() (*ipc.StatusData, error)
	Appear() (*ipc.StatusData, error)
	Kill() (*ipc.StatusData, error)
	Arrange(strategy string) (*ipc.ArrangeData, error)
	Theme(name string) (*ipc.StatusData, error)
	Shell() (*ipc.StatusData, error)
	SetDefaultSurface(name string) (*ipc.StatusData, error)
}

// Server is the MCP server for one workspace broker.
type Server struct {
	mcpServer *mcpsdk.Server
	ctl       Controller
}

// NewServer creates a server whose tools talk to ctl.
func NewServer(ctl Controller) *Server {
	s := &Server{ctl: ctl}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "workspace_status",
		Description: "Report the running workspace: surface name, lifecycle state, theme, shell console ownership, broker state and the number of foreign windows counted at the last close attempt.",
	}, s.handleStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "workspace_show",
		Description: "Bring the workspace surface to the front.",
	}, s.handleShow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "workspace_kill",
		Description: "Ask the workspace to close. The close is refused while windows other than the workspace's own are open on any surface of the family; closed reports the outcome.",
	}, s.handleKill)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "workspace_arrange",
		Description: "Arrange the windows on the workspace surface. Strategies: horizontal, vertical, grid, cascade, maximize.",
	}, s.handleArrange)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "workspace_theme",
		Description: "Switch the colour theme. Themes are derived from the baseline palette captured when the workspace opened.",
	}, s.handleTheme)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "workspace_shell",
		Description: "Toggle the shell console band at the bottom of the workspace surface.",
	}, s.handleShell)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "workspace_default_surface",
		Description: "Set the system default surface, the one new windows open on.",
	}, s.handleDefaultSurface)
}
