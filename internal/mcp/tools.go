package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/workspace/internal/ipc"
	"github.com/1broseidon/workspace/internal/theme"
	"github.com/1broseidon/workspace/internal/tiling"
)

// refusedMarker is the broker error text for a close refused by open
// windows.
const refusedMarker = "open windows"

func statusOutput(st *ipc.StatusData, err error) (*mcpsdk.CallToolResult, StatusOutput, error) {
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, StatusOutput{Workspace: *st}, nil
}

func (s *Server) handleStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	return statusOutput(s.ctl.Status())
}

func (s *Server) handleShow(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	return statusOutput(s.ctl.Appear())
}

// handleKill reports a refused close as a result, not a tool error.
func (s *Server) handleKill(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, KillOutput, error) {
	if _, err := s.ctl.Kill(); err != nil {
		if strings.Contains(err.Error(), refusedMarker) {
			return nil, KillOutput{Closed: false, Reason: err.Error()}, nil
		}
		return nil, KillOutput{}, err
	}
	return nil, KillOutput{Closed: true}, nil
}

func (s *Server) handleArrange(_ context.Context, _ *mcpsdk.CallToolRequest, args ArrangeInput) (*mcpsdk.CallToolResult, ArrangeOutput, error) {
	strategy, err := tiling.ParseStrategy(args.Strategy)
	if err != nil {
		return nil, ArrangeOutput{}, err
	}
	data, err := s.ctl.Arrange(strategy.String())
	if err != nil {
		return nil, ArrangeOutput{}, err
	}
	return nil, ArrangeOutput{Strategy: strategy.String(), Arranged: data.Arranged}, nil
}

func (s *Server) handleTheme(_ context.Context, _ *mcpsdk.CallToolRequest, args ThemeInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	if _, ok := theme.Lookup(args.Theme); !ok {
		return nil, StatusOutput{}, fmt.Errorf("unknown theme %q", args.Theme)
	}
	return statusOutput(s.ctl.Theme(args.Theme))
}

func (s *Server) handleShell(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	return statusOutput(s.ctl.Shell())
}

func (s *Server) handleDefaultSurface(_ context.Context, _ *mcpsdk.CallToolRequest, args DefaultSurfaceInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	if strings.TrimSpace(args.Surface) == "" {
		return nil, StatusOutput{}, fmt.Errorf("surface is required")
	}
	return statusOutput(s.ctl.SetDefaultSurface(args.Surface))
}
