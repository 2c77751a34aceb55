package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/1broseidon/workspace/internal/ipc"
)

type fakeController struct {
	calls    []string
	arranged string
	theme    string
	surface  string
	killErr  error
}

func (f *fakeController) status(call string) (*ipc.StatusData, error) {
	f.calls = append(f.calls, call)
	return &ipc.StatusData{Surface: "Workspace.1", State: "running"}, nil
}

func (f *fakeController) Status() (*ipc.StatusData, error) { return f.status("status") }
func (f *fakeController) Appear() (*ipc.StatusData, error) { return f.status("appear") }
func (f *fakeController) Shell() (*ipc.StatusData, error)  { return f.status("shell") }

func (f *fakeController) Kill() (*ipc.StatusData, error) {
	f.calls = append(f.calls, "kill")
	if f.killErr != nil {
		return nil, f.killErr
	}
	return &ipc.StatusData{State: "terminated"}, nil
}

func (f *fakeController) Arrange(strategy string) (*ipc.ArrangeData, error) {
	f.calls = append(f.calls, "arrange")
	f.arranged = strategy
	return &ipc.ArrangeData{Arranged: 3}, nil
}

func (f *fakeController) Theme(name string) (*ipc.StatusData, error) {
	f.theme = name
	return f.status("theme")
}

func (f *fakeController) SetDefaultSurface(name string) (*ipc.StatusData, error) {
	f.surface = name
	return f.status("default")
}

func TestNewServer_RegistersTools(t *testing.T) {
	// AddTool panics on a schema it cannot infer.
	if s := NewServer(&fakeController{}); s.mcpServer == nil {
		t.Fatal("expected an MCP server")
	}
}

func TestHandleStatus(t *testing.T) {
	f := &fakeController{}
	s := &Server{ctl: f}
	_, out, err := s.handleStatus(context.Background(), nil, EmptyInput{})
	if err != nil {
		t.Fatalf("handleStatus() error: %v", err)
	}
	if out.Workspace.Surface != "Workspace.1" || out.Workspace.State != "running" {
		t.Fatalf("unexpected status %+v", out.Workspace)
	}
}

func TestHandleArrange(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"lower case", "grid", "grid", false},
		{"mixed case and spaces", "  Cascade ", "cascade", false},
		{"unknown", "spiral", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeController{}
			s := &Server{ctl: f}
			_, out, err := s.handleArrange(context.Background(), nil, ArrangeInput{Strategy: tt.input})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if len(f.calls) != 0 {
					t.Fatalf("invalid strategy reached the broker: %v", f.calls)
				}
				return
			}
			if err != nil {
				t.Fatalf("handleArrange() error: %v", err)
			}
			if f.arranged != tt.want || out.Strategy != tt.want || out.Arranged != 3 {
				t.Fatalf("arranged %q, output %+v", f.arranged, out)
			}
		})
	}
}

func TestHandleKill_RefusedIsNotAnError(t *testing.T) {
	f := &fakeController{killErr: errors.New("workspace still has open windows")}
	s := &Server{ctl: f}
	_, out, err := s.handleKill(context.Background(), nil, EmptyInput{})
	if err != nil {
		t.Fatalf("handleKill() error: %v", err)
	}
	if out.Closed || out.Reason == "" {
		t.Fatalf("expected a refused close, got %+v", out)
	}
}

func TestHandleKill_TransportError(t *testing.T) {
	f := &fakeController{killErr: errors.New("failed to connect to workspace")}
	s := &Server{ctl: f}
	if _, _, err := s.handleKill(context.Background(), nil, EmptyInput{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestHandleKill_Closed(t *testing.T) {
	s := &Server{ctl: &fakeController{}}
	_, out, err := s.handleKill(context.Background(), nil, EmptyInput{})
	if err != nil || !out.Closed {
		t.Fatalf("handleKill() = %+v, %v", out, err)
	}
}

func TestHandleTheme_RejectsUnknown(t *testing.T) {
	f := &fakeController{}
	s := &Server{ctl: f}
	if _, _, err := s.handleTheme(context.Background(), nil, ThemeInput{Theme: "neon"}); err == nil {
		t.Fatal("expected error")
	}
	if _, _, err := s.handleTheme(context.Background(), nil, ThemeInput{Theme: "sepia"}); err != nil {
		t.Fatalf("handleTheme() error: %v", err)
	}
	if f.theme != "sepia" {
		t.Fatalf("theme forwarded = %q", f.theme)
	}
}

func TestHandleDefaultSurface(t *testing.T) {
	f := &fakeController{}
	s := &Server{ctl: f}
	if _, _, err := s.handleDefaultSurface(context.Background(), nil, DefaultSurfaceInput{Surface: " "}); err == nil {
		t.Fatal("expected error for blank surface")
	}
	if _, _, err := s.handleDefaultSurface(context.Background(), nil, DefaultSurfaceInput{Surface: "Workspace.2"}); err != nil {
		t.Fatalf("handleDefaultSurface() error: %v", err)
	}
	if f.surface != "Workspace.2" {
		t.Fatalf("surface forwarded = %q", f.surface)
	}
}
