package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/workspace/internal/broker"
	"github.com/1broseidon/workspace/internal/menu"
	"github.com/1broseidon/workspace/internal/runtimepath"
	"github.com/1broseidon/workspace/internal/theme"
	"github.com/1broseidon/workspace/internal/tiling"
)

// DefaultTimeout bounds how long a request waits for the session loop.
const DefaultTimeout = 5 * time.Second

// Server exposes a broker on a unix socket
type Server struct {
	socketPath   string
	listener     net.Listener
	broker       *broker.Broker
	timeout      time.Duration
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a server for b on the broker's socket path. A stale
// socket file is removed; callers check for a live instance first.
func NewServer(b *broker.Broker, timeout time.Duration) (*Server, error) {
	socketPath, err := runtimepath.SocketPath(b.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	return newServerAt(socketPath, b, timeout), nil
}

func newServerAt(socketPath string, b *broker.Broker, timeout time.Duration) *Server {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		broker:     b,
		timeout:    timeout,
	}
}

func (s *Server) SocketPath() string { return s.socketPath }

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	// Accept connections
	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandPing:
		resp, _ := NewOKResponse(PingData{Broker: s.broker.Name(), PID: os.Getpid()})
		return resp
	case CommandEnable:
		return s.forward(broker.Enable, nil)
	case CommandDisable:
		return s.forward(broker.Disable, nil)
	case CommandAppear:
		return s.forward(broker.Appear, nil)
	case CommandDisappear:
		return s.forward(broker.Disappear, nil)
	case CommandKill:
		return s.forward(broker.Kill, nil)
	case CommandUnique:
		return s.forward(broker.Unique, nil)
	case CommandStatus:
		return s.forward(broker.Status, nil)
	case CommandShell:
		return s.forward(broker.Invoke, menu.ToggleShell{})
	case CommandArrange:
		return s.handleArrange(req.Payload)
	case CommandTheme:
		return s.handleTheme(req.Payload)
	case CommandDefaultSurface:
		return s.handleDefaultSurface(req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleArrange(payload json.RawMessage) *Response {
	var req ArrangePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid arrange payload: %v", err))
	}
	strategy, err := tiling.ParseStrategy(req.Strategy)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	log.Printf("IPC: Arrange %s", strategy)
	return s.forward(broker.Invoke, menu.ArrangeWindows{Strategy: strategy})
}

func (s *Server) handleTheme(payload json.RawMessage) *Response {
	var req ThemePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid theme payload: %v", err))
	}
	t, ok := theme.Lookup(req.Theme)
	if !ok {
		return NewErrorResponse(fmt.Sprintf("Unknown theme: %s", req.Theme))
	}
	return s.forward(broker.Invoke, menu.SelectTheme{Theme: t})
}

func (s *Server) handleDefaultSurface(payload json.RawMessage) *Response {
	var req DefaultSurfacePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid default surface payload: %v", err))
	}
	if req.Surface == "" {
		return NewErrorResponse("surface is required")
	}
	return s.forward(broker.Invoke, menu.SelectDefaultSurface{Name: req.Surface})
}

// forward hands a command to the session loop and waits for its reply.
func (s *Server) forward(cmd broker.Command, action menu.Action) *Response {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	reply, err := s.broker.Send(ctx, cmd, action)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("%s: %v", cmd, err))
	}
	if reply.Err != nil {
		return NewErrorResponse(reply.Err.Error())
	}
	resp, err := NewOKResponse(reply.Data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
