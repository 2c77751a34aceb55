package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandEnable         CommandType = "ENABLE"
	CommandDisable        CommandType = "DISABLE"
	CommandAppear         CommandType = "APPEAR"
	CommandDisappear      CommandType = "DISAPPEAR"
	CommandKill           CommandType = "KILL"
	CommandUnique         CommandType = "UNIQUE"
	CommandStatus         CommandType = "STATUS"
	CommandArrange        CommandType = "ARRANGE"
	CommandTheme          CommandType = "THEME"
	CommandShell          CommandType = "SHELL"
	CommandDefaultSurface CommandType = "DEFAULT_SURFACE"
	CommandPing           CommandType = "PING"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData is the session snapshot returned by most commands.
type StatusData struct {
	ID            string `json:"id"`
	State         string `json:"state"`
	Surface       string `json:"surface"`
	Host          string `json:"host"`
	Broker        string `json:"broker,omitempty"`
	BrokerActive  bool   `json:"broker_active"`
	Theme         string `json:"theme"`
	Shell         string `json:"shell"`
	Background    bool   `json:"background"`
	Visitors      int    `json:"visitors"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// PingData identifies the instance serving a socket.
type PingData struct {
	Broker string `json:"broker"`
	PID    int    `json:"pid"`
}

type ArrangePayload struct {
	Strategy string `json:"strategy"`
}

type ArrangeData struct {
	Arranged int `json:"arranged"`
}

type ThemePayload struct {
	Theme string `json:"theme"`
}

type DefaultSurfacePayload struct {
	Surface string `json:"surface"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
