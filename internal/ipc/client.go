package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/workspace/internal/runtimepath"
)

// Client talks to a running workspace through its broker socket
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the named broker
func NewClient(brokerName string) *Client {
	socketPath, err := runtimepath.SocketPath(brokerName)
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for an explicit socket path.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    DefaultTimeout + time.Second,
	}
}

// SetTimeout changes the per-request deadline.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.timeout = d
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to workspace: %w (is workspace running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("workspace error: %s", resp.Error)
	}

	return &resp, nil
}

func (c *Client) command(cmd CommandType, payload interface{}) (*Response, error) {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}
	return c.sendRequest(req)
}

// statusCommand sends cmd and decodes the session snapshot it returns.
func (c *Client) statusCommand(cmd CommandType, payload interface{}) (*StatusData, error) {
	resp, err := c.command(cmd, payload)
	if err != nil {
		return nil, err
	}
	var status StatusData
	if len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, &status); err != nil {
			return nil, fmt.Errorf("failed to parse status data: %w", err)
		}
	}
	return &status, nil
}

// Ping checks whether a workspace serves the socket
func (c *Client) Ping() (*PingData, error) {
	resp, err := c.command(CommandPing, nil)
	if err != nil {
		return nil, err
	}
	var data PingData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse ping data: %w", err)
	}
	return &data, nil
}

// Status retrieves the session snapshot
func (c *Client) Status() (*StatusData, error) {
	return c.statusCommand(CommandStatus, nil)
}

func (c *Client) Enable() (*StatusData, error) {
	return c.statusCommand(CommandEnable, nil)
}

func (c *Client) Disable() (*StatusData, error) {
	return c.statusCommand(CommandDisable, nil)
}

// Appear raises the workspace surface.
func (c *Client) Appear() (*StatusData, error) {
	return c.statusCommand(CommandAppear, nil)
}

// Disappear is accepted by the workspace but has no effect.
func (c *Client) Disappear() (*StatusData, error) {
	return c.statusCommand(CommandDisappear, nil)
}

// Unique tells the running instance that another one was started.
func (c *Client) Unique() error {
	_, err := c.command(CommandUnique, nil)
	return err
}

// Kill asks the workspace to close. It fails while windows are open.
func (c *Client) Kill() (*StatusData, error) {
	return c.statusCommand(CommandKill, nil)
}

// Shell toggles the shell console.
func (c *Client) Shell() (*StatusData, error) {
	return c.statusCommand(CommandShell, nil)
}

func (c *Client) Theme(name string) (*StatusData, error) {
	return c.statusCommand(CommandTheme, ThemePayload{Theme: name})
}

func (c *Client) SetDefaultSurface(name string) (*StatusData, error) {
	return c.statusCommand(CommandDefaultSurface, DefaultSurfacePayload{Surface: name})
}

// Arrange lays out the windows on the workspace surface.
func (c *Client) Arrange(strategy string) (*ArrangeData, error) {
	resp, err := c.command(CommandArrange, ArrangePayload{Strategy: strategy})
	if err != nil {
		return nil, err
	}
	var data ArrangeData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse arrange data: %w", err)
	}
	return &data, nil
}
