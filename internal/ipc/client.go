package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/winpump/window"
)

// Client handles IPC communication with a running window.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client for socketPath.
func NewClient(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// SocketPath returns the socket the client dials.
func (c *Client) SocketPath() string {
	return c.socketPath
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w (is winpump running?)", c.socketPath, err)
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
		return nil, fmt.Errorf("winpump error: %s", resp.Error)
	}

	return &resp, nil
}

func (c *Client) sendPayload(cmd CommandType, payload any) error {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}
	_, err := c.sendRequest(req)
	return err
}

// GetStatus retrieves the window state.
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetStatus})
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}

	return &status, nil
}

// SetTitle changes the window title.
func (c *Client) SetTitle(title string) error {
	return c.sendPayload(CommandSetTitle, SetTitlePayload{Title: title})
}

// SetVisible shows or hides the window.
func (c *Client) SetVisible(visible bool) error {
	return c.sendPayload(CommandSetVisible, SetVisiblePayload{Visible: visible})
}

// SetSubtitle changes the text shown after the title.
func (c *Client) SetSubtitle(subtitle string) error {
	return c.sendPayload(CommandSetSubtitle, SetSubtitlePayload{Subtitle: subtitle})
}

// SetPosition moves the window's outer top-left corner.
func (c *Client) SetPosition(x, y int) error {
	return c.sendPayload(CommandSetPosition, SetPositionPayload{X: x, Y: y})
}

// SetSize resizes the client area.
func (c *Client) SetSize(width, height int) error {
	return c.sendPayload(CommandSetSize, SetSizePayload{Width: width, Height: height})
}

// SetFullscreen enters or leaves fullscreen.
func (c *Client) SetFullscreen(fullscreen bool) error {
	return c.sendPayload(CommandSetFullscreen, SetFullscreenPayload{Fullscreen: fullscreen})
}

// SetCursor changes cursor visibility, mode, or both. A nil argument leaves
// that setting alone.
func (c *Client) SetCursor(visible *bool, mode *window.CursorMode) error {
	return c.sendPayload(CommandSetCursor, SetCursorPayload{Visible: visible, Mode: mode})
}

// Focus asks the window manager to activate the window.
func (c *Client) Focus() error {
	return c.sendPayload(CommandFocus, nil)
}

// Redraw requests a RedrawRequested message.
func (c *Client) Redraw() error {
	return c.sendPayload(CommandRedraw, nil)
}

// RequestClose asks the window to close as if its close button was pressed.
func (c *Client) RequestClose() error {
	return c.sendPayload(CommandClose, nil)
}

// Post delivers value to the consumer as a User message. value must be JSON
// encodable.
func (c *Client) Post(value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal post value: %w", err)
	}
	return c.sendPayload(CommandPost, PostPayload{Payload: raw})
}

// Ping checks if the window process is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
