package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/winpump/window"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus     CommandType = "GET_STATUS"
	CommandSetTitle      CommandType = "SET_TITLE"
	CommandSetSubtitle   CommandType = "SET_SUBTITLE"
	CommandSetVisible    CommandType = "SET_VISIBLE"
	CommandSetPosition   CommandType = "SET_POSITION"
	CommandSetSize       CommandType = "SET_SIZE"
	CommandSetFullscreen CommandType = "SET_FULLSCREEN"
	CommandSetCursor     CommandType = "SET_CURSOR"
	CommandFocus         CommandType = "FOCUS"
	CommandRedraw        CommandType = "REDRAW"
	CommandClose         CommandType = "CLOSE"
	CommandPost          CommandType = "POST"
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

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	Window        window.State     `json:"window"`
	Handle        window.RawHandle `json:"handle"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	Monitors      []window.Monitor `json:"monitors,omitempty"`
	Messages      map[string]int   `json:"messages,omitempty"`
	LastMessage   string           `json:"last_message,omitempty"`
}

// SetTitlePayload represents the payload for SET_TITLE
type SetTitlePayload struct {
	Title string `json:"title"`
}

// SetSubtitlePayload represents the payload for SET_SUBTITLE
type SetSubtitlePayload struct {
	Subtitle string `json:"subtitle"`
}

// SetVisiblePayload represents the payload for SET_VISIBLE
type SetVisiblePayload struct {
	Visible bool `json:"visible"`
}

// SetPositionPayload represents the payload for SET_POSITION
type SetPositionPayload struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// SetSizePayload represents the payload for SET_SIZE
type SetSizePayload struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// SetFullscreenPayload represents the payload for SET_FULLSCREEN
type SetFullscreenPayload struct {
	Fullscreen bool `json:"fullscreen"`
}

// SetCursorPayload represents the payload for SET_CURSOR. Omitted fields
// are left unchanged.
type SetCursorPayload struct {
	Visible *bool              `json:"visible,omitempty"`
	Mode    *window.CursorMode `json:"mode,omitempty"`
}

// PostPayload carries an arbitrary JSON value delivered as a User message.
type PostPayload struct {
	Payload json.RawMessage `json:"payload"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data any) (*Response, error) {
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
	if req.Command == "" {
		return nil, fmt.Errorf("failed to parse request: missing command")
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
