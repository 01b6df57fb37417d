package mcp

import (
	"context"
	"fmt"
	"log"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/winpump/internal/ipc"
	"github.com/1broseidon/winpump/window"
)

const (
	ServerName    = "winpump"
	ServerVersion = "0.1.0"
)

// WindowClient is the control surface of a running winpump window.
// *ipc.Client satisfies it.
type WindowClient interface {
	GetStatus() (*ipc.StatusData, error)
	SetTitle(title string) error
	SetSubtitle(subtitle string) error
	SetVisible(visible bool) error
	SetPosition(x, y int) error
	SetSize(width, height int) error
	SetFullscreen(fullscreen bool) error
	SetCursor(visible *bool, mode *window.CursorMode) error
	Focus() error
	Redraw() error
	RequestClose() error
	Post(value any) error
}

var _ WindowClient = (*ipc.Client)(nil)

// Server exposes a running window's control socket as MCP tools.
type Server struct {
	mcpServer *mcpsdk.Server
	client    WindowClient
}

// NewServer creates a new MCP server that forwards to client.
func NewServer(client WindowClient) *Server {
	s := &Server{client: client}
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
		Name:        "window_status",
		Description: "Report the window's current geometry, visibility, focus, fullscreen and cursor state, lifecycle stage, monitors and a count of delivered messages by kind.",
	}, s.handleStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "window_set_title",
		Description: "Change the window title.",
	}, s.handleSetTitle)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "window_set_subtitle",
		Description: "Change the text shown after the window title.",
	}, s.handleSetSubtitle)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "window_set_position",
		Description: "Move the window frame. A Moved message follows once the window manager applies it.",
	}, s.handleSetPosition)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "window_set_size",
		Description: "Resize the client area. A Resized message follows once the window manager applies it.",
	}, s.handleSetSize)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "window_set_fullscreen",
		Description: "Enter or leave fullscreen on the monitor holding the window.",
	}, s.handleSetFullscreen)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "window_set_cursor",
		Description: "Show or hide the pointer over the window, or confine it to the window. Omitted fields are unchanged.",
	}, s.handleSetCursor)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "window_set_visible",
		Description: "Show or hide the window. A VisibilityChanged message follows when the state actually changes.",
	}, s.handleSetVisible)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "window_focus",
		Description: "Ask the window manager to activate the window.",
	}, s.handleFocus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "window_request_redraw",
		Description: "Request a RedrawRequested message. Requests made while one is pending are merged.",
	}, s.handleRequestRedraw)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "window_request_close",
		Description: "Behave as if the user pressed the window's close button. With the auto close policy the window is destroyed; with the defer policy the consumer decides.",
	}, s.handleRequestClose)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "window_post",
		Description: "Deliver an arbitrary JSON value to the window's consumer as a User message, ordered after every message already queued.",
	}, s.handlePost)
}

func (s *Server) handleStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ StatusInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	status, err := s.client.GetStatus()
	if err != nil {
		return nil, StatusOutput{}, fmt.Errorf("window_status: %w", err)
	}
	st := status.Window
	return nil, StatusOutput{
		Title:         st.Title,
		Subtitle:      st.Subtitle,
		Width:         st.Width,
		Height:        st.Height,
		X:             st.X,
		Y:             st.Y,
		Scale:         st.Scale,
		Visible:       st.Visible,
		Focused:       st.Focused,
		Fullscreen:    st.Fullscreen,
		CursorVisible: st.CursorVisible,
		CursorMode:    st.CursorMode.String(),
		Stage:         st.Stage.String(),
		Destroyed:     st.Destroyed,
		Backend:       status.Handle.Backend,
		WindowID:      status.Handle.Window,
		Monitors:      status.Monitors,
		UptimeSeconds: status.UptimeSeconds,
		Messages:      status.Messages,
		LastMessage:   status.LastMessage,
	}, nil
}

func (s *Server) handleSetTitle(_ context.Context, _ *mcpsdk.CallToolRequest, args SetTitleInput) (*mcpsdk.CallToolResult, AckOutput, error) {
	return ack("set_title", s.client.SetTitle(args.Title))
}

func (s *Server) handleSetSubtitle(_ context.Context, _ *mcpsdk.CallToolRequest, args SetSubtitleInput) (*mcpsdk.CallToolResult, AckOutput, error) {
	return ack("set_subtitle", s.client.SetSubtitle(args.Subtitle))
}

func (s *Server) handleSetPosition(_ context.Context, _ *mcpsdk.CallToolRequest, args SetPositionInput) (*mcpsdk.CallToolResult, AckOutput, error) {
	return ack("set_position", s.client.SetPosition(args.X, args.Y))
}

func (s *Server) handleSetSize(_ context.Context, _ *mcpsdk.CallToolRequest, args SetSizeInput) (*mcpsdk.CallToolResult, AckOutput, error) {
	return ack("set_size", s.client.SetSize(args.Width, args.Height))
}

func (s *Server) handleSetFullscreen(_ context.Context, _ *mcpsdk.CallToolRequest, args SetFullscreenInput) (*mcpsdk.CallToolResult, AckOutput, error) {
	action := "leave_fullscreen"
	if args.Fullscreen {
		action = "enter_fullscreen"
	}
	return ack(action, s.client.SetFullscreen(args.Fullscreen))
}

func (s *Server) handleSetCursor(_ context.Context, _ *mcpsdk.CallToolRequest, args SetCursorInput) (*mcpsdk.CallToolResult, AckOutput, error) {
	var mode *window.CursorMode
	if args.Mode != "" {
		m, err := window.ParseCursorMode(args.Mode)
		if err != nil {
			return nil, AckOutput{Action: "set_cursor"}, fmt.Errorf("set_cursor: %w", err)
		}
		mode = &m
	}
	if args.Visible == nil && mode == nil {
		return nil, AckOutput{Action: "set_cursor"}, fmt.Errorf("set_cursor: nothing to change")
	}
	return ack("set_cursor", s.client.SetCursor(args.Visible, mode))
}

func (s *Server) handleSetVisible(_ context.Context, _ *mcpsdk.CallToolRequest, args SetVisibleInput) (*mcpsdk.CallToolResult, AckOutput, error) {
	action := "hide"
	if args.Visible {
		action = "show"
	}
	return ack(action, s.client.SetVisible(args.Visible))
}

func (s *Server) handleFocus(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, AckOutput, error) {
	return ack("focus", s.client.Focus())
}

func (s *Server) handleRequestRedraw(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, AckOutput, error) {
	return ack("request_redraw", s.client.Redraw())
}

func (s *Server) handleRequestClose(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, AckOutput, error) {
	log.Printf("MCP: close requested")
	return ack("request_close", s.client.RequestClose())
}

func (s *Server) handlePost(_ context.Context, _ *mcpsdk.CallToolRequest, args PostInput) (*mcpsdk.CallToolResult, AckOutput, error) {
	return ack("post", s.client.Post(args.Value))
}

func ack(action string, err error) (*mcpsdk.CallToolResult, AckOutput, error) {
	if err != nil {
		return nil, AckOutput{Action: action}, fmt.Errorf("%s: %w", action, err)
	}
	return nil, AckOutput{OK: true, Action: action}, nil
}
