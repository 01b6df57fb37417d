package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/winpump/window"
)

// Controller is the part of a window the control socket drives.
// *window.Window satisfies it.
type Controller interface {
	State() window.State
	RawHandle() (window.RawHandle, error)
	Monitors() []window.Monitor
	SetTitle(title string) error
	SetSubtitle(subtitle string) error
	SetVisible(visible bool) error
	SetPosition(x, y int) error
	SetSize(width, height int) error
	SetFullscreen(fullscreen bool) error
	SetCursorVisible(visible bool) error
	SetCursorMode(mode window.CursorMode) error
	Focus() error
	RequestRedraw() error
	RequestClose() error
	PostUser(payload any) error
}

var _ Controller = (*window.Window)(nil)

// ErrAlreadyRunning is returned by Start when another process answers on the
// socket.
var ErrAlreadyRunning = errors.New("another winpump instance is listening on the control socket")

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	ctl          Controller
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
	wg           sync.WaitGroup

	statsMu     sync.Mutex
	counts      map[string]int
	lastMessage string
}

// NewServer creates a new IPC server for ctl on socketPath.
func NewServer(socketPath string, ctl Controller) *Server {
	return &Server{
		socketPath: socketPath,
		ctl:        ctl,
		startTime:  time.Now(),
		counts:     make(map[string]int),
	}
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	if err := s.clearStaleSocket(); err != nil {
		return err
	}

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

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// clearStaleSocket removes a socket file left behind by a dead process.
func (s *Server) clearStaleSocket() error {
	if _, err := os.Stat(s.socketPath); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	conn, err := net.DialTimeout("unix", s.socketPath, 200*time.Millisecond)
	if err == nil {
		conn.Close()
		return fmt.Errorf("%w: %s", ErrAlreadyRunning, s.socketPath)
	}
	if err := os.Remove(s.socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove stale socket: %w", err)
	}
	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	defer s.wg.Done()
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
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
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
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandSetTitle:
		return s.handleSetTitle(req.Payload)
	case CommandSetSubtitle:
		return s.handleSetSubtitle(req.Payload)
	case CommandSetVisible:
		return s.handleSetVisible(req.Payload)
	case CommandSetPosition:
		return s.handleSetPosition(req.Payload)
	case CommandSetSize:
		return s.handleSetSize(req.Payload)
	case CommandSetFullscreen:
		return s.handleSetFullscreen(req.Payload)
	case CommandSetCursor:
		return s.handleSetCursor(req.Payload)
	case CommandFocus:
		return control("focus", s.ctl.Focus())
	case CommandRedraw:
		return control("request redraw", s.ctl.RequestRedraw())
	case CommandClose:
		log.Println("IPC: Received CLOSE command")
		return control("request close", s.ctl.RequestClose())
	case CommandPost:
		return s.handlePost(req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleGetStatus() *Response {
	status := StatusData{
		Window:        s.ctl.State(),
		Monitors:      s.ctl.Monitors(),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
	}
	// The handle is gone once the window is destroyed; status still reports
	// the final state.
	if handle, err := s.ctl.RawHandle(); err == nil {
		status.Handle = handle
	}

	s.statsMu.Lock()
	if len(s.counts) > 0 {
		status.Messages = maps.Clone(s.counts)
	}
	status.LastMessage = s.lastMessage
	s.statsMu.Unlock()

	resp, err := NewOKResponse(status)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) handleSetTitle(payload json.RawMessage) *Response {
	var req SetTitlePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid set title payload: %v", err))
	}
	return control("set title", s.ctl.SetTitle(req.Title))
}

func (s *Server) handleSetVisible(payload json.RawMessage) *Response {
	var req SetVisiblePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid set visible payload: %v", err))
	}
	return control("set visible", s.ctl.SetVisible(req.Visible))
}

func (s *Server) handleSetSubtitle(payload json.RawMessage) *Response {
	var req SetSubtitlePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid set subtitle payload: %v", err))
	}
	return control("set subtitle", s.ctl.SetSubtitle(req.Subtitle))
}

func (s *Server) handleSetPosition(payload json.RawMessage) *Response {
	var req SetPositionPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid set position payload: %v", err))
	}
	return control("set position", s.ctl.SetPosition(req.X, req.Y))
}

func (s *Server) handleSetSize(payload json.RawMessage) *Response {
	var req SetSizePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid set size payload: %v", err))
	}
	return control("set size", s.ctl.SetSize(req.Width, req.Height))
}

func (s *Server) handleSetFullscreen(payload json.RawMessage) *Response {
	var req SetFullscreenPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid set fullscreen payload: %v", err))
	}
	return control("set fullscreen", s.ctl.SetFullscreen(req.Fullscreen))
}

func (s *Server) handleSetCursor(payload json.RawMessage) *Response {
	var req SetCursorPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid set cursor payload: %v", err))
	}
	if req.Visible == nil && req.Mode == nil {
		return NewErrorResponse("Invalid set cursor payload: nothing to change")
	}
	if req.Visible != nil {
		if err := s.ctl.SetCursorVisible(*req.Visible); err != nil {
			return control("set cursor visibility", err)
		}
	}
	if req.Mode != nil {
		return control("set cursor mode", s.ctl.SetCursorMode(*req.Mode))
	}
	return control("set cursor", nil)
}

func (s *Server) handlePost(payload json.RawMessage) *Response {
	var req PostPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid post payload: %v", err))
	}
	var value any
	if len(req.Payload) > 0 {
		if err := json.Unmarshal(req.Payload, &value); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid post payload: %v", err))
		}
	}
	return control("post", s.ctl.PostUser(value))
}

func control(op string, err error) *Response {
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to %s: %v", op, err))
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

// Observe records a delivered message for status reporting. The consumer
// loop calls it for every message it receives.
func (s *Server) Observe(msg window.Message) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	s.counts[msg.Kind()]++
	s.lastMessage = msg.String()
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
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
		s.wg.Wait()
		os.Remove(s.socketPath)
	}
}
