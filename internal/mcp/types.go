package mcp

import "github.com/1broseidon/winpump/window"

// StatusInput is the input for the window_status tool.
type StatusInput struct{}

// StatusOutput is the output for the window_status tool.
type StatusOutput struct {
	Title         string           `json:"title"`
	Subtitle      string           `json:"subtitle,omitempty"`
	Width         int              `json:"width"`
	Height        int              `json:"height"`
	X             int              `json:"x"`
	Y             int              `json:"y"`
	Scale         float64          `json:"scale"`
	Visible       bool             `json:"visible"`
	Focused       bool             `json:"focused"`
	Fullscreen    bool             `json:"fullscreen"`
	CursorVisible bool             `json:"cursor_visible"`
	CursorMode    string           `json:"cursor_mode"`
	Stage         string           `json:"stage"`
	Destroyed     bool             `json:"destroyed"`
	Backend       string           `json:"backend,omitempty"`
	WindowID      uint32           `json:"window_id,omitempty"`
	Monitors      []window.Monitor `json:"monitors,omitempty"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	Messages      map[string]int   `json:"messages,omitempty"`
	LastMessage   string           `json:"last_message,omitempty"`
}

// SetTitleInput is the input for the window_set_title tool.
type SetTitleInput struct {
	Title string `json:"title" jsonschema:"New window title"`
}

// SetSubtitleInput is the input for the window_set_subtitle tool.
type SetSubtitleInput struct {
	Subtitle string `json:"subtitle" jsonschema:"Text shown after the title; empty clears it"`
}

// SetPositionInput is the input for the window_set_position tool.
type SetPositionInput struct {
	X int `json:"x" jsonschema:"Left edge of the window frame in screen pixels"`
	Y int `json:"y" jsonschema:"Top edge of the window frame in screen pixels"`
}

// SetSizeInput is the input for the window_set_size tool.
type SetSizeInput struct {
	Width  int `json:"width" jsonschema:"Client area width in pixels"`
	Height int `json:"height" jsonschema:"Client area height in pixels"`
}

// SetFullscreenInput is the input for the window_set_fullscreen tool.
type SetFullscreenInput struct {
	Fullscreen bool `json:"fullscreen" jsonschema:"true to cover the current monitor, false to restore"`
}

// SetCursorInput is the input for the window_set_cursor tool.
type SetCursorInput struct {
	Visible *bool  `json:"visible,omitempty" jsonschema:"Show or hide the pointer over the window"`
	Mode    string `json:"mode,omitempty" jsonschema:"normal or confined"`
}

// SetVisibleInput is the input for the window_set_visible tool.
type SetVisibleInput struct {
	Visible bool `json:"visible" jsonschema:"true to show the window, false to hide it"`
}

// PostInput is the input for the window_post tool.
type PostInput struct {
	Value any `json:"value" jsonschema:"Any JSON value; delivered to the consumer as a User message"`
}

// EmptyInput is the input for tools that take no arguments.
type EmptyInput struct{}

// AckOutput is returned by every control tool.
type AckOutput struct {
	OK     bool   `json:"ok"`
	Action string `json:"action"`
}
