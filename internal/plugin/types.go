// Package plugin discovers external action plugins and runs them over a
// JSON stdin/stdout protocol.
package plugin

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"
)

// Plugin is a discovered plugin: its manifest, its directory and the
// resolved path of its executable.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Manifest is the contents of a plugin's plugin.json.
type Manifest struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	// Executable is relative to the plugin directory.
	Executable string `json:"executable"`
	// Actions lists the accepted action names; empty accepts any.
	Actions      []string        `json:"actions"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// Supports reports whether p accepts action.
func (p *Plugin) Supports(action string) bool {
	return len(p.Manifest.Actions) == 0 || slices.Contains(p.Manifest.Actions, action)
}

// Request is written to the plugin's stdin, once per run.
type Request struct {
	Action  string      `json:"action"`
	Gesture GestureInfo `json:"gesture"`
	// Config is the binding's stored configuration.
	Config json.RawMessage `json:"config,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
}

// GestureInfo describes the gesture that triggered the run. X and Y are
// normalized; the screen position is set when the pointer was mapped.
type GestureInfo struct {
	Type       string    `json:"type"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	ScreenX    *int      `json:"screen_x,omitempty"`
	ScreenY    *int      `json:"screen_y,omitempty"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// Response is the plugin's answer on stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// ErrPluginFailed wraps the message of an unsuccessful Response.
var ErrPluginFailed = errors.New("plugin reported failure")

// Err is nil for a successful response and wraps ErrPluginFailed otherwise.
func (r *Response) Err() error {
	switch {
	case r.Success:
		return nil
	case r.Error == "":
		return ErrPluginFailed
	}
	return fmt.Errorf("%w: %s", ErrPluginFailed, r.Error)
}
