// Command keyboard is a spatialtouch plugin that sends keystrokes and
// shortcuts when a bound gesture fires.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/go-vgo/robotgo"

	"github.com/ayusman/spatialtouch/internal/plugin"
)

// KeystrokeParams defines parameters for keystroke and shortcut actions.
type KeystrokeParams struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers"`
	Text      string   `json:"text"`
}

// modifierMap maps user-facing modifier names to robotgo key names.
var modifierMap = map[string]string{
	"command": "cmd",
	"cmd":     "cmd",
	"option":  "alt",
	"alt":     "alt",
	"control": "ctrl",
	"ctrl":    "ctrl",
	"shift":   "shift",
}

func main() {
	if err := plugin.Serve(os.Stdin, os.Stdout, handle); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func handle(req *plugin.Request) (json.RawMessage, error) {
	p, err := parseParams(req)
	if err != nil {
		return nil, err
	}

	switch req.Action {
	case "keystroke", "shortcut":
		if p.Key == "" {
			return nil, fmt.Errorf("key is required")
		}
		mods := normalizeModifiers(p.Modifiers)
		if len(mods) == 0 {
			return nil, robotgo.KeyTap(p.Key)
		}
		return nil, robotgo.KeyTap(p.Key, mods)
	case "type":
		if p.Text == "" {
			return nil, fmt.Errorf("text is required")
		}
		robotgo.TypeStr(p.Text)
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown action: %s", req.Action)
	}
}

// parseParams merges the binding config with per-call params; params win.
func parseParams(req *plugin.Request) (KeystrokeParams, error) {
	var p KeystrokeParams
	for _, raw := range []json.RawMessage{req.Config, req.Params} {
		if len(raw) == 0 {
			continue
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return p, fmt.Errorf("failed to parse params: %w", err)
		}
	}
	return p, nil
}

func normalizeModifiers(mods []string) []string {
	var out []string
	for _, m := range mods {
		if k, ok := modifierMap[strings.ToLower(m)]; ok {
			out = append(out, k)
		}
	}
	return out
}
