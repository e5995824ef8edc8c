// Command system-control is a spatialtouch plugin for volume, brightness and
// media playback keys.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-vgo/robotgo"

	"github.com/ayusman/spatialtouch/internal/plugin"
)

// mediaKeys maps action names to robotgo key names.
var mediaKeys = map[string]string{
	"volume-up":        "audio_vol_up",
	"volume-down":      "audio_vol_down",
	"volume-mute":      "audio_mute",
	"brightness-up":    "lights_mon_up",
	"brightness-down":  "lights_mon_down",
	"media-play-pause": "audio_play",
	"media-next":       "audio_next",
	"media-prev":       "audio_prev",
}

type mediaParams struct {
	Name string `json:"name"`
}

func main() {
	if err := plugin.Serve(os.Stdin, os.Stdout, handle); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func handle(req *plugin.Request) (json.RawMessage, error) {
	key, err := resolve(req)
	if err != nil {
		return nil, err
	}
	return nil, robotgo.KeyTap(key)
}

// resolve finds the key for a request. The generic "media" action takes the
// key name from params; other actions are named directly.
func resolve(req *plugin.Request) (string, error) {
	name := req.Action
	if name == "media" {
		var p mediaParams
		if len(req.Params) > 0 {
			if err := json.Unmarshal(req.Params, &p); err != nil {
				return "", fmt.Errorf("failed to parse params: %w", err)
			}
		}
		name = p.Name
	}

	key, ok := mediaKeys[name]
	if !ok {
		return "", fmt.Errorf("unknown action: %s", name)
	}
	return key, nil
}
