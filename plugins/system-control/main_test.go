package main

import (
	"encoding/json"
	"testing"

	"github.com/ayusman/spatialtouch/internal/plugin"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		action  string
		params  string
		want    string
		wantErr bool
	}{
		{action: "volume-up", want: "audio_vol_up"},
		{action: "media", params: `{"name":"media-next"}`, want: "audio_next"},
		{action: "media", params: `{"name":"invalid-action"}`, wantErr: true},
		{action: "media", params: `{`, wantErr: true},
		{action: "shutdown", wantErr: true},
	}

	for _, tt := range tests {
		req := &plugin.Request{Action: tt.action}
		if tt.params != "" {
			req.Params = json.RawMessage(tt.params)
		}
		got, err := resolve(req)
		if (err != nil) != tt.wantErr {
			t.Errorf("resolve(%s %s) error = %v, wantErr %v", tt.action, tt.params, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("resolve(%s %s) = %q, want %q", tt.action, tt.params, got, tt.want)
		}
	}
}
