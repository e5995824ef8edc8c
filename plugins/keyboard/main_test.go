package main

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/ayusman/spatialtouch/internal/plugin"
)

func TestNormalizeModifiers(t *testing.T) {
	got := normalizeModifiers([]string{"Command", "option", "hyper", "SHIFT"})
	want := []string{"cmd", "alt", "shift"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("normalizeModifiers() = %v, want %v", got, want)
	}
}

func TestParseParams_ParamsOverrideConfig(t *testing.T) {
	req := &plugin.Request{
		Config: json.RawMessage(`{"key":"space","modifiers":["ctrl"]}`),
		Params: json.RawMessage(`{"key":"tab"}`),
	}
	p, err := parseParams(req)
	if err != nil {
		t.Fatalf("parseParams() error = %v", err)
	}
	if p.Key != "tab" || len(p.Modifiers) != 1 {
		t.Errorf("parseParams() = %+v", p)
	}
}

func TestHandle_Validation(t *testing.T) {
	tests := []struct {
		action string
		params string
	}{
		{"keystroke", `{"key":""}`},
		{"type", `{}`},
		{"launch", `{"key":"a"}`},
		{"keystroke", `not json`},
	}
	for _, tt := range tests {
		req := &plugin.Request{Action: tt.action, Params: json.RawMessage(tt.params)}
		if _, err := handle(req); err == nil {
			t.Errorf("handle(%s, %s) should fail", tt.action, tt.params)
		}
	}
}
