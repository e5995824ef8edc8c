package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestConfigHandler_Get(t *testing.T) {
	ctrl := newFakeController()
	r := newRouter(NewConfigHandler(ctrl, nil))

	rec := do(r, http.MethodGet, "/api/config", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]json.RawMessage
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, section := range []string{"camera", "tracking", "gestures", "cursor", "actions", "system"} {
		if _, ok := body[section]; !ok {
			t.Errorf("missing section %q", section)
		}
	}
}

func TestConfigHandler_Lookup(t *testing.T) {
	ctrl := newFakeController()
	ctrl.settings.Cursor.Sensitivity = 1.25
	r := newRouter(NewConfigHandler(ctrl, nil))

	rec := do(r, http.MethodGet, "/api/config/cursor.sensitivity", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Body.String(); got != "{\"cursor.sensitivity\":1.25}\n" {
		t.Errorf("body = %q", got)
	}

	if rec := do(r, http.MethodGet, "/api/config/cursor.nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown key status = %d, want 404", rec.Code)
	}
}

func TestConfigHandler_Patch(t *testing.T) {
	s := newTestStore(t)
	ctrl := newFakeController()
	r := newRouter(NewConfigHandler(ctrl, s.Settings()))

	rec := do(r, http.MethodPatch, "/api/config", `{"cursor.sensitivity":1.5,"actions.safe_mode":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	got := ctrl.Settings()
	if got.Cursor.Sensitivity != 1.5 {
		t.Errorf("Sensitivity = %v, want 1.5", got.Cursor.Sensitivity)
	}
	if got.Actions.SafeMode {
		t.Error("SafeMode should be false")
	}
	if ctrl.reconfigured != 1 {
		t.Errorf("reconfigured = %d, want 1", ctrl.reconfigured)
	}

	all, err := s.Settings().All()
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if all["cursor.sensitivity"] != "1.5" || all["actions.safe_mode"] != "false" {
		t.Errorf("persisted = %v", all)
	}

	rec = do(r, http.MethodGet, "/api/config/overrides", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("overrides status = %d", rec.Code)
	}
	var overrides map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&overrides); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(overrides) != 2 {
		t.Errorf("overrides = %v", overrides)
	}

	if rec := do(r, http.MethodDelete, "/api/config/overrides/cursor.sensitivity", ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}
	all, _ = s.Settings().All()
	if _, ok := all["cursor.sensitivity"]; ok {
		t.Error("override should be deleted")
	}
}

func TestConfigHandler_PatchRejected(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		reconfigErr error
		want        int
	}{
		{"invalid json", `{`, nil, http.StatusBadRequest},
		{"empty", `{}`, nil, http.StatusBadRequest},
		{"unknown key", `{"cursor.speed":2}`, nil, http.StatusBadRequest},
		{"section", `{"cursor":1}`, nil, http.StatusBadRequest},
		{"invalid value", `{"cursor.sensitivity":-1}`, nil, http.StatusBadRequest},
		{"wrong type", `{"cursor.margin":"wide"}`, nil, http.StatusBadRequest},
		{"apply failed", `{"cursor.sensitivity":2}`, errors.New("camera busy"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			ctrl := newFakeController()
			ctrl.reconfigErr = tt.reconfigErr
			before := ctrl.Settings()
			r := newRouter(NewConfigHandler(ctrl, s.Settings()))

			rec := do(r, http.MethodPatch, "/api/config", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
			if ctrl.Settings().Cursor != before.Cursor {
				t.Error("settings should be unchanged")
			}
			if all, _ := s.Settings().All(); len(all) != 0 {
				t.Errorf("nothing should be persisted, got %v", all)
			}
		})
	}
}
