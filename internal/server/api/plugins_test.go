package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/ayusman/spatialtouch/internal/plugin"
)

func TestPluginHandler(t *testing.T) {
	r := newRouter(NewPluginHandler(testCatalog()))

	rec := do(r, http.MethodGet, "/api/plugins", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list pluginsResponse
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Plugins) != 1 || list.Plugins[0].Name != "keyboard" {
		t.Errorf("plugins = %+v", list.Plugins)
	}

	rec = do(r, http.MethodGet, "/api/plugins/keyboard", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var m plugin.Manifest
	if err := json.NewDecoder(rec.Body).Decode(&m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(m.Actions) != 2 {
		t.Errorf("actions = %v", m.Actions)
	}

	if rec := do(r, http.MethodGet, "/api/plugins/mouse", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown plugin status = %d, want 404", rec.Code)
	}
}
