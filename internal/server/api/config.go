package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"github.com/gorilla/mux"

	"github.com/ayusman/spatialtouch/internal/config"
	"github.com/ayusman/spatialtouch/internal/log"
)

// SettingsStore persists configuration overrides.
type SettingsStore interface {
	Set(key, value string) error
	All() (map[string]string, error)
	Delete(key string) error
}

// ConfigHandler exposes the running configuration. Changes are applied to
// the pipeline first and persisted only when they were accepted.
type ConfigHandler struct {
	ctrl     Controller
	settings SettingsStore
	logger   *slog.Logger
}

// NewConfigHandler creates a handler. settings may be nil, in which case
// changes are not persisted.
func NewConfigHandler(ctrl Controller, settings SettingsStore) *ConfigHandler {
	return &ConfigHandler{
		ctrl:     ctrl,
		settings: settings,
		logger:   log.With("component", "api"),
	}
}

// Register adds the configuration routes to r.
func (h *ConfigHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/config", h.get).Methods(http.MethodGet)
	r.HandleFunc("/api/config", h.patch).Methods(http.MethodPatch)
	r.HandleFunc("/api/config/overrides", h.overrides).Methods(http.MethodGet)
	r.HandleFunc("/api/config/overrides/{key}", h.deleteOverride).Methods(http.MethodDelete)
	r.HandleFunc("/api/config/{key}", h.lookup).Methods(http.MethodGet)
}

func (h *ConfigHandler) get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.Settings())
}

func (h *ConfigHandler) lookup(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	v, err := h.ctrl.Settings().Lookup(key)
	if err != nil {
		writeError(w, http.StatusNotFound, "Unknown setting")
		return
	}
	writeJSON(w, http.StatusOK, map[string]json.RawMessage{key: v})
}

// patch applies a flat object of dotted keys, e.g.
// {"cursor.sensitivity": 1.5, "actions.safe_mode": false}.
func (h *ConfigHandler) patch(w http.ResponseWriter, r *http.Request) {
	var body map[string]json.RawMessage
	if !readJSON(w, r, &body) {
		return
	}
	if len(body) == 0 {
		writeError(w, http.StatusBadRequest, "No settings given")
		return
	}

	overrides := make(map[string]string, len(body))
	for k, v := range body {
		overrides[k] = string(v)
	}

	next, err := h.ctrl.Settings().WithOverrides(overrides)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.ctrl.Reconfigure(next); err != nil {
		if errors.Is(err, config.ErrInvalid) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("reconfigure failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to apply configuration")
		return
	}

	if h.settings != nil {
		keys := make([]string, 0, len(overrides))
		for k := range overrides {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := h.settings.Set(k, overrides[k]); err != nil {
				h.logger.Error("persist setting failed", "key", k, "error", err)
				writeError(w, http.StatusInternalServerError, "Configuration applied but not saved")
				return
			}
		}
	}

	writeJSON(w, http.StatusOK, next)
}

func (h *ConfigHandler) overrides(w http.ResponseWriter, r *http.Request) {
	if h.settings == nil {
		writeJSON(w, http.StatusOK, map[string]string{})
		return
	}
	all, err := h.settings.All()
	if err != nil {
		h.logger.Error("list overrides failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list overrides")
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// deleteOverride forgets a persisted override. The running configuration is
// unchanged until the next start.
func (h *ConfigHandler) deleteOverride(w http.ResponseWriter, r *http.Request) {
	if h.settings == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	key := mux.Vars(r)["key"]
	if err := h.settings.Delete(key); err != nil {
		h.logger.Error("delete override failed", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete override")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
