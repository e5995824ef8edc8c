package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ayusman/spatialtouch/internal/action"
	"github.com/ayusman/spatialtouch/internal/gesture"
	"github.com/ayusman/spatialtouch/internal/log"
	"github.com/ayusman/spatialtouch/internal/plugin"
	"github.com/ayusman/spatialtouch/internal/store"
)

// PluginCatalog lists discovered plugins and resolves them by name.
type PluginCatalog interface {
	Get(name string) (*plugin.Plugin, error)
	List() []*plugin.Plugin
}

// BindingHandler manages gesture-to-plugin bindings.
type BindingHandler struct {
	store    *store.Store
	plugins  PluginCatalog
	onChange func() error
	logger   *slog.Logger
}

// NewBindingHandler creates a handler over s. plugins may be nil, in which
// case plugin names are not checked. onChange, when set, runs after every
// successful write so the running pipeline picks up the new bindings.
func NewBindingHandler(s *store.Store, plugins PluginCatalog, onChange func() error) *BindingHandler {
	return &BindingHandler{
		store:    s,
		plugins:  plugins,
		onChange: onChange,
		logger:   log.With("component", "api"),
	}
}

// Register adds the binding routes to r.
func (h *BindingHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/bindings", h.list).Methods(http.MethodGet)
	r.HandleFunc("/api/bindings", h.create).Methods(http.MethodPost)
	r.HandleFunc("/api/bindings/{id}", h.get).Methods(http.MethodGet)
	r.HandleFunc("/api/bindings/{id}", h.update).Methods(http.MethodPut)
	r.HandleFunc("/api/bindings/{id}", h.delete).Methods(http.MethodDelete)
}

type createBindingRequest struct {
	GestureType string          `json:"gesture_type"`
	PluginName  string          `json:"plugin_name"`
	ActionName  string          `json:"action_name"`
	Config      json.RawMessage `json:"config"`
	Enabled     *bool           `json:"enabled"`
}

type updateBindingRequest struct {
	GestureType string          `json:"gesture_type"`
	PluginName  string          `json:"plugin_name"`
	ActionName  string          `json:"action_name"`
	Config      json.RawMessage `json:"config"`
	Enabled     *bool           `json:"enabled"`
}

type listBindingsResponse struct {
	Bindings []*store.Binding `json:"bindings"`
}

func (h *BindingHandler) list(w http.ResponseWriter, r *http.Request) {
	bindings, err := h.store.Bindings().List()
	if err != nil {
		h.logger.Error("list bindings failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list bindings")
		return
	}
	if bindings == nil {
		bindings = []*store.Binding{}
	}
	writeJSON(w, http.StatusOK, listBindingsResponse{Bindings: bindings})
}

func (h *BindingHandler) get(w http.ResponseWriter, r *http.Request) {
	b, ok := h.load(w, mux.Vars(r)["id"])
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BindingHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createBindingRequest
	if !readJSON(w, r, &req) {
		return
	}

	b := &store.Binding{
		GestureType: req.GestureType,
		PluginName:  req.PluginName,
		ActionName:  req.ActionName,
		Config:      req.Config,
		Enabled:     req.Enabled == nil || *req.Enabled,
	}
	if msg := h.validate(b); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.store.Bindings().Create(b); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusConflict, "Gesture type is already bound")
			return
		}
		h.logger.Error("create binding failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create binding")
		return
	}

	h.changed()
	writeJSON(w, http.StatusCreated, b)
}

func (h *BindingHandler) update(w http.ResponseWriter, r *http.Request) {
	b, ok := h.load(w, mux.Vars(r)["id"])
	if !ok {
		return
	}

	var req updateBindingRequest
	if !readJSON(w, r, &req) {
		return
	}

	if req.GestureType != "" {
		b.GestureType = req.GestureType
	}
	if req.PluginName != "" {
		b.PluginName = req.PluginName
	}
	if req.ActionName != "" {
		b.ActionName = req.ActionName
	}
	if req.Config != nil {
		b.Config = req.Config
	}
	if req.Enabled != nil {
		b.Enabled = *req.Enabled
	}
	if msg := h.validate(b); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.store.Bindings().Update(b); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusConflict, "Gesture type is already bound")
			return
		}
		h.logger.Error("update binding failed", "id", b.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update binding")
		return
	}

	h.changed()
	writeJSON(w, http.StatusOK, b)
}

func (h *BindingHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Bindings().Delete(mux.Vars(r)["id"]); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Binding not found")
			return
		}
		h.logger.Error("delete binding failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete binding")
		return
	}

	h.changed()
	w.WriteHeader(http.StatusNoContent)
}

func (h *BindingHandler) load(w http.ResponseWriter, id string) (*store.Binding, bool) {
	b, err := h.store.Bindings().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Binding not found")
			return nil, false
		}
		h.logger.Error("get binding failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get binding")
		return nil, false
	}
	return b, true
}

// validate returns a client-facing message for an unacceptable binding.
func (h *BindingHandler) validate(b *store.Binding) string {
	switch {
	case b.GestureType == "":
		return "gesture_type is required"
	case b.PluginName == "":
		return "plugin_name is required"
	case b.ActionName == "":
		return "action_name is required"
	}

	t, err := gesture.ParseGestureType(b.GestureType)
	if err != nil {
		return "Unknown gesture type"
	}
	if !action.Bindable(t) {
		return "Gesture type cannot be bound"
	}
	if b.Config != nil && !json.Valid(b.Config) {
		return "config must be valid JSON"
	}

	if h.plugins == nil {
		return ""
	}
	p, err := h.plugins.Get(b.PluginName)
	if err != nil {
		return "Plugin not found"
	}
	if !p.Supports(b.ActionName) {
		return "Plugin does not support action"
	}
	return ""
}

func (h *BindingHandler) changed() {
	if h.onChange == nil {
		return
	}
	if err := h.onChange(); err != nil {
		h.logger.Error("reload bindings failed", "error", err)
	}
}
