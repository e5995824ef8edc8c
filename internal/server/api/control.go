package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// ControlHandler serves pipeline status and pause control.
type ControlHandler struct {
	ctrl Controller
}

// NewControlHandler creates a handler for ctrl.
func NewControlHandler(ctrl Controller) *ControlHandler {
	return &ControlHandler{ctrl: ctrl}
}

// Register adds the control routes to r.
func (h *ControlHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/status", h.status).Methods(http.MethodGet)
	r.HandleFunc("/api/stats", h.stats).Methods(http.MethodGet)
	r.HandleFunc("/api/pause", h.pause).Methods(http.MethodPost)
	r.HandleFunc("/api/resume", h.resume).Methods(http.MethodPost)
	r.HandleFunc("/api/toggle", h.toggle).Methods(http.MethodPost)
}

type pausedResponse struct {
	Paused bool `json:"paused"`
}

func (h *ControlHandler) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.Status())
}

func (h *ControlHandler) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.Stats())
}

func (h *ControlHandler) pause(w http.ResponseWriter, r *http.Request) {
	h.ctrl.Pause()
	writeJSON(w, http.StatusOK, pausedResponse{Paused: true})
}

func (h *ControlHandler) resume(w http.ResponseWriter, r *http.Request) {
	h.ctrl.Resume()
	writeJSON(w, http.StatusOK, pausedResponse{Paused: false})
}

func (h *ControlHandler) toggle(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pausedResponse{Paused: h.ctrl.Toggle()})
}
