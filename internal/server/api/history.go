package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ayusman/spatialtouch/internal/store"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 1000
)

// HistoryHandler serves the recorded sessions and gesture events.
type HistoryHandler struct {
	store *store.Store
}

// NewHistoryHandler creates a handler over s.
func NewHistoryHandler(s *store.Store) *HistoryHandler {
	return &HistoryHandler{store: s}
}

// Register adds the history routes to r.
func (h *HistoryHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/history", h.events).Methods(http.MethodGet)
	r.HandleFunc("/api/sessions", h.sessions).Methods(http.MethodGet)
	r.HandleFunc("/api/sessions/{id}", h.session).Methods(http.MethodGet)
}

type eventsResponse struct {
	Events []*store.Event `json:"events"`
}

type sessionsResponse struct {
	Sessions []*store.Session `json:"sessions"`
}

type sessionResponse struct {
	*store.Session
	ByType map[string]int64 `json:"by_type"`
}

func (h *HistoryHandler) events(w http.ResponseWriter, r *http.Request) {
	events, err := h.store.Events().Recent(limit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}
	if events == nil {
		events = []*store.Event{}
	}
	writeJSON(w, http.StatusOK, eventsResponse{Events: events})
}

func (h *HistoryHandler) sessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.Sessions().List(limit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []*store.Session{}
	}
	writeJSON(w, http.StatusOK, sessionsResponse{Sessions: sessions})
}

func (h *HistoryHandler) session(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	sess, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}
	counts, err := h.store.Events().CountByType(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count events")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Session: sess, ByType: counts})
}

// limit reads ?limit=, clamped to [1, maxHistoryLimit].
func limit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n < 1 {
		return defaultHistoryLimit
	}
	return min(n, maxHistoryLimit)
}
