// Package server provides the HTTP control plane: the REST API, the live
// gesture event stream and the camera preview.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ayusman/spatialtouch/internal/capture"
	"github.com/ayusman/spatialtouch/internal/log"
	"github.com/ayusman/spatialtouch/internal/server/api"
	"github.com/ayusman/spatialtouch/internal/store"
)

// Config holds the server dependencies. Routes whose dependency is nil are
// not registered.
type Config struct {
	Controller api.Controller
	Store      *store.Store
	Plugins    api.PluginCatalog
	// OnBindingsChanged runs after the bindings table is modified.
	OnBindingsChanged func() error
	Preview           *capture.Preview
	StaticDir         string
}

// Server is the HTTP server of the application.
type Server struct {
	config Config
	router *mux.Router
	hub    *Hub
	start  time.Time
	logger *slog.Logger
	http   *http.Server
}

// New creates a Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		router: mux.NewRouter(),
		hub:    NewHub(),
		start:  time.Now(),
		logger: log.With("component", "server"),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router
	r.Use(s.recovery, s.logRequests)

	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/api/events", s.hub).Methods(http.MethodGet)

	if s.config.Controller != nil {
		api.NewControlHandler(s.config.Controller).Register(r)

		var settings api.SettingsStore
		if s.config.Store != nil {
			settings = s.config.Store.Settings()
		}
		api.NewConfigHandler(s.config.Controller, settings).Register(r)
	}

	if s.config.Plugins != nil {
		api.NewPluginHandler(s.config.Plugins).Register(r)
	}

	if s.config.Store != nil {
		api.NewBindingHandler(s.config.Store, s.config.Plugins, s.config.OnBindingsChanged).Register(r)
		api.NewHistoryHandler(s.config.Store).Register(r)
	}

	if s.config.Preview != nil {
		r.Handle("/api/stream", NewStreamHandler(s.config.Preview)).Methods(http.MethodGet)
	}

	if s.config.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.config.StaticDir))).Methods(http.MethodGet)
	}
}

// Hub returns the live event hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"uptime":  time.Since(s.start).Round(time.Second).String(),
		"clients": s.hub.Clients(),
	})
}

// ListenAndServe serves on addr until Shutdown is called.
func (s *Server) ListenAndServe(addr string) error {
	s.http = &http.Server{
		Addr:        addr,
		Handler:     s,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	s.logger.Info("http server listening", "addr", addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown disconnects websocket clients and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("handler panicked", "path", r.URL.Path, "panic", rec)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
