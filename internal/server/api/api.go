// Package api implements the REST handlers of the control plane.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ayusman/spatialtouch/internal/app"
	"github.com/ayusman/spatialtouch/internal/config"
	"github.com/ayusman/spatialtouch/internal/log"
)

// maxBody caps request bodies; every payload here is a small JSON object.
const maxBody = 1 << 20

// Controller is the pipeline surface the handlers drive.
type Controller interface {
	Status() app.Status
	Stats() app.Stats
	Pause()
	Resume()
	Toggle() bool
	Settings() config.Config
	Reconfigure(config.Config) error
}

// readJSON decodes the request body into v. On failure it has already
// answered with 400 or 413 and returns false.
func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Body exceeds %d bytes", tooLarge.Limit))
		return false
	}
	writeError(w, http.StatusBadRequest, "Invalid JSON")
	return false
}

// writeJSON answers with status and, unless data is nil, its JSON encoding.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Debug("write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, struct {
		Error string `json:"error"`
	}{message})
}
