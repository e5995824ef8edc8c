package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ayusman/spatialtouch/internal/capture"
)

// streamInterval bounds the MJPEG rate independently of the camera rate.
const streamInterval = 66 * time.Millisecond

// StreamHandler serves the pipeline preview as MJPEG. It never reads the
// camera itself, so watching the stream does not steal frames.
type StreamHandler struct {
	preview  *capture.Preview
	interval time.Duration
}

// NewStreamHandler creates a StreamHandler over preview.
func NewStreamHandler(preview *capture.Preview) *StreamHandler {
	return &StreamHandler{preview: preview, interval: streamInterval}
}

// ServeHTTP writes every new preview frame until the client disconnects.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var last uint64
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		data, seq := h.preview.Latest()
		if seq == last || len(data) == 0 {
			continue
		}
		last = seq

		if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(data)); err != nil {
			return
		}
		if _, err := w.Write(data); err != nil {
			return
		}
		if _, err := fmt.Fprint(w, "\r\n"); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}
