package app

import (
	"time"

	"github.com/ayusman/spatialtouch/internal/gesture"
	"github.com/ayusman/spatialtouch/internal/smoothing"
	"github.com/ayusman/spatialtouch/internal/zone"
)

// statsAlpha weights the newest sample in the stage timing averages.
const statsAlpha = 0.1

// Status is a snapshot of the pipeline state.
type Status struct {
	Running     bool              `json:"running"`
	Paused      bool              `json:"paused"`
	Mode        Mode              `json:"mode"`
	FPS         int               `json:"fps"`
	HandPresent bool              `json:"hand_present"`
	Dragging    bool              `json:"dragging"`
	Cursor      *zone.ScreenPoint `json:"cursor,omitempty"`
	LastGesture *gesture.Gesture  `json:"last_gesture,omitempty"`
	Screen      zone.ScreenPoint  `json:"screen"`
	SessionID   string            `json:"session_id,omitempty"`
}

// Stats holds pipeline counters and smoothed per-stage timings in
// milliseconds.
type Stats struct {
	Frames        int64            `json:"frames"`
	SkippedFrames int64            `json:"skipped_frames"`
	HandFrames    int64            `json:"hand_frames"`
	Gestures      int64            `json:"gestures"`
	Actions       int64            `json:"actions"`
	Errors        int64            `json:"errors"`
	ByType        map[string]int64 `json:"by_type"`
	CaptureMs     float64          `json:"capture_ms"`
	TrackingMs    float64          `json:"tracking_ms"`
	GestureMs     float64          `json:"gesture_ms"`
	TotalMs       float64          `json:"total_ms"`
}

type stats struct {
	s                                 Stats
	capture, tracking, gesture, total *smoothing.EMA
}

func newStats() *stats {
	ema := func() *smoothing.EMA {
		e, _ := smoothing.NewEMA(statsAlpha)
		return e
	}
	return &stats{
		s:        Stats{ByType: make(map[string]int64)},
		capture:  ema(),
		tracking: ema(),
		gesture:  ema(),
		total:    ema(),
	}
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

func (st *stats) frame(capture, tracking, gest, total time.Duration, hand bool) {
	st.s.Frames++
	if hand {
		st.s.HandFrames++
	}
	st.s.CaptureMs = st.capture.Update(ms(capture))
	st.s.TrackingMs = st.tracking.Update(ms(tracking))
	st.s.GestureMs = st.gesture.Update(ms(gest))
	st.s.TotalMs = st.total.Update(ms(total))
}

func (st *stats) snapshot() Stats {
	out := st.s
	out.ByType = make(map[string]int64, len(st.s.ByType))
	for k, v := range st.s.ByType {
		out.ByType[k] = v
	}
	return out
}

// Status returns the current pipeline state.
func (a *App) Status() Status {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()
	return a.status
}

// Stats returns the pipeline counters.
func (a *App) Stats() Stats {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()
	return a.stats.snapshot()
}

func (a *App) setState(fn func(*Status)) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	fn(&a.status)
}

func (a *App) updateStats(fn func(*stats)) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	fn(a.stats)
}

func (a *App) logStats() {
	st := a.Stats()
	a.logger.Info("pipeline statistics",
		"frames", st.Frames,
		"hand_frames", st.HandFrames,
		"gestures", st.Gestures,
		"actions", st.Actions,
		"errors", st.Errors,
		"capture_ms", st.CaptureMs,
		"tracking_ms", st.TrackingMs,
		"gesture_ms", st.GestureMs,
		"total_ms", st.TotalMs,
	)
}
