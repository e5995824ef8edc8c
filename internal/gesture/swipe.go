package gesture

import (
	"math"
	"time"

	"github.com/ayusman/spatialtouch/internal/detector"
)

// SwipeConfig tunes the swipe-to-scroll recognizer.
type SwipeConfig struct {
	// Enabled turns the recognizer on.
	Enabled bool `json:"enabled" yaml:"enabled"`
	// TwoFingerGap is the largest index-middle tip distance that still
	// counts as the two-finger scroll pose.
	TwoFingerGap float64 `json:"two_finger_gap" yaml:"two_finger_gap" split_words:"true"`
	// MinTravel is the normalized vertical distance a swipe must cover.
	MinTravel float64 `json:"min_travel" yaml:"min_travel" split_words:"true"`
	// MaxDurationMs bounds how old path samples may be.
	MaxDurationMs int `json:"max_duration_ms" yaml:"max_duration_ms" split_words:"true"`
	// CooldownMs is the minimum time between two swipes.
	CooldownMs int `json:"cooldown_ms" yaml:"cooldown_ms" split_words:"true"`
	// Tolerance is the largest DTW distance accepted as a match.
	Tolerance float64 `json:"tolerance" yaml:"tolerance"`
}

// DefaultSwipeConfig returns the recognizer defaults.
func DefaultSwipeConfig() SwipeConfig {
	return SwipeConfig{
		Enabled:       true,
		TwoFingerGap:  0.06,
		MinTravel:     0.15,
		MaxDurationMs: 600,
		CooldownMs:    400,
		Tolerance:     0.25,
	}
}

const swipeSamples = 16

type swipeTemplate struct {
	typ  GestureType
	path []PathPoint
}

// SwipeRecognizer watches the index fingertip while index and middle
// fingers are held together and reports vertical swipes as SCROLL_UP or
// SCROLL_DOWN. Moving the hand up the image scrolls up.
type SwipeRecognizer struct {
	cfg       SwipeConfig
	now       func() time.Time
	templates []swipeTemplate

	path     []PathPoint
	lastFire time.Time
}

// NewSwipeRecognizer builds a recognizer with vertical swipe templates.
func NewSwipeRecognizer(cfg SwipeConfig, opts ...Option) *SwipeRecognizer {
	o := buildOptions(opts)
	up := resamplePath([]PathPoint{{X: 0, Y: 1}, {X: 0, Y: 0}}, swipeSamples)
	down := resamplePath([]PathPoint{{X: 0, Y: 0}, {X: 0, Y: 1}}, swipeSamples)

	return &SwipeRecognizer{
		cfg: cfg,
		now: o.now,
		templates: []swipeTemplate{
			{typ: ScrollUp, path: up},
			{typ: ScrollDown, path: down},
		},
	}
}

// Observe feeds one frame. It returns a scroll gesture when the recent path
// matches a swipe template.
func (r *SwipeRecognizer) Observe(hand detector.HandData) (Gesture, bool) {
	if !r.cfg.Enabled {
		return Gesture{}, false
	}

	index, ok1 := hand.IndexTip()
	middle, ok2 := hand.MiddleTip()
	if !ok1 || !ok2 || index.DistanceTo(middle) > r.cfg.TwoFingerGap {
		r.Reset()
		return Gesture{}, false
	}

	now := r.now()
	r.path = append(r.path, PathPoint{X: index.X, Y: index.Y, Timestamp: now.UnixMilli()})
	r.trim(now)

	if now.Sub(r.lastFire) < time.Duration(r.cfg.CooldownMs)*time.Millisecond {
		return Gesture{}, false
	}
	if len(r.path) < 3 {
		return Gesture{}, false
	}

	first, last := r.path[0], r.path[len(r.path)-1]
	travel := last.Y - first.Y
	if math.Abs(travel) < r.cfg.MinTravel {
		return Gesture{}, false
	}

	typ, distance, ok := r.match()
	if !ok {
		return Gesture{}, false
	}

	g := Gesture{
		Type:       typ,
		Position:   [2]float64{last.X, last.Y},
		Confidence: 1.0 / (1.0 + distance),
		Timestamp:  now,
	}
	g.SetMeta(MetaDistance, distance)
	g.SetMeta(MetaTravel, travel)

	r.lastFire = now
	r.path = r.path[:0]
	return g, true
}

// match returns the closest template within tolerance.
func (r *SwipeRecognizer) match() (GestureType, float64, bool) {
	input := resamplePath(normalizePath(r.path), swipeSamples)

	best, bestDist := GestureType(0), math.Inf(1)
	for _, t := range r.templates {
		d := DTWDistanceWindow(input, t.path, swipeSamples/4)
		if d < bestDist {
			best, bestDist = t.typ, d
		}
	}
	if bestDist > r.cfg.Tolerance {
		return 0, bestDist, false
	}
	return best, bestDist, true
}

// trim drops samples older than MaxDurationMs.
func (r *SwipeRecognizer) trim(now time.Time) {
	cutoff := now.UnixMilli() - int64(r.cfg.MaxDurationMs)
	i := 0
	for i < len(r.path) && r.path[i].Timestamp < cutoff {
		i++
	}
	if i > 0 {
		r.path = append(r.path[:0], r.path[i:]...)
	}
}

// Reset clears the collected path. The cooldown is kept.
func (r *SwipeRecognizer) Reset() {
	r.path = r.path[:0]
}
