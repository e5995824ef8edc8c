package detector

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/ayusman/spatialtouch/internal/log"
	"github.com/ayusman/spatialtouch/internal/smoothing"
)

// SmoothingNone disables landmark smoothing in the tracker.
const SmoothingNone smoothing.Kind = "none"

// TrackerConfig controls how raw detections become HandData.
type TrackerConfig struct {
	// MinConfidence drops hands scoring below it.
	MinConfidence float64 `json:"min_confidence" yaml:"min_confidence" split_words:"true"`
	// SmoothingFactor is the per-landmark smoothing alpha.
	SmoothingFactor float64 `json:"smoothing_factor" yaml:"smoothing_factor" split_words:"true"`
	// Smoothing selects the filter kind; empty means EMA.
	Smoothing smoothing.Kind `json:"smoothing" yaml:"smoothing"`
	// SmoothingBeta is the trend or speed coefficient for the
	// double-exponential and one-euro filters.
	SmoothingBeta float64 `json:"smoothing_beta" yaml:"smoothing_beta" split_words:"true"`
	// SmoothingMinCutoff is the one-euro minimum cutoff in Hz. Zero uses the
	// filter default.
	SmoothingMinCutoff float64 `json:"smoothing_min_cutoff" yaml:"smoothing_min_cutoff" split_words:"true"`
	// FlipHandedness swaps Left/Right. MediaPipe labels a mirrored image.
	FlipHandedness bool `json:"flip_handedness" yaml:"flip_handedness" split_words:"true"`
}

// DefaultTrackerConfig returns the tracker defaults.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		MinConfidence:   0.5,
		SmoothingFactor: 0.4,
		Smoothing:       smoothing.KindEMA,
		FlipHandedness:  true,
	}
}

// Tracker turns per-frame detections into HandData: it keeps the first hand,
// filters on confidence and smooths each landmark independently.
// A Tracker is not safe for concurrent use.
type Tracker struct {
	det       Detector
	cfg       TrackerConfig
	smoothers []*smoothing.Point3D

	framesWithoutHand int
	last              HandData
}

// NewTracker wraps det with the given configuration.
func NewTracker(det Detector, cfg TrackerConfig) (*Tracker, error) {
	t := &Tracker{det: det, cfg: cfg}

	if cfg.Smoothing != SmoothingNone {
		opts := smoothing.Options{
			Kind:      cfg.Smoothing,
			Alpha:     cfg.SmoothingFactor,
			Beta:      cfg.SmoothingBeta,
			MinCutoff: cfg.SmoothingMinCutoff,
		}
		t.smoothers = make([]*smoothing.Point3D, NumLandmarks)
		for i := range t.smoothers {
			s, err := smoothing.NewPoint3D(opts)
			if err != nil {
				return nil, fmt.Errorf("landmark smoother: %w", err)
			}
			t.smoothers[i] = s
		}
	}

	return t, nil
}

// Process runs the detector on frame and returns the tracked hand. Detector
// failures are logged and reported as no hand.
func (t *Tracker) Process(frame *gocv.Mat) HandData {
	hands, err := t.det.Detect(frame)
	if err != nil {
		log.Error("hand detection failed", "error", err)
		t.last = NoHand()
		return t.last
	}
	return t.Track(hands)
}

// Track applies the tracker to an already detected set of hands.
func (t *Tracker) Track(hands []HandLandmarks) HandData {
	if len(hands) == 0 || hands[0].Score < t.cfg.MinConfidence {
		t.framesWithoutHand++
		t.last = NoHand()
		return t.last
	}
	t.framesWithoutHand = 0

	lm := hands[0]
	handedness := ParseHandedness(lm.Handedness)
	if t.cfg.FlipHandedness {
		handedness = handedness.Opposite()
	}

	points := lm.Points
	if t.smoothers != nil {
		for i, p := range points {
			x, y, z := t.smoothers[i].Update(p.X, p.Y, p.Z)
			points[i] = Point3D{X: x, Y: y, Z: z}
		}
	}

	t.last = NewHandData(points[:], handedness, lm.Score)
	return t.last
}

// FramesWithoutHand returns the number of consecutive frames with no hand.
func (t *Tracker) FramesWithoutHand() int {
	return t.framesWithoutHand
}

// LastHand returns the most recent result.
func (t *Tracker) LastHand() HandData {
	return t.last
}

// ResetSmoothing clears all landmark filters, so the next hand is reported
// unsmoothed.
func (t *Tracker) ResetSmoothing() {
	for _, s := range t.smoothers {
		s.Reset()
	}
}

// Close releases the underlying detector.
func (t *Tracker) Close() error {
	return t.det.Close()
}
