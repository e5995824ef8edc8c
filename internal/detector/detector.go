package detector

import "gocv.io/x/gocv"

// Detector is a landmark provider. Detect returns the raw landmarks of each
// hand visible in frame, or no hands at all.
type Detector interface {
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)
	Close() error
}

// Config tunes the MediaPipe service.
type Config struct {
	// MaxHands bounds detections per frame. Only the first hand drives the
	// pointer.
	MaxHands        int
	MinConfidence   float64
	MinTrackingConf float64
	// ModelComplexity is 0 for the lite model and 1 for the full one.
	ModelComplexity int
	// ScriptPath overrides the search for mediapipe_service.py.
	ScriptPath string
}

// DefaultConfig tracks a single hand with the full model.
func DefaultConfig() Config {
	return Config{MaxHands: 1, MinConfidence: 0.7, MinTrackingConf: 0.5, ModelComplexity: 1}
}
