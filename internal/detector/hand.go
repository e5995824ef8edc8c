package detector

import "encoding/json"

// Handedness classifies a detected hand.
type Handedness int

const (
	HandUnknown Handedness = iota
	HandLeft
	HandRight
)

// String returns "Left", "Right" or "Unknown".
func (h Handedness) String() string {
	switch h {
	case HandLeft:
		return "Left"
	case HandRight:
		return "Right"
	default:
		return "Unknown"
	}
}

// ParseHandedness converts a detector label to a Handedness.
func ParseHandedness(s string) Handedness {
	switch s {
	case "Left", "left":
		return HandLeft
	case "Right", "right":
		return HandRight
	default:
		return HandUnknown
	}
}

// Opposite swaps Left and Right. Unknown stays Unknown.
func (h Handedness) Opposite() Handedness {
	switch h {
	case HandLeft:
		return HandRight
	case HandRight:
		return HandLeft
	default:
		return HandUnknown
	}
}

// HandData is one frame's view of the tracked hand. It is built once per
// frame and never mutated afterwards. When the hand is not valid every
// landmark accessor reports the landmark as absent.
type HandData struct {
	points     []Point3D
	handedness Handedness
	confidence float64
	valid      bool
}

// NewHandData builds a valid HandData from landmark points. The slice is
// copied. A hand with fewer than NumLandmarks points is still valid, but the
// missing landmarks are reported as absent.
func NewHandData(points []Point3D, handedness Handedness, confidence float64) HandData {
	n := len(points)
	if n > NumLandmarks {
		n = NumLandmarks
	}
	cp := make([]Point3D, n)
	copy(cp, points[:n])

	return HandData{
		points:     cp,
		handedness: handedness,
		confidence: confidence,
		valid:      true,
	}
}

// FromLandmarks converts raw detector output to HandData.
func FromLandmarks(lm HandLandmarks) HandData {
	return NewHandData(lm.Points[:], ParseHandedness(lm.Handedness), lm.Score)
}

// NoHand returns an invalid HandData, used when nothing was tracked.
func NoHand() HandData {
	return HandData{}
}

// Valid reports whether the hand was tracked this frame.
func (h HandData) Valid() bool { return h.valid }

// Handedness returns the hand classification.
func (h HandData) Handedness() Handedness { return h.handedness }

// Confidence returns the detection confidence in [0,1].
func (h HandData) Confidence() float64 { return h.confidence }

// Len returns the number of landmarks carried.
func (h HandData) Len() int { return len(h.points) }

// Landmark returns landmark i, or false when the hand is invalid or the
// landmark is missing.
func (h HandData) Landmark(i int) (Point3D, bool) {
	if !h.valid || i < 0 || i >= len(h.points) {
		return Point3D{}, false
	}
	return h.points[i], true
}

// Wrist returns the wrist landmark.
func (h HandData) Wrist() (Point3D, bool) { return h.Landmark(Wrist) }

// ThumbTip returns the thumb tip landmark.
func (h HandData) ThumbTip() (Point3D, bool) { return h.Landmark(ThumbTip) }

// IndexTip returns the index finger tip landmark.
func (h HandData) IndexTip() (Point3D, bool) { return h.Landmark(IndexTip) }

// MiddleTip returns the middle finger tip landmark.
func (h HandData) MiddleTip() (Point3D, bool) { return h.Landmark(MiddleTip) }

// RingTip returns the ring finger tip landmark.
func (h HandData) RingTip() (Point3D, bool) { return h.Landmark(RingTip) }

// PinkyTip returns the pinky tip landmark.
func (h HandData) PinkyTip() (Point3D, bool) { return h.Landmark(PinkyTip) }

// Points returns a copy of the landmarks, or nil when the hand is invalid.
func (h HandData) Points() []Point3D {
	if !h.valid {
		return nil
	}
	cp := make([]Point3D, len(h.points))
	copy(cp, h.points)
	return cp
}

// MarshalJSON encodes the hand for the landmark stream.
func (h HandData) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Points     []Point3D `json:"points"`
		Handedness string    `json:"handedness"`
		Confidence float64   `json:"confidence"`
		Valid      bool      `json:"valid"`
	}{
		Points:     h.Points(),
		Handedness: h.handedness.String(),
		Confidence: h.confidence,
		Valid:      h.valid,
	})
}
