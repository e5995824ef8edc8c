// Package detector provides hand landmark types, the landmark provider
// interface and the tracker that turns raw detections into per-frame HandData.
package detector

import "math"

// Landmark indices in the 21-point MediaPipe hand model, wrist first, then
// each finger from base to tip.
const (
	Wrist = iota

	ThumbCMC
	ThumbMCP
	ThumbIP
	ThumbTip

	IndexMCP
	IndexPIP
	IndexDIP
	IndexTip

	MiddleMCP
	MiddlePIP
	MiddleDIP
	MiddleTip

	RingMCP
	RingPIP
	RingDIP
	RingTip

	PinkyMCP
	PinkyPIP
	PinkyDIP
	PinkyTip

	NumLandmarks
)

// Point3D is a landmark position. X and Y are normalized to the frame; Z is
// depth relative to the wrist, smaller is closer to the camera.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// DistanceTo is the Euclidean distance in normalized space.
func (p Point3D) DistanceTo(q Point3D) float64 {
	return math.Sqrt((p.X-q.X)*(p.X-q.X) + (p.Y-q.Y)*(p.Y-q.Y) + (p.Z-q.Z)*(p.Z-q.Z))
}

// HandLandmarks is one hand as the detector reported it, before tracking.
type HandLandmarks struct {
	Points [NumLandmarks]Point3D `json:"points"`
	// Handedness is "Left" or "Right" as seen by the model.
	Handedness string  `json:"handedness"`
	Score      float64 `json:"score"`
}
