package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a scripted Detector. Queued per-frame results are
// returned first; after that every call returns the SetHands value.
type MockDetector struct {
	mu     sync.Mutex
	hands  []HandLandmarks
	queue  [][]HandLandmarks
	err    error
	calls  int
	closed bool
}

func NewMockDetector() *MockDetector { return &MockDetector{} }

// SetHands sets the steady-state result.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// Enqueue appends per-frame results. An empty entry simulates a frame with
// no hand.
func (m *MockDetector) Enqueue(frames ...[]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, frames...)
}

// SetError makes Detect fail with err until cleared with nil.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect was invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Closed reports whether Close was called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *MockDetector) Detect(*gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	switch {
	case m.err != nil:
		return nil, m.err
	case len(m.queue) == 0:
		return m.hands, nil
	}
	next := m.queue[0]
	m.queue = m.queue[1:]
	return next, nil
}

func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// PoseAt returns an open hand whose index fingertip sits at (x, y). The thumb
// tip is placed leftGap away from the index tip and the middle tip rightGap
// away from the thumb tip, so the two pinch distances are exact.
func PoseAt(x, y, leftGap, rightGap float64) HandLandmarks {
	lm := OpenPalmLandmarks()

	dx := x - lm.Points[IndexTip].X
	dy := y - lm.Points[IndexTip].Y
	for i := range lm.Points {
		lm.Points[i].X += dx
		lm.Points[i].Y += dy
	}

	thumb := Point3D{X: x + leftGap, Y: y, Z: 0}
	lm.Points[ThumbTip] = thumb
	lm.Points[IndexTip] = Point3D{X: x, Y: y, Z: 0}
	lm.Points[MiddleTip] = Point3D{X: thumb.X, Y: thumb.Y + rightGap, Z: 0}

	return lm
}

// LeftPinchLandmarks returns a hand with thumb and index tips touching.
func LeftPinchLandmarks() HandLandmarks {
	return PoseAt(0.5, 0.5, 0.01, 0.2)
}

// RightPinchLandmarks returns a hand with thumb and middle tips touching
// while the index finger stays apart.
func RightPinchLandmarks() HandLandmarks {
	return PoseAt(0.5, 0.5, 0.2, 0.01)
}

// openPalm is a left hand, palm facing the camera, fingers spread.
var openPalm = [NumLandmarks]Point3D{
	Wrist: {0.5, 0.8, 0},

	ThumbCMC: {0.55, 0.75, 0.02},
	ThumbMCP: {0.62, 0.70, 0.03},
	ThumbIP:  {0.68, 0.65, 0.03},
	ThumbTip: {0.73, 0.60, 0.03},

	IndexMCP: {0.55, 0.68, 0}, IndexPIP: {0.57, 0.55, 0}, IndexDIP: {0.58, 0.45, 0}, IndexTip: {0.58, 0.35, 0},
	MiddleMCP: {0.50, 0.66, 0}, MiddlePIP: {0.50, 0.52, 0}, MiddleDIP: {0.50, 0.40, 0}, MiddleTip: {0.50, 0.28, 0},
	RingMCP: {0.45, 0.68, 0}, RingPIP: {0.43, 0.55, 0}, RingDIP: {0.42, 0.45, 0}, RingTip: {0.42, 0.35, 0},
	PinkyMCP: {0.40, 0.70, 0}, PinkyPIP: {0.37, 0.60, 0}, PinkyDIP: {0.35, 0.50, 0}, PinkyTip: {0.34, 0.42, 0},
}

// OpenPalmLandmarks returns a confident open left hand with every finger
// extended.
func OpenPalmLandmarks() HandLandmarks {
	return HandLandmarks{Points: openPalm, Handedness: "Left", Score: 0.95}
}
