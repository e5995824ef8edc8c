package gesture

import (
	"time"

	"github.com/ayusman/spatialtouch/internal/detector"
	"github.com/ayusman/spatialtouch/internal/log"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func testOptions(c *fakeClock) []Option {
	return []Option{WithClock(c.Now), WithLogger(log.Discard())}
}

func openHand(x, y float64) detector.HandData {
	return detector.FromLandmarks(detector.PoseAt(x, y, 0.2, 0.2))
}

func leftPinchHand(x, y float64) detector.HandData {
	return detector.FromLandmarks(detector.PoseAt(x, y, 0.01, 0.2))
}

func rightPinchHand(x, y float64) detector.HandData {
	return detector.FromLandmarks(detector.PoseAt(x, y, 0.2, 0.01))
}

func types(gs []Gesture) []GestureType {
	out := make([]GestureType, len(gs))
	for i, g := range gs {
		out[i] = g.Type
	}
	return out
}
