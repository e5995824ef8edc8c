package gesture

import (
	"testing"
	"time"

	"github.com/ayusman/spatialtouch/internal/detector"
)

// twoFingerHand holds index and middle tips together with the thumb apart.
func twoFingerHand(x, y float64) detector.HandData {
	lm := detector.PoseAt(x, y, 0.2, 0.2)
	lm.Points[detector.MiddleTip] = detector.Point3D{X: x + 0.02, Y: y}
	return detector.FromLandmarks(lm)
}

func runSwipe(r *SwipeRecognizer, clock *fakeClock, ys []float64, hand func(x, y float64) detector.HandData) []Gesture {
	var out []Gesture
	for _, y := range ys {
		clock.Advance(33 * time.Millisecond)
		if g, ok := r.Observe(hand(0.5, y)); ok {
			out = append(out, g)
		}
	}
	return out
}

func TestSwipeRecognizer_Directions(t *testing.T) {
	tests := []struct {
		name string
		ys   []float64
		want GestureType
	}{
		{"hand moves up", []float64{0.7, 0.65, 0.6, 0.55, 0.5, 0.45}, ScrollUp},
		{"hand moves down", []float64{0.3, 0.35, 0.4, 0.45, 0.5, 0.55}, ScrollDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			r := NewSwipeRecognizer(DefaultSwipeConfig(), testOptions(clock)...)

			got := runSwipe(r, clock, tt.ys, twoFingerHand)

			if len(got) != 1 {
				t.Fatalf("expected exactly one swipe, got %v", types(got))
			}
			if got[0].Type != tt.want {
				t.Errorf("swipe = %v, want %v", got[0].Type, tt.want)
			}
			if _, ok := got[0].Metadata.Get(MetaDistance); !ok {
				t.Error("swipe should carry its DTW distance")
			}
		})
	}
}

func TestSwipeRecognizer_RequiresPose(t *testing.T) {
	clock := newFakeClock()
	r := NewSwipeRecognizer(DefaultSwipeConfig(), testOptions(clock)...)

	got := runSwipe(r, clock, []float64{0.7, 0.6, 0.5, 0.4, 0.3}, openHand)
	if len(got) != 0 {
		t.Errorf("open hand produced %v", types(got))
	}
}

func TestSwipeRecognizer_IgnoresSmallMoves(t *testing.T) {
	clock := newFakeClock()
	r := NewSwipeRecognizer(DefaultSwipeConfig(), testOptions(clock)...)

	got := runSwipe(r, clock, []float64{0.5, 0.52, 0.5, 0.53, 0.51, 0.52}, twoFingerHand)
	if len(got) != 0 {
		t.Errorf("jitter produced %v", types(got))
	}
}

func TestSwipeRecognizer_HorizontalRejected(t *testing.T) {
	clock := newFakeClock()
	r := NewSwipeRecognizer(DefaultSwipeConfig(), testOptions(clock)...)

	// Large sideways sweep with a small vertical drift.
	var got []Gesture
	for i := 0; i < 6; i++ {
		clock.Advance(33 * time.Millisecond)
		x := 0.2 + 0.1*float64(i)
		y := 0.5 - 0.04*float64(i)
		if g, ok := r.Observe(twoFingerHand(x, y)); ok {
			got = append(got, g)
		}
	}
	if len(got) != 0 {
		t.Errorf("horizontal sweep produced %v", types(got))
	}
}

func TestSwipeRecognizer_Cooldown(t *testing.T) {
	clock := newFakeClock()
	r := NewSwipeRecognizer(DefaultSwipeConfig(), testOptions(clock)...)

	first := runSwipe(r, clock, []float64{0.8, 0.75, 0.7, 0.65, 0.6}, twoFingerHand)
	second := runSwipe(r, clock, []float64{0.55, 0.5, 0.45, 0.4}, twoFingerHand)

	if len(first) != 1 {
		t.Fatalf("expected first swipe, got %v", types(first))
	}
	if len(second) != 0 {
		t.Errorf("swipe inside cooldown produced %v", types(second))
	}
}

func TestSwipeRecognizer_Disabled(t *testing.T) {
	clock := newFakeClock()
	cfg := DefaultSwipeConfig()
	cfg.Enabled = false
	r := NewSwipeRecognizer(cfg, testOptions(clock)...)

	if got := runSwipe(r, clock, []float64{0.7, 0.6, 0.5, 0.4, 0.3}, twoFingerHand); len(got) != 0 {
		t.Errorf("disabled recognizer produced %v", types(got))
	}
}
