package gesture

import (
	"math"
	"testing"
)

func line(x0, y0, x1, y1 float64, n int) []PathPoint {
	out := make([]PathPoint, n)
	for i := range out {
		f := float64(i) / float64(n-1)
		out[i] = PathPoint{X: x0 + f*(x1-x0), Y: y0 + f*(y1-y0), Timestamp: int64(i * 33)}
	}
	return out
}

func TestDTWDistance(t *testing.T) {
	horizontal := line(0, 0, 2, 0, 3)

	tests := []struct {
		name    string
		a, b    []PathPoint
		wantMax float64
		wantMin float64
	}{
		{"identical", horizontal, horizontal, 0, 0},
		{"parallel offset", horizontal, line(0, 2, 2, 2, 3), 2, 2},
		{"same trajectory at different speeds", horizontal, line(0, 0, 2, 0, 9), 0.5, 0},
		{"opposite directions", line(0, 0, 0, 1, 8), line(0, 1, 0, 0, 8), math.Inf(1), 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DTWDistance(tt.a, tt.b)
			if d < tt.wantMin || d > tt.wantMax {
				t.Errorf("DTWDistance() = %v, want in [%v, %v]", d, tt.wantMin, tt.wantMax)
			}
			if back := DTWDistance(tt.b, tt.a); math.Abs(back-d) > 1e-12 {
				t.Errorf("distance not symmetric: %v vs %v", d, back)
			}
		})
	}
}

func TestDTWDistance_Empty(t *testing.T) {
	path := line(0, 0, 1, 1, 2)
	for _, tt := range []struct{ a, b []PathPoint }{{nil, nil}, {nil, path}, {path, []PathPoint{}}} {
		if d := DTWDistance(tt.a, tt.b); !math.IsInf(d, 1) {
			t.Errorf("DTWDistance(%v, %v) = %v, want +Inf", tt.a, tt.b, d)
		}
	}
}

func TestDTWDistanceWindow(t *testing.T) {
	a := line(0, 0, 0, 1, 16)
	// b lingers at the start and then catches up, which needs a wide warp
	b := append(line(0, 0, 0, 0.1, 8), line(0, 0.1, 0, 1, 8)...)

	full := DTWDistance(a, b)
	banded := DTWDistanceWindow(a, b, 1)
	if banded < full {
		t.Errorf("banded distance %v below unconstrained %v", banded, full)
	}
	if d := DTWDistanceWindow(a, b, -1); d != full {
		t.Errorf("negative window = %v, want %v", d, full)
	}

	// different lengths still align with a zero window
	if d := DTWDistanceWindow(line(0, 0, 1, 0, 4), line(0, 0, 1, 0, 8), 0); math.IsInf(d, 1) {
		t.Error("band should widen to the length difference")
	}
}

func TestPointDistance(t *testing.T) {
	if d := pointDistance(PathPoint{}, PathPoint{X: 3, Y: 4}); math.Abs(d-5) > 1e-12 {
		t.Errorf("pointDistance() = %v, want 5", d)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name string
		in   []PathPoint
		want []PathPoint
	}{
		{"nil", nil, nil},
		{"empty", []PathPoint{}, []PathPoint{}},
		{"single point", []PathPoint{{X: 50, Y: 100, Timestamp: 7}}, []PathPoint{{Timestamp: 7}}},
		{
			"keeps aspect ratio",
			[]PathPoint{{X: 10, Y: 0}, {X: 15, Y: 100, Timestamp: 50}, {X: 20, Y: 200, Timestamp: 100}},
			[]PathPoint{{X: 0, Y: 0}, {X: 0.025, Y: 0.5, Timestamp: 50}, {X: 0.05, Y: 1, Timestamp: 100}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizePath(tt.in)
			if (got == nil) != (tt.want == nil) || len(got) != len(tt.want) {
				t.Fatalf("normalizePath() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if math.Abs(got[i].X-tt.want[i].X) > 1e-9 || math.Abs(got[i].Y-tt.want[i].Y) > 1e-9 || got[i].Timestamp != tt.want[i].Timestamp {
					t.Errorf("point %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestResamplePath(t *testing.T) {
	path := []PathPoint{{X: 0, Y: 0, Timestamp: 0}, {X: 1, Y: 2, Timestamp: 100}}

	got := resamplePath(path, 5)
	if len(got) != 5 {
		t.Fatalf("got %d points, want 5", len(got))
	}
	if mid := got[2]; math.Abs(mid.X-0.5) > 1e-9 || math.Abs(mid.Y-1) > 1e-9 || mid.Timestamp != 50 {
		t.Errorf("midpoint = %+v, want (0.5, 1, 50)", mid)
	}
	if got[4] != path[1] {
		t.Errorf("last point = %+v, want %+v", got[4], path[1])
	}
}

func TestResamplePath_ArcLength(t *testing.T) {
	// dense samples at the start must not pull the output towards it
	path := []PathPoint{{X: 0}, {X: 0.01}, {X: 0.02}, {X: 0.03}, {X: 1}}

	got := resamplePath(path, 3)
	if math.Abs(got[1].X-0.5) > 1e-9 {
		t.Errorf("middle sample X = %v, want 0.5", got[1].X)
	}
}

func TestResamplePath_Degenerate(t *testing.T) {
	if got := resamplePath(nil, 5); got != nil {
		t.Errorf("resamplePath(nil) = %v, want nil", got)
	}
	if got := resamplePath([]PathPoint{{X: 1}}, 5); len(got) != 1 {
		t.Errorf("single point resampled to %v", got)
	}

	still := []PathPoint{{X: 0.3, Y: 0.3}, {X: 0.3, Y: 0.3}}
	got := resamplePath(still, 4)
	if len(got) != 4 {
		t.Fatalf("got %d points, want 4", len(got))
	}
	for _, p := range got {
		if p.X != 0.3 || p.Y != 0.3 {
			t.Errorf("stationary path resampled to %+v", p)
		}
	}
}
