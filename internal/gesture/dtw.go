package gesture

import "math"

// PathPoint is one sample of a fingertip path.
type PathPoint struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Timestamp int64   `json:"t"` // milliseconds
}

// DTWDistance is the dynamic time warping distance between two paths,
// divided by the longer path length. Empty paths are infinitely far apart.
func DTWDistance(a, b []PathPoint) float64 {
	return DTWDistanceWindow(a, b, -1)
}

// DTWDistanceWindow is DTWDistance restricted to a Sakoe-Chiba band: sample
// i of a may only align with samples of b within window positions of i. A
// negative window means no band. The band is widened to the length
// difference of the paths so an alignment always exists.
func DTWDistanceWindow(a, b []PathPoint, window int) float64 {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return math.Inf(1)
	}
	if window < 0 || window > max(n, m) {
		window = max(n, m)
	}
	window = max(window, abs(n-m))

	inf := math.Inf(1)
	prev := make([]float64, m+1)
	cur := make([]float64, m+1)
	for j := range prev {
		prev[j] = inf
	}
	prev[0] = 0

	for i := 1; i <= n; i++ {
		for j := range cur {
			cur[j] = inf
		}
		lo, hi := max(1, i-window), min(m, i+window)
		for j := lo; j <= hi; j++ {
			cur[j] = pointDistance(a[i-1], b[j-1]) + min(prev[j], cur[j-1], prev[j-1])
		}
		prev, cur = cur, prev
	}

	return prev[m] / float64(max(n, m))
}

func pointDistance(a, b PathPoint) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// normalizePath moves the bounding box of path to the origin and divides
// both axes by its longer side, keeping the aspect ratio. A path without
// extent collapses onto the origin.
func normalizePath(path []PathPoint) []PathPoint {
	if path == nil {
		return nil
	}
	out := make([]PathPoint, len(path))
	if len(path) == 0 {
		return out
	}

	minX, minY := path[0].X, path[0].Y
	maxX, maxY := minX, minY
	for _, p := range path[1:] {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	scale := max(maxX-minX, maxY-minY)
	for i, p := range path {
		out[i].Timestamp = p.Timestamp
		if scale > 0 {
			out[i].X = (p.X - minX) / scale
			out[i].Y = (p.Y - minY) / scale
		}
	}
	return out
}

// resamplePath returns n points spaced evenly along the arc length of path,
// so paths drawn at different speeds yield the same samples. Timestamps are
// interpolated with the positions.
func resamplePath(path []PathPoint, n int) []PathPoint {
	if len(path) == 0 {
		return nil
	}
	if len(path) == 1 || n <= 1 {
		return []PathPoint{path[0]}
	}

	// cumulative arc length at every input point
	cum := make([]float64, len(path))
	for i := 1; i < len(path); i++ {
		cum[i] = cum[i-1] + pointDistance(path[i-1], path[i])
	}
	total := cum[len(cum)-1]
	if total == 0 {
		out := make([]PathPoint, n)
		for i := range out {
			out[i] = path[0]
		}
		return out
	}

	out := make([]PathPoint, n)
	seg := 1
	for i := range out {
		target := total * float64(i) / float64(n-1)
		for seg < len(path)-1 && cum[seg] < target {
			seg++
		}
		p1, p2 := path[seg-1], path[seg]
		span := cum[seg] - cum[seg-1]
		frac := 0.0
		if span > 0 {
			frac = (target - cum[seg-1]) / span
		}
		out[i] = PathPoint{
			X:         p1.X + frac*(p2.X-p1.X),
			Y:         p1.Y + frac*(p2.Y-p1.Y),
			Timestamp: p1.Timestamp + int64(math.Round(frac*float64(p2.Timestamp-p1.Timestamp))),
		}
	}
	out[n-1] = path[len(path)-1]
	return out
}
