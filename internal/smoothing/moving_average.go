package smoothing

import "fmt"

// MovingAverage returns the arithmetic mean of the last N samples.
// It keeps a fixed-capacity ring buffer and a running sum, so each
// Update is O(1).
type MovingAverage struct {
	data []float64
	pos  int
	full bool
	sum  float64
}

// NewMovingAverage creates a MovingAverage over a window of size n.
func NewMovingAverage(n int) (*MovingAverage, error) {
	if n < 1 {
		return nil, fmt.Errorf("window=%d: %w", n, ErrInvalidWindow)
	}
	return &MovingAverage{data: make([]float64, n)}, nil
}

// Update pushes a sample and returns the mean of the current window.
func (m *MovingAverage) Update(value float64) float64 {
	if m.full {
		m.sum -= m.data[m.pos]
	}
	m.data[m.pos] = value
	m.sum += value

	m.pos++
	if m.pos >= len(m.data) {
		m.pos = 0
		m.full = true
	}

	return m.sum / float64(m.Len())
}

// Reset empties the window.
func (m *MovingAverage) Reset() {
	for i := range m.data {
		m.data[i] = 0
	}
	m.pos = 0
	m.full = false
	m.sum = 0
}

// Len returns the number of samples currently in the window.
func (m *MovingAverage) Len() int {
	if m.full {
		return len(m.data)
	}
	return m.pos
}

// Full reports whether the window holds N samples.
func (m *MovingAverage) Full() bool { return m.full }

// Window returns the configured window size.
func (m *MovingAverage) Window() int { return len(m.data) }
