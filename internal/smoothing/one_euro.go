package smoothing

import (
	"fmt"
	"math"
	"time"
)

// Default one-euro parameters.
const (
	DefaultMinCutoff = 1.0
	DefaultBeta      = 0.007
	DefaultDCutoff   = 1.0
)

// OneEuro is an adaptive low-pass filter whose cutoff frequency grows with
// the estimated speed of the signal: slow movement is smoothed heavily,
// fast movement passes through with little lag.
//
// See https://gery.casiez.net/1euro/.
type OneEuro struct {
	minCutoff float64
	beta      float64
	dCutoff   float64

	x  *EMA
	dx *EMA

	last     float64
	lastTime time.Time
	seeded   bool
}

// NewOneEuro creates a one-euro filter. minCutoff and dCutoff are in Hz and
// must be positive; beta is the speed coefficient and must be non-negative.
func NewOneEuro(minCutoff, beta, dCutoff float64) (*OneEuro, error) {
	if minCutoff <= 0 {
		return nil, fmt.Errorf("min_cutoff=%v: %w", minCutoff, ErrInvalidCutoff)
	}
	if dCutoff <= 0 {
		return nil, fmt.Errorf("d_cutoff=%v: %w", dCutoff, ErrInvalidCutoff)
	}
	if beta < 0 {
		return nil, fmt.Errorf("beta=%v: must not be negative", beta)
	}

	x, _ := NewEMA(1)
	dx, _ := NewEMA(1)

	return &OneEuro{
		minCutoff: minCutoff,
		beta:      beta,
		dCutoff:   dCutoff,
		x:         x,
		dx:        dx,
	}, nil
}

// alphaFor converts a cutoff frequency and sample interval into an EMA factor.
func alphaFor(cutoff, dt float64) float64 {
	tau := 1.0 / (2.0 * math.Pi * cutoff)
	return 1.0 / (1.0 + tau/dt)
}

// Update feeds a sample taken at ts and returns the filtered value.
// A non-positive interval since the previous sample returns the last output.
func (f *OneEuro) Update(value float64, ts time.Time) float64 {
	if !f.seeded {
		f.x.Update(value)
		f.dx.Update(0)
		f.last = value
		f.lastTime = ts
		f.seeded = true
		return value
	}

	dt := ts.Sub(f.lastTime).Seconds()
	if dt <= 0 {
		return f.last
	}

	// alphaFor always yields a value in (0, 1) for positive inputs.
	_ = f.dx.SetAlpha(alphaFor(f.dCutoff, dt))
	dxHat := f.dx.Update((value - f.last) / dt)

	cutoff := f.minCutoff + f.beta*math.Abs(dxHat)
	_ = f.x.SetAlpha(alphaFor(cutoff, dt))
	xHat := f.x.Update(value)

	f.last = xHat
	f.lastTime = ts
	return xHat
}

// Reset clears the filter state.
func (f *OneEuro) Reset() {
	f.x.Reset()
	f.dx.Reset()
	f.last = 0
	f.lastTime = time.Time{}
	f.seeded = false
}

// clocked adapts a OneEuro filter to the Smoother interface by stamping each
// sample with the clock at call time.
type clocked struct {
	f   *OneEuro
	now func() time.Time
}

// Clocked wraps f as a Smoother that timestamps samples with now.
// A nil now uses time.Now.
func Clocked(f *OneEuro, now func() time.Time) Smoother {
	if now == nil {
		now = time.Now
	}
	return &clocked{f: f, now: now}
}

func (c *clocked) Update(value float64) float64 { return c.f.Update(value, c.now()) }
func (c *clocked) Reset()                       { c.f.Reset() }
