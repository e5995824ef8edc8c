// Package smoothing provides scalar and point filters used to stabilize
// hand-landmark signals before gesture recognition.
//
// All filters are single-threaded: callers must not share an instance
// between goroutines without external synchronization.
package smoothing

import (
	"errors"
	"fmt"
)

// Configuration errors returned by the constructors.
var (
	ErrInvalidAlpha  = errors.New("smoothing factor must be between 0 and 1")
	ErrInvalidWindow = errors.New("window size must be at least 1")
	ErrInvalidCutoff = errors.New("cutoff frequency must be positive")
)

// Smoother is a stateful scalar filter.
type Smoother interface {
	// Update feeds a new sample and returns the filtered value.
	Update(value float64) float64
	// Reset clears filter state; the next Update returns its input unchanged.
	Reset()
}

// Kind selects a smoother implementation for point smoothers.
type Kind string

const (
	// KindEMA is an exponential moving average.
	KindEMA Kind = "ema"
	// KindMovingAverage is a windowed arithmetic mean.
	KindMovingAverage Kind = "moving_average"
	// KindDoubleExponential is Holt's double exponential smoothing.
	KindDoubleExponential Kind = "double_exponential"
	// KindOneEuro is the adaptive one-euro filter.
	KindOneEuro Kind = "one_euro"
)

func validateAlpha(name string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%s=%v: %w", name, v, ErrInvalidAlpha)
	}
	return nil
}

// EMA is an exponential moving average filter.
//
// The first sample after construction or Reset seeds the filter and is
// returned unchanged; later samples return alpha*v + (1-alpha)*previous.
type EMA struct {
	alpha  float64
	value  float64
	seeded bool
}

// NewEMA creates an EMA with the given smoothing factor in [0, 1].
// Higher alpha is more responsive, lower alpha is smoother.
func NewEMA(alpha float64) (*EMA, error) {
	if err := validateAlpha("alpha", alpha); err != nil {
		return nil, err
	}
	return &EMA{alpha: alpha}, nil
}

// Update feeds a sample and returns the smoothed value.
func (e *EMA) Update(value float64) float64 {
	if !e.seeded {
		e.value = value
		e.seeded = true
		return e.value
	}
	e.value = e.alpha*value + (1-e.alpha)*e.value
	return e.value
}

// Reset clears the filter state.
func (e *EMA) Reset() {
	e.value = 0
	e.seeded = false
}

// SetAlpha changes the smoothing factor without touching the state.
func (e *EMA) SetAlpha(alpha float64) error {
	if err := validateAlpha("alpha", alpha); err != nil {
		return err
	}
	e.alpha = alpha
	return nil
}

// Alpha returns the current smoothing factor.
func (e *EMA) Alpha() float64 { return e.alpha }

// Value returns the last output and whether the filter has been seeded.
func (e *EMA) Value() (float64, bool) { return e.value, e.seeded }
