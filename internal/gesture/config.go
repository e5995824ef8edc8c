package gesture

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid gesture config")

// Config holds gesture recognition thresholds.
type Config struct {
	// PinchThreshold is the normalized fingertip distance below which a pinch
	// is considered closed.
	PinchThreshold float64 `json:"pinch_threshold" yaml:"pinch_threshold" split_words:"true"`
	// DebounceMs is the minimum time between a release and the next trigger.
	DebounceMs int `json:"debounce_ms" yaml:"debounce_ms" split_words:"true"`
	// HoldTimeMs is how long a pinch must stay closed to become a hold.
	HoldTimeMs int `json:"hold_time_ms" yaml:"hold_time_ms" split_words:"true"`
	// ClickReleaseMs is the longest pinch still reported as a click.
	ClickReleaseMs int `json:"click_release_ms" yaml:"click_release_ms" split_words:"true"`
	// VelocityThreshold is the per-axis movement needed for CURSOR_MOVE.
	VelocityThreshold float64 `json:"velocity_threshold" yaml:"velocity_threshold" split_words:"true"`
}

// DefaultConfig returns the default gesture thresholds.
func DefaultConfig() Config {
	return Config{
		PinchThreshold:    0.05,
		DebounceMs:        200,
		HoldTimeMs:        300,
		ClickReleaseMs:    200,
		VelocityThreshold: 0.01,
	}
}

// Validate checks that every threshold is in range.
func (c Config) Validate() error {
	switch {
	case c.PinchThreshold <= 0 || c.PinchThreshold > 1:
		return fmt.Errorf("%w: pinch_threshold %v not in (0,1]", ErrInvalidConfig, c.PinchThreshold)
	case c.DebounceMs < 0:
		return fmt.Errorf("%w: debounce_ms %d is negative", ErrInvalidConfig, c.DebounceMs)
	case c.HoldTimeMs < 0:
		return fmt.Errorf("%w: hold_time_ms %d is negative", ErrInvalidConfig, c.HoldTimeMs)
	case c.ClickReleaseMs < 0:
		return fmt.Errorf("%w: click_release_ms %d is negative", ErrInvalidConfig, c.ClickReleaseMs)
	case c.VelocityThreshold < 0:
		return fmt.Errorf("%w: velocity_threshold %v is negative", ErrInvalidConfig, c.VelocityThreshold)
	}
	return nil
}

// Debounce returns DebounceMs as a duration.
func (c Config) Debounce() time.Duration { return time.Duration(c.DebounceMs) * time.Millisecond }

// HoldTime returns HoldTimeMs as a duration.
func (c Config) HoldTime() time.Duration { return time.Duration(c.HoldTimeMs) * time.Millisecond }
