package gesture

import (
	"log/slog"
	"time"

	"github.com/ayusman/spatialtouch/internal/log"
)

type options struct {
	now    func() time.Time
	logger *slog.Logger
}

// Option configures detectors, the engine and the swipe recognizer.
type Option func(*options)

// WithClock replaces time.Now as the source of timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the logger used for construction and observer failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.With("component", "gesture")
	}
	return o
}
