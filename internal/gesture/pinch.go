package gesture

import (
	"fmt"
	"time"
)

// PinchState is the state of a PinchDetector.
type PinchState int

const (
	Idle PinchState = iota
	Triggered
	Holding
	Released
)

func (s PinchState) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Triggered:
		return "TRIGGERED"
	case Holding:
		return "HOLDING"
	case Released:
		return "RELEASED"
	default:
		return fmt.Sprintf("PinchState(%d)", int(s))
	}
}

// PinchDetector tracks one fingertip pair through
// IDLE -> TRIGGERED -> (HOLDING) -> RELEASED -> IDLE.
//
// RELEASED lasts exactly one Update call. A new trigger is accepted only once
// more than the debounce interval has passed since the last release.
type PinchDetector struct {
	threshold float64
	debounce  time.Duration
	hold      time.Duration
	now       func() time.Time

	state       PinchState
	pinchStart  time.Time
	lastTrigger time.Time
	pinched     bool
	wasPinched  bool
}

// NewPinchDetector creates a detector. Only WithClock is meaningful among
// opts.
func NewPinchDetector(threshold float64, debounce, hold time.Duration, opts ...Option) *PinchDetector {
	o := buildOptions(opts)
	return &PinchDetector{
		threshold: threshold,
		debounce:  debounce,
		hold:      hold,
		now:       o.now,
	}
}

// Update advances the state machine with the current fingertip distance.
func (p *PinchDetector) Update(distance float64) PinchState {
	now := p.now()
	p.wasPinched = p.pinched
	p.pinched = distance < p.threshold

	switch p.state {
	case Idle:
		if p.pinched && now.Sub(p.lastTrigger) > p.debounce {
			p.state = Triggered
			p.pinchStart = now
		}
	case Triggered:
		if !p.pinched {
			p.state = Released
			p.lastTrigger = now
		} else if now.Sub(p.pinchStart) > p.hold {
			p.state = Holding
		}
	case Holding:
		if !p.pinched {
			p.state = Released
			p.lastTrigger = now
		}
	case Released:
		p.state = Idle
		p.pinchStart = time.Time{}
	}

	return p.state
}

// Reset forces IDLE without a RELEASED pulse. The debounce clock is kept.
func (p *PinchDetector) Reset() {
	p.state = Idle
	p.pinchStart = time.Time{}
	p.pinched = false
	p.wasPinched = false
}

// State returns the current state.
func (p *PinchDetector) State() PinchState { return p.state }

// Pinched reports whether the last distance was below the threshold.
func (p *PinchDetector) Pinched() bool { return p.pinched }

// JustPinched reports whether the last update closed the pinch.
func (p *PinchDetector) JustPinched() bool { return p.pinched && !p.wasPinched }

// Holding reports whether the detector is in HOLDING.
func (p *PinchDetector) Holding() bool { return p.state == Holding }

// Threshold returns the distance threshold.
func (p *PinchDetector) Threshold() float64 { return p.threshold }
