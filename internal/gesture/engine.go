package gesture

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/ayusman/spatialtouch/internal/detector"
)

// Handler receives dispatched gestures. A returned error or a panic is
// logged and does not stop dispatch to other handlers.
type Handler func(Gesture) error

// Subscription identifies a registered handler for Off.
type Subscription struct {
	typ GestureType
	id  uint64
}

type observer struct {
	id uint64
	fn Handler
}

// Engine combines a thumb-index pinch (left), a thumb-middle pinch (right)
// and the index fingertip position into ordered gesture events.
//
// An Engine is not safe for concurrent use; call it from one goroutine.
type Engine struct {
	cfg    Config
	left   *PinchDetector
	right  *PinchDetector
	now    func() time.Time
	logger *slog.Logger

	observers map[GestureType][]observer
	nextID    uint64

	lastPos  [2]float64
	hasLast  bool
	dragging bool
}

// NewEngine validates cfg and builds an engine.
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := buildOptions(opts)

	e := &Engine{
		cfg:       cfg,
		left:      NewPinchDetector(cfg.PinchThreshold, cfg.Debounce(), cfg.HoldTime(), opts...),
		right:     NewPinchDetector(cfg.PinchThreshold, cfg.Debounce(), cfg.HoldTime(), opts...),
		now:       o.now,
		logger:    o.logger,
		observers: make(map[GestureType][]observer),
	}

	e.logger.Info("gesture engine initialized",
		"pinch_threshold", cfg.PinchThreshold,
		"debounce_ms", cfg.DebounceMs,
		"hold_time_ms", cfg.HoldTimeMs,
	)
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// On registers fn for gestures of type t. Handlers run in registration order.
func (e *Engine) On(t GestureType, fn Handler) Subscription {
	e.nextID++
	e.observers[t] = append(e.observers[t], observer{id: e.nextID, fn: fn})
	e.logger.Debug("registered gesture handler", "type", t.String())
	return Subscription{typ: t, id: e.nextID}
}

// Off removes a handler. It reports whether the subscription was found.
func (e *Engine) Off(sub Subscription) bool {
	list := e.observers[sub.typ]
	for i, o := range list {
		if o.id == sub.id {
			e.observers[sub.typ] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// Process consumes one frame of hand data and returns the gestures it
// produced, in cursor, left pinch, right pinch order. The same gestures are
// dispatched to registered handlers before Process returns.
func (e *Engine) Process(hand detector.HandData) []Gesture {
	if !hand.Valid() {
		return e.handLost()
	}

	thumb, ok1 := hand.ThumbTip()
	index, ok2 := hand.IndexTip()
	middle, ok3 := hand.MiddleTip()
	if !ok1 || !ok2 || !ok3 {
		return nil
	}

	pos := [2]float64{index.X, index.Y}
	leftState := e.left.Update(thumb.DistanceTo(index))
	rightState := e.right.Update(thumb.DistanceTo(middle))

	var gestures []Gesture
	if g, ok := e.cursorMove(pos); ok {
		gestures = append(gestures, g)
	}
	if g, ok := e.leftPinch(leftState, pos); ok {
		gestures = append(gestures, g)
	}
	if rightState == Released {
		gestures = append(gestures, e.newGesture(RightClick, pos))
	}

	for _, g := range gestures {
		e.Dispatch(g)
	}

	e.lastPos = pos
	e.hasLast = true
	return gestures
}

func (e *Engine) cursorMove(pos [2]float64) (Gesture, bool) {
	if !e.hasLast {
		return Gesture{}, false
	}
	dx := math.Abs(pos[0] - e.lastPos[0])
	dy := math.Abs(pos[1] - e.lastPos[1])
	if dx <= e.cfg.VelocityThreshold && dy <= e.cfg.VelocityThreshold {
		return Gesture{}, false
	}
	g := e.newGesture(CursorMove, pos)
	g.SetMeta(MetaDelta, Delta{DX: dx, DY: dy})
	return g, true
}

func (e *Engine) leftPinch(state PinchState, pos [2]float64) (Gesture, bool) {
	switch state {
	case Holding:
		if !e.dragging {
			e.dragging = true
			return e.newGesture(DragStart, pos), true
		}
		return e.newGesture(DragMove, pos), true
	case Released:
		if e.dragging {
			e.dragging = false
			return e.newGesture(DragEnd, pos), true
		}
		return e.newGesture(LeftClick, pos), true
	default:
		return Gesture{}, false
	}
}

// handLost ends an active drag at the last known position and clears
// tracking state.
func (e *Engine) handLost() []Gesture {
	var gestures []Gesture
	if e.dragging {
		e.dragging = false
		g := e.newGesture(DragEnd, e.lastPos)
		e.Dispatch(g)
		gestures = append(gestures, g)
	}

	e.left.Reset()
	e.right.Reset()
	e.hasLast = false
	e.lastPos = [2]float64{}
	return gestures
}

// Dispatch delivers g to the handlers registered for its type. Gestures
// produced outside Process, such as swipe scrolls, go through here too.
func (e *Engine) Dispatch(g Gesture) {
	for _, o := range e.observers[g.Type] {
		e.call(o, g)
	}
}

func (e *Engine) call(o observer, g Gesture) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("gesture handler panicked", "type", g.Type.String(), "panic", fmt.Sprint(r))
		}
	}()
	if err := o.fn(g); err != nil {
		e.logger.Error("gesture handler failed", "type", g.Type.String(), "error", err)
	}
}

func (e *Engine) newGesture(t GestureType, pos [2]float64) Gesture {
	return Gesture{
		Type:       t,
		Position:   pos,
		Confidence: 1.0,
		Timestamp:  e.now(),
	}
}

// Reset clears both detectors, drag and position state without emitting
// any gesture.
func (e *Engine) Reset() {
	e.left.Reset()
	e.right.Reset()
	e.hasLast = false
	e.lastPos = [2]float64{}
	e.dragging = false
	e.logger.Debug("gesture engine reset")
}

// Dragging reports whether a drag is in progress.
func (e *Engine) Dragging() bool { return e.dragging }

// LeftState returns the primary pinch state.
func (e *Engine) LeftState() PinchState { return e.left.State() }

// RightState returns the secondary pinch state.
func (e *Engine) RightState() PinchState { return e.right.State() }

// LastPosition returns the last cursor position, if any.
func (e *Engine) LastPosition() ([2]float64, bool) { return e.lastPos, e.hasLast }
