package action

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ayusman/spatialtouch/internal/gesture"
	"github.com/ayusman/spatialtouch/internal/log"
	"github.com/ayusman/spatialtouch/internal/zone"
)

// Config controls which actions the dispatcher performs.
type Config struct {
	EnableMouse    bool `json:"enable_mouse" yaml:"enable_mouse" split_words:"true"`
	EnableKeyboard bool `json:"enable_keyboard" yaml:"enable_keyboard" split_words:"true"`
	// ClickIntervalMs is the minimum time between two clicks of one kind.
	ClickIntervalMs int `json:"click_interval_ms" yaml:"click_interval_ms" split_words:"true"`
	// ScrollAmount is the number of notches per scroll gesture.
	ScrollAmount int  `json:"scroll_amount" yaml:"scroll_amount" split_words:"true"`
	SafeMode     bool `json:"safe_mode" yaml:"safe_mode" split_words:"true"`
	// DryRun records actions instead of performing them.
	DryRun bool `json:"dry_run" yaml:"dry_run" split_words:"true"`
}

// DefaultConfig returns the default action settings.
func DefaultConfig() Config {
	return Config{
		EnableMouse:     true,
		EnableKeyboard:  true,
		ClickIntervalMs: 100,
		ScrollAmount:    3,
		SafeMode:        true,
	}
}

// Override handles a gesture in place of the default action. It reports
// whether the gesture was handled.
type Override interface {
	Run(g gesture.Gesture) bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithClock replaces time.Now for click interval checks.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// WithLogger sets the dispatcher logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithOverride installs user bindings that take precedence over the default
// actions.
func WithOverride(o Override) Option {
	return func(d *Dispatcher) { d.override = o }
}

// Dispatcher turns gestures into sink calls. It must be started before it
// acts, and Stop releases any button held by a drag.
type Dispatcher struct {
	mu       sync.Mutex
	cfg      Config
	sink     Sink
	override Override
	now      func() time.Time
	logger   *slog.Logger

	running    bool
	dragging   bool
	lastAction map[gesture.GestureType]time.Time
	count      int64
}

// NewDispatcher creates a stopped dispatcher.
func NewDispatcher(sink Sink, cfg Config, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		cfg:        cfg,
		sink:       sink,
		now:        time.Now,
		lastAction: make(map[gesture.GestureType]time.Time),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = log.With("component", "action")
	}

	d.logger.Info("action dispatcher initialized",
		"mouse", cfg.EnableMouse,
		"keyboard", cfg.EnableKeyboard,
		"safe_mode", cfg.SafeMode,
	)
	return d
}

// Start enables dispatching.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		d.logger.Warn("dispatcher already running")
		return
	}
	d.running = true
	d.logger.Info("action dispatcher started")
}

// Stop disables dispatching and releases a held drag button.
func (d *Dispatcher) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopLocked()
}

func (d *Dispatcher) stopLocked() error {
	if !d.running {
		return nil
	}
	d.running = false

	var err error
	if d.dragging {
		d.dragging = false
		if err = d.sink.MouseUp(ButtonLeft); err != nil {
			err = fmt.Errorf("release drag: %w", err)
		}
	}
	d.logger.Info("action dispatcher stopped")
	return err
}

// Running reports whether the dispatcher is started.
func (d *Dispatcher) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

// Dragging reports whether the dispatcher holds the left button.
func (d *Dispatcher) Dragging() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dragging
}

// Count returns the number of actions performed.
func (d *Dispatcher) Count() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.count
}

// Handle performs the action for g. It reports whether an action was
// performed. On ErrFailSafe the dispatcher stops itself.
func (d *Dispatcher) Handle(g gesture.Gesture) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return false, nil
	}

	if d.override != nil && Bindable(g.Type) && d.override.Run(g) {
		d.count++
		return true, nil
	}

	ok, err := d.dispatch(g)
	if err != nil {
		if errors.Is(err, ErrFailSafe) {
			d.logger.Warn("fail-safe triggered, stopping dispatcher")
			if stopErr := d.stopLocked(); stopErr != nil {
				d.logger.Error("release after fail-safe", "error", stopErr)
			}
			return false, err
		}
		d.logger.Error("gesture action failed", "type", g.Type.String(), "error", err)
		return false, err
	}
	if ok {
		d.count++
	}
	return ok, nil
}

func (d *Dispatcher) dispatch(g gesture.Gesture) (bool, error) {
	switch g.Type {
	case gesture.CursorMove, gesture.DragMove:
		if !d.cfg.EnableMouse || (g.Type == gesture.DragMove && !d.dragging) {
			return false, nil
		}
		// the pointer follows the hand during a drag too, including motion
		// below the cursor velocity threshold
		p, ok := screenPos(g)
		if !ok {
			return false, nil
		}
		return true, d.sink.MoveTo(p.X, p.Y)

	case gesture.LeftClick, gesture.RightClick:
		if !d.cfg.EnableMouse || !d.checkInterval(g.Type) {
			return false, nil
		}
		b := ButtonLeft
		if g.Type == gesture.RightClick {
			b = ButtonRight
		}
		if err := d.sink.Click(b); err != nil {
			return false, err
		}
		d.logger.Debug("click executed", "button", b.String())
		return true, nil

	case gesture.DragStart:
		if !d.cfg.EnableMouse || d.dragging {
			return false, nil
		}
		if err := d.sink.MouseDown(ButtonLeft); err != nil {
			return false, err
		}
		d.dragging = true
		return true, nil

	case gesture.DragEnd:
		if !d.dragging {
			return false, nil
		}
		d.dragging = false
		if err := d.sink.MouseUp(ButtonLeft); err != nil {
			return false, err
		}
		return true, nil

	case gesture.ScrollUp, gesture.ScrollDown:
		if !d.cfg.EnableMouse {
			return false, nil
		}
		amount := d.cfg.ScrollAmount
		if g.Type == gesture.ScrollDown {
			amount = -amount
		}
		return true, d.sink.Scroll(amount)
	}
	return false, nil
}

// checkInterval enforces ClickIntervalMs per gesture type and stamps the
// action time when it passes.
func (d *Dispatcher) checkInterval(t gesture.GestureType) bool {
	now := d.now()
	interval := time.Duration(d.cfg.ClickIntervalMs) * time.Millisecond
	if last, ok := d.lastAction[t]; ok && now.Sub(last) < interval {
		return false
	}
	d.lastAction[t] = now
	return true
}

func screenPos(g gesture.Gesture) (zone.ScreenPoint, bool) {
	v, ok := g.Metadata.Get(gesture.MetaScreenPos)
	if !ok {
		return zone.ScreenPoint{}, false
	}
	p, ok := v.(zone.ScreenPoint)
	return p, ok
}

// MoveCursor moves the pointer directly.
func (d *Dispatcher) MoveCursor(x, y int) error {
	return d.direct(d.cfg.EnableMouse, func() error { return d.sink.MoveTo(x, y) })
}

// Click clicks b directly.
func (d *Dispatcher) Click(b Button) error {
	return d.direct(d.cfg.EnableMouse, func() error { return d.sink.Click(b) })
}

// PressKey taps key directly.
func (d *Dispatcher) PressKey(key string) error {
	return d.direct(d.cfg.EnableKeyboard, func() error { return d.sink.PressKey(key) })
}

// Hotkey presses a key combination directly.
func (d *Dispatcher) Hotkey(keys ...string) error {
	return d.direct(d.cfg.EnableKeyboard, func() error { return d.sink.Hotkey(keys...) })
}

// ErrNotRunning is returned by direct calls on a stopped dispatcher.
var ErrNotRunning = errors.New("dispatcher not running")

// ErrDisabled is returned when the action class is disabled in config.
var ErrDisabled = errors.New("action disabled")

func (d *Dispatcher) direct(enabled bool, fn func() error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return ErrNotRunning
	}
	if !enabled {
		return ErrDisabled
	}
	if err := fn(); err != nil {
		if errors.Is(err, ErrFailSafe) {
			_ = d.stopLocked()
		}
		return err
	}
	d.count++
	return nil
}

// Bindable reports whether gestures of type t may be bound to plugin
// actions. Continuous gestures keep their pointer semantics.
func Bindable(t gesture.GestureType) bool {
	switch t {
	case gesture.LeftClick, gesture.RightClick, gesture.ScrollUp, gesture.ScrollDown:
		return true
	default:
		return false
	}
}
