// Package app runs the tracking pipeline: it reads camera frames, turns the
// tracked hand into gestures, maps them to the screen and hands them to the
// action dispatcher.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/spatialtouch/internal/action"
	"github.com/ayusman/spatialtouch/internal/capture"
	"github.com/ayusman/spatialtouch/internal/config"
	"github.com/ayusman/spatialtouch/internal/detector"
	"github.com/ayusman/spatialtouch/internal/gesture"
	"github.com/ayusman/spatialtouch/internal/log"
	"github.com/ayusman/spatialtouch/internal/store"
	"github.com/ayusman/spatialtouch/internal/zone"
)

// Mode is the pacing mode of the pipeline.
type Mode string

const (
	// ModeIdle runs at the idle frame rate with motion gating.
	ModeIdle Mode = "idle"
	// ModeActive runs at the active frame rate while a hand is tracked.
	ModeActive Mode = "active"
)

// Config holds the dependencies of an App. Nil collaborators are replaced
// with the production implementations.
type Config struct {
	Settings config.Config
	// Camera defaults to the device described by Settings.Camera.
	Camera capture.Camera
	// Detector defaults to MediaPipe, falling back to the mock detector.
	Detector detector.Detector
	// Sink defaults to robotgo.
	Sink action.Sink
	// Store enables sessions and the gesture event log.
	Store *store.Store
	// Override receives bindable gestures before the sink does.
	Override action.Override
	// Preview receives every captured frame.
	Preview *capture.Preview
	Clock   func() time.Time
	Logger  *slog.Logger
}

// core holds the per-frame components. They are rebuilt as a unit on
// reconfiguration and only touched by the pipeline goroutine while running.
type core struct {
	tracker    *detector.Tracker
	engine     *gesture.Engine
	swipe      *gesture.SwipeRecognizer
	mapper     *zone.Mapper
	dispatcher *action.Dispatcher
}

// App owns the pipeline and its components.
type App struct {
	mu       sync.Mutex
	settings config.Config
	running  bool
	stopCh   chan struct{}
	done     chan struct{}
	cmds     chan func()

	camera   capture.Camera
	detector detector.Detector
	sink     action.Sink
	override action.Override
	motion   *capture.MotionDetector
	preview  *capture.Preview
	store    *store.Store
	core     core

	now    func() time.Time
	logger *slog.Logger

	paused       atomic.Bool
	resetPending atomic.Bool

	// pipeline goroutine only
	mode      Mode
	sessionID string

	stateMu sync.RWMutex
	status  Status
	stats   *stats

	cbMu      sync.RWMutex
	onGesture []func(gesture.Gesture)
	onError   []func(error)
	onPause   []func(bool)
}

// New validates the settings and builds an App. The camera is not opened
// until Start.
func New(cfg Config) (*App, error) {
	if err := cfg.Settings.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		settings: cfg.Settings,
		cmds:     make(chan func()),
		camera:   cfg.Camera,
		detector: cfg.Detector,
		sink:     cfg.Sink,
		override: cfg.Override,
		preview:  cfg.Preview,
		store:    cfg.Store,
		now:      cfg.Clock,
		logger:   cfg.Logger,
		mode:     ModeIdle,
		stats:    newStats(),
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.logger == nil {
		a.logger = log.With("component", "app")
	}

	cam := cfg.Settings.Camera
	if a.camera == nil {
		a.camera = capture.NewCamera(capture.Options{
			Device: cam.Device,
			Width:  cam.Width,
			Height: cam.Height,
			FPS:    cam.IdleFPS,
		})
	}
	if a.detector == nil {
		if mp, err := detector.NewMediaPipeDetector(cfg.Settings.Tracking.DetectorConfig()); err == nil {
			a.detector = mp
			a.logger.Info("using MediaPipe hand detection")
		} else {
			a.logger.Warn("MediaPipe not available, using mock detector", "error", err)
			a.detector = detector.NewMockDetector()
		}
	}
	if a.sink == nil {
		a.sink = action.NewRobotgoSink(cfg.Settings.Actions.SafeMode)
	}
	a.motion = capture.NewMotionDetector(cam.MotionThreshold)

	c, err := a.buildCore(cfg.Settings)
	if err != nil {
		return nil, err
	}
	a.core = c
	a.status.Mode = ModeIdle
	a.status.Screen = zone.ScreenPoint{X: cfg.Settings.Cursor.ScreenWidth, Y: cfg.Settings.Cursor.ScreenHeight}

	return a, nil
}

func (a *App) buildCore(s config.Config) (core, error) {
	tracker, err := detector.NewTracker(a.detector, s.Tracking.TrackerConfig())
	if err != nil {
		return core{}, fmt.Errorf("tracker: %w", err)
	}

	gopts := []gesture.Option{gesture.WithClock(a.now), gesture.WithLogger(a.logger.With("component", "gesture"))}
	engine, err := gesture.NewEngine(s.Gestures, gopts...)
	if err != nil {
		return core{}, fmt.Errorf("gesture engine: %w", err)
	}

	mapper, err := zone.NewMapper(s.Cursor, a.logger.With("component", "zone"))
	if err != nil {
		return core{}, fmt.Errorf("zone mapper: %w", err)
	}

	dopts := []action.Option{action.WithClock(a.now), action.WithLogger(a.logger.With("component", "action"))}
	if a.override != nil {
		dopts = append(dopts, action.WithOverride(a.override))
	}

	return core{
		tracker:    tracker,
		engine:     engine,
		swipe:      gesture.NewSwipeRecognizer(s.Swipe, gopts...),
		mapper:     mapper,
		dispatcher: action.NewDispatcher(a.sink, s.Actions, dopts...),
	}, nil
}

// Start opens the camera and starts the pipeline goroutine.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return nil
	}
	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}

	if !a.paused.Load() {
		a.core.dispatcher.Start()
	}
	a.startSession()

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	a.running = true
	a.setState(func(s *Status) { s.Running = true })

	go a.run(a.stopCh, a.done)

	a.logger.Info("pipeline started",
		"idle_fps", a.settings.Camera.IdleFPS,
		"active_fps", a.settings.Camera.ActiveFPS,
		"motion_threshold", a.settings.Camera.MotionThreshold,
	)
	return nil
}

// Stop halts the pipeline, releases any held button and closes the camera.
func (a *App) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.running {
		return nil
	}
	close(a.stopCh)
	<-a.done
	a.running = false

	var errs []error
	if err := a.core.dispatcher.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("release input: %w", err))
	}
	a.core.engine.Reset()
	a.core.swipe.Reset()
	a.endSession()
	if err := a.camera.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close camera: %w", err))
	}

	a.setState(func(s *Status) {
		s.Running = false
		s.HandPresent = false
		s.Dragging = false
	})
	a.logStats()
	return errors.Join(errs...)
}

// Close stops the pipeline and releases the detector and motion detector.
func (a *App) Close() error {
	err := a.Stop()

	a.mu.Lock()
	defer a.mu.Unlock()
	a.motion.Close()
	if cerr := a.core.tracker.Close(); cerr != nil {
		err = errors.Join(err, fmt.Errorf("close detector: %w", cerr))
	}
	return err
}

// Running reports whether the pipeline goroutine is active.
func (a *App) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// Pause stops acting on gestures. Frames are still read so the preview
// stays live, but nothing is tracked and any held button is released.
func (a *App) Pause() {
	if a.paused.Swap(true) {
		return
	}
	if err := a.Dispatcher().Stop(); err != nil {
		a.fail(fmt.Errorf("release input: %w", err))
	}
	a.setState(func(s *Status) { s.Paused = true })
	a.logger.Info("pipeline paused")
	a.notifyPause(true)
}

// Resume continues after Pause. Gesture state starts fresh.
func (a *App) Resume() {
	if !a.paused.Load() {
		return
	}
	a.resetPending.Store(true)

	a.mu.Lock()
	running, d := a.running, a.core.dispatcher
	a.mu.Unlock()
	if running {
		d.Start()
	}
	a.paused.Store(false)
	a.setState(func(s *Status) { s.Paused = false })
	a.logger.Info("pipeline resumed")
	a.notifyPause(false)
}

// Toggle flips between paused and resumed and returns the new paused state.
func (a *App) Toggle() bool {
	if a.paused.Load() {
		a.Resume()
		return false
	}
	a.Pause()
	return true
}

// Paused reports whether the pipeline is paused.
func (a *App) Paused() bool {
	return a.paused.Load()
}

// Settings returns the active configuration.
func (a *App) Settings() config.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settings
}

// Reconfigure validates next and swaps in components built from it. On a
// running pipeline the swap happens between frames; camera device and
// resolution changes take effect on the next Start.
func (a *App) Reconfigure(next config.Config) error {
	if err := next.Validate(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	c, err := a.buildCore(next)
	if err != nil {
		return err
	}

	prev := a.settings.Camera
	apply := func() {
		old := a.core
		if err := old.dispatcher.Stop(); err != nil {
			a.fail(fmt.Errorf("release input: %w", err))
		}
		a.core = c
		a.settings = next
		a.motion.SetThreshold(next.Camera.MotionThreshold)
		if a.running && !a.paused.Load() {
			a.core.dispatcher.Start()
		}
		if a.running {
			a.camera.SetFPS(a.targetFPS(next))
		}
	}

	if a.running {
		reply := make(chan struct{})
		a.cmds <- func() {
			apply()
			close(reply)
		}
		<-reply
	} else {
		apply()
	}

	if a.running && (prev.Device != next.Camera.Device || prev.Width != next.Camera.Width || prev.Height != next.Camera.Height) {
		a.logger.Warn("camera device changes apply after restart")
	}
	a.setState(func(s *Status) {
		s.Screen = zone.ScreenPoint{X: next.Cursor.ScreenWidth, Y: next.Cursor.ScreenHeight}
	})
	a.logger.Info("configuration applied")
	return nil
}

// OnGesture registers fn for every gesture after screen mapping. Callbacks
// run on the pipeline goroutine and must not block.
func (a *App) OnGesture(fn func(gesture.Gesture)) {
	a.cbMu.Lock()
	defer a.cbMu.Unlock()
	a.onGesture = append(a.onGesture, fn)
}

// OnError registers fn for pipeline errors.
func (a *App) OnError(fn func(error)) {
	a.cbMu.Lock()
	defer a.cbMu.Unlock()
	a.onError = append(a.onError, fn)
}

// OnPause registers fn for pause state changes, whichever surface caused them.
func (a *App) OnPause(fn func(paused bool)) {
	a.cbMu.Lock()
	defer a.cbMu.Unlock()
	a.onPause = append(a.onPause, fn)
}

func (a *App) notifyPause(paused bool) {
	a.cbMu.RLock()
	cbs := a.onPause
	a.cbMu.RUnlock()

	for _, fn := range cbs {
		a.safeCall("pause", func() { fn(paused) })
	}
}

// Dispatcher exposes direct actions such as MoveCursor for the API.
func (a *App) Dispatcher() *action.Dispatcher {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.core.dispatcher
}

func (a *App) startSession() {
	if a.store == nil {
		return
	}
	sess, err := a.store.Sessions().Start()
	if err != nil {
		a.logger.Error("failed to start session", "error", err)
		return
	}
	a.sessionID = sess.ID
	a.setState(func(s *Status) { s.SessionID = sess.ID })
}

func (a *App) endSession() {
	if a.store == nil || a.sessionID == "" {
		return
	}
	st := a.Stats()
	if err := a.store.Sessions().End(a.sessionID, st.Frames, st.Gestures, st.Actions); err != nil {
		a.logger.Error("failed to end session", "session", a.sessionID, "error", err)
	}
	a.sessionID = ""
	a.setState(func(s *Status) { s.SessionID = "" })
}

func (a *App) targetFPS(s config.Config) int {
	if a.mode == ModeActive {
		return s.Camera.ActiveFPS
	}
	return s.Camera.IdleFPS
}
