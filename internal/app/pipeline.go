package app

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ayusman/spatialtouch/internal/detector"
	"github.com/ayusman/spatialtouch/internal/gesture"
	"github.com/ayusman/spatialtouch/internal/store"
	"github.com/ayusman/spatialtouch/internal/zone"
)

// run is the pipeline loop. The camera is read at the idle rate until a hand
// shows up, then at the active rate until the hand has been missing for
// IdleTimeoutFrames frames.
func (a *App) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	a.enterMode(ModeIdle)
	ticker := time.NewTicker(frameInterval(a.camera.FPS()))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case cmd := <-a.cmds:
			cmd()
			ticker.Reset(frameInterval(a.camera.FPS()))
		case <-ticker.C:
			if a.step() {
				ticker.Reset(frameInterval(a.camera.FPS()))
			}
		}
	}
}

// step processes one frame and reports whether the frame rate changed.
func (a *App) step() bool {
	start := a.now()
	frame, err := a.camera.ReadFrame()
	if err != nil {
		a.fail(fmt.Errorf("read frame: %w", err))
		return false
	}
	defer frame.Close()
	captured := a.now()

	if a.preview != nil {
		if err := a.preview.Publish(frame); err != nil {
			a.logger.Debug("preview publish failed", "error", err)
		}
	}

	if a.paused.Load() {
		return false
	}

	if a.mode == ModeIdle && a.motion.Enabled() {
		if moved, _ := a.motion.Detect(frame); !moved {
			a.updateStats(func(st *stats) { st.s.SkippedFrames++ })
			return false
		}
	}

	hand := a.core.tracker.Process(frame)
	tracked := a.now()
	a.ProcessHand(hand)
	end := a.now()

	a.updateStats(func(st *stats) {
		st.frame(captured.Sub(start), tracked.Sub(captured), end.Sub(tracked), end.Sub(start), hand.Valid())
	})
	return a.adapt(hand.Valid())
}

// adapt switches between idle and active pacing.
func (a *App) adapt(hand bool) bool {
	switch {
	case hand && a.mode == ModeIdle:
		a.enterMode(ModeActive)
		return true
	case !hand && a.mode == ModeActive && a.core.tracker.FramesWithoutHand() > a.settings.System.IdleTimeoutFrames:
		a.enterMode(ModeIdle)
		return true
	}
	return false
}

func (a *App) enterMode(m Mode) {
	a.mode = m
	fps := a.targetFPS(a.settings)
	a.camera.SetFPS(fps)
	if m == ModeIdle {
		a.motion.Reset()
	}
	a.setState(func(s *Status) {
		s.Mode = m
		s.FPS = fps
	})
	a.logger.Debug("pipeline mode changed", "mode", m, "fps", fps)
}

// ProcessHand runs one tracked hand through the engine, the swipe recognizer,
// the mapper and the dispatcher, and returns the delivered gestures. It is
// called by the pipeline for every frame and must not be called concurrently
// with a running pipeline.
func (a *App) ProcessHand(hand detector.HandData) []gesture.Gesture {
	c := a.core
	if a.resetPending.CompareAndSwap(true, false) {
		c.engine.Reset()
		c.swipe.Reset()
		c.mapper.Reset()
		c.tracker.ResetSmoothing()
	}

	gestures := c.engine.Process(hand)
	if g, ok := c.swipe.Observe(hand); ok {
		c.engine.Dispatch(g)
		gestures = append(gestures, g)
	}

	for i := range gestures {
		a.deliver(&gestures[i])
	}

	a.setState(func(s *Status) {
		s.HandPresent = hand.Valid()
		s.Dragging = c.engine.Dragging()
		if p, ok := c.mapper.LastPosition(); ok {
			s.Cursor = &p
		}
		if n := len(gestures); n > 0 {
			last := gestures[n-1]
			s.LastGesture = &last
		}
	})
	return gestures
}

// ProcessLandmarks tracks a set of detections and processes the result.
func (a *App) ProcessLandmarks(hands []detector.HandLandmarks) []gesture.Gesture {
	return a.ProcessHand(a.core.tracker.Track(hands))
}

func (a *App) deliver(g *gesture.Gesture) {
	c := a.core
	sp := c.mapper.MapPosition(g.Position[0], g.Position[1])
	g.SetMeta(gesture.MetaScreenPos, sp)

	handled, err := c.dispatcher.Handle(*g)
	if err != nil {
		a.fail(fmt.Errorf("dispatch %s: %w", g.Type, err))
	}

	a.updateStats(func(st *stats) {
		st.s.Gestures++
		st.s.ByType[g.Type.String()]++
		if handled {
			st.s.Actions++
		}
	})

	a.record(*g, sp)
	a.notify(*g)
}

func (a *App) record(g gesture.Gesture, sp zone.ScreenPoint) {
	if a.store == nil || !a.settings.System.RecordEvents {
		return
	}
	// cursor samples would dominate the log
	if g.Type == gesture.CursorMove || g.Type == gesture.DragMove {
		return
	}

	meta, err := json.Marshal(g.Metadata)
	if err != nil {
		a.logger.Warn("failed to encode gesture metadata", "error", err)
		meta = nil
	}

	e := &store.Event{
		SessionID:   a.sessionID,
		GestureType: g.Type.String(),
		X:           g.Position[0],
		Y:           g.Position[1],
		ScreenX:     &sp.X,
		ScreenY:     &sp.Y,
		Confidence:  g.Confidence,
		Metadata:    meta,
		CreatedAt:   g.Timestamp,
	}
	if err := a.store.Events().Record(e); err != nil {
		a.fail(fmt.Errorf("record gesture: %w", err))
	}
}

func (a *App) notify(g gesture.Gesture) {
	a.cbMu.RLock()
	cbs := a.onGesture
	a.cbMu.RUnlock()

	for _, fn := range cbs {
		a.safeCall("gesture", func() { fn(g) })
	}
}

func (a *App) fail(err error) {
	a.logger.Error("pipeline error", "error", err)
	a.updateStats(func(st *stats) { st.s.Errors++ })

	a.cbMu.RLock()
	cbs := a.onError
	a.cbMu.RUnlock()

	for _, fn := range cbs {
		a.safeCall("error", func() { fn(err) })
	}
}

func (a *App) safeCall(kind string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("callback panicked", "callback", kind, "panic", r)
		}
	}()
	fn()
}

func frameInterval(fps int) time.Duration {
	if fps <= 0 {
		fps = 1
	}
	return time.Second / time.Duration(fps)
}
