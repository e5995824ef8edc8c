package action

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/ayusman/spatialtouch/internal/gesture"
	"github.com/ayusman/spatialtouch/internal/log"
	"github.com/ayusman/spatialtouch/internal/zone"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestDispatcher(t *testing.T, cfg Config, opts ...Option) (*Dispatcher, *Recorder, *fakeClock) {
	t.Helper()
	rec := NewRecorder()
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	opts = append([]Option{WithClock(clock.Now), WithLogger(log.Discard())}, opts...)
	d := NewDispatcher(rec, cfg, opts...)
	d.Start()
	return d, rec, clock
}

func g(t gesture.GestureType) gesture.Gesture {
	return gesture.Gesture{Type: t, Position: [2]float64{0.5, 0.5}, Confidence: 1}
}

func move(x, y int) gesture.Gesture {
	m := g(gesture.CursorMove)
	m.SetMeta(gesture.MetaDelta, gesture.Delta{})
	m.SetMeta(gesture.MetaScreenPos, zone.ScreenPoint{X: x, Y: y})
	return m
}

func dragMove(x, y int) gesture.Gesture {
	m := g(gesture.DragMove)
	m.SetMeta(gesture.MetaScreenPos, zone.ScreenPoint{X: x, Y: y})
	return m
}

func TestDispatcher_NotRunning(t *testing.T) {
	rec := NewRecorder()
	d := NewDispatcher(rec, DefaultConfig(), WithLogger(log.Discard()))

	ok, err := d.Handle(g(gesture.LeftClick))
	if ok || err != nil {
		t.Errorf("Handle() on stopped dispatcher = %v, %v", ok, err)
	}
	if len(rec.Calls()) != 0 {
		t.Errorf("stopped dispatcher acted: %v", rec.Calls())
	}
	if err := d.Click(ButtonLeft); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Click() error = %v, want ErrNotRunning", err)
	}
}

func TestDispatcher_Handle(t *testing.T) {
	tests := []struct {
		name   string
		g      gesture.Gesture
		wantOK bool
		want   []string
	}{
		{"cursor move", move(100, 200), true, []string{"move(100,200)"}},
		{"cursor move without screen pos", g(gesture.CursorMove), false, nil},
		{"left click", g(gesture.LeftClick), true, []string{"click(left)"}},
		{"right click", g(gesture.RightClick), true, []string{"click(right)"}},
		{"drag move without drag", dragMove(30, 40), false, nil},
		{"drag end without drag", g(gesture.DragEnd), false, nil},
		{"scroll up", g(gesture.ScrollUp), true, []string{"scroll(3)"}},
		{"scroll down", g(gesture.ScrollDown), true, []string{"scroll(-3)"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, rec, _ := newTestDispatcher(t, DefaultConfig())
			ok, err := d.Handle(tt.g)
			if err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
			if ok != tt.wantOK {
				t.Errorf("Handle() = %v, want %v", ok, tt.wantOK)
			}
			if got := rec.Calls(); !reflect.DeepEqual(got, tt.want) && len(got)+len(tt.want) > 0 {
				t.Errorf("calls = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDispatcher_DragCycle(t *testing.T) {
	d, rec, _ := newTestDispatcher(t, DefaultConfig())

	for _, x := range []gesture.Gesture{g(gesture.DragStart), move(10, 10), dragMove(12, 11), g(gesture.DragMove), g(gesture.DragStart), g(gesture.DragEnd)} {
		if _, err := d.Handle(x); err != nil {
			t.Fatalf("Handle(%s) error = %v", x.Type, err)
		}
	}

	want := []string{"down(left)", "move(10,10)", "move(12,11)", "up(left)"}
	if got := rec.Calls(); !reflect.DeepEqual(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
	if d.Dragging() || rec.Held(ButtonLeft) {
		t.Error("drag should be released")
	}
	if d.Count() != 4 {
		t.Errorf("Count() = %d, want 4", d.Count())
	}
}

func TestDispatcher_StopReleasesDrag(t *testing.T) {
	d, rec, _ := newTestDispatcher(t, DefaultConfig())

	d.Handle(g(gesture.DragStart))
	if !rec.Held(ButtonLeft) {
		t.Fatal("DRAG_START should hold the left button")
	}
	if err := d.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if rec.Held(ButtonLeft) || d.Dragging() || d.Running() {
		t.Error("Stop() should release the drag and stop")
	}
	if err := d.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}

func TestDispatcher_ClickInterval(t *testing.T) {
	d, rec, clock := newTestDispatcher(t, DefaultConfig())

	d.Handle(g(gesture.LeftClick))
	clock.Advance(50 * time.Millisecond)
	if ok, _ := d.Handle(g(gesture.LeftClick)); ok {
		t.Error("click inside the interval should be suppressed")
	}
	if ok, _ := d.Handle(g(gesture.RightClick)); !ok {
		t.Error("interval is tracked per click type")
	}
	clock.Advance(60 * time.Millisecond)
	if ok, _ := d.Handle(g(gesture.LeftClick)); !ok {
		t.Error("click after the interval should pass")
	}

	want := []string{"click(left)", "click(right)", "click(left)"}
	if got := rec.Calls(); !reflect.DeepEqual(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
}

func TestDispatcher_MouseDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableMouse = false
	d, rec, _ := newTestDispatcher(t, cfg)

	for _, typ := range []gesture.GestureType{gesture.LeftClick, gesture.DragStart, gesture.ScrollUp} {
		if ok, _ := d.Handle(g(typ)); ok {
			t.Errorf("%s handled with mouse disabled", typ)
		}
	}
	if ok, _ := d.Handle(move(1, 1)); ok {
		t.Error("CURSOR_MOVE handled with mouse disabled")
	}
	if len(rec.Calls()) != 0 {
		t.Errorf("calls = %v, want none", rec.Calls())
	}
	if err := d.MoveCursor(1, 1); !errors.Is(err, ErrDisabled) {
		t.Errorf("MoveCursor() error = %v, want ErrDisabled", err)
	}
	if err := d.PressKey("a"); err != nil {
		t.Errorf("PressKey() with keyboard enabled error = %v", err)
	}
}

func TestDispatcher_Direct(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableKeyboard = false
	d, rec, _ := newTestDispatcher(t, cfg)

	if err := d.MoveCursor(5, 6); err != nil {
		t.Fatalf("MoveCursor() error = %v", err)
	}
	if err := d.Click(ButtonRight); err != nil {
		t.Fatalf("Click() error = %v", err)
	}
	if err := d.Hotkey("ctrl", "c"); !errors.Is(err, ErrDisabled) {
		t.Errorf("Hotkey() error = %v, want ErrDisabled", err)
	}

	want := []string{"move(5,6)", "click(right)"}
	if got := rec.Calls(); !reflect.DeepEqual(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
}

func TestDispatcher_FailSafeStops(t *testing.T) {
	d, rec, _ := newTestDispatcher(t, DefaultConfig())
	rec.FailWith(ErrFailSafe)

	ok, err := d.Handle(g(gesture.LeftClick))
	if ok || !errors.Is(err, ErrFailSafe) {
		t.Errorf("Handle() = %v, %v, want false, ErrFailSafe", ok, err)
	}
	if d.Running() {
		t.Error("fail-safe should stop the dispatcher")
	}
}

func TestDispatcher_SinkErrorKeepsRunning(t *testing.T) {
	d, rec, _ := newTestDispatcher(t, DefaultConfig())
	rec.FailWith(errors.New("display unavailable"))

	if _, err := d.Handle(g(gesture.RightClick)); err == nil {
		t.Error("sink error should be returned")
	}
	if !d.Running() {
		t.Error("ordinary sink errors should not stop the dispatcher")
	}
}

type stubOverride struct {
	bound map[gesture.GestureType]bool
	ran   []gesture.GestureType
}

func (s *stubOverride) Run(g gesture.Gesture) bool {
	if !s.bound[g.Type] {
		return false
	}
	s.ran = append(s.ran, g.Type)
	return true
}

func TestDispatcher_Override(t *testing.T) {
	o := &stubOverride{bound: map[gesture.GestureType]bool{
		gesture.LeftClick: true,
		gesture.DragStart: true,
	}}
	d, rec, _ := newTestDispatcher(t, DefaultConfig(), WithOverride(o))

	d.Handle(g(gesture.LeftClick))
	d.Handle(g(gesture.RightClick))
	d.Handle(g(gesture.DragStart))

	if !reflect.DeepEqual(o.ran, []gesture.GestureType{gesture.LeftClick}) {
		t.Errorf("override ran for %v, want only LEFT_CLICK", o.ran)
	}
	want := []string{"click(right)", "down(left)"}
	if got := rec.Calls(); !reflect.DeepEqual(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
}

func TestBindable(t *testing.T) {
	for _, typ := range gesture.AllTypes() {
		want := typ == gesture.LeftClick || typ == gesture.RightClick ||
			typ == gesture.ScrollUp || typ == gesture.ScrollDown
		if got := Bindable(typ); got != want {
			t.Errorf("Bindable(%s) = %v, want %v", typ, got, want)
		}
	}
}
