package action

import (
	"fmt"
	"strings"
	"sync"
)

// Recorder is a Sink that records calls instead of touching the OS. It backs
// dry-run mode and tests.
type Recorder struct {
	mu    sync.Mutex
	calls []string
	err   error
	held  map[Button]bool
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{held: make(map[Button]bool)}
}

// FailWith makes every subsequent call return err. Pass nil to clear.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Calls returns the recorded calls, formatted like "click(left)".
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

// Held reports whether b is currently pressed.
func (r *Recorder) Held(b Button) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.held[b]
}

// Reset forgets recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

func (r *Recorder) record(call string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.calls = append(r.calls, call)
	return nil
}

func (r *Recorder) MoveTo(x, y int) error { return r.record(fmt.Sprintf("move(%d,%d)", x, y)) }

func (r *Recorder) Click(b Button) error { return r.record(fmt.Sprintf("click(%s)", b)) }

func (r *Recorder) MouseDown(b Button) error {
	if err := r.record(fmt.Sprintf("down(%s)", b)); err != nil {
		return err
	}
	r.mu.Lock()
	r.held[b] = true
	r.mu.Unlock()
	return nil
}

func (r *Recorder) MouseUp(b Button) error {
	if err := r.record(fmt.Sprintf("up(%s)", b)); err != nil {
		return err
	}
	r.mu.Lock()
	delete(r.held, b)
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Scroll(amount int) error { return r.record(fmt.Sprintf("scroll(%d)", amount)) }

func (r *Recorder) PressKey(key string) error { return r.record(fmt.Sprintf("key(%s)", key)) }

func (r *Recorder) Hotkey(keys ...string) error {
	return r.record(fmt.Sprintf("hotkey(%s)", strings.Join(keys, "+")))
}
