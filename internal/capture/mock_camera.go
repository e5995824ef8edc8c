package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// ErrNoMoreFrames ends playback on a MockCamera that does not loop.
var ErrNoMoreFrames = errors.New("no more frames")

// MockCamera is an in-memory Camera for tests. It plays back a fixed frame
// list and records what the pipeline asked of it.
type MockCamera struct {
	mu     sync.Mutex
	frames []*gocv.Mat
	loop   bool
	pos    int
	open   bool

	fps     int
	fpsLog  []int
	reads   int
	failErr error
}

// NewMockCamera plays frames in order, wrapping around when loop is set.
// ReadFrame hands out clones, so frames stay owned by the caller.
func NewMockCamera(frames []*gocv.Mat, loop bool) *MockCamera {
	return &MockCamera{frames: frames, loop: loop, fps: DefaultFPS}
}

// NewSolidMockCamera builds a looping camera of n uniformly gray frames,
// each a different level so consecutive frames differ. Release frees them.
func NewSolidMockCamera(n, width, height int) *MockCamera {
	frames := make([]*gocv.Mat, 0, n)
	for i := range n {
		v := float64(40 + (i*20)%200)
		m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(v, v, v, 0), height, width, gocv.MatTypeCV8UC3)
		frames = append(frames, &m)
	}
	return NewMockCamera(frames, true)
}

// Open rewinds playback.
func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open, c.pos = true, 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	return nil
}

// Release frees frames created by NewSolidMockCamera.
func (c *MockCamera) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, f := range c.frames {
		f.Close()
	}
	c.frames = nil
}

func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return nil, ErrCameraNotOpen
	}
	c.reads++

	switch {
	case c.failErr != nil:
		return nil, c.failErr
	case len(c.frames) == 0:
		return nil, ErrEmptyFrame
	case c.pos == len(c.frames) && !c.loop:
		return nil, ErrNoMoreFrames
	}

	frame := c.frames[c.pos%len(c.frames)].Clone()
	c.pos = c.pos%len(c.frames) + 1
	return &frame, nil
}

func (c *MockCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fps = fps
	c.fpsLog = append(c.fpsLog, fps)
}

func (c *MockCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// FPSChanges lists the accepted SetFPS rates in call order.
func (c *MockCamera) FPSChanges() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.fpsLog...)
}

// Reads counts ReadFrame calls made while open.
func (c *MockCamera) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// FailReads makes every following ReadFrame return err until cleared with
// nil.
func (c *MockCamera) FailReads(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failErr = err
}

// Reset rewinds playback without reopening.
func (c *MockCamera) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pos = 0
}
