// Package capture reads camera frames through GoCV and provides the motion
// gate and preview buffer used by the tracking pipeline.
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/spatialtouch/internal/log"
)

// Capture defaults, used for zero Options fields.
const (
	DefaultFPS    = 5
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	ErrCameraNotOpen = errors.New("camera is not open")
	ErrReadFailed    = errors.New("camera read failed")
	ErrEmptyFrame    = errors.New("captured frame is empty")
)

// Camera is a frame source. Frames are BGR and every returned Mat belongs
// to the caller, who must Close it.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// Options selects a capture device and the mode requested from it.
type Options struct {
	Device int
	Width  int
	Height int
	FPS    int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.FPS <= 0 {
		o.FPS = DefaultFPS
	}
	return o
}

// device is a Camera backed by a gocv.VideoCapture. It is open while vc is
// set.
type device struct {
	mu   sync.Mutex
	opts Options
	vc   *gocv.VideoCapture
}

// NewCamera returns a closed Camera for opts.Device.
func NewCamera(opts Options) Camera {
	return &device{opts: opts.withDefaults()}
}

// Open starts capture. Drivers may not honour the requested mode, so the
// negotiated resolution is logged. Opening an open camera is a no-op.
func (d *device) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.vc != nil {
		return nil
	}

	vc, err := gocv.OpenVideoCapture(d.opts.Device)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", d.opts.Device, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return fmt.Errorf("open camera %d: device unavailable", d.opts.Device)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, float64(d.opts.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(d.opts.Height))
	vc.Set(gocv.VideoCaptureFPS, float64(d.opts.FPS))
	d.vc = vc

	log.Info("camera opened",
		"device", d.opts.Device,
		"requested", fmt.Sprintf("%dx%d", d.opts.Width, d.opts.Height),
		"actual", fmt.Sprintf("%.0fx%.0f", vc.Get(gocv.VideoCaptureFrameWidth), vc.Get(gocv.VideoCaptureFrameHeight)),
		"fps", d.opts.FPS,
	)
	return nil
}

// Close stops capture. Closing a closed camera is a no-op.
func (d *device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.vc == nil {
		return nil
	}
	err := d.vc.Close()
	d.vc = nil
	return err
}

func (d *device) ReadFrame() (*gocv.Mat, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.vc == nil {
		return nil, ErrCameraNotOpen
	}

	frame := gocv.NewMat()
	switch {
	case !d.vc.Read(&frame):
		frame.Close()
		return nil, fmt.Errorf("%w: device %d", ErrReadFailed, d.opts.Device)
	case frame.Empty():
		frame.Close()
		return nil, ErrEmptyFrame
	}
	return &frame, nil
}

// SetFPS changes the capture rate, live if the camera is open. Non-positive
// rates are ignored.
func (d *device) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opts.FPS = fps
	if d.vc != nil {
		d.vc.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

func (d *device) FPS() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opts.FPS
}

func (d *device) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.vc != nil
}
