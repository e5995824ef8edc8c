package capture

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Preview holds the most recent frame as JPEG for the MJPEG endpoint. The
// pipeline publishes into it so preview clients never touch the camera.
type Preview struct {
	mu      sync.RWMutex
	jpeg    []byte
	seq     uint64
	quality int
}

// NewPreview creates an empty preview buffer. quality is the JPEG quality
// in [1,100]; out-of-range values use 80.
func NewPreview(quality int) *Preview {
	if quality < 1 || quality > 100 {
		quality = 80
	}
	return &Preview{quality: quality}
}

// Publish encodes frame and makes it the latest preview image.
func (p *Preview) Publish(frame *gocv.Mat) error {
	if frame == nil || frame.Empty() {
		return ErrEmptyFrame
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, *frame, []int{int(gocv.IMWriteJpegQuality), p.quality})
	if err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	data := append([]byte(nil), buf.GetBytes()...)
	buf.Close()

	p.mu.Lock()
	p.jpeg = data
	p.seq++
	p.mu.Unlock()
	return nil
}

// Latest returns the newest JPEG and its sequence number. The sequence is
// zero until the first Publish.
func (p *Preview) Latest() ([]byte, uint64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.jpeg, p.seq
}
