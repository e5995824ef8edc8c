package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Motion gating works on a small grayscale copy of each frame.
const (
	motionWidth     = 160
	motionBlur      = 7
	motionPixelDiff = 25
)

// MotionDetector decides whether an idle frame is worth running hand
// detection on. It reports motion when the share of pixels that changed
// since the previous frame exceeds the threshold percentage. A threshold of
// zero turns gating off.
type MotionDetector struct {
	mu        sync.Mutex
	threshold float64

	// baseline is the prepared previous frame; empty until the first Detect.
	baseline gocv.Mat
	// scratch buffers reused across frames
	gray, small, diff gocv.Mat
}

// NewMotionDetector returns a detector for the given threshold percentage.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{
		threshold: max(threshold, 0),
		baseline:  gocv.NewMat(),
		gray:      gocv.NewMat(),
		small:     gocv.NewMat(),
		diff:      gocv.NewMat(),
	}
}

// Detect reports whether frame differs enough from the previous frame,
// along with the changed share in percent. With gating off every frame is
// motion. A nil or empty frame is never motion, and the first frame after
// a Reset only records the baseline.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case m.threshold == 0:
		return true, 0
	case frame == nil || frame.Empty():
		return false, 0
	}

	m.prepare(*frame)

	if m.baseline.Empty() || m.baseline.Rows() != m.small.Rows() || m.baseline.Cols() != m.small.Cols() {
		m.small.CopyTo(&m.baseline)
		return false, 0
	}

	gocv.AbsDiff(m.small, m.baseline, &m.diff)
	gocv.Threshold(m.diff, &m.diff, motionPixelDiff, 255, gocv.ThresholdBinary)
	changed := 100 * float64(gocv.CountNonZero(m.diff)) / float64(m.diff.Total())

	m.small.CopyTo(&m.baseline)
	return changed > m.threshold, changed
}

// prepare leaves a blurred, downscaled grayscale copy of frame in m.small.
func (m *MotionDetector) prepare(frame gocv.Mat) {
	if frame.Channels() > 1 {
		gocv.CvtColor(frame, &m.gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&m.gray)
	}

	w, h := m.gray.Cols(), m.gray.Rows()
	if w > motionWidth {
		h = max(1, h*motionWidth/w)
		w = motionWidth
	}
	gocv.Resize(m.gray, &m.small, image.Pt(w, h), 0, 0, gocv.InterpolationArea)
	gocv.GaussianBlur(m.small, &m.small, image.Pt(motionBlur, motionBlur), 0, 0, gocv.BorderDefault)
}

// Reset forgets the baseline. Called when the pipeline falls back to idle so
// a stale frame does not register as motion.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replace(&m.baseline)
}

// Close releases the detector's buffers. The detector stays usable and
// allocates fresh buffers on the next Detect.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mat := range []*gocv.Mat{&m.baseline, &m.gray, &m.small, &m.diff} {
		m.replace(mat)
	}
}

func (m *MotionDetector) replace(mat *gocv.Mat) {
	mat.Close()
	*mat = gocv.NewMat()
}

// SetThreshold updates the threshold percentage. Negative values are ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold < 0 {
		return
	}
	m.mu.Lock()
	m.threshold = threshold
	m.mu.Unlock()
}

// Threshold returns the threshold percentage.
func (m *MotionDetector) Threshold() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.threshold
}

// Enabled reports whether idle frames are gated.
func (m *MotionDetector) Enabled() bool {
	return m.Threshold() > 0
}
