package smoothing

import (
	"fmt"
	"time"
)

// Options selects and parameterizes a smoother built by New.
type Options struct {
	Kind Kind
	// Alpha is the EMA / level factor.
	Alpha float64
	// Beta is the trend factor for double exponential smoothing, or the
	// speed coefficient for the one-euro filter.
	Beta float64
	// Window is the moving average size. When zero it is derived from
	// Alpha as int(1/Alpha).
	Window    int
	MinCutoff float64
	DCutoff   float64
	// Now timestamps one-euro samples. Defaults to time.Now.
	Now func() time.Time
}

// New builds a Smoother from opts.
func New(opts Options) (Smoother, error) {
	switch opts.Kind {
	case KindEMA, "":
		return NewEMA(opts.Alpha)
	case KindMovingAverage:
		n := opts.Window
		if n == 0 && opts.Alpha > 0 {
			n = int(1 / opts.Alpha)
		}
		return NewMovingAverage(n)
	case KindDoubleExponential:
		return NewDoubleExponential(opts.Alpha, opts.Beta)
	case KindOneEuro:
		minCutoff, dCutoff := opts.MinCutoff, opts.DCutoff
		if minCutoff == 0 {
			minCutoff = DefaultMinCutoff
		}
		if dCutoff == 0 {
			dCutoff = DefaultDCutoff
		}
		f, err := NewOneEuro(minCutoff, opts.Beta, dCutoff)
		if err != nil {
			return nil, err
		}
		return Clocked(f, opts.Now), nil
	default:
		return nil, fmt.Errorf("unknown smoother kind %q", opts.Kind)
	}
}

// Point2D smooths x and y independently.
type Point2D struct {
	x, y Smoother
}

// NewPoint2D creates a 2D point smoother with one filter per axis.
func NewPoint2D(opts Options) (*Point2D, error) {
	axes, err := newAxes(opts, 2)
	if err != nil {
		return nil, err
	}
	return &Point2D{x: axes[0], y: axes[1]}, nil
}

// newAxes builds n independent smoothers from opts.
func newAxes(opts Options, n int) ([]Smoother, error) {
	axes := make([]Smoother, n)
	for i := range axes {
		s, err := New(opts)
		if err != nil {
			return nil, err
		}
		axes[i] = s
	}
	return axes, nil
}

// Update returns the smoothed (x, y).
func (p *Point2D) Update(x, y float64) (float64, float64) {
	return p.x.Update(x), p.y.Update(y)
}

// Reset clears both axes.
func (p *Point2D) Reset() {
	p.x.Reset()
	p.y.Reset()
}

// Point3D smooths x, y and z independently.
type Point3D struct {
	x, y, z Smoother
}

// NewPoint3D creates a 3D point smoother with one filter per axis.
func NewPoint3D(opts Options) (*Point3D, error) {
	axes, err := newAxes(opts, 3)
	if err != nil {
		return nil, err
	}
	return &Point3D{x: axes[0], y: axes[1], z: axes[2]}, nil
}

// Update returns the smoothed (x, y, z).
func (p *Point3D) Update(x, y, z float64) (float64, float64, float64) {
	return p.x.Update(x), p.y.Update(y), p.z.Update(z)
}

// Reset clears all three axes.
func (p *Point3D) Reset() {
	p.x.Reset()
	p.y.Reset()
	p.z.Reset()
}
