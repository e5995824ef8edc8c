// Package zone maps normalized hand positions to screen pixels and
// classifies positions into screen zones.
package zone

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/ayusman/spatialtouch/internal/log"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid zone config")

// Config controls the normalized-to-screen transform.
type Config struct {
	ScreenWidth  int     `json:"screen_width" yaml:"screen_width" split_words:"true"`
	ScreenHeight int     `json:"screen_height" yaml:"screen_height" split_words:"true"`
	Sensitivity  float64 `json:"sensitivity" yaml:"sensitivity"`
	// DeadZone is the normalized per-axis radius treated as no movement.
	DeadZone float64 `json:"dead_zone" yaml:"dead_zone" split_words:"true"`
	// InvertX mirrors the horizontal axis so the cursor follows a user
	// facing the camera.
	InvertX bool `json:"invert_x" yaml:"invert_x" split_words:"true"`
	InvertY bool `json:"invert_y" yaml:"invert_y" split_words:"true"`
	// Margin keeps the cursor this many pixels away from every edge.
	Margin int `json:"margin" yaml:"margin"`
	// Smoothing is the weight of the previous mapped point in [0,1]. At 1
	// the pointer stays on the first mapped point until Reset.
	Smoothing   float64 `json:"smoothing" yaml:"smoothing"`
	ZoneColumns int     `json:"zone_columns" yaml:"zone_columns" split_words:"true"`
	ZoneRows    int     `json:"zone_rows" yaml:"zone_rows" split_words:"true"`
}

// DefaultConfig returns the default mapping for a 1920x1080 screen.
func DefaultConfig() Config {
	return Config{
		ScreenWidth:  1920,
		ScreenHeight: 1080,
		Sensitivity:  1.0,
		DeadZone:     0.02,
		InvertX:      true,
		InvertY:      false,
		Margin:       10,
		Smoothing:    0.0,
		ZoneColumns:  3,
		ZoneRows:     3,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch {
	case c.ScreenWidth <= 0 || c.ScreenHeight <= 0:
		return fmt.Errorf("%w: screen size %dx%d", ErrInvalidConfig, c.ScreenWidth, c.ScreenHeight)
	case c.Margin < 0 || 2*c.Margin >= c.ScreenWidth || 2*c.Margin >= c.ScreenHeight:
		return fmt.Errorf("%w: margin %d does not fit %dx%d", ErrInvalidConfig, c.Margin, c.ScreenWidth, c.ScreenHeight)
	case c.Sensitivity <= 0:
		return fmt.Errorf("%w: sensitivity %v must be positive", ErrInvalidConfig, c.Sensitivity)
	case c.DeadZone < 0 || c.DeadZone >= 1:
		return fmt.Errorf("%w: dead_zone %v not in [0,1)", ErrInvalidConfig, c.DeadZone)
	case c.Smoothing < 0 || c.Smoothing > 1:
		return fmt.Errorf("%w: smoothing %v not in [0,1]", ErrInvalidConfig, c.Smoothing)
	case c.ZoneColumns < 1 || c.ZoneRows < 1:
		return fmt.Errorf("%w: zone grid %dx%d", ErrInvalidConfig, c.ZoneColumns, c.ZoneRows)
	}
	return nil
}

// ScreenPoint is a position in screen pixels.
type ScreenPoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Point is a normalized position.
type Point struct {
	X, Y float64
}

// Mapper converts normalized positions to screen coordinates. It remembers
// the last mapped point for smoothing and dead-zone checks.
// A Mapper is not safe for concurrent use.
type Mapper struct {
	cfg     Config
	last    ScreenPoint
	hasLast bool
	logger  *slog.Logger
}

// NewMapper validates cfg and returns a Mapper.
func NewMapper(cfg Config, logger *slog.Logger) (*Mapper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.With("component", "zone")
	}

	logger.Info("zone mapper initialized",
		"screen", fmt.Sprintf("%dx%d", cfg.ScreenWidth, cfg.ScreenHeight),
		"sensitivity", cfg.Sensitivity,
		"dead_zone", cfg.DeadZone,
	)
	return &Mapper{cfg: cfg, logger: logger}, nil
}

// Config returns the current configuration.
func (m *Mapper) Config() Config { return m.cfg }

// ScreenSize returns the configured screen dimensions.
func (m *Mapper) ScreenSize() (int, int) { return m.cfg.ScreenWidth, m.cfg.ScreenHeight }

// UpdateScreenSize changes the target screen dimensions. Sizes that cannot
// hold the margin are rejected.
func (m *Mapper) UpdateScreenSize(width, height int) error {
	next := m.cfg
	next.ScreenWidth, next.ScreenHeight = width, height
	if err := next.Validate(); err != nil {
		return err
	}
	m.cfg = next
	m.logger.Info("screen size updated", "width", width, "height", height)
	return nil
}

// MapPosition maps a normalized (x, y) to screen pixels. The result always
// lies within [margin, dimension-margin] on both axes.
func (m *Mapper) MapPosition(x, y float64) ScreenPoint {
	x, y = m.orient(x, y)

	if s := m.cfg.Sensitivity; s != 1.0 {
		x = 0.5 + (x-0.5)*s
		y = 0.5 + (y-0.5)*s
	}

	x = clamp01(x)
	y = clamp01(y)

	sx := int(math.Floor(x * float64(m.cfg.ScreenWidth)))
	sy := int(math.Floor(y * float64(m.cfg.ScreenHeight)))

	sx = clampInt(sx, m.cfg.Margin, m.cfg.ScreenWidth-m.cfg.Margin)
	sy = clampInt(sy, m.cfg.Margin, m.cfg.ScreenHeight-m.cfg.Margin)

	// The smoothing weight applies to the previous point, not the new one.
	if s := m.cfg.Smoothing; s > 0 && m.hasLast {
		a := 1.0 - s
		sx = int(a*float64(sx) + s*float64(m.last.X))
		sy = int(a*float64(sy) + s*float64(m.last.Y))
	}

	p := ScreenPoint{X: sx, Y: sy}
	m.last = p
	m.hasLast = true
	return p
}

// IsInDeadZone reports whether pos is within the dead zone of ref on both
// axes. When ref is nil the last mapped point, converted back to normalized
// screen space, is used; with no previous point the result is false.
func (m *Mapper) IsInDeadZone(pos Point, ref *Point) bool {
	var r Point
	switch {
	case ref != nil:
		r = *ref
	case m.hasLast:
		r = Point{
			X: float64(m.last.X) / float64(m.cfg.ScreenWidth),
			Y: float64(m.last.Y) / float64(m.cfg.ScreenHeight),
		}
	default:
		return false
	}

	return math.Abs(pos.X-r.X) < m.cfg.DeadZone && math.Abs(pos.Y-r.Y) < m.cfg.DeadZone
}

// Zone returns the grid cell containing pos after axis inversion.
func (m *Mapper) Zone(pos Point) Zone {
	x, y := m.orient(pos.X, pos.Y)
	cols, rows := m.cfg.ZoneColumns, m.cfg.ZoneRows

	col := min(int(clamp01(x)*float64(cols)), cols-1)
	row := min(int(clamp01(y)*float64(rows)), rows-1)

	return Zone{Row: row, Col: col, Name: zoneName(row, col, rows, cols)}
}

// EdgeProximity reports which screen edges pos is within threshold of,
// after axis inversion.
func (m *Mapper) EdgeProximity(pos Point, threshold float64) Edges {
	x, y := m.orient(pos.X, pos.Y)
	return Edges{
		Left:   x < threshold,
		Right:  x > 1.0-threshold,
		Top:    y < threshold,
		Bottom: y > 1.0-threshold,
	}
}

// LastPosition returns the last mapped point, if any.
func (m *Mapper) LastPosition() (ScreenPoint, bool) {
	return m.last, m.hasLast
}

// Reset forgets the last mapped point.
func (m *Mapper) Reset() {
	m.hasLast = false
	m.last = ScreenPoint{}
	m.logger.Debug("zone mapper reset")
}

func (m *Mapper) orient(x, y float64) (float64, float64) {
	if m.cfg.InvertX {
		x = 1.0 - x
	}
	if m.cfg.InvertY {
		y = 1.0 - y
	}
	return x, y
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
