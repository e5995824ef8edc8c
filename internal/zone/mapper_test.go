package zone

import (
	"errors"
	"testing"

	"github.com/ayusman/spatialtouch/internal/log"
)

func newTestMapper(t *testing.T, mutate func(*Config)) *Mapper {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	m, err := NewMapper(cfg, log.Discard())
	if err != nil {
		t.Fatalf("NewMapper() error = %v", err)
	}
	return m
}

func TestMapPosition_Center(t *testing.T) {
	m := newTestMapper(t, nil)

	got := m.MapPosition(0.5, 0.5)
	if got != (ScreenPoint{X: 960, Y: 540}) {
		t.Errorf("MapPosition(0.5, 0.5) = %+v, want (960, 540)", got)
	}
}

func TestMapPosition_Inversion(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		x, y   float64
		want   ScreenPoint
	}{
		{"mirrored x", nil, 0.25, 0.25, ScreenPoint{X: 1440, Y: 270}},
		{"plain", func(c *Config) { c.InvertX = false }, 0.25, 0.25, ScreenPoint{X: 480, Y: 270}},
		{"both inverted", func(c *Config) { c.InvertY = true }, 0.25, 0.25, ScreenPoint{X: 1440, Y: 810}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMapper(t, tt.mutate)
			if got := m.MapPosition(tt.x, tt.y); got != tt.want {
				t.Errorf("MapPosition(%v, %v) = %+v, want %+v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestMapPosition_SensitivityAndMargin(t *testing.T) {
	m := newTestMapper(t, func(c *Config) { c.Sensitivity = 2 })

	// 0.75 mirrors to 0.25, which doubles away from the center to 0.
	got := m.MapPosition(0.75, 0.5)
	if got != (ScreenPoint{X: 10, Y: 540}) {
		t.Errorf("MapPosition(0.75, 0.5) = %+v, want (10, 540)", got)
	}

	got = m.MapPosition(0, 1)
	if got != (ScreenPoint{X: 1910, Y: 1070}) {
		t.Errorf("MapPosition(0, 1) = %+v, want (1910, 1070)", got)
	}
}

func TestMapPosition_StaysInsideMargins(t *testing.T) {
	configs := map[string]func(*Config){
		"defaults":        nil,
		"high gain":       func(c *Config) { c.Sensitivity = 3 },
		"low gain":        func(c *Config) { c.Sensitivity = 0.3 },
		"smoothed":        func(c *Config) { c.Smoothing = 0.6 },
		"inverted y":      func(c *Config) { c.InvertY = true },
		"wide margin":     func(c *Config) { c.Margin = 200 },
		"odd screen size": func(c *Config) { c.ScreenWidth, c.ScreenHeight = 1366, 767 },
	}

	for name, mutate := range configs {
		t.Run(name, func(t *testing.T) {
			m := newTestMapper(t, mutate)
			cfg := m.Config()
			for i := 0; i <= 40; i++ {
				for j := 0; j <= 40; j++ {
					x, y := float64(i)/40, float64(j)/40
					p := m.MapPosition(x, y)
					if p.X < cfg.Margin || p.X > cfg.ScreenWidth-cfg.Margin ||
						p.Y < cfg.Margin || p.Y > cfg.ScreenHeight-cfg.Margin {
						t.Fatalf("MapPosition(%v, %v) = %+v outside margins", x, y, p)
					}
				}
			}
		})
	}
}

func TestMapPosition_Smoothing(t *testing.T) {
	m := newTestMapper(t, func(c *Config) { c.Smoothing = 0.5 })

	m.MapPosition(0.5, 0.5)
	// Raw target is (1910, 540); half the weight stays on the previous point.
	got := m.MapPosition(0, 0.5)
	if got != (ScreenPoint{X: 1435, Y: 540}) {
		t.Errorf("smoothed MapPosition = %+v, want (1435, 540)", got)
	}

	last, ok := m.LastPosition()
	if !ok || last != got {
		t.Errorf("LastPosition() = %+v, %v", last, ok)
	}
}

func TestMapPosition_FullSmoothingHolds(t *testing.T) {
	m := newTestMapper(t, func(c *Config) { c.Smoothing = 1 })

	first := m.MapPosition(0.5, 0.5)
	for _, p := range [][2]float64{{0, 0}, {1, 1}, {0.2, 0.9}} {
		if got := m.MapPosition(p[0], p[1]); got != first {
			t.Errorf("MapPosition(%v) = %+v, want held at %+v", p, got, first)
		}
	}

	m.Reset()
	if got := m.MapPosition(0, 0.5); got == first {
		t.Error("Reset should drop the held point")
	}
}

func TestMapPosition_Idempotent(t *testing.T) {
	m := newTestMapper(t, nil)

	a := m.MapPosition(0.3, 0.7)
	b := m.MapPosition(0.3, 0.7)
	if a != b {
		t.Errorf("same input mapped to %+v then %+v", a, b)
	}
}

func TestIsInDeadZone(t *testing.T) {
	m := newTestMapper(t, nil)

	if m.IsInDeadZone(Point{X: 0.5, Y: 0.5}, nil) {
		t.Error("no previous point should never be in the dead zone")
	}

	m.MapPosition(0.5, 0.5)

	if !m.IsInDeadZone(Point{X: 0.51, Y: 0.49}, nil) {
		t.Error("small move from last point should be in the dead zone")
	}
	if m.IsInDeadZone(Point{X: 0.53, Y: 0.5}, nil) {
		t.Error("move beyond dead zone on x should not be in it")
	}

	ref := Point{X: 0.2, Y: 0.2}
	if !m.IsInDeadZone(Point{X: 0.21, Y: 0.2}, &ref) {
		t.Error("explicit reference should be used")
	}
	if m.IsInDeadZone(Point{X: 0.2, Y: 0.25}, &ref) {
		t.Error("move beyond dead zone on y should not be in it")
	}

	m.Reset()
	if m.IsInDeadZone(Point{X: 0.5, Y: 0.5}, nil) {
		t.Error("Reset should forget the last point")
	}
}

func TestZone_Partition(t *testing.T) {
	grids := []struct{ cols, rows int }{{3, 3}, {4, 2}, {1, 1}, {5, 3}}

	for _, g := range grids {
		m := newTestMapper(t, func(c *Config) {
			c.ZoneColumns, c.ZoneRows = g.cols, g.rows
			c.InvertX = false
		})

		seen := make(map[Zone]bool)
		for i := 0; i <= 100; i++ {
			for j := 0; j <= 100; j++ {
				z := m.Zone(Point{X: float64(i) / 100, Y: float64(j) / 100})
				if z.Row < 0 || z.Row >= g.rows || z.Col < 0 || z.Col >= g.cols {
					t.Fatalf("%dx%d: zone %+v out of grid", g.cols, g.rows, z)
				}
				seen[z] = true
			}
		}
		if len(seen) != g.cols*g.rows {
			t.Errorf("%dx%d grid: %d distinct zones, want %d", g.cols, g.rows, len(seen), g.cols*g.rows)
		}
	}
}

func TestZone_Names(t *testing.T) {
	m := newTestMapper(t, nil)

	tests := []struct {
		pos  Point
		want string
	}{
		{Point{X: 0.5, Y: 0.5}, "MIDDLE_CENTER"},
		// x is mirrored, so the left of the camera image is the right of the screen.
		{Point{X: 0.1, Y: 0.1}, "TOP_RIGHT"},
		{Point{X: 0.9, Y: 0.9}, "BOTTOM_LEFT"},
		{Point{X: 0, Y: 1}, "BOTTOM_RIGHT"},
	}
	for _, tt := range tests {
		if got := m.Zone(tt.pos).Name; got != tt.want {
			t.Errorf("Zone(%+v) = %s, want %s", tt.pos, got, tt.want)
		}
	}

	grid := newTestMapper(t, func(c *Config) { c.ZoneColumns, c.ZoneRows, c.InvertX = 4, 2, false })
	if got := grid.Zone(Point{X: 0.9, Y: 0.9}).Name; got != "ROW_1_COL_3" {
		t.Errorf("4x2 zone name = %s, want ROW_1_COL_3", got)
	}
}

func TestEdgeProximity(t *testing.T) {
	m := newTestMapper(t, nil)

	e := m.EdgeProximity(Point{X: 0.05, Y: 0.95}, 0.1)
	if e.Left || !e.Right || e.Top || !e.Bottom {
		t.Errorf("EdgeProximity = %+v, want right and bottom", e)
	}
	if m.EdgeProximity(Point{X: 0.5, Y: 0.5}, 0.1).Any() {
		t.Error("center should not be near any edge")
	}
}

func TestUpdateScreenSize(t *testing.T) {
	m := newTestMapper(t, nil)

	if err := m.UpdateScreenSize(2560, 1440); err != nil {
		t.Fatalf("UpdateScreenSize() error = %v", err)
	}
	if got := m.MapPosition(0.5, 0.5); got != (ScreenPoint{X: 1280, Y: 720}) {
		t.Errorf("MapPosition after resize = %+v", got)
	}

	if err := m.UpdateScreenSize(15, 15); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("UpdateScreenSize(15, 15) error = %v, want ErrInvalidConfig", err)
	}
	if w, h := m.ScreenSize(); w != 2560 || h != 1440 {
		t.Errorf("rejected resize changed size to %dx%d", w, h)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.ScreenWidth = 0 }},
		{"negative margin", func(c *Config) { c.Margin = -1 }},
		{"margin too wide", func(c *Config) { c.Margin = 540 }},
		{"zero sensitivity", func(c *Config) { c.Sensitivity = 0 }},
		{"dead zone too big", func(c *Config) { c.DeadZone = 1 }},
		{"negative smoothing", func(c *Config) { c.Smoothing = -0.1 }},
		{"smoothing above one", func(c *Config) { c.Smoothing = 1.01 }},
		{"empty grid", func(c *Config) { c.ZoneRows = 0 }},
	}

	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error = %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
