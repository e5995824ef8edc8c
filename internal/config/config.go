// Package config loads spatialtouch settings. Values are layered: built-in
// defaults, then a JSON or YAML settings file, then SPATIALTOUCH_*
// environment variables, then overrides persisted in the store.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/ayusman/spatialtouch/internal/action"
	"github.com/ayusman/spatialtouch/internal/detector"
	"github.com/ayusman/spatialtouch/internal/gesture"
	"github.com/ayusman/spatialtouch/internal/smoothing"
	"github.com/ayusman/spatialtouch/internal/zone"
)

// EnvPrefix prefixes every environment override, e.g.
// SPATIALTOUCH_CURSOR_SENSITIVITY.
const EnvPrefix = "SPATIALTOUCH"

// ErrInvalid is returned when a loaded configuration fails validation.
var ErrInvalid = errors.New("invalid configuration")

// ErrUnsupportedFormat is returned for settings files that are neither JSON
// nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported settings file format")

// Config is the complete application configuration.
type Config struct {
	Camera   CameraConfig        `json:"camera" yaml:"camera"`
	Tracking TrackingConfig      `json:"tracking" yaml:"tracking"`
	Gestures gesture.Config      `json:"gestures" yaml:"gestures"`
	Swipe    gesture.SwipeConfig `json:"swipe" yaml:"swipe"`
	Cursor   zone.Config         `json:"cursor" yaml:"cursor"`
	Actions  action.Config       `json:"actions" yaml:"actions"`
	System   SystemConfig        `json:"system" yaml:"system"`
}

// CameraConfig selects and paces the capture device.
type CameraConfig struct {
	Device int `json:"device" yaml:"device"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
	// IdleFPS is used after System.IdleTimeoutFrames frames without a hand.
	IdleFPS   int `json:"idle_fps" yaml:"idle_fps" split_words:"true"`
	ActiveFPS int `json:"active_fps" yaml:"active_fps" split_words:"true"`
	// MotionThreshold is the percentage of changed pixels that wakes the
	// pipeline from idle. Zero disables motion gating.
	MotionThreshold float64 `json:"motion_threshold" yaml:"motion_threshold" split_words:"true"`
}

// TrackingConfig covers landmark detection and per-landmark smoothing.
type TrackingConfig struct {
	MaxHands           int            `json:"max_hands" yaml:"max_hands" split_words:"true"`
	MinDetectionConf   float64        `json:"min_detection_confidence" yaml:"min_detection_confidence" envconfig:"MIN_DETECTION_CONFIDENCE"`
	MinTrackingConf    float64        `json:"min_tracking_confidence" yaml:"min_tracking_confidence" envconfig:"MIN_TRACKING_CONFIDENCE"`
	MinConfidence      float64        `json:"min_confidence" yaml:"min_confidence" split_words:"true"`
	ModelComplexity    int            `json:"model_complexity" yaml:"model_complexity" split_words:"true"`
	SmoothingFactor    float64        `json:"smoothing_factor" yaml:"smoothing_factor" split_words:"true"`
	Smoother           smoothing.Kind `json:"smoother" yaml:"smoother"`
	SmoothingBeta      float64        `json:"smoothing_beta" yaml:"smoothing_beta" split_words:"true"`
	SmoothingMinCutoff float64        `json:"smoothing_min_cutoff" yaml:"smoothing_min_cutoff" split_words:"true"`
	FlipHandedness     bool           `json:"flip_handedness" yaml:"flip_handedness" split_words:"true"`
	DetectorScript     string         `json:"detector_script" yaml:"detector_script" split_words:"true"`
}

// SystemConfig holds process-level settings.
type SystemConfig struct {
	LogLevel  string `json:"log_level" yaml:"log_level" split_words:"true"`
	LogFormat string `json:"log_format" yaml:"log_format" split_words:"true"`
	DebugMode bool   `json:"debug_mode" yaml:"debug_mode" split_words:"true"`
	// IdleTimeoutFrames is the number of frames without a hand before the
	// camera drops to IdleFPS.
	IdleTimeoutFrames int    `json:"idle_timeout_frames" yaml:"idle_timeout_frames" split_words:"true"`
	DataDir           string `json:"data_dir" yaml:"data_dir" split_words:"true"`
	PluginDir         string `json:"plugin_dir" yaml:"plugin_dir" split_words:"true"`
	PluginTimeoutMs   int    `json:"plugin_timeout_ms" yaml:"plugin_timeout_ms" split_words:"true"`
	HTTPAddr          string `json:"http_addr" yaml:"http_addr" envconfig:"HTTP_ADDR"`
	APIEnabled        bool   `json:"api_enabled" yaml:"api_enabled" envconfig:"API_ENABLED"`
	TrayEnabled       bool   `json:"tray_enabled" yaml:"tray_enabled" split_words:"true"`
	// AutoScreenSize replaces the cursor screen size with the size of the
	// main display at startup.
	AutoScreenSize bool `json:"auto_screen_size" yaml:"auto_screen_size" split_words:"true"`
	// RecordEvents writes every emitted gesture to the event log.
	RecordEvents bool `json:"record_events" yaml:"record_events" split_words:"true"`
}

// Default returns the built-in configuration.
func Default() Config {
	dataDir := ".spatialtouch"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".spatialtouch")
	}

	det := detector.DefaultConfig()
	trk := detector.DefaultTrackerConfig()

	return Config{
		Camera: CameraConfig{
			Device:          0,
			Width:           640,
			Height:          480,
			IdleFPS:         5,
			ActiveFPS:       30,
			MotionThreshold: 0,
		},
		Tracking: TrackingConfig{
			MaxHands:         det.MaxHands,
			MinDetectionConf: det.MinConfidence,
			MinTrackingConf:  det.MinTrackingConf,
			MinConfidence:    trk.MinConfidence,
			ModelComplexity:  det.ModelComplexity,
			SmoothingFactor:  trk.SmoothingFactor,
			Smoother:         trk.Smoothing,
			FlipHandedness:   trk.FlipHandedness,
		},
		Gestures: gesture.DefaultConfig(),
		Swipe:    gesture.DefaultSwipeConfig(),
		Cursor:   zone.DefaultConfig(),
		Actions:  action.DefaultConfig(),
		System: SystemConfig{
			LogLevel:          "info",
			LogFormat:         "text",
			IdleTimeoutFrames: 30,
			DataDir:           dataDir,
			PluginDir:         filepath.Join(dataDir, "plugins"),
			PluginTimeoutMs:   5000,
			HTTPAddr:          "127.0.0.1:8080",
			APIEnabled:        true,
			TrayEnabled:       true,
			AutoScreenSize:    true,
			RecordEvents:      true,
		},
	}
}

// Load builds a Config from defaults, the settings file at path and the
// environment. An empty path or a missing file leaves the defaults in place.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.readFile(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, err
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, c)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Save writes c to path as JSON or YAML depending on its extension.
func (c Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(c, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every section.
func (c Config) Validate() error {
	checks := []struct {
		section string
		err     error
	}{
		{"camera", c.Camera.validate()},
		{"tracking", c.Tracking.validate()},
		{"gestures", c.Gestures.Validate()},
		{"swipe", validateSwipe(c.Swipe)},
		{"cursor", c.Cursor.Validate()},
		{"actions", validateActions(c.Actions)},
		{"system", c.System.validate()},
	}
	for _, ch := range checks {
		if ch.err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalid, ch.section, ch.err)
		}
	}
	return nil
}

func (c CameraConfig) validate() error {
	switch {
	case c.Device < 0:
		return fmt.Errorf("device %d is negative", c.Device)
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("resolution %dx%d", c.Width, c.Height)
	case c.IdleFPS <= 0 || c.ActiveFPS <= 0:
		return fmt.Errorf("fps idle=%d active=%d must be positive", c.IdleFPS, c.ActiveFPS)
	case c.IdleFPS > c.ActiveFPS:
		return fmt.Errorf("idle_fps %d exceeds active_fps %d", c.IdleFPS, c.ActiveFPS)
	case c.MotionThreshold < 0 || c.MotionThreshold > 100:
		return fmt.Errorf("motion_threshold %v not in [0,100]", c.MotionThreshold)
	}
	return nil
}

func (c TrackingConfig) validate() error {
	switch {
	case c.MaxHands < 1:
		return fmt.Errorf("max_hands %d", c.MaxHands)
	case !unit(c.MinDetectionConf) || !unit(c.MinTrackingConf) || !unit(c.MinConfidence):
		return errors.New("confidence thresholds must be in [0,1]")
	case !unit(c.SmoothingFactor):
		return fmt.Errorf("smoothing_factor %v not in [0,1]", c.SmoothingFactor)
	case c.ModelComplexity < 0 || c.ModelComplexity > 1:
		return fmt.Errorf("model_complexity %d", c.ModelComplexity)
	}
	switch c.Smoother {
	case "", detector.SmoothingNone, smoothing.KindEMA, smoothing.KindMovingAverage,
		smoothing.KindDoubleExponential, smoothing.KindOneEuro:
	default:
		return fmt.Errorf("unknown smoother %q", c.Smoother)
	}
	return nil
}

func validateSwipe(c gesture.SwipeConfig) error {
	if !c.Enabled {
		return nil
	}
	switch {
	case c.TwoFingerGap <= 0 || c.MinTravel <= 0 || c.Tolerance <= 0:
		return errors.New("swipe thresholds must be positive")
	case c.MaxDurationMs <= 0 || c.CooldownMs < 0:
		return fmt.Errorf("max_duration_ms %d cooldown_ms %d", c.MaxDurationMs, c.CooldownMs)
	}
	return nil
}

func validateActions(c action.Config) error {
	switch {
	case c.ClickIntervalMs < 0:
		return fmt.Errorf("click_interval_ms %d is negative", c.ClickIntervalMs)
	case c.ScrollAmount <= 0:
		return fmt.Errorf("scroll_amount %d must be positive", c.ScrollAmount)
	}
	return nil
}

func (c SystemConfig) validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log_level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format %q", c.LogFormat)
	}
	switch {
	case c.IdleTimeoutFrames < 1:
		return fmt.Errorf("idle_timeout_frames %d", c.IdleTimeoutFrames)
	case c.PluginTimeoutMs <= 0:
		return fmt.Errorf("plugin_timeout_ms %d", c.PluginTimeoutMs)
	case c.DataDir == "":
		return errors.New("data_dir is empty")
	}
	return nil
}

func unit(v float64) bool { return v >= 0 && v <= 1 }

// EffectiveLogLevel returns "debug" in debug mode and LogLevel otherwise.
func (c SystemConfig) EffectiveLogLevel() string {
	if c.DebugMode {
		return "debug"
	}
	return c.LogLevel
}

// DBPath returns the SQLite database location.
func (c SystemConfig) DBPath() string {
	return filepath.Join(c.DataDir, "spatialtouch.db")
}

// DetectorConfig returns the landmark provider settings.
func (c TrackingConfig) DetectorConfig() detector.Config {
	return detector.Config{
		MaxHands:        c.MaxHands,
		MinConfidence:   c.MinDetectionConf,
		MinTrackingConf: c.MinTrackingConf,
		ModelComplexity: c.ModelComplexity,
		ScriptPath:      c.DetectorScript,
	}
}

// TrackerConfig returns the hand tracker settings.
func (c TrackingConfig) TrackerConfig() detector.TrackerConfig {
	return detector.TrackerConfig{
		MinConfidence:      c.MinConfidence,
		SmoothingFactor:    c.SmoothingFactor,
		Smoothing:          c.Smoother,
		SmoothingBeta:      c.SmoothingBeta,
		SmoothingMinCutoff: c.SmoothingMinCutoff,
		FlipHandedness:     c.FlipHandedness,
	}
}
