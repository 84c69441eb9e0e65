// Package config handles viewer configuration loading.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tanema/gween/ease"
)

// Config holds all viewer settings.
type Config struct {
	View      ViewConfig      `yaml:"view"`
	Animation AnimationConfig `yaml:"animation"`
	Data      DataConfig      `yaml:"data"`
	Export    ExportConfig    `yaml:"export"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ViewConfig holds projection and interaction settings.
type ViewConfig struct {
	Projection   string  `yaml:"projection"`
	Scale        float64 `yaml:"scale"` // 0 fits the globe to the surface
	Sensitivity  float64 `yaml:"sensitivity"`
	ZoomLevel    float64 `yaml:"zoom_level"`
	Tilt         float64 `yaml:"tilt"`
	ClipAngle    float64 `yaml:"clip_angle"`
	CoalesceDrag bool    `yaml:"coalesce_drag"`
}

// AnimationConfig holds centering animation settings.
type AnimationConfig struct {
	RotateDuration time.Duration `yaml:"rotate_duration"`
	ZoomDuration   time.Duration `yaml:"zoom_duration"`
	AnimateZoom    bool          `yaml:"animate_zoom"`
	Easing         string        `yaml:"easing"`
	FrameInterval  time.Duration `yaml:"frame_interval"`
}

// DataConfig holds dataset settings.
type DataConfig struct {
	Path   string `yaml:"path"`   // file or directory
	Region string `yaml:"region"` // minLon,minLat,maxLon,maxLat
}

// ExportConfig holds headless SVG export settings.
type ExportConfig struct {
	SVG    string `yaml:"svg"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Select int    `yaml:"select"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		View: ViewConfig{
			Projection:  "orthographic",
			Sensitivity: 0.25,
		},
		Animation: AnimationConfig{
			RotateDuration: 1250 * time.Millisecond,
			ZoomDuration:   2000 * time.Millisecond,
			Easing:         "linear",
			FrameInterval:  time.Second / 30,
		},
		Data: DataConfig{
			Path: ".",
		},
		Export: ExportConfig{
			Width:  800,
			Height: 500,
			Select: -1,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

var easings = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"in-quad":      ease.InQuad,
	"out-quad":     ease.OutQuad,
	"in-out-quad":  ease.InOutQuad,
	"in-cubic":     ease.InCubic,
	"out-cubic":    ease.OutCubic,
	"in-out-cubic": ease.InOutCubic,
	"in-out-sine":  ease.InOutSine,
	"out-expo":     ease.OutExpo,
	"out-bounce":   ease.OutBounce,
}

// EasingFunc resolves the configured easing name.
func (a AnimationConfig) EasingFunc() (ease.TweenFunc, error) {
	name := strings.ToLower(strings.TrimSpace(a.Easing))
	if name == "" {
		return ease.Linear, nil
	}
	fn, ok := easings[name]
	if !ok {
		return nil, fmt.Errorf("unknown easing %q", a.Easing)
	}
	return fn, nil
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch strings.ToLower(c.View.Projection) {
	case "orthographic", "ortho", "globe", "mercator":
	default:
		return fmt.Errorf("view.projection: unknown projection %q", c.View.Projection)
	}
	if !finite(c.View.Scale) || c.View.Scale < 0 {
		return errors.New("view.scale must not be negative")
	}
	if !finite(c.View.Sensitivity) || c.View.Sensitivity == 0 {
		return errors.New("view.sensitivity must be finite and non-zero")
	}
	if !finite(c.View.ZoomLevel) || c.View.ZoomLevel < 0 {
		return errors.New("view.zoom_level must not be negative")
	}
	if !finite(c.View.Tilt) {
		return errors.New("view.tilt must be finite")
	}
	if !finite(c.View.ClipAngle) || c.View.ClipAngle < 0 || c.View.ClipAngle > 180 {
		return fmt.Errorf("view.clip_angle must be within [0, 180], got %g", c.View.ClipAngle)
	}
	if c.Animation.RotateDuration < 0 || c.Animation.ZoomDuration < 0 {
		return errors.New("animation durations must not be negative")
	}
	if c.Animation.FrameInterval <= 0 {
		return errors.New("animation.frame_interval must be positive")
	}
	if _, err := c.Animation.EasingFunc(); err != nil {
		return fmt.Errorf("animation.easing: %w", err)
	}
	if c.Export.SVG != "" && (c.Export.Width <= 0 || c.Export.Height <= 0) {
		return fmt.Errorf("export size must be positive, got %dx%d", c.Export.Width, c.Export.Height)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
