package config

import (
	"go.uber.org/zap"

	"geoglobe/internal/globe"
)

// Projection returns the projection config for a w x h surface.
func (c *Config) Projection(w, h int) (globe.Config, error) {
	typ, err := globe.ParseProjectionType(c.View.Projection)
	if err != nil {
		return globe.Config{}, err
	}
	pc := globe.DefaultConfig(w, h)
	pc.Type = typ
	pc.ClipAngle = c.View.ClipAngle
	pc.Rotation.Gamma = c.View.Tilt
	if c.View.Scale > 0 {
		pc.Scale = c.View.Scale
	}
	return pc, pc.Validate()
}

// EngineOptions maps the view and animation settings onto engine options.
// The host fills in Loop, Render and Clock.
func (c *Config) EngineOptions(log *zap.Logger) (globe.Options, error) {
	fn, err := c.Animation.EasingFunc()
	if err != nil {
		return globe.Options{}, err
	}
	return globe.Options{
		Logger:         log,
		Sensitivity:    c.View.Sensitivity,
		ZoomLevel:      c.View.ZoomLevel,
		Tilt:           c.View.Tilt,
		RotateDuration: c.Animation.RotateDuration,
		ZoomDuration:   c.Animation.ZoomDuration,
		AnimateZoom:    c.Animation.AnimateZoom,
		CoalesceDrag:   c.View.CoalesceDrag,
		Easing:         fn,
	}, nil
}
