package globe

import (
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/tanema/gween/ease"
	"go.uber.org/zap"
)

const (
	DefaultRotateDuration = 1250 * time.Millisecond
	DefaultZoomDuration   = 2000 * time.Millisecond
)

// Centering animates the view onto a selected feature.
type Centering struct {
	RotateDuration time.Duration
	ZoomDuration   time.Duration
	// Tilt is the roll applied once a feature is centred.
	Tilt float64
	// ZoomLevel is the target scale when AnimateZoom is set.
	ZoomLevel   float64
	AnimateZoom bool
	Easing      ease.TweenFunc

	sched  *Scheduler
	log    *zap.Logger
	commit func(Rotation, float64)
}

// NewCentering returns a controller that runs its tweens on sched and passes
// every interpolated rotation and scale to commit.
func NewCentering(sched *Scheduler, log *zap.Logger, commit func(Rotation, float64)) *Centering {
	if log == nil {
		log = zap.NewNop()
	}
	return &Centering{
		RotateDuration: DefaultRotateDuration,
		ZoomDuration:   DefaultZoomDuration,
		sched:          sched,
		log:            log,
		commit:         commit,
	}
}

// Target returns the rotation and scale that centre (lon, lat).
func (c *Centering) Target(lon, lat, scale float64) (Rotation, float64) {
	r := Rotation{
		Lambda: NormalizeLongitude(-lon),
		Phi:    ClampLatitude(-lat),
		Gamma:  c.Tilt,
	}
	if c.AnimateZoom && c.ZoomLevel > 0 {
		scale = c.ZoomLevel
	}
	return r, scale
}

// OnSelectionChanged starts the tween that centres features[index]. An index
// outside features does nothing. Starting supersedes any running tween.
func (c *Centering) OnSelectionChanged(index int, features []*geojson.Feature, cur Rotation, scale float64) error {
	if index < 0 || index >= len(features) {
		return nil
	}
	lon, lat, err := Centroid(features[index])
	if err != nil {
		c.log.Warn("cannot centre feature", zap.Int("index", index), zap.Error(err))
		return err
	}
	target, targetScale := c.Target(lon, lat, scale)
	d := c.RotateDuration
	if targetScale != scale {
		d = c.ZoomDuration
	}
	from := []float64{cur.Lambda, cur.Phi, cur.Gamma, scale}
	to := []float64{target.Lambda, target.Phi, target.Gamma, targetScale}
	_, err = c.sched.Start(from, to, d, c.Easing, func(v []float64) {
		c.commit(Rotation{Lambda: v[0], Phi: v[1], Gamma: v[2]}, v[3])
	}, func() {
		c.log.Debug("feature centred",
			zap.Int("index", index),
			zap.Float64("lon", lon),
			zap.Float64("lat", lat))
	})
	return err
}
