package globe

import (
	"math"
	"testing"
	"time"

	"github.com/golang/geo/r2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// recordingLoop remembers every generation it was asked to schedule.
type recordingLoop struct {
	scheduled []uint64
	stopped   int
}

func (l *recordingLoop) Schedule(gen uint64) { l.scheduled = append(l.scheduled, gen) }
func (l *recordingLoop) Stop() { l.stopped++ }

func (l *recordingLoop) last() uint64 {
	if len(l.scheduled) == 0 {
		return 0
	}
	return l.scheduled[len(l.scheduled)-1]
}

type renderCall struct {
	cfg      Config
	selected int
}

type renderRecorder struct {
	calls []renderCall
}

func (r *renderRecorder) render(p *Projector, selected int) {
	r.calls = append(r.calls, renderCall{cfg: p.Config(), selected: selected})
}

func testConfig() Config {
	return Config{
		Type:      Orthographic,
		Scale:     100,
		Translate: r2.Point{X: 200, Y: 100},
		Width:     400,
		Height:    200,
	}
}

// box returns a square polygon feature of half-size d centred on lon/lat.
func box(lon, lat, d float64) *geojson.Feature {
	return geojson.NewFeature(orb.Polygon{orb.Ring{
		{lon - d, lat - d},
		{lon + d, lat - d},
		{lon + d, lat + d},
		{lon - d, lat + d},
		{lon - d, lat - d},
	}})
}

func near(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func assertNear(t *testing.T, name string, got, want, eps float64) {
	t.Helper()
	if !near(got, want, eps) {
		t.Errorf("%s = %v, want %v (±%v)", name, got, want, eps)
	}
}
