package globe

import (
	"errors"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type engineFixture struct {
	e      *Engine
	clock  *fakeClock
	loop   *recordingLoop
	render *renderRecorder
}

func newEngineFixture(t *testing.T, opts Options) *engineFixture {
	t.Helper()
	f := &engineFixture{
		clock:  newFakeClock(),
		loop:   &recordingLoop{},
		render: &renderRecorder{},
	}
	opts.Clock = f.clock
	opts.Loop = f.loop
	opts.Render = f.render.render
	cfg := testConfig()
	cfg.Rotation = Rotation{Lambda: 0, Phi: -30}
	e, err := New(cfg, opts)
	if err != nil {
		t.Fatal(err)
	}
	f.e = e
	return f
}

// runFrames delivers scheduled frames until the engine stops asking, advancing
// the clock by step before each one.
func (f *engineFixture) runFrames(step time.Duration) int {
	n := 0
	for f.e.Animating() && n < 1000 {
		f.clock.Advance(step)
		f.e.Frame(f.loop.last())
		n++
	}
	return n
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Scale = -5
	if _, err := New(cfg, Options{}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("err = %v", err)
	}
}

func TestSelectCentresFeature(t *testing.T) {
	f := newEngineFixture(t, Options{})
	f.e.SetFeatures([]*geojson.Feature{box(0, 0, 1), box(-170, 10, 1)})

	if err := f.e.Select(1); err != nil {
		t.Fatal(err)
	}
	if f.e.Selection() != 1 {
		t.Errorf("selection = %d", f.e.Selection())
	}
	if len(f.loop.scheduled) != 1 {
		t.Fatalf("scheduled %d frames, want 1", len(f.loop.scheduled))
	}

	frames := f.runFrames(16 * time.Millisecond)
	if frames < 2 {
		t.Errorf("tween finished in %d frames", frames)
	}
	r := f.e.Rotation()
	assertNear(t, "lambda", r.Lambda, 170, 0.01)
	assertNear(t, "phi", r.Phi, -10, 0.01)

	last := f.render.calls[len(f.render.calls)-1]
	if last.cfg.Rotation != r || last.selected != 1 {
		t.Errorf("last render = %+v", last)
	}
}

func TestSelectOutOfRangeClears(t *testing.T) {
	f := newEngineFixture(t, Options{})
	f.e.SetFeatures([]*geojson.Feature{box(0, 0, 1)})
	f.e.Select(0)
	f.e.Settle()

	for _, i := range []int{-3, 1, 99} {
		if err := f.e.Select(i); err != nil {
			t.Errorf("Select(%d): %v", i, err)
		}
		if f.e.Selection() != NoSelection {
			t.Errorf("Select(%d) left selection %d", i, f.e.Selection())
		}
	}
}

func TestDragSequence(t *testing.T) {
	f := newEngineFixture(t, Options{Sensitivity: 0.5})

	f.e.PointerDown(0, 0)
	for i := 1; i <= 50; i++ {
		f.e.PointerMove(float64(i*10), 0)
		r := f.e.Rotation()
		if r.Lambda <= -180 || r.Lambda > 180 || r.Phi < -90 || r.Phi > 90 {
			t.Fatalf("rotation out of range after move %d: %+v", i, r)
		}
	}
	f.e.PointerUp()

	r := f.e.Rotation()
	assertNear(t, "lambda", r.Lambda, -110, 1e-9)
	if r.Phi != -30 {
		t.Errorf("phi = %v, want -30", r.Phi)
	}
	if f.e.Dragging() {
		t.Error("still dragging after up")
	}
}

func TestDragClampsLatitude(t *testing.T) {
	f := newEngineFixture(t, Options{Sensitivity: 1})
	f.e.PointerDown(0, 0)
	f.e.PointerMove(0, -500)
	if p := f.e.Rotation().Phi; p != 90 {
		t.Errorf("phi = %v, want 90", p)
	}
	f.e.PointerMove(0, 1000)
	if p := f.e.Rotation().Phi; p != -90 {
		t.Errorf("phi = %v, want -90", p)
	}
}

func TestCoalescedDrag(t *testing.T) {
	f := newEngineFixture(t, Options{Sensitivity: 0.5, CoalesceDrag: true})
	renders := len(f.render.calls)

	f.e.PointerDown(0, 0)
	f.e.PointerMove(10, 0)
	f.e.PointerMove(30, 4)
	f.e.PointerMove(40, 4)
	if len(f.render.calls) != renders {
		t.Error("coalesced moves rendered before the frame")
	}
	if len(f.loop.scheduled) != 1 {
		t.Errorf("scheduled %d frames, want 1", len(f.loop.scheduled))
	}

	f.e.Frame(f.loop.last())
	r := f.e.Rotation()
	if r.Lambda != 20 || r.Phi != -32 {
		t.Errorf("rotation = %+v, want lambda 20 phi -32", r)
	}
	if len(f.render.calls) != renders+1 {
		t.Errorf("rendered %d times, want once", len(f.render.calls)-renders)
	}

	// Moves still pending at release are applied, not dropped.
	f.e.PointerMove(50, 4)
	f.e.PointerUp()
	if got := f.e.Rotation().Lambda; got != 25 {
		t.Errorf("lambda after up = %v, want 25", got)
	}
}

func TestDragCancelsCentering(t *testing.T) {
	f := newEngineFixture(t, Options{})
	f.e.SetFeatures([]*geojson.Feature{box(90, 0, 1)})
	f.e.Select(0)
	staleGen := f.loop.last()

	f.clock.Advance(100 * time.Millisecond)
	f.e.Frame(staleGen)
	if !f.e.Animating() {
		t.Fatal("tween should still be running")
	}

	f.e.PointerDown(10, 10)
	if f.e.Animating() {
		t.Error("pointer down did not cancel the tween")
	}
	f.e.PointerMove(14, 10)
	afterDrag := f.e.Rotation()

	f.clock.Advance(100 * time.Millisecond)
	f.e.Frame(staleGen)
	if f.e.Rotation() != afterDrag {
		t.Errorf("stale frame moved the view: %+v -> %+v", afterDrag, f.e.Rotation())
	}
}

func TestNewSelectionSupersedesTween(t *testing.T) {
	f := newEngineFixture(t, Options{})
	f.e.SetFeatures([]*geojson.Feature{box(90, 0, 1), box(-40, 20, 1)})
	f.e.Select(0)
	first := f.e.Generation()
	f.clock.Advance(200 * time.Millisecond)
	f.e.Frame(f.loop.last())

	f.e.Select(1)
	if f.e.Generation() == first {
		t.Fatal("second selection reused the generation")
	}
	f.runFrames(50 * time.Millisecond)
	r := f.e.Rotation()
	assertNear(t, "lambda", r.Lambda, 40, 0.01)
	assertNear(t, "phi", r.Phi, -20, 0.01)
}

func TestSwitchProjectionPreservesState(t *testing.T) {
	f := newEngineFixture(t, Options{})
	f.e.SetFeatures([]*geojson.Feature{box(10, 10, 1), box(50, -20, 1)})
	f.e.Select(1)
	f.e.Settle()
	before := f.e.Rotation()
	renders := len(f.render.calls)

	if err := f.e.SetProjectionType(Mercator); err != nil {
		t.Fatal(err)
	}
	if f.e.Rotation() != before || f.e.Selection() != 1 {
		t.Errorf("state changed: %+v sel %d", f.e.Rotation(), f.e.Selection())
	}
	if f.e.Config().Type != Mercator {
		t.Errorf("type = %v", f.e.Config().Type)
	}
	if len(f.render.calls) != renders+1 {
		t.Errorf("rendered %d times, want once", len(f.render.calls)-renders)
	}
}

func TestConfigureRejectsAndKeepsPrevious(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	f := newEngineFixture(t, Options{Logger: zap.New(core)})
	before, _ := f.e.Projector().Project(40, 20)

	if err := f.e.SetScale(-5); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("err = %v", err)
	}
	if f.e.Scale() != 100 {
		t.Errorf("scale = %v, want 100", f.e.Scale())
	}
	after, _ := f.e.Projector().Project(40, 20)
	if before != after {
		t.Errorf("projection changed after rejected config: %v -> %v", before, after)
	}
	if logs.FilterMessage("projection config rejected").Len() != 1 {
		t.Error("expected the rejection to be logged")
	}
}

func TestConfigSetters(t *testing.T) {
	f := newEngineFixture(t, Options{})

	if err := f.e.SetSize(600, 300); err != nil {
		t.Fatal(err)
	}
	if c := f.e.Config(); c.Translate.X != 300 || c.Translate.Y != 150 {
		t.Errorf("translate = %v", c.Translate)
	}
	if err := f.e.SetTilt(12); err != nil {
		t.Fatal(err)
	}
	if f.e.Rotation().Gamma != 12 || f.e.Tilt() != 12 {
		t.Errorf("tilt not applied: %+v", f.e.Rotation())
	}
	if err := f.e.SetZoomLevel(180); err != nil {
		t.Fatal(err)
	}
	if f.e.Scale() != 180 || f.e.ZoomLevel() != 180 {
		t.Errorf("zoom level not applied: scale %v", f.e.Scale())
	}
	if err := f.e.SetZoomLevel(0); err == nil {
		t.Error("zero zoom level accepted")
	}
	if err := f.e.SetClipAngle(60); err != nil {
		t.Fatal(err)
	}
	if err := f.e.SetSensitivity(0.1); err != nil || f.e.Sensitivity() != 0.1 {
		t.Errorf("sensitivity = %v, %v", f.e.Sensitivity(), err)
	}
	if err := f.e.SetSensitivity(0); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("zero sensitivity: err = %v", err)
	}
	if f.e.Sensitivity() != 0.1 {
		t.Errorf("rejected sensitivity changed value to %v", f.e.Sensitivity())
	}
}

func TestZeroSensitivityOptionUsesDefault(t *testing.T) {
	f := newEngineFixture(t, Options{})
	if f.e.Sensitivity() != DefaultSensitivity {
		t.Errorf("sensitivity = %v, want %v", f.e.Sensitivity(), DefaultSensitivity)
	}
}

func TestSelectionFailureStopsCentering(t *testing.T) {
	// the two endpoints are antipodal, so the line has no centroid
	undefined := geojson.NewFeature(orb.LineString{{0, 0}, {180, 0}})

	for _, tt := range []struct {
		name    string
		index   int
		wantErr bool
		wantSel int
	}{
		{"no centroid", 1, true, 1},
		{"out of range", 5, false, NoSelection},
	} {
		t.Run(tt.name, func(t *testing.T) {
			f := newEngineFixture(t, Options{})
			f.e.SetFeatures([]*geojson.Feature{box(90, 0, 1), undefined})
			if err := f.e.Select(0); err != nil {
				t.Fatal(err)
			}
			f.clock.Advance(100 * time.Millisecond)
			f.e.Frame(f.loop.last())
			before := f.e.Rotation()

			err := f.e.Select(tt.index)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Select(%d) err = %v", tt.index, err)
			}
			if f.e.Selection() != tt.wantSel {
				t.Errorf("selection = %d, want %d", f.e.Selection(), tt.wantSel)
			}
			if f.e.Animating() {
				t.Fatal("centering on feature 0 still running")
			}
			f.clock.Advance(2 * time.Second)
			f.e.Frame(f.loop.last())
			if f.e.Rotation() != before {
				t.Errorf("rotation moved from %+v to %+v", before, f.e.Rotation())
			}
		})
	}
}

func TestAnimateZoomOnSelect(t *testing.T) {
	f := newEngineFixture(t, Options{ZoomLevel: 250, AnimateZoom: true})
	f.e.SetFeatures([]*geojson.Feature{box(0, 0, 1)})
	f.e.Select(0)
	f.runFrames(100 * time.Millisecond)
	if f.e.Scale() != 250 {
		t.Errorf("scale = %v, want 250", f.e.Scale())
	}
}

func TestProjectFeaturesSkipsMalformed(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	f := newEngineFixture(t, Options{Logger: zap.New(core)})
	diags := f.e.SetFeatures([]*geojson.Feature{
		box(0, 0, 5),
		geojson.NewFeature(orb.Polygon{}),
		box(10, 10, 5),
	})
	if len(diags) != 1 || !errors.Is(diags[0], ErrMalformedGeometry) {
		t.Fatalf("diags = %v", diags)
	}
	if logs.FilterMessage("skipping feature").Len() != 1 {
		t.Error("expected one logged diagnostic")
	}

	f.e.Select(2)
	out, errs := f.e.ProjectFeatures()
	if len(out) != 2 || len(errs) != 1 {
		t.Fatalf("projected %d features with %d errors", len(out), len(errs))
	}
	if out[0].Index != 0 || out[1].Index != 2 || !out[1].Selected || out[0].Selected {
		t.Errorf("unexpected projection: %+v", out)
	}
}

func TestSetFeaturesResetsSelection(t *testing.T) {
	f := newEngineFixture(t, Options{})
	f.e.SetFeatures([]*geojson.Feature{box(0, 0, 1), box(10, 0, 1)})
	f.e.Select(1)
	f.e.SetFeatures([]*geojson.Feature{box(0, 0, 1)})
	if f.e.Selection() != NoSelection {
		t.Errorf("selection = %d", f.e.Selection())
	}
	if f.e.Animating() {
		t.Error("tween for the old dataset still running")
	}
}

func TestDispose(t *testing.T) {
	f := newEngineFixture(t, Options{})
	f.e.SetFeatures([]*geojson.Feature{box(60, 0, 1)})
	f.e.Select(0)
	gen := f.loop.last()

	f.e.Dispose()
	f.e.Dispose()
	if f.loop.stopped != 1 {
		t.Errorf("loop stopped %d times, want 1", f.loop.stopped)
	}
	renders := len(f.render.calls)
	scheduled := len(f.loop.scheduled)

	f.clock.Advance(time.Second)
	f.e.Frame(gen)
	f.e.PointerDown(0, 0)
	f.e.PointerMove(100, 0)
	if err := f.e.Select(0); !errors.Is(err, ErrDisposed) {
		t.Errorf("Select after dispose: %v", err)
	}
	if len(f.render.calls) != renders || len(f.loop.scheduled) != scheduled {
		t.Error("disposed engine kept rendering or scheduling")
	}
}
