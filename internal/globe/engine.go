package globe

import (
	"fmt"
	"time"

	"github.com/golang/geo/r2"
	"github.com/paulmach/orb/geojson"
	"github.com/tanema/gween/ease"
	"go.uber.org/zap"
)

// NoSelection is the selection index when no feature is selected.
const NoSelection = -1

// DefaultSensitivity is degrees of rotation per pixel of drag.
const DefaultSensitivity = 0.25

// FrameLoop is the host's frame source. Schedule asks for one Engine.Frame
// call carrying gen; Stop cancels whatever is outstanding.
type FrameLoop interface {
	Schedule(gen uint64)
	Stop()
}

// RenderFunc draws one frame. It is called synchronously after every state
// change, once the projector has been rebuilt.
type RenderFunc func(p *Projector, selected int)

// Options configure an Engine. Zero values select defaults.
type Options struct {
	Loop   FrameLoop
	Render RenderFunc
	Clock  Clock
	Logger *zap.Logger

	// Sensitivity is degrees per dragged pixel. Zero selects
	// DefaultSensitivity; SetSensitivity rejects zero.
	Sensitivity    float64
	ZoomLevel      float64
	Tilt           float64
	RotateDuration time.Duration
	ZoomDuration   time.Duration
	AnimateZoom    bool
	// CoalesceDrag sums pointer moves and applies them on the next frame
	// instead of once per move.
	CoalesceDrag bool
	Easing       ease.TweenFunc
}

// ProjectedFeature is one feature ready to draw.
type ProjectedFeature struct {
	Index    int
	Feature  *geojson.Feature
	Paths    []Path
	Selected bool
}

// Engine owns the view state of one map surface: projection config,
// rotation, selection, the drag session and the centering tween.
//
// It is not safe for concurrent use; the host drives it from one goroutine.
type Engine struct {
	cfg  Config
	proj *Projector

	drag     DragHandler
	sched    *Scheduler
	center   *Centering
	loop     FrameLoop
	render   RenderFunc
	log      *zap.Logger
	coalesce bool

	sensitivity float64
	zoomLevel   float64

	features []*geojson.Feature
	selected int

	frameQueued bool
	disposed    bool
}

type nopLoop struct{}

func (nopLoop) Schedule(uint64) {}
func (nopLoop) Stop() {}

// New builds an engine for cfg. It fails when cfg or opts are invalid.
func New(cfg Config, opts Options) (*Engine, error) {
	cfg.Rotation = cfg.Rotation.Normalize()
	proj, err := NewProjector(cfg)
	if err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Loop == nil {
		opts.Loop = nopLoop{}
	}
	if opts.Sensitivity == 0 {
		opts.Sensitivity = DefaultSensitivity
	}
	if !isFinite(opts.Sensitivity) {
		return nil, fmt.Errorf("%w: sensitivity must be finite", ErrInvalidConfig)
	}
	if !isFinite(opts.ZoomLevel) || opts.ZoomLevel < 0 {
		return nil, fmt.Errorf("%w: zoom level must be positive, got %g", ErrInvalidConfig, opts.ZoomLevel)
	}
	if !isFinite(opts.Tilt) {
		return nil, fmt.Errorf("%w: tilt must be finite", ErrInvalidConfig)
	}
	if opts.ZoomLevel == 0 {
		opts.ZoomLevel = cfg.Scale
	}

	e := &Engine{
		cfg:         cfg,
		proj:        proj,
		loop:        opts.Loop,
		render:      opts.Render,
		log:         opts.Logger,
		coalesce:    opts.CoalesceDrag,
		sensitivity: opts.Sensitivity,
		zoomLevel:   opts.ZoomLevel,
		selected:    NoSelection,
	}
	e.sched = NewScheduler(opts.Clock, opts.Logger)
	e.center = NewCentering(e.sched, opts.Logger, e.commit)
	e.center.Tilt = opts.Tilt
	e.center.ZoomLevel = opts.ZoomLevel
	e.center.AnimateZoom = opts.AnimateZoom
	e.center.Easing = opts.Easing
	if opts.RotateDuration > 0 {
		e.center.RotateDuration = opts.RotateDuration
	}
	if opts.ZoomDuration > 0 {
		e.center.ZoomDuration = opts.ZoomDuration
	}
	return e, nil
}

// Configure replaces the whole projection config. On error nothing changes.
func (e *Engine) Configure(cfg Config) (*Projector, error) {
	if e.disposed {
		return nil, ErrDisposed
	}
	cfg.Rotation = cfg.Rotation.Normalize()
	p, err := NewProjector(cfg)
	if err != nil {
		e.log.Warn("projection config rejected", zap.Error(err))
		return nil, err
	}
	e.cfg = cfg
	e.proj = p
	e.draw()
	return p, nil
}

func (e *Engine) SetProjectionType(t ProjectionType) error {
	next := e.cfg
	next.Type = t
	_, err := e.Configure(next)
	return err
}

func (e *Engine) SetScale(s float64) error {
	next := e.cfg
	next.Scale = s
	_, err := e.Configure(next)
	return err
}

func (e *Engine) SetTranslate(x, y float64) error {
	next := e.cfg
	next.Translate = r2.Point{X: x, Y: y}
	_, err := e.Configure(next)
	return err
}

// SetSize resizes the surface and recentres the translate.
func (e *Engine) SetSize(w, h int) error {
	next := e.cfg
	next.Width, next.Height = w, h
	next.Translate = r2.Point{X: float64(w) / 2, Y: float64(h) / 2}
	_, err := e.Configure(next)
	return err
}

func (e *Engine) SetClipAngle(deg float64) error {
	next := e.cfg
	next.ClipAngle = deg
	_, err := e.Configure(next)
	return err
}

// SetSensitivity sets degrees per dragged pixel. Negative values invert the
// drag direction; zero is rejected.
func (e *Engine) SetSensitivity(s float64) error {
	if e.disposed {
		return ErrDisposed
	}
	if !isFinite(s) || s == 0 {
		return fmt.Errorf("%w: sensitivity must be finite and non-zero, got %g", ErrInvalidConfig, s)
	}
	e.sensitivity = s
	e.draw()
	return nil
}

// SetZoomLevel sets the centering target scale and applies it now.
func (e *Engine) SetZoomLevel(z float64) error {
	if e.disposed {
		return ErrDisposed
	}
	if !isFinite(z) || z <= 0 {
		return fmt.Errorf("%w: zoom level must be positive, got %g", ErrInvalidConfig, z)
	}
	if err := e.SetScale(z); err != nil {
		return err
	}
	e.zoomLevel = z
	e.center.ZoomLevel = z
	return nil
}

// SetTilt sets the roll used when centring and applies it now.
func (e *Engine) SetTilt(deg float64) error {
	if e.disposed {
		return ErrDisposed
	}
	if !isFinite(deg) {
		return fmt.Errorf("%w: tilt must be finite", ErrInvalidConfig)
	}
	next := e.cfg
	next.Rotation.Gamma = deg
	if _, err := e.Configure(next); err != nil {
		return err
	}
	e.center.Tilt = deg
	return nil
}

func (e *Engine) SetAnimateZoom(on bool) {
	if e.disposed {
		return
	}
	e.center.AnimateZoom = on
	e.draw()
}

// PointerDown starts a drag and cancels any centering in flight.
func (e *Engine) PointerDown(x, y float64) {
	if e.disposed {
		return
	}
	if e.drag.Down(x, y) {
		e.cancelTween()
	}
}

// PointerMove rotates the view by the delta since the last pointer event.
// With CoalesceDrag the delta is held until the next frame.
func (e *Engine) PointerMove(x, y float64) {
	if e.disposed || !e.drag.Move(x, y) {
		return
	}
	e.cancelTween()
	if e.coalesce {
		e.requestFrame()
		return
	}
	e.flushDrag()
}

// PointerUp ends the drag. A delta still held for coalescing is applied.
func (e *Engine) PointerUp() {
	if e.disposed {
		return
	}
	e.drag.Up()
	e.flushDrag()
}

// Detach ends the drag when the pointer leaves the surface.
func (e *Engine) Detach() {
	if e.disposed {
		return
	}
	e.drag.Detach()
	e.flushDrag()
}

// Nudge rotates by a delta given in pixels, as if dragged.
func (e *Engine) Nudge(dx, dy float64) {
	if e.disposed {
		return
	}
	e.cancelTween()
	e.commitRotation(ApplyDrag(e.cfg.Rotation, dx, dy, e.sensitivity))
}

func (e *Engine) flushDrag() {
	if !e.drag.Pending() {
		return
	}
	dx, dy := e.drag.Take()
	e.commitRotation(ApplyDrag(e.cfg.Rotation, dx, dy, e.sensitivity))
}

// SetFeatures replaces the dataset and clears the selection. It returns one
// diagnostic per feature that cannot be drawn; those are logged once here.
func (e *Engine) SetFeatures(fs []*geojson.Feature) []error {
	if e.disposed {
		return []error{ErrDisposed}
	}
	e.cancelTween()
	e.features = fs
	e.selected = NoSelection
	var diags []error
	for i, f := range fs {
		if err := checkFeature(f); err != nil {
			err = fmt.Errorf("feature %d: %w", i, err)
			e.log.Warn("skipping feature", zap.Int("index", i), zap.Error(err))
			diags = append(diags, err)
		}
	}
	e.draw()
	return diags
}

// Features returns the current dataset.
func (e *Engine) Features() []*geojson.Feature { return e.features }

// Select marks feature i selected and starts centering it. An index outside
// the dataset clears the selection. Either way a running centering stops,
// including when feature i has no centroid.
func (e *Engine) Select(i int) error {
	if e.disposed {
		return ErrDisposed
	}
	e.cancelTween()
	if i < 0 || i >= len(e.features) {
		e.selected = NoSelection
		e.draw()
		return nil
	}
	e.selected = i
	err := e.center.OnSelectionChanged(i, e.features, e.cfg.Rotation, e.cfg.Scale)
	if e.sched.Active() {
		e.requestFrame()
	}
	e.draw()
	return err
}

// Frame is called by the host for a frame scheduled with gen.
func (e *Engine) Frame(gen uint64) {
	if e.disposed {
		return
	}
	e.frameQueued = false
	e.flushDrag()
	e.sched.Step(gen)
	if e.sched.Active() {
		e.requestFrame()
	}
}

// Settle jumps a running tween to its final frame.
func (e *Engine) Settle() {
	if e.disposed {
		return
	}
	e.flushDrag()
	e.sched.Finish()
}

// ProjectFeatures projects the dataset with the current projector.
func (e *Engine) ProjectFeatures() ([]ProjectedFeature, []error) {
	return e.proj.Features(e.features, e.selected)
}

// Dispose cancels animation, drops the drag session and stops the frame loop.
// It is safe to call more than once.
func (e *Engine) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	e.sched.Dispose()
	e.drag.Detach()
	e.drag.Take()
	e.loop.Stop()
	e.log.Debug("engine disposed")
}

func (e *Engine) Rotation() Rotation { return e.cfg.Rotation }
func (e *Engine) Scale() float64 { return e.cfg.Scale }
func (e *Engine) Selection() int { return e.selected }
func (e *Engine) Config() Config { return e.cfg }
func (e *Engine) Projector() *Projector { return e.proj }
func (e *Engine) Animating() bool { return e.sched.Active() }
func (e *Engine) Dragging() bool { return e.drag.State() == Dragging }
func (e *Engine) Sensitivity() float64 { return e.sensitivity }
func (e *Engine) ZoomLevel() float64 { return e.zoomLevel }
func (e *Engine) Tilt() float64 { return e.center.Tilt }
func (e *Engine) AnimateZoom() bool { return e.center.AnimateZoom }
func (e *Engine) Disposed() bool { return e.disposed }
func (e *Engine) Generation() uint64 { return e.sched.Generation() }

func (e *Engine) cancelTween() {
	e.sched.cancelCurrent()
}

func (e *Engine) requestFrame() {
	if e.frameQueued || e.disposed {
		return
	}
	e.frameQueued = true
	e.loop.Schedule(e.sched.Generation())
}

func (e *Engine) commitRotation(r Rotation) {
	e.commit(r, e.cfg.Scale)
}

// commit applies a rotation and scale coming from a drag or a tween frame.
func (e *Engine) commit(r Rotation, scale float64) {
	if e.disposed {
		return
	}
	next := e.cfg
	next.Rotation = Rotation{
		Lambda: NormalizeLongitude(r.Lambda),
		Phi:    ClampLatitude(r.Phi),
		Gamma:  r.Gamma,
	}
	next.Scale = scale
	p, err := NewProjector(next)
	if err != nil {
		e.log.Warn("frame rejected", zap.Error(err))
		return
	}
	e.cfg = next
	e.proj = p
	e.draw()
}

func (e *Engine) draw() {
	if e.render != nil && !e.disposed {
		e.render(e.proj, e.selected)
	}
}

// Features projects fs. Features that cannot be projected are skipped and
// reported; the rest keep their index into fs.
func (p *Projector) Features(fs []*geojson.Feature, selected int) ([]ProjectedFeature, []error) {
	out := make([]ProjectedFeature, 0, len(fs))
	var diags []error
	for i, f := range fs {
		if err := checkFeature(f); err != nil {
			diags = append(diags, fmt.Errorf("feature %d: %w", i, err))
			continue
		}
		paths, err := p.Paths(f.Geometry)
		if err != nil {
			diags = append(diags, fmt.Errorf("feature %d: %w", i, err))
			continue
		}
		out = append(out, ProjectedFeature{
			Index:    i,
			Feature:  f,
			Paths:    paths,
			Selected: i == selected,
		})
	}
	return out, diags
}

func checkFeature(f *geojson.Feature) error {
	if f == nil || f.Geometry == nil {
		return fmt.Errorf("%w: feature has no geometry", ErrMalformedGeometry)
	}
	return checkGeometry(f.Geometry)
}
