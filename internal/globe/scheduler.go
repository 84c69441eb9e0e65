package globe

import (
	"fmt"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"go.uber.org/zap"
)

// Clock supplies monotonic time readings.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now, which carries a monotonic component.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// TweenHandle identifies one started tween.
type TweenHandle struct {
	gen uint64
}

// Generation returns the generation the tween was started with.
func (h TweenHandle) Generation() uint64 { return h.gen }

type tween struct {
	gen        uint64
	from, to   []float64
	start      time.Time
	duration   time.Duration
	progress   *gween.Tween
	onFrame    func([]float64)
	onComplete func()
}

// Scheduler runs at most one time-based tween at a time.
//
// Frames are delivered by the host through Step with the generation they were
// scheduled for. Starting, cancelling or disposing bumps the generation, so a
// frame that was already queued for an older tween does nothing when it
// arrives. Nothing is ever removed from the host's queue.
type Scheduler struct {
	clock    Clock
	log      *zap.Logger
	gen      uint64
	cur      *tween
	disposed bool
}

// NewScheduler returns a scheduler reading clock. A nil clock uses SystemClock
// and a nil logger discards output.
func NewScheduler(clock Clock, log *zap.Logger) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{clock: clock, log: log}
}

// Start begins a tween from -> to over d and supersedes any running tween.
// fn defaults to ease.Linear. onFrame receives a fresh slice per frame.
//
// When from equals to, or d is not positive, the tween completes immediately:
// onFrame is called once with to, then onComplete.
func (s *Scheduler) Start(from, to []float64, d time.Duration, fn ease.TweenFunc, onFrame func([]float64), onComplete func()) (TweenHandle, error) {
	if s.disposed {
		return TweenHandle{}, ErrDisposed
	}
	if err := checkTweenValues(from, to); err != nil {
		s.log.Error("tween rejected", zap.Error(err), zap.Float64s("from", from), zap.Float64s("to", to))
		return TweenHandle{}, err
	}
	if fn == nil {
		fn = ease.Linear
	}
	s.gen++
	s.cur = nil
	tw := &tween{
		gen:        s.gen,
		from:       append([]float64(nil), from...),
		to:         append([]float64(nil), to...),
		start:      s.clock.Now(),
		duration:   d,
		onFrame:    onFrame,
		onComplete: onComplete,
	}
	h := TweenHandle{gen: tw.gen}
	if d <= 0 || equalValues(from, to) {
		s.complete(tw)
		return h, nil
	}
	tw.progress = gween.New(0, 1, float32(d.Seconds()), fn)
	s.cur = tw
	s.log.Debug("tween started", zap.Uint64("gen", tw.gen), zap.Duration("duration", d))
	return h, nil
}

// Step renders the frame for gen at the current clock time. It returns true
// while more frames are wanted. A stale generation is a no-op.
func (s *Scheduler) Step(gen uint64) bool {
	if s.disposed || s.cur == nil || s.cur.gen != gen {
		return false
	}
	tw := s.cur
	elapsed := s.clock.Now().Sub(tw.start)
	if elapsed >= tw.duration {
		s.complete(tw)
		return false
	}
	if elapsed < 0 {
		elapsed = 0
	}
	eased, _ := tw.progress.Set(float32(elapsed.Seconds()))
	vals := make([]float64, len(tw.from))
	for i := range vals {
		vals[i] = lerp(tw.from[i], tw.to[i], float64(eased))
	}
	if tw.onFrame != nil {
		tw.onFrame(vals)
	}
	// onFrame may have started or cancelled a tween.
	return !s.disposed && s.cur == tw
}

// Finish jumps the current tween to its end.
func (s *Scheduler) Finish() {
	if s.cur != nil && !s.disposed {
		s.complete(s.cur)
	}
}

// Cancel stops the tween identified by h if it is still current.
func (s *Scheduler) Cancel(h TweenHandle) {
	if s.cur != nil && s.cur.gen == h.gen {
		s.cancelCurrent()
	}
}

func (s *Scheduler) cancelCurrent() {
	if s.cur == nil {
		return
	}
	s.log.Debug("tween cancelled", zap.Uint64("gen", s.cur.gen))
	s.cur = nil
	s.gen++
}

// Dispose invalidates every pending generation. Later calls to Start fail
// with ErrDisposed. It is safe to call more than once.
func (s *Scheduler) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	s.cur = nil
	s.gen++
}

// Active reports whether a tween is running.
func (s *Scheduler) Active() bool { return s.cur != nil }

// Generation returns the current generation.
func (s *Scheduler) Generation() uint64 { return s.gen }

func (s *Scheduler) complete(tw *tween) {
	if s.cur == tw {
		s.cur = nil
	}
	if tw.onFrame != nil {
		tw.onFrame(append([]float64(nil), tw.to...))
	}
	if tw.onComplete != nil {
		tw.onComplete()
	}
}

func checkTweenValues(from, to []float64) error {
	if len(from) != len(to) {
		return fmt.Errorf("%w: %d start values, %d targets", ErrNonFiniteTween, len(from), len(to))
	}
	for i := range from {
		if !isFinite(from[i]) || !isFinite(to[i]) {
			return fmt.Errorf("%w: component %d is %g -> %g", ErrNonFiniteTween, i, from[i], to[i])
		}
	}
	return nil
}

func equalValues(a, b []float64) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
