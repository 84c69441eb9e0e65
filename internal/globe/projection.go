package globe

import (
	"fmt"
	"math"
	"strings"

	"github.com/golang/geo/r2"
	"github.com/paulmach/orb"
)

// ProjectionType selects the raw projection.
type ProjectionType int

const (
	Orthographic ProjectionType = iota
	Mercator
)

// MaxMercatorLatitude is where Mercator stops; the poles map to infinity.
const MaxMercatorLatitude = 85.05112878

func (t ProjectionType) String() string {
	switch t {
	case Orthographic:
		return "orthographic"
	case Mercator:
		return "mercator"
	default:
		return fmt.Sprintf("ProjectionType(%d)", int(t))
	}
}

// ParseProjectionType accepts "orthographic" or "mercator" in any case.
func ParseProjectionType(s string) (ProjectionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "orthographic", "ortho", "globe":
		return Orthographic, nil
	case "mercator":
		return Mercator, nil
	}
	return 0, fmt.Errorf("%w: unknown projection %q", ErrInvalidConfig, s)
}

// Config is everything a Projector is built from.
type Config struct {
	Type      ProjectionType
	Scale     float64
	Translate r2.Point
	Width     int
	Height    int
	Rotation  Rotation
	// ClipAngle is the visible radius in degrees around the view centre.
	// Zero selects the default: 90 for Orthographic, no clipping for Mercator.
	ClipAngle float64
}

// DefaultConfig returns an orthographic view that fits a w x h surface.
func DefaultConfig(w, h int) Config {
	return Config{
		Type:      Orthographic,
		Scale:     0.45 * float64(min(w, h)),
		Translate: r2.Point{X: float64(w) / 2, Y: float64(h) / 2},
		Width:     w,
		Height:    h,
		Rotation:  Rotation{Lambda: 0, Phi: -30},
	}
}

// Validate reports why c cannot be used. Errors wrap ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.Type != Orthographic && c.Type != Mercator:
		return fmt.Errorf("%w: unknown projection type %d", ErrInvalidConfig, int(c.Type))
	case !isFinite(c.Scale) || c.Scale <= 0:
		return fmt.Errorf("%w: scale must be positive, got %g", ErrInvalidConfig, c.Scale)
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: size must be positive, got %dx%d", ErrInvalidConfig, c.Width, c.Height)
	case !isFinite(c.Translate.X) || !isFinite(c.Translate.Y) || c.Translate.X <= 0 || c.Translate.Y <= 0:
		return fmt.Errorf("%w: translate must be positive, got (%g, %g)", ErrInvalidConfig, c.Translate.X, c.Translate.Y)
	case !isFinite(c.ClipAngle) || c.ClipAngle < 0 || c.ClipAngle > 180:
		return fmt.Errorf("%w: clip angle must be within [0, 180], got %g", ErrInvalidConfig, c.ClipAngle)
	case !c.Rotation.IsFinite():
		return fmt.Errorf("%w: rotation must be finite", ErrInvalidConfig)
	}
	return nil
}

func (c Config) clipAngle() float64 {
	if c.ClipAngle > 0 {
		return c.ClipAngle
	}
	if c.Type == Orthographic {
		return 90
	}
	return 0
}

// Projector maps geographic coordinates to screen coordinates for one Config.
// It is immutable; any config change builds a new one.
type Projector struct {
	cfg     Config
	rot     rotator
	clip    bool
	clipCos float64
}

// NewProjector validates cfg and builds a projector for it.
func NewProjector(cfg Config) (*Projector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Projector{cfg: cfg, rot: newRotator(cfg.Rotation)}
	if a := cfg.clipAngle(); a > 0 && a < 180 {
		p.clip = true
		p.clipCos = math.Cos(radians(a))
	}
	return p, nil
}

// Config returns the config this projector was built from.
func (p *Projector) Config() Config { return p.cfg }

// Project maps lon/lat in degrees to a screen point. ok is false when the
// point falls outside the clip circle.
func (p *Projector) Project(lon, lat float64) (pt r2.Point, ok bool) {
	pt, _, ok = p.project(lon, lat)
	return pt, ok
}

// project also returns the rotated longitude in radians, used to detect
// antimeridian jumps.
func (p *Projector) project(lon, lat float64) (r2.Point, float64, bool) {
	if !isFinite(lon) || !isFinite(lat) {
		return r2.Point{}, 0, false
	}
	lambda, phi := p.rot.forward(radians(lon), radians(ClampLatitude(lat)))
	if p.clip && math.Cos(phi)*math.Cos(lambda) < p.clipCos-1e-12 {
		return r2.Point{}, lambda, false
	}
	var x, y float64
	switch p.cfg.Type {
	case Mercator:
		limit := radians(MaxMercatorLatitude)
		phi = math.Max(-limit, math.Min(limit, phi))
		x = lambda
		y = math.Log(math.Tan(math.Pi/4 + phi/2))
	default:
		x = math.Cos(phi) * math.Sin(lambda)
		y = math.Sin(phi)
	}
	return r2.Point{
		X: p.cfg.Translate.X + p.cfg.Scale*x,
		Y: p.cfg.Translate.Y - p.cfg.Scale*y,
	}, lambda, true
}

// Invert maps a screen point back to lon/lat in degrees. ok is false when the
// point is off the projected sphere or outside the clip circle.
func (p *Projector) Invert(pt r2.Point) (lon, lat float64, ok bool) {
	x := (pt.X - p.cfg.Translate.X) / p.cfg.Scale
	y := (p.cfg.Translate.Y - pt.Y) / p.cfg.Scale
	var lambda, phi float64
	switch p.cfg.Type {
	case Mercator:
		if math.Abs(x) > math.Pi {
			return 0, 0, false
		}
		lambda = x
		phi = 2*math.Atan(math.Exp(y)) - math.Pi/2
	default:
		rho := math.Hypot(x, y)
		if rho > 1 {
			return 0, 0, false
		}
		c := math.Asin(rho)
		lambda = math.Atan2(x*math.Sin(c), rho*math.Cos(c))
		if rho > 0 {
			phi = math.Asin(y * math.Sin(c) / rho)
		}
	}
	if p.clip && math.Cos(phi)*math.Cos(lambda) < p.clipCos-1e-12 {
		return 0, 0, false
	}
	l, f := p.rot.invert(lambda, phi)
	return NormalizeLongitude(degrees(l)), degrees(f), true
}

// Path is one drawable screen polyline.
type Path struct {
	Points []r2.Point
	Closed bool
}

// Paths projects every ring, line and point of g. A part is split where it
// leaves the visible area or, for Mercator, where it jumps across the
// rotated antimeridian. Unsplit rings come back Closed.
func (p *Projector) Paths(g orb.Geometry) ([]Path, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil geometry", ErrMalformedGeometry)
	}
	if err := checkGeometry(g); err != nil {
		return nil, err
	}
	var out []Path
	for _, part := range geometryParts(g) {
		out = append(out, p.partPaths(part)...)
	}
	return out, nil
}

func (p *Projector) partPaths(part geomPart) []Path {
	if len(part.points) == 1 {
		if pt, ok := p.Project(part.points[0].Lon(), part.points[0].Lat()); ok {
			return []Path{{Points: []r2.Point{pt}}}
		}
		return nil
	}
	var (
		out     []Path
		cur     []r2.Point
		prevLam float64
		split   bool
	)
	flush := func() {
		if len(cur) >= 2 {
			out = append(out, Path{Points: cur})
		}
		cur = nil
	}
	for _, ll := range part.points {
		pt, lam, ok := p.project(ll.Lon(), ll.Lat())
		if !ok {
			split = true
			flush()
			continue
		}
		if len(cur) > 0 && p.cfg.Type == Mercator && math.Abs(lam-prevLam) > math.Pi {
			split = true
			flush()
		}
		cur = append(cur, pt)
		prevLam = lam
	}
	flush()
	if part.closed && !split && len(out) == 1 && len(out[0].Points) >= 3 {
		out[0].Closed = true
	}
	return out
}

type geomPart struct {
	points []orb.Point
	closed bool
}

func geometryParts(g orb.Geometry) []geomPart {
	var parts []geomPart
	switch g := g.(type) {
	case orb.Point:
		parts = append(parts, geomPart{points: []orb.Point{g}})
	case orb.MultiPoint:
		for _, pt := range g {
			parts = append(parts, geomPart{points: []orb.Point{pt}})
		}
	case orb.LineString:
		parts = append(parts, geomPart{points: g})
	case orb.MultiLineString:
		for _, ls := range g {
			parts = append(parts, geomPart{points: ls})
		}
	case orb.Ring:
		parts = append(parts, geomPart{points: g, closed: true})
	case orb.Polygon:
		for _, r := range g {
			parts = append(parts, geomPart{points: r, closed: true})
		}
	case orb.MultiPolygon:
		for _, poly := range g {
			parts = append(parts, geometryParts(poly)...)
		}
	case orb.Bound:
		parts = append(parts, geometryParts(g.ToPolygon())...)
	case orb.Collection:
		for _, c := range g {
			parts = append(parts, geometryParts(c)...)
		}
	}
	return parts
}

// rotator applies a three-axis rotation to spherical coordinates in radians:
// first yaw (added to longitude), then pitch and roll about the view axes.
type rotator struct {
	dLambda   float64
	cosDPhi   float64
	sinDPhi   float64
	cosDGamma float64
	sinDGamma float64
}

func newRotator(r Rotation) rotator {
	return rotator{
		dLambda:   radians(r.Lambda),
		cosDPhi:   math.Cos(radians(r.Phi)),
		sinDPhi:   math.Sin(radians(r.Phi)),
		cosDGamma: math.Cos(radians(r.Gamma)),
		sinDGamma: math.Sin(radians(r.Gamma)),
	}
}

func (r rotator) forward(lambda, phi float64) (float64, float64) {
	lambda = wrapRadians(lambda + r.dLambda)
	cosPhi := math.Cos(phi)
	x := math.Cos(lambda) * cosPhi
	y := math.Sin(lambda) * cosPhi
	z := math.Sin(phi)
	k := z*r.cosDPhi + x*r.sinDPhi
	return math.Atan2(y*r.cosDGamma-k*r.sinDGamma, x*r.cosDPhi-z*r.sinDPhi),
		asinClamped(k*r.cosDGamma + y*r.sinDGamma)
}

func (r rotator) invert(lambda, phi float64) (float64, float64) {
	cosPhi := math.Cos(phi)
	x := math.Cos(lambda) * cosPhi
	y := math.Sin(lambda) * cosPhi
	z := math.Sin(phi)
	k := z*r.cosDGamma - y*r.sinDGamma
	l := math.Atan2(y*r.cosDGamma+z*r.sinDGamma, x*r.cosDPhi+k*r.sinDPhi)
	return wrapRadians(l - r.dLambda), asinClamped(k*r.cosDPhi - x*r.sinDPhi)
}

func wrapRadians(a float64) float64 {
	return math.Remainder(a, 2*math.Pi)
}

func asinClamped(v float64) float64 {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return math.Asin(v)
}
