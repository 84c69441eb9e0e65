package globe

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"github.com/paulmach/orb"
)

// limbStep is the largest angle between points inserted along the clip
// circle when a ring runs behind it.
var limbStep = radians(5)

// FillRings returns closed screen rings covering the visible area of every
// polygon ring in g, for an even-odd fill. Lines and points contribute
// nothing.
//
// Unlike Paths, a ring cut by the clip circle still comes back closed: its
// hidden vertices are moved onto the circle and joined along it. For Mercator
// a ring crossing the rotated antimeridian is unwrapped and repeated one map
// width to each side; a ring around a pole is closed along the latitude limit.
func (p *Projector) FillRings(g orb.Geometry) ([][]r2.Point, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil geometry", ErrMalformedGeometry)
	}
	if err := checkGeometry(g); err != nil {
		return nil, err
	}
	var out [][]r2.Point
	for _, part := range geometryParts(g) {
		if !part.closed || len(part.points) < 3 {
			continue
		}
		switch p.cfg.Type {
		case Mercator:
			out = append(out, p.mercatorFill(part.points)...)
		default:
			if r := p.azimuthalFill(part.points); len(r) >= 3 {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

// azimuthalFill projects ring, moving hidden vertices onto the clip circle in
// the direction they lie from the view centre.
func (p *Projector) azimuthalFill(ring []orb.Point) []r2.Point {
	radius := 1.0
	if p.clip {
		radius = math.Sin(math.Min(math.Acos(p.clipCos), math.Pi/2))
	}
	var (
		out       []r2.Point
		prevTheta float64
		prevLimb  bool
		visible   int
	)
	for _, ll := range ring {
		lambda, phi := p.rot.forward(radians(ll.Lon()), radians(ClampLatitude(ll.Lat())))
		if !p.clip || math.Cos(phi)*math.Cos(lambda) >= p.clipCos-1e-12 {
			pt, _ := p.Project(ll.Lon(), ll.Lat())
			out = append(out, pt)
			prevLimb = false
			visible++
			continue
		}
		x, y := math.Cos(phi)*math.Sin(lambda), math.Sin(phi)
		theta := prevTheta
		if math.Hypot(x, y) > 1e-12 {
			theta = math.Atan2(y, x)
		}
		if prevLimb {
			d := math.Remainder(theta-prevTheta, 2*math.Pi)
			steps := int(math.Ceil(math.Abs(d) / limbStep))
			for i := 1; i < steps; i++ {
				out = append(out, p.limbPoint(prevTheta+d*float64(i)/float64(steps), radius))
			}
			theta = prevTheta + d
		}
		out = append(out, p.limbPoint(theta, radius))
		prevTheta, prevLimb = theta, true
	}
	// a ring with every vertex hidden lies on the far side
	if visible == 0 {
		return nil
	}
	return out
}

func (p *Projector) limbPoint(theta, radius float64) r2.Point {
	return r2.Point{
		X: p.cfg.Translate.X + p.cfg.Scale*radius*math.Cos(theta),
		Y: p.cfg.Translate.Y - p.cfg.Scale*radius*math.Sin(theta),
	}
}

// mercatorFill unwraps ring across the rotated antimeridian and returns it
// with copies shifted one map width left and right.
func (p *Projector) mercatorFill(ring []orb.Point) [][]r2.Point {
	limit := radians(MaxMercatorLatitude)
	var (
		xs, ys  []float64
		prevLam float64
		offset  float64
		phiSum  float64
	)
	for _, ll := range ring {
		lambda, phi := p.rot.forward(radians(ll.Lon()), radians(ClampLatitude(ll.Lat())))
		if p.clip && math.Cos(phi)*math.Cos(lambda) < p.clipCos-1e-12 {
			continue
		}
		if len(xs) > 0 {
			switch d := lambda - prevLam; {
			case d > math.Pi:
				offset -= 2 * math.Pi
			case d < -math.Pi:
				offset += 2 * math.Pi
			}
		}
		prevLam = lambda
		phi = math.Max(-limit, math.Min(limit, phi))
		phiSum += phi
		xs = append(xs, lambda+offset)
		ys = append(ys, math.Log(math.Tan(math.Pi/4+phi/2)))
	}
	if len(xs) < 3 {
		return nil
	}
	// the ring went once around the pole; close it along the latitude limit
	if math.Abs(xs[len(xs)-1]-xs[0]) > math.Pi {
		pole := math.Log(math.Tan(math.Pi/4 + limit/2))
		if phiSum < 0 {
			pole = -pole
		}
		xs = append(xs, xs[len(xs)-1], xs[0])
		ys = append(ys, pole, pole)
	}
	out := make([][]r2.Point, 0, 3)
	for _, shift := range []float64{0, -2 * math.Pi, 2 * math.Pi} {
		r := make([]r2.Point, len(xs))
		for i := range xs {
			r[i] = r2.Point{
				X: p.cfg.Translate.X + p.cfg.Scale*(xs[i]+shift),
				Y: p.cfg.Translate.Y - p.cfg.Scale*ys[i],
			}
		}
		out = append(out, r)
	}
	return out
}
