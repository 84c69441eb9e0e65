package globe

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Centroid returns the representative point of a feature in degrees.
//
// Polygons use the area-weighted spherical centroid of their outer rings.
// Points, lines and degenerate rings fall back to the mean of the vertex unit
// vectors. Both sums run on the unit sphere, so a feature straddling the
// antimeridian resolves next to it rather than on the far side of the globe.
func Centroid(f *geojson.Feature) (lon, lat float64, err error) {
	if f == nil || f.Geometry == nil {
		return 0, 0, fmt.Errorf("%w: feature has no geometry", ErrMalformedGeometry)
	}
	if err := checkGeometry(f.Geometry); err != nil {
		return 0, 0, err
	}
	var weighted, mean r3.Vector
	accumulateCentroid(f.Geometry, &weighted, &mean)

	v := weighted
	if v.Norm() < 1e-15 {
		v = mean
	}
	if v.Norm() < 1e-15 {
		return 0, 0, fmt.Errorf("%w: centroid is undefined", ErrMalformedGeometry)
	}
	ll := s2.LatLngFromPoint(s2.Point{Vector: v.Normalize()})
	return NormalizeLongitude(ll.Lng.Degrees()), ll.Lat.Degrees(), nil
}

func accumulateCentroid(g orb.Geometry, weighted, mean *r3.Vector) {
	switch g := g.(type) {
	case orb.Point:
		*mean = mean.Add(unitVector(g))
	case orb.MultiPoint:
		for _, p := range g {
			*mean = mean.Add(unitVector(p))
		}
	case orb.LineString:
		for _, p := range g {
			*mean = mean.Add(unitVector(p))
		}
	case orb.MultiLineString:
		for _, ls := range g {
			accumulateCentroid(ls, weighted, mean)
		}
	case orb.Ring:
		w, m := ringCentroid(g)
		*weighted = weighted.Add(w)
		*mean = mean.Add(m)
	case orb.Polygon:
		if len(g) > 0 {
			accumulateCentroid(g[0], weighted, mean)
		}
	case orb.MultiPolygon:
		for _, p := range g {
			accumulateCentroid(p, weighted, mean)
		}
	case orb.Bound:
		accumulateCentroid(g.ToPolygon(), weighted, mean)
	case orb.Collection:
		for _, c := range g {
			accumulateCentroid(c, weighted, mean)
		}
	}
}

// ringCentroid fans the ring from its first vertex and sums the signed true
// centroids. The result is flipped when it points away from the vertices, so
// ring winding does not matter.
func ringCentroid(ring orb.Ring) (weighted, mean r3.Vector) {
	pts := make([]s2.Point, 0, len(ring))
	for i, p := range ring {
		if i == len(ring)-1 && len(ring) > 1 && p == ring[0] {
			break
		}
		v := unitVector(p)
		pts = append(pts, s2.Point{Vector: v})
		mean = mean.Add(v)
	}
	for i := 1; i+1 < len(pts); i++ {
		weighted = weighted.Add(s2.TrueCentroid(pts[0], pts[i], pts[i+1]).Vector)
	}
	if weighted.Dot(mean) < 0 {
		weighted = weighted.Mul(-1)
	}
	return weighted, mean
}

func unitVector(p orb.Point) r3.Vector {
	return s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat(), p.Lon())).Vector
}

// checkGeometry rejects empty geometry and coordinates outside lon/lat range.
func checkGeometry(g orb.Geometry) error {
	n := 0
	var bad error
	visitPoints(g, func(p orb.Point) {
		n++
		if bad != nil {
			return
		}
		if !isFinite(p.Lon()) || !isFinite(p.Lat()) ||
			p.Lon() < -180 || p.Lon() > 180 || p.Lat() < -90 || p.Lat() > 90 {
			bad = fmt.Errorf("%w: coordinate out of range (%g, %g)", ErrMalformedGeometry, p.Lon(), p.Lat())
		}
	})
	if bad != nil {
		return bad
	}
	if n == 0 {
		return fmt.Errorf("%w: %s has no coordinates", ErrMalformedGeometry, g.GeoJSONType())
	}
	return nil
}

func visitPoints(g orb.Geometry, fn func(orb.Point)) {
	switch g := g.(type) {
	case orb.Point:
		fn(g)
	case orb.MultiPoint:
		for _, p := range g {
			fn(p)
		}
	case orb.LineString:
		for _, p := range g {
			fn(p)
		}
	case orb.MultiLineString:
		for _, ls := range g {
			visitPoints(ls, fn)
		}
	case orb.Ring:
		for _, p := range g {
			fn(p)
		}
	case orb.Polygon:
		for _, r := range g {
			visitPoints(r, fn)
		}
	case orb.MultiPolygon:
		for _, p := range g {
			visitPoints(p, fn)
		}
	case orb.Bound:
		visitPoints(g.ToPolygon(), fn)
	case orb.Collection:
		for _, c := range g {
			visitPoints(c, fn)
		}
	}
}
