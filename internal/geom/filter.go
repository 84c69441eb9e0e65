package geom

import (
	"fmt"
	"strconv"
	"strings"

	"geoglobe/internal/globe"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// FilterByCentroid keeps the features whose centroid falls inside bound.
// Features without a usable centroid are dropped.
func FilterByCentroid(fs []*geojson.Feature, bound orb.Bound) []*geojson.Feature {
	out := make([]*geojson.Feature, 0, len(fs))
	for _, f := range fs {
		lon, lat, err := globe.Centroid(f)
		if err != nil {
			continue
		}
		if bound.Contains(orb.Point{lon, lat}) {
			out = append(out, f)
		}
	}
	return out
}

// ParseBound parses "minLon,minLat,maxLon,maxLat".
func ParseBound(s string) (orb.Bound, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return orb.Bound{}, fmt.Errorf("region %q: want minLon,minLat,maxLon,maxLat", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("region %q: %w", s, err)
		}
		v[i] = f
	}
	if v[0] > v[2] || v[1] > v[3] {
		return orb.Bound{}, fmt.Errorf("region %q: min exceeds max", s)
	}
	return orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}, nil
}
