package geom

import (
	"errors"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ErrNoFeatures is returned when a source parses but holds nothing drawable.
var ErrNoFeatures = errors.New("no features found")

// Data is a loaded feature collection and its lon/lat extent.
type Data struct {
	Features []*geojson.Feature
	Bound    orb.Bound
}

func newData(fs []*geojson.Feature) (Data, error) {
	if len(fs) == 0 {
		return Data{}, ErrNoFeatures
	}
	return Data{Features: fs, Bound: Bounds(fs)}, nil
}

// Bounds returns the union of the feature bounds.
func Bounds(fs []*geojson.Feature) orb.Bound {
	var b orb.Bound
	first := true
	for _, f := range fs {
		if f == nil || f.Geometry == nil {
			continue
		}
		fb := f.Geometry.Bound()
		if first {
			b = fb
			first = false
			continue
		}
		b = b.Union(fb)
	}
	return b
}

// Collection wraps the features for marshalling.
func (d Data) Collection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.Features = d.Features
	return fc
}

// Name returns the feature's display name, or fallback when it has none.
func Name(f *geojson.Feature, fallback string) string {
	if f == nil {
		return fallback
	}
	for _, k := range []string{"name", "NAME", "Name", "admin", "ADMIN", "NAME_EN"} {
		if s, ok := f.Properties[k].(string); ok && s != "" {
			return s
		}
	}
	return fallback
}
