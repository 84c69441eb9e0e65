package geom

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/paulmach/orb/geojson"
)

// LoadGeoJSON reads a FeatureCollection, a single Feature or a bare geometry.
func LoadGeoJSON(path string) (Data, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Data{}, err
	}
	fs, err := ParseGeoJSON(data)
	if err != nil {
		return Data{}, fmt.Errorf("geojson %s: %w", path, err)
	}
	return newData(fs)
}

// ParseGeoJSON decodes raw GeoJSON into features.
func ParseGeoJSON(data []byte) ([]*geojson.Feature, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	switch head.Type {
	case "":
		return nil, errors.New("invalid geojson: missing type")
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, err
		}
		return keepGeometries(fc.Features), nil
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, err
		}
		return keepGeometries([]*geojson.Feature{f}), nil
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, err
		}
		if g.Geometry() == nil {
			return nil, fmt.Errorf("unsupported geojson type: %s", head.Type)
		}
		return []*geojson.Feature{geojson.NewFeature(g.Geometry())}, nil
	}
}

// keepGeometries drops features with a null geometry.
func keepGeometries(fs []*geojson.Feature) []*geojson.Feature {
	out := fs[:0]
	for _, f := range fs {
		if f != nil && f.Geometry != nil {
			out = append(out, f)
		}
	}
	return out
}
