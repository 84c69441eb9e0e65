package geom

import (
	"fmt"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// LoadShapefile reads an ESRI shapefile. The .dbf attributes next to it
// become feature properties.
func LoadShapefile(path string) (Data, error) {
	shape, err := shp.Open(path)
	if err != nil {
		return Data{}, err
	}
	defer shape.Close()

	fields := shape.Fields()
	names := make([]string, len(fields))
	for i, field := range fields {
		names[i] = strings.TrimRight(string(field.Name[:]), "\x00 ")
	}

	var fs []*geojson.Feature
	for shape.Next() {
		n, p := shape.Shape()
		g := shapeGeometry(p)
		if g == nil {
			continue
		}
		feat := geojson.NewFeature(g)
		if shape.AttributeCount() > n {
			for i, name := range names {
				if v := strings.TrimSpace(shape.ReadAttribute(n, i)); v != "" {
					feat.Properties[name] = v
				}
			}
		}
		fs = append(fs, feat)
	}
	if err := shape.Err(); err != nil {
		return Data{}, fmt.Errorf("shapefile %s: %w", path, err)
	}
	return newData(fs)
}

func shapeGeometry(p shp.Shape) orb.Geometry {
	switch s := p.(type) {
	case *shp.Point:
		return orb.Point{s.X, s.Y}
	case *shp.MultiPoint:
		mp := make(orb.MultiPoint, len(s.Points))
		for i, pt := range s.Points {
			mp[i] = orb.Point{pt.X, pt.Y}
		}
		return mp
	case *shp.PolyLine:
		parts := splitParts(s.Parts, s.Points)
		if len(parts) == 1 {
			return orb.LineString(parts[0])
		}
		mls := make(orb.MultiLineString, len(parts))
		for i, part := range parts {
			mls[i] = orb.LineString(part)
		}
		return mls
	case *shp.Polygon:
		return polygonFromRings(splitParts(s.Parts, s.Points))
	}
	return nil
}

// splitParts cuts the flat point array at the part offsets.
func splitParts(parts []int32, points []shp.Point) [][]orb.Point {
	out := make([][]orb.Point, 0, len(parts))
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || start >= end || int(end) > len(points) {
			continue
		}
		ring := make([]orb.Point, 0, end-start)
		for _, pt := range points[start:end] {
			ring = append(ring, orb.Point{pt.X, pt.Y})
		}
		out = append(out, ring)
	}
	return out
}

// polygonFromRings groups shapefile rings into polygons. Outer rings wind
// clockwise, holes counter-clockwise; a hole belongs to the outer ring before
// it.
func polygonFromRings(rings [][]orb.Point) orb.Geometry {
	var mp orb.MultiPolygon
	for _, pts := range rings {
		r := orb.Ring(pts)
		if len(r) < 3 {
			continue
		}
		if r.Orientation() == orb.CW || len(mp) == 0 {
			mp = append(mp, orb.Polygon{r})
			continue
		}
		mp[len(mp)-1] = append(mp[len(mp)-1], r)
	}
	switch len(mp) {
	case 0:
		return nil
	case 1:
		return mp[0]
	}
	return mp
}
