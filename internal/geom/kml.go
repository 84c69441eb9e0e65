package geom

import (
	"encoding/xml"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

type kmlCoords struct {
	Coordinates string `xml:"coordinates"`
}

type kmlPolygon struct {
	Outer kmlCoords   `xml:"outerBoundaryIs>LinearRing"`
	Inner []kmlCoords `xml:"innerBoundaryIs>LinearRing"`
}

type kmlPlacemark struct {
	Name       string      `xml:"name"`
	Point      *kmlCoords  `xml:"Point"`
	LineString *kmlCoords  `xml:"LineString"`
	Polygon    *kmlPolygon `xml:"Polygon"`
}

// LoadKML reads Placemarks with a Point, LineString or Polygon. Placemarks
// may sit at any depth under Document and Folder elements. KML coordinates
// are "lon,lat[,alt]"; altitude is ignored.
func LoadKML(path string) (Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return Data{}, err
	}
	defer f.Close()

	var fs []*geojson.Feature
	dec := xml.NewDecoder(f)
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return Data{}, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Placemark" {
			continue
		}
		var pm kmlPlacemark
		if err := dec.DecodeElement(&pm, &se); err != nil {
			return Data{}, err
		}
		if g := pm.geometry(); g != nil {
			feat := geojson.NewFeature(g)
			if pm.Name != "" {
				feat.Properties["name"] = strings.TrimSpace(pm.Name)
			}
			fs = append(fs, feat)
		}
	}
	if len(fs) == 0 {
		return Data{}, errors.New("kml: no placemarks found")
	}
	return newData(fs)
}

func (pm kmlPlacemark) geometry() orb.Geometry {
	switch {
	case pm.Point != nil:
		pts := parseKMLCoords(pm.Point.Coordinates)
		if len(pts) == 1 {
			return pts[0]
		}
		if len(pts) > 1 {
			return orb.MultiPoint(pts)
		}
	case pm.LineString != nil:
		if pts := parseKMLCoords(pm.LineString.Coordinates); len(pts) >= 2 {
			return orb.LineString(pts)
		}
	case pm.Polygon != nil:
		outer := parseKMLCoords(pm.Polygon.Outer.Coordinates)
		if len(outer) < 3 {
			return nil
		}
		poly := orb.Polygon{orb.Ring(outer)}
		for _, in := range pm.Polygon.Inner {
			if pts := parseKMLCoords(in.Coordinates); len(pts) >= 3 {
				poly = append(poly, orb.Ring(pts))
			}
		}
		return poly
	}
	return nil
}

// parseKMLCoords splits whitespace separated "lon,lat[,alt]" tuples.
func parseKMLCoords(s string) []orb.Point {
	var pts []orb.Point
	for _, tuple := range strings.Fields(s) {
		vals := strings.Split(tuple, ",")
		if len(vals) < 2 {
			continue
		}
		lon, err1 := strconv.ParseFloat(strings.TrimSpace(vals[0]), 64)
		lat, err2 := strconv.ParseFloat(strings.TrimSpace(vals[1]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		pts = append(pts, orb.Point{lon, lat})
	}
	return pts
}
