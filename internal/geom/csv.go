package geom

import (
	"encoding/csv"
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// LoadCSV reads a CSV with latitude/longitude columns and returns one point
// feature per row. Column detection: lat|latitude|y and lon|lng|long|longitude|x
// (case-insensitive). Remaining columns become properties.
func LoadCSV(path string) (Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return Data{}, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	recs, err := r.ReadAll()
	if err != nil {
		return Data{}, err
	}
	if len(recs) == 0 {
		return Data{}, errors.New("empty csv")
	}
	header := recs[0]
	idxLat, idxLon := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "lat", "latitude", "y":
			if idxLat == -1 {
				idxLat = i
			}
		case "lon", "lng", "long", "longitude", "x":
			if idxLon == -1 {
				idxLon = i
			}
		}
	}
	if idxLat == -1 || idxLon == -1 {
		return Data{}, errors.New("csv: latitude/longitude columns not found")
	}
	var fs []*geojson.Feature
	for _, row := range recs[1:] {
		if idxLon >= len(row) || idxLat >= len(row) {
			continue
		}
		lon, err1 := strconv.ParseFloat(strings.TrimSpace(row[idxLon]), 64)
		lat, err2 := strconv.ParseFloat(strings.TrimSpace(row[idxLat]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		feat := geojson.NewFeature(orb.Point{lon, lat})
		for i, v := range row {
			if i == idxLat || i == idxLon || i >= len(header) {
				continue
			}
			feat.Properties[strings.TrimSpace(header[i])] = v
		}
		fs = append(fs, feat)
	}
	if len(fs) == 0 {
		return Data{}, errors.New("csv: no valid points parsed")
	}
	return newData(fs)
}
