package geom

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Extensions lists the file types Load understands.
var Extensions = []string{".geojson", ".json", ".wkt", ".shp", ".csv", ".kml"}

// Supported reports whether Load handles files named like path.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Load picks a loader by file extension.
func Load(path string) (Data, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		return LoadGeoJSON(path)
	case ".wkt":
		return LoadWKT(path)
	case ".shp":
		return LoadShapefile(path)
	case ".csv":
		return LoadCSV(path)
	case ".kml":
		return LoadKML(path)
	}
	return Data{}, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
}
