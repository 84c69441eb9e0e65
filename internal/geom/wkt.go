package geom

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
)

// ParseWKT parses one WKT geometry, e.g. POINT(1 2) or POLYGON((...)).
func ParseWKT(s string) (orb.Geometry, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty wkt")
	}
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return nil, fmt.Errorf("wkt: %w", err)
	}
	return g, nil
}

// ParseWKTFeature wraps a parsed WKT geometry in a feature named name.
func ParseWKTFeature(s, name string) (*geojson.Feature, error) {
	g, err := ParseWKT(s)
	if err != nil {
		return nil, err
	}
	f := geojson.NewFeature(g)
	if name != "" {
		f.Properties["name"] = name
	}
	f.Properties["source"] = "wkt"
	return f, nil
}

// LoadWKT reads one geometry per non-empty line. Lines starting with # are
// comments.
func LoadWKT(path string) (Data, error) {
	file, err := os.Open(path)
	if err != nil {
		return Data{}, err
	}
	defer file.Close()

	var fs []*geojson.Feature
	sc := bufio.NewScanner(file)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		f, err := ParseWKTFeature(text, fmt.Sprintf("line %d", line))
		if err != nil {
			return Data{}, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		fs = append(fs, f)
	}
	if err := sc.Err(); err != nil {
		return Data{}, err
	}
	return newData(fs)
}
