package svgout

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"geoglobe/internal/globe"
)

func projected(t *testing.T) (*globe.Projector, []globe.ProjectedFeature) {
	t.Helper()
	p, err := globe.NewProjector(globe.Config{
		Type:      globe.Orthographic,
		Scale:     100,
		Translate: r2.Point{X: 200, Y: 120},
		Width:     400,
		Height:    240,
	})
	if err != nil {
		t.Fatal(err)
	}
	square := geojson.NewFeature(orb.Polygon{{{-10, -10}, {10, -10}, {10, 10}, {-10, 10}, {-10, -10}}})
	square.Properties["name"] = "Square"
	fs := []*geojson.Feature{
		square,
		geojson.NewFeature(orb.Point{20, 20}),
		geojson.NewFeature(orb.LineString{{-30, 0}, {-20, 5}}),
	}
	out, errs := p.Features(fs, 0)
	if len(errs) != 0 {
		t.Fatal(errs)
	}
	return p, out
}

func TestWrite(t *testing.T) {
	p, features := projected(t)
	var buf bytes.Buffer
	if err := Write(&buf, p, features, DefaultStyle()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		`width="400"`,
		`<title>Square</title>`,
		`<polygon`,
		`<path d="M`,
		`fill:blue`,
		`fill-rule:evenodd`,
		`<polyline`,
		`id="feature-1"`,
		`</svg>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Count(out, "<circle") != 2 {
		t.Errorf("expected sphere and point circles, got %d", strings.Count(out, "<circle"))
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteReportsErrors(t *testing.T) {
	p, features := projected(t)
	if err := Write(failingWriter{}, p, features, DefaultStyle()); err == nil {
		t.Error("expected write error")
	}
}

func TestWriteFillsFeatureCutByHorizon(t *testing.T) {
	p, err := globe.NewProjector(globe.Config{
		Type:      globe.Orthographic,
		Scale:     100,
		Translate: r2.Point{X: 200, Y: 120},
		Width:     400,
		Height:    240,
	})
	if err != nil {
		t.Fatal(err)
	}
	// lon 60..100 straddles the horizon at lon 90
	cut := geojson.NewFeature(orb.Polygon{{{60, -20}, {100, -20}, {100, 20}, {60, 20}, {60, -20}}})
	features, errs := p.Features([]*geojson.Feature{cut}, 0)
	if len(errs) != 0 {
		t.Fatal(errs)
	}
	var buf bytes.Buffer
	if err := Write(&buf, p, features, DefaultStyle()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "fill:blue") {
		t.Errorf("cut feature not filled:\n%s", out)
	}
	if strings.Contains(out, "<polygon") {
		t.Error("cut ring outline should be an open polyline")
	}
}
