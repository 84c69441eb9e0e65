package globe

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/paulmach/orb"
)

func TestParseProjectionType(t *testing.T) {
	for in, want := range map[string]ProjectionType{
		"orthographic": Orthographic,
		"Ortho":        Orthographic,
		" MERCATOR ":   Mercator,
	} {
		got, err := ParseProjectionType(in)
		if err != nil || got != want {
			t.Errorf("ParseProjectionType(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseProjectionType("robinson"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	if Mercator.String() != "mercator" {
		t.Errorf("String = %q", Mercator.String())
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero scale", func(c *Config) { c.Scale = 0 }},
		{"negative scale", func(c *Config) { c.Scale = -1 }},
		{"nan scale", func(c *Config) { c.Scale = math.NaN() }},
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"zero translate", func(c *Config) { c.Translate = r2.Point{} }},
		{"clip too wide", func(c *Config) { c.ClipAngle = 200 }},
		{"unknown type", func(c *Config) { c.Type = ProjectionType(7) }},
		{"nan rotation", func(c *Config) { c.Rotation.Phi = math.NaN() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate = %v, want ErrInvalidConfig", err)
			}
			if _, err := NewProjector(cfg); err == nil {
				t.Error("NewProjector accepted an invalid config")
			}
		})
	}
	if err := testConfig().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig(400, 200)
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Scale != 90 || cfg.Translate != (r2.Point{X: 200, Y: 100}) {
		t.Errorf("DefaultConfig = %+v", cfg)
	}
}

func TestOrthographicProject(t *testing.T) {
	p, err := NewProjector(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	pt, ok := p.Project(0, 0)
	if !ok || pt != (r2.Point{X: 200, Y: 100}) {
		t.Errorf("Project(0, 0) = %v, %v", pt, ok)
	}

	pt, ok = p.Project(0, 45)
	if !ok {
		t.Fatal("Project(0, 45) not visible")
	}
	assertNear(t, "y", pt.Y, 100-100*math.Sqrt2/2, 1e-9)

	pt, ok = p.Project(60, 0)
	if !ok {
		t.Fatal("Project(60, 0) not visible")
	}
	assertNear(t, "x", pt.X, 200+100*math.Sqrt(3)/2, 1e-9)

	if _, ok := p.Project(180, 0); ok {
		t.Error("far side should be clipped")
	}
	if _, ok := p.Project(math.NaN(), 0); ok {
		t.Error("NaN should not be visible")
	}
}

func TestRotationCentresPoint(t *testing.T) {
	cfg := testConfig()
	cfg.Rotation = Rotation{Lambda: -30, Phi: -40}
	p, err := NewProjector(cfg)
	if err != nil {
		t.Fatal(err)
	}
	pt, ok := p.Project(30, 40)
	if !ok {
		t.Fatal("centred point not visible")
	}
	assertNear(t, "x", pt.X, 200, 1e-9)
	assertNear(t, "y", pt.Y, 100, 1e-9)
}

func TestInvertRoundTrip(t *testing.T) {
	for _, typ := range []ProjectionType{Orthographic, Mercator} {
		cfg := testConfig()
		cfg.Type = typ
		cfg.Rotation = Rotation{Lambda: 20, Phi: -10, Gamma: 5}
		p, err := NewProjector(cfg)
		if err != nil {
			t.Fatal(err)
		}
		pt, ok := p.Project(10, 15)
		if !ok {
			t.Fatalf("%v: point not visible", typ)
		}
		lon, lat, ok := p.Invert(pt)
		if !ok {
			t.Fatalf("%v: Invert failed", typ)
		}
		assertNear(t, typ.String()+" lon", lon, 10, 1e-6)
		assertNear(t, typ.String()+" lat", lat, 15, 1e-6)
	}

	p, _ := NewProjector(testConfig())
	if _, _, ok := p.Invert(r2.Point{X: 399, Y: 1}); ok {
		t.Error("point off the disc should not invert")
	}
}

func TestMercatorProject(t *testing.T) {
	cfg := testConfig()
	cfg.Type = Mercator
	p, err := NewProjector(cfg)
	if err != nil {
		t.Fatal(err)
	}

	pt, ok := p.Project(90, 0)
	if !ok {
		t.Fatal("Project(90, 0) not visible")
	}
	assertNear(t, "x", pt.X, 200+100*math.Pi/2, 1e-9)

	// Mercator shows the far side too.
	if _, ok := p.Project(180, 0); !ok {
		t.Error("Mercator should not clip")
	}

	top, _ := p.Project(0, 89)
	limit, _ := p.Project(0, MaxMercatorLatitude)
	assertNear(t, "clamped y", top.Y, limit.Y, 1e-9)
	if math.IsInf(top.Y, 0) {
		t.Error("pole mapped to infinity")
	}
}

func TestPathsClosedRing(t *testing.T) {
	p, _ := NewProjector(testConfig())
	paths, err := p.Paths(box(0, 0, 10).Geometry)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || !paths[0].Closed || len(paths[0].Points) != 5 {
		t.Fatalf("paths = %+v", paths)
	}

	hidden, err := p.Paths(box(170, 0, 5).Geometry)
	if err != nil {
		t.Fatal(err)
	}
	if len(hidden) != 0 {
		t.Errorf("back side ring produced %d paths", len(hidden))
	}
}

func TestPathsSplitAtHorizon(t *testing.T) {
	p, _ := NewProjector(testConfig())
	line := orb.LineString{{60, 0}, {80, 0}, {100, 0}, {120, 0}, {100, 10}, {80, 10}, {60, 10}}
	paths, err := p.Paths(line)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 {
		t.Fatalf("got %d paths, want 2", len(paths))
	}
	for _, path := range paths {
		if path.Closed {
			t.Error("split path should not be closed")
		}
	}
}

func TestPathsSplitAtAntimeridian(t *testing.T) {
	cfg := testConfig()
	cfg.Type = Mercator
	p, _ := NewProjector(cfg)
	line := orb.LineString{{160, 0}, {170, 0}, {-170, 0}, {-160, 0}}
	paths, err := p.Paths(line)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 {
		t.Fatalf("got %d paths, want 2", len(paths))
	}
	if paths[0].Points[1].X < paths[1].Points[0].X {
		t.Error("east segment should sit at the right edge")
	}
}

func TestPathsMalformed(t *testing.T) {
	p, _ := NewProjector(testConfig())
	for name, g := range map[string]orb.Geometry{
		"nil":          nil,
		"empty":        orb.Polygon{},
		"out of range": orb.Point{200, 0},
	} {
		if _, err := p.Paths(g); !errors.Is(err, ErrMalformedGeometry) {
			t.Errorf("%s: err = %v", name, err)
		}
	}
}
