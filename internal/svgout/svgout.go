// Package svgout writes a projected frame as SVG.
package svgout

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	svg "github.com/ajstarks/svgo"
	"github.com/golang/geo/r2"

	"geoglobe/internal/geom"
	"geoglobe/internal/globe"
)

// Style holds the SVG style strings.
type Style struct {
	Background string
	Sphere     string
	Feature    string
	Selected   string
	Line       string
	Point      string
}

// DefaultStyle matches the selection colours of the terminal view.
func DefaultStyle() Style {
	return Style{
		Background: "fill:rgb(255,255,255)",
		Sphere:     "fill:rgb(234,242,250);stroke:#999;stroke-width:1",
		Feature:    "fill:#ccc;stroke:#333;stroke-width:0.5",
		Selected:   "fill:blue;stroke:#333;stroke-width:0.5",
		Line:       "fill:none;stroke:#333;stroke-width:0.5",
		Point:      "fill:#333",
	}
}

// errWriter keeps the first write error; svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return len(p), nil
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, nil
}

// Write renders features as projected by p.
func Write(w io.Writer, p *globe.Projector, features []globe.ProjectedFeature, style Style) error {
	cfg := p.Config()
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(cfg.Width, cfg.Height)
	canvas.Rect(0, 0, cfg.Width, cfg.Height, style.Background)
	if cfg.Type == globe.Orthographic {
		canvas.Circle(round(cfg.Translate.X), round(cfg.Translate.Y), round(cfg.Scale), style.Sphere)
	}

	for _, f := range features {
		fill := style.Feature
		if f.Selected {
			fill = style.Selected
		}
		canvas.Gid(fmt.Sprintf("feature-%d", f.Index))
		canvas.Title(geom.Name(f.Feature, fmt.Sprintf("feature %d", f.Index)))
		// the fill closes rings cut by the horizon; outlines follow Paths
		if rings, err := p.FillRings(f.Feature.Geometry); err == nil && len(rings) > 0 {
			canvas.Path(ringsPath(rings), fill+";stroke:none;fill-rule:evenodd")
		}
		for _, path := range f.Paths {
			xs, ys := coords(path)
			switch {
			case len(xs) == 1:
				canvas.Circle(xs[0], ys[0], 2, style.Point)
			case path.Closed:
				canvas.Polygon(xs, ys, style.Line)
			default:
				canvas.Polyline(xs, ys, style.Line)
			}
		}
		canvas.Gend()
	}
	canvas.End()
	return ew.err
}

// WriteFile renders to path.
func WriteFile(path string, p *globe.Projector, features []globe.ProjectedFeature, style Style) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(file, p, features, style); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// ringsPath builds SVG path data with one closed subpath per ring.
func ringsPath(rings [][]r2.Point) string {
	var b strings.Builder
	for _, ring := range rings {
		for i, pt := range ring {
			cmd := "L"
			if i == 0 {
				cmd = "M"
			}
			fmt.Fprintf(&b, "%s%d %d ", cmd, round(pt.X), round(pt.Y))
		}
		b.WriteString("Z ")
	}
	return strings.TrimSpace(b.String())
}

func coords(path globe.Path) (xs, ys []int) {
	xs = make([]int, len(path.Points))
	ys = make([]int, len(path.Points))
	for i, pt := range path.Points {
		xs[i] = round(pt.X)
		ys[i] = round(pt.Y)
	}
	return xs, ys
}

func round(v float64) int {
	return int(math.Round(v))
}
