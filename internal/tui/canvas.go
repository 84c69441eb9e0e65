package tui

import (
	"math"

	"github.com/paulmach/orb/geojson"

	"geoglobe/internal/globe"
)

// canvas rasterises engine frames into braille lines. It is the engine's
// RenderFunc; the model only reads lines back.
type canvas struct {
	buf      *brailleBuf
	features []*geojson.Feature
	lines    []string
	frames   int
	diags    int
}

func newCanvas(w, h int) *canvas {
	return &canvas{buf: newBrailleBuf(max(1, w), max(1, h))}
}

// resize sets the size in cells. The engine surface is twice as wide and
// four times as tall, one unit per braille dot.
func (c *canvas) resize(w, h int) {
	w, h = max(1, w), max(1, h)
	if w == c.buf.w && h == c.buf.h {
		return
	}
	c.buf = newBrailleBuf(w, h)
	c.lines = nil
}

func (c *canvas) setFeatures(fs []*geojson.Feature) {
	c.features = fs
}

func (c *canvas) render(p *globe.Projector, selected int) {
	c.buf.clear()
	cfg := p.Config()
	if cfg.Type == globe.Orthographic {
		c.buf.drawCircle(cfg.Translate.X, cfg.Translate.Y, cfg.Scale)
	}
	projected, diags := p.Features(c.features, selected)
	c.diags = len(diags)
	for _, pf := range projected {
		if !pf.Selected {
			continue
		}
		if rings, err := p.FillRings(pf.Feature.Geometry); err == nil {
			c.buf.fillRings(rings)
		}
	}
	for _, pf := range projected {
		for _, path := range pf.Paths {
			c.buf.drawPath(path.Points, path.Closed)
		}
	}
	c.lines = c.buf.toLines()
	c.frames++
}

func (c *canvas) view() []string {
	if c.lines == nil {
		return c.buf.toLines()
	}
	return c.lines
}

// cellCenter returns the engine coordinate at the middle of a cell.
func cellCenter(cx, cy int) (float64, float64) {
	return float64(cx*2 + 1), float64(cy*4 + 2)
}

// fitScale is the globe radius that fits a w x h cell surface.
func fitScale(w, h int) float64 {
	return 0.45 * math.Min(float64(w*2), float64(h*4))
}
