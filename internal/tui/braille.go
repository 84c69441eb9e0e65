package tui

import (
	"math"
	"sort"

	"github.com/golang/geo/r2"
)

// brailleBuf is a drawing surface of w x h terminal cells, each holding a
// 2x4 grid of braille dots. Coordinates are in dots ("micro" pixels).
type brailleBuf struct {
	w, h int       // in cells
	m    [][]uint8 // per-cell 8-bit mask
}

// dotBits[ry][rx] is the braille bit for a dot inside its cell.
var dotBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

func newBrailleBuf(w, h int) *brailleBuf {
	m := make([][]uint8, h)
	for i := range m {
		m[i] = make([]uint8, w)
	}
	return &brailleBuf{w: w, h: h, m: m}
}

func (b *brailleBuf) clear() {
	for _, row := range b.m {
		clear(row)
	}
}

// setPixel sets a micro-pixel at micro coords (2x4 per cell)
func (b *brailleBuf) setPixel(mx, my int) {
	if mx < 0 || my < 0 {
		return
	}
	cx, cy := mx/2, my/4
	if cy >= b.h || cx >= b.w {
		return
	}
	b.m[cy][cx] |= dotBits[my%4][mx%2]
}

// drawLineMicro draws a line on the microgrid using Bresenham
func (b *brailleBuf) drawLineMicro(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		b.setPixel(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// drawPath strokes a projected path, closing it when the path is a ring.
func (b *brailleBuf) drawPath(pts []r2.Point, closed bool) {
	if len(pts) == 1 {
		b.setPixel(dot(pts[0].X), dot(pts[0].Y))
		return
	}
	for i := 0; i+1 < len(pts); i++ {
		b.drawSegment(pts[i], pts[i+1])
	}
	if closed && len(pts) > 2 {
		b.drawSegment(pts[len(pts)-1], pts[0])
	}
}

// drawSegment clips a to c against the buffer before rasterising, so the
// cost is bounded by the buffer size however far the ends lie outside.
func (b *brailleBuf) drawSegment(a, c r2.Point) {
	a, c, ok := clipSegment(a, c, float64(b.w*2), float64(b.h*4))
	if !ok {
		return
	}
	b.drawLineMicro(dot(a.X), dot(a.Y), dot(c.X), dot(c.Y))
}

// clipSegment is Liang-Barsky against [0, w) x [0, h).
func clipSegment(a, c r2.Point, w, h float64) (r2.Point, r2.Point, bool) {
	if !finitePoint(a) || !finitePoint(c) {
		return a, c, false
	}
	dx, dy := c.X-a.X, c.Y-a.Y
	t0, t1 := 0.0, 1.0
	edge := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return false
			}
			t0 = math.Max(t0, r)
		} else {
			if r < t0 {
				return false
			}
			t1 = math.Min(t1, r)
		}
		return true
	}
	// the far edges stay one ulp inside so floor() lands on the last dot
	maxX, maxY := math.Nextafter(w, 0), math.Nextafter(h, 0)
	if !edge(-dx, a.X) || !edge(dx, maxX-a.X) || !edge(-dy, a.Y) || !edge(dy, maxY-a.Y) {
		return a, c, false
	}
	return r2.Point{X: a.X + t0*dx, Y: a.Y + t0*dy},
		r2.Point{X: a.X + t1*dx, Y: a.Y + t1*dy}, true
}

func finitePoint(p r2.Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// fillRings fills rings together with the even-odd rule, one scanline per
// dot row, so holes stay empty.
func (b *brailleBuf) fillRings(rings [][]r2.Point) {
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, ring := range rings {
		if len(ring) < 3 {
			continue
		}
		for _, p := range ring {
			minY = math.Min(minY, p.Y)
			maxY = math.Max(maxY, p.Y)
		}
	}
	if math.IsInf(minY, 0) || math.IsInf(maxY, 0) {
		return
	}
	y0 := int(math.Max(0, math.Floor(minY)))
	y1 := int(math.Min(float64(b.h*4-1), math.Ceil(maxY)))
	xmax := float64(b.w*2 - 1)
	var xs []int
	for y := y0; y <= y1; y++ {
		yc := float64(y) + 0.5
		xs = xs[:0]
		for _, ring := range rings {
			if len(ring) < 3 {
				continue
			}
			for i := range ring {
				a := ring[i]
				c := ring[(i+1)%len(ring)]
				if a.Y == c.Y {
					continue
				}
				if (yc >= a.Y && yc < c.Y) || (yc >= c.Y && yc < a.Y) {
					t := (yc - a.Y) / (c.Y - a.Y)
					x := math.Max(-1, math.Min(xmax+1, a.X+t*(c.X-a.X)))
					xs = append(xs, int(math.Round(x)))
				}
			}
		}
		sort.Ints(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			for x := max(0, xs[i]); x <= min(b.w*2-1, xs[i+1]); x++ {
				b.setPixel(x, y)
			}
		}
	}
}

// maxCircleSteps bounds the segments of one circle; beyond it the chord error
// is well under a dot for any radius the viewer allows.
const maxCircleSteps = 4096

// drawCircle strokes a circle of radius r dots around (cx, cy). Circles that
// miss the buffer or enclose all of it draw nothing.
func (b *brailleBuf) drawCircle(cx, cy, r float64) {
	if r <= 0 || math.IsNaN(r) || math.IsInf(r, 0) {
		return
	}
	w, h := float64(b.w*2), float64(b.h*4)
	nx := math.Max(0, math.Min(cx, w)) - cx
	ny := math.Max(0, math.Min(cy, h)) - cy
	if math.Hypot(nx, ny) > r {
		return
	}
	fx := math.Max(math.Abs(cx), math.Abs(w-cx))
	fy := math.Max(math.Abs(cy), math.Abs(h-cy))
	if math.Hypot(fx, fy) < r {
		return
	}
	steps := min(maxCircleSteps, max(32, int(2*math.Pi*r)))
	prev := r2.Point{X: cx + r, Y: cy}
	for i := 1; i <= steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		next := r2.Point{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)}
		b.drawSegment(prev, next)
		prev = next
	}
}

func (b *brailleBuf) toLines() []string {
	out := make([]string, b.h)
	for y := 0; y < b.h; y++ {
		row := make([]rune, b.w)
		for x := 0; x < b.w; x++ {
			mask := b.m[y][x]
			if mask == 0 {
				row[x] = ' '
			} else {
				row[x] = rune(0x2800 + int(mask))
			}
		}
		out[y] = string(row)
	}
	return out
}

func dot(v float64) int {
	return int(math.Floor(v))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
