package render

import (
	"image"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/jmylchreest/cheevo/internal/theme"
)

// circleK is the control point distance for a quarter circle built from one
// cubic Bézier.
const circleK = 0.5522847498

// shadowLayer is one drop shadow pass.
type shadowLayer struct {
	offset float64
	spread float64
	alpha  uint8
}

// shadowLayers are drawn in order: wide and faint first, tight and darker last.
var shadowLayers = []shadowLayer{
	{offset: 12, spread: 18, alpha: 18},
	{offset: 8, spread: 10, alpha: 28},
	{offset: 4, spread: 4, alpha: 40},
}

// rect is a float rectangle in canvas coordinates.
type rect struct {
	X, Y, W, H float64
}

func (r rect) inset(d float64) rect {
	return rect{X: r.X + d, Y: r.Y + d, W: r.W - 2*d, H: r.H - 2*d}
}

func (r rect) empty() bool { return r.W <= 0 || r.H <= 0 }

type segKind uint8

const (
	segMove segKind = iota
	segLine
	segQuad
	segCube
	segClose
)

type point struct{ X, Y float64 }

type segment struct {
	kind segKind
	pts  [3]point
}

// path records outline segments and their bounds, then rasterizes into a
// coverage mask sized to those bounds.
type path struct {
	segs                   []segment
	minX, minY, maxX, maxY float64
}

func newPath() *path {
	return &path{
		minX: math.Inf(1), minY: math.Inf(1),
		maxX: math.Inf(-1), maxY: math.Inf(-1),
	}
}

func (p *path) add(kind segKind, pts ...point) {
	s := segment{kind: kind}
	copy(s.pts[:], pts)
	for _, pt := range pts {
		p.minX = math.Min(p.minX, pt.X)
		p.minY = math.Min(p.minY, pt.Y)
		p.maxX = math.Max(p.maxX, pt.X)
		p.maxY = math.Max(p.maxY, pt.Y)
	}
	p.segs = append(p.segs, s)
}

func (p *path) moveTo(x, y float64) { p.add(segMove, point{x, y}) }
func (p *path) lineTo(x, y float64) { p.add(segLine, point{x, y}) }
func (p *path) close()              { p.add(segClose) }

func (p *path) quadTo(cx, cy, x, y float64) {
	p.add(segQuad, point{cx, cy}, point{x, y})
}

func (p *path) cubeTo(c1x, c1y, c2x, c2y, x, y float64) {
	p.add(segCube, point{c1x, c1y}, point{c2x, c2y}, point{x, y})
}

// mask rasterizes the path. It returns nil for an empty path.
func (p *path) mask() *image.Alpha {
	if len(p.segs) == 0 || p.maxX <= p.minX || p.maxY <= p.minY {
		return nil
	}
	b := image.Rect(
		int(math.Floor(p.minX)), int(math.Floor(p.minY)),
		int(math.Ceil(p.maxX)), int(math.Ceil(p.maxY)),
	)
	ox, oy := float64(b.Min.X), float64(b.Min.Y)
	f := func(pt point) (float32, float32) {
		return float32(pt.X - ox), float32(pt.Y - oy)
	}

	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Src
	for _, s := range p.segs {
		switch s.kind {
		case segMove:
			x, y := f(s.pts[0])
			z.MoveTo(x, y)
		case segLine:
			x, y := f(s.pts[0])
			z.LineTo(x, y)
		case segQuad:
			cx, cy := f(s.pts[0])
			x, y := f(s.pts[1])
			z.QuadTo(cx, cy, x, y)
		case segCube:
			c1x, c1y := f(s.pts[0])
			c2x, c2y := f(s.pts[1])
			x, y := f(s.pts[2])
			z.CubeTo(c1x, c1y, c2x, c2y, x, y)
		case segClose:
			z.ClosePath()
		}
	}

	m := image.NewAlpha(b)
	z.Draw(m, b, image.Opaque, image.Point{})
	return m
}

// clampRadius limits a corner radius to half the shorter side.
func clampRadius(r rect, radius float64) float64 {
	return math.Max(0, math.Min(radius, math.Min(r.W/2, r.H/2)))
}

// roundedRectPath builds the eight-point outline: four edges joined by
// quadratic corners.
func roundedRectPath(r rect, radius float64) *path {
	rad := clampRadius(r, radius)
	x0, y0, x1, y1 := r.X, r.Y, r.X+r.W, r.Y+r.H

	p := newPath()
	p.moveTo(x0+rad, y0)
	p.lineTo(x1-rad, y0)
	p.quadTo(x1, y0, x1, y0+rad)
	p.lineTo(x1, y1-rad)
	p.quadTo(x1, y1, x1-rad, y1)
	p.lineTo(x0+rad, y1)
	p.quadTo(x0, y1, x0, y1-rad)
	p.lineTo(x0, y0+rad)
	p.quadTo(x0, y0, x0+rad, y0)
	p.close()
	return p
}

func circlePath(cx, cy, radius float64) *path {
	k := radius * circleK
	p := newPath()
	p.moveTo(cx+radius, cy)
	p.cubeTo(cx+radius, cy+k, cx+k, cy+radius, cx, cy+radius)
	p.cubeTo(cx-k, cy+radius, cx-radius, cy+k, cx-radius, cy)
	p.cubeTo(cx-radius, cy-k, cx-k, cy-radius, cx, cy-radius)
	p.cubeTo(cx+k, cy-radius, cx+radius, cy-k, cx+radius, cy)
	p.close()
	return p
}

// arcTo appends cubic segments approximating an arc around (cx, cy) from
// angle a0 to a1 (radians, clockwise in screen space). The current point
// must already be on the arc at a0.
func (p *path) arcTo(cx, cy, radius, a0, a1 float64) {
	sweep := a1 - a0
	n := int(math.Ceil(math.Abs(sweep) / (math.Pi / 2)))
	if n == 0 {
		return
	}
	step := sweep / float64(n)
	k := 4.0 / 3.0 * math.Tan(step/4)
	for i := 0; i < n; i++ {
		s := a0 + step*float64(i)
		e := s + step
		sx, sy := cx+radius*math.Cos(s), cy+radius*math.Sin(s)
		ex, ey := cx+radius*math.Cos(e), cy+radius*math.Sin(e)
		p.cubeTo(
			sx-k*radius*math.Sin(s), sy+k*radius*math.Cos(s),
			ex+k*radius*math.Sin(e), ey-k*radius*math.Cos(e),
			ex, ey,
		)
	}
}

// arcRingPath is an annular sector starting at 12 o'clock and sweeping
// clockwise by progress*360 degrees.
func arcRingPath(cx, cy, radius, thickness, progress float64) *path {
	progress = math.Min(progress, 1)
	if progress <= 0 || thickness <= 0 {
		return nil
	}
	outer := radius + thickness/2
	inner := math.Max(radius-thickness/2, 0)
	a0 := -math.Pi / 2
	a1 := a0 + progress*2*math.Pi

	p := newPath()
	p.moveTo(cx+outer*math.Cos(a0), cy+outer*math.Sin(a0))
	p.arcTo(cx, cy, outer, a0, a1)
	p.lineTo(cx+inner*math.Cos(a1), cy+inner*math.Sin(a1))
	p.arcTo(cx, cy, inner, a1, a0)
	p.close()
	return p
}

// subtract clears coverage of hole from m.
func subtract(m, hole *image.Alpha) {
	if m == nil || hole == nil {
		return
	}
	r := m.Rect.Intersect(hole.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			i, j := m.PixOffset(x, y), hole.PixOffset(x, y)
			if m.Pix[i] > hole.Pix[j] {
				m.Pix[i] -= hole.Pix[j]
			} else {
				m.Pix[i] = 0
			}
		}
	}
}

func solid(c theme.Color) func(int) theme.Color {
	return func(int) theme.Color { return c }
}

// verticalGradient interpolates from top at r.Y to bottom at r.Y+r.H.
func verticalGradient(r rect, top, bottom theme.Color) func(int) theme.Color {
	return func(y int) theme.Color {
		t := 0.0
		if r.H > 1 {
			t = (float64(y) + 0.5 - r.Y) / r.H
		}
		return mix(top, bottom, math.Max(0, math.Min(1, t)))
	}
}

func (c *canvas) fillPath(p *path, colorAt func(int) theme.Color) {
	if p == nil {
		return
	}
	c.fillMask(p.mask(), colorAt)
}

func (c *canvas) fillRoundedRect(r rect, radius float64, col theme.Color) {
	if r.empty() || col.A == 0 {
		return
	}
	c.fillPath(roundedRectPath(r, radius), solid(col))
}

func (c *canvas) fillRoundedRectGradient(r rect, radius float64, top, bottom theme.Color) {
	if r.empty() || (top.A == 0 && bottom.A == 0) {
		return
	}
	c.fillPath(roundedRectPath(r, radius), verticalGradient(r, top, bottom))
}

// strokeRoundedRect draws a border of the given width inside r.
func (c *canvas) strokeRoundedRect(r rect, radius, width float64, col theme.Color) {
	if r.empty() || width <= 0 || col.A == 0 {
		return
	}
	outer := roundedRectPath(r, radius).mask()
	in := r.inset(width)
	if !in.empty() {
		subtract(outer, roundedRectPath(in, math.Max(radius-width, 0)).mask())
	}
	c.fillMask(outer, solid(col))
}

func (c *canvas) fillCircle(cx, cy, radius float64, col theme.Color) {
	if radius <= 0 || col.A == 0 {
		return
	}
	c.fillPath(circlePath(cx, cy, radius), solid(col))
}

// strokeCircle draws a ring whose outer edge is radius.
func (c *canvas) strokeCircle(cx, cy, radius, width float64, col theme.Color) {
	if radius <= 0 || width <= 0 || col.A == 0 {
		return
	}
	m := circlePath(cx, cy, radius).mask()
	if radius > width {
		subtract(m, circlePath(cx, cy, radius-width).mask())
	}
	c.fillMask(m, solid(col))
}

func (c *canvas) fillArcRing(cx, cy, radius, thickness, progress float64, col theme.Color) {
	if col.A == 0 {
		return
	}
	c.fillPath(arcRingPath(cx, cy, radius, thickness, progress), solid(col))
}

// dropShadow draws the shadow layers behind a rounded rect.
func (c *canvas) dropShadow(r rect, radius float64, shadow theme.Color, opacity float64) {
	if r.empty() || opacity <= 0 {
		return
	}
	for _, l := range shadowLayers {
		sr := rect{
			X: r.X - l.spread,
			Y: r.Y - l.spread + l.offset,
			W: r.W + 2*l.spread,
			H: r.H + 2*l.spread,
		}
		col := shadow.WithAlpha(alpha(float64(l.alpha) / 255 * opacity))
		c.fillRoundedRect(sr, radius+l.spread, col)
	}
}
