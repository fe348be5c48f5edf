package canvas

import (
	"math"
)

// A contour is a closed polygon in canvas space. Curves are flattened when
// the contour is built, which keeps reversal and offsetting trivial.
type contour []Point

// kappa places cubic control points so four Béziers approximate a circle.
const kappa = 0.5522847498

// curveSteps is the number of line segments used per quarter arc.
const curveSteps = 12

func (c contour) reversed() contour {
	out := make(contour, len(c))
	for i, p := range c {
		out[len(c)-1-i] = p
	}
	return out
}

func (c contour) translate(dx, dy float64) contour {
	out := make(contour, len(c))
	for i, p := range c {
		out[i] = Point{X: p.X + dx, Y: p.Y + dy}
	}
	return out
}

// signedArea is positive for clockwise contours in a y-down space.
func (c contour) signedArea() float64 {
	var a float64
	for i := range c {
		p, q := c[i], c[(i+1)%len(c)]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}

// clockwise returns c oriented clockwise (y-down), so unions of contours
// accumulate coverage instead of cancelling.
func (c contour) clockwise() contour {
	if c.signedArea() < 0 {
		return c.reversed()
	}
	return c
}

type bbox struct {
	MinX, MinY, MaxX, MaxY float64
}

func boundsOf(contours []contour) (bbox, bool) {
	b := bbox{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	found := false
	for _, c := range contours {
		for _, p := range c {
			b.MinX = math.Min(b.MinX, p.X)
			b.MinY = math.Min(b.MinY, p.Y)
			b.MaxX = math.Max(b.MaxX, p.X)
			b.MaxY = math.Max(b.MaxY, p.Y)
			found = true
		}
	}
	return b, found
}

func cubicPoints(p0, p1, p2, p3 Point, steps int) []Point {
	out := make([]Point, 0, steps)
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		u := 1 - t
		a, b, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
		out = append(out, Point{
			X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
			Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
		})
	}
	return out
}

func rectContour(x, y, w, h float64) contour {
	return contour{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
}

// roundRectContour traces a rounded rectangle clockwise. The radius is
// clamped to half the shorter side.
func roundRectContour(x, y, w, h, r float64) contour {
	if w <= 0 || h <= 0 {
		return nil
	}
	r = math.Max(0, math.Min(r, math.Min(w, h)/2))
	if r == 0 {
		return rectContour(x, y, w, h)
	}
	k := r * kappa
	c := contour{{x + r, y}, {x + w - r, y}}
	c = append(c, cubicPoints(Point{x + w - r, y}, Point{x + w - r + k, y}, Point{x + w, y + r - k}, Point{x + w, y + r}, curveSteps)...)
	c = append(c, Point{x + w, y + h - r})
	c = append(c, cubicPoints(Point{x + w, y + h - r}, Point{x + w, y + h - r + k}, Point{x + w - r + k, y + h}, Point{x + w - r, y + h}, curveSteps)...)
	c = append(c, Point{x + r, y + h})
	c = append(c, cubicPoints(Point{x + r, y + h}, Point{x + r - k, y + h}, Point{x, y + h - r + k}, Point{x, y + h - r}, curveSteps)...)
	c = append(c, Point{x, y + r})
	c = append(c, cubicPoints(Point{x, y + r}, Point{x, y + r - k}, Point{x + r - k, y}, Point{x + r, y}, curveSteps)...)
	return c
}

func circleContour(center Point, r float64) contour {
	if r <= 0 {
		return nil
	}
	cx, cy := center.X, center.Y
	k := r * kappa
	c := contour{{cx, cy - r}}
	c = append(c, cubicPoints(Point{cx, cy - r}, Point{cx + k, cy - r}, Point{cx + r, cy - k}, Point{cx + r, cy}, curveSteps)...)
	c = append(c, cubicPoints(Point{cx + r, cy}, Point{cx + r, cy + k}, Point{cx + k, cy + r}, Point{cx, cy + r}, curveSteps)...)
	c = append(c, cubicPoints(Point{cx, cy + r}, Point{cx - k, cy + r}, Point{cx - r, cy + k}, Point{cx - r, cy}, curveSteps)...)
	c = append(c, cubicPoints(Point{cx - r, cy}, Point{cx - r, cy - k}, Point{cx - k, cy - r}, Point{cx, cy - r}, curveSteps)...)
	// the last point repeats the first
	return c[:len(c)-1]
}

// roundRectRing outlines a rounded rectangle with a stroke centred on its
// edge: the outer contour clockwise and the inner one counter-clockwise.
func roundRectRing(x, y, w, h, r, width float64) []contour {
	half := width / 2
	outer := roundRectContour(x-half, y-half, w+width, h+width, r+half)
	if outer == nil {
		return nil
	}
	inner := roundRectContour(x+half, y+half, w-width, h-width, r-half)
	if inner == nil {
		return []contour{outer}
	}
	return []contour{outer, inner.reversed()}
}

// strokeContours covers a polyline of the given width with one quad per
// segment and a disc on every vertex, giving round caps and joins.
func strokeContours(points []Point, width float64) []contour {
	if len(points) == 0 || width <= 0 {
		return nil
	}
	half := width / 2
	var out []contour
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		dx, dy := b.X-a.X, b.Y-a.Y
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		nx, ny := -dy/length*half, dx/length*half
		quad := contour{
			{a.X + nx, a.Y + ny},
			{b.X + nx, b.Y + ny},
			{b.X - nx, b.Y - ny},
			{a.X - nx, a.Y - ny},
		}
		out = append(out, quad.clockwise())
	}
	for _, p := range points {
		out = append(out, circleContour(p, half))
	}
	return out
}
