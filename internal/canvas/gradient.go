package canvas

import (
	"image"
	"image/color"
	"sort"
)

// Stop is one colour stop of a gradient, Offset in [0,1].
type Stop struct {
	Offset float64
	Color  color.NRGBA
}

// LinearGradient interpolates between stops along the From→To axis.
// Points beyond either end take the colour of the nearest stop.
type LinearGradient struct {
	From, To Point
	Stops    []Stop
}

// NewLinearGradient returns a gradient with stops sorted by offset
func NewLinearGradient(from, to Point, stops ...Stop) *LinearGradient {
	sorted := append([]Stop(nil), stops...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })
	return &LinearGradient{From: from, To: to, Stops: sorted}
}

// At returns the gradient colour at a canvas position
func (g *LinearGradient) At(x, y float64) color.NRGBA {
	if len(g.Stops) == 0 {
		return Transparent
	}
	dx, dy := g.To.X-g.From.X, g.To.Y-g.From.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return g.Stops[0].Color
	}
	t := ((x-g.From.X)*dx + (y-g.From.Y)*dy) / lenSq

	first, last := g.Stops[0], g.Stops[len(g.Stops)-1]
	if t <= first.Offset {
		return first.Color
	}
	if t >= last.Offset {
		return last.Color
	}
	for i := 1; i < len(g.Stops); i++ {
		a, b := g.Stops[i-1], g.Stops[i]
		if t > b.Offset {
			continue
		}
		span := b.Offset - a.Offset
		if span <= 0 {
			return b.Color
		}
		return lerpColor(a.Color, b.Color, (t-a.Offset)/span)
	}
	return last.Color
}

func lerpColor(a, b color.NRGBA, t float64) color.NRGBA {
	mix := func(p, q uint8) uint8 {
		return uint8(float64(p) + (float64(q)-float64(p))*t + 0.5)
	}
	return color.NRGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

// gradientImage exposes a gradient as an unbounded image source.
type gradientImage struct {
	g *LinearGradient
}

func (gi gradientImage) ColorModel() color.Model { return color.NRGBAModel }

func (gi gradientImage) Bounds() image.Rectangle {
	return image.Rect(-1<<30, -1<<30, 1<<30, 1<<30)
}

func (gi gradientImage) At(x, y int) color.Color {
	return gi.g.At(float64(x)+0.5, float64(y)+0.5)
}

func paintSource(p Paint) image.Image {
	if p.Gradient != nil {
		return gradientImage{g: p.Gradient}
	}
	return image.NewUniform(p.Color)
}
