package canvas

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// shadowLayers is the number of expanding translucent passes a shadow is
// approximated with.
const shadowLayers = 6

// Rasterize paints the document onto a new image of the document's size.
func Rasterize(doc *Document, fonts *FontSet) (*image.RGBA, error) {
	if doc.Width <= 0 || doc.Height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", doc.Width, doc.Height)
	}
	if fonts == nil {
		return nil, fmt.Errorf("no font set")
	}

	img := image.NewRGBA(image.Rect(0, 0, doc.Width, doc.Height))
	p := &painter{dst: img, faces: fonts.NewFaces(), z: &vector.Rasterizer{}}
	defer p.faces.Close()

	for i, op := range doc.Ops {
		if err := p.paint(op); err != nil {
			return nil, fmt.Errorf("op %d: %w", i, err)
		}
	}
	return img, nil
}

type painter struct {
	dst   *image.RGBA
	faces *Faces
	z     *vector.Rasterizer
}

func (p *painter) paint(op Op) error {
	switch o := op.(type) {
	case Rect:
		p.fill(o.Fill, rectContour(o.X, o.Y, o.W, o.H))
	case RoundRect:
		if o.Shadow != nil {
			p.shadow(o)
		}
		if !o.Fill.IsZero() {
			p.fill(o.Fill, roundRectContour(o.X, o.Y, o.W, o.H, o.Radius))
		}
		if o.Stroke != nil && o.Stroke.Width > 0 {
			p.fill(o.Stroke.Paint, roundRectRing(o.X, o.Y, o.W, o.H, o.Radius, o.Stroke.Width)...)
		}
	case Circle:
		p.fill(o.Fill, circleContour(o.Center, o.Radius))
	case Line:
		p.fill(o.Stroke.Paint, strokeContours([]Point{o.From, o.To}, o.Stroke.Width)...)
	case Polyline:
		p.fill(o.Stroke.Paint, strokeContours(o.Points, o.Stroke.Width)...)
	case Polygon:
		if len(o.Points) >= 3 {
			p.fill(o.Fill, contour(o.Points))
		}
	case Text:
		return p.text(o)
	default:
		return fmt.Errorf("unsupported op %T", op)
	}
	return nil
}

// fill rasterizes the union of the contours with the paint. The rasterizer
// is sized to the clipped bounding box only.
func (p *painter) fill(paint Paint, contours ...contour) {
	if paint.IsZero() {
		return
	}
	b, ok := boundsOf(contours)
	if !ok {
		return
	}
	area := image.Rect(
		int(math.Floor(b.MinX)), int(math.Floor(b.MinY)),
		int(math.Ceil(b.MaxX)), int(math.Ceil(b.MaxY)),
	).Intersect(p.dst.Bounds())
	if area.Empty() {
		return
	}

	p.z.Reset(area.Dx(), area.Dy())
	p.z.DrawOp = draw.Over
	ox, oy := float64(area.Min.X), float64(area.Min.Y)
	for _, c := range contours {
		if len(c) < 3 {
			continue
		}
		p.z.MoveTo(float32(c[0].X-ox), float32(c[0].Y-oy))
		for _, pt := range c[1:] {
			p.z.LineTo(float32(pt.X-ox), float32(pt.Y-oy))
		}
		p.z.ClosePath()
	}
	p.z.Draw(p.dst, area, paintSource(paint), area.Min)
}

// shadow paints concentric rounded rectangles whose combined opacity falls
// off over the blur distance.
func (p *painter) shadow(o RoundRect) {
	s := o.Shadow
	if s.Color.A == 0 {
		return
	}
	x, y := o.X+s.OffsetX, o.Y+s.OffsetY
	if s.Blur <= 0 {
		p.fill(Solid(s.Color), roundRectContour(x, y, o.W, o.H, o.Radius))
		return
	}
	layer := s.Color
	layer.A = uint8(math.Max(1, math.Round(float64(s.Color.A)/shadowLayers)))
	for i := shadowLayers; i >= 1; i-- {
		spread := s.Blur / 2 * float64(i) / shadowLayers
		p.fill(Solid(layer), roundRectContour(x-spread, y-spread, o.W+2*spread, o.H+2*spread, o.Radius+spread))
	}
}

func (p *painter) text(t Text) error {
	if t.Text == "" || t.Color.A == 0 {
		return nil
	}
	face, err := p.faces.Face(t.Font)
	if err != nil {
		return err
	}
	x := t.Pos.X
	switch t.Align {
	case AlignCenter:
		x -= fixedToFloat(font.MeasureString(face, t.Text)) / 2
	case AlignRight:
		x -= fixedToFloat(font.MeasureString(face, t.Text))
	}
	d := &font.Drawer{
		Dst:  p.dst,
		Src:  image.NewUniform(t.Color),
		Face: face,
		Dot:  fixed.Point26_6{X: floatToFixed(x), Y: floatToFixed(t.Pos.Y)},
	}
	d.DrawString(t.Text)
	return nil
}
