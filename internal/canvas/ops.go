// Package canvas describes a report as a list of immutable paint operations
// and rasterizes that list onto an RGBA image.
//
// Every styling property (fill, stroke, shadow, alignment) travels with the
// operation that uses it, so nothing one operation sets can leak into the
// next.
package canvas

import "image/color"

// Point is a position in canvas pixels
type Point struct {
	X, Y float64
}

// Align is the horizontal anchor of a text run
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Style selects the typeface variant
type Style int

const (
	Regular Style = iota
	Bold
	Italic
)

// Font is a typeface variant at a pixel size
type Font struct {
	Size  float64
	Style Style
}

// Sans returns the regular face at size px
func Sans(size float64) Font { return Font{Size: size, Style: Regular} }

// SansBold returns the bold face at size px
func SansBold(size float64) Font { return Font{Size: size, Style: Bold} }

// SansItalic returns the italic face at size px
func SansItalic(size float64) Font { return Font{Size: size, Style: Italic} }

// Paint is either a flat colour or a linear gradient.
type Paint struct {
	Color    color.NRGBA
	Gradient *LinearGradient
}

// Solid returns a flat colour paint
func Solid(c color.NRGBA) Paint {
	return Paint{Color: c}
}

// IsZero reports whether the paint draws nothing
func (p Paint) IsZero() bool {
	return p.Gradient == nil && p.Color.A == 0
}

// Stroke outlines a shape, centred on its path
type Stroke struct {
	Paint Paint
	Width float64
}

// Shadow is a soft drop shadow painted beneath a single shape.
type Shadow struct {
	Color   color.NRGBA
	Blur    float64
	OffsetX float64
	OffsetY float64
}

// Op is one paint operation. The set of implementations is closed.
type Op interface {
	isOp()
}

// Rect fills an axis aligned rectangle
type Rect struct {
	X, Y, W, H float64
	Fill       Paint
}

// RoundRect is a rounded panel with optional outline and drop shadow.
type RoundRect struct {
	X, Y, W, H float64
	Radius     float64
	Fill       Paint
	Stroke     *Stroke
	Shadow     *Shadow
}

// Circle fills a disc
type Circle struct {
	Center Point
	Radius float64
	Fill   Paint
}

// Line strokes a straight segment
type Line struct {
	From, To Point
	Stroke   Stroke
}

// Polyline strokes connected segments with round joins
type Polyline struct {
	Points []Point
	Stroke Stroke
}

// Polygon fills a closed shape
type Polygon struct {
	Points []Point
	Fill   Paint
}

// Text draws a single line; Pos is on the alphabetic baseline.
type Text struct {
	Pos   Point
	Text  string
	Font  Font
	Color color.NRGBA
	Align Align
}

func (Rect) isOp()      {}
func (RoundRect) isOp() {}
func (Circle) isOp()    {}
func (Line) isOp()      {}
func (Polyline) isOp()  {}
func (Polygon) isOp()   {}
func (Text) isOp()      {}

// Section records the vertical band a named part of the layout occupies.
type Section struct {
	Name   string
	Top    float64
	Height float64
}

// Bottom returns the first row below the section
func (s Section) Bottom() float64 {
	return s.Top + s.Height
}

// Document is a laid out report ready for rasterization.
type Document struct {
	Width    int
	Height   int
	Ops      []Op
	Sections []Section
	// Dropped counts content blocks left out because the page ran out of room.
	Dropped int
}

// Texts returns every text run in paint order
func (d *Document) Texts() []Text {
	var out []Text
	for _, op := range d.Ops {
		if t, ok := op.(Text); ok {
			out = append(out, t)
		}
	}
	return out
}

// Section looks up a section by name
func (d *Document) Section(name string) (Section, bool) {
	for _, s := range d.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// TextsIn returns the text runs whose baseline lies inside the section.
func (d *Document) TextsIn(name string) []Text {
	s, ok := d.Section(name)
	if !ok {
		return nil
	}
	var out []Text
	for _, t := range d.Texts() {
		if t.Pos.Y >= s.Top && t.Pos.Y < s.Bottom() {
			out = append(out, t)
		}
	}
	return out
}
