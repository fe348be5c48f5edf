package render

import (
	"image/color"

	"github.com/anime-shed/mindtrack-report/internal/canvas"
)

// builder accumulates paint operations while a vertical cursor walks down
// the page.
type builder struct {
	width    float64
	m        canvas.Measurer
	ops      []canvas.Op
	sections []canvas.Section
	dropped  int
	y        float64
}

func newBuilder(width float64, m canvas.Measurer) *builder {
	return &builder{width: width, m: m}
}

func (b *builder) add(ops ...canvas.Op) {
	b.ops = append(b.ops, ops...)
}

func (b *builder) text(x, y float64, s string, f canvas.Font, c color.NRGBA) {
	b.add(canvas.Text{Pos: canvas.Point{X: x, Y: y}, Text: s, Font: f, Color: c})
}

func (b *builder) textAligned(x, y float64, s string, f canvas.Font, c color.NRGBA, align canvas.Align) {
	b.add(canvas.Text{Pos: canvas.Point{X: x, Y: y}, Text: s, Font: f, Color: c, Align: align})
}

// wrapText draws text wrapped at maxWidth with the first baseline at y and
// returns the baseline that would follow the last line.
func (b *builder) wrapText(s string, x, y, maxWidth, lineHeight float64, f canvas.Font, c color.NRGBA) float64 {
	for _, line := range Wrap(b.m, f, s, maxWidth) {
		b.text(x, y, line, f, c)
		y += lineHeight
	}
	return y
}

// heading draws a section title with a subtitle 20 px below it and moves
// the cursor past both.
func (b *builder) heading(title, subtitle string, subtitleColor color.NRGBA) {
	b.headingIndented(title, subtitle, subtitleColor, 0)
}

func (b *builder) headingIndented(title, subtitle string, subtitleColor color.NRGBA, indent float64) {
	b.text(completePadding, b.y, title, canvas.SansBold(36), White)
	b.text(completePadding+indent, b.y+20, subtitle, canvas.Sans(18), subtitleColor)
	b.y += sectionHeading
}

func (b *builder) panel(x, y, w, h, radius float64, fill canvas.Paint, stroke *canvas.Stroke, shadow *canvas.Shadow) {
	b.add(canvas.RoundRect{X: x, Y: y, W: w, H: h, Radius: radius, Fill: fill, Stroke: stroke, Shadow: shadow})
}

func (b *builder) mark(name string, top, bottom float64) {
	b.sections = append(b.sections, canvas.Section{Name: name, Top: top, Height: bottom - top})
}

// backdrop paints the page gradient, the 50 px grid and the accent bar.
// It goes underneath everything already added.
func (b *builder) backdrop(height, accent float64, stops ...canvas.Stop) {
	g := canvas.NewLinearGradient(canvas.Point{}, canvas.Point{X: b.width, Y: height}, stops...)
	under := []canvas.Op{canvas.Rect{W: b.width, H: height, Fill: canvas.Paint{Gradient: g}}}

	grid := canvas.Stroke{Paint: canvas.Solid(orangeAlpha(0.03)), Width: 1}
	for x := 0.0; x < b.width; x += 50 {
		under = append(under, canvas.Line{From: canvas.Point{X: x}, To: canvas.Point{X: x, Y: height}, Stroke: grid})
	}
	for y := 0.0; y < height; y += 50 {
		under = append(under, canvas.Line{From: canvas.Point{Y: y}, To: canvas.Point{X: b.width, Y: y}, Stroke: grid})
	}

	bar := canvas.NewLinearGradient(canvas.Point{}, canvas.Point{X: b.width},
		canvas.Stop{Offset: 0, Color: BrandOrange}, canvas.Stop{Offset: 1, Color: BrandAmber})
	under = append(under, canvas.Rect{W: b.width, H: accent, Fill: canvas.Paint{Gradient: bar}})

	b.ops = append(under, b.ops...)
}

func (b *builder) document(height int) *canvas.Document {
	return &canvas.Document{
		Width:    int(b.width),
		Height:   height,
		Ops:      b.ops,
		Sections: b.sections,
		Dropped:  b.dropped,
	}
}
