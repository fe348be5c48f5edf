package canvas

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rasterize(t *testing.T, doc *Document) *imageProbe {
	t.Helper()
	fonts, err := DefaultFonts()
	require.NoError(t, err)
	img, err := Rasterize(doc, fonts)
	require.NoError(t, err)
	return &imageProbe{t: t, at: func(x, y int) color.NRGBA {
		return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	}}
}

type imageProbe struct {
	t  *testing.T
	at func(x, y int) color.NRGBA
}

func (p *imageProbe) is(x, y int, want color.NRGBA) {
	p.t.Helper()
	assert.Equal(p.t, want, p.at(x, y), "pixel (%d,%d)", x, y)
}

func TestRasterize_RejectsEmptyCanvas(t *testing.T) {
	fonts, err := DefaultFonts()
	require.NoError(t, err)

	_, err = Rasterize(&Document{Width: 0, Height: 10}, fonts)
	assert.Error(t, err)
	_, err = Rasterize(&Document{Width: 10, Height: 10}, nil)
	assert.Error(t, err)
}

func TestRasterize_FillsRectangle(t *testing.T) {
	red := Hex("#EF4444")
	probe := rasterize(t, &Document{
		Width: 40, Height: 40,
		Ops: []Op{Rect{X: 10, Y: 10, W: 20, H: 20, Fill: Solid(red)}},
	})

	probe.is(20, 20, red)
	probe.is(5, 5, Transparent)
	probe.is(35, 35, Transparent)
}

func TestRasterize_ClipsShapesOutsideCanvas(t *testing.T) {
	green := Hex("#10B981")
	probe := rasterize(t, &Document{
		Width: 20, Height: 20,
		Ops: []Op{
			Rect{X: -50, Y: -50, W: 60, H: 60, Fill: Solid(green)},
			Circle{Center: Point{X: 500, Y: 500}, Radius: 10, Fill: Solid(green)},
		},
	})

	probe.is(5, 5, green)
	probe.is(15, 15, Transparent)
}

func TestRasterize_RoundRectStrokeLeavesInteriorEmpty(t *testing.T) {
	orange := Hex("#FF7D29")
	probe := rasterize(t, &Document{
		Width: 100, Height: 100,
		Ops: []Op{RoundRect{
			X: 10, Y: 10, W: 80, H: 80, Radius: 10,
			Stroke: &Stroke{Paint: Solid(orange), Width: 4},
		}},
	})

	probe.is(50, 10, orange)
	probe.is(50, 50, Transparent)
	// corners are rounded off
	probe.is(9, 9, Transparent)
}

func TestRasterize_GradientRunsAlongAxis(t *testing.T) {
	from, to := Hex("#000000"), Hex("#FFFFFF")
	g := NewLinearGradient(Point{X: 0, Y: 0}, Point{X: 100, Y: 0},
		Stop{Offset: 1, Color: to}, Stop{Offset: 0, Color: from})
	probe := rasterize(t, &Document{
		Width: 100, Height: 10,
		Ops: []Op{Rect{X: 0, Y: 0, W: 100, H: 10, Fill: Paint{Gradient: g}}},
	})

	left, right := probe.at(2, 5), probe.at(97, 5)
	assert.Less(t, left.R, uint8(20))
	assert.Greater(t, right.R, uint8(235))
	mid := probe.at(50, 5)
	assert.InDelta(t, 128, int(mid.R), 8)
}

func TestRasterize_DrawsText(t *testing.T) {
	white := Hex("#FFFFFF")
	doc := &Document{
		Width: 200, Height: 60,
		Ops: []Op{Text{Pos: Point{X: 100, Y: 40}, Text: "MindTrack", Font: SansBold(24), Color: white, Align: AlignCenter}},
	}
	fonts, err := DefaultFonts()
	require.NoError(t, err)
	img, err := Rasterize(doc, fonts)
	require.NoError(t, err)

	inked := 0
	minX, maxX := 200, 0
	for y := 0; y < 60; y++ {
		for x := 0; x < 200; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a > 0 {
				inked++
				minX = min(minX, x)
				maxX = max(maxX, x)
			}
		}
	}
	require.Positive(t, inked)
	// centred on x=100
	assert.InDelta(t, 100, (minX+maxX)/2, 4)
}

func TestRasterize_ShadowDarkensBelowPanel(t *testing.T) {
	probe := rasterize(t, &Document{
		Width: 100, Height: 100,
		Ops: []Op{
			Rect{X: 0, Y: 0, W: 100, H: 100, Fill: Solid(Hex("#FFFFFF"))},
			RoundRect{
				X: 20, Y: 20, W: 60, H: 40, Radius: 8,
				Fill:   Solid(Hex("#1A1A1B")),
				Shadow: &Shadow{Color: RGBA(0, 0, 0, 0.5), Blur: 20, OffsetY: 10},
			},
		},
	})

	below := probe.at(50, 66)
	assert.Less(t, below.R, uint8(255))
	probe.is(50, 95, Hex("#FFFFFF"))
}

func TestFaces_MeasureGrowsWithTextAndSize(t *testing.T) {
	fonts, err := DefaultFonts()
	require.NoError(t, err)
	faces := fonts.NewFaces()
	defer faces.Close()

	short := faces.Measure("Stress", Sans(20))
	long := faces.Measure("Stressed out", Sans(20))
	bigger := faces.Measure("Stress", Sans(40))

	assert.Positive(t, short)
	assert.Greater(t, long, short)
	assert.InDelta(t, short*2, bigger, 1)
	assert.Zero(t, faces.Measure("", Sans(20)))
}

func TestFaces_RejectsInvalidSize(t *testing.T) {
	fonts, err := DefaultFonts()
	require.NoError(t, err)
	faces := fonts.NewFaces()

	_, err = faces.Face(Sans(0))
	assert.Error(t, err)
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{in: "#FF7D29", want: color.NRGBA{R: 0xFF, G: 0x7D, B: 0x29, A: 0xFF}},
		{in: "#EF444440", want: color.NRGBA{R: 0xEF, G: 0x44, B: 0x44, A: 0x40}},
		{in: "10B981", want: color.NRGBA{R: 0x10, G: 0xB9, B: 0x81, A: 0xFF}},
		{in: "#FFF", wantErr: true},
		{in: "#GGGGGG", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRGBA_ClampsAlpha(t *testing.T) {
	assert.Equal(t, uint8(0), RGBA(0, 0, 0, -1).A)
	assert.Equal(t, uint8(255), RGBA(0, 0, 0, 3).A)
	assert.Equal(t, uint8(128), WithAlpha(Hex("#000000"), 0.5).A)
}

func TestDocument_TextsIn(t *testing.T) {
	doc := &Document{
		Ops: []Op{
			Text{Pos: Point{Y: 10}, Text: "header"},
			Rect{},
			Text{Pos: Point{Y: 120}, Text: "body"},
		},
		Sections: []Section{{Name: "header", Top: 0, Height: 100}, {Name: "body", Top: 100, Height: 50}},
	}

	require.Len(t, doc.Texts(), 2)
	body := doc.TextsIn("body")
	require.Len(t, body, 1)
	assert.Equal(t, "body", body[0].Text)
	assert.Nil(t, doc.TextsIn("missing"))
}

func TestLinearGradient_At(t *testing.T) {
	black, white := Hex("#000000"), Hex("#FFFFFF")
	g := NewLinearGradient(Point{X: 0, Y: 0}, Point{X: 0, Y: 100}, Stop{Offset: 0, Color: black}, Stop{Offset: 1, Color: white})

	assert.Equal(t, black, g.At(0, -10))
	assert.Equal(t, white, g.At(0, 200))
	assert.Equal(t, uint8(128), g.At(50, 50).R)

	assert.Equal(t, Transparent, (&LinearGradient{}).At(1, 1))
}
