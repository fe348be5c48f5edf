//go:build ocr

package tesseract

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/anime-shed/mindtrack-report/internal/canvas"
	"github.com/anime-shed/mindtrack-report/internal/legibility"
)

func TestEngine_ReadsRenderedText(t *testing.T) {
	engine, err := New("eng")
	if err != nil {
		t.Skipf("tesseract unavailable: %v", err)
	}
	defer engine.Close()

	doc := &canvas.Document{
		Width:  600,
		Height: 120,
		Ops: []canvas.Op{
			canvas.Rect{W: 600, H: 120, Fill: canvas.Solid(canvas.Hex("#0F0F1E"))},
			canvas.Text{Pos: canvas.Point{X: 30, Y: 75}, Text: "DETECTION STATUS", Font: canvas.SansBold(40), Color: canvas.Hex("#FFFFFF")},
		},
	}
	fonts, err := canvas.DefaultFonts()
	require.NoError(t, err)
	img, err := canvas.Rasterize(doc, fonts)
	require.NoError(t, err)

	text, err := engine.Recognize(context.Background(), legibility.Prepare(img))
	if err != nil {
		t.Skipf("tesseract could not run: %v", err)
	}
	require.Contains(t, strings.ToUpper(text), "STATUS")
}
