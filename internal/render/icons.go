package render

import (
	"image/color"

	"github.com/anime-shed/mindtrack-report/internal/canvas"
	"github.com/anime-shed/mindtrack-report/pkg/models"
)

// Icons are drawn as shapes; the embedded fonts carry no emoji.

func checkIcon(c canvas.Point, size float64, col color.NRGBA) canvas.Op {
	return canvas.Polyline{
		Points: []canvas.Point{
			{X: c.X - 0.35*size, Y: c.Y},
			{X: c.X - 0.1*size, Y: c.Y + 0.25*size},
			{X: c.X + 0.35*size, Y: c.Y - 0.25*size},
		},
		Stroke: canvas.Stroke{Paint: canvas.Solid(col), Width: 0.14 * size},
	}
}

func warningIcon(c canvas.Point, size float64, col color.NRGBA) []canvas.Op {
	top := canvas.Point{X: c.X, Y: c.Y - 0.42*size}
	left := canvas.Point{X: c.X - 0.45*size, Y: c.Y + 0.36*size}
	right := canvas.Point{X: c.X + 0.45*size, Y: c.Y + 0.36*size}
	stroke := canvas.Stroke{Paint: canvas.Solid(col), Width: 0.09 * size}
	return []canvas.Op{
		canvas.Polyline{Points: []canvas.Point{top, right, left, top}, Stroke: stroke},
		canvas.Line{From: canvas.Point{X: c.X, Y: c.Y - 0.14*size}, To: canvas.Point{X: c.X, Y: c.Y + 0.1*size}, Stroke: stroke},
		canvas.Circle{Center: canvas.Point{X: c.X, Y: c.Y + 0.22*size}, Radius: 0.05 * size, Fill: canvas.Solid(col)},
	}
}

// statusIcon is a check for Normal and a warning sign otherwise
func statusIcon(s models.Sentiment, c canvas.Point, size float64) []canvas.Op {
	if s.IsNormal() {
		return []canvas.Op{checkIcon(c, size, StatusColor(s))}
	}
	return warningIcon(c, size, StatusColor(s))
}

// brainIcon draws two lobes split by a groove
func brainIcon(c canvas.Point, size float64) []canvas.Op {
	lobe := 0.3 * size
	return []canvas.Op{
		canvas.Circle{Center: canvas.Point{X: c.X - 0.18*size, Y: c.Y}, Radius: lobe, Fill: canvas.Solid(BrandOrange)},
		canvas.Circle{Center: canvas.Point{X: c.X + 0.18*size, Y: c.Y}, Radius: lobe, Fill: canvas.Solid(BrandOrange)},
		canvas.Line{
			From:   canvas.Point{X: c.X, Y: c.Y - lobe},
			To:     canvas.Point{X: c.X, Y: c.Y + lobe},
			Stroke: canvas.Stroke{Paint: canvas.Solid(backgroundDeep), Width: 0.06 * size},
		},
	}
}

// linkIcon draws two interlocked chain links
func linkIcon(c canvas.Point, size float64, col color.NRGBA) []canvas.Op {
	w, h := 0.6*size, 0.36*size
	stroke := &canvas.Stroke{Paint: canvas.Solid(col), Width: 0.1 * size}
	return []canvas.Op{
		canvas.RoundRect{X: c.X - 0.5*size, Y: c.Y - h/2, W: w, H: h, Radius: h / 2, Stroke: stroke},
		canvas.RoundRect{X: c.X - 0.1*size, Y: c.Y - h/2, W: w, H: h, Radius: h / 2, Stroke: stroke},
	}
}
