package render

import (
	"fmt"
	"strings"

	"github.com/anime-shed/mindtrack-report/internal/canvas"
)

// summary card geometry
const (
	summaryPadding     = 60.0
	summaryCardTop     = 150.0
	summaryCardHeight  = 400.0
	summaryInner       = 40.0
	summaryBadgeHeight = 70.0
)

// layoutSummary builds the fixed-size share card.
func (r *Renderer) layoutSummary(in Input, m canvas.Measurer) *canvas.Document {
	res := in.Result
	width := float64(r.cfg.Width)
	height := float64(r.cfg.SummaryHeight)
	b := newBuilder(width, m)
	pad := summaryPadding

	// brand
	b.add(canvas.Circle{Center: canvas.Point{X: pad + 20, Y: 70}, Radius: 28, Fill: canvas.Solid(orangeAlpha(0.2))})
	b.add(brainIcon(canvas.Point{X: pad + 20, Y: 70}, 30)...)
	b.text(pad+60, 80, r.cfg.Brand, canvas.SansBold(42), White)
	b.text(pad+60, 105, "Mental Health Analysis Report", canvas.Sans(18), whiteAlpha(0.5))
	b.mark("header", 0, summaryCardTop)

	// result card
	cardX, cardY := pad, summaryCardTop
	cardW := width - 2*pad
	fill, stroke := glassPanel()
	b.panel(cardX, cardY, cardW, summaryCardHeight, 24, fill, stroke, cardShadow(0.5, 40, 10))

	y := cardY + summaryInner
	iconCenter := canvas.Point{X: cardX + summaryInner + 30, Y: y + 30}
	b.add(canvas.Circle{Center: iconCenter, Radius: 30, Fill: canvas.Solid(statusTint(res.Sentiment))})
	b.add(statusIcon(res.Sentiment, iconCenter, 32)...)

	b.text(cardX+summaryInner+80, y+15, "DETECTION STATUS", canvas.Sans(16), whiteAlpha(0.5))
	b.text(cardX+summaryInner+80, y+60, strings.ToUpper(string(res.Sentiment)), canvas.SansBold(56), StatusColor(res.Sentiment))

	y += 100
	b.text(cardX+summaryInner, y, statusDescription(res.Sentiment.IsNormal()), canvas.Sans(20), whiteAlpha(0.7))

	y += 50
	b.add(canvas.Line{
		From:   canvas.Point{X: cardX + summaryInner, Y: y},
		To:     canvas.Point{X: cardX + cardW - summaryInner, Y: y},
		Stroke: canvas.Stroke{Paint: canvas.Solid(whiteAlpha(0.1)), Width: 1},
	})

	y += 40
	statX := cardX + summaryInner
	statW := (cardW - 2*summaryInner) / 3
	b.text(statX, y, fmt.Sprintf("%d%%", res.ConfidencePercent()), canvas.SansBold(48), BrandOrange)
	b.text(statX, y+28, "Confidence", canvas.Sans(16), whiteAlpha(0.5))
	b.text(statX+statW, y, r.cfg.ModelName, canvas.SansBold(24), whiteAlpha(0.9))
	b.text(statX+statW, y+28, r.cfg.ModelParams+" parameters", canvas.Sans(16), whiteAlpha(0.5))
	b.text(statX+2*statW, y, r.cfg.DatasetSize, canvas.SansBold(24), whiteAlpha(0.9))
	b.text(statX+2*statW, y+28, "Training Data", canvas.Sans(16), whiteAlpha(0.5))
	b.mark("status", cardY, cardY+summaryCardHeight)

	y += 70
	if in.Source != nil {
		r.sourceBadge(b, cardX+summaryInner, y, cardW-2*summaryInner, in)
	}

	// footer
	footerY := cardY + summaryCardHeight + 30
	b.text(pad, footerY, "Generated on "+r.formatDate(res.Timestamp.Time), canvas.Sans(14), whiteAlpha(0.3))
	b.textAligned(width-pad, footerY, r.cfg.BrandURL, canvas.Sans(14), orangeAlpha(0.3), canvas.AlignRight)
	b.mark("footer", cardY+summaryCardHeight, height)

	b.backdrop(height, 6,
		canvas.Stop{Offset: 0, Color: backgroundDeep},
		canvas.Stop{Offset: 0.5, Color: backgroundMid},
		canvas.Stop{Offset: 1, Color: backgroundDeep},
	)
	return b.document(r.cfg.SummaryHeight)
}

func (r *Renderer) sourceBadge(b *builder, x, y, w float64, in Input) {
	b.panel(x, y, w, summaryBadgeHeight, 12,
		canvas.Solid(orangeAlpha(0.15)),
		&canvas.Stroke{Paint: canvas.Solid(orangeAlpha(0.3)), Width: 1},
		nil)
	b.add(linkIcon(canvas.Point{X: x + 32, Y: y + 35}, 26, BrandOrange)...)
	b.text(x+60, y+30, "Source: "+in.Source.Platform, canvas.SansBold(18), BrandOrange)
	b.text(x+60, y+52, "@"+in.Source.Author, canvas.Sans(16), whiteAlpha(0.6))
	b.mark("source", y, y+summaryBadgeHeight)
}

func statusDescription(normal bool) string {
	if normal {
		return "Emotional state appears healthy and balanced"
	}
	return "Indicators of stress or emotional distress detected"
}
