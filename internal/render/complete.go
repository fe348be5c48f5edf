package render

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/anime-shed/mindtrack-report/internal/canvas"
	"github.com/anime-shed/mindtrack-report/pkg/models"
)

// complete layout geometry
const (
	completePadding      = 60.0
	headerHeight         = 210.0
	statusCardHeight     = 220.0
	statusAdvance        = 280.0
	sectionHeading       = 70.0
	indicatorRow         = 38.0
	indicatorCardMax     = 300.0
	suggestionCardMax    = 400.0
	actionsCardMax       = 400.0
	actionLineHeight     = 32.0
	footerBottomMargin   = 40.0
	maxIndicatorsPerList = 5
	maxSuggestions       = 3
	maxActions           = 4
)

const (
	disclaimerInformational = "This report is for informational purposes only and not a substitute for professional medical advice."
	disclaimerCrisis        = "If you're in crisis, please contact a mental health professional or emergency services."
)

// layoutComplete builds the full report. Sections follow each other down
// the page and the canvas height is wherever the footer ends.
func (r *Renderer) layoutComplete(in Input, m canvas.Measurer) *canvas.Document {
	b := newBuilder(float64(r.cfg.Width), m)

	r.completeHeader(b, in)
	r.completeStatus(b, in.Result)
	if in.Result.HasIndicators() {
		r.completeIndicators(b, in.Result)
	}
	if len(in.Result.AISuggestions) > 0 {
		r.completeRecommendations(b, in.Result)
	}
	if len(in.Result.ImmediateActions) > 0 {
		if b.y < float64(r.cfg.MaxHeight-r.cfg.ActionsReserve) {
			r.completeActions(b, in.Result.ImmediateActions)
		} else {
			b.dropped++
		}
	}
	r.completeFooter(b)

	height := int(math.Ceil(b.y))
	b.backdrop(float64(height), 8,
		canvas.Stop{Offset: 0, Color: backgroundDeep},
		canvas.Stop{Offset: 0.4, Color: backgroundMid},
		canvas.Stop{Offset: 0.7, Color: backgroundLow},
		canvas.Stop{Offset: 1, Color: backgroundDeep},
	)
	return b.document(height)
}

func (r *Renderer) cardWidth() float64 {
	return float64(r.cfg.Width) - 2*completePadding
}

func (r *Renderer) completeHeader(b *builder, in Input) {
	pad := completePadding
	y := 80.0
	b.add(canvas.Circle{Center: canvas.Point{X: pad + 24, Y: y}, Radius: 32, Fill: canvas.Solid(orangeAlpha(0.2))})
	b.add(brainIcon(canvas.Point{X: pad + 24, Y: y}, 34)...)
	b.text(pad+75, y+10, r.cfg.Brand, canvas.SansBold(52), White)
	b.text(pad+75, y+42, "Complete Mental Health Analysis Report", canvas.Sans(22), whiteAlpha(0.5))
	b.text(pad+75, y+68, "Generated: "+r.formatDate(in.GeneratedAt), canvas.Sans(18), whiteAlpha(0.3))

	b.y = headerHeight
	b.mark("header", 0, b.y)
}

func (r *Renderer) completeStatus(b *builder, res *models.ClassificationResult) {
	pad, inner := completePadding, 40.0
	top := b.y
	cardW := r.cardWidth()
	fill, stroke := glassPanel()
	b.panel(pad, top, cardW, statusCardHeight, 20, fill, stroke, cardShadow(0.5, 40, 10))

	y := top + inner
	iconCenter := canvas.Point{X: pad + inner + 35, Y: y + 35}
	b.add(canvas.Circle{Center: iconCenter, Radius: 35, Fill: canvas.Solid(statusTint(res.Sentiment))})
	b.add(statusIcon(res.Sentiment, iconCenter, 36)...)

	b.text(pad+inner+90, y+15, "DETECTION STATUS", canvas.Sans(18), whiteAlpha(0.5))
	b.text(pad+inner+90, y+70, strings.ToUpper(string(res.Sentiment)), canvas.SansBold(64), StatusColor(res.Sentiment))

	y += 95
	b.text(pad+inner, y, statusDescription(res.Sentiment.IsNormal()), canvas.Sans(22), whiteAlpha(0.7))

	y += 45
	b.add(canvas.Line{
		From:   canvas.Point{X: pad + inner, Y: y},
		To:     canvas.Point{X: pad + cardW - inner, Y: y},
		Stroke: canvas.Stroke{Paint: canvas.Solid(whiteAlpha(0.1)), Width: 1},
	})

	y += 40
	statX := pad + inner
	statW := (cardW - 2*inner) / 3
	b.text(statX, y, fmt.Sprintf("%d%%", res.ConfidencePercent()), canvas.SansBold(52), BrandOrange)
	b.text(statX, y+28, "Confidence", canvas.Sans(16), whiteAlpha(0.5))
	b.text(statX+statW, y, r.cfg.ModelName, canvas.SansBold(26), whiteAlpha(0.9))
	b.text(statX+statW, y+28, r.cfg.ModelParams+" params", canvas.Sans(16), whiteAlpha(0.5))
	b.text(statX+2*statW, y, r.cfg.DatasetSize, canvas.SansBold(26), whiteAlpha(0.9))
	b.text(statX+2*statW, y+28, "Training Data", canvas.Sans(16), whiteAlpha(0.5))

	b.y = top + statusAdvance
	b.mark("status", top, b.y)
}

// IndicatorCardHeight sizes the indicator card from the longer list
func IndicatorCardHeight(emotions, concerns int) float64 {
	return math.Min(indicatorCardMax, 60+float64(max(emotions, concerns))*45)
}

func (r *Renderer) completeIndicators(b *builder, res *models.ClassificationResult) {
	top := b.y
	b.heading("Key Indicators", "Detected patterns from your content", whiteAlpha(0.5))

	cardY := b.y
	cardW := r.cardWidth()
	cardH := IndicatorCardHeight(len(res.DetectedEmotions), len(res.KeyConcerns))
	fill, stroke := glassPanel()
	b.panel(completePadding, cardY, cardW, cardH, 16, fill, stroke, cardShadow(0.3, 30, 8))

	if len(res.DetectedEmotions) > 0 {
		b.indicatorColumn("Emotions", res.DetectedEmotions, completePadding+35, cardY+40)
	}
	if len(res.KeyConcerns) > 0 && cardH > float64(r.cfg.ConcernsColumnMinHeight) {
		b.indicatorColumn("Concerns", res.KeyConcerns, completePadding+cardW/2+20, cardY+40)
	}

	b.y = cardY + cardH + 60
	b.mark("indicators", top, b.y)
}

func (b *builder) indicatorColumn(title string, entries []string, x, y float64) {
	b.text(x, y, title, canvas.SansBold(22), BrandOrange)
	y += 35
	for _, entry := range entries[:min(len(entries), maxIndicatorsPerList)] {
		b.add(canvas.Circle{Center: canvas.Point{X: x + 6, Y: y - 6}, Radius: 4, Fill: canvas.Solid(orangeAlpha(0.6))})
		b.text(x+20, y, TruncateLabel(entry), canvas.Sans(20), whiteAlpha(0.9))
		y += indicatorRow
	}
}

// EstimateSuggestionHeight pre-sizes a suggestion card from character
// counts. It is an approximation of the wrapped height, capped at 400 px.
func EstimateSuggestionHeight(s models.Suggestion, cardWidth float64) float64 {
	textW := cardWidth - 100
	h := 180.0
	if s.Description != "" {
		h += math.Ceil(float64(utf8.RuneCountInString(s.Description))*12/textW) * 34
	}
	if s.Rationale != "" {
		h += math.Ceil(float64(utf8.RuneCountInString(s.Rationale))*10/textW)*30 + 20
	}
	return math.Min(h, suggestionCardMax)
}

func (r *Renderer) completeRecommendations(b *builder, res *models.ClassificationResult) {
	top := b.y
	if res.AIGenerated {
		b.add(checkIcon(canvas.Point{X: completePadding + 8, Y: b.y + 14}, 16, SuccessGreen))
		b.headingIndented("AI-Powered Recommendations", "Generated by Google Gemini AI", SuccessGreen, 22)
	} else {
		b.heading("AI-Powered Recommendations", "Standard recommendations", whiteAlpha(0.5))
	}

	cardW := r.cardWidth()
	limit := float64(r.cfg.MaxHeight - r.cfg.SuggestionReserve)
	for i, s := range res.AISuggestions[:min(len(res.AISuggestions), maxSuggestions)] {
		if b.y > limit {
			b.dropped++
			continue
		}
		cardH := EstimateSuggestionHeight(s, cardW)
		b.suggestionCard(i, s, cardW, cardH)
		b.y += cardH + 30
	}

	b.y += 30
	b.mark("recommendations", top, b.y)
}

func (b *builder) suggestionCard(index int, s models.Suggestion, cardW, cardH float64) {
	cardY := b.y
	b.panel(completePadding, cardY, cardW, cardH, 16,
		canvas.Solid(whiteAlpha(0.05)),
		&canvas.Stroke{Paint: canvas.Solid(orangeAlpha(0.1)), Width: 2},
		cardShadow(0.3, 25, 8))

	x := completePadding + 35
	y := cardY + 35

	label := "PRIORITY"
	if s.Priority != "" {
		label = strings.ToUpper(string(s.Priority))
	}
	b.panel(x, y-8, 90, 32, 16, canvas.Solid(priorityBadgeFill(s.Priority)), nil, nil)
	b.text(x+12, y+12, label, canvas.SansBold(16), PriorityColor(s.Priority))

	title := TruncateTitle(fmt.Sprintf("%d. %s", index+1, s.Title))
	b.text(x, y+60, title, canvas.SansBold(28), White)

	y += 90
	textW := cardW - 100
	if s.Description != "" {
		y = b.wrapText(s.Description, x, y, textW, 34, canvas.Sans(20), whiteAlpha(0.8))
		y += 20
	}
	if s.Rationale != "" && y < cardY+cardH-40 {
		b.wrapText(s.Rationale, x, y, textW, 30, canvas.SansItalic(18), orangeAlpha(0.8))
	}
}

// ActionsCardHeight sizes the actions card from the number of actions
func ActionsCardHeight(n int) float64 {
	return math.Min(actionsCardMax, 80+float64(n)*60)
}

func (r *Renderer) completeActions(b *builder, actions []string) {
	top := b.y
	b.heading("Take Action Now", "Quick steps you can do right now", whiteAlpha(0.5))

	cardY := b.y
	cardW := r.cardWidth()
	cardH := ActionsCardHeight(len(actions))
	b.panel(completePadding, cardY, cardW, cardH, 16,
		canvas.Solid(orangeAlpha(0.08)),
		&canvas.Stroke{Paint: canvas.Solid(orangeAlpha(0.3)), Width: 2},
		cardShadow(0.3, 25, 8))

	x := completePadding + 40
	y := cardY + 45
	for i, action := range actions[:min(len(actions), maxActions)] {
		if y > cardY+cardH-50 {
			b.dropped++
			continue
		}
		b.add(canvas.Circle{Center: canvas.Point{X: x + 18, Y: y - 6}, Radius: 18, Fill: canvas.Solid(BrandOrange)})
		b.textAligned(x+18, y+2, fmt.Sprintf("%d", i+1), canvas.SansBold(20), White, canvas.AlignCenter)
		end := b.wrapText(action, x+50, y, cardW-120, actionLineHeight, canvas.Sans(22), whiteAlpha(0.95))
		y = end + 38
	}

	b.y = cardY + cardH + 50
	b.mark("actions", top, b.y)
}

func (r *Renderer) completeFooter(b *builder) {
	top := b.y
	pad := completePadding
	width := float64(r.cfg.Width)
	cardW := r.cardWidth()

	rule := canvas.NewLinearGradient(canvas.Point{X: pad, Y: top}, canvas.Point{X: width - pad, Y: top},
		canvas.Stop{Offset: 0, Color: orangeAlpha(0)},
		canvas.Stop{Offset: 0.5, Color: orangeAlpha(0.5)},
		canvas.Stop{Offset: 1, Color: orangeAlpha(0)},
	)
	b.add(canvas.Line{
		From:   canvas.Point{X: pad, Y: top},
		To:     canvas.Point{X: width - pad, Y: top},
		Stroke: canvas.Stroke{Paint: canvas.Paint{Gradient: rule}, Width: 2},
	})

	y := top + 45
	y = b.wrapText(disclaimerInformational, pad, y, cardW, 32, canvas.Sans(17), whiteAlpha(0.4))
	y += 10
	y = b.wrapText(disclaimerCrisis, pad, y, cardW, 32, canvas.Sans(17), whiteAlpha(0.4))
	y += 50

	b.text(pad, y, r.cfg.Brand, canvas.SansBold(20), BrandOrange)
	b.textAligned(width-pad, y, r.cfg.BrandURL, canvas.Sans(16), whiteAlpha(0.3), canvas.AlignRight)

	b.y = y + footerBottomMargin
	b.mark("footer", top, b.y)
}
