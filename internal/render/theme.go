package render

import (
	"image/color"

	"github.com/anime-shed/mindtrack-report/internal/canvas"
	"github.com/anime-shed/mindtrack-report/pkg/models"
)

// Palette
var (
	BrandOrange  = canvas.Hex("#FF7D29")
	BrandAmber   = canvas.Hex("#FF9D29")
	SuccessGreen = canvas.Hex("#10B981")
	DangerRed    = canvas.Hex("#EF4444")
	White        = canvas.Hex("#FFFFFF")

	backgroundDeep = canvas.Hex("#0A0A0B")
	backgroundMid  = canvas.Hex("#1A1A1B")
	backgroundLow  = canvas.Hex("#0F0F10")
)

var priorityColors = map[models.Priority]color.NRGBA{
	models.PriorityCritical: canvas.Hex("#EF4444"),
	models.PriorityHigh:     canvas.Hex("#F59E0B"),
	models.PriorityMedium:   canvas.Hex("#3B82F6"),
	models.PriorityLow:      canvas.Hex("#6B7280"),
}

// StatusColor maps a sentiment to the status colour. Only Normal is green.
func StatusColor(s models.Sentiment) color.NRGBA {
	if s.IsNormal() {
		return SuccessGreen
	}
	return DangerRed
}

// PriorityColor maps a suggestion priority to its badge colour, falling
// back to the brand orange for unknown or missing priorities.
func PriorityColor(p models.Priority) color.NRGBA {
	if c, ok := priorityColors[p]; ok {
		return c
	}
	return BrandOrange
}

// badge fills use the priority colour at 0x40 alpha
func priorityBadgeFill(p models.Priority) color.NRGBA {
	c := PriorityColor(p)
	c.A = 0x40
	return c
}

func whiteAlpha(alpha float64) color.NRGBA {
	return canvas.RGBA(255, 255, 255, alpha)
}

func orangeAlpha(alpha float64) color.NRGBA {
	return canvas.RGBA(255, 125, 41, alpha)
}

func statusTint(s models.Sentiment) color.NRGBA {
	return canvas.WithAlpha(StatusColor(s), 0.2)
}

func glassPanel() (canvas.Paint, *canvas.Stroke) {
	return canvas.Solid(whiteAlpha(0.05)), &canvas.Stroke{Paint: canvas.Solid(whiteAlpha(0.1)), Width: 2}
}

func cardShadow(alpha, blur, offsetY float64) *canvas.Shadow {
	return &canvas.Shadow{Color: canvas.RGBA(0, 0, 0, alpha), Blur: blur, OffsetY: offsetY}
}
