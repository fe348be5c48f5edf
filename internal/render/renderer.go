// Package render lays out MindTrack analysis reports as paint operations
// and rasterizes them.
package render

import (
	"fmt"
	"image"
	"time"

	"github.com/anime-shed/mindtrack-report/internal/canvas"
	apperrors "github.com/anime-shed/mindtrack-report/internal/errors"
	"github.com/anime-shed/mindtrack-report/pkg/models"
	"github.com/anime-shed/mindtrack-report/pkg/validation"
)

// DateLayout formats report timestamps, e.g. "Jan 2, 2006, 03:04 PM"
const DateLayout = "Jan 2, 2006, 03:04 PM"

// Config holds the page geometry and the overflow tunables of the
// complete layout.
type Config struct {
	Width         int
	SummaryHeight int

	// MaxHeight is the page budget of the complete layout. Suggestion cards
	// starting below MaxHeight-SuggestionReserve are dropped and the actions
	// section is skipped when it would start at or below
	// MaxHeight-ActionsReserve.
	MaxHeight         int
	SuggestionReserve int
	ActionsReserve    int

	// ConcernsColumnMinHeight is the indicator card height the concerns
	// column needs before it is drawn.
	ConcernsColumnMinHeight int

	Brand       string
	BrandURL    string
	ModelName   string
	ModelParams string
	DatasetSize string
	Location    *time.Location
}

// DefaultConfig returns the standard report geometry
func DefaultConfig() Config {
	return Config{
		Width:                   1200,
		SummaryHeight:           630,
		MaxHeight:               3200,
		SuggestionReserve:       600,
		ActionsReserve:          500,
		ConcernsColumnMinHeight: 200,
		Brand:                   "MindTrack AI",
		BrandURL:                "mindtrack.ai",
		ModelName:               "DistilBERT",
		ModelParams:             "66.9M",
		DatasetSize:             "359K posts",
		Location:                time.UTC,
	}
}

// Input is everything a report is derived from. GeneratedAt stamps the
// complete report; the summary shows the result's own timestamp.
type Input struct {
	Result      *models.ClassificationResult
	Source      *models.SourcePreview
	GeneratedAt time.Time
}

// Report is a laid out and rasterized report
type Report struct {
	Mode     models.ReportMode
	Document *canvas.Document
	Image    *image.RGBA
}

// Renderer turns classification results into report images. It holds no
// per-render state and is safe for concurrent use.
type Renderer struct {
	cfg       Config
	fonts     *canvas.FontSet
	validator *validation.ResultValidator
}

// New creates a renderer. A nil font set selects the embedded Go fonts.
func New(cfg Config, fonts *canvas.FontSet) (*Renderer, error) {
	if cfg.Width <= 0 || cfg.SummaryHeight <= 0 || cfg.MaxHeight <= 0 {
		return nil, fmt.Errorf("invalid render geometry %dx%d (max %d)", cfg.Width, cfg.SummaryHeight, cfg.MaxHeight)
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if fonts == nil {
		var err error
		fonts, err = canvas.DefaultFonts()
		if err != nil {
			return nil, fmt.Errorf("load fonts: %w", err)
		}
	}
	return &Renderer{cfg: cfg, fonts: fonts, validator: validation.NewResultValidator()}, nil
}

// Config returns the renderer configuration
func (r *Renderer) Config() Config {
	return r.cfg
}

// Layout validates the input and builds the paint document for mode,
// measuring text with m.
func (r *Renderer) Layout(mode models.ReportMode, in Input, m canvas.Measurer) (*canvas.Document, error) {
	if err := r.validator.ValidateResult(in.Result); err != nil {
		return nil, err
	}
	switch mode {
	case models.ModeSummary:
		return r.layoutSummary(in, m), nil
	case models.ModeComplete:
		return r.layoutComplete(in, m), nil
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown report mode %q", mode), nil)
	}
}

// Render lays out and rasterizes a report. Each call builds its own font
// faces, so concurrent renders share nothing mutable.
func (r *Renderer) Render(mode models.ReportMode, in Input) (*Report, error) {
	faces := r.fonts.NewFaces()
	defer faces.Close()

	doc, err := r.Layout(mode, in, faces)
	if err != nil {
		return nil, err
	}
	img, err := canvas.Rasterize(doc, r.fonts)
	if err != nil {
		return nil, apperrors.NewEncodingError("Failed to rasterize report", err)
	}
	return &Report{Mode: mode, Document: doc, Image: img}, nil
}

// Text returns every string drawn by the report, in paint order
func (rep *Report) Text() []string {
	var out []string
	for _, t := range rep.Document.Texts() {
		out = append(out, t.Text)
	}
	return out
}

func (r *Renderer) formatDate(t time.Time) string {
	return t.In(r.cfg.Location).Format(DateLayout)
}
