package models

// ReportMode selects the report layout
type ReportMode string

const (
	// ModeSummary is the fixed-size single card image
	ModeSummary ReportMode = "summary"
	// ModeComplete is the variable-height multi-section image
	ModeComplete ReportMode = "complete"
)

// Valid reports whether m names a known layout
func (m ReportMode) Valid() bool {
	return m == ModeSummary || m == ModeComplete
}

// ReportRequest carries an already classified result to be rendered.
// Shared by the HTTP transport and the CLI input files.
type ReportRequest struct {
	Result        *ClassificationResult `json:"result" binding:"required"`
	SourcePreview *SourcePreview        `json:"source_preview,omitempty"`
	Archive       bool                  `json:"archive,omitempty"`
}

// AnalyzeRequest asks the upstream API to classify text, or a social media
// post behind a URL, before rendering. Exactly one of Text or URL is set.
type AnalyzeRequest struct {
	Text    string `json:"text,omitempty"`
	URL     string `json:"url,omitempty"`
	Archive bool   `json:"archive,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
