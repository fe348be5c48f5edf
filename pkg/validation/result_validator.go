package validation

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	apperrors "github.com/anime-shed/mindtrack-report/internal/errors"
	"github.com/anime-shed/mindtrack-report/pkg/models"
)

// ResultLimits defines bounds a classification result must respect before
// it is rendered
type ResultLimits struct {
	MinConfidence float64
	MaxConfidence float64

	// Lists longer than these are accepted but only partially rendered
	MaxRenderedEmotions    int
	MaxRenderedConcerns    int
	MaxRenderedSuggestions int
	MaxRenderedActions     int

	// MaxTextLength bounds text submitted for analysis, in runes
	MaxTextLength int
}

// DefaultResultLimits returns the default limits
func DefaultResultLimits() ResultLimits {
	return ResultLimits{
		MinConfidence:          0,
		MaxConfidence:          1,
		MaxRenderedEmotions:    5,
		MaxRenderedConcerns:    5,
		MaxRenderedSuggestions: 3,
		MaxRenderedActions:     4,
		MaxTextLength:          10000,
	}
}

// ResultIssue represents a single problem found in a result
type ResultIssue struct {
	Field    string `json:"field"`
	Message  string `json:"message"`
	Severity string `json:"severity"` // "error", "warning"
}

// ResultValidator checks classification results before rendering
type ResultValidator struct {
	limits ResultLimits
}

// NewResultValidator creates a result validator with default limits
func NewResultValidator() *ResultValidator {
	return &ResultValidator{limits: DefaultResultLimits()}
}

// Inspect returns every issue found in the result. Errors block rendering;
// warnings describe content that will be cut from the image.
func (v *ResultValidator) Inspect(result *models.ClassificationResult) []ResultIssue {
	if result == nil {
		return []ResultIssue{{Field: "result", Message: "result is required", Severity: "error"}}
	}

	var issues []ResultIssue

	if strings.TrimSpace(string(result.Sentiment)) == "" {
		issues = append(issues, ResultIssue{
			Field:    "sentiment",
			Message:  "sentiment is required",
			Severity: "error",
		})
	}

	if math.IsNaN(result.Confidence) || result.Confidence < v.limits.MinConfidence || result.Confidence > v.limits.MaxConfidence {
		issues = append(issues, ResultIssue{
			Field:    "confidence",
			Message:  fmt.Sprintf("confidence must be between %g and %g", v.limits.MinConfidence, v.limits.MaxConfidence),
			Severity: "error",
		})
	}

	if result.Timestamp.IsZero() {
		issues = append(issues, ResultIssue{
			Field:    "timestamp",
			Message:  "timestamp is required",
			Severity: "error",
		})
	}

	issues = appendOverflow(issues, "detected_emotions", len(result.DetectedEmotions), v.limits.MaxRenderedEmotions)
	issues = appendOverflow(issues, "key_concerns", len(result.KeyConcerns), v.limits.MaxRenderedConcerns)
	issues = appendOverflow(issues, "ai_suggestions", len(result.AISuggestions), v.limits.MaxRenderedSuggestions)
	issues = appendOverflow(issues, "immediate_actions", len(result.ImmediateActions), v.limits.MaxRenderedActions)

	return issues
}

func appendOverflow(issues []ResultIssue, field string, n, limit int) []ResultIssue {
	if limit <= 0 || n <= limit {
		return issues
	}
	return append(issues, ResultIssue{
		Field:    field,
		Message:  fmt.Sprintf("only the first %d of %d entries are shown", limit, n),
		Severity: "warning",
	})
}

// ValidateResult returns a validation error describing every blocking issue,
// or nil when the result can be rendered
func (v *ResultValidator) ValidateResult(result *models.ClassificationResult) error {
	issues := v.Inspect(result)
	if !HasCriticalIssues(issues) {
		return nil
	}
	var messages []string
	for _, issue := range issues {
		if issue.Severity == "error" {
			messages = append(messages, issue.Message)
		}
	}
	return apperrors.NewValidationError("Invalid classification result", fmt.Errorf("%s", strings.Join(messages, "; ")))
}

// ValidateText checks text submitted for analysis
func (v *ResultValidator) ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return apperrors.NewValidationError("Text is required", nil)
	}
	if v.limits.MaxTextLength > 0 && utf8.RuneCountInString(text) > v.limits.MaxTextLength {
		return apperrors.NewValidationError(fmt.Sprintf("Text exceeds %d characters", v.limits.MaxTextLength), nil)
	}
	return nil
}

// ConvertIssuesToMessages flattens issues to their messages
func ConvertIssuesToMessages(issues []ResultIssue) []string {
	var messages []string
	for _, issue := range issues {
		messages = append(messages, issue.Message)
	}
	return messages
}

// HasCriticalIssues checks if there are any error severity issues
func HasCriticalIssues(issues []ResultIssue) bool {
	for _, issue := range issues {
		if issue.Severity == "error" {
			return true
		}
	}
	return false
}
