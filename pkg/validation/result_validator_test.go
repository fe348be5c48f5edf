package validation

import (
	"math"
	"strings"
	"testing"
	"time"

	apperrors "github.com/anime-shed/mindtrack-report/internal/errors"
	"github.com/anime-shed/mindtrack-report/pkg/models"
)

func validResult() *models.ClassificationResult {
	return &models.ClassificationResult{
		Sentiment:  models.SentimentStressed,
		Confidence: 0.924,
		Timestamp:  models.NewTimestamp(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
	}
}

func TestResultValidator_AcceptsValidResult(t *testing.T) {
	validator := NewResultValidator()

	if err := validator.ValidateResult(validResult()); err != nil {
		t.Fatalf("Expected valid result to pass, got: %v", err)
	}
	if issues := validator.Inspect(validResult()); len(issues) != 0 {
		t.Errorf("Expected no issues, got %v", issues)
	}
}

func TestResultValidator_BlockingIssues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *models.ClassificationResult)
		field  string
	}{
		{"empty sentiment", func(r *models.ClassificationResult) { r.Sentiment = "  " }, "sentiment"},
		{"negative confidence", func(r *models.ClassificationResult) { r.Confidence = -0.01 }, "confidence"},
		{"confidence above one", func(r *models.ClassificationResult) { r.Confidence = 1.01 }, "confidence"},
		{"NaN confidence", func(r *models.ClassificationResult) { r.Confidence = math.NaN() }, "confidence"},
		{"missing timestamp", func(r *models.ClassificationResult) { r.Timestamp = models.Timestamp{} }, "timestamp"},
	}

	validator := NewResultValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validResult()
			tt.mutate(result)

			issues := validator.Inspect(result)
			if !HasCriticalIssues(issues) {
				t.Fatalf("Expected a critical issue, got %v", issues)
			}
			if issues[0].Field != tt.field {
				t.Errorf("Expected issue on %s, got %s", tt.field, issues[0].Field)
			}

			err := validator.ValidateResult(result)
			if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}
}

func TestResultValidator_BoundaryConfidenceAccepted(t *testing.T) {
	validator := NewResultValidator()
	for _, c := range []float64{0, 1} {
		result := validResult()
		result.Confidence = c
		if err := validator.ValidateResult(result); err != nil {
			t.Errorf("Expected confidence %v to pass, got %v", c, err)
		}
	}
}

func TestResultValidator_NilResult(t *testing.T) {
	err := NewResultValidator().ValidateResult(nil)
	if err == nil {
		t.Fatal("Expected nil result to fail validation")
	}
}

func TestResultValidator_OverflowIsWarningOnly(t *testing.T) {
	result := validResult()
	result.DetectedEmotions = []string{"a", "b", "c", "d", "e", "f", "g"}
	result.ImmediateActions = []string{"1", "2", "3", "4"}

	validator := NewResultValidator()
	issues := validator.Inspect(result)
	if len(issues) != 1 {
		t.Fatalf("Expected one warning, got %v", issues)
	}
	if issues[0].Severity != "warning" || issues[0].Field != "detected_emotions" {
		t.Errorf("Unexpected issue %+v", issues[0])
	}
	if !strings.Contains(issues[0].Message, "5 of 7") {
		t.Errorf("Unexpected message %q", issues[0].Message)
	}
	if err := validator.ValidateResult(result); err != nil {
		t.Errorf("Expected warnings not to block rendering, got %v", err)
	}
	if msgs := ConvertIssuesToMessages(issues); len(msgs) != 1 {
		t.Errorf("Expected one message, got %v", msgs)
	}
}

func TestResultValidator_ValidateText(t *testing.T) {
	limits := DefaultResultLimits()
	limits.MaxTextLength = 10
	validator := &ResultValidator{limits: limits}

	if err := validator.ValidateText("feeling ok"); err != nil {
		t.Errorf("Expected text to pass, got %v", err)
	}
	if err := validator.ValidateText("   "); err == nil {
		t.Error("Expected blank text to fail")
	}
	if err := validator.ValidateText("much too long for ten"); err == nil {
		t.Error("Expected long text to fail")
	}
	// runes, not bytes
	if err := validator.ValidateText("ääääääääää"); err != nil {
		t.Errorf("Expected ten runes to pass, got %v", err)
	}
}
