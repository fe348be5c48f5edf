package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Sentiment is the label assigned by the upstream classifier.
type Sentiment string

const (
	SentimentNormal   Sentiment = "Normal"
	SentimentStressed Sentiment = "Stressed"
)

// IsNormal reports whether the sentiment is the healthy label.
// Every other value, known or not, counts as stressed for layout purposes.
func (s Sentiment) IsNormal() bool {
	return s == SentimentNormal
}

// Priority ranks a suggestion. Unknown values are allowed and fall back to
// the brand colour when rendered.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Suggestion is one wellness recommendation attached to a result
type Suggestion struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Rationale   string   `json:"rationale,omitempty"`
	Priority    Priority `json:"priority,omitempty"`
}

// ClassificationResult is the record produced by the external analysis API
// for one piece of text. All list fields are optional; a nil slice is
// rendered the same as an empty one.
type ClassificationResult struct {
	Sentiment        Sentiment    `json:"sentiment"`
	Confidence       float64      `json:"confidence"`
	Timestamp        Timestamp    `json:"timestamp"`
	DetectedEmotions []string     `json:"detected_emotions,omitempty"`
	KeyConcerns      []string     `json:"key_concerns,omitempty"`
	AISuggestions    []Suggestion `json:"ai_suggestions,omitempty"`
	ImmediateActions []string     `json:"immediate_actions,omitempty"`
	AIGenerated      bool         `json:"ai_generated"`
}

// ConfidencePercent returns the confidence as a whole percentage
func (r *ClassificationResult) ConfidencePercent() int {
	return int(math.Floor(r.Confidence*100 + 0.5))
}

// HasIndicators reports whether either indicator list has entries
func (r *ClassificationResult) HasIndicators() bool {
	return len(r.DetectedEmotions) > 0 || len(r.KeyConcerns) > 0
}

// SourcePreview describes the social media post a result was derived from.
type SourcePreview struct {
	Platform string `json:"platform"`
	Author   string `json:"author"`
}

// Timestamp accepts either epoch milliseconds or an ISO-8601 string on
// input and always emits RFC 3339.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		t.Time = time.Time{}
		return nil
	}

	if raw[0] != '"' {
		ms, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid epoch timestamp %s: %w", raw, err)
		}
		t.Time = time.UnixMilli(int64(ms)).UTC()
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// MarshalJSON implements json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// ParseTimestamp parses the string forms accepted in result payloads,
// including numeric strings holding epoch milliseconds.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}
