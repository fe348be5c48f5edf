package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassificationResult_UnmarshalUpstreamPayload(t *testing.T) {
	payload := `{
		"sentiment": "Stressed",
		"confidence": 0.924,
		"timestamp": 1767225600000,
		"detected_emotions": ["anxious", "tired"],
		"key_concerns": ["Work Stress"],
		"ai_suggestions": [{"priority": "high", "title": "Take a break", "description": "Step away.", "rationale": "Rest helps."}],
		"immediate_actions": ["Drink water"],
		"ai_generated": true,
		"message": "ignored"
	}`

	var result ClassificationResult
	require.NoError(t, json.Unmarshal([]byte(payload), &result))

	assert.Equal(t, SentimentStressed, result.Sentiment)
	assert.False(t, result.Sentiment.IsNormal())
	assert.Equal(t, 92, result.ConfidencePercent())
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), result.Timestamp.Time)
	assert.Equal(t, []string{"anxious", "tired"}, result.DetectedEmotions)
	require.Len(t, result.AISuggestions, 1)
	assert.Equal(t, PriorityHigh, result.AISuggestions[0].Priority)
	assert.True(t, result.AIGenerated)
	assert.True(t, result.HasIndicators())
}

func TestTimestamp_AcceptedForms(t *testing.T) {
	want := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
	}{
		{"epoch millis", "1741064767000"},
		{"rfc3339", `"2025-03-04T05:06:07Z"`},
		{"iso without zone", `"2025-03-04T05:06:07"`},
		{"space separated", `"2025-03-04 05:06:07"`},
		{"numeric string", `"1741064767000"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &ts))
			assert.True(t, want.Equal(ts.Time), "got %s", ts.Time)
		})
	}
}

func TestTimestamp_Invalid(t *testing.T) {
	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
}

func TestTimestamp_NullAndMarshal(t *testing.T) {
	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte("null"), &ts))
	assert.True(t, ts.IsZero())

	out, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))

	ts = NewTimestamp(time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC))
	out, err = json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2025-03-04T05:06:07Z"`, string(out))
}

func TestConfidencePercent_Rounding(t *testing.T) {
	tests := []struct {
		confidence float64
		want       int
	}{
		{0, 0},
		{0.004, 0},
		{0.5, 50},
		{0.924, 92},
		{0.925, 93},
		{0.999, 100},
		{1, 100},
	}
	for _, tt := range tests {
		r := ClassificationResult{Confidence: tt.confidence}
		assert.Equal(t, tt.want, r.ConfidencePercent(), "confidence %v", tt.confidence)
	}
}

func TestReportMode_Valid(t *testing.T) {
	assert.True(t, ModeSummary.Valid())
	assert.True(t, ModeComplete.Valid())
	assert.False(t, ReportMode("poster").Valid())
	assert.False(t, ReportMode("").Valid())
}
