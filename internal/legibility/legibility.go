// Package legibility reads a rendered report back with OCR and scores how
// much of the drawn text survived rasterization.
package legibility

import (
	"context"
	"image"
	"strings"
	"unicode"

	"github.com/arbovm/levenshtein"

	apperrors "github.com/anime-shed/mindtrack-report/internal/errors"
)

// DefaultMaxWER is the word error rate above which a report is flagged
const DefaultMaxWER = 0.35

// Engine recognises text in an image
type Engine interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
	Close() error
}

// Result compares the text a layout drew with what OCR read back
type Result struct {
	ExpectedText    string  `json:"expected_text"`
	ExtractedText   string  `json:"extracted_text"`
	ExpectedWords   int     `json:"expected_words"`
	RecognizedWords int     `json:"recognized_words"`
	WER             float64 `json:"wer"`
	CER             float64 `json:"cer"`
	Legible         bool    `json:"legible"`
	// Sharpness is the Laplacian variance of the grayscale report
	Sharpness float64 `json:"sharpness"`
}

// Checker scores report images against their expected text
type Checker struct {
	engine Engine
	maxWER float64
}

// NewChecker creates a checker. A non-positive maxWER selects DefaultMaxWER.
func NewChecker(engine Engine, maxWER float64) *Checker {
	if maxWER <= 0 {
		maxWER = DefaultMaxWER
	}
	return &Checker{engine: engine, maxWER: maxWER}
}

// MaxWER returns the legibility threshold
func (c *Checker) MaxWER() float64 {
	return c.maxWER
}

// Check OCRs img and compares it with the expected text runs. The engine
// receives the image after Prepare.
func (c *Checker) Check(ctx context.Context, img image.Image, expected []string) (*Result, error) {
	if c.engine == nil {
		return nil, apperrors.NewUnavailableError("OCR engine not configured", nil)
	}
	gray := Prepare(img)
	extracted, err := c.engine.Recognize(ctx, gray)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperrors.NewTimeoutError("OCR cancelled", ctx.Err())
		}
		return nil, apperrors.NewProcessingError("OCR failed", err)
	}
	res := Score(strings.Join(expected, "\n"), extracted, c.maxWER)
	res.Sharpness = Sharpness(gray)
	return res, nil
}

// Score compares expected with extracted text
func Score(expected, extracted string, maxWER float64) *Result {
	expWords := Normalize(expected)
	gotWords := Normalize(extracted)
	wer := WordErrorRate(expWords, gotWords)
	return &Result{
		ExpectedText:    expected,
		ExtractedText:   extracted,
		ExpectedWords:   len(expWords),
		RecognizedWords: len(gotWords),
		WER:             wer,
		CER:             CharErrorRate(strings.Join(expWords, " "), strings.Join(gotWords, " ")),
		Legible:         wer <= maxWER,
	}
}

// Normalize lower-cases s and splits it into words of letters and digits.
// Punctuation separates words and is dropped.
func Normalize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// wordRuneBase is the first code point of Supplementary Private Use Area-A,
// used to encode each distinct word as a single rune.
const wordRuneBase = 0xF0000

// WordErrorRate is the word-level edit distance divided by the expected
// word count. Words are mapped to single runes so the character-level
// Levenshtein distance counts word edits.
func WordErrorRate(expected, recognized []string) float64 {
	if len(expected) == 0 {
		if len(recognized) == 0 {
			return 0
		}
		return 1
	}
	ids := make(map[string]rune)
	encode := func(words []string) string {
		var b strings.Builder
		for _, w := range words {
			id, ok := ids[w]
			if !ok {
				id = rune(wordRuneBase + len(ids))
				ids[w] = id
			}
			b.WriteRune(id)
		}
		return b.String()
	}
	return float64(levenshtein.Distance(encode(expected), encode(recognized))) / float64(len(expected))
}

// CharErrorRate is the character edit distance divided by the expected
// length in runes
func CharErrorRate(expected, recognized string) float64 {
	n := len([]rune(expected))
	if n == 0 {
		if recognized == "" {
			return 0
		}
		return 1
	}
	return float64(levenshtein.Distance(expected, recognized)) / float64(n)
}
