package render

import (
	"strings"

	"github.com/anime-shed/mindtrack-report/internal/canvas"
)

// Wrap breaks text into lines no wider than maxWidth using greedy word
// accumulation over single spaces. A word wider than maxWidth on its own is
// emitted alone. Joining the lines with single spaces gives back text.
func Wrap(m canvas.Measurer, f canvas.Font, text string, maxWidth float64) []string {
	if text == "" {
		return nil
	}
	var (
		lines []string
		line  []string
	)
	for _, word := range strings.Split(text, " ") {
		if len(line) > 0 && m.Measure(strings.Join(append(line, word), " "), f) > maxWidth {
			lines = append(lines, strings.Join(line, " "))
			line = line[:0]
		}
		line = append(line, word)
	}
	return append(lines, strings.Join(line, " "))
}

// Truncate shortens s to its first keep runes plus "..." when it is longer
// than limit runes.
func Truncate(s string, limit, keep int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if keep > len(r) {
		keep = len(r)
	}
	return string(r[:keep]) + "..."
}

// truncation limits, in runes
const (
	titleLimit = 45
	titleKeep  = 42
	labelLimit = 25
	labelKeep  = 22
)

// TruncateTitle applies the suggestion title limit
func TruncateTitle(s string) string {
	return Truncate(s, titleLimit, titleKeep)
}

// TruncateLabel applies the emotion and concern label limit
func TruncateLabel(s string) string {
	return Truncate(s, labelLimit, labelKeep)
}
