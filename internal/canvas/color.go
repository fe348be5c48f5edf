package canvas

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Transparent paints nothing
var Transparent = color.NRGBA{}

// Hex parses "#RRGGBB" or "#RRGGBBAA". It panics on malformed input and is
// meant for palette constants.
func Hex(s string) color.NRGBA {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseHex parses "#RRGGBB" or "#RRGGBBAA"
func ParseHex(s string) (color.NRGBA, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(raw) != 6 && len(raw) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid hex colour %q", s)
	}
	if len(raw) == 6 {
		raw += "ff"
	}
	v, err := strconv.ParseUint(raw, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// RGBA builds a colour the way CSS rgba() does, alpha in [0,1].
func RGBA(r, g, b uint8, alpha float64) color.NRGBA {
	return color.NRGBA{R: r, G: g, B: b, A: alphaByte(alpha)}
}

// WithAlpha returns c with its alpha replaced
func WithAlpha(c color.NRGBA, alpha float64) color.NRGBA {
	c.A = alphaByte(alpha)
	return c
}

func alphaByte(alpha float64) uint8 {
	alpha = math.Max(0, math.Min(1, alpha))
	return uint8(math.Round(alpha * 255))
}
