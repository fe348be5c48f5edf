package canvas

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Measurer reports the advance width of a text run in pixels.
type Measurer interface {
	Measure(text string, f Font) float64
}

// FontSet holds the parsed typefaces. Parsed fonts are safe to share
// between goroutines; faces built from them are not, see Faces.
type FontSet struct {
	regular *opentype.Font
	bold    *opentype.Font
	italic  *opentype.Font
}

var (
	defaultFontsOnce sync.Once
	defaultFonts     *FontSet
	defaultFontsErr  error
)

// DefaultFonts returns the embedded Go font family, parsed once.
func DefaultFonts() (*FontSet, error) {
	defaultFontsOnce.Do(func() {
		defaultFonts, defaultFontsErr = NewFontSet(goregular.TTF, gobold.TTF, goitalic.TTF)
	})
	return defaultFonts, defaultFontsErr
}

// NewFontSet parses TrueType/OpenType data for each style
func NewFontSet(regular, bold, italic []byte) (*FontSet, error) {
	r, err := opentype.Parse(regular)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	b, err := opentype.Parse(bold)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	i, err := opentype.Parse(italic)
	if err != nil {
		return nil, fmt.Errorf("parse italic font: %w", err)
	}
	return &FontSet{regular: r, bold: b, italic: i}, nil
}

func (s *FontSet) typeface(style Style) *opentype.Font {
	switch style {
	case Bold:
		return s.bold
	case Italic:
		return s.italic
	default:
		return s.regular
	}
}

// NewFaces returns a face cache for use by a single goroutine
func (s *FontSet) NewFaces() *Faces {
	return &Faces{set: s, faces: make(map[Font]font.Face)}
}

// Faces caches sized font faces. It is not safe for concurrent use; each
// render creates its own.
type Faces struct {
	set   *FontSet
	faces map[Font]font.Face
}

// Face returns the face for f, creating it on first use
func (c *Faces) Face(f Font) (font.Face, error) {
	if face, ok := c.faces[f]; ok {
		return face, nil
	}
	if f.Size <= 0 {
		return nil, fmt.Errorf("invalid font size %v", f.Size)
	}
	face, err := opentype.NewFace(c.set.typeface(f.Style), &opentype.FaceOptions{
		Size:    f.Size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create %vpx face: %w", f.Size, err)
	}
	c.faces[f] = face
	return face, nil
}

// Measure implements Measurer. A face that cannot be built falls back to
// half an em per rune.
func (c *Faces) Measure(text string, f Font) float64 {
	face, err := c.Face(f)
	if err != nil {
		return float64(len([]rune(text))) * f.Size / 2
	}
	return fixedToFloat(font.MeasureString(face, text))
}

// Close releases every cached face
func (c *Faces) Close() error {
	var firstErr error
	for key, face := range c.faces {
		if err := face.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(c.faces, key)
	}
	return firstErr
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}
