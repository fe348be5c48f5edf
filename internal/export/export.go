// Package export turns rendered reports into downloadable PNG files.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"time"

	apperrors "github.com/anime-shed/mindtrack-report/internal/errors"
	"github.com/anime-shed/mindtrack-report/pkg/models"
)

// ContentType of every exported report
const ContentType = "image/png"

// ImageEncoder writes an image in some file format
type ImageEncoder interface {
	Encode(w io.Writer, m image.Image) error
}

var defaultEncoder ImageEncoder = &png.Encoder{CompressionLevel: png.DefaultCompression}

// Encode PNG-encodes img. Bytes are only returned once encoding finished,
// so a failure never yields a partial file.
func Encode(img image.Image) ([]byte, error) {
	return EncodeWith(defaultEncoder, img)
}

// EncodeWith encodes img with enc. Any failure is reported as an encoding
// error.
func EncodeWith(enc ImageEncoder, img image.Image) ([]byte, error) {
	if img == nil {
		return nil, apperrors.NewEncodingError("No image to encode", nil)
	}
	if b := img.Bounds(); b.Empty() {
		return nil, apperrors.NewEncodingError(fmt.Sprintf("Cannot encode empty image %v", b), nil)
	}
	var buf bytes.Buffer
	if err := enc.Encode(&buf, img); err != nil {
		return nil, apperrors.NewEncodingError("Failed to encode report image", err)
	}
	return buf.Bytes(), nil
}

// Filename returns the suggested download name for a report exported at now
func Filename(mode models.ReportMode, now time.Time) string {
	if mode == models.ModeComplete {
		return fmt.Sprintf("mindtrack-complete-report-%d.png", now.UnixMilli())
	}
	return fmt.Sprintf("mindtrack-analysis-%d.png", now.UnixMilli())
}
