//go:build ocr

package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/anime-shed/mindtrack-report/internal/legibility"
	"github.com/anime-shed/mindtrack-report/internal/logger"
)

// Engine wraps a single gosseract client. The client is not safe for
// concurrent use so calls are serialised.
type Engine struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// New creates an engine for the given Tesseract language code, "eng" when empty
func New(language string) (*Engine, error) {
	if language == "" {
		language = "eng"
	}
	client := gosseract.NewClient()
	if err := client.SetLanguage(language); err != nil {
		client.Close()
		return nil, fmt.Errorf("set tesseract language %q: %w", language, err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		client.Close()
		return nil, fmt.Errorf("set page segmentation mode: %w", err)
	}
	logger.WithField("language", language).Info("Tesseract engine initialised")
	return &Engine{client: client}, nil
}

// Factory adapts New to the factory.EngineFactory signature
func Factory(language string) (legibility.Engine, error) {
	return New(language)
}

// Recognize returns the text Tesseract reads from img. Tesseract expects
// dark text on a light background; see legibility.Prepare.
func (e *Engine) Recognize(ctx context.Context, img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode OCR input: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := e.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("load OCR input: %w", err)
	}
	text, err := e.client.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Close releases the Tesseract client
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.client.Close()
}
