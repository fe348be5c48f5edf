//go:build ocr

package main

import (
	"github.com/anime-shed/mindtrack-report/internal/factory"
	"github.com/anime-shed/mindtrack-report/internal/legibility/tesseract"
)

func engineFactory() factory.EngineFactory {
	return tesseract.Factory
}
