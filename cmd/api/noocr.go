//go:build !ocr

package main

import "github.com/anime-shed/mindtrack-report/internal/factory"

// engineFactory returns nil without the ocr build tag, which leaves the
// legibility check unavailable.
func engineFactory() factory.EngineFactory {
	return nil
}
