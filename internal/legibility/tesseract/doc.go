// Package tesseract implements legibility.Engine with the Tesseract OCR
// library. The engine needs libtesseract at build and run time and is only
// compiled with the ocr build tag.
package tesseract
