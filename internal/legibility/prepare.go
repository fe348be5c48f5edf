package legibility

import (
	"image"
	"image/draw"
)

// Prepare converts img to grayscale and, when the image is mostly dark,
// inverts it so text reads dark-on-light the way OCR engines expect.
func Prepare(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)
	if len(gray.Pix) == 0 {
		return gray
	}

	var sum uint64
	for _, v := range gray.Pix {
		sum += uint64(v)
	}
	if sum/uint64(len(gray.Pix)) < 128 {
		for i, v := range gray.Pix {
			gray.Pix[i] = 255 - v
		}
	}
	return gray
}
