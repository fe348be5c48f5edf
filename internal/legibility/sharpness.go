package legibility

import (
	"image"

	"gonum.org/v1/gonum/stat"
)

// Sharpness returns the variance of the Laplacian over gray. Crisp text
// on a flat background scores high; blurred or empty images score near 0.
func Sharpness(gray *image.Gray) float64 {
	b := gray.Bounds()
	if b.Dx() < 3 || b.Dy() < 3 {
		return 0
	}

	data := make([]float64, 0, (b.Dx()-2)*(b.Dy()-2))
	// Laplacian kernel: [0, 1, 0; 1, -4, 1; 0, 1, 0]
	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		for x := b.Min.X + 1; x < b.Max.X-1; x++ {
			center := float64(gray.GrayAt(x, y).Y)
			top := float64(gray.GrayAt(x, y-1).Y)
			bottom := float64(gray.GrayAt(x, y+1).Y)
			left := float64(gray.GrayAt(x-1, y).Y)
			right := float64(gray.GrayAt(x+1, y).Y)
			data = append(data, -4*center+top+bottom+left+right)
		}
	}
	return stat.Variance(data, nil)
}
