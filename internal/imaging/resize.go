package imaging

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/transform"
)

// Scale resizes img by a uniform factor in (0, 1] using Lanczos resampling.
// Output dimensions are max(1, round(w*factor)) x max(1, round(h*factor)).
// A factor of 0 (unset) or 1 returns the input unchanged.
func Scale(img image.Image, factor float64) image.Image {
	if factor == 0 || factor == 1 {
		return img
	}
	bounds := img.Bounds()
	w := maxInt(1, int(math.Round(float64(bounds.Dx())*factor)))
	h := maxInt(1, int(math.Round(float64(bounds.Dy())*factor)))
	return transform.Resize(img, w, h, transform.Lanczos)
}
