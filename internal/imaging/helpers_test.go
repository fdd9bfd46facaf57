package imaging

import (
	"image"
	"image/color"
)

// solidImage creates a w x h image filled with a single color.
func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// borderedImage creates a w x h image with a uniform border of the given
// margin width on all four sides and a contrasting interior fill.
func borderedImage(w, h, margin int, border, fill color.NRGBA) *image.NRGBA {
	img := solidImage(w, h, border)
	for y := margin; y < h-margin; y++ {
		for x := margin; x < w-margin; x++ {
			img.SetNRGBA(x, y, fill)
		}
	}
	return img
}

// checkerImage creates a w x h image alternating black and white per pixel,
// so no row or column is uniform.
func checkerImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	black := color.NRGBA{A: 255}
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.SetNRGBA(x, y, black)
			} else {
				img.SetNRGBA(x, y, white)
			}
		}
	}
	return img
}
