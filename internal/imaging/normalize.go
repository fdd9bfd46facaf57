package imaging

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Normalize converts a decoded image to the canonical *image.NRGBA buffer
// the rest of the pipeline operates on. It must run before cropping and
// scaling.
//
// Palette-indexed images are expanded. Images with an alpha channel keep
// their per-pixel alpha when preserveTransparency is true; otherwise they
// are composited over an opaque white canvas using the alpha channel as the
// blend mask. Any other color mode (grayscale, YCbCr, CMYK) converts
// directly to opaque RGB values.
//
// keepAlpha reports whether the returned buffer still carries meaningful
// transparency, which decides between RGBA and RGB WebP encoding.
func Normalize(img image.Image, preserveTransparency bool) (buf *image.NRGBA, keepAlpha bool) {
	if HasAlpha(img) && !preserveTransparency {
		bounds := img.Bounds()
		canvas := imaging.New(bounds.Dx(), bounds.Dy(), color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		return imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0), false
	}
	// Clone converts any image type to NRGBA with bounds anchored at (0,0).
	return imaging.Clone(img), HasAlpha(img)
}
