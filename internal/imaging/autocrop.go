package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// Autocrop removes uniform solid-color borders from img using the given
// scan parameters.
func Autocrop(img image.Image, scan BorderScan) image.Image {
	return CropBox(img, DetectBorders(img, scan))
}

// CropBox applies a crop box computed by the border scanner.
//
// When the box equals the full image bounds the input is returned
// unchanged, avoiding a no-op allocation and keeping the crop idempotent on
// images that have no uniform border left.
func CropBox(img image.Image, box image.Rectangle) image.Image {
	if box == img.Bounds() {
		return img
	}
	return imaging.Crop(img, box)
}
