// Package convert drives batches of image-to-WebP conversions.
package convert

import (
	"errors"
	"fmt"

	"github.com/imagetools/webp-batch/internal/imaging"
)

// ErrInvalidOptions is returned when conversion options fail validation.
var ErrInvalidOptions = errors.New("invalid conversion options")

// Options configures one conversion run. It is constructed once, validated
// before any file I/O begins, and read-only afterward.
type Options struct {
	// Quality is the WebP quality level, 0-100.
	Quality int

	// PreserveTransparency keeps per-pixel alpha in the output. When false,
	// transparent regions are flattened onto an opaque white background.
	PreserveTransparency bool

	// CropBorders enables uniform-border detection and removal.
	CropBorders bool

	// ScaleFactor uniformly downscales the output, (0, 1]. Zero disables
	// scaling.
	ScaleFactor float64

	// Scan tunes the border detector. The zero value is replaced by
	// imaging.DefaultBorderScan().
	Scan imaging.BorderScan
}

// DefaultOptions returns the defaults: quality 75, transparency preserved,
// no cropping, no scaling.
func DefaultOptions() Options {
	return Options{
		Quality:              75,
		PreserveTransparency: true,
		Scan:                 imaging.DefaultBorderScan(),
	}
}

// Validate checks the option ranges.
func (o Options) Validate() error {
	if o.Quality < 0 || o.Quality > 100 {
		return fmt.Errorf("%w: quality %d outside [0,100]", ErrInvalidOptions, o.Quality)
	}
	if o.ScaleFactor != 0 && (o.ScaleFactor <= 0 || o.ScaleFactor > 1) {
		return fmt.Errorf("%w: scale factor %g outside (0,1]", ErrInvalidOptions, o.ScaleFactor)
	}
	if o.Scan.Tolerance < 0 || o.Scan.MaxRows < 0 || o.Scan.MaxCols < 0 {
		return fmt.Errorf("%w: border scan parameters must not be negative", ErrInvalidOptions)
	}
	return nil
}
