package imaging

import (
	"fmt"
	"image"
	"io"

	"github.com/chai2010/webp"
)

// TargetExt is the extension of encoded output files, without dot.
const TargetExt = "webp"

// EncodeWebP writes img to w as lossy WebP at the given quality (0-100).
// When keepAlpha is true the per-pixel alpha channel is encoded; otherwise
// the output is plain opaque RGB.
func EncodeWebP(w io.Writer, img image.Image, quality int, keepAlpha bool) error {
	var (
		data []byte
		err  error
	)
	if keepAlpha {
		data, err = webp.EncodeRGBA(img, float32(quality))
	} else {
		data, err = webp.EncodeRGB(img, float32(quality))
	}
	if err != nil {
		return fmt.Errorf("failed to encode webp: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to encode webp: %w", err)
	}
	return nil
}
