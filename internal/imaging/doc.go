// Package imaging implements the pixel pipeline for WebP batch conversion.
//
// The pipeline stages, in the order the converter applies them:
//
//  1. Decode: read a raster file (PNG, JPEG, GIF, BMP, TIFF) into an
//     image.Image.
//  2. Normalize: expand palettes and either keep per-pixel alpha or flatten
//     transparency onto an opaque white canvas, producing a canonical
//     *image.NRGBA buffer.
//  3. Autocrop: detect uniform solid-color borders by sampling edge pixels
//     and walking inward, then crop them away.
//  4. Scale: optional uniform downscale with Lanczos resampling.
//  5. EncodeWebP: write the result at a configurable quality.
//
// All coordinates are 0-based with the origin at the top-left corner.
// Border detection is a pure function over an immutable image view and
// returns a crop-box value, so it can be tested independently of any I/O.
package imaging
