package imaging

import (
	"image"

	"github.com/lucasb-eyer/go-colorful"
)

// BorderScan configures the uniform-border detector.
//
// The asymmetric defaults (shallow top/bottom, deep left/right) reflect the
// common case of wide letterboxing on the sides of landscape photos. Both
// depths are tunable rather than fixed constants.
type BorderScan struct {
	// MaxRows is the maximum number of rows scanned inward from the top
	// and from the bottom edge.
	MaxRows int

	// MaxCols is the maximum number of columns scanned inward from the
	// left and from the right edge.
	MaxCols int

	// Tolerance is the maximum per-channel absolute difference for a pixel
	// to still count as the edge color.
	Tolerance int
}

// DefaultBorderScan returns the tuned default scan parameters.
func DefaultBorderScan() BorderScan {
	return BorderScan{MaxRows: 50, MaxCols: 400, Tolerance: 30}
}

// ScanReport describes the outcome of a border scan.
type ScanReport struct {
	// Box is the crop box retained after border removal. When no border is
	// detected, or when removing the detected borders would leave nothing,
	// Box equals the full image bounds.
	Box image.Rectangle

	// TopColor, BottomColor, LeftColor and RightColor are the sampled mean
	// edge colors in "#RRGGBB" form, empty when the edge could not be
	// sampled.
	TopColor    string
	BottomColor string
	LeftColor   string
	RightColor  string
}

// meanColor is the per-channel mean of a set of sampled pixels.
type meanColor struct {
	r, g, b int
}

func (c meanColor) hex() string {
	return colorful.Color{
		R: float64(c.r) / 255,
		G: float64(c.g) / 255,
		B: float64(c.b) / 255,
	}.Hex()
}

// similar reports whether the pixel at (x, y) matches the mean color within
// the per-channel tolerance. All channels must be within tolerance.
func (c meanColor) similar(img image.Image, x, y, tolerance int) bool {
	r, g, b, _ := img.At(x, y).RGBA()
	return absInt(int(r>>8)-c.r) <= tolerance &&
		absInt(int(g>>8)-c.g) <= tolerance &&
		absInt(int(b>>8)-c.b) <= tolerance
}

// edgeColor computes the mean color of the sample points that fall inside
// the image bounds. ok is false when no point could be read, which callers
// must treat as "no border on this edge".
func edgeColor(img image.Image, points []image.Point) (meanColor, bool) {
	bounds := img.Bounds()
	var sum meanColor
	n := 0
	for _, p := range points {
		if !p.In(bounds) {
			continue
		}
		r, g, b, _ := img.At(p.X, p.Y).RGBA()
		sum.r += int(r >> 8)
		sum.g += int(g >> 8)
		sum.b += int(b >> 8)
		n++
	}
	if n == 0 {
		return meanColor{}, false
	}
	return meanColor{r: sum.r / n, g: sum.g / n, b: sum.b / n}, true
}

// DetectBorders returns the crop box that removes uniform solid-color
// borders from img. It is shorthand for ScanBorders(img, scan).Box.
func DetectBorders(img image.Image, scan BorderScan) image.Rectangle {
	return ScanBorders(img, scan).Box
}

// ScanBorders samples a reference color per edge (mean of three fixed
// positions at the quarter points) and walks inward from each edge one
// row/column at a time, testing a subsample of perpendicular positions
// against that color within the configured tolerance. Scanning stops at the
// first non-uniform line; the border offset is the last confirmed uniform
// position plus one.
//
// Degenerate inputs (zero-size images, failed edge sampling) and scans that
// would crop away the entire image yield a Box equal to the full bounds.
func ScanBorders(img image.Image, scan BorderScan) ScanReport {
	bounds := img.Bounds()
	report := ScanReport{Box: bounds}

	w := bounds.Dx()
	h := bounds.Dy()
	if w == 0 || h == 0 {
		return report
	}

	topPts := []image.Point{
		{bounds.Min.X + w/4, bounds.Min.Y},
		{bounds.Min.X + w/2, bounds.Min.Y},
		{bounds.Min.X + 3*w/4, bounds.Min.Y},
	}
	bottomPts := []image.Point{
		{bounds.Min.X + w/4, bounds.Max.Y - 1},
		{bounds.Min.X + w/2, bounds.Max.Y - 1},
		{bounds.Min.X + 3*w/4, bounds.Max.Y - 1},
	}
	leftPts := []image.Point{
		{bounds.Min.X, bounds.Min.Y + h/4},
		{bounds.Min.X, bounds.Min.Y + h/2},
		{bounds.Min.X, bounds.Min.Y + 3*h/4},
	}
	rightPts := []image.Point{
		{bounds.Max.X - 1, bounds.Min.Y + h/4},
		{bounds.Max.X - 1, bounds.Min.Y + h/2},
		{bounds.Max.X - 1, bounds.Min.Y + 3*h/4},
	}

	// Subsample steps along the perpendicular axis.
	xStep := maxInt(1, w/20)
	yStep := maxInt(1, h/5)

	left, top := bounds.Min.X, bounds.Min.Y
	right, bottom := bounds.Max.X, bounds.Max.Y

	if c, ok := edgeColor(img, topPts); ok {
		report.TopColor = c.hex()
		for i := 0; i < minInt(scan.MaxRows, h); i++ {
			y := bounds.Min.Y + i
			if !uniformRow(img, y, xStep, c, scan.Tolerance) {
				break
			}
			top = y + 1
		}
	}
	if c, ok := edgeColor(img, bottomPts); ok {
		report.BottomColor = c.hex()
		for i := 0; i < minInt(scan.MaxRows, h); i++ {
			y := bounds.Max.Y - 1 - i
			if !uniformRow(img, y, xStep, c, scan.Tolerance) {
				break
			}
			bottom = y
		}
	}
	if c, ok := edgeColor(img, leftPts); ok {
		report.LeftColor = c.hex()
		for i := 0; i < minInt(scan.MaxCols, w); i++ {
			x := bounds.Min.X + i
			if !uniformCol(img, x, yStep, c, scan.Tolerance) {
				break
			}
			left = x + 1
		}
	}
	if c, ok := edgeColor(img, rightPts); ok {
		report.RightColor = c.hex()
		for i := 0; i < minInt(scan.MaxCols, w); i++ {
			x := bounds.Max.X - 1 - i
			if !uniformCol(img, x, yStep, c, scan.Tolerance) {
				break
			}
			right = x
		}
	}

	// Refuse to crop away the entire image: a scan that ran through to the
	// opposite edge leaves an inverted or empty box.
	if left >= right || top >= bottom {
		return report
	}

	report.Box = image.Rect(left, top, right, bottom)
	return report
}

func uniformRow(img image.Image, y, xStep int, c meanColor, tolerance int) bool {
	bounds := img.Bounds()
	for x := bounds.Min.X; x < bounds.Max.X; x += xStep {
		if !c.similar(img, x, y, tolerance) {
			return false
		}
	}
	return true
}

func uniformCol(img image.Image, x, yStep int, c meanColor, tolerance int) bool {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y += yStep {
		if !c.similar(img, x, y, tolerance) {
			return false
		}
	}
	return true
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
