package convert

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/imagetools/webp-batch/internal/imaging"
)

// DefaultOutputDirName is created inside the input directory when no output
// directory is given.
const DefaultOutputDirName = "webp_output"

// Converter runs the normalize -> crop -> resize -> encode pipeline over
// files and directories. Processing is sequential; at most one decoded
// image is held in memory at a time.
type Converter struct {
	opts Options
	log  zerolog.Logger

	// OnResult, when set, is called after each file in a batch with the
	// input path and the conversion outcome. Used by the CLI for progress
	// reporting.
	OnResult func(path string, err error)
}

// New validates opts and returns a Converter. A zero Scan config is
// replaced by the defaults.
func New(opts Options, log zerolog.Logger) (*Converter, error) {
	if opts.Scan == (imaging.BorderScan{}) {
		opts.Scan = imaging.DefaultBorderScan()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Converter{opts: opts, log: log}, nil
}

// Options returns the validated run configuration.
func (c *Converter) Options() Options {
	return c.opts
}

// ConvertFile converts a single image to WebP inside outputDir and returns
// the output path. The output file is named after the input stem.
func (c *Converter) ConvertFile(inputPath, outputDir string) (string, error) {
	img, _, err := imaging.Decode(inputPath)
	if err != nil {
		return "", err
	}

	buf, keepAlpha := imaging.Normalize(img, c.opts.PreserveTransparency)

	var out image.Image = buf
	if c.opts.CropBorders {
		before := out.Bounds()
		report := imaging.ScanBorders(out, c.opts.Scan)
		if report.Box != before {
			out = imaging.CropBox(out, report.Box)
			c.log.Debug().
				Str("file", filepath.Base(inputPath)).
				Str("before", fmt.Sprintf("%dx%d", before.Dx(), before.Dy())).
				Str("after", fmt.Sprintf("%dx%d", report.Box.Dx(), report.Box.Dy())).
				Str("top_color", report.TopColor).
				Str("left_color", report.LeftColor).
				Msg("borders cropped")
		}
	}
	if c.opts.ScaleFactor != 0 {
		out = imaging.Scale(out, c.opts.ScaleFactor)
	}

	outputPath := filepath.Join(outputDir, stem(inputPath)+"."+imaging.TargetExt)
	f, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	if err := imaging.EncodeWebP(f, out, c.opts.Quality, keepAlpha); err != nil {
		_ = f.Close()
		_ = os.Remove(outputPath)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close output file: %w", err)
	}
	return outputPath, nil
}

// ConvertDir converts every supported image directly inside inputDir
// (non-recursive), writing results to outputDir (default
// inputDir/webp_output). A single file's failure is logged and counted; it
// does not abort the batch.
//
// Returns (converted, total), where total counts only files with a
// supported extension. A missing input directory yields (0, 0) without
// creating the output directory.
func (c *Converter) ConvertDir(inputDir, outputDir string) (converted, total int) {
	info, err := os.Stat(inputDir)
	if err != nil || !info.IsDir() {
		c.log.Warn().Str("dir", inputDir).Msg("input directory does not exist")
		return 0, 0
	}

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		c.log.Error().Err(err).Str("dir", inputDir).Msg("failed to read input directory")
		return 0, 0
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !imaging.IsSupported(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(inputDir, entry.Name()))
	}
	sort.Strings(files)

	if len(files) == 0 {
		c.log.Info().Str("dir", inputDir).Msg("no supported image files found")
		return 0, 0
	}

	if outputDir == "" {
		outputDir = filepath.Join(inputDir, DefaultOutputDirName)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		c.log.Error().Err(err).Str("dir", outputDir).Msg("failed to create output directory")
		return 0, len(files)
	}

	for _, file := range files {
		outputPath, err := c.ConvertFile(file, outputDir)
		if c.OnResult != nil {
			c.OnResult(file, err)
		}
		if err != nil {
			c.log.Error().Err(err).Str("file", filepath.Base(file)).Msg("conversion failed")
			continue
		}
		c.log.Info().
			Str("file", filepath.Base(file)).
			Str("output", filepath.Base(outputPath)).
			Msg("converted")
		converted++
	}

	return converted, len(files)
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
