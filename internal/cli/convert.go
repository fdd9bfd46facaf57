package cli

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/imagetools/webp-batch/internal/convert"
	"github.com/imagetools/webp-batch/internal/imaging"
)

var (
	convertOutput  string
	convertQuality int
	convertCrop    bool
	convertWhiteBG bool
	convertScale   float64
	convertPreset  string
)

var convertCmd = &cobra.Command{
	Use:   "convert <input-dir>",
	Short: "Convert a directory of images to WebP",
	Long: `Convert every supported image directly inside <input-dir> to WebP.
Results go to --output, or to <input-dir>/webp_output when unset. Supported
input formats: ` + fmt.Sprint(imaging.SupportedFormats()) + `.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "output directory")
	convertCmd.Flags().IntVarP(&convertQuality, "quality", "q", 0, "WebP quality, 0-100")
	convertCmd.Flags().BoolVarP(&convertCrop, "crop", "c", false, "crop uniform borders")
	convertCmd.Flags().BoolVar(&convertWhiteBG, "white-bg", false, "flatten transparency onto white")
	convertCmd.Flags().Float64VarP(&convertScale, "scale", "s", 0, "uniform scale factor, (0,1]")
	convertCmd.Flags().StringVar(&convertPreset, "preset", "", "option preset: "+fmt.Sprint(convert.PresetNames()))
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	inputDir := args[0]

	opts, err := convertOptions(cmd)
	if err != nil {
		return err
	}
	conv, err := convert.New(opts, log)
	if err != nil {
		return err
	}

	if n := countSupported(inputDir); n > 0 {
		bar := progressbar.NewOptions(n,
			progressbar.OptionSetDescription("converting"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		conv.OnResult = func(string, error) {
			_ = bar.Add(1)
		}
	}

	converted, total := conv.ConvertDir(inputDir, convertOutput)
	if total == 0 {
		return fmt.Errorf("no supported images in %s", inputDir)
	}
	log.Info().
		Int("converted", converted).
		Int("failed", total-converted).
		Str("input", inputDir).
		Msg("batch finished")
	if converted == 0 {
		return fmt.Errorf("all %d conversions failed", total)
	}
	return nil
}

// convertOptions layers config defaults, an optional preset, then explicit
// flags.
func convertOptions(cmd *cobra.Command) (convert.Options, error) {
	opts := optionsFromConfig(cfg.Convert)

	if convertPreset != "" {
		preset, err := convert.PresetOptions(convertPreset)
		if err != nil {
			return opts, err
		}
		preset.Scan = opts.Scan
		opts = preset
	}

	if cmd.Flags().Changed("quality") {
		opts.Quality = convertQuality
	}
	if cmd.Flags().Changed("scale") {
		opts.ScaleFactor = convertScale
	}
	if cmd.Flags().Changed("crop") {
		opts.CropBorders = convertCrop
	}
	if convertWhiteBG {
		opts.PreserveTransparency = false
	}
	return opts, nil
}

func countSupported(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, entry := range entries {
		if !entry.IsDir() && imaging.IsSupported(entry.Name()) {
			n++
		}
	}
	return n
}
