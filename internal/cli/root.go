// Package cli wires the webp-batch subcommands.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/imagetools/webp-batch/internal/config"
	"github.com/imagetools/webp-batch/internal/convert"
	"github.com/imagetools/webp-batch/internal/imaging"
)

var (
	cfgPath  string
	logLevel string

	cfg *config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "webp-batch",
	Short: "Batch image to WebP conversion toolkit",
	Long: `webp-batch converts directories of images to WebP, optionally cropping
uniform borders and downscaling. It can also scrape images from a web page
and serve a password-gated upload form.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		level, err := zerolog.ParseLevel(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			Level(level).
			With().Timestamp().Logger()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace|debug|info|warn|error)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// optionsFromConfig maps the config file's conversion section onto run
// options.
func optionsFromConfig(c config.ConvertConfig) convert.Options {
	return convert.Options{
		Quality:              c.Quality,
		PreserveTransparency: c.PreserveTransparency,
		CropBorders:          c.CropBorders,
		Scan: imaging.BorderScan{
			MaxRows:   c.ScanRows,
			MaxCols:   c.ScanCols,
			Tolerance: c.ScanTolerance,
		},
	}
}
