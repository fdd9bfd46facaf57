package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/imagetools/webp-batch/internal/convert"
	"github.com/imagetools/webp-batch/internal/fetch"
)

var (
	fetchOutput  string
	fetchMax     int
	fetchConvert bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Download images found on a web page",
	Long: `Fetch a page, extract candidate image URLs from its markup and download
them. With --convert, the downloaded images are then converted to WebP using
the configured conversion defaults.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "", "download directory")
	fetchCmd.Flags().IntVar(&fetchMax, "max-images", 0, "cap on downloaded images")
	fetchCmd.Flags().BoolVar(&fetchConvert, "convert", false, "convert downloads to WebP afterward")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	pageURL := args[0]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dir := fetchOutput
	if dir == "" {
		dir = cfg.Fetch.DownloadDir
	}
	maxImages := cfg.Fetch.MaxImages
	if cmd.Flags().Changed("max-images") {
		maxImages = fetchMax
	}

	clientOpts := []fetch.Option{
		fetch.WithHTTPClient(&http.Client{Timeout: cfg.Fetch.Timeout.Std()}),
		fetch.WithMaxImages(maxImages),
		fetch.WithMaxRetries(uint64(cfg.Fetch.MaxRetries)),
		fetch.WithLogger(log),
	}
	if cfg.Fetch.UserAgent != "" {
		clientOpts = append(clientOpts, fetch.WithUserAgent(cfg.Fetch.UserAgent))
	}
	client := fetch.NewClient(clientOpts...)

	body, err := client.FetchPage(ctx, pageURL)
	if err != nil {
		return err
	}
	urls := fetch.ExtractImageURLs(body, pageURL)
	if len(urls) == 0 {
		return fmt.Errorf("no image URLs found on %s", pageURL)
	}
	log.Info().Int("candidates", len(urls)).Str("url", pageURL).Msg("image URLs extracted")

	saved, err := client.DownloadImages(ctx, urls, dir)
	if err != nil {
		return err
	}
	log.Info().Int("saved", saved).Str("dir", dir).Msg("downloads finished")
	if saved == 0 {
		return fmt.Errorf("no images could be downloaded from %s", pageURL)
	}

	if !fetchConvert {
		return nil
	}

	conv, err := convert.New(optionsFromConfig(cfg.Convert), log)
	if err != nil {
		return err
	}
	converted, total := conv.ConvertDir(dir, "")
	log.Info().
		Int("converted", converted).
		Int("failed", total-converted).
		Msg("conversion of downloads finished")
	if converted == 0 {
		return fmt.Errorf("all %d conversions failed", total)
	}
	return nil
}
