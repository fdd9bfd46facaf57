package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/imagetools/webp-batch/internal/web"
)

var (
	serveAddr     string
	servePassword string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the password-gated conversion form",
	Long: `Start an HTTP server with a login page and an upload form. Submitted
images are converted to WebP and returned as a zip bundle. The password is
checked against server.password_hash from the config (or the
WEBP_BATCH_PASSWORD_HASH environment variable); alternatively pass
--password to hash a plaintext password at startup.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address")
	serveCmd.Flags().StringVar(&servePassword, "password", "", "plaintext password, hashed at startup")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if servePassword != "" {
		hash, err := web.HashPassword(servePassword)
		if err != nil {
			return err
		}
		cfg.Server.PasswordHash = hash
	}

	srv, err := web.New(cfg.Server, optionsFromConfig(cfg.Convert), log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
