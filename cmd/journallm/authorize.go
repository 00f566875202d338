package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/journallm/journallm/internal/drive"
)

var authorizeCmd = &cobra.Command{
	Use:   "authorize",
	Short: "Authorize Google Drive access",
	Long: `Run the OAuth flow for Google Drive and cache the resulting token.

Requires an OAuth client credentials file (see drive.credentials_file in
the config). The granted scope is read-only.

Examples:
  # Authorize and save the token
  journallm authorize

  # With an explicit config file
  journallm authorize --config journallm.yaml`,
	RunE: runAuthorize,
}

func runAuthorize(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return drive.Authorize(ctx, cfg.Drive, os.Stdin, os.Stdout)
}
