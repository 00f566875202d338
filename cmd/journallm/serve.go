package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	webhttp "github.com/journallm/journallm/internal/http"
	"github.com/journallm/journallm/internal/insights"
	"github.com/journallm/journallm/internal/logging"
	"github.com/journallm/journallm/internal/pipeline"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the browser upload shell",
	Long: `Run an HTTP server with a browser upload form. Uploaded backups are
extracted and prompted in the background; the report page refreshes
until the advice is ready.

Examples:
  # Serve on the configured host and port
  journallm serve

  # Override via environment
  JOURNALLM_SERVER_PORT=9000 journallm serve`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logging.Sync(logger) }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Without an API key the shell still extracts; it just cannot ask
	// for advice.
	var (
		reporter webhttp.Reporter
		client   *insights.Client
	)
	if cfg.Anthropic.APIKey.Value() != "" {
		client, err = insights.NewClient(cfg.Anthropic)
		if err != nil {
			return err
		}
		reporter = insights.NewPrompter(client)
	} else {
		logger.Warn("no anthropic api key configured, serving extraction only")
	}

	enforcer, err := buildEnforcer(cfg, client)
	if err != nil {
		return err
	}

	pipe := pipeline.New(extractLimits(cfg), enforcer, logger)
	jobs := webhttp.NewJobStore(time.Duration(cfg.Server.JobTTL))

	server, err := webhttp.NewServer(pipe, reporter, jobs, logger, &webhttp.Config{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("shutdown complete", zap.Duration("job_ttl", time.Duration(cfg.Server.JobTTL)))
	return nil
}
