// Package main implements the journallm CLI: extract a Day One backup
// into a canonical XML journal and ask Claude for personalized advice.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/journallm/journallm/internal/archive"
	"github.com/journallm/journallm/internal/budget"
	"github.com/journallm/journallm/internal/config"
	"github.com/journallm/journallm/internal/drive"
	"github.com/journallm/journallm/internal/insights"
	"github.com/journallm/journallm/internal/logging"
	"github.com/journallm/journallm/internal/pipeline"
)

// version information (set via ldflags during build)
var version = "dev"

var (
	flagConfig      string
	flagDebug       bool
	flagJournal     string
	flagGoogleDrive bool
	flagExtractOnly bool
	flagSaveJournal bool
	flagOutput      string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "journallm [backup.zip|journal.json|journal.xml]",
	Short: "Personalized insights from your journal",
	Long: `journallm extracts a journaling-app backup into a single XML document
and asks Claude for personalized insights based on what you wrote.

Examples:
  # Advice from a Day One backup
  journallm backup.zip

  # Advice from a single journal export
  journallm daily.json

  # Download the latest backup from Google Drive first
  journallm --google-drive

  # Reuse a previously extracted journal
  journallm --journal journal.xml

  # Only extract, keep the XML, skip the model call
  journallm backup.zip --extract-only`,
	Args:    cobra.MaximumNArgs(1),
	Version: version,
	RunE:    runRoot,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.Flags().StringVar(&flagJournal, "journal", "", "use a previously extracted journal XML instead of a backup")
	rootCmd.Flags().BoolVar(&flagGoogleDrive, "google-drive", false, "download the latest backup from Google Drive")
	rootCmd.Flags().BoolVar(&flagExtractOnly, "extract-only", false, "stop after extraction, do not request advice")
	rootCmd.Flags().BoolVar(&flagSaveJournal, "save-journal", false, "also write the extracted journal XML next to the advice")
	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output path (default journal-<timestamp>.xml or advice-<timestamp>.md)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(authorizeCmd)
}

// setup loads configuration and builds the logger shared by every
// subcommand. --debug wins over the configured level.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}

	logCfg := cfg.Logging
	if flagDebug {
		logCfg.Level = "debug"
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize logger: %w", err)
	}
	return cfg, logger, nil
}

// runRoot handles the extract-and-advise flow.
func runRoot(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logging.Sync(logger) }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	in, err := resolveInput(ctx, cfg, logger, args)
	if err != nil {
		return err
	}

	// The Anthropic client is only constructed when something needs it:
	// the advice prompt, or API-side token counting.
	var client *insights.Client
	needsClient := !flagExtractOnly || cfg.Budget.UseAPICounts
	if needsClient {
		client, err = insights.NewClient(cfg.Anthropic)
		if err != nil {
			return err
		}
	}

	enforcer, err := buildEnforcer(cfg, client)
	if err != nil {
		return err
	}

	pipe := pipeline.New(extractLimits(cfg), enforcer, logger)
	result, err := pipe.Run(ctx, in)
	if err != nil {
		return fmt.Errorf("extract journal: %w", err)
	}

	logger.Info("journal extracted",
		zap.Int("journals", result.Journals),
		zap.Int("entries", result.Entries),
		zap.Int("skipped", result.Skipped),
		zap.Bool("truncated", result.Truncated),
	)

	now := time.Now()

	if flagExtractOnly {
		path := flagOutput
		if path == "" {
			path = defaultName("journal", "xml", now)
		}
		if err := os.WriteFile(path, []byte(result.Document), 0o644); err != nil {
			return fmt.Errorf("write journal: %w", err)
		}
		fmt.Printf("Journal written to %s\n", path)
		return nil
	}

	if flagSaveJournal {
		path := defaultName("journal", "xml", now)
		if err := os.WriteFile(path, []byte(result.Document), 0o644); err != nil {
			return fmt.Errorf("write journal: %w", err)
		}
		fmt.Printf("Journal written to %s\n", path)
	}

	prompter := insights.NewPrompter(client)
	report, err := prompter.Report(ctx, result.Document)
	if err != nil {
		return fmt.Errorf("request advice: %w", err)
	}

	path := flagOutput
	if path == "" {
		path = defaultName("advice", "md", now)
	}
	if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
		return fmt.Errorf("write advice: %w", err)
	}
	fmt.Printf("Advice written to %s\n", path)
	return nil
}

// resolveInput picks the pipeline input from the flags and positional
// argument. Exactly one source must be chosen.
func resolveInput(ctx context.Context, cfg *config.Config, logger *zap.Logger, args []string) (pipeline.Input, error) {
	sources := 0
	if len(args) > 0 {
		sources++
	}
	if flagJournal != "" {
		sources++
	}
	if flagGoogleDrive {
		sources++
	}
	if sources > 1 {
		return pipeline.Input{}, fmt.Errorf("choose one input: a file argument, --journal, or --google-drive")
	}

	switch {
	case flagJournal != "":
		return pipeline.CanonicalFromPath(flagJournal), nil
	case flagGoogleDrive:
		downloader, err := drive.NewDownloader(ctx, cfg.Drive, logger)
		if err != nil {
			return pipeline.Input{}, err
		}
		data, backup, err := downloader.DownloadLatest(ctx)
		if err != nil {
			return pipeline.Input{}, fmt.Errorf("download backup: %w", err)
		}
		logger.Info("downloaded backup",
			zap.String("name", backup.Name),
			zap.Int("bytes", len(data)),
		)
		return pipeline.ArchiveFromBytes(data), nil
	case len(args) == 1:
		return pipeline.Detect(args[0])
	default:
		return pipeline.Input{}, fmt.Errorf("provide a backup file, --journal, or --google-drive (see --help)")
	}
}

// buildEnforcer wires the configured token budget. A zero budget
// disables enforcement entirely.
func buildEnforcer(cfg *config.Config, client *insights.Client) (*budget.Enforcer, error) {
	if cfg.Budget.MaxTokens <= 0 {
		return nil, nil
	}

	var measurer budget.Measurer
	if cfg.Budget.UseAPICounts && client != nil {
		measurer = client
	} else {
		tokenizer, err := budget.NewTokenizer(cfg.Budget.Encoding)
		if err != nil {
			return nil, fmt.Errorf("load tokenizer: %w", err)
		}
		measurer = tokenizer
	}
	return budget.NewEnforcer(measurer, cfg.Budget.MaxTokens)
}

func extractLimits(cfg *config.Config) archive.Limits {
	return archive.Limits{
		MaxUncompressedBytes: cfg.Extract.MaxArchiveBytes,
		MaxEntries:           cfg.Extract.MaxArchiveEntries,
	}
}

// defaultName builds the timestamped output filename.
func defaultName(prefix, ext string, now time.Time) string {
	return fmt.Sprintf("%s-%s.%s", prefix, now.Format("20060102-150405"), ext)
}
