package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nao1215/isoharvest/internal/browser"
	"github.com/nao1215/isoharvest/internal/config"
	"github.com/nao1215/isoharvest/internal/database"
	"github.com/nao1215/isoharvest/internal/log"
	"github.com/nao1215/isoharvest/internal/model"
	"github.com/nao1215/isoharvest/internal/pipeline"
	"github.com/nao1215/isoharvest/internal/report"
	"github.com/nao1215/isoharvest/internal/retry"
	"github.com/spf13/cobra"
)

// NewHarvestCmd creates the harvest command.
func NewHarvestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Walk the ISO 20022 catalog and download every message set",
		Long: `Harvest walks the paginated ISO 20022 message definitions catalog,
downloads the full-catalog archive of every message set, and files the
extracted schemas under one directory per set.

The walk completes before any download starts, so message entries listed
under the wrong business area can be routed to the batch their identifier
names. After the downloads are reconciled, two metadata documents
describing the catalog are written to the output directory.

Every run is recorded in the local history database for later
'isoharvest history' and 'isoharvest compare' queries.

Examples:
  # Harvest the public catalog with defaults
  isoharvest harvest

  # Harvest a mirror, keeping the Chrome window visible
  isoharvest harvest --url https://mirror.example.com/catalog --headless=false

  # Abort on the first malformed catalog entry
  isoharvest harvest --strict

  # Write a Markdown session report to a file
  isoharvest harvest --markdown -o report.md

Configuration file (.isoharvest) example:
  catalog_url: https://www.iso20022.org/iso-20022-message-definitions
  save_dir: iso20022-schemas
  mode: permissive
  wait_budget: 30s
  delay_min: 2s
  delay_max: 8s`,
		Args: cobra.NoArgs,
		RunE: runHarvestCmd,
	}

	// Catalog flags
	cmd.Flags().StringP("url", "u", config.DefaultCatalogURL,
		"Catalog listing URL to walk")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of listing pages to walk")
	cmd.Flags().BoolP("strict", "s", false,
		"Abort on the first malformed catalog entry instead of skipping it")

	// Directory flags
	cmd.Flags().StringP("download-dir", "d", config.DefaultDownloadDir,
		"Directory the browser downloads archives into (emptied at start)")
	cmd.Flags().StringP("save-dir", "S", config.DefaultSaveDir,
		"Directory extracted schemas are filed under, one subdirectory per message set")
	cmd.Flags().StringP("output-dir", "O", config.DefaultOutputDir,
		"Directory the metadata documents are written to")

	// Download behavior flags
	cmd.Flags().IntP("max-attempts", "a", 0,
		"Retry bound for navigation and downloads (0 = mode default: 5 permissive, 3 strict)")
	cmd.Flags().DurationP("wait-budget", "w", config.DefaultWaitBudget,
		"Total time to wait for a requested archive to appear in the download directory")
	cmd.Flags().Duration("poll-interval", config.DefaultPollInterval,
		"Delay between download-directory scans while waiting for an archive")

	// Browser flags
	cmd.Flags().String("user-agent", "",
		"Browser User-Agent header (default: a random desktop User-Agent)")
	cmd.Flags().Duration("settle", config.DefaultPageSettle,
		"How long the browser waits after navigation before reading the markup")
	cmd.Flags().Bool("headless", config.DefaultHeadless,
		"Run Chrome without a visible window")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .isoharvest in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON session report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown session report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write the session report to specified file path (creates directories if needed)")

	return cmd
}

// runHarvestCmd executes the harvest command.
func runHarvestCmd(cmd *cobra.Command, _ []string) error {
	// Build config from flags and the optional config file
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	verbose := getVerboseFlag(cmd)
	logger := setupLogger(verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runHarvest(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from the config file and cobra command flags.
// The config file is applied first; a flag overrides the file only when the
// user actually set it, so file values survive for everything the command
// line leaves alone.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load harvest settings from the config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently continue when no file is found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := file.Apply(cfg); err != nil {
			return nil, fmt.Errorf("failed to apply config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	if cmd.Flags().Changed("url") {
		cfg.CatalogURL, err = cmd.Flags().GetString("url")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("max-pages") {
		cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("strict") {
		strict, err := cmd.Flags().GetBool("strict")
		if err != nil {
			return nil, err
		}
		cfg.Mode = config.ModePermissive
		if strict {
			cfg.Mode = config.ModeStrict
		}
	}

	if cmd.Flags().Changed("download-dir") {
		cfg.DownloadDir, err = cmd.Flags().GetString("download-dir")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("save-dir") {
		cfg.SaveDir, err = cmd.Flags().GetString("save-dir")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir, err = cmd.Flags().GetString("output-dir")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("max-attempts") {
		cfg.MaxAttempts, err = cmd.Flags().GetInt("max-attempts")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("wait-budget") {
		cfg.WaitBudget, err = cmd.Flags().GetDuration("wait-budget")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("poll-interval") {
		cfg.PollInterval, err = cmd.Flags().GetDuration("poll-interval")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("user-agent") {
		cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("settle") {
		cfg.PageSettle, err = cmd.Flags().GetDuration("settle")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("headless") {
		cfg.Headless, err = cmd.Flags().GetBool("headless")
		if err != nil {
			return nil, err
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	// Always save to database using XDG data directory
	cfg.SaveToDB = true
	cfg.DBDir = config.XDGDataDir()

	return cfg, nil
}

// setupLogger creates a structured logger based on verbosity setting.
// The trim handler keeps rendered page markup from flooding the log when
// walk steps report page-level attributes at debug level.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewTrimLogger(os.Stderr, verbose)
}

// runHarvest executes the harvest.
func runHarvest(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting harvest",
		"catalog", cfg.CatalogURL,
		"mode", cfg.Mode.String(),
		"maxAttempts", cfg.RetryAttempts(),
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled
	var db *database.HistoryDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	// One browser serves the whole run: listing pages and download requests
	// must come from the same Chrome session, or the catalog hands the
	// archives to a profile whose download directory we are not watching.
	browserOpts := []browser.Option{
		browser.WithHeadless(cfg.Headless),
		browser.WithDownloadDir(cfg.DownloadDir),
		browser.WithPageSettle(cfg.PageSettle),
		browser.WithLogger(logger),
	}
	if cfg.UserAgent != "" {
		browserOpts = append(browserOpts, browser.WithUserAgent(cfg.UserAgent))
	}

	b, err := browser.New(ctx, browserOpts...)
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer func() {
		if err := b.Close(); err != nil {
			logger.Error("failed to close browser", "error", err)
		}
	}()

	p := createPipeline(b, logger, cfg)

	harvestReport := model.NewHarvestReport(cfg.CatalogURL, cfg.Mode.String())

	fmt.Printf("Harvesting %s...\n", cfg.CatalogURL)
	startTime := time.Now()

	// Execute the pipeline
	execErr := p.Execute(ctx, harvestReport)
	harvestReport.FinishedAt = time.Now()

	if execErr != nil {
		logger.Error("harvest failed", "catalog", cfg.CatalogURL, "error", execErr)
		fmt.Fprintf(os.Stderr, "Harvest error: %v\n", execErr)
	} else {
		elapsed := time.Since(startTime)
		fmt.Printf("Harvest completed in %s\n\n", elapsed.Round(time.Millisecond))
	}

	// The report and the history row are written even for a failed run;
	// both carry the batches that finished before the failure.
	if err := outputReport(cfg, harvestReport); err != nil {
		logger.Error("report failed", "catalog", cfg.CatalogURL, "error", err)
	}

	if err := saveHarvestReport(ctx, db, harvestReport, logger); err != nil {
		logger.Error("failed to save harvest report", "catalog", cfg.CatalogURL, "error", err)
	}

	return execErr
}

// createPipeline creates the harvest pipeline with the given configuration.
func createPipeline(b *browser.Browser, logger *slog.Logger, cfg *config.Config) *pipeline.Pipeline {
	pipelineOpts := []pipeline.Option{
		pipeline.WithLogger(logger),
	}

	policy := retry.Policy{
		MaxAttempts: cfg.RetryAttempts(),
		Backoff:     retry.Uniform(cfg.DelayMin, cfg.DelayMax),
		Logger:      logger,
	}

	configOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineDownloadDir(cfg.DownloadDir),
		pipeline.WithPipelineSaveDir(cfg.SaveDir),
		pipeline.WithPipelineOutputDir(cfg.OutputDir),
		pipeline.WithPipelineMaxPages(cfg.MaxPages),
		pipeline.WithPipelineStrict(cfg.Mode == config.ModeStrict),
		pipeline.WithPipelineRetryPolicy(policy),
		pipeline.WithPipelineWaitBudget(cfg.WaitBudget),
		pipeline.WithPipelinePollInterval(cfg.PollInterval),
		pipeline.WithPipelineBatchDelay(retry.Uniform(cfg.DelayMin, cfg.DelayMax)),
	}

	return pipeline.DefaultPipeline(b, cfg.CatalogURL, pipelineOpts, configOpts...)
}

// outputReport outputs the harvest report in the requested format.
func outputReport(cfg *config.Config, harvestReport *model.HarvestReport) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create/overwrite the output file, readable by the owner only
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// JSON output (full report wrapped with the generating version)
	if cfg.JSONReport {
		writer := report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
		_, err := writer.Write(harvestReport)
		return err
	}

	// Markdown output
	if cfg.MarkdownReport {
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(harvestReport)
		return err
	}

	// Human-readable report (default)
	writer := report.NewSimpleWriter(output)
	_, err := writer.Write(harvestReport)
	return err
}

// saveHarvestReport saves the harvest report to the database if enabled.
// If db is nil, this function is a no-op.
func saveHarvestReport(ctx context.Context, db *database.HistoryDB, harvestReport *model.HarvestReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	id, err := db.SaveRun(ctx, harvestReport)
	if err != nil {
		return fmt.Errorf("failed to save harvest report: %w", err)
	}

	logger.Info("harvest saved to database", "runID", id, "catalog", harvestReport.CatalogURL)
	return nil
}
