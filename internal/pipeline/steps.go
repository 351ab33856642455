package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/nao1215/isoharvest/internal/catalog"
	"github.com/nao1215/isoharvest/internal/config"
	"github.com/nao1215/isoharvest/internal/download"
	"github.com/nao1215/isoharvest/internal/model"
	"github.com/nao1215/isoharvest/internal/report"
	"github.com/nao1215/isoharvest/internal/retry"
)

// PrepareStep resets the working directories before a harvest.
//
// Design decision: The download staging directory is emptied rather than
// reused because arrival detection polls for any .zip in it; an archive
// left behind by an earlier run would be claimed as the first link's
// download and corrupt the whole reconcile.
type PrepareStep struct {
	// downloadDir is the staging directory downloads land in.
	downloadDir string

	// saveDir is the directory extracted schemas are filed under.
	saveDir string

	// logger for structured logging.
	logger *slog.Logger
}

// PrepareStepOption configures a PrepareStep.
type PrepareStepOption func(*PrepareStep)

// WithPrepareLogger sets a custom logger for the prepare step.
func WithPrepareLogger(logger *slog.Logger) PrepareStepOption {
	return func(s *PrepareStep) {
		s.logger = logger
	}
}

// NewPrepareStep creates a step that readies downloadDir and saveDir.
func NewPrepareStep(downloadDir, saveDir string, opts ...PrepareStepOption) *PrepareStep {
	s := &PrepareStep{
		downloadDir: downloadDir,
		saveDir:     saveDir,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *PrepareStep) Name() string {
	return "prepare"
}

// Do executes the prepare step.
func (s *PrepareStep) Do(_ context.Context, _ *model.HarvestReport) error {
	if err := os.RemoveAll(s.downloadDir); err != nil {
		return fmt.Errorf("reset download dir %s: %w", s.downloadDir, err)
	}
	if err := os.MkdirAll(s.downloadDir, 0750); err != nil {
		return fmt.Errorf("create download dir %s: %w", s.downloadDir, err)
	}
	if err := os.MkdirAll(s.saveDir, 0750); err != nil {
		return fmt.Errorf("create save dir %s: %w", s.saveDir, err)
	}

	s.logger.Debug("working directories ready",
		"download_dir", s.downloadDir,
		"save_dir", s.saveDir,
	)
	return nil
}

// WalkStep pages through the message definitions catalog and accumulates
// the download batches for the rest of the pipeline.
//
// Design decision: Walking is a separate step because:
// 1. The complete batch picture must exist before any download starts
// 2. Stray rows can only be routed once every page has been seen
// 3. The reconcile stage can be tested against a canned catalog
type WalkStep struct {
	// navigator renders catalog listing pages.
	navigator catalog.Navigator

	// catalogURL is the listing page; ?page=N is appended for later pages.
	catalogURL string

	// maxPages bounds the pagination loop.
	maxPages int

	// strict aborts the walk on message validation failures.
	strict bool

	// policy retries page navigations.
	policy retry.Policy

	// logger for structured logging.
	logger *slog.Logger
}

// WalkStepOption configures a WalkStep.
type WalkStepOption func(*WalkStep)

// WithWalkMaxPages sets the maximum number of listing pages to fetch.
func WithWalkMaxPages(maxPages int) WalkStepOption {
	return func(s *WalkStep) {
		s.maxPages = maxPages
	}
}

// WithWalkStrict makes message validation failures abort the walk.
func WithWalkStrict(strict bool) WalkStepOption {
	return func(s *WalkStep) {
		s.strict = strict
	}
}

// WithWalkRetryPolicy sets the retry policy for page navigations.
func WithWalkRetryPolicy(policy retry.Policy) WalkStepOption {
	return func(s *WalkStep) {
		s.policy = policy
	}
}

// WithWalkLogger sets a custom logger for the walk step.
func WithWalkLogger(logger *slog.Logger) WalkStepOption {
	return func(s *WalkStep) {
		s.logger = logger
	}
}

// NewWalkStep creates a catalog walking step.
func NewWalkStep(navigator catalog.Navigator, catalogURL string, opts ...WalkStepOption) *WalkStep {
	s := &WalkStep{
		navigator:  navigator,
		catalogURL: catalogURL,
		maxPages:   config.DefaultMaxPages,
		policy: retry.Policy{
			MaxAttempts: 5,
			Backoff:     retry.Uniform(config.DefaultDelayMin, config.DefaultDelayMax),
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *WalkStep) Name() string {
	return "walk_catalog"
}

// Do executes the walk step.
func (s *WalkStep) Do(ctx context.Context, report *model.HarvestReport) error {
	walker, err := catalog.NewWalker(s.navigator, s.catalogURL,
		catalog.WithMaxPages(s.maxPages),
		catalog.WithStrictValidation(s.strict),
		catalog.WithRetryPolicy(s.policy),
		catalog.WithWalkerLogger(s.logger),
	)
	if err != nil {
		return fmt.Errorf("configure catalog walker: %w", err)
	}

	cat, err := walker.Walk(ctx)

	// Pages fetched before a failure still belong in the session report.
	report.PagesWalked = walker.Stats().PagesWalked

	if err != nil {
		return fmt.Errorf("walk catalog: %w", err)
	}
	report.Catalog = cat

	s.logger.Info("catalog walked",
		"pages", report.PagesWalked,
		"batches", len(cat.Batches()),
	)
	return nil
}

// ReconcileStep downloads every batch of the walked catalog, unpacks the
// archives, and accumulates the metadata report plus per-batch outcomes.
type ReconcileStep struct {
	// downloader triggers browser download navigations.
	downloader download.Downloader

	// downloadDir is the staging directory archives land in.
	downloadDir string

	// saveDir is the directory archives are unpacked under.
	saveDir string

	// policy retries download requests and archive deletions.
	policy retry.Policy

	// waitBudget is the total time to wait for one archive to land.
	waitBudget time.Duration

	// pollInterval is the pause between download directory checks.
	pollInterval time.Duration

	// delay is the politeness pause applied between batches.
	delay retry.BackoffFunc

	// logger for structured logging.
	logger *slog.Logger
}

// ReconcileStepOption configures a ReconcileStep.
type ReconcileStepOption func(*ReconcileStep)

// WithReconcileRetryPolicy sets the retry policy for downloads and deletes.
func WithReconcileRetryPolicy(policy retry.Policy) ReconcileStepOption {
	return func(s *ReconcileStep) {
		s.policy = policy
	}
}

// WithReconcileWaitBudget sets the total time to wait for one archive.
func WithReconcileWaitBudget(budget time.Duration) ReconcileStepOption {
	return func(s *ReconcileStep) {
		s.waitBudget = budget
	}
}

// WithReconcilePollInterval sets the pause between directory checks.
func WithReconcilePollInterval(interval time.Duration) ReconcileStepOption {
	return func(s *ReconcileStep) {
		s.pollInterval = interval
	}
}

// WithReconcileBatchDelay sets the politeness delay between batches.
func WithReconcileBatchDelay(delay retry.BackoffFunc) ReconcileStepOption {
	return func(s *ReconcileStep) {
		s.delay = delay
	}
}

// WithReconcileLogger sets a custom logger for the reconcile step.
func WithReconcileLogger(logger *slog.Logger) ReconcileStepOption {
	return func(s *ReconcileStep) {
		s.logger = logger
	}
}

// NewReconcileStep creates a download reconciling step.
func NewReconcileStep(downloader download.Downloader, downloadDir, saveDir string, opts ...ReconcileStepOption) *ReconcileStep {
	s := &ReconcileStep{
		downloader:   downloader,
		downloadDir:  downloadDir,
		saveDir:      saveDir,
		waitBudget:   config.DefaultWaitBudget,
		pollInterval: config.DefaultPollInterval,
		policy: retry.Policy{
			MaxAttempts: 5,
			Backoff:     retry.Uniform(config.DefaultDelayMin, config.DefaultDelayMax),
		},
		delay:  retry.Uniform(config.DefaultDelayMin, config.DefaultDelayMax),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ReconcileStep) Name() string {
	return "reconcile_downloads"
}

// Do executes the reconcile step.
func (s *ReconcileStep) Do(ctx context.Context, report *model.HarvestReport) error {
	if report.Catalog == nil {
		s.logger.Info("skipping reconcile: no walked catalog", "catalog", report.CatalogURL)
		return nil
	}

	rec := download.NewReconciler(s.downloader, s.downloadDir, s.saveDir,
		download.WithRetryPolicy(s.policy),
		download.WithWaitBudget(s.waitBudget),
		download.WithPollInterval(s.pollInterval),
		download.WithBatchDelay(s.delay),
		download.WithLogger(s.logger),
	)

	metadata, err := rec.Reconcile(ctx, report.Catalog)

	// Batches finished before an abort still belong in the session report.
	for _, outcome := range rec.Outcomes() {
		report.AddOutcome(outcome)
	}
	if metadata != nil {
		report.Metadata = metadata
	}
	if err != nil {
		return fmt.Errorf("reconcile downloads: %w", err)
	}

	s.logger.Info("downloads reconciled",
		"batches", report.TotalBatches(),
		"archives", len(report.Archives()),
	)
	return nil
}

// MetadataStep writes the catalog metadata documents to the output
// directory. It runs last so the documents always describe a fully
// reconciled catalog.
type MetadataStep struct {
	// writer persists the metadata documents.
	writer *report.MetadataWriter

	// logger for structured logging.
	logger *slog.Logger
}

// MetadataStepOption configures a MetadataStep.
type MetadataStepOption func(*MetadataStep)

// WithMetadataLogger sets a custom logger for the metadata step.
func WithMetadataLogger(logger *slog.Logger) MetadataStepOption {
	return func(s *MetadataStep) {
		s.logger = logger
	}
}

// NewMetadataStep creates a metadata document writing step.
func NewMetadataStep(outputDir string, opts ...MetadataStepOption) *MetadataStep {
	s := &MetadataStep{
		writer: report.NewMetadataWriter(outputDir),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *MetadataStep) Name() string {
	return "write_metadata"
}

// Do executes the metadata step.
func (s *MetadataStep) Do(_ context.Context, report *model.HarvestReport) error {
	if report.Metadata == nil {
		s.logger.Info("skipping metadata: nothing was reconciled")
		return nil
	}

	paths, err := s.writer.Write(report.Metadata)
	if err != nil {
		return fmt.Errorf("write metadata documents: %w", err)
	}

	s.logger.Info("metadata documents written", "paths", paths)
	return nil
}

// Collaborator is the browser session shared by the walk and reconcile
// steps: the same identity renders listing pages and receives downloads.
type Collaborator interface {
	catalog.Navigator
	download.Downloader
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// DownloadDir is the staging directory downloads land in.
	DownloadDir string

	// SaveDir is the directory extracted schemas are filed under.
	SaveDir string

	// OutputDir is the directory the metadata documents are written to.
	OutputDir string

	// MaxPages bounds the catalog pagination loop.
	MaxPages int

	// Strict aborts on message validation failures instead of skipping.
	Strict bool

	// RetryPolicy bounds navigation, download and delete retries.
	RetryPolicy retry.Policy

	// WaitBudget is the total time to wait for one archive to land.
	WaitBudget time.Duration

	// PollInterval is the pause between download directory checks.
	PollInterval time.Duration

	// BatchDelay is the politeness delay applied between batches.
	// This pacing keeps the harvest from hammering the catalog publisher.
	BatchDelay retry.BackoffFunc
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineDownloadDir sets the download staging directory.
func WithPipelineDownloadDir(dir string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.DownloadDir = dir
	}
}

// WithPipelineSaveDir sets the directory extracted schemas are filed under.
func WithPipelineSaveDir(dir string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.SaveDir = dir
	}
}

// WithPipelineOutputDir sets the metadata document output directory.
func WithPipelineOutputDir(dir string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.OutputDir = dir
	}
}

// WithPipelineMaxPages sets the maximum catalog pages to walk.
func WithPipelineMaxPages(maxPages int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxPages = maxPages
	}
}

// WithPipelineStrict makes message validation failures abort the walk.
func WithPipelineStrict(strict bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Strict = strict
	}
}

// WithPipelineRetryPolicy sets the retry policy shared by all stages.
func WithPipelineRetryPolicy(policy retry.Policy) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.RetryPolicy = policy
	}
}

// WithPipelineWaitBudget sets the total time to wait for one archive.
func WithPipelineWaitBudget(budget time.Duration) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.WaitBudget = budget
	}
}

// WithPipelinePollInterval sets the pause between directory checks.
func WithPipelinePollInterval(interval time.Duration) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.PollInterval = interval
	}
}

// WithPipelineBatchDelay sets the politeness delay between batches.
// The delay keeps download pacing irregular, the way a person clicking
// through the catalog would pace it.
func WithPipelineBatchDelay(delay retry.BackoffFunc) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.BatchDelay = delay
	}
}

// DefaultPipeline creates a pipeline with all default steps configured.
// This is the standard pipeline for a complete catalog harvest.
//
// Design decision: We provide a default pipeline because:
// 1. Most users want the full prepare/walk/reconcile/metadata sequence
// 2. Reduces boilerplate in CLI
// 3. Ensures consistent ordering
//
// The first variadic parameter accepts pipeline options (WithLogger, etc).
// The second accepts pipeline config options (WithPipelineMaxPages, etc).
func DefaultPipeline(collab Collaborator, catalogURL string, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	// Apply default config with conservative politeness settings
	cfg := &DefaultPipelineConfig{
		DownloadDir: config.DefaultDownloadDir,
		SaveDir:     config.DefaultSaveDir,
		OutputDir:   config.DefaultOutputDir,
		MaxPages:    config.DefaultMaxPages,
		RetryPolicy: retry.Policy{
			MaxAttempts: 5,
			Backoff:     retry.Uniform(config.DefaultDelayMin, config.DefaultDelayMax),
		},
		WaitBudget:   config.DefaultWaitBudget,
		PollInterval: config.DefaultPollInterval,
		BatchDelay:   retry.Uniform(config.DefaultDelayMin, config.DefaultDelayMax),
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	// Build walk step options
	walkOpts := []WalkStepOption{
		WithWalkMaxPages(cfg.MaxPages),
		WithWalkStrict(cfg.Strict),
		WithWalkRetryPolicy(cfg.RetryPolicy),
	}

	// Build reconcile step options
	reconcileOpts := []ReconcileStepOption{
		WithReconcileRetryPolicy(cfg.RetryPolicy),
		WithReconcileWaitBudget(cfg.WaitBudget),
		WithReconcilePollInterval(cfg.PollInterval),
		WithReconcileBatchDelay(cfg.BatchDelay),
	}

	// Add steps in logical order
	p.AddSteps(
		NewPrepareStep(cfg.DownloadDir, cfg.SaveDir),
		NewWalkStep(collab, catalogURL, walkOpts...),
		NewReconcileStep(collab, cfg.DownloadDir, cfg.SaveDir, reconcileOpts...),
		NewMetadataStep(cfg.OutputDir),
	)

	return p
}
