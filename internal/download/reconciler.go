package download

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/nao1215/isoharvest/internal/model"
	"github.com/nao1215/isoharvest/internal/retry"
)

// Downloader triggers an archive download in the shared browser session.
// The browser package provides the production implementation; tests
// substitute one that drops canned archives into the download directory.
type Downloader interface {
	// TriggerDownload navigates to a file link so the browser starts the
	// download. A nil return means the request was handed off, not that a
	// file landed.
	TriggerDownload(ctx context.Context, url string) error
}

// Reconciler works through the accumulated download batches one link at a
// time: trigger the download, wait for the archive to land, unpack it into
// the set's directory, re-file strays, and clean up. Failures on one link
// never sink the run; the reconciler records them and moves on.
type Reconciler struct {
	// downloader requests archive downloads.
	downloader Downloader

	// downloadDir is where the browser drops archives.
	downloadDir string

	// saveDir is the root the per-set directories live under.
	saveDir string

	// policy retries download requests and archive deletions.
	policy retry.Policy

	// waitBudget bounds how long to wait for one archive to land.
	waitBudget time.Duration

	// pollInterval is the pause between download directory checks.
	pollInterval time.Duration

	// delay produces the politeness pause between batches.
	delay retry.BackoffFunc

	// logger receives per-link progress and failure events.
	logger *slog.Logger

	// outcomes collects per-batch download summaries.
	outcomes []model.BatchOutcome
}

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithRetryPolicy sets the retry policy for download requests and archive
// deletions.
func WithRetryPolicy(policy retry.Policy) ReconcilerOption {
	return func(r *Reconciler) {
		r.policy = policy
	}
}

// WithWaitBudget sets the total time to wait for one archive to land.
func WithWaitBudget(budget time.Duration) ReconcilerOption {
	return func(r *Reconciler) {
		if budget > 0 {
			r.waitBudget = budget
		}
	}
}

// WithPollInterval sets the pause between download directory checks.
func WithPollInterval(interval time.Duration) ReconcilerOption {
	return func(r *Reconciler) {
		if interval > 0 {
			r.pollInterval = interval
		}
	}
}

// WithBatchDelay sets the politeness delay applied between batches.
func WithBatchDelay(delay retry.BackoffFunc) ReconcilerOption {
	return func(r *Reconciler) {
		r.delay = delay
	}
}

// WithLogger sets the logger for download progress and failures.
func WithLogger(logger *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Reconciler defaults.
const (
	defaultWaitBudget   = 15 * time.Second
	defaultPollInterval = 500 * time.Millisecond
)

// NewReconciler creates a Reconciler that downloads into downloadDir and
// unpacks under saveDir.
func NewReconciler(downloader Downloader, downloadDir, saveDir string, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		downloader:   downloader,
		downloadDir:  downloadDir,
		saveDir:      saveDir,
		waitBudget:   defaultWaitBudget,
		pollInterval: defaultPollInterval,
		policy: retry.Policy{
			MaxAttempts: 5,
			Backoff:     retry.Uniform(1*time.Second, 5*time.Second),
		},
		delay:  retry.Uniform(1*time.Second, 5*time.Second),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Reconcile processes every batch of the catalog in first-seen order and
// returns the accumulated metadata report. Per-link failures are logged
// and skipped; only context cancellation aborts the whole stage.
func (r *Reconciler) Reconcile(ctx context.Context, cat *model.Catalog) (*model.MetadataReport, error) {
	batches := cat.Batches()
	report := model.NewMetadataReport()
	r.outcomes = make([]model.BatchOutcome, 0, len(batches))

	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		outcome := r.processBatch(ctx, batch)
		r.outcomes = append(r.outcomes, outcome)

		// The batch joins the report whether or not its downloads worked;
		// the metadata documents describe the catalog, not our luck.
		report.RecordBatch(batch)

		if i < len(batches)-1 {
			if err := r.pause(ctx); err != nil {
				return nil, err
			}
		}
	}

	return report, nil
}

// Outcomes returns the per-batch summaries of the last Reconcile call.
func (r *Reconciler) Outcomes() []model.BatchOutcome {
	out := make([]model.BatchOutcome, len(r.outcomes))
	copy(out, r.outcomes)
	return out
}

// processBatch runs the download flow for every link of one batch.
func (r *Reconciler) processBatch(ctx context.Context, batch *model.DownloadBatch) model.BatchOutcome {
	set := batch.MessageSet().String()
	logger := r.logger.With(slog.String("message_set", set))

	outcome := model.BatchOutcome{
		MessageSet:  set,
		NumMessages: batch.MessageCount(),
	}

	for _, link := range batch.Links() {
		if ctx.Err() != nil {
			break
		}

		outcome.LinksAttempted++
		info, err := r.processLink(ctx, set, link, logger)
		if err != nil {
			outcome.LinksFailed++
			logger.Error("giving up on download link", "link", link, "error", err)
			continue
		}

		outcome.LinksSucceeded++
		outcome.Archives = append(outcome.Archives, info)
		logger.Info("downloaded and unpacked batch archive", "archive", info.Filename)
	}

	return outcome
}

// processLink drives one download link end to end: request, wait, digest,
// unpack, clean up, re-file.
func (r *Reconciler) processLink(ctx context.Context, set, link string, logger *slog.Logger) (model.ArchiveInfo, error) {
	// Snapshot the download directory so the wait can tell a new archive
	// from leftovers of earlier links.
	before, err := ListArchives(r.downloadDir)
	if err != nil {
		return model.ArchiveInfo{}, err
	}
	seen := make(map[string]struct{}, len(before))
	for _, name := range before {
		seen[name] = struct{}{}
	}

	if err := r.policy.Do(ctx, func(ctx context.Context) error {
		return r.downloader.TriggerDownload(ctx, link)
	}); err != nil {
		return model.ArchiveInfo{}, fmt.Errorf("download request failed: %w", err)
	}

	filename, found := retry.Wait(ctx, r.pollInterval, r.waitBudget, func() (string, bool) {
		names, err := ListArchives(r.downloadDir)
		if err != nil {
			return "", false
		}
		for _, name := range names {
			if _, ok := seen[name]; !ok {
				return name, true
			}
		}
		return "", false
	})
	if !found {
		return model.ArchiveInfo{}, fmt.Errorf("%w within %s", ErrDownloadNotMaterialized, r.waitBudget)
	}

	archivePath := filepath.Join(r.downloadDir, filename)

	// Digest and size must be captured now; the archive is gone after
	// extraction and cleanup.
	info, err := describeArchive(set, archivePath)
	if err != nil {
		return model.ArchiveInfo{}, fmt.Errorf("failed to read downloaded archive: %w", err)
	}

	destDir := filepath.Join(r.saveDir, set)
	extracted, err := ExtractAll(archivePath, destDir, logger)
	if err != nil {
		return model.ArchiveInfo{}, fmt.Errorf("failed to unpack %s: %w", filename, err)
	}
	logger.Debug("extracted archive", "archive", filename, "files", len(extracted))

	if err := DeleteWithRetry(ctx, archivePath, r.policy); err != nil {
		logger.Warn("could not delete processed archive", "archive", filename, "error", err)
	}

	moved, err := Refile(r.saveDir, set, logger)
	if err != nil {
		logger.Warn("re-filing left entries behind", "error", err)
	}
	if moved > 0 {
		logger.Debug("re-filed members into their own sets", "moved", moved)
	}

	return info, nil
}

// pause sleeps the politeness delay between batches, honoring ctx.
func (r *Reconciler) pause(ctx context.Context) error {
	if r.delay == nil {
		return nil
	}
	d := r.delay()
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// describeArchive captures an archive's identity before it is consumed:
// filename, SHA3-256 digest, size, and pickup time.
func describeArchive(set, path string) (model.ArchiveInfo, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from our own download directory listing
	if err != nil {
		return model.ArchiveInfo{}, err
	}

	hash := sha3.Sum256(data)
	return model.ArchiveInfo{
		MessageSet:   set,
		Filename:     filepath.Base(path),
		SHA3:         hex.EncodeToString(hash[:]),
		SizeBytes:    int64(len(data)),
		DownloadedAt: time.Now(),
	}, nil
}
