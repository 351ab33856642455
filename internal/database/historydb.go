package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/isoharvest/internal/model"
)

// Run status values stored in the harvest_runs.status column.
const (
	// StatusSucceeded marks a run whose pipeline finished without error.
	StatusSucceeded = "succeeded"

	// StatusFailed marks a run aborted by a pipeline error.
	StatusFailed = "failed"
)

// HistoryDB provides SQLite-based storage for harvest history.
// It manages connection pooling and provides methods for recording and
// querying completed runs.
//
// Design decision: We use a single database file for all runs rather than
// one file per run. The history and compare commands need cross-run
// queries, and a single file keeps backup/restore trivial.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB at the specified path.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, "isoharvest.db")

	// Check if we should create the database or require it to exist
	if !opts.CreateIfNotExists {
		// Check if database file exists
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		// Ensure directory exists
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Build connection string
	// We use modernc.org/sqlite which uses a different connection string format.
	// When CreateIfNotExists is false, we use mode=rw to prevent creating new files.
	// When CreateIfNotExists is true, we use mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	// SQLite doesn't benefit from multiple connections for writes,
	// and the harvest is strictly sequential anyway
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	// Enable WAL mode if requested
	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Create tables
	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- One summary row per completed harvest run
	CREATE TABLE IF NOT EXISTS harvest_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		catalog_url TEXT NOT NULL,
		mode TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		pages_walked INTEGER NOT NULL DEFAULT 0,
		batch_count INTEGER NOT NULL DEFAULT 0,
		message_count INTEGER NOT NULL DEFAULT 0,
		link_failures INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON harvest_runs(started_at);

	-- Per-batch download outcomes belonging to a run
	CREATE TABLE IF NOT EXISTS run_batches (
		run_id INTEGER NOT NULL,
		message_set TEXT NOT NULL,
		num_messages INTEGER NOT NULL DEFAULT 0,
		num_links INTEGER NOT NULL DEFAULT 0,
		links_succeeded INTEGER NOT NULL DEFAULT 0,
		links_failed INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, message_set)
	);

	CREATE INDEX IF NOT EXISTS idx_batches_run ON run_batches(run_id);

	-- Digests of the archives a run downloaded, for later auditing
	CREATE TABLE IF NOT EXISTS run_archives (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL,
		message_set TEXT NOT NULL,
		filename TEXT NOT NULL,
		sha3_256 TEXT NOT NULL,
		size_bytes INTEGER NOT NULL DEFAULT 0,
		downloaded_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_archives_run ON run_archives(run_id);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// RunRecord is the stored summary of one harvest run.
type RunRecord struct {
	// ID is the unique identifier of the run in the database.
	ID int64

	// CatalogURL is the catalog the run walked.
	CatalogURL string

	// Mode is the validation mode the run used.
	Mode string

	// StartedAt is when the run began.
	StartedAt time.Time

	// FinishedAt is when the run ended. Zero if the run never finished.
	FinishedAt time.Time

	// PagesWalked is the number of catalog pages the run fetched.
	PagesWalked int

	// BatchCount is the number of message sets the run discovered.
	BatchCount int

	// MessageCount is the number of message records the run discovered.
	MessageCount int

	// LinkFailures is the number of download links that never materialized.
	LinkFailures int

	// Status is StatusSucceeded or StatusFailed.
	Status string
}

// BatchRecord is the stored outcome of one batch within a run.
type BatchRecord struct {
	// RunID identifies the run this batch belongs to.
	RunID int64

	// MessageSet is the four-letter business area identifier.
	MessageSet string

	// NumMessages is the number of message records in the batch.
	NumMessages int

	// NumLinks is the number of download links attempted.
	NumLinks int

	// LinksSucceeded is the number of links that produced an archive.
	LinksSucceeded int

	// LinksFailed is the number of links given up on.
	LinksFailed int
}

// ArchiveRecord is the stored digest of one downloaded archive.
type ArchiveRecord struct {
	// RunID identifies the run that downloaded the archive.
	RunID int64

	// MessageSet is the batch the archive belonged to.
	MessageSet string

	// Filename is the name the archive landed under.
	Filename string

	// SHA3 is the hex-encoded SHA3-256 digest of the archive.
	SHA3 string

	// SizeBytes is the archive size in bytes.
	SizeBytes int64

	// DownloadedAt is when the archive materialized.
	DownloadedAt time.Time
}

// SaveRun records a completed harvest in a single transaction and returns
// the new run ID. The report is stored regardless of whether the run
// succeeded; failed runs keep whatever batches they completed.
func (hdb *HistoryDB) SaveRun(ctx context.Context, report *model.HarvestReport) (int64, error) {
	status := StatusSucceeded
	if !report.Succeeded() {
		status = StatusFailed
	}

	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after a successful commit

	runQuery := `
	INSERT INTO harvest_runs (catalog_url, mode, started_at, finished_at, pages_walked, batch_count, message_count, link_failures, status)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, runQuery,
		report.CatalogURL,
		report.Mode,
		formatTimestamp(report.StartedAt),
		nullableTimestamp(report.FinishedAt),
		report.PagesWalked,
		report.TotalBatches(),
		report.TotalMessages(),
		report.LinkFailures(),
		status,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run ID: %w", err)
	}

	// Uses UPSERT to stay safe if the same set somehow appears twice.
	batchQuery := `
	INSERT INTO run_batches (run_id, message_set, num_messages, num_links, links_succeeded, links_failed)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_id, message_set) DO UPDATE SET
		num_messages = excluded.num_messages,
		num_links = excluded.num_links,
		links_succeeded = excluded.links_succeeded,
		links_failed = excluded.links_failed
	`

	archiveQuery := `
	INSERT INTO run_archives (run_id, message_set, filename, sha3_256, size_bytes, downloaded_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	for _, outcome := range report.Outcomes {
		if _, err := tx.ExecContext(ctx, batchQuery,
			runID,
			outcome.MessageSet,
			outcome.NumMessages,
			outcome.LinksAttempted,
			outcome.LinksSucceeded,
			outcome.LinksFailed,
		); err != nil {
			return 0, fmt.Errorf("failed to insert batch %s: %w", outcome.MessageSet, err)
		}

		for _, archive := range outcome.Archives {
			if _, err := tx.ExecContext(ctx, archiveQuery,
				runID,
				archive.MessageSet,
				archive.Filename,
				archive.SHA3,
				archive.SizeBytes,
				nullableTimestamp(archive.DownloadedAt),
			); err != nil {
				return 0, fmt.Errorf("failed to insert archive %s: %w", archive.Filename, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}

	return runID, nil
}

// ListRuns returns run summaries ordered most recent first.
// A limit of zero or less returns all runs.
func (hdb *HistoryDB) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `
	SELECT id, catalog_url, mode, started_at, finished_at, pages_walked, batch_count, message_count, link_failures, status
	FROM harvest_runs
	ORDER BY started_at DESC, id DESC
	`
	args := make([]any, 0, 1)

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// GetRun retrieves a run summary by its database ID.
// Returns nil without error when no run has that ID.
func (hdb *HistoryDB) GetRun(ctx context.Context, id int64) (*RunRecord, error) {
	query := `
	SELECT id, catalog_url, mode, started_at, finished_at, pages_walked, batch_count, message_count, link_failures, status
	FROM harvest_runs
	WHERE id = ?
	`

	row := hdb.db.QueryRowContext(ctx, query, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &run, nil
}

// BatchesForRun retrieves the per-batch outcomes of a run, ordered by
// message set. An unknown run ID yields an empty slice.
func (hdb *HistoryDB) BatchesForRun(ctx context.Context, runID int64) ([]BatchRecord, error) {
	query := `
	SELECT run_id, message_set, num_messages, num_links, links_succeeded, links_failed
	FROM run_batches
	WHERE run_id = ?
	ORDER BY message_set
	`

	rows, err := hdb.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer rows.Close()

	var batches []BatchRecord
	for rows.Next() {
		var batch BatchRecord
		if err := rows.Scan(
			&batch.RunID,
			&batch.MessageSet,
			&batch.NumMessages,
			&batch.NumLinks,
			&batch.LinksSucceeded,
			&batch.LinksFailed,
		); err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		batches = append(batches, batch)
	}

	return batches, rows.Err()
}

// ArchivesForRun retrieves the archive digests of a run, ordered by
// message set and filename.
func (hdb *HistoryDB) ArchivesForRun(ctx context.Context, runID int64) ([]ArchiveRecord, error) {
	query := `
	SELECT run_id, message_set, filename, sha3_256, size_bytes, downloaded_at
	FROM run_archives
	WHERE run_id = ?
	ORDER BY message_set, filename
	`

	rows, err := hdb.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query archives: %w", err)
	}
	defer rows.Close()

	var archives []ArchiveRecord
	for rows.Next() {
		var archive ArchiveRecord
		var downloadedAt sql.NullString

		if err := rows.Scan(
			&archive.RunID,
			&archive.MessageSet,
			&archive.Filename,
			&archive.SHA3,
			&archive.SizeBytes,
			&downloadedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan archive: %w", err)
		}

		if downloadedAt.Valid {
			archive.DownloadedAt = parseTimestamp(downloadedAt.String)
		}
		archives = append(archives, archive)
	}

	return archives, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRun scans one harvest_runs row.
func scanRun(row rowScanner) (RunRecord, error) {
	var run RunRecord
	var startedAt string
	var finishedAt sql.NullString

	err := row.Scan(
		&run.ID,
		&run.CatalogURL,
		&run.Mode,
		&startedAt,
		&finishedAt,
		&run.PagesWalked,
		&run.BatchCount,
		&run.MessageCount,
		&run.LinkFailures,
		&run.Status,
	)
	if err == sql.ErrNoRows {
		return RunRecord{}, err
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("failed to scan run: %w", err)
	}

	// Parse timestamps (SQLite may return different formats depending on version/configuration)
	run.StartedAt = parseTimestamp(startedAt)
	if finishedAt.Valid {
		run.FinishedAt = parseTimestamp(finishedAt.String)
	}

	return run, nil
}

// formatTimestamp renders a time in the SQLite default datetime format.
// All stored timestamps are UTC.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}

// nullableTimestamp renders a time for insertion, mapping the zero time
// to NULL so unfinished runs stay distinguishable.
func nullableTimestamp(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatTimestamp(t)
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t.UTC()
		}
	}
	// Return zero time if no format matches
	// This is a fallback to avoid breaking functionality for edge cases
	return time.Time{}
}
