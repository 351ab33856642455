package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values mirror how the catalog publisher behaves in practice: the
// wait and delay budgets are tuned to how long the download endpoint
// typically takes to hand an archive to the browser.
const (
	// DefaultCatalogURL is the public listing of ISO 20022 message
	// definitions. Pagination is driven by a "page" query parameter
	// appended to this URL, starting at page 0.
	DefaultCatalogURL = "https://www.iso20022.org/iso-20022-message-definitions"

	// AppName is the application name used for XDG directory paths.
	AppName = "isoharvest"

	// DefaultDownloadDir is where the browser drops batch archives,
	// relative to the working directory. The reconciler polls this
	// directory for .zip files, so it must not be shared with unrelated
	// downloads while a harvest runs.
	DefaultDownloadDir = "downloads"

	// DefaultSaveDir is where extracted schemas are filed, one
	// subdirectory per message set, relative to the working directory.
	// It is cleared at the start of every download stage because harvest
	// runs are not resumable.
	DefaultSaveDir = "iso20022-schemas"

	// DefaultOutputDir is where the metadata documents
	// (iso20022_messages.json and iso20022_sets.json) are written.
	DefaultOutputDir = "."

	// DefaultWaitBudget is the total time to wait for a requested archive
	// to land in the download directory. 15 seconds covers the publisher's
	// slowest observed responses; past that the download has almost
	// certainly been dropped and a retry is cheaper than more waiting.
	DefaultWaitBudget = 15 * time.Second

	// DefaultPollInterval is how often the download directory is scanned
	// while waiting for an archive to appear.
	DefaultPollInterval = 500 * time.Millisecond

	// DefaultDelayMin and DefaultDelayMax bound the randomized politeness
	// delay applied between batches and after failed attempts. Uniform
	// 1-5 seconds keeps request spacing irregular without stalling the run.
	DefaultDelayMin = 1 * time.Second
	DefaultDelayMax = 5 * time.Second

	// DefaultMaxPages is the maximum number of listing pages to walk.
	// The live catalog is a handful of pages; the cap only guards against
	// a listing that never stops returning areas.
	DefaultMaxPages = 100

	// DefaultPageSettle is how long the browser waits after navigation
	// before the rendered markup is read. The listing builds its catalog
	// areas with scripts, so reading immediately returns an empty shell.
	DefaultPageSettle = 2 * time.Second

	// DefaultHeadless runs Chrome without a visible window. Disable only
	// when debugging extraction against the live listing.
	DefaultHeadless = true
)

// Config holds all configuration options for a harvest run.
// This struct is designed to be populated from CLI flags and the optional
// configuration file, then passed through the application via dependency
// injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., WalkConfig, DownloadConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// CatalogURL is the listing endpoint to walk. Pagination appends a
	// "page" query parameter to this URL.
	CatalogURL string

	// DownloadDir is the directory the browser downloads batch archives
	// into. The reconciler claims archives from here one at a time.
	DownloadDir string

	// SaveDir is the directory extracted schemas are filed under, one
	// subdirectory per message set. Cleared at the start of the download
	// stage.
	SaveDir string

	// OutputDir is the directory the metadata documents are written to.
	OutputDir string

	// Mode selects how field-level validation failures are handled during
	// the walk: permissive skips the offending record, strict aborts the
	// run. The mode also sets the default retry bound (5 permissive,
	// 3 strict).
	Mode ValidationMode

	// MaxAttempts overrides the mode's retry bound when positive.
	// A value of 0 means use the mode default.
	MaxAttempts int

	// WaitBudget is the total time to wait for a requested archive to
	// appear in DownloadDir before the attempt is counted as failed.
	WaitBudget time.Duration

	// PollInterval is the delay between download-directory scans while
	// waiting for an archive.
	PollInterval time.Duration

	// DelayMin and DelayMax bound the randomized politeness delay used
	// between batches and after failed attempts.
	// DelayMin must not exceed DelayMax.
	DelayMin time.Duration
	DelayMax time.Duration

	// MaxPages is the maximum number of listing pages to walk.
	// This prevents runaway walking on a listing that never stops
	// returning areas.
	MaxPages int

	// UserAgent overrides the browser User-Agent header. When empty, a
	// random desktop User-Agent is drawn once per run.
	UserAgent string

	// Headless controls whether Chrome runs without a visible window.
	Headless bool

	// PageSettle is how long the browser waits after navigation before
	// reading the rendered markup.
	PageSettle time.Duration

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONReport enables JSON session report output instead of the
	// human-readable format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown session report output instead of
	// the human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the session report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .isoharvest in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// DBDir is the directory path for storing the harvest history
	// database. When set, run results are saved for historical comparison.
	// Defaults to XDG data directory (~/.local/share/isoharvest on Linux).
	DBDir string

	// SaveToDB indicates whether to save run results to the database.
	// This is automatically set to true when DBDir is configured.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., URLs, durations,
// the headless flag). This also serves as documentation of what the
// defaults are.
func NewConfig() *Config {
	return &Config{
		CatalogURL:   DefaultCatalogURL,
		DownloadDir:  DefaultDownloadDir,
		SaveDir:      DefaultSaveDir,
		OutputDir:    DefaultOutputDir,
		Mode:         ModePermissive,
		WaitBudget:   DefaultWaitBudget,
		PollInterval: DefaultPollInterval,
		DelayMin:     DefaultDelayMin,
		DelayMax:     DefaultDelayMax,
		MaxPages:     DefaultMaxPages,
		Headless:     DefaultHeadless,
		PageSettle:   DefaultPageSettle,
	}
}

// RetryAttempts returns the retry bound in effect for this run:
// MaxAttempts when explicitly set, otherwise the mode's default
// (5 permissive, 3 strict).
func (c *Config) RetryAttempts() int {
	if c.MaxAttempts > 0 {
		return c.MaxAttempts
	}
	return c.Mode.MaxAttempts()
}

// XDGDataDir returns the XDG data directory for isoharvest.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/isoharvest
// On macOS: ~/Library/Application Support/isoharvest
// On Windows: %LOCALAPPDATA%\isoharvest
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for isoharvest.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/isoharvest
// On macOS: ~/Library/Application Support/isoharvest
// On Windows: %APPDATA%\isoharvest
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for isoharvest.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.cache/isoharvest
// On macOS: ~/Library/Caches/isoharvest
// On Windows: %LOCALAPPDATA%\isoharvest\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before the browser starts.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// The walker appends query parameters to this URL, so it must parse
	// and carry a scheme.
	u, err := url.Parse(c.CatalogURL)
	if err != nil || !u.IsAbs() {
		return ErrInvalidCatalogURL
	}

	if c.DownloadDir == "" {
		return ErrEmptyDownloadDir
	}
	if c.SaveDir == "" {
		return ErrEmptySaveDir
	}
	if c.OutputDir == "" {
		return ErrEmptyOutputDir
	}

	// The reconciler moves archives out of DownloadDir and extracts them
	// under SaveDir; sharing one directory would make it claim its own
	// extracted output.
	if filepath.Clean(c.DownloadDir) == filepath.Clean(c.SaveDir) {
		return ErrSameDownloadAndSaveDir
	}

	if c.Mode != ModePermissive && c.Mode != ModeStrict {
		return ErrInvalidMode
	}

	// MaxAttempts of 0 means "use the mode default"; negatives are nonsense
	if c.MaxAttempts < 0 {
		return ErrInvalidMaxAttempts
	}

	// WaitBudget and PollInterval must be positive; zero would mean the
	// reconciler never waits for a download to land
	if c.WaitBudget <= 0 {
		return ErrInvalidWaitBudget
	}
	if c.PollInterval <= 0 {
		return ErrInvalidPollInterval
	}

	// Delay bounds must form a valid range
	if c.DelayMin < 0 || c.DelayMax < c.DelayMin {
		return ErrInvalidDelayRange
	}

	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}

	// PageSettle may be zero (for tests with canned pages) but not negative
	if c.PageSettle < 0 {
		return ErrInvalidPageSettle
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
