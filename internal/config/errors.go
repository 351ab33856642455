package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrInvalidCatalogURL is returned when the catalog URL is empty or
	// not an absolute URL. The walker appends page query parameters to it,
	// so a relative or malformed URL cannot be paginated.
	ErrInvalidCatalogURL = errors.New("invalid catalog URL: must be an absolute URL")

	// ErrEmptyDownloadDir is returned when the download directory is empty.
	// The browser needs somewhere to drop batch archives.
	ErrEmptyDownloadDir = errors.New("download directory must not be empty")

	// ErrEmptySaveDir is returned when the save directory is empty.
	// Extracted schemas are filed under this directory per message set.
	ErrEmptySaveDir = errors.New("save directory must not be empty")

	// ErrEmptyOutputDir is returned when the output directory is empty.
	// The metadata documents are written into this directory.
	ErrEmptyOutputDir = errors.New("output directory must not be empty")

	// ErrSameDownloadAndSaveDir is returned when the download and save
	// directories resolve to the same path. The reconciler claims archives
	// from the download directory and extracts into the save directory;
	// sharing one path would make it claim its own output.
	ErrSameDownloadAndSaveDir = errors.New("download and save directories must differ")

	// ErrInvalidMode is returned when the validation mode is not one of
	// the known modes. Use "permissive" or "strict".
	ErrInvalidMode = errors.New("invalid validation mode: must be \"permissive\" or \"strict\"")

	// ErrInvalidMaxAttempts is returned when the retry bound override is
	// negative. Use 0 to fall back to the mode default.
	ErrInvalidMaxAttempts = errors.New("invalid max attempts: must be non-negative")

	// ErrInvalidWaitBudget is returned when the download wait budget is
	// not positive. A zero budget would give downloads no time to land.
	ErrInvalidWaitBudget = errors.New("invalid wait budget: must be positive")

	// ErrInvalidPollInterval is returned when the poll interval is not
	// positive. A zero interval would spin on the download directory.
	ErrInvalidPollInterval = errors.New("invalid poll interval: must be positive")

	// ErrInvalidDelayRange is returned when the politeness delay bounds do
	// not form a valid range (negative minimum, or maximum below minimum).
	ErrInvalidDelayRange = errors.New("invalid delay range: min must be non-negative and not exceed max")

	// ErrInvalidMaxPages is returned when the page cap is not positive.
	// The walk needs at least one page to do anything.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidPageSettle is returned when the page settle duration is
	// negative. Use 0 to read the markup immediately after navigation.
	ErrInvalidPageSettle = errors.New("invalid page settle: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
