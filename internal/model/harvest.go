package model

import "time"

// ArchiveInfo describes one schema archive that landed on disk during the
// download stage. The digest and size are captured before the archive is
// deleted after extraction.
type ArchiveInfo struct {
	// MessageSet is the set the archive was downloaded for.
	MessageSet string `json:"message_set"`

	// Filename is the archive's name in the download directory.
	Filename string `json:"filename"`

	// SHA3 is the hex-encoded SHA3-256 digest of the archive bytes.
	SHA3 string `json:"sha3_256"`

	// SizeBytes is the archive size in bytes.
	SizeBytes int64 `json:"size_bytes"`

	// DownloadedAt is when the archive was picked up from disk.
	DownloadedAt time.Time `json:"downloaded_at"`
}

// BatchOutcome summarizes the download stage for one batch.
type BatchOutcome struct {
	// MessageSet is the four-letter set code.
	MessageSet string `json:"message_set"`

	// NumMessages is the number of distinct records in the batch.
	NumMessages int `json:"num_messages"`

	// LinksAttempted counts the batch download links processed.
	LinksAttempted int `json:"links_attempted"`

	// LinksSucceeded counts links whose archive was downloaded and unpacked.
	LinksSucceeded int `json:"links_succeeded"`

	// LinksFailed counts links given up on after retries or wait timeouts.
	LinksFailed int `json:"links_failed"`

	// Archives lists the archives processed for this batch.
	Archives []ArchiveInfo `json:"archives,omitempty"`
}

// HarvestReport aggregates everything a single harvest run produced.
// It is created by the harvest command and passed through the pipeline;
// each step fills in its portion.
type HarvestReport struct {
	// === Run identity ===

	// CatalogURL is the listing endpoint that was walked.
	CatalogURL string `json:"catalog_url"`

	// Mode is the validation mode the run used ("permissive" or "strict").
	Mode string `json:"mode"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the run completed (zero until then).
	FinishedAt time.Time `json:"finished_at,omitzero"`

	// === Walk results ===

	// PagesWalked is the number of listing pages fetched, including the
	// empty page that terminated the walk.
	PagesWalked int `json:"pages_walked"`

	// Catalog holds the accumulated batches. Not serialized; the outcomes
	// and the metadata documents carry the persisted view.
	Catalog *Catalog `json:"-"`

	// === Download results ===

	// Outcomes summarizes each batch's downloads in processing order.
	Outcomes []BatchOutcome `json:"batches"`

	// Metadata is the accumulated metadata report. Not serialized here;
	// it is persisted as its own pair of documents.
	Metadata *MetadataReport `json:"-"`

	// === Execution tracking ===

	// PerformedSteps lists the pipeline steps that ran, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Error is the fatal error that aborted the run, if any.
	// Excluded from JSON because error values do not serialize usefully.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewHarvestReport creates a report for a run against the given catalog.
func NewHarvestReport(catalogURL, mode string) *HarvestReport {
	return &HarvestReport{
		CatalogURL:     catalogURL,
		Mode:           mode,
		StartedAt:      time.Now(),
		Outcomes:       make([]BatchOutcome, 0),
		PerformedSteps: make([]string, 0),
	}
}

// AddOutcome appends one batch's download summary.
func (r *HarvestReport) AddOutcome(outcome BatchOutcome) {
	r.Outcomes = append(r.Outcomes, outcome)
}

// TotalBatches returns the number of batches processed.
func (r *HarvestReport) TotalBatches() int {
	return len(r.Outcomes)
}

// TotalMessages returns the total distinct records across all outcomes.
func (r *HarvestReport) TotalMessages() int {
	total := 0
	for _, o := range r.Outcomes {
		total += o.NumMessages
	}
	return total
}

// LinkFailures returns the total links given up on across all outcomes.
func (r *HarvestReport) LinkFailures() int {
	total := 0
	for _, o := range r.Outcomes {
		total += o.LinksFailed
	}
	return total
}

// Archives returns every archive processed during the run, in batch order.
func (r *HarvestReport) Archives() []ArchiveInfo {
	out := make([]ArchiveInfo, 0)
	for _, o := range r.Outcomes {
		out = append(out, o.Archives...)
	}
	return out
}

// Succeeded reports whether the run completed without a fatal error.
func (r *HarvestReport) Succeeded() bool {
	return r.Error == nil && r.ErrorMessage == ""
}

// Duration returns how long the run took, or zero if it has not finished.
func (r *HarvestReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
