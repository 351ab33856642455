package config

import (
	"fmt"
	"time"
)

// File represents the structure of the .isoharvest configuration file.
// Every field is optional; zero values mean "keep the current setting".
//
// Durations are written as Go duration strings ("15s", "500ms") rather
// than bare integers so the file stays readable and unit mistakes are
// caught at load time.
type File struct {
	// CatalogURL overrides the listing endpoint to walk.
	CatalogURL string `yaml:"catalog_url,omitempty"`

	// DownloadDir overrides where the browser drops batch archives.
	DownloadDir string `yaml:"download_dir,omitempty"`

	// SaveDir overrides where extracted schemas are filed.
	SaveDir string `yaml:"save_dir,omitempty"`

	// OutputDir overrides where the metadata documents are written.
	OutputDir string `yaml:"output_dir,omitempty"`

	// Mode selects the validation mode: "permissive" or "strict".
	Mode string `yaml:"mode,omitempty"`

	// MaxAttempts overrides the mode's download retry bound.
	MaxAttempts int `yaml:"max_attempts,omitempty"`

	// WaitBudget overrides the total download wait time, e.g. "15s".
	WaitBudget string `yaml:"wait_budget,omitempty"`

	// PollInterval overrides the download poll interval, e.g. "500ms".
	PollInterval string `yaml:"poll_interval,omitempty"`

	// DelayMin and DelayMax override the politeness delay bounds,
	// e.g. "1s" and "5s".
	DelayMin string `yaml:"delay_min,omitempty"`
	DelayMax string `yaml:"delay_max,omitempty"`

	// MaxPages overrides the listing page cap.
	MaxPages int `yaml:"max_pages,omitempty"`

	// UserAgent overrides the browser User-Agent header.
	UserAgent string `yaml:"user_agent,omitempty"`

	// Headless overrides whether Chrome runs without a visible window.
	// A pointer distinguishes "not set" from an explicit false.
	Headless *bool `yaml:"headless,omitempty"`

	// PageSettle overrides how long the browser waits after navigation
	// before reading the markup, e.g. "2s".
	PageSettle string `yaml:"page_settle,omitempty"`
}

// Apply overlays the file's settings onto cfg.
// Only fields that are set in the file are applied, so CLI flags and
// defaults survive for everything the file leaves out. Invalid values
// (unknown mode, unparseable duration) return an error naming the field.
func (f *File) Apply(cfg *Config) error {
	if f.CatalogURL != "" {
		cfg.CatalogURL = f.CatalogURL
	}
	if f.DownloadDir != "" {
		cfg.DownloadDir = f.DownloadDir
	}
	if f.SaveDir != "" {
		cfg.SaveDir = f.SaveDir
	}
	if f.OutputDir != "" {
		cfg.OutputDir = f.OutputDir
	}

	if f.Mode != "" {
		mode, err := ParseValidationMode(f.Mode)
		if err != nil {
			return fmt.Errorf("mode: %w", err)
		}
		cfg.Mode = mode
	}

	if f.MaxAttempts != 0 {
		cfg.MaxAttempts = f.MaxAttempts
	}

	if err := applyDuration(f.WaitBudget, "wait_budget", &cfg.WaitBudget); err != nil {
		return err
	}
	if err := applyDuration(f.PollInterval, "poll_interval", &cfg.PollInterval); err != nil {
		return err
	}
	if err := applyDuration(f.DelayMin, "delay_min", &cfg.DelayMin); err != nil {
		return err
	}
	if err := applyDuration(f.DelayMax, "delay_max", &cfg.DelayMax); err != nil {
		return err
	}
	if err := applyDuration(f.PageSettle, "page_settle", &cfg.PageSettle); err != nil {
		return err
	}

	if f.MaxPages != 0 {
		cfg.MaxPages = f.MaxPages
	}
	if f.UserAgent != "" {
		cfg.UserAgent = f.UserAgent
	}
	if f.Headless != nil {
		cfg.Headless = *f.Headless
	}

	return nil
}

// applyDuration parses a duration string from the file and stores it in dst.
// An empty string leaves dst untouched.
func applyDuration(s, field string, dst *time.Duration) error {
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q: %w", field, s, err)
	}
	*dst = d
	return nil
}
