package config

import (
	"fmt"
	"strings"
)

// ValidationMode controls how the walker reacts when a catalog record fails
// field-level validation (wrong field count, malformed identifier, missing
// version suffix, relative link).
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons. The String() method provides human-readable
// output when needed. Structural page failures (no areas on the first page,
// missing set label, missing batch link, empty download list) are always
// fatal regardless of mode; the mode only governs record-level defects.
type ValidationMode int

const (
	// ModePermissive skips any record that fails field validation, logs
	// the defect, and keeps walking. Downloads retry up to 5 times.
	// This is the default: one malformed row on the listing should not
	// void an otherwise complete harvest.
	ModePermissive ValidationMode = iota

	// ModeStrict aborts the entire run on the first record that fails
	// field validation. Downloads retry up to 3 times. Use this when the
	// output feeds automated processing and silent gaps are worse than
	// no output at all.
	ModeStrict
)

// modeAttempts maps each mode to its default download retry bound.
// The permissive variant tolerates more transient failures because it is
// expected to produce a best-effort harvest; the strict variant gives up
// sooner because partial output is already considered a failure.
var modeAttempts = map[ValidationMode]int{
	ModePermissive: 5,
	ModeStrict:     3,
}

// String returns a human-readable representation of the validation mode.
func (m ValidationMode) String() string {
	switch m {
	case ModePermissive:
		return "permissive"
	case ModeStrict:
		return "strict"
	default:
		return "unknown"
	}
}

// MaxAttempts returns the default download retry bound for the mode.
// Unknown modes fall back to the permissive bound.
func (m ValidationMode) MaxAttempts() int {
	if n, ok := modeAttempts[m]; ok {
		return n
	}
	return modeAttempts[ModePermissive]
}

// ParseValidationMode converts a user-supplied string into a ValidationMode.
// Matching is case-insensitive and ignores surrounding whitespace.
// It returns ErrInvalidMode for anything other than the known modes.
func ParseValidationMode(s string) (ValidationMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "permissive":
		return ModePermissive, nil
	case "strict":
		return ModeStrict, nil
	default:
		return ModePermissive, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}
