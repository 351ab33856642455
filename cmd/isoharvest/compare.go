package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/isoharvest/internal/config"
	"github.com/nao1215/isoharvest/internal/database"
	"github.com/spf13/cobra"
)

// Constants for catalog drift direction.
const (
	driftDirectionGrew      = "grew"
	driftDirectionShrank    = "shrank"
	driftDirectionUnchanged = "unchanged"
)

// NewCompareCmd creates the compare command.
// This command compares two harvest runs recorded in the database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare two recorded harvest runs",
		Long: `Compare displays how the catalog changed between two harvest runs.

This command retrieves two runs from the history database and shows:
- Message sets that appeared since the older run
- Message sets that disappeared
- Sets whose message count changed

Without flags the two most recent runs are compared. Use
'isoharvest history' to list run IDs.

Examples:
  # Compare the latest two runs
  isoharvest compare

  # Compare specific runs by ID
  isoharvest compare --from 3 --to 7

  # Output the comparison in JSON format
  isoharvest compare --json`,
		Args: cobra.NoArgs,
		RunE: runCompareCmd,
	}

	// Comparison target flags
	cmd.Flags().Int64P("from", "f", 0,
		"Older run ID to compare from (default: second most recent run)")
	cmd.Flags().Int64P("to", "t", 0,
		"Newer run ID to compare to (default: most recent run)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, _ []string) error {
	fromID, err := cmd.Flags().GetInt64("from")
	if err != nil {
		return err
	}
	toID, err := cmd.Flags().GetInt64("to")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database.
	// This prevents database lock issues when validation fails.
	if fromID < 0 || toID < 0 {
		return fmt.Errorf("run IDs must be positive (got --from %d --to %d)", fromID, toID)
	}
	if fromID != 0 && fromID == toID {
		return fmt.Errorf("cannot compare run %d with itself", fromID)
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return fmt.Errorf("conflicting report formats: --json and --markdown are mutually exclusive")
	}

	// Use XDG data directory for database
	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	return runComparison(context.Background(), db, fromID, toID, jsonOutput, markdownOutput)
}

// runComparison resolves the two runs and outputs their diff.
// A zero fromID or toID is resolved to the second most recent or most
// recent run respectively.
func runComparison(ctx context.Context, db *database.HistoryDB, fromID, toID int64, jsonOutput, markdownOutput bool) error {
	if fromID == 0 || toID == 0 {
		recent, err := db.ListRuns(ctx, 2)
		if err != nil {
			return fmt.Errorf("failed to list harvest runs: %w", err)
		}
		if toID == 0 {
			if len(recent) < 1 {
				return fmt.Errorf("no harvest runs found in the database")
			}
			toID = recent[0].ID
		}
		if fromID == 0 {
			if len(recent) < 2 {
				return fmt.Errorf("at least 2 recorded runs are required for comparison (found %d)", len(recent))
			}
			fromID = recent[1].ID
		}
	}

	if fromID == toID {
		return fmt.Errorf("cannot compare run %d with itself", fromID)
	}

	fromRun, err := db.GetRun(ctx, fromID)
	if err != nil {
		return fmt.Errorf("failed to get run %d: %w", fromID, err)
	}
	if fromRun == nil {
		return fmt.Errorf("run %d not found (use 'isoharvest history' to list run IDs)", fromID)
	}

	toRun, err := db.GetRun(ctx, toID)
	if err != nil {
		return fmt.Errorf("failed to get run %d: %w", toID, err)
	}
	if toRun == nil {
		return fmt.Errorf("run %d not found (use 'isoharvest history' to list run IDs)", toID)
	}

	fromBatches, err := db.BatchesForRun(ctx, fromID)
	if err != nil {
		return fmt.Errorf("failed to get batches for run %d: %w", fromID, err)
	}
	toBatches, err := db.BatchesForRun(ctx, toID)
	if err != nil {
		return fmt.Errorf("failed to get batches for run %d: %w", toID, err)
	}

	comparison := compareRuns(fromRun, toRun, fromBatches, toBatches)

	// Output the result
	if jsonOutput {
		return outputComparisonJSON(comparison)
	}
	if markdownOutput {
		return outputComparisonMarkdown(comparison)
	}
	return outputComparisonText(comparison)
}

// CatalogComparison holds the result of comparing two harvest runs.
type CatalogComparison struct {
	// FromRun contains metadata about the older run.
	FromRun RunSummary `json:"from_run"`

	// ToRun contains metadata about the newer run.
	ToRun RunSummary `json:"to_run"`

	// NewSets contains message sets present only in the newer run.
	NewSets []BatchChange `json:"new_sets,omitempty"`

	// RemovedSets contains message sets present only in the older run.
	RemovedSets []BatchChange `json:"removed_sets,omitempty"`

	// ChangedSets contains message sets whose message count changed.
	ChangedSets []BatchChange `json:"changed_sets,omitempty"`

	// UnchangedCount is the number of sets with identical message counts.
	UnchangedCount int `json:"unchanged_count"`

	// Drift describes the overall change in catalog size.
	Drift CatalogDrift `json:"drift"`
}

// RunSummary contains metadata about one run for comparison display.
type RunSummary struct {
	// ID is the run's identifier in the database.
	ID int64 `json:"id"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Status is "succeeded" or "failed".
	Status string `json:"status"`

	// BatchCount is the number of message sets the run recorded.
	BatchCount int `json:"batches"`

	// MessageCount is the number of message records the run recorded.
	MessageCount int `json:"messages"`
}

// BatchChange describes one message set's difference between two runs.
type BatchChange struct {
	// MessageSet is the four-letter business area identifier.
	MessageSet string `json:"message_set"`

	// FromMessages is the set's message count in the older run.
	// Zero for sets that are new.
	FromMessages int `json:"from_messages,omitempty"`

	// ToMessages is the set's message count in the newer run.
	// Zero for sets that were removed.
	ToMessages int `json:"to_messages,omitempty"`

	// Delta is ToMessages minus FromMessages.
	Delta int `json:"delta"`
}

// CatalogDrift describes the overall change in catalog size between runs.
type CatalogDrift struct {
	// Direction is "grew", "shrank", or "unchanged".
	Direction string `json:"direction"`

	// SetDelta is the change in the number of message sets.
	SetDelta int `json:"set_delta"`

	// MessageDelta is the change in the total number of messages.
	MessageDelta int `json:"message_delta"`
}

// compareRuns diffs the batches of two runs and generates a comparison.
// The change lists are sorted by message set so output is deterministic.
func compareRuns(fromRun, toRun *database.RunRecord, fromBatches, toBatches []database.BatchRecord) *CatalogComparison {
	result := &CatalogComparison{
		FromRun: RunSummary{
			ID:           fromRun.ID,
			StartedAt:    fromRun.StartedAt,
			Status:       fromRun.Status,
			BatchCount:   fromRun.BatchCount,
			MessageCount: fromRun.MessageCount,
		},
		ToRun: RunSummary{
			ID:           toRun.ID,
			StartedAt:    toRun.StartedAt,
			Status:       toRun.Status,
			BatchCount:   toRun.BatchCount,
			MessageCount: toRun.MessageCount,
		},
	}

	// Build per-set message counts for comparison
	fromSets := make(map[string]int, len(fromBatches))
	for _, b := range fromBatches {
		fromSets[b.MessageSet] = b.NumMessages
	}
	toSets := make(map[string]int, len(toBatches))
	for _, b := range toBatches {
		toSets[b.MessageSet] = b.NumMessages
	}

	// Sets in the newer run only, or with a changed count
	for set, toCount := range toSets {
		fromCount, exists := fromSets[set]
		switch {
		case !exists:
			result.NewSets = append(result.NewSets, BatchChange{
				MessageSet: set,
				ToMessages: toCount,
				Delta:      toCount,
			})
		case fromCount != toCount:
			result.ChangedSets = append(result.ChangedSets, BatchChange{
				MessageSet:   set,
				FromMessages: fromCount,
				ToMessages:   toCount,
				Delta:        toCount - fromCount,
			})
		default:
			result.UnchangedCount++
		}
	}

	// Sets in the older run only
	for set, fromCount := range fromSets {
		if _, exists := toSets[set]; !exists {
			result.RemovedSets = append(result.RemovedSets, BatchChange{
				MessageSet:   set,
				FromMessages: fromCount,
				Delta:        -fromCount,
			})
		}
	}

	sortBatchChanges(result.NewSets)
	sortBatchChanges(result.RemovedSets)
	sortBatchChanges(result.ChangedSets)

	result.Drift = calculateDrift(fromSets, toSets)

	return result
}

// sortBatchChanges orders changes by message set identifier.
func sortBatchChanges(changes []BatchChange) {
	sort.Slice(changes, func(i, j int) bool {
		return changes[i].MessageSet < changes[j].MessageSet
	})
}

// calculateDrift calculates the overall catalog size change between runs.
func calculateDrift(fromSets, toSets map[string]int) CatalogDrift {
	fromTotal := 0
	for _, n := range fromSets {
		fromTotal += n
	}
	toTotal := 0
	for _, n := range toSets {
		toTotal += n
	}

	drift := CatalogDrift{
		SetDelta:     len(toSets) - len(fromSets),
		MessageDelta: toTotal - fromTotal,
	}

	// Message counts decide the direction; set counts break the tie so a
	// catalog that swapped one set for an equally sized one still reads
	// as changed only when something really moved.
	switch {
	case drift.MessageDelta > 0 || (drift.MessageDelta == 0 && drift.SetDelta > 0):
		drift.Direction = driftDirectionGrew
	case drift.MessageDelta < 0 || (drift.MessageDelta == 0 && drift.SetDelta < 0):
		drift.Direction = driftDirectionShrank
	default:
		drift.Direction = driftDirectionUnchanged
	}

	return drift
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(result *CatalogComparison) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(result *CatalogComparison) error {
	fmt.Printf("# Harvest Comparison: run %d vs run %d\n\n", result.FromRun.ID, result.ToRun.ID)

	// Drift summary
	fmt.Println("## Summary")
	fmt.Printf("\n**Catalog Drift:** %s\n\n", formatDriftDirection(result.Drift))

	// Run metadata table
	fmt.Println("| Metric | From | To | Change |")
	fmt.Println("|--------|------|-----|--------|")
	fmt.Printf("| Run ID | %d | %d | - |\n", result.FromRun.ID, result.ToRun.ID)
	fmt.Printf("| Started | %s | %s | - |\n",
		result.FromRun.StartedAt.Format("2006-01-02 15:04"),
		result.ToRun.StartedAt.Format("2006-01-02 15:04"))
	fmt.Printf("| Status | %s | %s | - |\n", result.FromRun.Status, result.ToRun.Status)
	fmt.Printf("| Message sets | %d | %d | %s |\n",
		result.FromRun.BatchCount,
		result.ToRun.BatchCount,
		formatDelta(result.Drift.SetDelta))
	fmt.Printf("| Messages | %d | %d | %s |\n",
		result.FromRun.MessageCount,
		result.ToRun.MessageCount,
		formatDelta(result.Drift.MessageDelta))

	// New sets
	if len(result.NewSets) > 0 {
		fmt.Printf("\n## New Sets (%d)\n\n", len(result.NewSets))
		for _, c := range result.NewSets {
			fmt.Printf("- **%s** (%d messages)\n", c.MessageSet, c.ToMessages)
		}
	}

	// Removed sets
	if len(result.RemovedSets) > 0 {
		fmt.Printf("\n## Removed Sets (%d)\n\n", len(result.RemovedSets))
		for _, c := range result.RemovedSets {
			fmt.Printf("- ~~**%s** (%d messages)~~\n", c.MessageSet, c.FromMessages)
		}
	}

	// Changed sets
	if len(result.ChangedSets) > 0 {
		fmt.Printf("\n## Changed Sets (%d)\n\n", len(result.ChangedSets))
		for _, c := range result.ChangedSets {
			fmt.Printf("- **%s**: %d to %d messages (%s)\n",
				c.MessageSet, c.FromMessages, c.ToMessages, formatDelta(c.Delta))
		}
	}

	// Unchanged count
	if result.UnchangedCount > 0 {
		fmt.Printf("\n---\n\n*%d sets unchanged*\n", result.UnchangedCount)
	}

	return nil
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(result *CatalogComparison) error {
	fmt.Printf("Harvest Comparison: run %d vs run %d\n", result.FromRun.ID, result.ToRun.ID)
	fmt.Println(strings.Repeat("=", 60))

	// Drift summary
	fmt.Printf("\nCatalog Drift: %s\n", formatDriftDirection(result.Drift))

	// Run metadata
	fmt.Printf("\nFrom run: %-4d  %s  %s  (%d sets, %d messages)\n",
		result.FromRun.ID,
		result.FromRun.StartedAt.Format("2006-01-02 15:04:05"),
		result.FromRun.Status,
		result.FromRun.BatchCount,
		result.FromRun.MessageCount)
	fmt.Printf("To run:   %-4d  %s  %s  (%d sets, %d messages)\n",
		result.ToRun.ID,
		result.ToRun.StartedAt.Format("2006-01-02 15:04:05"),
		result.ToRun.Status,
		result.ToRun.BatchCount,
		result.ToRun.MessageCount)

	// New sets
	if len(result.NewSets) > 0 {
		fmt.Printf("\nNew Sets (%d):\n", len(result.NewSets))
		for _, c := range result.NewSets {
			fmt.Printf("  [+] %s  (%d messages)\n", c.MessageSet, c.ToMessages)
		}
	}

	// Removed sets
	if len(result.RemovedSets) > 0 {
		fmt.Printf("\nRemoved Sets (%d):\n", len(result.RemovedSets))
		for _, c := range result.RemovedSets {
			fmt.Printf("  [-] %s  (%d messages)\n", c.MessageSet, c.FromMessages)
		}
	}

	// Changed sets
	if len(result.ChangedSets) > 0 {
		fmt.Printf("\nChanged Sets (%d):\n", len(result.ChangedSets))
		for _, c := range result.ChangedSets {
			fmt.Printf("  [~] %s  %d -> %d messages  (%s)\n",
				c.MessageSet, c.FromMessages, c.ToMessages, formatDelta(c.Delta))
		}
	}

	// Unchanged count
	if result.UnchangedCount > 0 {
		fmt.Printf("\nUnchanged: %d sets\n", result.UnchangedCount)
	}

	return nil
}

// formatDriftDirection formats the catalog drift for display.
func formatDriftDirection(drift CatalogDrift) string {
	switch drift.Direction {
	case driftDirectionGrew:
		return fmt.Sprintf("GREW (%s sets, %s messages)",
			formatDelta(drift.SetDelta), formatDelta(drift.MessageDelta))
	case driftDirectionShrank:
		return fmt.Sprintf("SHRANK (%s sets, %s messages)",
			formatDelta(drift.SetDelta), formatDelta(drift.MessageDelta))
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}
