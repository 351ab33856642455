package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nao1215/isoharvest/internal/config"
	"github.com/nao1215/isoharvest/internal/database"
	"github.com/spf13/cobra"
)

// defaultHistoryLimit is how many runs the history command lists by default.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
// This command lists harvest runs recorded in the database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded harvest runs",
		Long: `History lists harvest runs recorded in the local database, newest first.

Each line shows the run ID, start time, status, and the totals the run
collected. Use the IDs with 'isoharvest compare' to diff two runs.

Examples:
  # List the most recent runs
  isoharvest history

  # List only the last five runs
  isoharvest history --limit 5

  # Output run metadata in JSON format
  isoharvest history --json`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of runs to list")
	cmd.Flags().BoolP("json", "j", false,
		"Output run metadata in JSON format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	if limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", limit)
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	// Use XDG data directory for database
	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	return listHarvestRuns(context.Background(), db, limit, jsonOutput)
}

// historyEntry is one run in the history command's JSON output.
type historyEntry struct {
	ID           int64     `json:"id"`
	CatalogURL   string    `json:"catalog_url"`
	Mode         string    `json:"mode"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at,omitzero"`
	PagesWalked  int       `json:"pages_walked"`
	BatchCount   int       `json:"batches"`
	MessageCount int       `json:"messages"`
	LinkFailures int       `json:"link_failures"`
	Status       string    `json:"status"`
}

// listHarvestRuns lists up to limit recorded runs, newest first.
func listHarvestRuns(ctx context.Context, db *database.HistoryDB, limit int, jsonOutput bool) error {
	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list harvest runs: %w", err)
	}

	if jsonOutput {
		entries := make([]historyEntry, 0, len(runs))
		for _, run := range runs {
			entries = append(entries, historyEntry{
				ID:           run.ID,
				CatalogURL:   run.CatalogURL,
				Mode:         run.Mode,
				StartedAt:    run.StartedAt,
				FinishedAt:   run.FinishedAt,
				PagesWalked:  run.PagesWalked,
				BatchCount:   run.BatchCount,
				MessageCount: run.MessageCount,
				LinkFailures: run.LinkFailures,
				Status:       run.Status,
			})
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	}

	if len(runs) == 0 {
		fmt.Println("No harvest runs found in the database.")
		fmt.Println("\nUse 'isoharvest harvest' to record one.")
		return nil
	}

	fmt.Printf("Harvest runs (%d):\n\n", len(runs))
	fmt.Printf("  %-6s  %-20s  %-10s  %6s  %8s  %9s  %9s\n",
		"ID", "Started", "Status", "Pages", "Batches", "Messages", "Failures")
	fmt.Println("  " + strings.Repeat("-", 80))

	for _, run := range runs {
		fmt.Printf("  %-6d  %-20s  %-10s  %6d  %8d  %9d  %9d\n",
			run.ID,
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.Status,
			run.PagesWalked,
			run.BatchCount,
			run.MessageCount,
			run.LinkFailures,
		)
	}

	fmt.Println("\nUse 'isoharvest compare' to diff the latest two runs.")
	fmt.Println("Use 'isoharvest compare --from <id> --to <id>' to diff specific runs.")

	return nil
}
