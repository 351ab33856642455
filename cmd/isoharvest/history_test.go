package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/isoharvest/internal/database"
	"github.com/nao1215/isoharvest/internal/model"
)

// TestNewHistoryCmd tests the history command creation.
func TestNewHistoryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "history" {
			t.Errorf("expected use 'history', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has limit flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("limit")
		if flag == nil {
			t.Fatal("expected limit flag")
		}
		if flag.Shorthand != "n" {
			t.Errorf("expected shorthand 'n', got %q", flag.Shorthand)
		}
		if flag.DefValue != "20" {
			t.Errorf("expected default '20', got %q", flag.DefValue)
		}
	})

	t.Run("has json flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("json")
		if flag == nil {
			t.Fatal("expected json flag")
		}
		if flag.Shorthand != "j" {
			t.Errorf("expected shorthand 'j', got %q", flag.Shorthand)
		}
	})
}

// TestRunHistoryCmdRejectsBadLimit tests that a non-positive limit fails
// before the database is touched.
func TestRunHistoryCmdRejectsBadLimit(t *testing.T) {
	t.Parallel()

	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"history", "--limit", "0"})

	err := rootCmd.Execute()
	if err == nil {
		t.Error("expected error for zero limit")
	}
	if !strings.Contains(err.Error(), "limit must be positive") {
		t.Errorf("expected 'limit must be positive' error, got: %v", err)
	}
}

// seedRun saves one run with the given start time and per-set message counts.
func seedRun(ctx context.Context, t *testing.T, db *database.HistoryDB, startedAt time.Time, sets map[string]int) int64 {
	t.Helper()

	r := model.NewHarvestReport("https://example.com/catalog", "permissive")
	r.StartedAt = startedAt
	r.FinishedAt = startedAt.Add(5 * time.Minute)
	r.PagesWalked = 2
	for set, n := range sets {
		r.AddOutcome(model.BatchOutcome{
			MessageSet:     set,
			NumMessages:    n,
			LinksAttempted: 1,
			LinksSucceeded: 1,
		})
	}

	id, err := db.SaveRun(ctx, r)
	if err != nil {
		t.Fatalf("failed to seed run: %v", err)
	}
	return id
}

// captureStdout runs fn while capturing everything written to os.Stdout.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fnErr := fn()

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	r.Close()

	return buf.String(), fnErr
}

func TestListHarvestRuns(t *testing.T) {
	// Note: Not using t.Parallel() because these tests capture os.Stdout

	ctx := context.Background()

	t.Run("reports empty database", func(t *testing.T) {
		tmpDir := t.TempDir()
		db, err := database.Open(tmpDir, database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		output, err := captureStdout(t, func() error {
			return listHarvestRuns(ctx, db, 10, false)
		})
		if err != nil {
			t.Fatalf("listHarvestRuns() error = %v", err)
		}

		if !strings.Contains(output, "No harvest runs found") {
			t.Errorf("expected 'No harvest runs found' message, got: %s", output)
		}
	})

	t.Run("lists runs newest first", func(t *testing.T) {
		tmpDir := t.TempDir()
		db, err := database.Open(tmpDir, database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		seedRun(ctx, t, db, base, map[string]int{"pain": 10})
		seedRun(ctx, t, db, base.Add(24*time.Hour), map[string]int{"pain": 10, "camt": 4})

		output, err := captureStdout(t, func() error {
			return listHarvestRuns(ctx, db, 10, false)
		})
		if err != nil {
			t.Fatalf("listHarvestRuns() error = %v", err)
		}

		if !strings.Contains(output, "Harvest runs (2)") {
			t.Errorf("expected 'Harvest runs (2)' header, got: %s", output)
		}
		newerLine := strings.Index(output, "2026-03-02")
		olderLine := strings.Index(output, "2026-03-01")
		if newerLine == -1 || olderLine == -1 {
			t.Fatalf("expected both run dates in output, got: %s", output)
		}
		if newerLine > olderLine {
			t.Error("expected the newer run to be listed first")
		}
		if !strings.Contains(output, "succeeded") {
			t.Errorf("expected run status in output, got: %s", output)
		}
	})

	t.Run("respects the limit", func(t *testing.T) {
		tmpDir := t.TempDir()
		db, err := database.Open(tmpDir, database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		for i := range 3 {
			seedRun(ctx, t, db, base.Add(time.Duration(i)*time.Hour), map[string]int{"pain": 10})
		}

		output, err := captureStdout(t, func() error {
			return listHarvestRuns(ctx, db, 2, false)
		})
		if err != nil {
			t.Fatalf("listHarvestRuns() error = %v", err)
		}

		if !strings.Contains(output, "Harvest runs (2)") {
			t.Errorf("expected only 2 runs listed, got: %s", output)
		}
	})

	t.Run("outputs JSON", func(t *testing.T) {
		tmpDir := t.TempDir()
		db, err := database.Open(tmpDir, database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		id := seedRun(ctx, t, db, base, map[string]int{"pain": 10, "camt": 4})

		output, err := captureStdout(t, func() error {
			return listHarvestRuns(ctx, db, 10, true)
		})
		if err != nil {
			t.Fatalf("listHarvestRuns() error = %v", err)
		}

		var entries []historyEntry
		if err := json.Unmarshal([]byte(output), &entries); err != nil {
			t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, output)
		}
		if len(entries) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(entries))
		}
		if entries[0].ID != id {
			t.Errorf("expected run ID %d, got %d", id, entries[0].ID)
		}
		if entries[0].BatchCount != 2 {
			t.Errorf("expected 2 batches, got %d", entries[0].BatchCount)
		}
		if entries[0].MessageCount != 14 {
			t.Errorf("expected 14 messages, got %d", entries[0].MessageCount)
		}
		if entries[0].Status != database.StatusSucceeded {
			t.Errorf("expected succeeded status, got %q", entries[0].Status)
		}
	})

	t.Run("outputs empty JSON array for empty database", func(t *testing.T) {
		tmpDir := t.TempDir()
		db, err := database.Open(tmpDir, database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		output, err := captureStdout(t, func() error {
			return listHarvestRuns(ctx, db, 10, true)
		})
		if err != nil {
			t.Fatalf("listHarvestRuns() error = %v", err)
		}

		if strings.TrimSpace(output) != "[]" {
			t.Errorf("expected empty JSON array, got: %s", output)
		}
	})
}
