package model

import (
	"testing"
	"time"
)

func TestHarvestReport(t *testing.T) {
	t.Parallel()

	report := NewHarvestReport("https://example.org/catalog", "permissive")

	report.AddOutcome(BatchOutcome{
		MessageSet:     "pain",
		NumMessages:    3,
		LinksAttempted: 2,
		LinksSucceeded: 1,
		LinksFailed:    1,
		Archives: []ArchiveInfo{
			{MessageSet: "pain", Filename: "pain.zip", SHA3: "ab", SizeBytes: 10},
		},
	})
	report.AddOutcome(BatchOutcome{
		MessageSet:     "camt",
		NumMessages:    2,
		LinksAttempted: 1,
		LinksSucceeded: 1,
	})

	t.Run("totals aggregate outcomes", func(t *testing.T) {
		t.Parallel()
		if report.TotalBatches() != 2 {
			t.Errorf("expected 2 batches, got %d", report.TotalBatches())
		}
		if report.TotalMessages() != 5 {
			t.Errorf("expected 5 messages, got %d", report.TotalMessages())
		}
		if report.LinkFailures() != 1 {
			t.Errorf("expected 1 link failure, got %d", report.LinkFailures())
		}
		if len(report.Archives()) != 1 {
			t.Errorf("expected 1 archive, got %d", len(report.Archives()))
		}
	})

	t.Run("succeeded until an error is recorded", func(t *testing.T) {
		t.Parallel()
		if !report.Succeeded() {
			t.Error("expected report without error to report success")
		}
	})

	t.Run("duration requires a finish time", func(t *testing.T) {
		t.Parallel()
		if report.Duration() != 0 {
			t.Error("expected zero duration before the run finishes")
		}
		finished := NewHarvestReport("https://example.org/catalog", "strict")
		finished.FinishedAt = finished.StartedAt.Add(3 * time.Second)
		if finished.Duration() != 3*time.Second {
			t.Errorf("expected 3s duration, got %s", finished.Duration())
		}
	})
}
