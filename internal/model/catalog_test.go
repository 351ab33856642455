package model

import "testing"

func TestCatalog_AbsorbArea(t *testing.T) {
	t.Parallel()

	t.Run("native records join the area's batch", func(t *testing.T) {
		t.Parallel()

		c := NewCatalog()
		c.AbsorbArea(Area{
			Set:       MustNewMessageSet("pain"),
			BatchLink: "https://example.org/pain.zip",
			Records: []MessageRecord{
				testRecord(t, "pain.001.001.09", "CustomerCreditTransferInitiationV09", "ISO", "https://example.org/a.zip"),
				testRecord(t, "pain.002.001.10", "CustomerPaymentStatusReportV10", "ISO", "https://example.org/b.zip"),
			},
		})

		batch, ok := c.Batch(MustNewMessageSet("pain"))
		if !ok {
			t.Fatal("expected pain batch to exist")
		}
		if batch.MessageCount() != 2 {
			t.Errorf("expected 2 messages, got %d", batch.MessageCount())
		}
		if batch.LinkCount() != 1 {
			t.Errorf("expected 1 link, got %d", batch.LinkCount())
		}
	})

	t.Run("stray routes into an existing batch", func(t *testing.T) {
		t.Parallel()

		c := NewCatalog()
		c.AbsorbArea(Area{
			Set:       MustNewMessageSet("camt"),
			BatchLink: "https://example.org/camt.zip",
			Records: []MessageRecord{
				testRecord(t, "camt.053.001.08", "BankToCustomerStatementV08", "ISO", "https://example.org/c.zip"),
			},
		})

		// A pain area carrying a camt record: the stray must land in the
		// already existing camt batch, not in pain.
		c.AbsorbArea(Area{
			Set:       MustNewMessageSet("pain"),
			BatchLink: "https://example.org/pain.zip",
			Records: []MessageRecord{
				testRecord(t, "pain.001.001.09", "CustomerCreditTransferInitiationV09", "ISO", "https://example.org/a.zip"),
				testRecord(t, "camt.054.001.08", "BankToCustomerDebitCreditNotificationV08", "ISO", "https://example.org/d.zip"),
			},
		})

		painBatch, _ := c.Batch(MustNewMessageSet("pain"))
		if painBatch.MessageCount() != 1 {
			t.Errorf("expected pain batch to keep 1 message, got %d", painBatch.MessageCount())
		}
		camtBatch, _ := c.Batch(MustNewMessageSet("camt"))
		if camtBatch.MessageCount() != 2 {
			t.Errorf("expected camt batch to hold 2 messages, got %d", camtBatch.MessageCount())
		}
	})

	t.Run("orphan is stashed then absorbed when its set appears", func(t *testing.T) {
		t.Parallel()

		c := NewCatalog()

		// Page 0: an abcd area with one native record and one record
		// misrouted to a set no area has declared yet.
		c.AbsorbArea(Area{
			Set:       MustNewMessageSet("abcd"),
			BatchLink: "https://example.org/abcd.zip",
			Records: []MessageRecord{
				testRecord(t, "abcd.001.001.01", "FirstDefinitionV01", "ISO", "https://example.org/a.zip"),
				testRecord(t, "wxyz.001.001.01", "StrayDefinitionV01", "ISO", "https://example.org/w.zip"),
			},
		})

		if _, ok := c.Batch(MustNewMessageSet("wxyz")); ok {
			t.Fatal("expected no wxyz batch before its area appears")
		}
		if sets := c.OrphanSets(); len(sets) != 1 || sets[0].String() != "wxyz" {
			t.Fatalf("expected wxyz orphan stash, got %v", sets)
		}

		// Page 1: the wxyz area appears and must absorb the stashed record.
		c.AbsorbArea(Area{
			Set:       MustNewMessageSet("wxyz"),
			BatchLink: "https://example.org/wxyz.zip",
			Records: []MessageRecord{
				testRecord(t, "wxyz.002.001.01", "NativeDefinitionV01", "ISO", "https://example.org/x.zip"),
			},
		})

		abcdBatch, _ := c.Batch(MustNewMessageSet("abcd"))
		if abcdBatch.MessageCount() != 1 {
			t.Errorf("expected abcd batch to hold 1 message, got %d", abcdBatch.MessageCount())
		}
		wxyzBatch, ok := c.Batch(MustNewMessageSet("wxyz"))
		if !ok {
			t.Fatal("expected wxyz batch to exist")
		}
		if wxyzBatch.MessageCount() != 2 {
			t.Errorf("expected wxyz batch to hold 2 messages, got %d", wxyzBatch.MessageCount())
		}
		if len(c.OrphanSets()) != 0 {
			t.Errorf("expected orphan stash to be drained, got %v", c.OrphanSets())
		}
	})

	t.Run("re-encountering a set unions links and messages", func(t *testing.T) {
		t.Parallel()

		c := NewCatalog()
		record := testRecord(t, "pain.001.001.09", "CustomerCreditTransferInitiationV09", "ISO", "https://example.org/a.zip")

		c.AbsorbArea(Area{
			Set:       MustNewMessageSet("pain"),
			BatchLink: "https://example.org/page0.zip",
			Records:   []MessageRecord{record},
		})
		c.AbsorbArea(Area{
			Set:       MustNewMessageSet("pain"),
			BatchLink: "https://example.org/page1.zip",
			Records: []MessageRecord{
				record,
				testRecord(t, "pain.002.001.10", "CustomerPaymentStatusReportV10", "ISO", "https://example.org/b.zip"),
			},
		})

		batch, _ := c.Batch(MustNewMessageSet("pain"))
		if batch.LinkCount() != 2 {
			t.Errorf("expected 2 links after union, got %d", batch.LinkCount())
		}
		if batch.MessageCount() != 2 {
			t.Errorf("expected 2 messages after union, got %d", batch.MessageCount())
		}
		if c.BatchCount() != 1 {
			t.Errorf("expected a single batch, got %d", c.BatchCount())
		}
	})
}

func TestCatalog_Batches_Order(t *testing.T) {
	t.Parallel()

	c := NewCatalog()
	for _, set := range []string{"pain", "camt", "acmt"} {
		c.AbsorbArea(Area{
			Set:       MustNewMessageSet(set),
			BatchLink: "https://example.org/" + set + ".zip",
		})
	}

	batches := c.Batches()
	want := []string{"pain", "camt", "acmt"}
	if len(batches) != len(want) {
		t.Fatalf("expected %d batches, got %d", len(want), len(batches))
	}
	for i, set := range want {
		if got := batches[i].MessageSet().String(); got != set {
			t.Errorf("position %d: expected %s, got %s", i, set, got)
		}
	}
}

func TestCatalog_MessageCount(t *testing.T) {
	t.Parallel()

	c := NewCatalog()
	c.AbsorbArea(Area{
		Set:       MustNewMessageSet("pain"),
		BatchLink: "https://example.org/pain.zip",
		Records: []MessageRecord{
			testRecord(t, "pain.001.001.09", "CustomerCreditTransferInitiationV09", "ISO", "https://example.org/a.zip"),
		},
	})
	c.AbsorbArea(Area{
		Set:       MustNewMessageSet("camt"),
		BatchLink: "https://example.org/camt.zip",
		Records: []MessageRecord{
			testRecord(t, "camt.053.001.08", "BankToCustomerStatementV08", "ISO", "https://example.org/c.zip"),
			testRecord(t, "camt.054.001.08", "BankToCustomerDebitCreditNotificationV08", "ISO", "https://example.org/d.zip"),
		},
	})

	if got := c.MessageCount(); got != 3 {
		t.Errorf("expected 3 messages in total, got %d", got)
	}
}
