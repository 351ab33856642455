package model

// BatchSummary is one entry of the persisted batch index: the message set
// and how many distinct records it carried.
type BatchSummary struct {
	// MessageSet is the four-letter set code.
	MessageSet string `json:"message_set"`

	// NumMessages is the number of distinct records in the batch.
	NumMessages int `json:"num_messages"`
}

// MetadataReport accumulates the run's persisted output: the batch index
// (append order, one entry per processed batch) and the message index
// (message set to records sorted by message ID).
//
// The report is filled during the download stage, batch by batch, and
// written out once at the end of the run.
type MetadataReport struct {
	// batches holds batch summaries in processing order.
	batches []BatchSummary

	// messages maps each message set to its sorted records.
	messages map[string][]MessageRecord
}

// NewMetadataReport creates an empty metadata report.
func NewMetadataReport() *MetadataReport {
	return &MetadataReport{
		batches:  make([]BatchSummary, 0),
		messages: make(map[string][]MessageRecord),
	}
}

// RecordBatch appends a processed batch to the report: its summary joins
// the batch index and its records, sorted by message ID, are written under
// the set's key in the message index. Called once per batch after its
// downloads are processed, whether or not they succeeded.
func (m *MetadataReport) RecordBatch(batch *DownloadBatch) {
	set := batch.MessageSet().String()
	m.messages[set] = batch.SortedMessages()
	m.batches = append(m.batches, BatchSummary{
		MessageSet:  set,
		NumMessages: batch.MessageCount(),
	})
}

// Batches returns the batch summaries in processing order.
func (m *MetadataReport) Batches() []BatchSummary {
	out := make([]BatchSummary, len(m.batches))
	copy(out, m.batches)
	return out
}

// Messages returns the message index. The returned map is shared with the
// report; callers must treat it as read-only.
func (m *MetadataReport) Messages() map[string][]MessageRecord {
	return m.messages
}

// SetCount returns the number of sets recorded in the message index.
func (m *MetadataReport) SetCount() int {
	return len(m.messages)
}

// MessageCount returns the total number of records across all sets.
func (m *MetadataReport) MessageCount() int {
	total := 0
	for _, records := range m.messages {
		total += len(records)
	}
	return total
}
