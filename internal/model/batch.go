package model

import "sort"

// DownloadBatch is one message set's download unit: the batch-archive links
// published for the set and the message records that belong to it.
//
// Design decision: links and messages behave as sets (no duplicates) but
// keep insertion order, so iteration is deterministic without imposing a
// sort the catalog page never promised. Callers must not depend on any
// ordering beyond that.
type DownloadBatch struct {
	// set is the message set this batch covers.
	set MessageSet

	// links holds the batch download links in first-seen order.
	links []string

	// linkSeen deduplicates links.
	linkSeen map[string]struct{}

	// messages holds the member records in first-seen order.
	messages []MessageRecord

	// msgSeen deduplicates records by full field tuple.
	msgSeen map[MessageRecord]struct{}
}

// NewDownloadBatch creates an empty batch for the given message set.
func NewDownloadBatch(set MessageSet) *DownloadBatch {
	return &DownloadBatch{
		set:      set,
		links:    make([]string, 0, 1),
		linkSeen: make(map[string]struct{}),
		messages: make([]MessageRecord, 0),
		msgSeen:  make(map[MessageRecord]struct{}),
	}
}

// MessageSet returns the set this batch covers.
func (b *DownloadBatch) MessageSet() MessageSet {
	return b.set
}

// AddLink adds a batch download link, ignoring duplicates.
// Reports whether the link was newly added.
func (b *DownloadBatch) AddLink(link string) bool {
	if _, ok := b.linkSeen[link]; ok {
		return false
	}
	b.linkSeen[link] = struct{}{}
	b.links = append(b.links, link)
	return true
}

// AddMessage adds a member record, ignoring duplicates.
// Reports whether the record was newly added.
func (b *DownloadBatch) AddMessage(record MessageRecord) bool {
	if _, ok := b.msgSeen[record]; ok {
		return false
	}
	b.msgSeen[record] = struct{}{}
	b.messages = append(b.messages, record)
	return true
}

// Merge unions another batch's links and messages into this one.
// Merging a batch with itself (or merging twice) changes nothing.
func (b *DownloadBatch) Merge(other *DownloadBatch) {
	if other == nil || other == b {
		return
	}
	for _, link := range other.links {
		b.AddLink(link)
	}
	for _, record := range other.messages {
		b.AddMessage(record)
	}
}

// Links returns the batch download links in first-seen order.
func (b *DownloadBatch) Links() []string {
	out := make([]string, len(b.links))
	copy(out, b.links)
	return out
}

// Messages returns the member records in first-seen order.
func (b *DownloadBatch) Messages() []MessageRecord {
	out := make([]MessageRecord, len(b.messages))
	copy(out, b.messages)
	return out
}

// SortedMessages returns the member records sorted by message ID.
// This is the order the metadata documents persist.
func (b *DownloadBatch) SortedMessages() []MessageRecord {
	out := b.Messages()
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID().String() < out[j].ID().String()
	})
	return out
}

// LinkCount returns the number of distinct download links.
func (b *DownloadBatch) LinkCount() int {
	return len(b.links)
}

// MessageCount returns the number of distinct member records.
func (b *DownloadBatch) MessageCount() int {
	return len(b.messages)
}
