package model

import "sort"

// Area is one catalog grouping as extracted from a listing page: the
// declared message set, the set's batch download link, and the message
// records found inside the grouping (possibly including records whose
// derived set disagrees with the declared one).
type Area struct {
	// Set is the message set the page declares for this grouping.
	Set MessageSet

	// BatchLink is the absolute URL of the set's batch archive.
	BatchLink string

	// Records are the message records extracted from the grouping.
	Records []MessageRecord
}

// Catalog accumulates download batches across areas and pages of a walk.
// It owns the merge and misclassification rules:
//
//  1. A record whose derived set differs from its area's declared set never
//     stays with that area. It merges into the batch matching its own set
//     if that batch already exists, otherwise it is stashed as an orphan
//     under its true set.
//  2. When a batch is created for a set, any stashed orphans for that set
//     are absorbed immediately.
//  3. Re-encountering a set on a later area or page unions the new links
//     and records into the existing batch.
//
// Design decision: this logic lives on the accumulator rather than in the
// page parser so it can be exercised directly against hand-built areas,
// independent of any markup.
type Catalog struct {
	// order records message sets in first-seen order.
	order []MessageSet

	// batches indexes the accumulated batches by message set.
	batches map[MessageSet]*DownloadBatch

	// orphans stashes misrouted records whose true set has no batch yet,
	// keyed by that true set.
	orphans map[MessageSet][]MessageRecord
}

// NewCatalog creates an empty catalog accumulator.
func NewCatalog() *Catalog {
	return &Catalog{
		order:   make([]MessageSet, 0),
		batches: make(map[MessageSet]*DownloadBatch),
		orphans: make(map[MessageSet][]MessageRecord),
	}
}

// AbsorbArea folds one extracted area into the accumulator, applying the
// misclassification, orphan, and cross-page merge rules.
func (c *Catalog) AbsorbArea(area Area) {
	natives := make([]MessageRecord, 0, len(area.Records))
	for _, record := range area.Records {
		trueSet := record.Set()
		if trueSet.Equals(area.Set) {
			natives = append(natives, record)
			continue
		}
		if existing, ok := c.batches[trueSet]; ok {
			existing.AddMessage(record)
			continue
		}
		c.orphans[trueSet] = append(c.orphans[trueSet], record)
	}

	// Absorb any records stashed before this set's batch existed.
	if stashed, ok := c.orphans[area.Set]; ok {
		natives = append(natives, stashed...)
		delete(c.orphans, area.Set)
	}

	batch, ok := c.batches[area.Set]
	if !ok {
		batch = NewDownloadBatch(area.Set)
		c.batches[area.Set] = batch
		c.order = append(c.order, area.Set)
	}
	batch.AddLink(area.BatchLink)
	for _, record := range natives {
		batch.AddMessage(record)
	}
}

// Batch returns the accumulated batch for a set, if any.
func (c *Catalog) Batch(set MessageSet) (*DownloadBatch, bool) {
	b, ok := c.batches[set]
	return b, ok
}

// Batches returns the accumulated batches in first-seen order.
func (c *Catalog) Batches() []*DownloadBatch {
	out := make([]*DownloadBatch, 0, len(c.order))
	for _, set := range c.order {
		out = append(out, c.batches[set])
	}
	return out
}

// OrphanSets returns the sets, sorted, for which records were stashed but
// no batch was ever created. Their records cannot be harvested.
func (c *Catalog) OrphanSets() []MessageSet {
	out := make([]MessageSet, 0, len(c.orphans))
	for set := range c.orphans {
		out = append(out, set)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}

// BatchCount returns the number of accumulated batches.
func (c *Catalog) BatchCount() int {
	return len(c.batches)
}

// MessageCount returns the total number of records across all batches.
func (c *Catalog) MessageCount() int {
	total := 0
	for _, b := range c.batches {
		total += b.MessageCount()
	}
	return total
}
