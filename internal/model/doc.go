// Package model defines the core data structures used throughout isoharvest.
//
// This package contains the following main types:
//   - MessageID, MessageSet: validated identifier value objects
//   - MessageRecord: one schema definition extracted from the catalog
//   - DownloadBatch: one message set's download links and member records
//   - Catalog: the walk accumulator owning merge and orphan routing
//   - MetadataReport: the persisted batch and message indexes
//   - HarvestReport: the per-run aggregate the pipeline fills in
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (catalog, download, report, database) need
// these types, so centralizing them prevents import cycles.
//
// Identifiers are immutable value objects with validating constructors rather
// than bare strings: a MessageID or MessageSet in hand is always well-formed,
// and validation failures surface as typed sentinel errors at the single
// point of construction. Batch merging and orphan routing live on Catalog so
// they can be exercised directly with hand-built values, independent of any
// markup or browser.
package model
