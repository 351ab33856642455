// Package catalog walks the paginated ISO 20022 message-definition listing
// and turns its rendered markup into download batches.
//
// # Architecture
//
// The package splits the walk into three cooperating pieces:
//
//   - Walker: drives the pagination loop (page 0, 1, 2, ... until a page
//     past the first carries no catalog areas) and retries failed page
//     navigations
//   - Parser: extracts areas, set labels, batch links, and message records
//     from one page of markup
//   - model.Catalog: merges areas across pages and routes records whose
//     derived set disagrees with their area's declared set
//
// A structural surprise (no areas on the first page, a missing label or
// anchor) aborts the whole walk: it means the remote layout changed and
// nothing extracted after that point can be trusted. Field-level
// validation failures are softer; the validation mode decides whether the
// single malformed entry is skipped with a warning or aborts the walk.
//
// # Text extraction
//
// All visible text goes through one normalization path (CleanText): direct
// text nodes only, whitespace collapsed per fragment, fragments joined,
// NFKC normalization, then entity decoding. Every comparison and pattern
// check downstream assumes this canonical form.
package catalog
