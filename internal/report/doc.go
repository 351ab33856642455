// Package report provides report generation and output functionality.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - MarkdownWriter: Markdown output for documentation and sharing
//   - JSONWriter: Structured JSON output for tool integration
//   - MetadataWriter: The persisted catalog metadata documents
//
// Design decision: We separate report writing from report data structures
// (which are in the model package) to follow the single responsibility
// principle. This allows adding new output formats without modifying
// the core data structures.
//
// Session writers implement the Writer interface, allowing them to be
// used interchangeably and composed for multi-format output. The
// MetadataWriter stands apart: it persists the catalog indexes, which
// have a fixed shape independent of the session format chosen.
package report
