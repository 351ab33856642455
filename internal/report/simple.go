package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/isoharvest/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose enables per-archive detail in the batch section.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with archive details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the harvest report in human-readable format.
func (w *SimpleWriter) Write(report *model.HarvestReport) (int, error) {
	var sb strings.Builder

	// Header
	w.writeHeader(&sb, report)

	// Summary
	w.writeSummary(&sb, report)

	// Batches
	w.writeBatches(&sb, report)

	// Footer
	w.writeFooter(&sb)

	// Write to output
	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.HarvestReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                       ISO 20022 HARVEST REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Catalog URL:  %s\n", report.CatalogURL))
	sb.WriteString(fmt.Sprintf("Mode:         %s\n", report.Mode))
	sb.WriteString(fmt.Sprintf("Started:      %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	if !report.FinishedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("Duration:     %s\n", report.Duration()))
	}
	sb.WriteString(fmt.Sprintf("Pages Walked: %d\n", report.PagesWalked))
	sb.WriteString(fmt.Sprintf("Status:       %s\n", statusText(report)))

	sb.WriteString("\n")
}

// writeSummary writes the harvest totals section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.HarvestReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("HARVEST SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	attempted, succeeded := linkTotals(report)

	sb.WriteString(fmt.Sprintf("  Message sets:    %d\n", report.TotalBatches()))
	sb.WriteString(fmt.Sprintf("  Messages:        %d\n", report.TotalMessages()))
	sb.WriteString(fmt.Sprintf("  Links attempted: %d\n", attempted))
	sb.WriteString(fmt.Sprintf("  Links succeeded: %d\n", succeeded))
	sb.WriteString(fmt.Sprintf("  Links failed:    %d\n", report.LinkFailures()))
	sb.WriteString(fmt.Sprintf("  Archives:        %d\n", len(report.Archives())))
	sb.WriteString("\n")
}

// writeBatches writes the per-batch outcome section.
func (w *SimpleWriter) writeBatches(sb *strings.Builder, report *model.HarvestReport) {
	if len(report.Outcomes) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("MESSAGE SET BATCHES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.Outcomes) == 0 {
		sb.WriteString("  No batches processed\n")
	} else {
		for _, outcome := range report.Outcomes {
			w.writeBatch(sb, outcome)
		}
	}
	sb.WriteString("\n")
}

// writeBatch writes a single batch outcome line, plus archive details
// in verbose mode.
func (w *SimpleWriter) writeBatch(sb *strings.Builder, outcome model.BatchOutcome) {
	sb.WriteString(fmt.Sprintf("  [%s] %s  messages: %-4d links: %d/%d\n",
		w.getBatchIndicator(outcome),
		outcome.MessageSet,
		outcome.NumMessages,
		outcome.LinksSucceeded,
		outcome.LinksAttempted,
	))

	if !w.verbose {
		return
	}
	for _, archive := range outcome.Archives {
		sb.WriteString(fmt.Sprintf("        %s  %d bytes  sha3:%s\n",
			archive.Filename,
			archive.SizeBytes,
			truncateString(archive.SHA3, 19),
		))
	}
}

// getBatchIndicator returns a visual indicator for the batch outcome.
func (w *SimpleWriter) getBatchIndicator(outcome model.BatchOutcome) string {
	if outcome.LinksFailed > 0 {
		return "!"
	}
	return "+"
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by isoharvest\n")
	sb.WriteString("https://github.com/nao1215/isoharvest\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
