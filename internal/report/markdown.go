package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/isoharvest/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the harvest report in Markdown format.
func (w *MarkdownWriter) Write(report *model.HarvestReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	// Header
	w.writeHeader(md, report)

	// Summary
	w.writeSummary(md, report)

	// Batches
	w.writeBatches(md, report)

	// Archives
	w.writeArchives(md, report)

	// Footer
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.HarvestReport) {
	md.H1("ISO 20022 Harvest Report")
	md.PlainText("")

	// Basic info table
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Catalog URL", "`" + report.CatalogURL + "`"},
			{"Mode", report.Mode},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", report.Duration().String()},
			{"Pages Walked", strconv.Itoa(report.PagesWalked)},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.HarvestReport) string {
	if !report.Succeeded() {
		msg := report.ErrorMessage
		if report.Error != nil {
			msg = report.Error.Error()
		}
		return "❌ Failed - " + msg
	}
	return "✅ Complete"
}

// writeSummary writes the harvest totals section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.HarvestReport) {
	md.H2("Harvest Summary")
	md.PlainText("")

	attempted, succeeded := linkTotals(report)

	// Summary table
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Message sets", strconv.Itoa(report.TotalBatches())},
			{"Messages", strconv.Itoa(report.TotalMessages())},
			{"Links attempted", strconv.Itoa(attempted)},
			{"Links succeeded", strconv.Itoa(succeeded)},
			{"Links failed", strconv.Itoa(report.LinkFailures())},
			{"Archives", strconv.Itoa(len(report.Archives()))},
		},
	})
	md.PlainText("")

	// Add pie chart if there are batches
	if report.TotalBatches() > 0 {
		w.writePieChart(md, report)
	}

	// Add alert based on the outcome
	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart of messages per set.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.HarvestReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Messages per Set"),
		piechart.WithShowData(true),
	)

	for _, outcome := range report.Outcomes {
		if outcome.NumMessages > 0 {
			chart.LabelAndIntValue(outcome.MessageSet, uint64(outcome.NumMessages))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the run outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.HarvestReport) {
	switch {
	case !report.Succeeded():
		md.Caution(
			"The harvest aborted before completing. Results above cover only the batches processed before the failure.",
		)
	case report.LinkFailures() > 0:
		md.Warningf(
			"%d download link(s) never materialized and were given up on.",
			report.LinkFailures(),
		)
	case report.TotalBatches() == 0:
		md.Note("The catalog walk produced no batches.")
	default:
		md.Tip("Every download link produced an archive.")
	}
	md.PlainText("")
}

// writeBatches writes the per-batch outcome table.
func (w *MarkdownWriter) writeBatches(md *markdown.Markdown, report *model.HarvestReport) {
	md.H2("Message Set Batches")
	md.PlainText("")

	if len(report.Outcomes) == 0 {
		md.PlainText("No batches were processed.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Outcomes))
	for i, o := range report.Outcomes {
		rows[i] = []string{
			"`" + o.MessageSet + "`",
			strconv.Itoa(o.NumMessages),
			strconv.Itoa(o.LinksAttempted),
			strconv.Itoa(o.LinksSucceeded),
			strconv.Itoa(o.LinksFailed),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Message Set", "Messages", "Links Attempted", "Succeeded", "Failed"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeArchives writes the downloaded archive table.
func (w *MarkdownWriter) writeArchives(md *markdown.Markdown, report *model.HarvestReport) {
	md.H2("Downloaded Archives")
	md.PlainText("")

	archives := report.Archives()
	if len(archives) == 0 {
		md.PlainText("No archives were downloaded.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(archives))
	for i, a := range archives {
		rows[i] = []string{
			truncateString(a.Filename, 40),
			"`" + a.MessageSet + "`",
			strconv.FormatInt(a.SizeBytes, 10),
			truncateString(a.SHA3, 19),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Filename", "Message Set", "Size (bytes)", "SHA3-256"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [isoharvest](https://github.com/nao1215/isoharvest)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
