package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/isoharvest/internal/model"
)

// Metadata document filenames written to the output directory.
const (
	// MessagesDocument indexes every message record by message set.
	MessagesDocument = "iso20022_messages.json"

	// SetsDocument is the batch index in processing order.
	SetsDocument = "iso20022_sets.json"
)

// MetadataWriter persists the catalog metadata documents.
//
// Design decision: The metadata documents are separate from the session
// report because they describe the catalog itself, not the run. They are
// written in the same shape regardless of which session format the user
// picked.
type MetadataWriter struct {
	// outputDir is the directory both documents are written into.
	outputDir string
}

// NewMetadataWriter creates a MetadataWriter for the given directory.
func NewMetadataWriter(outputDir string) *MetadataWriter {
	return &MetadataWriter{outputDir: outputDir}
}

// Write renders both metadata documents and returns the paths written.
// Map keys come out sorted; the batch index keeps processing order.
func (w *MetadataWriter) Write(report *model.MetadataReport) ([]string, error) {
	if err := os.MkdirAll(w.outputDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	messagesPath := filepath.Join(w.outputDir, MessagesDocument)
	if err := w.writeDocument(messagesPath, report.Messages()); err != nil {
		return nil, err
	}

	setsPath := filepath.Join(w.outputDir, SetsDocument)
	if err := w.writeDocument(setsPath, report.Batches()); err != nil {
		return nil, err
	}

	return []string{messagesPath, setsPath}, nil
}

// writeDocument writes one JSON document with 4-space indentation.
// HTML escaping stays off so organization names keep their literal text.
func (w *MetadataWriter) writeDocument(path string, v any) error {
	f, err := os.Create(path) //nolint:gosec // G304: path is built from our own output directory
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filepath.Base(path), err)
	}
	return nil
}
