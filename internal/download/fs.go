package download

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/isoharvest/internal/retry"
)

// archiveSuffix is the file extension the download watcher looks for.
const archiveSuffix = ".zip"

// ListArchives returns the names of archive files directly inside dir, in
// lexical order. A missing directory reads as empty so the first poll can
// run before the browser has created it.
//
// Chrome stages an in-flight download under a temporary name and renames
// it when complete, so filtering on the archive suffix means a name only
// shows up here once its download finished.
func ListArchives(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), archiveSuffix) {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// DeleteWithRetry removes path, retrying transient failures with the given
// policy. A fresh download can still be held open briefly by the browser;
// a short retry outlasts that. An already-missing path counts as success.
func DeleteWithRetry(ctx context.Context, path string, policy retry.Policy) error {
	return policy.Do(ctx, func(_ context.Context) error {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	})
}

// moveFile moves src to dst, creating dst's parent directory first.
func moveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0750); err != nil {
		return err
	}
	return os.Rename(src, dst)
}
