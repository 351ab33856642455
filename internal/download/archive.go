package download

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ExtractArchive extracts the zip at path into destDir, preserving the
// archive's directory layout, and returns the extracted member names.
// A member whose path would land outside destDir aborts the extraction.
func ExtractArchive(path, destDir string) ([]string, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	defer reader.Close()

	root := filepath.Clean(destDir)
	if err := os.MkdirAll(root, 0750); err != nil {
		return nil, fmt.Errorf("failed to create destination directory: %w", err)
	}

	names := make([]string, 0, len(reader.File))
	for _, member := range reader.File {
		target := filepath.Join(root, member.Name) //nolint:gosec // G305: checked against root below
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return nil, fmt.Errorf("%w: %s", ErrInsecureArchivePath, member.Name)
		}

		if member.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0750); err != nil {
				return nil, fmt.Errorf("failed to create directory %s: %w", member.Name, err)
			}
			continue
		}

		if err := extractMember(member, target); err != nil {
			return nil, err
		}
		names = append(names, member.Name)
	}

	return names, nil
}

// extractMember writes one archive member to target.
func extractMember(member *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", member.Name, err)
	}

	rc, err := member.Open()
	if err != nil {
		return fmt.Errorf("failed to open archive member %s: %w", member.Name, err)
	}

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, member.Mode())
	if err != nil {
		rc.Close()
		return fmt.Errorf("failed to create %s: %w", target, err)
	}

	_, err = io.Copy(out, rc) //nolint:gosec // G110: schema bundles are small, bounded archives
	rc.Close()
	closeErr := out.Close()
	if err != nil {
		return fmt.Errorf("failed to extract %s: %w", member.Name, err)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close %s: %w", target, closeErr)
	}
	return nil
}

// ExtractAll extracts the archive at path into destDir and then extracts
// any nested archives it revealed into the same destination, deleting each
// nested archive afterward. The outer archive is left for the caller to
// dispose of. Returns the names of all non-archive files extracted.
func ExtractAll(path, destDir string, logger *slog.Logger) ([]string, error) {
	extracted, err := ExtractArchive(path, destDir)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(extracted))
	for _, name := range extracted {
		if !strings.EqualFold(filepath.Ext(name), archiveSuffix) {
			files = append(files, name)
			continue
		}

		nestedPath := filepath.Join(destDir, name)
		nestedFiles, err := ExtractArchive(nestedPath, destDir)
		if err != nil {
			return nil, fmt.Errorf("nested archive %s: %w", name, err)
		}
		files = append(files, nestedFiles...)

		if err := os.Remove(nestedPath); err != nil {
			logger.Warn("could not delete nested archive", "archive", name, "error", err)
		}
	}

	return files, nil
}

// Refile scans the files directly under saveDir/set and moves every file
// whose leading identifier names a different set into saveDir/<identifier>,
// creating that directory as needed. Batch archives routinely bundle a few
// schemas of a related set; this puts them where their identifier says
// they belong. Returns how many files moved.
func Refile(saveDir, set string, logger *slog.Logger) (int, error) {
	destDir := filepath.Join(saveDir, set)
	entries, err := os.ReadDir(destDir)
	if err != nil {
		return 0, fmt.Errorf("failed to list %s: %w", destDir, err)
	}

	moved := 0
	var errs error
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		derived := leadingIdentifier(entry.Name())
		if derived == "" || derived == set {
			continue
		}

		src := filepath.Join(destDir, entry.Name())
		dst := filepath.Join(saveDir, derived, entry.Name())
		if err := moveFile(src, dst); err != nil {
			errs = errors.Join(errs, fmt.Errorf("failed to re-file %s: %w", entry.Name(), err))
			continue
		}
		moved++
		logger.Debug("re-filed member into its own set",
			"file", entry.Name(),
			"from", set,
			"to", derived)
	}

	return moved, errs
}

// leadingIdentifier derives a message set from a filename: the lowercased
// text before the first dot, or the whole lowercased name if there is
// none. Names starting with a dot yield an empty identifier and are left
// alone by Refile.
func leadingIdentifier(name string) string {
	head, _, _ := strings.Cut(name, ".")
	return strings.ToLower(head)
}
