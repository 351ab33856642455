package download

import "errors"

// Download stage errors.
var (
	// ErrDownloadNotMaterialized is returned when a triggered download
	// never produced a new archive in the download directory within the
	// wait budget.
	ErrDownloadNotMaterialized = errors.New("no new archive appeared in the download directory")

	// ErrInsecureArchivePath is returned when an archive member's path
	// would escape the extraction destination.
	ErrInsecureArchivePath = errors.New("archive member escapes the destination directory")
)
