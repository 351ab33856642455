package browser

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyPage is returned when a navigation completed but the browser
	// produced no usable markup. The usual cause is a settle time too short
	// for the page's scripts to build the listing.
	ErrEmptyPage = errors.New("browser: page rendered no markup")
)

// downloadAbortMarker is the error text Chrome reports when a navigation
// turns into a file download. The navigation is aborted but the download
// itself proceeds.
const downloadAbortMarker = "net::ERR_ABORTED"

// isDownloadAbort reports whether err is the navigation abort Chrome raises
// when the response is a file download rather than a page.
func isDownloadAbort(err error) bool {
	return err != nil && strings.Contains(err.Error(), downloadAbortMarker)
}
