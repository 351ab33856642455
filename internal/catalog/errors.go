package catalog

import "errors"

// Walk and parse errors.
var (
	// ErrNoCatalogAreas is returned when the first listing page carries no
	// catalog areas at all. Later pages without areas end the walk
	// normally; an empty first page means the page layout has changed.
	ErrNoCatalogAreas = errors.New("no catalog areas found on the first page")

	// ErrMissingSetLabel is returned when a catalog area has no message
	// set label element.
	ErrMissingSetLabel = errors.New("catalog area has no message set label")

	// ErrMissingBatchLink is returned when a catalog area has no anchor to
	// take the batch download link from.
	ErrMissingBatchLink = errors.New("catalog area has no batch download link")

	// ErrNoMessageElements is returned when a catalog area carries no
	// message entries.
	ErrNoMessageElements = errors.New("catalog area has no message entries")

	// ErrMissingMessageLink is returned when a message entry has no anchor
	// to take the schema download link from.
	ErrMissingMessageLink = errors.New("message entry has no download link")

	// ErrFieldCount is returned when a message entry does not expose
	// exactly the three expected text fields (ID, name, organization).
	ErrFieldCount = errors.New("message entry must have exactly three text fields")
)

// structural reports whether err must abort the walk regardless of the
// validation mode. A missing anchor means the page layout has changed;
// field validation failures are governed by the mode instead.
func structural(err error) bool {
	return errors.Is(err, ErrMissingMessageLink)
}
