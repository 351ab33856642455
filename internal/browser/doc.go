// Package browser drives the headless Chrome session behind a harvest run.
//
// The catalog listing is script-rendered: a plain HTTP fetch returns an
// empty shell, and the download links only work once the page's scripts
// have run. This package wraps chromedp to render listing pages into
// markup the extraction layer can parse, and to trigger archive downloads
// into a directory the reconciliation layer watches.
//
// One Browser serves a whole run. Navigation and downloads share the same
// session, so the listing sees one consistent visitor rather than a burst
// of unrelated clients.
package browser
