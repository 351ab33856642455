// Package download reconciles accumulated catalog batches with the
// filesystem: it drives per-link browser downloads and turns the archives
// that land into per-set schema directories.
//
// # Flow
//
// For each batch, for each of its links:
//
//  1. Trigger the download through the browser, retrying transient
//     failures with randomized backoff
//  2. Poll the download directory until a new archive appears or the wait
//     budget runs out
//  3. Capture the archive's digest and size, then extract it (and any
//     nested archives) into the set's directory
//  4. Delete the processed archive, retrying if something still holds it
//  5. Re-file extracted members whose leading identifier names a
//     different set
//
// Every failure in this flow is per-link: it is logged, counted in the
// batch outcome, and the run moves on. The metadata report records every
// batch regardless, because it describes the catalog contents rather than
// the download results.
//
// # Why poll the filesystem
//
// The browser hands a download to Chrome and reports nothing further, so
// the only reliable completion signal is the archive appearing under its
// final name in the download directory. The wait budget converts a
// download that never lands into a logged skip instead of a hang.
package download
