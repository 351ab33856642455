// Package database provides SQLite-backed persistence for harvest history.
//
// This package implements the HistoryDB, which records:
//   - One summary row per harvest run
//   - Per-batch download outcomes for each run
//   - Digests of every archive a run downloaded
//
// Design decision: We use SQLite (via modernc.org/sqlite) because:
// 1. The whole history is a single file in the user's data directory
// 2. CGO-free implementation allows easy cross-compilation
// 3. A single writer matches the strictly sequential harvest
// 4. WAL mode keeps reads cheap while a run is being saved
//
// Runs are append-only. A harvest saves its report once after finishing
// and never consults history to change its own behavior; the read paths
// exist for the history and compare commands.
package database
