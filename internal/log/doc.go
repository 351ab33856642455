// Package log provides logging functionality for isoharvest, built on top
// of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic trimming of oversized attribute values (page markup, links)
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Trimming
//
// Walk and download code logs raw material from the catalog: rendered page
// fragments, long download URLs, archive listings. The TrimHandler truncates
// any string attribute beyond a fixed length and appends a marker recording
// how much was dropped, so a single log line never carries a whole page.
//
// # Usage
//
//	// Create a trimming logger
//	logger := log.NewTrimLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Debug("area extracted",
//	    "set", "acmt",
//	    "markup", areaHTML, // Trimmed if oversized
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
