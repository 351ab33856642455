// Package main provides the entry point for the isoharvest CLI.
//
// isoharvest walks the ISO 20022 message definitions catalog, downloads
// the full-catalog archive of every message set, and files the extracted
// schemas under one directory per set.
//
// Usage:
//
//	isoharvest harvest
//	isoharvest harvest --url <catalog-url>
//
// See --help for all available options.
package main

// main is the entry point for isoharvest.
func main() {
	Execute()
}
