// Package config provides configuration structures and utilities for isoharvest.
// It defines the main configuration options for walking the ISO 20022 catalog,
// downloading schema archives, and report generation preferences.
package config
