// Package main provides the entry point for the isoharvest CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for isoharvest.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "isoharvest",
		Short: "Harvester for the ISO 20022 message definitions catalog",
		Long: `isoharvest walks the paginated ISO 20022 message definitions catalog,
downloads the full-catalog archive of every message set, and files the
extracted schemas under one directory per message set.

Each run is recorded in a local history database. Use 'isoharvest history'
to list past runs and 'isoharvest compare' to diff two of them.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewHarvestCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
