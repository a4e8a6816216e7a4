// Command farmctl runs operational tasks against the withdrawal backend
// database: migrations, catalog seeding, safety checks and test tokens.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "farmctl",
		Short:         "Operational tool for the livestock withdrawal backend",
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedMedicinesCmd())
	rootCmd.AddCommand(safetyCmd())
	rootCmd.AddCommand(tokenCmd())

	return rootCmd
}
