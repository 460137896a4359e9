// Package cli implements the aurelion command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"aurelion/pkg/contracts"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
	BaseDir    string
	Verbose    bool
}

// NewRootCommand creates the root command for the aurelion CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "aurelion",
		Short: "Aurelion - retail sales cleaning and KPI pipeline",
		Long: `Aurelion loads the minimarket sales tables (products, clients,
sales and sale lines), validates and cleans them, computes the
commercial KPIs and writes the CSV exports and the executive summary.`,
		Version: contracts.GetFullVersionString(),
	}

	// Global flags
	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "aurelion.yaml", "path to the configuration file")
	cmd.PersistentFlags().StringVar(&opts.BaseDir, "base-dir", ".", "project base directory")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewOverviewCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))

	return cmd
}
