package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"aurelion/internal/history"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit  int
	Stages bool
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent pipeline runs",
		Long: `List the most recent pipeline runs from the run ledger, newest
first. With --stages each run's stage timings are printed too.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHistory(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 10, "number of runs to show")
	cmd.Flags().BoolVar(&opts.Stages, "stages", false, "show per-stage timings")

	return cmd
}

func showHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	app, err := setup(opts.RootOptions, false)
	if err != nil {
		return err
	}

	dbPath := app.historyDBPath()
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	store, err := history.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot open run ledger", err)
	}
	defer store.Close()

	runs, err := store.Recent(cmd.Context(), opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot read run ledger", err)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	for _, run := range runs {
		fmt.Printf("%s  %-4s  %-9s  %6.2fs  %s\n",
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Mode, run.Status, run.Seconds, run.RunID)

		if !opts.Stages {
			continue
		}
		stages, err := store.Stages(cmd.Context(), run.RunID)
		if err != nil {
			return WrapExitError(ExitCommandError, "cannot read run stages", err)
		}
		for _, stage := range stages {
			line := fmt.Sprintf("    %-9s %-9s %6.2fs", stage.Name, stage.Status, stage.Seconds)
			if stage.RowsOut > 0 {
				line += fmt.Sprintf("  rows: %d", stage.RowsOut)
			}
			if stage.Error != "" {
				line += "  " + stage.Error
			}
			fmt.Println(line)
		}
	}

	return nil
}
