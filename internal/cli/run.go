package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"aurelion/internal/history"
	"aurelion/internal/infrastructure"
	"aurelion/internal/metrics"
	"aurelion/internal/operations"
	"aurelion/pkg/contracts/domain"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Fast bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the cleaning and KPI pipeline",
		Long: `Run the full pipeline: load the four source tables, validate and
clean them, compute the KPIs, write the CSV exports and charts and
render the executive summary.

Fast mode stops after the KPI computation and skips the exports and
the report.

Example:
  aurelion run
  aurelion run --fast --config aurelion.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Fast, "fast", false, "skip exports and the executive summary")

	return cmd
}

func runPipeline(ctx context.Context, opts *RunOptions) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := setup(opts.RootOptions, true)
	if err != nil {
		return err
	}
	defer infrastructure.CloseLogFile()

	tracing, err := infrastructure.InitTracing(app.cfg.Logging, app.paths)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot initialize tracing", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx); err != nil {
			app.logger.Warn("tracing shutdown failed", slog.String("error", err.Error()))
		}
	}()

	mode := operations.ModeFull
	if opts.Fast {
		mode = operations.ModeFast
	}

	runID := uuid.NewString()
	manifest := operations.NewRunManifest(runID, mode)
	steps := operations.BuildSteps(app.cfg, app.paths, app.logger, manifest)
	manager := operations.NewManager(steps, manifest, app.paths.GetExportPath("manifest.json"), app.logger)
	state := operations.NewOperationState(runID, mode)

	runErr := manager.Run(ctx, state)

	record := buildRunRecord(state)
	recorder := metrics.NewRecorder(app.paths, app.logger)
	if err := recorder.Record(ctx, record); err != nil {
		app.logger.Warn("cannot record performance metrics", slog.String("error", err.Error()))
	}

	if app.cfg.History.IsEnabled() {
		if err := recordHistory(ctx, app, record); err != nil {
			app.logger.Warn("cannot record run history", slog.String("error", err.Error()))
		}
	}

	if runErr != nil {
		return WrapExitError(ExitFailure, "pipeline failed", runErr)
	}

	printRunSummary(state)
	return nil
}

func recordHistory(ctx context.Context, app *appContext, record metrics.RunRecord) error {
	store, err := history.Open(app.historyDBPath())
	if err != nil {
		return err
	}
	defer store.Close()
	return store.RecordRun(ctx, record)
}

// stepOrder fixes the stage order in metrics and history records.
var stepOrder = []string{
	operations.StepIDLoad,
	operations.StepIDValidate,
	operations.StepIDClean,
	operations.StepIDAnalyze,
	operations.StepIDExport,
	operations.StepIDReport,
}

func buildRunRecord(state *operations.OperationState) metrics.RunRecord {
	finished := time.Now()
	if state.EndTime != nil {
		finished = *state.EndTime
	}

	record := metrics.RunRecord{
		RunID:      state.ID,
		Mode:       string(state.Mode),
		StartedAt:  state.StartTime,
		FinishedAt: finished,
		Seconds:    state.Duration().Seconds(),
		Status:     string(state.Status),
	}

	var rowsBefore, rowsAfter int
	if state.CleaningResult != nil {
		for _, table := range domain.AllTables {
			stats := state.CleaningResult.Stats[table]
			rowsBefore += stats.Before
			rowsAfter += stats.After
		}
	}

	for _, stepID := range stepOrder {
		stepState := state.GetStep(stepID)
		if stepState == nil {
			continue
		}
		stage := metrics.StageRecord{
			Name:    stepID,
			Status:  string(stepState.GetStatus()),
			Seconds: stepState.Duration().Seconds(),
		}
		if stepState.Error != nil {
			stage.ErrorMsg = stepState.Error.Error()
		}
		switch stepID {
		case operations.StepIDLoad:
			stage.RowsOut = rowsBefore
		case operations.StepIDClean:
			stage.RowsIn = rowsBefore
			stage.RowsOut = rowsAfter
		}
		record.Stages = append(record.Stages, stage)
	}

	return record
}

func printRunSummary(state *operations.OperationState) {
	fmt.Printf("Run %s %s in %s\n", state.ID, state.Status, state.Duration().Round(time.Millisecond))

	if state.Summary == nil {
		return
	}
	fmt.Printf("  sales: %d  lines: %d  revenue: %.2f  avg ticket: %.2f\n",
		state.Summary.Sales, state.Summary.Lines,
		state.Summary.TotalRevenue, state.Summary.AverageTicket)

	if state.CleaningResult != nil {
		dropped := 0
		for _, stats := range state.CleaningResult.Stats {
			dropped += stats.Dropped()
		}
		fmt.Printf("  rows dropped: %d  amounts fixed: %d  channels derived: %d\n",
			dropped, state.CleaningResult.AmountsFixed, state.CleaningResult.ChannelsDerived)
	}
}
