package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"aurelion/internal/analytics"
	"aurelion/internal/cleaning"
	"aurelion/internal/exporter"
	"aurelion/internal/infrastructure"
	"aurelion/internal/loader"
	"aurelion/internal/validation"
)

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Regenerate the executive summary",
		Long: `Recompute the KPIs from the source datasets and rewrite the
executive summary, without touching the CSV exports or charts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeReport(cmd.Context(), rootOpts)
		},
	}
}

func writeReport(ctx context.Context, opts *RootOptions) error {
	app, err := setup(opts, true)
	if err != nil {
		return err
	}
	defer infrastructure.CloseLogFile()

	ctx = infrastructure.WithRunID(ctx, uuid.NewString())

	dataset, err := loader.New(app.cfg.Datasets, app.paths, app.logger).Load(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "cannot load datasets", err)
	}
	if _, err := validation.New(app.cfg.Validation, app.logger).Check(ctx, dataset); err != nil {
		return WrapExitError(ExitFailure, "validation failed", err)
	}

	result := cleaning.New(app.cfg.Validation, app.logger).Clean(ctx, dataset)
	summary := analytics.NewEngine(app.cfg.Analytics, app.logger).Summarize(ctx, result.Dataset)

	path, err := exporter.NewReportBuilder(app.paths, app.logger).Write(ctx, exporter.ReportData{
		GeneratedAt: time.Now(),
		Summary:     summary,
		Cleaning:    result,
		Sources:     result.Dataset.Sources,
	})
	if err != nil {
		return WrapExitError(ExitFailure, "cannot write report", err)
	}

	fmt.Printf("Executive summary written to %s\n", path)
	return nil
}
