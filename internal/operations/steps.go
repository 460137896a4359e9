package operations

import (
	"context"
	"log/slog"
	"time"

	"aurelion/internal/analytics"
	"aurelion/internal/cleaning"
	"aurelion/internal/config"
	apperrors "aurelion/internal/errors"
	"aurelion/internal/exporter"
	"aurelion/internal/loader"
	"aurelion/internal/validation"
)

// Step IDs, in execution order.
const (
	StepIDLoad     = "load"
	StepIDValidate = "validate"
	StepIDClean    = "clean"
	StepIDAnalyze  = "analyze"
	StepIDExport   = "export"
	StepIDReport   = "report"
)

// skipInFastMode lists the steps a fast run does not execute.
var skipInFastMode = map[string]bool{
	StepIDExport: true,
	StepIDReport: true,
}

// BuildSteps wires the full pipeline. The manager decides at run time
// which steps the mode skips.
func BuildSteps(cfg *config.Config, paths *config.Paths, logger *slog.Logger, manifest *RunManifest) []Step {
	return []Step{
		NewLoadStep(loader.New(cfg.Datasets, paths, logger)),
		NewValidateStep(validation.New(cfg.Validation, logger)),
		NewCleanStep(cleaning.New(cfg.Validation, logger)),
		NewAnalyzeStep(analytics.NewEngine(cfg.Analytics, logger)),
		NewExportStep(exporter.New(paths, logger), exporter.NewChartRenderer(paths, logger), paths, manifest),
		NewReportStep(exporter.NewReportBuilder(paths, logger), manifest),
	}
}

// LoadStep reads the four source tables into the operation state.
type LoadStep struct {
	loader *loader.Loader
}

func NewLoadStep(l *loader.Loader) *LoadStep { return &LoadStep{loader: l} }

func (s *LoadStep) ID() string   { return StepIDLoad }
func (s *LoadStep) Name() string { return "Load datasets" }

func (s *LoadStep) Validate(state *OperationState) error { return nil }

func (s *LoadStep) Execute(ctx context.Context, state *OperationState) error {
	dataset, err := s.loader.Load(ctx)
	if err != nil {
		return err
	}
	state.Dataset = dataset
	return nil
}

// ValidateStep checks field constraints and referential integrity.
type ValidateStep struct {
	validator *validation.Validator
}

func NewValidateStep(v *validation.Validator) *ValidateStep { return &ValidateStep{validator: v} }

func (s *ValidateStep) ID() string   { return StepIDValidate }
func (s *ValidateStep) Name() string { return "Validate dataset" }

func (s *ValidateStep) Validate(state *OperationState) error {
	if state.Dataset == nil {
		return apperrors.New(StepIDValidate, apperrors.CodeValidationFailed, "no dataset loaded")
	}
	return nil
}

func (s *ValidateStep) Execute(ctx context.Context, state *OperationState) error {
	report, err := s.validator.Check(ctx, state.Dataset)
	if err != nil {
		return apperrors.NewValidationError("dataset failed validation", err)
	}
	state.ValidationReport = report
	return nil
}

// CleanStep applies the cleaning rules and replaces the working dataset
// with the cleaned copy.
type CleanStep struct {
	cleaner *cleaning.Cleaner
}

func NewCleanStep(c *cleaning.Cleaner) *CleanStep { return &CleanStep{cleaner: c} }

func (s *CleanStep) ID() string   { return StepIDClean }
func (s *CleanStep) Name() string { return "Clean dataset" }

func (s *CleanStep) Validate(state *OperationState) error {
	if state.Dataset == nil {
		return apperrors.New(StepIDClean, apperrors.CodeCleaningFailed, "no dataset loaded")
	}
	return nil
}

func (s *CleanStep) Execute(ctx context.Context, state *OperationState) error {
	result := s.cleaner.Clean(ctx, state.Dataset)
	state.CleaningResult = result
	state.Dataset = result.Dataset
	return nil
}

// AnalyzeStep computes the KPI summary over the cleaned dataset.
type AnalyzeStep struct {
	engine *analytics.Engine
}

func NewAnalyzeStep(e *analytics.Engine) *AnalyzeStep { return &AnalyzeStep{engine: e} }

func (s *AnalyzeStep) ID() string   { return StepIDAnalyze }
func (s *AnalyzeStep) Name() string { return "Compute KPIs" }

func (s *AnalyzeStep) Validate(state *OperationState) error {
	if state.CleaningResult == nil {
		return apperrors.New(StepIDAnalyze, apperrors.CodeAnalyticsFailed, "dataset not cleaned")
	}
	return nil
}

func (s *AnalyzeStep) Execute(ctx context.Context, state *OperationState) error {
	state.Summary = s.engine.Summarize(ctx, state.Dataset)
	return nil
}

// ExportStep writes the cleaned tables, KPI CSVs and charts.
type ExportStep struct {
	exporter *exporter.Exporter
	charts   *exporter.ChartRenderer
	paths    *config.Paths
	manifest *RunManifest
}

func NewExportStep(e *exporter.Exporter, charts *exporter.ChartRenderer, paths *config.Paths, manifest *RunManifest) *ExportStep {
	return &ExportStep{exporter: e, charts: charts, paths: paths, manifest: manifest}
}

func (s *ExportStep) ID() string   { return StepIDExport }
func (s *ExportStep) Name() string { return "Export results" }

func (s *ExportStep) Validate(state *OperationState) error {
	if state.Summary == nil {
		return apperrors.New(StepIDExport, apperrors.CodeExportFailed, "no summary computed")
	}
	return nil
}

func (s *ExportStep) Execute(ctx context.Context, state *OperationState) error {
	if err := s.exporter.ExportCleanDataset(ctx, state.Dataset); err != nil {
		return err
	}
	if err := s.exporter.ExportKPIs(ctx, state.Summary); err != nil {
		return err
	}
	if err := s.charts.WriteCharts(ctx, state.Summary); err != nil {
		return err
	}

	counts := state.Dataset.RowCounts()
	for table, count := range counts {
		s.manifest.AddArtifact("clean_"+string(table), ArtifactInfo{
			Path:      s.paths.GetCleanPath(string(table) + ".csv"),
			Rows:      count,
			CreatedBy: StepIDExport,
		})
	}
	for _, name := range []string{"monthly_ticket", "top_products", "payment_methods", "abc_products", "abc_clients"} {
		s.manifest.AddArtifact(name, ArtifactInfo{
			Path:      s.paths.GetExportPath(name + ".csv"),
			CreatedBy: StepIDExport,
		})
	}
	return nil
}

// ReportStep renders the executive summary.
type ReportStep struct {
	builder  *exporter.ReportBuilder
	manifest *RunManifest
}

func NewReportStep(b *exporter.ReportBuilder, manifest *RunManifest) *ReportStep {
	return &ReportStep{builder: b, manifest: manifest}
}

func (s *ReportStep) ID() string   { return StepIDReport }
func (s *ReportStep) Name() string { return "Write executive summary" }

func (s *ReportStep) Validate(state *OperationState) error {
	if state.Summary == nil {
		return apperrors.New(StepIDReport, apperrors.CodeReportFailed, "no summary computed")
	}
	if state.CleaningResult == nil {
		return apperrors.New(StepIDReport, apperrors.CodeReportFailed, "dataset not cleaned")
	}
	return nil
}

func (s *ReportStep) Execute(ctx context.Context, state *OperationState) error {
	path, err := s.builder.Write(ctx, exporter.ReportData{
		GeneratedAt: time.Now(),
		Summary:     state.Summary,
		Cleaning:    state.CleaningResult,
		Sources:     state.Dataset.Sources,
	})
	if err != nil {
		return err
	}

	s.manifest.AddArtifact("resumen", ArtifactInfo{
		Path:      path,
		CreatedBy: StepIDReport,
	})
	return nil
}
