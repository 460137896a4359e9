package operations

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"aurelion/internal/infrastructure"
)

// Manager executes the pipeline steps in order against one operation
// state. A step failure marks the remaining steps skipped; the manifest
// is persisted regardless of the outcome.
type Manager struct {
	steps        []Step
	manifest     *RunManifest
	manifestPath string
	logger       *slog.Logger
	tracer       trace.Tracer
}

// NewManager creates a Manager for one run.
func NewManager(steps []Step, manifest *RunManifest, manifestPath string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		steps:        steps,
		manifest:     manifest,
		manifestPath: manifestPath,
		logger:       logger,
		tracer:       otel.Tracer(infrastructure.TracerName),
	}
}

// Manifest returns the run manifest.
func (m *Manager) Manifest() *RunManifest {
	return m.manifest
}

// Run executes the steps sequentially. It returns the first step error;
// the operation state carries the full per-step outcome.
func (m *Manager) Run(ctx context.Context, state *OperationState) error {
	ctx = infrastructure.WithRunID(ctx, state.ID)
	state.Start()
	m.logger.InfoContext(ctx, "pipeline started",
		slog.String("run_id", state.ID),
		slog.String("mode", string(state.Mode)),
		slog.Int("steps", len(m.steps)))

	var firstErr error
	for _, step := range m.steps {
		stepState := NewStepState(step.ID(), step.Name())
		state.SetStep(step.ID(), stepState)

		if state.Mode == ModeFast && skipInFastMode[step.ID()] {
			stepState.Skip("fast mode")
			m.manifest.RecordStageSkip(step.ID(), step.Name(), "fast mode")
			m.logger.InfoContext(ctx, "step skipped", slog.String("step", step.ID()),
				slog.String("reason", "fast mode"))
			continue
		}

		if firstErr != nil {
			stepState.Skip("previous step failed")
			m.manifest.RecordStageSkip(step.ID(), step.Name(), "previous step failed")
			continue
		}

		if err := ctx.Err(); err != nil {
			stepState.Skip("run cancelled")
			m.manifest.RecordStageSkip(step.ID(), step.Name(), "run cancelled")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		if err := m.runStep(ctx, step, stepState, state); err != nil {
			firstErr = err
		}
	}

	if firstErr != nil {
		if ctx.Err() != nil {
			state.Cancel()
		} else {
			state.Fail(firstErr)
		}
	} else {
		state.Complete()
	}
	m.manifest.MarkCompleted()

	if err := m.manifest.SaveToFile(m.manifestPath); err != nil {
		m.logger.WarnContext(ctx, "cannot persist run manifest",
			slog.String("path", m.manifestPath),
			slog.String("error", err.Error()))
	}

	m.logger.InfoContext(ctx, "pipeline finished",
		slog.String("run_id", state.ID),
		slog.String("status", string(state.Status)),
		slog.Duration("duration", state.Duration()))

	return firstErr
}

func (m *Manager) runStep(ctx context.Context, step Step, stepState *StepState, state *OperationState) error {
	ctx, span := m.tracer.Start(ctx, "step."+step.ID(),
		trace.WithAttributes(
			attribute.String("run.id", state.ID),
			attribute.String("step.id", step.ID()),
			attribute.String("step.name", step.Name()),
		))
	defer span.End()

	if err := step.Validate(state); err != nil {
		err = fmt.Errorf("step %s cannot run: %w", step.ID(), err)
		stepState.Fail(err)
		m.manifest.RecordStageStart(step.ID(), step.Name())
		m.manifest.RecordStageFailure(step.ID(), err)
		span.SetStatus(codes.Error, err.Error())
		m.logger.ErrorContext(ctx, "step validation failed",
			slog.String("step", step.ID()),
			slog.String("error", err.Error()))
		return err
	}

	stepState.Start()
	m.manifest.RecordStageStart(step.ID(), step.Name())
	m.logger.InfoContext(ctx, "step started", slog.String("step", step.ID()))

	if err := step.Execute(ctx, state); err != nil {
		stepState.Fail(err)
		m.manifest.RecordStageFailure(step.ID(), err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		m.logger.ErrorContext(ctx, "step failed",
			slog.String("step", step.ID()),
			slog.String("error", err.Error()),
			slog.Duration("duration", stepState.Duration()))
		return err
	}

	stepState.Complete()
	m.manifest.RecordStageCompletion(step.ID())
	span.SetStatus(codes.Ok, "")
	m.logger.InfoContext(ctx, "step completed",
		slog.String("step", step.ID()),
		slog.Duration("duration", stepState.Duration()))
	return nil
}
