package operations

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStep struct {
	id       string
	valErr   error
	execErr  error
	executed bool
}

func (s *stubStep) ID() string   { return s.id }
func (s *stubStep) Name() string { return "stub " + s.id }

func (s *stubStep) Validate(state *OperationState) error { return s.valErr }

func (s *stubStep) Execute(ctx context.Context, state *OperationState) error {
	s.executed = true
	return s.execErr
}

func newTestManager(t *testing.T, steps []Step, mode RunMode) (*Manager, *OperationState) {
	t.Helper()
	manifest := NewRunManifest("run-1", mode)
	path := filepath.Join(t.TempDir(), "manifest.json")
	return NewManager(steps, manifest, path, nil), NewOperationState("run-1", mode)
}

func TestRunExecutesAllSteps(t *testing.T) {
	a := &stubStep{id: "a"}
	b := &stubStep{id: "b"}
	m, state := newTestManager(t, []Step{a, b}, ModeFull)

	require.NoError(t, m.Run(context.Background(), state))

	assert.True(t, a.executed)
	assert.True(t, b.executed)
	assert.Equal(t, OperationStatusCompleted, state.Status)
	assert.Equal(t, StepStatusCompleted, state.GetStep("a").GetStatus())
	assert.True(t, m.Manifest().IsStageCompleted("b"))
}

func TestRunFailureSkipsRemaining(t *testing.T) {
	boom := errors.New("boom")
	a := &stubStep{id: "a", execErr: boom}
	b := &stubStep{id: "b"}
	m, state := newTestManager(t, []Step{a, b}, ModeFull)

	err := m.Run(context.Background(), state)
	require.ErrorIs(t, err, boom)

	assert.False(t, b.executed)
	assert.Equal(t, OperationStatusFailed, state.Status)
	assert.Equal(t, StepStatusFailed, state.GetStep("a").GetStatus())
	assert.Equal(t, StepStatusSkipped, state.GetStep("b").GetStatus())
	assert.Equal(t, "failed", m.Manifest().Status)
}

func TestRunValidationFailure(t *testing.T) {
	a := &stubStep{id: "a", valErr: errors.New("missing input")}
	m, state := newTestManager(t, []Step{a}, ModeFull)

	err := m.Run(context.Background(), state)
	require.Error(t, err)

	assert.False(t, a.executed)
	assert.Equal(t, StepStatusFailed, state.GetStep("a").GetStatus())
}

func TestRunFastModeSkipsExportAndReport(t *testing.T) {
	analyze := &stubStep{id: StepIDAnalyze}
	export := &stubStep{id: StepIDExport}
	report := &stubStep{id: StepIDReport}
	m, state := newTestManager(t, []Step{analyze, export, report}, ModeFast)

	require.NoError(t, m.Run(context.Background(), state))

	assert.True(t, analyze.executed)
	assert.False(t, export.executed)
	assert.False(t, report.executed)
	assert.Equal(t, StepStatusSkipped, state.GetStep(StepIDExport).GetStatus())
	assert.Equal(t, OperationStatusCompleted, state.Status)
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := &stubStep{id: "a"}
	m, state := newTestManager(t, []Step{a}, ModeFull)

	err := m.Run(ctx, state)
	require.Error(t, err)

	assert.False(t, a.executed)
	assert.Equal(t, OperationStatusCancelled, state.Status)
	assert.Equal(t, StepStatusSkipped, state.GetStep("a").GetStatus())
}

func TestRunPersistsManifest(t *testing.T) {
	a := &stubStep{id: "a"}
	manifest := NewRunManifest("run-9", ModeFull)
	path := filepath.Join(t.TempDir(), "manifest.json")
	m := NewManager([]Step{a}, manifest, path, nil)

	require.NoError(t, m.Run(context.Background(), NewOperationState("run-9", ModeFull)))

	loaded, err := LoadManifestFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "run-9", loaded.RunID)
	assert.Equal(t, "completed", loaded.Status)
	require.Len(t, loaded.Stages, 1)
	assert.Equal(t, "completed", loaded.Stages[0].Status)
}
