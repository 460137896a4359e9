package operations

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepStateTransitions(t *testing.T) {
	s := NewStepState("load", "Load datasets")
	assert.Equal(t, StepStatusPending, s.GetStatus())
	assert.Equal(t, time.Duration(0), s.Duration())

	s.Start()
	assert.Equal(t, StepStatusActive, s.GetStatus())
	require.NotNil(t, s.StartTime)

	s.Complete()
	assert.Equal(t, StepStatusCompleted, s.GetStatus())
	require.NotNil(t, s.EndTime)
	assert.GreaterOrEqual(t, s.Duration(), time.Duration(0))
}

func TestStepStateFail(t *testing.T) {
	s := NewStepState("clean", "Clean dataset")
	s.Start()
	s.Fail(errors.New("broken"))

	assert.Equal(t, StepStatusFailed, s.GetStatus())
	assert.EqualError(t, s.Error, "broken")
}

func TestStepStateSkip(t *testing.T) {
	s := NewStepState("export", "Export results")
	s.Skip("fast mode")

	assert.Equal(t, StepStatusSkipped, s.GetStatus())
	assert.Equal(t, "fast mode", s.Message)
}

func TestOperationStateLifecycle(t *testing.T) {
	state := NewOperationState("run-1", ModeFull)
	assert.Equal(t, OperationStatusPending, state.Status)

	state.Start()
	assert.Equal(t, OperationStatusRunning, state.Status)

	state.SetStep("a", NewStepState("a", "A"))
	assert.NotNil(t, state.GetStep("a"))
	assert.False(t, state.HasFailures())

	state.GetStep("a").Fail(errors.New("x"))
	assert.True(t, state.HasFailures())

	state.Complete()
	assert.Equal(t, OperationStatusCompleted, state.Status)
	require.NotNil(t, state.EndTime)
}
