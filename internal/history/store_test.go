package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "aurelion/internal/errors"
	"aurelion/internal/metrics"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRecord(runID string, started time.Time) metrics.RunRecord {
	return metrics.RunRecord{
		RunID:      runID,
		Mode:       "full",
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
		Seconds:    2,
		Status:     "completed",
		Stages: []metrics.StageRecord{
			{Name: "load", Status: "completed", Seconds: 0.5, RowsOut: 120},
			{Name: "clean", Status: "completed", Seconds: 0.3, RowsIn: 120, RowsOut: 110},
		},
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestOpenReportsUnavailable(t *testing.T) {
	// A regular file where the database directory should go makes every
	// part of Open fail the same recognizable way.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := Open(filepath.Join(blocker, "nested", "runs.db"))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeHistoryUnavailable, apperrors.CodeOf(err))
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.RecordRun(ctx, sampleRecord("run-1", base)))
	require.NoError(t, store.RecordRun(ctx, sampleRecord("run-2", base.Add(time.Hour))))

	runs, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].RunID) // newest first
	assert.Equal(t, "completed", runs[0].Status)
	assert.Equal(t, base.Add(time.Hour), runs[0].StartedAt)
}

func TestRecentLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		record := sampleRecord(
			"run-"+string(rune('a'+i)),
			base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, store.RecordRun(ctx, record))
	}

	runs, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestStages(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.RecordRun(ctx, sampleRecord("run-1", base)))

	stages, err := store.Stages(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, stages, 2)
	assert.Equal(t, "load", stages[0].Name)
	assert.Equal(t, 120, stages[0].RowsOut)
	assert.Equal(t, "clean", stages[1].Name)
	assert.Equal(t, 110, stages[1].RowsOut)
}

func TestStagesUnknownRun(t *testing.T) {
	store := openTestStore(t)

	stages, err := store.Stages(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, stages)
}
