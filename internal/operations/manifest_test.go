package operations

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifestStageLifecycle(t *testing.T) {
	m := NewRunManifest("run-1", ModeFull)
	assert.Equal(t, "pending", m.Status)

	m.RecordStageStart("load", "Load datasets")
	assert.Equal(t, "running", m.Status)
	assert.False(t, m.IsStageCompleted("load"))

	m.RecordStageCompletion("load")
	assert.True(t, m.IsStageCompleted("load"))

	m.MarkCompleted()
	assert.Equal(t, "completed", m.Status)
}

func TestManifestStageFailure(t *testing.T) {
	m := NewRunManifest("run-1", ModeFull)
	m.RecordStageStart("clean", "Clean dataset")
	m.RecordStageFailure("clean", errors.New("bad rows"))

	assert.Equal(t, "failed", m.Status)
	assert.Contains(t, m.Error, "clean")
	require.Len(t, m.Stages, 1)
	assert.Equal(t, "failed", m.Stages[0].Status)

	// A later MarkCompleted must not mask the failure.
	m.MarkCompleted()
	assert.Equal(t, "failed", m.Status)
}

func TestManifestRestart(t *testing.T) {
	m := NewRunManifest("run-1", ModeFull)
	m.RecordStageStart("load", "Load datasets")
	m.RecordStageCompletion("load")
	m.RecordStageStart("load", "Load datasets")

	// Retry reuses the existing entry instead of appending.
	require.Len(t, m.Stages, 1)
	assert.Equal(t, "running", m.Stages[0].Status)
}

func TestManifestArtifacts(t *testing.T) {
	m := NewRunManifest("run-1", ModeFull)
	m.AddArtifact("top_products", ArtifactInfo{Path: "export/top_products.csv", CreatedBy: "export"})

	info, ok := m.Artifacts["top_products"]
	require.True(t, ok)
	assert.Equal(t, "export/top_products.csv", info.Path)
	assert.False(t, info.CreatedAt.IsZero())
}

func TestManifestSaveAndLoad(t *testing.T) {
	m := NewRunManifest("run-7", ModeFast)
	m.RecordStageSkip("export", "Export results", "fast mode")

	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, m.SaveToFile(path))

	loaded, err := LoadManifestFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "run-7", loaded.RunID)
	assert.Equal(t, ModeFast, loaded.Mode)
	require.Len(t, loaded.Stages, 1)
	assert.Equal(t, "skipped", loaded.Stages[0].Status)
}
