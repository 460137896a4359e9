package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPathsResolvesRelativeDirs(t *testing.T) {
	base := t.TempDir()
	paths := NewPaths(base, Default().Paths)

	assert.Equal(t, filepath.Join(base, "datasets"), paths.DataDir)
	assert.Equal(t, filepath.Join(base, "datasets_clean"), paths.CleanDir)
	assert.Equal(t, filepath.Join(base, "export"), paths.ExportDir)
	assert.Equal(t, filepath.Join(base, "docs"), paths.DocsDir)
	assert.Equal(t, filepath.Join(base, "logs"), paths.LogsDir)
}

func TestNewPathsKeepsAbsoluteDirs(t *testing.T) {
	base := t.TempDir()
	abs := filepath.Join(base, "elsewhere")

	cfg := Default().Paths
	cfg.ExportDir = abs

	paths := NewPaths(base, cfg)
	assert.Equal(t, abs, paths.ExportDir)
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	paths := NewPaths(base, Default().Paths)

	require.NoError(t, paths.EnsureDirectories())

	for _, dir := range []string{paths.DataDir, paths.CleanDir, paths.ExportDir, paths.DocsDir, paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestPathHelpers(t *testing.T) {
	paths := NewPaths("/base", Default().Paths)

	assert.Equal(t, filepath.Join("/base", "datasets", "ventas.csv"), paths.GetDataPath("ventas.csv"))
	assert.Equal(t, "/abs/ventas.csv", paths.GetDataPath("/abs/ventas.csv"))
	assert.Equal(t, filepath.Join("/base", "export", "out.csv"), paths.GetExportPath("out.csv"))
	assert.Equal(t, filepath.Join("/base", "docs", "report.md"), paths.GetDocsPath("report.md"))
	assert.Equal(t, filepath.Join("/base", "logs", "trace.jsonl"), paths.GetLogPath("trace.jsonl"))
}
