package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.csv"), []byte("y"), 0644))

	status := InspectDir("export", dir)
	assert.True(t, status.Exists)
	assert.Equal(t, 2, status.FileCount)

	missing := InspectDir("docs", filepath.Join(dir, "nope"))
	assert.False(t, missing.Exists)
	assert.Equal(t, 0, missing.FileCount)
}

func TestInspectDataset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ventas.csv")
	require.NoError(t, os.WriteFile(path, []byte("id_venta\n1\n"), 0644))

	status := InspectDataset("sales", path)
	assert.True(t, status.Exists)
	assert.Equal(t, int64(11), status.Size)
	assert.False(t, status.ModTime.IsZero())

	assert.False(t, InspectDataset("sales", filepath.Join(dir, "missing.csv")).Exists)
}

func TestListByPattern(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "out_a.csv"), []byte("a"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "out_b.csv"), []byte("b"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("n"), 0644))

	files, err := ListByPattern(dir, "*.csv")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "out_a.csv", files[0].Name)
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512.0 B", FormatBytes(512))
	assert.Equal(t, "1.5 KB", FormatBytes(1536))
	assert.Equal(t, "2.0 MB", FormatBytes(2*1024*1024))
}
