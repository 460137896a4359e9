package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "aurelion/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "datasets", cfg.Paths.DataDir)
	assert.Equal(t, "datasets_clean", cfg.Paths.CleanDir)
	assert.Equal(t, "export", cfg.Paths.ExportDir)
	assert.Equal(t, "productos.xlsx", cfg.Datasets.Products)
	assert.Equal(t, 0.05, cfg.Validation.MaxOrphanRatio)
	assert.Equal(t, 5, cfg.Analytics.TopProducts)
	assert.Equal(t, 0.80, cfg.Analytics.ABCClassA)
	assert.Equal(t, 0.95, cfg.Analytics.ABCClassB)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.True(t, cfg.History.IsEnabled())
	assert.True(t, cfg.Logging.TracingEnabled())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
paths:
  data_dir: raw
  export_dir: out
datasets:
  products: products.csv
  clients: clients.csv
  sales: sales.json
  sale_lines: lines.jsonl
validation:
  max_orphan_ratio: 0.10
  min_date: "2024-01-01"
  max_date: "2025-12-31"
analytics:
  top_products: 10
  abc_class_a: 0.70
  abc_class_b: 0.90
logging:
  level: debug
  output: stdout
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))

	cfg, err := Load(configFile)
	require.NoError(t, err)

	assert.Equal(t, "raw", cfg.Paths.DataDir)
	assert.Equal(t, "out", cfg.Paths.ExportDir)
	assert.Equal(t, "products.csv", cfg.Datasets.Products)
	assert.Equal(t, "sales.json", cfg.Datasets.Sales)
	assert.Equal(t, 0.10, cfg.Validation.MaxOrphanRatio)
	assert.Equal(t, 10, cfg.Analytics.TopProducts)
	assert.Equal(t, 0.70, cfg.Analytics.ABCClassA)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Unset sections fall back to defaults.
	assert.Equal(t, "logs", cfg.Paths.LogsDir)
	assert.Equal(t, float64(1000000), cfg.Validation.MaxUnitPrice)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("AURELION_LOGGING_LEVEL", "warn")
	t.Setenv("AURELION_ANALYTICS_TOP_PRODUCTS", "3")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 3, cfg.Analytics.TopProducts)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "datasets", cfg.Paths.DataDir)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
logging:
  level: verbose
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))

	_, err := Load(configFile)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.CodeOf(err))
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name:   "negative orphan ratio",
			mutate: func(c *Config) { c.Validation.MaxOrphanRatio = -0.1 },
		},
		{
			name:   "abc cut points out of order",
			mutate: func(c *Config) { c.Analytics.ABCClassA = 0.90; c.Analytics.ABCClassB = 0.80 },
		},
		{
			name:   "unknown log level",
			mutate: func(c *Config) { c.Logging.Level = "verbose" },
		},
		{
			name:   "malformed min date",
			mutate: func(c *Config) { c.Validation.MinDate = "01-01-2024" },
		},
		{
			name:   "date window inverted",
			mutate: func(c *Config) { c.Validation.MinDate = "2025-01-01"; c.Validation.MaxDate = "2024-01-01" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDateWindow(t *testing.T) {
	cfg := Default()
	cfg.Validation.MinDate = "2024-06-01"

	min, max := cfg.Validation.DateWindow()
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), min)
	assert.True(t, max.IsZero())
}
