package operations

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aurelion/internal/config"
)

func writePipelineFixtures(t *testing.T, paths *config.Paths) {
	t.Helper()

	fixtures := map[string]string{
		"productos.csv": "id_producto,nombre_producto,categoria,precio_unitario\n" +
			"1,Yerba Mate,almacen,1500.50\n" +
			"2,Leche Entera,lacteos,900\n",
		"clientes.csv": "id_cliente,nombre_cliente,email,ciudad,fecha_alta\n" +
			"10,Ana Suarez,ana@example.com,Cordoba,2025-01-01\n",
		"ventas.csv": "id_venta,fecha,id_cliente,medio_pago\n" +
			"100,2025-01-10,10,cash\n" +
			"101,2025-01-11,10,credit_card\n",
		"detalle_ventas.csv": "id_venta,id_producto,cantidad,precio_unitario,importe\n" +
			"100,1,2,1500.50,3001\n" +
			"101,2,1,900,900\n",
	}
	for name, content := range fixtures {
		require.NoError(t, os.WriteFile(paths.GetDataPath(name), []byte(content), 0644))
	}
}

func pipelineConfig(t *testing.T) (*config.Config, *config.Paths) {
	t.Helper()

	cfg := config.Default()
	cfg.Datasets.Products = "productos.csv"
	cfg.Datasets.Clients = "clientes.csv"
	cfg.Datasets.Sales = "ventas.csv"
	cfg.Datasets.SaleLines = "detalle_ventas.csv"

	paths := config.NewPaths(t.TempDir(), cfg.Paths)
	require.NoError(t, paths.EnsureDirectories())
	writePipelineFixtures(t, paths)
	return cfg, paths
}

func TestPipelineFullRun(t *testing.T) {
	cfg, paths := pipelineConfig(t)

	manifest := NewRunManifest("run-full", ModeFull)
	steps := BuildSteps(cfg, paths, nil, manifest)
	manager := NewManager(steps, manifest, paths.GetExportPath("manifest.json"), nil)
	state := NewOperationState("run-full", ModeFull)

	require.NoError(t, manager.Run(context.Background(), state))
	assert.Equal(t, OperationStatusCompleted, state.Status)

	// Artifacts from every step are on disk.
	expected := []string{
		paths.GetCleanPath("sales.csv"),
		paths.GetExportPath("top_products.csv"),
		paths.GetExportPath("monthly_ticket.csv"),
		paths.GetExportPath(filepath.Join("charts", "monthly_revenue.png")),
		paths.GetDocsPath("resumen.md"),
		paths.GetExportPath("manifest.json"),
	}
	for _, path := range expected {
		_, err := os.Stat(path)
		assert.NoError(t, err, "expected artifact %s", path)
	}

	require.NotNil(t, state.Summary)
	assert.Equal(t, 2, state.Summary.Sales)
	assert.InDelta(t, 3901.0, state.Summary.TotalRevenue, 0.001)

	// Channel was derived during cleaning.
	require.NotNil(t, state.Dataset)
	assert.NotEmpty(t, state.Dataset.Sales[0].Channel)
}

func TestPipelineFastRun(t *testing.T) {
	cfg, paths := pipelineConfig(t)

	manifest := NewRunManifest("run-fast", ModeFast)
	steps := BuildSteps(cfg, paths, nil, manifest)
	manager := NewManager(steps, manifest, paths.GetExportPath("manifest.json"), nil)
	state := NewOperationState("run-fast", ModeFast)

	require.NoError(t, manager.Run(context.Background(), state))
	assert.Equal(t, OperationStatusCompleted, state.Status)
	require.NotNil(t, state.Summary)

	// Export and report were skipped, so no CSVs or summary on disk.
	_, err := os.Stat(paths.GetExportPath("top_products.csv"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(paths.GetDocsPath("resumen.md"))
	assert.True(t, os.IsNotExist(err))

	assert.Equal(t, StepStatusSkipped, state.GetStep(StepIDExport).GetStatus())
	assert.Equal(t, StepStatusSkipped, state.GetStep(StepIDReport).GetStatus())
}

func TestPipelineFailsOnMissingFile(t *testing.T) {
	cfg, paths := pipelineConfig(t)
	cfg.Datasets.Products = "missing.csv"

	manifest := NewRunManifest("run-err", ModeFull)
	steps := BuildSteps(cfg, paths, nil, manifest)
	manager := NewManager(steps, manifest, paths.GetExportPath("manifest.json"), nil)
	state := NewOperationState("run-err", ModeFull)

	err := manager.Run(context.Background(), state)
	require.Error(t, err)
	assert.Equal(t, OperationStatusFailed, state.Status)
	assert.Equal(t, StepStatusFailed, state.GetStep(StepIDLoad).GetStatus())
	assert.Equal(t, StepStatusSkipped, state.GetStep(StepIDAnalyze).GetStatus())
}
