package loader

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeColumn(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Precio Unitario", "precio_unitario"},
		{"  categoría ", "categoria"},
		{"ID_PRODUCTO", "id_producto"},
		{"Año", "ano"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeColumn(tt.input), "input %q", tt.input)
	}
}

func TestNewRawTablePadsShortRows(t *testing.T) {
	table := newRawTable(
		[]string{"id_venta", "fecha", "medio_pago"},
		[][]string{
			{"1", "2025-01-02", "cash"},
			{"2", "2025-01-03"},
		},
	)

	require.Len(t, table.Rows, 2)
	assert.Equal(t, "cash", table.Rows[0]["medio_pago"])
	assert.Equal(t, "", table.Rows[1]["medio_pago"])
}

func TestMissingColumns(t *testing.T) {
	table := newRawTable([]string{"id_producto", "nombre_producto"}, nil)

	missing := table.MissingColumns([]string{"id_producto", "nombre_producto", "categoria"})
	assert.Equal(t, []string{"categoria"}, missing)

	assert.Empty(t, table.MissingColumns([]string{"id_producto"}))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"iso", "2025-03-15", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"slash dmy", "15/03/2025", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"excel serial", "45731", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDate(tt.input)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
		})
	}

	_, err := parseDate("not a date")
	assert.Error(t, err)
	_, err = parseDate("")
	assert.Error(t, err)
}

func TestParseFloat(t *testing.T) {
	got, err := parseFloat("1234.50")
	require.NoError(t, err)
	assert.Equal(t, 1234.5, got)

	got, err = parseFloat("1234,50")
	require.NoError(t, err)
	assert.Equal(t, 1234.5, got)

	_, err = parseFloat("abc")
	assert.Error(t, err)
}

func TestParseInt(t *testing.T) {
	got, err := parseInt("42")
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	// Excel delivers integers as floats.
	got, err = parseInt("42.0")
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	_, err = parseInt("42.5")
	assert.Error(t, err)
}
