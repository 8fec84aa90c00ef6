package dataset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"compliance-insights-go/internal/classifier"
)

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "metrics.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadDetectsColumnsByHeader(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"Customer ID", "Negative Accum Count", "Match Rate %", "Referral Capture %"},
		{"CE-001", 3, 90, 55},
		{"CE-002", 18, 65, 35},
	})

	got, err := Load(path)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "CE-001", got[0].CustomerID)
	require.Len(t, got[0].Metrics, 3)
	assert.Equal(t, classifier.MetricNegativeAccum, got[0].Metrics[0].Name)
	assert.Equal(t, 3.0, got[0].Metrics[0].Value)
	assert.Equal(t, classifier.MetricMatchRate, got[0].Metrics[1].Name)
	assert.Equal(t, 90.0, got[0].Metrics[1].Value)
	assert.Equal(t, "CE-002", got[1].CustomerID)
}

func TestLoadSkipsRowsWithBadCells(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"customer", "negative accum", "match rate", "referral capture"},
		{"CE-001", "not-a-number", 90, 55},
		{"", 3, 90, 55},
		{"CE-003", 8, 78, 62},
	})

	got, err := Load(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "CE-003", got[0].CustomerID)
}

func TestLoadPositionalFallback(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"a", "b", "c", "d"},
		{"CE-001", 3, 90, 55},
	})

	got, err := Load(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 55.0, got[0].Metrics[2].Value)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)

	empty := writeWorkbook(t, [][]any{{"customer", "negative accum", "match rate", "referral"}})
	_, err = Load(empty)
	assert.Error(t, err)
}
