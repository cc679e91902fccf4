package xlsxfile

import (
	"os"
	"path/filepath"
	"testing"

	"bankscap/internal/domain"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTable(t *testing.T) *domain.Table {
	t.Helper()
	tbl, err := domain.NewTable("Name", "MC_USD_Billion")
	require.NoError(t, err)
	require.NoError(t, tbl.AddRow(domain.Row{Name: "Alpha Bank", Values: []float64{100}}))
	require.NoError(t, tbl.AddRow(domain.Row{Name: "Beta Bank", Values: []float64{46.5}}))
	require.NoError(t, tbl.SetColumn("MC_GBP_Billion", []float64{80, 37.2}))
	return tbl
}

func TestWriter_WriteTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banks.xlsx")
	require.NoError(t, NewWriter().WriteTable(path, newTable(t)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"Name", "MC_USD_Billion", "MC_GBP_Billion"},
		{"Alpha Bank", "100.00", "80.00"},
		{"Beta Bank", "46.50", "37.20"},
	}, rows)

	raw, err := f.GetCellValue(sheetName, "C3", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Equal(t, "37.2", raw)
}

func TestWriter_WriteTable_ReplacesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "banks.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	require.NoError(t, NewWriter().WriteTable(path, newTable(t)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestWriter_WriteTable_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "banks.xlsx")
	err := NewWriter().WriteTable(path, newTable(t))
	require.ErrorIs(t, err, domain.ErrSinkUnwritable)
}
