package dataset

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeXLSX(t *testing.T, rows [][]any) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("points")
	require.NoError(t, err)

	for _, cells := range rows {
		row := sheet.AddRow()
		for _, v := range cells {
			cell := row.AddCell()
			switch c := v.(type) {
			case string:
				cell.Value = c
			case float64:
				cell.SetFloat(c)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "points.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadXLSXFile(t *testing.T) {
	path := writeXLSX(t, [][]any{
		{"x", "y", "label", "slope"},
		{1.5, 2.5, 1.0, 10.2},
		{3.5, 4.5, 0.0, 11.8},
	})

	tb, err := ReadXLSXFile(path)
	require.NoError(t, err)

	assert.Equal(t, 2, tb.Len())
	assert.Equal(t, []string{"x", "y", "label", "slope"}, tb.Names())

	slope, ok := tb.Column("slope")
	require.True(t, ok)
	assert.Equal(t, []float64{10.2, 11.8}, slope)

	label, _ := tb.Column("label")
	assert.Equal(t, []float64{1, 0}, label)
}

func TestReadXLSXFile_NonNumericBecomesNaN(t *testing.T) {
	path := writeXLSX(t, [][]any{
		{"id", "slope"},
		{"A-1", 10.2},
		{"A-2", "n/a"},
	})

	tb, err := ReadXLSXFile(path)
	require.NoError(t, err)

	id, _ := tb.Column("id")
	assert.True(t, math.IsNaN(id[0]))

	slope, _ := tb.Column("slope")
	assert.Equal(t, 10.2, slope[0])
	assert.True(t, math.IsNaN(slope[1]))
}

func TestReadXLSXFile_Missing(t *testing.T) {
	_, err := ReadXLSXFile(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
}
