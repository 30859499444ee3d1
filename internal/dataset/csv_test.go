package dataset

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	in := "x,y,label,slope\n1.5,2.5,1,10.2\n3.5,4.5,0,11.8\n"
	tb, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, 2, tb.Len())
	assert.Equal(t, []string{"x", "y", "label", "slope"}, tb.Names())

	slope, ok := tb.Column("slope")
	require.True(t, ok)
	assert.Equal(t, []float64{10.2, 11.8}, slope)
}

func TestReadCSV_NonNumericBecomesNaN(t *testing.T) {
	in := "id,slope\nA-1,10.2\nA-2,\n"
	tb, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)

	id, _ := tb.Column("id")
	assert.True(t, math.IsNaN(id[0]))

	slope, _ := tb.Column("slope")
	assert.Equal(t, 10.2, slope[0])
	assert.True(t, math.IsNaN(slope[1]))
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestReadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pts.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644))

	tb, err := ReadCSVFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, tb.Len())

	_, err = ReadCSVFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
