package dataset

import (
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePointShapefile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sites.shp")

	w, err := shp.Create(path, shp.POINT)
	require.NoError(t, err)
	w.SetFields([]shp.Field{
		shp.NumberField("label", 4),
		shp.FloatField("slope", 12, 4),
	})

	points := []shp.Point{{X: -111.9, Y: 40.7}, {X: -111.8, Y: 40.8}}
	labels := []int{1, 0}
	slopes := []float64{12.5, 4.25}
	for i := range points {
		w.Write(&points[i])
		w.WriteAttribute(i, 0, labels[i])
		w.WriteAttribute(i, 1, slopes[i])
	}
	w.Close()
	return path
}

func TestReadPointShapefile(t *testing.T) {
	path := writePointShapefile(t)

	tb, err := ReadPointShapefile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, tb.Len())

	xs, ok := tb.Column(ShapeXCol)
	require.True(t, ok)
	assert.Equal(t, []float64{-111.9, -111.8}, xs)

	ys, ok := tb.Column(ShapeYCol)
	require.True(t, ok)
	assert.Equal(t, []float64{40.7, 40.8}, ys)

	label, ok := tb.Column("label")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 0}, label)

	slope, ok := tb.Column("slope")
	require.True(t, ok)
	assert.InDelta(t, 12.5, slope[0], 1e-9)
	assert.InDelta(t, 4.25, slope[1], 1e-9)
}

func TestReadPointShapefile_Missing(t *testing.T) {
	_, err := ReadPointShapefile(filepath.Join(t.TempDir(), "nope.shp"))
	assert.Error(t, err)
}
