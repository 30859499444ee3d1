package dataset

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasatch-geo/riskmodel/internal/errs"
)

func testTable(t *testing.T) *Table {
	t.Helper()
	tb := NewTable()
	require.NoError(t, tb.AddColumn("x", []float64{-111.9, -111.8, -111.7}))
	require.NoError(t, tb.AddColumn("y", []float64{40.7, 40.8, 40.9}))
	require.NoError(t, tb.AddColumn("label", []float64{1, 0, 1}))
	require.NoError(t, tb.AddColumn("slope", []float64{12.1, 4.3, 9.8}))
	require.NoError(t, tb.AddColumn("elev", []float64{1400, 1550, 1720}))
	return tb
}

func testBinding() Binding {
	return Binding{XCol: "x", YCol: "y", LabelCol: "label", SRID: 4326}
}

func TestNewSample(t *testing.T) {
	s, err := NewSample(testTable(t), testBinding())
	require.NoError(t, err)

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 4326, s.SRID())
	assert.Equal(t, []float64{1, 0, 1}, s.Labels())
	assert.Equal(t, -111.9, s.Coord(0).X())
	assert.Equal(t, 40.7, s.Coord(0).Y())
}

func TestNewSample_MissingCoordColumn(t *testing.T) {
	b := testBinding()
	b.XCol = "lon"
	_, err := NewSample(testTable(t), b)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrSchema))
	assert.Contains(t, err.Error(), "lon")
}

func TestNewSample_NonNumericCoord(t *testing.T) {
	tb := NewTable()
	require.NoError(t, tb.AddColumn("x", []float64{1, math.NaN()}))
	require.NoError(t, tb.AddColumn("y", []float64{1, 2}))
	require.NoError(t, tb.AddColumn("label", []float64{0, 1}))

	_, err := NewSample(tb, Binding{XCol: "x", YCol: "y", LabelCol: "label"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrSchema))
}

func TestNewSample_NonBinaryLabel(t *testing.T) {
	tb := NewTable()
	require.NoError(t, tb.AddColumn("x", []float64{1, 2}))
	require.NoError(t, tb.AddColumn("y", []float64{1, 2}))
	require.NoError(t, tb.AddColumn("label", []float64{0, 2}))

	_, err := NewSample(tb, Binding{XCol: "x", YCol: "y", LabelCol: "label"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrSchema))
}

func TestSample_Matrix(t *testing.T) {
	s, err := NewSample(testTable(t), testBinding())
	require.NoError(t, err)

	x, err := s.Matrix([]string{"slope", "elev"})
	require.NoError(t, err)

	rows, cols := x.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, 12.1, x.At(0, 0))
	assert.Equal(t, 1550.0, x.At(1, 1))
}

func TestSample_Matrix_UnknownFeature(t *testing.T) {
	s, err := NewSample(testTable(t), testBinding())
	require.NoError(t, err)

	_, err = s.Matrix([]string{"aspect"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrSchema))
	assert.Contains(t, err.Error(), "aspect")
}

func TestSample_MatrixRows(t *testing.T) {
	s, err := NewSample(testTable(t), testBinding())
	require.NoError(t, err)

	x, err := s.MatrixRows([]string{"slope"}, []int{2, 0})
	require.NoError(t, err)
	assert.Equal(t, 9.8, x.At(0, 0))
	assert.Equal(t, 12.1, x.At(1, 0))

	assert.Equal(t, []float64{1, 1}, s.LabelsAt([]int{2, 0}))
}

func TestSample_Bounds(t *testing.T) {
	s, err := NewSample(testTable(t), testBinding())
	require.NoError(t, err)

	b := s.Bounds()
	assert.Equal(t, -111.9, b.Min(0))
	assert.Equal(t, 40.7, b.Min(1))
	assert.Equal(t, -111.7, b.Max(0))
	assert.Equal(t, 40.9, b.Max(1))
}
