package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// forestData builds a two-feature problem where only the first feature
// carries signal.
func forestData() (*mat.Dense, []float64) {
	vals := []float64{
		0.1, 5.0,
		0.3, 2.0,
		0.2, 9.0,
		0.4, 1.0,
		0.9, 4.0,
		0.8, 7.0,
		0.7, 3.0,
		0.6, 8.0,
	}
	y := []float64{0, 0, 0, 0, 1, 1, 1, 1}
	return mat.NewDense(8, 2, vals), y
}

func TestFitForest(t *testing.T) {
	x, y := forestData()
	cfg := Config{Variant: VariantForest, Trees: 50, Seed: 7}

	m, err := Fit(cfg, []string{"slope", "noise"}, x, y)
	require.NoError(t, err)
	assert.Equal(t, VariantForest, m.Variant())
	assert.Equal(t, []string{"slope", "noise"}, m.Features())

	probs, err := m.Predict(x)
	require.NoError(t, err)
	require.Len(t, probs, 8)
	for i, p := range probs {
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
		if y[i] == 1 {
			assert.Greater(t, p, 0.5, "record %d", i)
		} else {
			assert.Less(t, p, 0.5, "record %d", i)
		}
	}
}

func TestFitForest_Deterministic(t *testing.T) {
	x, y := forestData()
	cfg := Config{Variant: VariantForest, Trees: 20, Seed: 11}

	m1, err := Fit(cfg, []string{"slope", "noise"}, x, y)
	require.NoError(t, err)
	m2, err := Fit(cfg, []string{"slope", "noise"}, x, y)
	require.NoError(t, err)

	p1, err := m1.Predict(x)
	require.NoError(t, err)
	p2, err := m2.Predict(x)
	require.NoError(t, err)
	assert.Equal(t, p1, p2)

	cfg.Seed = 12
	m3, err := Fit(cfg, []string{"slope", "noise"}, x, y)
	require.NoError(t, err)
	p3, err := m3.Predict(x)
	require.NoError(t, err)
	assert.NotEqual(t, p1, p3, "different seed grows different trees")
}

func TestFitForest_Importance(t *testing.T) {
	x, y := forestData()
	cfg := Config{Variant: VariantForest, Trees: 50, Seed: 7, Importance: true, FeatureRate: 1}

	m, err := Fit(cfg, []string{"slope", "noise"}, x, y)
	require.NoError(t, err)

	f, ok := m.(*Forest)
	require.True(t, ok)
	imp := f.Importance()
	require.Len(t, imp, 2)

	var total float64
	for _, v := range imp {
		total += v
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.Greater(t, imp["slope"], imp["noise"], "signal feature dominates splits")
}

func TestFitForest_ImportanceDisabled(t *testing.T) {
	x, y := forestData()
	m, err := Fit(Config{Variant: VariantForest, Trees: 5, Seed: 1}, []string{"slope", "noise"}, x, y)
	require.NoError(t, err)

	f := m.(*Forest)
	assert.Nil(t, f.Importance())
}
