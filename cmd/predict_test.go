package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/wasatch-geo/riskmodel/internal/model"
	"github.com/wasatch-geo/riskmodel/internal/raster"
	"github.com/wasatch-geo/riskmodel/internal/store"
)

// writeArtifact trains a small logistic model on slope and elev and saves it.
func writeArtifact(t *testing.T) string {
	t.Helper()
	x := mat.NewDense(10, 2, []float64{
		1.1, 100, 2.3, 140, 1.8, 120, 3.0, 160, 2.5, 130,
		8.2, 150, 9.5, 110, 7.7, 170, 8.9, 125, 9.1, 135,
	})
	y := []float64{0, 0, 0, 0, 0, 1, 1, 1, 1, 1}
	m, err := model.Fit(model.Config{Variant: model.VariantLogistic}, []string{"slope", "elev"}, x, y)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, model.Save(path, m))
	return path
}

// writeGridDir lays out one .asc covariate file per model feature.
func writeGridDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	header := "ncols 2\nnrows 2\nxllcorner 0\nyllcorner 0\ncellsize 30\nNODATA_value -9999\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "slope.asc"),
		[]byte(header+"1.5 9.0\n-9999 8.5\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "elev.asc"),
		[]byte(header+"120 130\n140 150\n"), 0o644))
	return dir
}

func TestRunPredict(t *testing.T) {
	setTestConfig(t)
	ctx := context.Background()

	st, err := openStore(ctx)
	require.NoError(t, err)
	defer func() { _ = st.Close() }()

	out := filepath.Join(t.TempDir(), "risk.asc")
	summary, err := runPredict(ctx, st, writeArtifact(t), writeGridDir(t), out, 26912, 2)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.predicted)
	assert.Equal(t, 1, summary.masked)
	assert.GreaterOrEqual(t, summary.min, 0.0)
	assert.LessOrEqual(t, summary.max, 1.0)

	risk, err := raster.ReadASCFile(out)
	require.NoError(t, err)
	assert.Equal(t, 2, risk.Rows)
	assert.Equal(t, 2, risk.Cols)

	vals, ok := risk.Layer("risk")
	require.True(t, ok)
	assert.Equal(t, -9999.0, vals[2], "masked cell carried through to the written surface")

	runs, err := st.ListRuns(ctx, store.RunFilter{Kind: store.RunKindPredict})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, store.RunStatusComplete, runs[0].Status)
}

func TestRunPredict_LayerMismatchRecordedAsFailed(t *testing.T) {
	setTestConfig(t)
	ctx := context.Background()

	st, err := openStore(ctx)
	require.NoError(t, err)
	defer func() { _ = st.Close() }()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "slope.asc"),
		[]byte("ncols 1\nnrows 1\ncellsize 30\n1.5\n"), 0o644))

	out := filepath.Join(t.TempDir(), "risk.asc")
	_, err = runPredict(ctx, st, writeArtifact(t), dir, out, 4326, 1)
	require.Error(t, err)

	runs, err := st.ListRuns(ctx, store.RunFilter{Status: store.RunStatusFailed})
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestRunPredict_MissingArtifact(t *testing.T) {
	setTestConfig(t)
	ctx := context.Background()

	st, err := openStore(ctx)
	require.NoError(t, err)
	defer func() { _ = st.Close() }()

	_, err = runPredict(ctx, st, filepath.Join(t.TempDir(), "nope.json"),
		writeGridDir(t), "risk.asc", 4326, 1)
	assert.Error(t, err)
}

func TestSummarizeRisk(t *testing.T) {
	g := &raster.Grid{Rows: 1, Cols: 4, CellSize: 10, NoData: -9999}
	require.NoError(t, g.AddLayer(raster.RiskLayer, []float64{0.2, -9999, 0.8, 0.5}))

	s := summarizeRisk(g)
	assert.Equal(t, 3, s.predicted)
	assert.Equal(t, 1, s.masked)
	assert.Equal(t, 0.2, s.min)
	assert.Equal(t, 0.8, s.max)
}
