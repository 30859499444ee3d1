package resample

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasatch-geo/riskmodel/internal/dataset"
	"github.com/wasatch-geo/riskmodel/internal/errs"
	"github.com/wasatch-geo/riskmodel/internal/model"
	"github.com/wasatch-geo/riskmodel/internal/score"
)

// cvSample builds a balanced 10-record sample where slope separates the
// classes.
func cvSample(t *testing.T) *dataset.Sample {
	t.Helper()
	tb := dataset.NewTable()
	require.NoError(t, tb.AddColumn("x", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}))
	require.NoError(t, tb.AddColumn("y", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}))
	require.NoError(t, tb.AddColumn("label", []float64{0, 0, 0, 0, 0, 1, 1, 1, 1, 1}))
	require.NoError(t, tb.AddColumn("slope", []float64{1.1, 2.3, 1.8, 3.0, 2.5, 8.2, 9.5, 7.7, 8.9, 9.1}))
	require.NoError(t, tb.AddColumn("elev", []float64{100, 140, 120, 160, 130, 150, 110, 170, 125, 135}))

	s, err := dataset.NewSample(tb, dataset.Binding{XCol: "x", YCol: "y", LabelCol: "label"})
	require.NoError(t, err)
	return s
}

func TestCrossValidate_Stratified(t *testing.T) {
	s := cvSample(t)

	report, err := CrossValidate(context.Background(), s, []string{"slope", "elev"},
		model.Config{Variant: model.VariantLogistic}, nil,
		Options{Folds: 5, Stratify: true, Seed: 42})
	require.NoError(t, err)

	require.Len(t, report.Folds, 5)
	for fold, fs := range report.Folds {
		assert.Equal(t, fold, fs.Fold)
		assert.Equal(t, 2, fs.Size, "balanced stratified folds hold 2 records each")
		assert.Contains(t, fs.Metrics, "auroc")
		assert.Contains(t, fs.Metrics, "accuracy")
	}

	assert.GreaterOrEqual(t, report.Mean["auroc"], 0.0)
	assert.LessOrEqual(t, report.Mean["auroc"], 1.0)
	assert.Greater(t, report.Mean["accuracy"], 0.5, "separable data scores above chance")
}

func TestCrossValidate_Reproducible(t *testing.T) {
	s := cvSample(t)
	opts := Options{Folds: 5, Stratify: true, Seed: 7}
	cfg := model.Config{Variant: model.VariantForest, Trees: 10, Seed: 3}

	r1, err := CrossValidate(context.Background(), s, []string{"slope", "elev"}, cfg, nil, opts)
	require.NoError(t, err)
	r2, err := CrossValidate(context.Background(), s, []string{"slope", "elev"}, cfg, nil, opts)
	require.NoError(t, err)

	assert.Equal(t, r1.Mean, r2.Mean)
	assert.Equal(t, r1.Folds, r2.Folds)
}

func TestCrossValidate_SingleClassTrainingSubset(t *testing.T) {
	// With one positive among four records and leave-one-out folds, the fold
	// holding out the positive trains on a single class.
	tb := dataset.NewTable()
	require.NoError(t, tb.AddColumn("x", []float64{1, 2, 3, 4}))
	require.NoError(t, tb.AddColumn("y", []float64{1, 2, 3, 4}))
	require.NoError(t, tb.AddColumn("label", []float64{1, 0, 0, 0}))
	require.NoError(t, tb.AddColumn("slope", []float64{5, 1, 2, 3}))
	s, err := dataset.NewSample(tb, dataset.Binding{XCol: "x", YCol: "y", LabelCol: "label"})
	require.NoError(t, err)

	_, err = CrossValidate(context.Background(), s, []string{"slope"},
		model.Config{Variant: model.VariantLogistic},
		[]score.Metric{score.Accuracy{}},
		Options{Folds: 4, Seed: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrResampling))
}

func TestCrossValidate_BadFoldCount(t *testing.T) {
	s := cvSample(t)
	_, err := CrossValidate(context.Background(), s, []string{"slope"},
		model.Config{Variant: model.VariantLogistic}, nil,
		Options{Folds: 11, Seed: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrResampling))
}

func TestCrossValidate_WorkerLimit(t *testing.T) {
	s := cvSample(t)
	report, err := CrossValidate(context.Background(), s, []string{"slope", "elev"},
		model.Config{Variant: model.VariantLogistic}, nil,
		Options{Folds: 5, Stratify: true, Seed: 42, Workers: 1})
	require.NoError(t, err)
	assert.Len(t, report.Folds, 5)
}

func TestCrossValidate_CanceledContext(t *testing.T) {
	s := cvSample(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := CrossValidate(ctx, s, []string{"slope"},
		model.Config{Variant: model.VariantLogistic}, nil,
		Options{Folds: 5, Stratify: true, Seed: 42, Workers: 1})
	assert.Error(t, err)
}
