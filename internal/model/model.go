// Package model implements the fit/predict contract shared by the logistic
// and random-forest classifiers. The variant set is closed: callers select a
// variant through Config rather than by registering implementations.
package model

import (
	"math"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/mat"

	"github.com/wasatch-geo/riskmodel/internal/errs"
)

// Variant identifies a classifier implementation.
type Variant string

const (
	VariantLogistic Variant = "logistic"
	VariantForest   Variant = "forest"
)

// Default fitting parameters.
const (
	DefaultMaxIter = 25
	DefaultTol     = 1e-8
	DefaultTrees   = 500
	DefaultMinLeaf = 1
)

// Config selects and parameterizes a model variant.
type Config struct {
	Variant Variant `json:"variant" yaml:"variant"`

	// Logistic options.
	MaxIter int     `json:"max_iter,omitempty" yaml:"max_iter,omitempty"`
	Tol     float64 `json:"tol,omitempty" yaml:"tol,omitempty"`

	// Forest options.
	Trees int `json:"trees,omitempty" yaml:"trees,omitempty"`
	// FeatureRate is the fraction of features considered per split. Zero
	// selects the sqrt(p) heuristic.
	FeatureRate float64 `json:"feature_rate,omitempty" yaml:"feature_rate,omitempty"`
	MinLeaf     int     `json:"min_leaf,omitempty" yaml:"min_leaf,omitempty"`
	Importance  bool    `json:"importance,omitempty" yaml:"importance,omitempty"`
	Seed        int64   `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// Model is a trained classifier. A model owns only the parameters needed to
// predict, plus the ordered feature set it was trained on.
type Model interface {
	// Predict returns one probability in [0,1] per row of x. The column
	// order of x must match Features.
	Predict(x *mat.Dense) ([]float64, error)

	// Features returns the ordered feature set the model was trained on.
	Features() []string

	// Variant identifies the classifier implementation.
	Variant() Variant
}

// Fit trains the configured variant on the feature matrix and binary label
// vector. Rows of x correspond to entries of y; columns of x correspond to
// the features slice.
func Fit(cfg Config, features []string, x *mat.Dense, y []float64) (Model, error) {
	rows, cols := x.Dims()
	if rows != len(y) {
		return nil, eris.Errorf("model: %d feature rows for %d labels", rows, len(y))
	}
	if cols != len(features) {
		return nil, eris.Errorf("model: %d feature columns for %d feature names", cols, len(features))
	}
	if err := checkTrainingData(x, y); err != nil {
		return nil, err
	}

	switch cfg.Variant {
	case VariantLogistic:
		return fitLogistic(cfg, features, x, y)
	case VariantForest:
		return fitForest(cfg, features, x, y)
	default:
		return nil, eris.Errorf("model: unknown variant %q", cfg.Variant)
	}
}

// checkTrainingData rejects non-finite features and single-class labels
// before any variant-specific work runs.
func checkTrainingData(x *mat.Dense, y []float64) error {
	rows, cols := x.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if !finite(x.At(i, j)) {
				return errs.Fitf("non-finite feature value at record %d, column %d", i, j)
			}
		}
	}
	var pos, neg int
	for i, v := range y {
		switch v {
		case 1:
			pos++
		case 0:
			neg++
		default:
			return errs.Fitf("non-binary label %v at record %d", v, i)
		}
	}
	if pos == 0 || neg == 0 {
		return errs.Fitf("labels contain a single class (%d positive, %d negative)", pos, neg)
	}
	return nil
}

// checkPredictInput rejects non-finite values in a prediction matrix.
func checkPredictInput(x *mat.Dense, want int) error {
	rows, cols := x.Dims()
	if cols != want {
		return errs.Schemaf("model: prediction input has %d columns, model expects %d", cols, want)
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if !finite(x.At(i, j)) {
				return errs.Fitf("non-finite prediction input at record %d, column %d", i, j)
			}
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
