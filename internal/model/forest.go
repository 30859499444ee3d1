package model

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Forest is a random-forest classifier: an ensemble of CART trees grown on
// bootstrap samples, each split drawn from a random feature subset.
// Fitting is deterministic for a fixed seed.
type Forest struct {
	features   []string
	trees      []cartTree
	seed       int64
	importance []float64 // normalized gini importance per feature, nil if untracked
}

func fitForest(cfg Config, features []string, x *mat.Dense, y []float64) (*Forest, error) {
	trees := cfg.Trees
	if trees <= 0 {
		trees = DefaultTrees
	}
	minLeaf := cfg.MinLeaf
	if minLeaf <= 0 {
		minLeaf = DefaultMinLeaf
	}

	n, p := x.Dims()
	mtry := int(cfg.FeatureRate * float64(p))
	if cfg.FeatureRate <= 0 {
		mtry = int(math.Sqrt(float64(p)))
	}
	if mtry < 1 {
		mtry = 1
	}
	if mtry > p {
		mtry = p
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	grower := &treeGrower{x: x, y: y, mtry: mtry, minLeaf: minLeaf, rng: rng}
	if cfg.Importance {
		grower.importance = make([]float64, p)
	}

	f := &Forest{
		features: append([]string(nil), features...),
		trees:    make([]cartTree, 0, trees),
		seed:     cfg.Seed,
	}

	idx := make([]int, n)
	for t := 0; t < trees; t++ {
		for i := range idx {
			idx[i] = rng.Intn(n)
		}
		f.trees = append(f.trees, grower.grow(idx))
	}

	if grower.importance != nil {
		var total float64
		for _, v := range grower.importance {
			total += v
		}
		f.importance = make([]float64, p)
		if total > 0 {
			for j, v := range grower.importance {
				f.importance[j] = v / total
			}
		}
	}

	return f, nil
}

// Predict returns the ensemble-averaged positive-class probability for each
// row of x.
func (f *Forest) Predict(x *mat.Dense) ([]float64, error) {
	if err := checkPredictInput(x, len(f.features)); err != nil {
		return nil, err
	}
	n, _ := x.Dims()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for t := range f.trees {
			sum += f.trees[t].predict(x, i)
		}
		out[i] = sum / float64(len(f.trees))
	}
	return out, nil
}

// Features returns the ordered feature set the model was trained on.
func (f *Forest) Features() []string { return append([]string(nil), f.features...) }

// Variant identifies the classifier implementation.
func (f *Forest) Variant() Variant { return VariantForest }

// Importance returns the normalized gini importance per feature, or nil if
// importance tracking was disabled at fit time.
func (f *Forest) Importance() map[string]float64 {
	if f.importance == nil {
		return nil
	}
	out := make(map[string]float64, len(f.features))
	for j, name := range f.features {
		out[name] = f.importance[j]
	}
	return out
}
