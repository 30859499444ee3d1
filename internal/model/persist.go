package model

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
)

// artifact is the on-disk form of a trained model.
type artifact struct {
	Variant  Variant       `json:"variant"`
	Features []string      `json:"features"`
	Logistic *logisticJSON `json:"logistic,omitempty"`
	Forest   *forestJSON   `json:"forest,omitempty"`
}

type logisticJSON struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
	Converged    bool      `json:"converged"`
	Iterations   int       `json:"iterations"`
}

type forestJSON struct {
	Seed       int64      `json:"seed"`
	Trees      []cartTree `json:"trees"`
	Importance []float64  `json:"importance,omitempty"`
}

// Encode writes a trained model as a JSON artifact.
func Encode(w io.Writer, m Model) error {
	a := artifact{Variant: m.Variant(), Features: m.Features()}
	switch v := m.(type) {
	case *Logistic:
		a.Logistic = &logisticJSON{
			Intercept:    v.intercept,
			Coefficients: v.coefs,
			Converged:    v.converged,
			Iterations:   v.iters,
		}
	case *Forest:
		a.Forest = &forestJSON{Seed: v.seed, Trees: v.trees, Importance: v.importance}
	default:
		return eris.Errorf("model: cannot encode variant %q", m.Variant())
	}

	enc := json.NewEncoder(w)
	if err := enc.Encode(&a); err != nil {
		return eris.Wrap(err, "model: encode artifact")
	}
	return nil
}

// Decode reads a JSON model artifact.
func Decode(r io.Reader) (Model, error) {
	var a artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, eris.Wrap(err, "model: decode artifact")
	}

	switch a.Variant {
	case VariantLogistic:
		if a.Logistic == nil {
			return nil, eris.New("model: logistic artifact missing parameters")
		}
		if len(a.Logistic.Coefficients) != len(a.Features) {
			return nil, eris.Errorf("model: %d coefficients for %d features",
				len(a.Logistic.Coefficients), len(a.Features))
		}
		return &Logistic{
			features:  a.Features,
			intercept: a.Logistic.Intercept,
			coefs:     a.Logistic.Coefficients,
			converged: a.Logistic.Converged,
			iters:     a.Logistic.Iterations,
		}, nil
	case VariantForest:
		if a.Forest == nil || len(a.Forest.Trees) == 0 {
			return nil, eris.New("model: forest artifact missing trees")
		}
		return &Forest{
			features:   a.Features,
			trees:      a.Forest.Trees,
			seed:       a.Forest.Seed,
			importance: a.Forest.Importance,
		}, nil
	default:
		return nil, eris.Errorf("model: unknown artifact variant %q", a.Variant)
	}
}

// Save writes a trained model artifact to disk.
func Save(path string, m Model) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "model: create %s", path)
	}
	defer func() { _ = f.Close() }()
	return Encode(f, m)
}

// Load reads a trained model artifact from disk.
func Load(path string) (Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "model: open %s", path)
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}
