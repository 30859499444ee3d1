package model

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/wasatch-geo/riskmodel/internal/errs"
)

// minWeight floors the IRLS working weights so the normal equations stay
// well conditioned when fitted probabilities saturate.
const minWeight = 1e-10

// Logistic is a binary logistic-regression classifier fitted by iteratively
// reweighted least squares.
type Logistic struct {
	features  []string
	intercept float64
	coefs     []float64
	iters     int
	converged bool
}

func fitLogistic(cfg Config, features []string, x *mat.Dense, y []float64) (*Logistic, error) {
	maxIter := cfg.MaxIter
	if maxIter <= 0 {
		maxIter = DefaultMaxIter
	}
	tol := cfg.Tol
	if tol <= 0 {
		tol = DefaultTol
	}

	n, p := x.Dims()

	// Design matrix with a leading intercept column.
	xd := mat.NewDense(n, p+1, nil)
	for i := 0; i < n; i++ {
		xd.Set(i, 0, 1)
		for j := 0; j < p; j++ {
			xd.Set(i, j+1, x.At(i, j))
		}
	}

	beta := make([]float64, p+1)
	eta := make([]float64, n)
	w := make([]float64, n)
	wz := make([]float64, n)

	var iters int
	var converged bool
	for iters = 1; iters <= maxIter; iters++ {
		// Working response z = eta + (y - mu)/w and weights w = mu(1-mu).
		for i := 0; i < n; i++ {
			e := beta[0]
			for j := 0; j < p; j++ {
				e += beta[j+1] * x.At(i, j)
			}
			eta[i] = e
			mu := sigmoid(e)
			wi := mu * (1 - mu)
			if wi < minWeight {
				wi = minWeight
			}
			w[i] = wi
			wz[i] = wi*e + (y[i] - mu)
		}

		// Solve (Xd' W Xd) b = Xd' W z.
		wx := mat.NewDense(n, p+1, nil)
		for i := 0; i < n; i++ {
			for j := 0; j <= p; j++ {
				wx.Set(i, j, w[i]*xd.At(i, j))
			}
		}
		var a mat.Dense
		a.Mul(xd.T(), wx)
		var b mat.VecDense
		b.MulVec(xd.T(), mat.NewVecDense(n, wz))

		var next mat.VecDense
		if err := next.SolveVec(&a, &b); err != nil {
			return nil, errs.Fitf("logistic: singular system at iteration %d (collinear features?)", iters)
		}

		var delta float64
		for j := 0; j <= p; j++ {
			d := math.Abs(next.AtVec(j) - beta[j])
			if d > delta {
				delta = d
			}
			beta[j] = next.AtVec(j)
		}
		if delta < tol {
			converged = true
			break
		}
	}

	return &Logistic{
		features:  append([]string(nil), features...),
		intercept: beta[0],
		coefs:     append([]float64(nil), beta[1:]...),
		iters:     iters,
		converged: converged,
	}, nil
}

// Predict returns the fitted probability for each row of x.
func (l *Logistic) Predict(x *mat.Dense) ([]float64, error) {
	if err := checkPredictInput(x, len(l.coefs)); err != nil {
		return nil, err
	}
	n, _ := x.Dims()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		s := l.intercept
		for j, c := range l.coefs {
			s += c * x.At(i, j)
		}
		out[i] = sigmoid(s)
	}
	return out, nil
}

// Features returns the ordered feature set the model was trained on.
func (l *Logistic) Features() []string { return append([]string(nil), l.features...) }

// Variant identifies the classifier implementation.
func (l *Logistic) Variant() Variant { return VariantLogistic }

// Intercept returns the fitted intercept term.
func (l *Logistic) Intercept() float64 { return l.intercept }

// Coefficients returns the fitted coefficients in feature order.
func (l *Logistic) Coefficients() []float64 { return append([]float64(nil), l.coefs...) }

// Converged reports whether the fit reached the convergence tolerance.
func (l *Logistic) Converged() bool { return l.converged }

func sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}
