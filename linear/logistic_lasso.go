package linear

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/joshuagi/Stabl/core/model"
	"github.com/joshuagi/Stabl/pkg/errors"
)

// LogisticLasso is an L1-penalized logistic regressor solved by proximal
// gradient descent. Following the liblinear convention it is parameterized by
// C, the inverse penalization strength: larger C means weaker regularization.
// Labels must be 0/1.
type LogisticLasso struct {
	state *model.StateManager

	c            float64
	maxIter      int
	tol          float64
	fitIntercept bool
	balanced     bool

	coef      []float64
	intercept float64
	nIter     int
	converged bool
}

// LogisticLassoOption is a functional option for LogisticLasso.
type LogisticLassoOption func(*LogisticLasso)

// NewLogisticLasso creates an L1 logistic regressor with the given options.
func NewLogisticLasso(opts ...LogisticLassoOption) *LogisticLasso {
	ll := &LogisticLasso{
		state:        model.NewStateManager(),
		c:            1.0,
		maxIter:      5000,
		tol:          1e-6,
		fitIntercept: true,
	}
	for _, opt := range opts {
		opt(ll)
	}
	return ll
}

// WithLogisticLassoC sets the inverse penalization strength.
func WithLogisticLassoC(c float64) LogisticLassoOption {
	return func(ll *LogisticLasso) { ll.c = c }
}

// WithLogisticLassoMaxIter sets the iteration budget.
func WithLogisticLassoMaxIter(maxIter int) LogisticLassoOption {
	return func(ll *LogisticLasso) { ll.maxIter = maxIter }
}

// WithLogisticLassoTol sets the convergence tolerance on parameter updates.
func WithLogisticLassoTol(tol float64) LogisticLassoOption {
	return func(ll *LogisticLasso) { ll.tol = tol }
}

// WithLogisticLassoBalanced reweights samples inversely to class frequency,
// as scikit-learn's class_weight="balanced".
func WithLogisticLassoBalanced(balanced bool) LogisticLassoOption {
	return func(ll *LogisticLasso) { ll.balanced = balanced }
}

// WithPenalty returns a copy of the estimator configured with a new C. The
// receiver is not modified.
func (ll *LogisticLasso) WithPenalty(lambda float64) model.Estimator {
	clone := *ll
	clone.state = model.NewStateManager()
	clone.c = lambda
	clone.coef = nil
	clone.intercept = 0
	clone.nIter = 0
	clone.converged = false
	return &clone
}

// Converged reports whether the last Fit reached the tolerance within the
// iteration budget.
func (ll *LogisticLasso) Converged() bool { return ll.converged }

// Fit estimates the coefficients. X is not mutated.
func (ll *LogisticLasso) Fit(X mat.Matrix, y *mat.VecDense) error {
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return errors.Wrap(errors.ErrEmptyData, "LogisticLasso.Fit")
	}
	if y.Len() != n {
		return errors.NewDimensionError("LogisticLasso.Fit", n, y.Len(), 0)
	}
	if ll.c <= 0 {
		return errors.NewValueError("LogisticLasso.Fit", "C must be positive")
	}

	labels := make([]float64, n)
	var nPos, nNeg int
	for i := 0; i < n; i++ {
		v := y.AtVec(i)
		if v != 0 && v != 1 {
			return errors.NewValueError("LogisticLasso.Fit", "labels must be 0 or 1")
		}
		labels[i] = v
		if v == 1 {
			nPos++
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return errors.NewInsufficientVarianceError("LogisticLasso.Fit", 0, "training set contains a single class")
	}

	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1
	}
	if ll.balanced {
		wPos := float64(n) / (2 * float64(nPos))
		wNeg := float64(n) / (2 * float64(nNeg))
		for i := range weights {
			if labels[i] == 1 {
				weights[i] = wPos
			} else {
				weights[i] = wNeg
			}
		}
	}

	var weightSum float64
	for _, w := range weights {
		weightSum += w
	}

	// Lipschitz bound for the weighted average logistic loss gradient:
	// L <= (1/(4*S)) * sum_i s_i * ||x_i||^2. The trace bound is loose
	// but keeps the step size safe without an eigendecomposition.
	var lip float64
	for i := 0; i < n; i++ {
		var rowNorm float64
		for j := 0; j < p; j++ {
			v := X.At(i, j)
			rowNorm += v * v
		}
		lip += weights[i] * rowNorm
	}
	lip /= 4 * weightSum
	if lip == 0 {
		lip = 1
	}
	step := 1 / lip

	// Penalty on the averaged loss equivalent to liblinear's
	// min ||w||_1 + C * sum_i loss_i.
	alpha := 1 / (ll.c * weightSum)

	w := make([]float64, p)
	var b float64
	gradW := make([]float64, p)

	ll.converged = false
	var iter int
	for iter = 0; iter < ll.maxIter; iter++ {
		for j := range gradW {
			gradW[j] = 0
		}
		var gradB float64
		for i := 0; i < n; i++ {
			var z float64
			for j := 0; j < p; j++ {
				z += X.At(i, j) * w[j]
			}
			z += b
			err := weights[i] * (sigmoid(z) - labels[i])
			for j := 0; j < p; j++ {
				gradW[j] += err * X.At(i, j)
			}
			gradB += err
		}
		scale := 1 / weightSum

		var maxDelta float64
		for j := 0; j < p; j++ {
			next := softThreshold(w[j]-step*scale*gradW[j], step*alpha)
			if d := math.Abs(next - w[j]); d > maxDelta {
				maxDelta = d
			}
			w[j] = next
		}
		if ll.fitIntercept {
			deltaB := step * scale * gradB
			if d := math.Abs(deltaB); d > maxDelta {
				maxDelta = d
			}
			b -= deltaB
		}

		if maxDelta < ll.tol {
			ll.converged = true
			break
		}
	}
	ll.nIter = iter

	if !ll.converged {
		errors.Warn(errors.NewFitConvergenceWarning("LogisticLasso", ll.c, ll.maxIter))
	}

	ll.coef = w
	ll.intercept = b
	ll.state.SetDimensions(p, n)
	ll.state.SetFitted()
	return nil
}

// Predict returns the positive-class probability per sample.
func (ll *LogisticLasso) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if !ll.state.IsFitted() {
		return nil, errors.NewNotFittedError("LogisticLasso", "Predict")
	}
	n, p := X.Dims()
	if nf, _ := ll.state.GetDimensions(); p != nf {
		return nil, errors.NewDimensionError("LogisticLasso.Predict", nf, p, 1)
	}

	out := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		z := ll.intercept
		for j := 0; j < p; j++ {
			z += X.At(i, j) * ll.coef[j]
		}
		out.SetVec(i, sigmoid(z))
	}
	return out, nil
}

// Coef returns the fitted coefficients.
func (ll *LogisticLasso) Coef() []float64 { return ll.coef }

// Intercept returns the fitted intercept.
func (ll *LogisticLasso) Intercept() float64 { return ll.intercept }

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
