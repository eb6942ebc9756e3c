package linear

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/joshuagi/Stabl/core/model"
	"github.com/joshuagi/Stabl/pkg/errors"
)

// Logistic is an unpenalized binary logistic regressor trained by gradient
// descent, used to refit the reduced model on the features a selector kept.
// Labels must be 0/1; Predict returns the positive-class probability.
type Logistic struct {
	state *model.StateManager

	maxIter      int
	tol          float64
	learningRate float64
	balanced     bool

	coef      []float64
	intercept float64
	converged bool
}

// LogisticOption is a functional option for Logistic.
type LogisticOption func(*Logistic)

// NewLogistic creates a logistic regressor with the given options.
func NewLogistic(opts ...LogisticOption) *Logistic {
	lg := &Logistic{
		state:        model.NewStateManager(),
		maxIter:      2000,
		tol:          1e-6,
		learningRate: 0.5,
	}
	for _, opt := range opts {
		opt(lg)
	}
	return lg
}

// WithLogisticMaxIter sets the iteration budget.
func WithLogisticMaxIter(maxIter int) LogisticOption {
	return func(lg *Logistic) { lg.maxIter = maxIter }
}

// WithLogisticTol sets the convergence tolerance on parameter updates.
func WithLogisticTol(tol float64) LogisticOption {
	return func(lg *Logistic) { lg.tol = tol }
}

// WithLogisticBalanced reweights samples inversely to class frequency.
func WithLogisticBalanced(balanced bool) LogisticOption {
	return func(lg *Logistic) { lg.balanced = balanced }
}

// Converged reports whether the last Fit reached the tolerance within the
// iteration budget.
func (lg *Logistic) Converged() bool { return lg.converged }

// Fit trains the model. X is not mutated.
func (lg *Logistic) Fit(X mat.Matrix, y *mat.VecDense) error {
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return errors.Wrap(errors.ErrEmptyData, "Logistic.Fit")
	}
	if y.Len() != n {
		return errors.NewDimensionError("Logistic.Fit", n, y.Len(), 0)
	}

	labels := make([]float64, n)
	var nPos, nNeg int
	for i := 0; i < n; i++ {
		v := y.AtVec(i)
		if v != 0 && v != 1 {
			return errors.NewValueError("Logistic.Fit", "labels must be 0 or 1")
		}
		labels[i] = v
		if v == 1 {
			nPos++
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return errors.NewInsufficientVarianceError("Logistic.Fit", 0, "training set contains a single class")
	}

	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1
	}
	if lg.balanced {
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

	w := make([]float64, p)
	var b float64
	grad := make([]float64, p)

	lg.converged = false
	for iter := 0; iter < lg.maxIter; iter++ {
		for j := range grad {
			grad[j] = 0
		}
		var gradB float64
		for i := 0; i < n; i++ {
			z := b
			for j := 0; j < p; j++ {
				z += X.At(i, j) * w[j]
			}
			e := weights[i] * (sigmoid(z) - labels[i])
			for j := 0; j < p; j++ {
				grad[j] += e * X.At(i, j)
			}
			gradB += e
		}

		var maxDelta float64
		scale := lg.learningRate / weightSum
		for j := 0; j < p; j++ {
			delta := scale * grad[j]
			if d := math.Abs(delta); d > maxDelta {
				maxDelta = d
			}
			w[j] -= delta
		}
		deltaB := scale * gradB
		if d := math.Abs(deltaB); d > maxDelta {
			maxDelta = d
		}
		b -= deltaB

		if maxDelta < lg.tol {
			lg.converged = true
			break
		}
	}

	if !lg.converged {
		errors.Warn(errors.NewFitConvergenceWarning("Logistic", 0, lg.maxIter))
	}

	lg.coef = w
	lg.intercept = b
	lg.state.SetDimensions(p, n)
	lg.state.SetFitted()
	return nil
}

// Predict returns the positive-class probability per sample.
func (lg *Logistic) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if !lg.state.IsFitted() {
		return nil, errors.NewNotFittedError("Logistic", "Predict")
	}
	n, p := X.Dims()
	if nf, _ := lg.state.GetDimensions(); p != nf {
		return nil, errors.NewDimensionError("Logistic.Predict", nf, p, 1)
	}

	out := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		z := lg.intercept
		for j := 0; j < p; j++ {
			z += X.At(i, j) * lg.coef[j]
		}
		out.SetVec(i, sigmoid(z))
	}
	return out, nil
}

// Coef returns the fitted coefficients.
func (lg *Logistic) Coef() []float64 { return lg.coef }

// Intercept returns the fitted intercept.
func (lg *Logistic) Intercept() float64 { return lg.intercept }
