package linear

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/joshuagi/Stabl/core/model"
	"github.com/joshuagi/Stabl/pkg/errors"
)

// Lasso is an L1-penalized least squares regressor solved by cyclic
// coordinate descent. It minimizes
//
//	(1/(2n)) * ||y - Xw - b||^2 + alpha * ||w||_1
//
// Alpha is the penalization strength: larger alpha means stronger
// regularization and sparser coefficients.
type Lasso struct {
	state *model.StateManager

	alpha        float64
	maxIter      int
	tol          float64
	fitIntercept bool

	coef      []float64
	intercept float64
	nIter     int
	converged bool
}

// LassoOption is a functional option for Lasso.
type LassoOption func(*Lasso)

// NewLasso creates a Lasso regressor with the given options.
func NewLasso(opts ...LassoOption) *Lasso {
	l := &Lasso{
		state:        model.NewStateManager(),
		alpha:        1.0,
		maxIter:      1000,
		tol:          1e-6,
		fitIntercept: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// WithLassoAlpha sets the penalization strength.
func WithLassoAlpha(alpha float64) LassoOption {
	return func(l *Lasso) { l.alpha = alpha }
}

// WithLassoMaxIter sets the maximum number of coordinate descent sweeps.
func WithLassoMaxIter(maxIter int) LassoOption {
	return func(l *Lasso) { l.maxIter = maxIter }
}

// WithLassoTol sets the convergence tolerance on coefficient updates.
func WithLassoTol(tol float64) LassoOption {
	return func(l *Lasso) { l.tol = tol }
}

// WithLassoFitIntercept controls whether an intercept is estimated.
func WithLassoFitIntercept(fit bool) LassoOption {
	return func(l *Lasso) { l.fitIntercept = fit }
}

// WithPenalty returns a copy of the estimator configured with a new
// penalization strength. The receiver is not modified.
func (l *Lasso) WithPenalty(lambda float64) model.Estimator {
	clone := *l
	clone.state = model.NewStateManager()
	clone.alpha = lambda
	clone.coef = nil
	clone.intercept = 0
	clone.nIter = 0
	clone.converged = false
	return &clone
}

// Converged reports whether the last Fit reached the tolerance within the
// iteration budget.
func (l *Lasso) Converged() bool { return l.converged }

// Fit estimates the coefficients. X is not mutated.
func (l *Lasso) Fit(X mat.Matrix, y *mat.VecDense) error {
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return errors.Wrap(errors.ErrEmptyData, "Lasso.Fit")
	}
	if y.Len() != n {
		return errors.NewDimensionError("Lasso.Fit", n, y.Len(), 0)
	}
	if l.alpha < 0 {
		return errors.NewValueError("Lasso.Fit", "alpha must be non-negative")
	}

	// Work on centered copies so the intercept drops out of the
	// coordinate updates and the caller's matrix stays untouched.
	cols := make([][]float64, p)
	colMeans := make([]float64, p)
	for j := 0; j < p; j++ {
		col := make([]float64, n)
		var sum float64
		for i := 0; i < n; i++ {
			col[i] = X.At(i, j)
			sum += col[i]
		}
		if l.fitIntercept {
			mean := sum / float64(n)
			colMeans[j] = mean
			for i := range col {
				col[i] -= mean
			}
		}
		cols[j] = col
	}

	yc := make([]float64, n)
	var yMean float64
	for i := 0; i < n; i++ {
		yc[i] = y.AtVec(i)
		yMean += yc[i]
	}
	yMean /= float64(n)
	if l.fitIntercept {
		for i := range yc {
			yc[i] -= yMean
		}
	}

	// Per-column second moments; constant columns stay at zero weight.
	norms := make([]float64, p)
	for j := 0; j < p; j++ {
		var s float64
		for _, v := range cols[j] {
			s += v * v
		}
		norms[j] = s / float64(n)
	}

	w := make([]float64, p)
	residual := make([]float64, n)
	copy(residual, yc)

	l.converged = false
	var iter int
	for iter = 0; iter < l.maxIter; iter++ {
		var maxDelta float64
		for j := 0; j < p; j++ {
			if norms[j] == 0 {
				continue
			}
			col := cols[j]

			// rho = (1/n) x_j . r + z_j w_j is the partial
			// residual correlation with the j-th predictor.
			var dot float64
			for i := 0; i < n; i++ {
				dot += col[i] * residual[i]
			}
			rho := dot/float64(n) + norms[j]*w[j]

			next := softThreshold(rho, l.alpha) / norms[j]
			if delta := next - w[j]; delta != 0 {
				for i := 0; i < n; i++ {
					residual[i] -= col[i] * delta
				}
				if ad := math.Abs(delta); ad > maxDelta {
					maxDelta = ad
				}
				w[j] = next
			}
		}
		if maxDelta < l.tol {
			l.converged = true
			break
		}
	}
	l.nIter = iter

	if !l.converged {
		errors.Warn(errors.NewFitConvergenceWarning("Lasso", l.alpha, l.maxIter))
	}

	l.coef = w
	l.intercept = 0
	if l.fitIntercept {
		l.intercept = yMean
		for j := 0; j < p; j++ {
			l.intercept -= colMeans[j] * w[j]
		}
	}

	l.state.SetDimensions(p, n)
	l.state.SetFitted()
	return nil
}

// Predict returns X*w + b.
func (l *Lasso) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if !l.state.IsFitted() {
		return nil, errors.NewNotFittedError("Lasso", "Predict")
	}
	n, p := X.Dims()
	if nf, _ := l.state.GetDimensions(); p != nf {
		return nil, errors.NewDimensionError("Lasso.Predict", nf, p, 1)
	}

	out := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		v := l.intercept
		for j := 0; j < p; j++ {
			v += X.At(i, j) * l.coef[j]
		}
		out.SetVec(i, v)
	}
	return out, nil
}

// Coef returns the fitted coefficients.
func (l *Lasso) Coef() []float64 { return l.coef }

// Intercept returns the fitted intercept.
func (l *Lasso) Intercept() float64 { return l.intercept }

func softThreshold(x, gamma float64) float64 {
	switch {
	case x > gamma:
		return x - gamma
	case x < -gamma:
		return x + gamma
	default:
		return 0
	}
}
