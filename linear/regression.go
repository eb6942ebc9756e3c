package linear

import (
	"gonum.org/v1/gonum/mat"

	"github.com/joshuagi/Stabl/core/model"
	"github.com/joshuagi/Stabl/core/parallel"
	"github.com/joshuagi/Stabl/pkg/errors"
)

// Regression is ordinary least squares, used to refit the reduced model on
// the features a selector kept. Solved via the normal equations
// w = (X^T X)^-1 X^T y.
type Regression struct {
	state *model.StateManager

	coef      []float64
	intercept float64
}

// NewRegression creates an OLS regressor.
func NewRegression() *Regression {
	return &Regression{state: model.NewStateManager()}
}

// Fit solves the normal equations. X is not mutated.
func (r *Regression) Fit(X mat.Matrix, y *mat.VecDense) error {
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return errors.Wrap(errors.ErrEmptyData, "Regression.Fit")
	}
	if y.Len() != n {
		return errors.NewDimensionError("Regression.Fit", n, y.Len(), 0)
	}

	// Prepend a column of ones for the intercept.
	Xi := mat.NewDense(n, p+1, nil)

	const parallelThreshold = 1000
	parallel.ParallelizeWithThreshold(n, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			Xi.Set(i, 0, 1)
			for j := 0; j < p; j++ {
				Xi.Set(i, j+1, X.At(i, j))
			}
		}
	})

	var xt mat.Dense
	xt.CloneFrom(Xi.T())

	var xtx mat.Dense
	xtx.Mul(&xt, Xi)

	var xty mat.VecDense
	xty.MulVec(&xt, y)

	var theta mat.VecDense
	if err := theta.SolveVec(&xtx, &xty); err != nil {
		return errors.Wrap(errors.ErrSingularMatrix, "Regression.Fit")
	}

	r.intercept = theta.AtVec(0)
	r.coef = make([]float64, p)
	for j := 0; j < p; j++ {
		r.coef[j] = theta.AtVec(j + 1)
	}

	r.state.SetDimensions(p, n)
	r.state.SetFitted()
	return nil
}

// Predict returns X*w + b.
func (r *Regression) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if !r.state.IsFitted() {
		return nil, errors.NewNotFittedError("Regression", "Predict")
	}
	n, p := X.Dims()
	if nf, _ := r.state.GetDimensions(); p != nf {
		return nil, errors.NewDimensionError("Regression.Predict", nf, p, 1)
	}

	out := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		v := r.intercept
		for j := 0; j < p; j++ {
			v += X.At(i, j) * r.coef[j]
		}
		out.SetVec(i, v)
	}
	return out, nil
}

// Coef returns the fitted coefficients.
func (r *Regression) Coef() []float64 { return r.coef }

// Intercept returns the fitted intercept.
func (r *Regression) Intercept() float64 { return r.intercept }
