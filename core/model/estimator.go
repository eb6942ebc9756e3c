// Package model defines the estimator interfaces shared across the library.
package model

import "gonum.org/v1/gonum/mat"

// Fitter is the interface of trainable models.
type Fitter interface {
	// Fit trains the model. y must be a column vector aligned with X.
	Fit(X mat.Matrix, y *mat.VecDense) error
}

// Predictor is the interface of models that predict a scalar per sample.
type Predictor interface {
	// Predict returns one value per row of X. For classifiers this is the
	// positive-class probability.
	Predict(X mat.Matrix) (*mat.VecDense, error)
}

// LinearModel exposes the fitted parameters of a linear estimator. Coef
// returns one weight per training feature; the slice must not be mutated.
type LinearModel interface {
	Coef() []float64
	Intercept() float64
}

// Estimator is the capability set the selection core requires from a base
// model: it can be fitted and its per-feature weights inspected.
type Estimator interface {
	Fitter
	Predictor
	LinearModel
}
