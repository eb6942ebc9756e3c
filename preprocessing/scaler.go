// Package preprocessing implements the train-fold pipeline applied before
// selection: variance filtering, median imputation and standardization.
// Every transformer is fitted on the training partition only and then applied
// to the held-out partition.
package preprocessing

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/joshuagi/Stabl/core/model"
	"github.com/joshuagi/Stabl/pkg/errors"
)

// StandardScaler standardizes features to zero mean and unit variance.
type StandardScaler struct {
	state *model.StateManager

	mean  []float64
	scale []float64
}

// NewStandardScaler creates a StandardScaler.
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{state: model.NewStateManager()}
}

// Fit computes per-feature means and standard deviations.
func (s *StandardScaler) Fit(X mat.Matrix) error {
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return errors.Wrap(errors.ErrEmptyData, "StandardScaler.Fit")
	}

	s.mean = make([]float64, p)
	s.scale = make([]float64, p)

	for j := 0; j < p; j++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += X.At(i, j)
		}
		mean := sum / float64(n)
		s.mean[j] = mean

		var ss float64
		for i := 0; i < n; i++ {
			d := X.At(i, j) - mean
			ss += d * d
		}
		sd := math.Sqrt(ss / float64(n))
		if sd == 0 {
			// Constant feature: leave values centered, not divided.
			sd = 1
		}
		s.scale[j] = sd
	}

	s.state.SetDimensions(p, n)
	s.state.SetFitted()
	return nil
}

// Transform standardizes X with the fitted statistics.
func (s *StandardScaler) Transform(X mat.Matrix) (*mat.Dense, error) {
	if !s.state.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "Transform")
	}
	n, p := X.Dims()
	if nf, _ := s.state.GetDimensions(); p != nf {
		return nil, errors.NewDimensionError("StandardScaler.Transform", nf, p, 1)
	}

	out := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			out.Set(i, j, (X.At(i, j)-s.mean[j])/s.scale[j])
		}
	}
	return out, nil
}

// FitTransform fits the scaler and transforms X in one step.
func (s *StandardScaler) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// Mean returns the fitted per-feature means.
func (s *StandardScaler) Mean() []float64 { return s.mean }

// Scale returns the fitted per-feature standard deviations.
func (s *StandardScaler) Scale() []float64 { return s.scale }
