package preprocessing

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/joshuagi/Stabl/core/model"
	"github.com/joshuagi/Stabl/pkg/errors"
)

// VarianceThreshold drops features whose training variance does not exceed
// the threshold. With the default threshold of zero it removes constant
// columns, which would otherwise be unselectable noise for the penalized
// fits.
type VarianceThreshold struct {
	state *model.StateManager

	Threshold float64

	kept []int
}

// NewVarianceThreshold creates a VarianceThreshold filter.
func NewVarianceThreshold(threshold float64) *VarianceThreshold {
	return &VarianceThreshold{state: model.NewStateManager(), Threshold: threshold}
}

// Fit determines which features survive the variance cut.
func (v *VarianceThreshold) Fit(X mat.Matrix) error {
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return errors.Wrap(errors.ErrEmptyData, "VarianceThreshold.Fit")
	}

	v.kept = v.kept[:0]
	for j := 0; j < p; j++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += X.At(i, j)
		}
		mean := sum / float64(n)
		var ss float64
		for i := 0; i < n; i++ {
			d := X.At(i, j) - mean
			ss += d * d
		}
		if ss/float64(n) > v.Threshold {
			v.kept = append(v.kept, j)
		}
	}

	v.state.SetDimensions(p, n)
	v.state.SetFitted()
	return nil
}

// Transform returns X restricted to the surviving features.
func (v *VarianceThreshold) Transform(X mat.Matrix) (*mat.Dense, error) {
	if !v.state.IsFitted() {
		return nil, errors.NewNotFittedError("VarianceThreshold", "Transform")
	}
	n, p := X.Dims()
	if nf, _ := v.state.GetDimensions(); p != nf {
		return nil, errors.NewDimensionError("VarianceThreshold.Transform", nf, p, 1)
	}
	if len(v.kept) == 0 {
		return nil, errors.NewValueError("VarianceThreshold.Transform", "no feature survived the variance cut")
	}

	out := mat.NewDense(n, len(v.kept), nil)
	for i := 0; i < n; i++ {
		for jj, j := range v.kept {
			out.Set(i, jj, X.At(i, j))
		}
	}
	return out, nil
}

// SupportIndices returns the indices of the surviving features.
func (v *VarianceThreshold) SupportIndices() []int { return v.kept }

// FilterNames maps feature names through the fitted support.
func (v *VarianceThreshold) FilterNames(names []string) []string {
	out := make([]string, 0, len(v.kept))
	for _, j := range v.kept {
		out = append(out, names[j])
	}
	return out
}

// MedianImputer replaces NaN entries with the per-feature training median.
type MedianImputer struct {
	state *model.StateManager

	medians []float64
}

// NewMedianImputer creates a MedianImputer.
func NewMedianImputer() *MedianImputer {
	return &MedianImputer{state: model.NewStateManager()}
}

// Fit computes per-feature medians over the non-missing entries.
func (m *MedianImputer) Fit(X mat.Matrix) error {
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return errors.Wrap(errors.ErrEmptyData, "MedianImputer.Fit")
	}

	m.medians = make([]float64, p)
	buf := make([]float64, 0, n)
	for j := 0; j < p; j++ {
		buf = buf[:0]
		for i := 0; i < n; i++ {
			if v := X.At(i, j); !math.IsNaN(v) {
				buf = append(buf, v)
			}
		}
		if len(buf) == 0 {
			m.medians[j] = 0
			continue
		}
		sort.Float64s(buf)
		mid := len(buf) / 2
		if len(buf)%2 == 0 {
			m.medians[j] = (buf[mid-1] + buf[mid]) / 2
		} else {
			m.medians[j] = buf[mid]
		}
	}

	m.state.SetDimensions(p, n)
	m.state.SetFitted()
	return nil
}

// Transform replaces NaN entries with the fitted medians.
func (m *MedianImputer) Transform(X mat.Matrix) (*mat.Dense, error) {
	if !m.state.IsFitted() {
		return nil, errors.NewNotFittedError("MedianImputer", "Transform")
	}
	n, p := X.Dims()
	if nf, _ := m.state.GetDimensions(); p != nf {
		return nil, errors.NewDimensionError("MedianImputer.Transform", nf, p, 1)
	}

	out := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			v := X.At(i, j)
			if math.IsNaN(v) {
				v = m.medians[j]
			}
			out.Set(i, j, v)
		}
	}
	return out, nil
}
