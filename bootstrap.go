package stabl

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/joshuagi/Stabl/pkg/errors"
)

// resampleIndices draws one bootstrap (replace=true) or subsample
// (replace=false) of row indices. When groups is non-nil the sampling unit is
// the group: a drawn group contributes all its rows, so repeated measurements
// of one subject never straddle a resample boundary.
//
// Draws whose outcome values are all identical are rejected and redrawn up to
// maxRetries times, after which an InsufficientVarianceError is returned.
func resampleIndices(y *mat.VecDense, groups []string, nSubsamples int, replace bool, maxRetries int, rng *rand.Rand) ([]int, error) {
	n := y.Len()
	if nSubsamples <= 0 {
		return nil, errors.NewValueError("resampleIndices", "n_subsamples must be positive")
	}
	if !replace && nSubsamples > n {
		return nil, errors.NewValueError("resampleIndices",
			fmt.Sprintf("without replacement n_subsamples (%d) cannot exceed n_samples (%d)", nSubsamples, n))
	}
	if groups != nil && len(groups) != n {
		return nil, errors.NewDimensionError("resampleIndices", n, len(groups), 0)
	}

	for attempt := 0; attempt <= maxRetries; attempt++ {
		var idx []int
		if groups == nil {
			idx = drawRows(n, nSubsamples, replace, rng)
		} else {
			idx = drawGroups(groups, nSubsamples, replace, rng)
		}
		if hasOutcomeVariance(y, idx) {
			return idx, nil
		}
	}

	return nil, errors.NewInsufficientVarianceError("resampleIndices", maxRetries,
		"every draw contained a single outcome value")
}

func drawRows(n, nSubsamples int, replace bool, rng *rand.Rand) []int {
	if replace {
		idx := make([]int, nSubsamples)
		for i := range idx {
			idx[i] = rng.IntN(n)
		}
		return idx
	}
	perm := rng.Perm(n)
	return perm[:nSubsamples]
}

// drawGroups samples whole groups until at least nSubsamples rows are
// accumulated.
func drawGroups(groups []string, nSubsamples int, replace bool, rng *rand.Rand) []int {
	order := make([]string, 0)
	rows := make(map[string][]int)
	for i, g := range groups {
		if _, seen := rows[g]; !seen {
			order = append(order, g)
		}
		rows[g] = append(rows[g], i)
	}

	var idx []int
	if replace {
		for len(idx) < nSubsamples {
			g := order[rng.IntN(len(order))]
			idx = append(idx, rows[g]...)
		}
		return idx
	}

	perm := rng.Perm(len(order))
	for _, gi := range perm {
		if len(idx) >= nSubsamples {
			break
		}
		idx = append(idx, rows[order[gi]]...)
	}
	return idx
}

// hasOutcomeVariance reports whether the drawn outcomes contain at least two
// distinct values. This covers both the two-class requirement for
// classification and degenerate variance for regression.
func hasOutcomeVariance(y *mat.VecDense, idx []int) bool {
	if len(idx) < 2 {
		return false
	}
	first := y.AtVec(idx[0])
	for _, i := range idx[1:] {
		if y.AtVec(i) != first {
			return true
		}
	}
	return false
}
