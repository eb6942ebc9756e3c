package cv

import "gonum.org/v1/gonum/mat"

// Jaccard returns |a ∩ b| / |a ∪ b| for two feature sets. Two empty sets
// count as fully overlapping.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	seen := make(map[string]bool, len(a))
	for _, f := range a {
		seen[f] = true
	}
	inter := 0
	union := len(seen)
	for _, f := range b {
		if seen[f] {
			inter++
		} else {
			union++
		}
	}
	return float64(inter) / float64(union)
}

// JaccardMatrix computes the pairwise selection overlap between folds. A
// matrix hugging 1 means the selection is stable across resampled cohorts; a
// matrix near 0 means each fold picked its own story.
func JaccardMatrix(selections [][]string) *mat.Dense {
	k := len(selections)
	out := mat.NewDense(k, k, nil)
	for i := 0; i < k; i++ {
		out.Set(i, i, 1)
		for j := i + 1; j < k; j++ {
			v := Jaccard(selections[i], selections[j])
			out.Set(i, j, v)
			out.Set(j, i, v)
		}
	}
	return out
}

// MeanJaccard averages the off-diagonal entries of the overlap matrix, a
// single stability figure per model.
func MeanJaccard(m *mat.Dense) float64 {
	k, _ := m.Dims()
	if k < 2 {
		return 1
	}
	sum := 0.0
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			if i != j {
				sum += m.At(i, j)
			}
		}
	}
	return sum / float64(k*(k-1))
}
