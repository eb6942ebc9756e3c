package stabl

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// artificialPrefix is the reserved name namespace of decoy features. Real
// feature names are rejected at Fit time if they collide with it, so decoys
// can never leak into a selected feature set by name.
const artificialPrefix = "artificial_"

// makeArtificialFeatures builds nNoise decoy columns by copying nNoise
// distinct real columns and independently permuting each. The returned
// matrix has shape n x nNoise; the input is not mutated.
func makeArtificialFeatures(X mat.Matrix, nNoise int, rng *rand.Rand) *mat.Dense {
	n, p := X.Dims()

	chosen := rng.Perm(p)[:nNoise]
	out := mat.NewDense(n, nNoise, nil)
	col := make([]float64, n)
	for k, j := range chosen {
		for i := 0; i < n; i++ {
			col[i] = X.At(i, j)
		}
		rng.Shuffle(n, func(a, b int) {
			col[a], col[b] = col[b], col[a]
		})
		for i := 0; i < n; i++ {
			out.Set(i, k, col[i])
		}
	}
	return out
}

// artificialNames returns the decoy feature names artificial_1..artificial_n.
func artificialNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("%s%d", artificialPrefix, i+1)
	}
	return names
}

// concatColumns returns [A | B].
func concatColumns(a, b mat.Matrix) *mat.Dense {
	n, pa := a.Dims()
	nb, pb := b.Dims()
	if n != nb {
		panic("concatColumns: row mismatch")
	}
	out := mat.NewDense(n, pa+pb, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < pa; j++ {
			out.Set(i, j, a.At(i, j))
		}
		for j := 0; j < pb; j++ {
			out.Set(i, pa+j, b.At(i, j))
		}
	}
	return out
}
