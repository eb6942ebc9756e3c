package stabl

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/joshuagi/Stabl/pkg/errors"
)

func binaryOutcome(n int) *mat.VecDense {
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		y.SetVec(i, float64(i%2))
	}
	return y
}

func TestResampleIndicesWithoutReplacement(t *testing.T) {
	y := binaryOutcome(20)
	rng := newRNG(SeedFor(1, 0, 0))

	idx, err := resampleIndices(y, nil, 10, false, 100, rng)
	if err != nil {
		t.Fatal(err)
	}
	if len(idx) != 10 {
		t.Fatalf("got %d indices, want 10", len(idx))
	}
	seen := make(map[int]bool)
	for _, i := range idx {
		if i < 0 || i >= 20 {
			t.Fatalf("index %d out of range", i)
		}
		if seen[i] {
			t.Fatalf("index %d drawn twice without replacement", i)
		}
		seen[i] = true
	}
}

func TestResampleIndicesWithReplacementCanRepeat(t *testing.T) {
	y := binaryOutcome(5)
	rng := newRNG(SeedFor(1, 0, 1))

	idx, err := resampleIndices(y, nil, 50, true, 100, rng)
	if err != nil {
		t.Fatal(err)
	}
	if len(idx) != 50 {
		t.Fatalf("got %d indices, want 50", len(idx))
	}
}

func TestResampleIndicesRejectsOversizedSubsample(t *testing.T) {
	y := binaryOutcome(5)
	_, err := resampleIndices(y, nil, 6, false, 100, newRNG(1))
	if err == nil {
		t.Fatal("expected error for n_subsamples > n without replacement")
	}
	var valErr *errors.ValueError
	if !errors.As(err, &valErr) {
		t.Fatalf("want ValueError, got %v", err)
	}
}

func TestResampleIndicesConstantOutcome(t *testing.T) {
	y := mat.NewVecDense(10, nil) // all zeros
	_, err := resampleIndices(y, nil, 5, false, 10, newRNG(1))
	if err == nil {
		t.Fatal("expected variance failure for constant outcome")
	}
	var varErr *errors.InsufficientVarianceError
	if !errors.As(err, &varErr) {
		t.Fatalf("want InsufficientVarianceError, got %v", err)
	}
	if varErr.Retries != 10 {
		t.Fatalf("got %d retries, want 10", varErr.Retries)
	}
}

func TestResampleIndicesKeepsGroupsTogether(t *testing.T) {
	// Three rows per subject. A resample must hold either every row of a
	// subject or none.
	groups := []string{
		"a", "a", "a",
		"b", "b", "b",
		"c", "c", "c",
		"d", "d", "d",
	}
	y := binaryOutcome(len(groups))

	for trial := 0; trial < 20; trial++ {
		rng := newRNG(SeedFor(9, 0, trial))
		idx, err := resampleIndices(y, groups, 6, false, 100, rng)
		if err != nil {
			t.Fatal(err)
		}

		counts := make(map[string]int)
		for _, i := range idx {
			counts[groups[i]]++
		}
		for g, c := range counts {
			if c != 3 {
				t.Fatalf("trial %d: group %q has %d of its 3 rows in the resample", trial, g, c)
			}
		}
	}
}

func TestHasOutcomeVariance(t *testing.T) {
	y := mat.NewVecDense(4, []float64{1, 1, 1, 2})
	if hasOutcomeVariance(y, []int{0, 1, 2}) {
		t.Fatal("identical draws reported as varied")
	}
	if !hasOutcomeVariance(y, []int{0, 3}) {
		t.Fatal("two distinct values reported as constant")
	}
	if hasOutcomeVariance(y, []int{0}) {
		t.Fatal("single row cannot have variance")
	}
}
