package preprocessing

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestVarianceThresholdDropsConstantColumn(t *testing.T) {
	X := mat.NewDense(3, 3, []float64{
		1, 7, 2,
		2, 7, 4,
		3, 7, 6,
	})

	vt := NewVarianceThreshold(0)
	if err := vt.Fit(X); err != nil {
		t.Fatal(err)
	}

	kept := vt.SupportIndices()
	if len(kept) != 2 || kept[0] != 0 || kept[1] != 2 {
		t.Fatalf("kept = %v, want [0 2]", kept)
	}

	out, err := vt.Transform(X)
	if err != nil {
		t.Fatal(err)
	}
	_, c := out.Dims()
	if c != 2 {
		t.Fatalf("got %d columns, want 2", c)
	}
	if out.At(1, 1) != 4 {
		t.Fatalf("column order broken: got %v, want 4", out.At(1, 1))
	}

	names := vt.FilterNames([]string{"a", "b", "c"})
	if len(names) != 2 || names[0] != "a" || names[1] != "c" {
		t.Fatalf("names = %v, want [a c]", names)
	}
}

func TestVarianceThresholdAllConstant(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{1, 1, 1, 1, 1, 1})

	vt := NewVarianceThreshold(0)
	if err := vt.Fit(X); err != nil {
		t.Fatal(err)
	}
	if _, err := vt.Transform(X); err == nil {
		t.Fatal("expected error when nothing survives the cut")
	}
}

func TestMedianImputerReplacesNaN(t *testing.T) {
	nan := math.NaN()
	train := mat.NewDense(4, 2, []float64{
		1, 10,
		3, nan,
		5, 30,
		nan, 50,
	})

	imp := NewMedianImputer()
	if err := imp.Fit(train); err != nil {
		t.Fatal(err)
	}
	out, err := imp.Transform(train)
	if err != nil {
		t.Fatal(err)
	}

	// Column 0 median over {1,3,5} is 3; column 1 median over {10,30,50}
	// is 30.
	if out.At(3, 0) != 3 {
		t.Fatalf("imputed %v, want 3", out.At(3, 0))
	}
	if out.At(1, 1) != 30 {
		t.Fatalf("imputed %v, want 30", out.At(1, 1))
	}
	// Observed entries stay untouched.
	if out.At(0, 0) != 1 || out.At(2, 1) != 30 {
		t.Fatal("observed entries were modified")
	}
}

func TestMedianImputerAppliesTrainMedians(t *testing.T) {
	train := mat.NewDense(3, 1, []float64{2, 4, 6})
	test := mat.NewDense(1, 1, []float64{math.NaN()})

	imp := NewMedianImputer()
	if err := imp.Fit(train); err != nil {
		t.Fatal(err)
	}
	out, err := imp.Transform(test)
	if err != nil {
		t.Fatal(err)
	}
	if out.At(0, 0) != 4 {
		t.Fatalf("got %v, want the training median 4", out.At(0, 0))
	}
}
