package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestROCAUCPerfectRanking(t *testing.T) {
	y := mat.NewVecDense(4, []float64{0, 0, 1, 1})
	s := mat.NewVecDense(4, []float64{0.1, 0.2, 0.8, 0.9})

	auc, err := ROCAUC(y, s)
	if err != nil {
		t.Fatal(err)
	}
	if auc != 1.0 {
		t.Fatalf("auc = %v, want 1.0", auc)
	}
}

func TestROCAUCReversedRanking(t *testing.T) {
	y := mat.NewVecDense(4, []float64{0, 0, 1, 1})
	s := mat.NewVecDense(4, []float64{0.9, 0.8, 0.2, 0.1})

	auc, err := ROCAUC(y, s)
	if err != nil {
		t.Fatal(err)
	}
	if auc != 0.0 {
		t.Fatalf("auc = %v, want 0.0", auc)
	}
}

func TestROCAUCTiedScores(t *testing.T) {
	// All scores equal: mid-ranks give chance-level AUC.
	y := mat.NewVecDense(4, []float64{0, 1, 0, 1})
	s := mat.NewVecDense(4, []float64{0.5, 0.5, 0.5, 0.5})

	auc, err := ROCAUC(y, s)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(auc-0.5) > 1e-12 {
		t.Fatalf("auc = %v, want 0.5", auc)
	}
}

func TestROCAUCSingleClass(t *testing.T) {
	y := mat.NewVecDense(3, []float64{1, 1, 1})
	s := mat.NewVecDense(3, []float64{0.1, 0.5, 0.9})

	if _, err := ROCAUC(y, s); err == nil {
		t.Fatal("expected error with a single class")
	}
}

func TestAccuracy(t *testing.T) {
	y := mat.NewVecDense(4, []float64{0, 1, 1, 0})
	s := mat.NewVecDense(4, []float64{0.2, 0.9, 0.4, 0.6})

	acc, err := Accuracy(y, s)
	if err != nil {
		t.Fatal(err)
	}
	// First two correct, last two wrong.
	if acc != 0.5 {
		t.Fatalf("accuracy = %v, want 0.5", acc)
	}
}
