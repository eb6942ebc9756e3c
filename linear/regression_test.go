package linear

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/joshuagi/Stabl/pkg/errors"
)

func TestRegressionExactFit(t *testing.T) {
	// y = 2x + 1, no noise: OLS must recover the coefficients exactly.
	X := mat.NewDense(5, 1, []float64{0, 1, 2, 3, 4})
	y := mat.NewVecDense(5, []float64{1, 3, 5, 7, 9})

	r := NewRegression()
	if err := r.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	if math.Abs(r.Coef()[0]-2) > 1e-9 {
		t.Fatalf("coef = %v, want 2", r.Coef()[0])
	}
	if math.Abs(r.Intercept()-1) > 1e-9 {
		t.Fatalf("intercept = %v, want 1", r.Intercept())
	}

	pred, err := r.Predict(X)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if math.Abs(pred.AtVec(i)-y.AtVec(i)) > 1e-9 {
			t.Fatalf("pred[%d] = %v, want %v", i, pred.AtVec(i), y.AtVec(i))
		}
	}
}

func TestRegressionMultivariate(t *testing.T) {
	// y = 3*x0 - x1 + 0.5
	X := mat.NewDense(6, 2, []float64{
		1, 0,
		0, 1,
		2, 1,
		1, 3,
		4, 2,
		3, 5,
	})
	y := mat.NewVecDense(6, nil)
	for i := 0; i < 6; i++ {
		y.SetVec(i, 3*X.At(i, 0)-X.At(i, 1)+0.5)
	}

	r := NewRegression()
	if err := r.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	if math.Abs(r.Coef()[0]-3) > 1e-9 || math.Abs(r.Coef()[1]+1) > 1e-9 {
		t.Fatalf("coef = %v, want [3 -1]", r.Coef())
	}
}

func TestRegressionSingular(t *testing.T) {
	// Two identical columns make X^T X singular.
	X := mat.NewDense(4, 2, []float64{1, 1, 2, 2, 3, 3, 4, 4})
	y := mat.NewVecDense(4, []float64{1, 2, 3, 4})

	err := NewRegression().Fit(X, y)
	if err == nil {
		t.Fatal("expected failure on singular design")
	}
	if !errors.Is(err, errors.ErrSingularMatrix) {
		t.Fatalf("want ErrSingularMatrix, got %v", err)
	}
}

func TestRegressionPredictDimensionMismatch(t *testing.T) {
	X := mat.NewDense(5, 1, []float64{0, 1, 2, 3, 4})
	y := mat.NewVecDense(5, []float64{1, 3, 5, 7, 9})

	r := NewRegression()
	if err := r.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Predict(mat.NewDense(2, 3, nil)); err == nil {
		t.Fatal("expected dimension error")
	}
}
