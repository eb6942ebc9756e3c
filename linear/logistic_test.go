package linear

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/joshuagi/Stabl/pkg/errors"
)

func TestLogisticSeparableData(t *testing.T) {
	X, y := classificationData(200, 3, 9)

	lg := NewLogistic()
	if err := lg.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	pred, err := lg.Predict(X)
	if err != nil {
		t.Fatal(err)
	}

	correct := 0
	for i := 0; i < pred.Len(); i++ {
		p := pred.AtVec(i)
		if p < 0 || p > 1 {
			t.Fatalf("probability %v outside [0,1]", p)
		}
		if (p > 0.5) == (y.AtVec(i) == 1) {
			correct++
		}
	}
	if float64(correct)/float64(pred.Len()) < 0.9 {
		t.Fatalf("accuracy %v too low on separable data", float64(correct)/float64(pred.Len()))
	}
}

func TestLogisticBalancedHandlesSkew(t *testing.T) {
	// 90/10 class split; balanced reweighting must still produce a model
	// that ranks the minority class above 0.5 on its side of the boundary.
	n := 200
	X := mat.NewDense(n, 1, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		if i < n/10 {
			X.Set(i, 0, 3)
			y.SetVec(i, 1)
		} else {
			X.Set(i, 0, -3)
		}
	}

	lg := NewLogistic(WithLogisticBalanced(true))
	if err := lg.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	pred, err := lg.Predict(X)
	if err != nil {
		t.Fatal(err)
	}
	if pred.AtVec(0) <= 0.5 {
		t.Fatalf("minority-class probability %v, want above 0.5", pred.AtVec(0))
	}
	if pred.AtVec(n-1) >= 0.5 {
		t.Fatalf("majority-class probability %v, want below 0.5", pred.AtVec(n-1))
	}
}

func TestLogisticSingleClass(t *testing.T) {
	X := mat.NewDense(10, 2, nil)
	y := mat.NewVecDense(10, nil)

	err := NewLogistic().Fit(X, y)
	var varErr *errors.InsufficientVarianceError
	if !errors.As(err, &varErr) {
		t.Fatalf("want InsufficientVarianceError, got %v", err)
	}
}
