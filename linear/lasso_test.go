package linear

import (
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func regressionData(n, p int, seed uint64) (*mat.Dense, *mat.VecDense) {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	X := mat.NewDense(n, p, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			X.Set(i, j, rng.NormFloat64())
		}
		// y = 2*x0 - 1.5*x1 + intercept + small noise
		y.SetVec(i, 2*X.At(i, 0)-1.5*X.At(i, 1)+0.7+0.01*rng.NormFloat64())
	}
	return X, y
}

func TestLassoRecoversSparseSignal(t *testing.T) {
	X, y := regressionData(200, 10, 1)

	l := NewLasso(WithLassoAlpha(0.05))
	if err := l.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	if !l.Converged() {
		t.Fatal("expected convergence on easy problem")
	}

	coef := l.Coef()
	if coef[0] < 1.5 || coef[0] > 2.5 {
		t.Fatalf("coef[0] = %v, want near 2", coef[0])
	}
	if coef[1] > -1.0 || coef[1] < -2.0 {
		t.Fatalf("coef[1] = %v, want near -1.5", coef[1])
	}
	for j := 2; j < 10; j++ {
		if math.Abs(coef[j]) > 0.1 {
			t.Fatalf("noise coef[%d] = %v, want near 0", j, coef[j])
		}
	}
	if math.Abs(l.Intercept()-0.7) > 0.2 {
		t.Fatalf("intercept = %v, want near 0.7", l.Intercept())
	}
}

func TestLassoStrongPenaltyZeroesEverything(t *testing.T) {
	X, y := regressionData(100, 5, 2)

	l := NewLasso(WithLassoAlpha(100))
	if err := l.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	for j, c := range l.Coef() {
		if c != 0 {
			t.Fatalf("coef[%d] = %v under overwhelming penalty, want exactly 0", j, c)
		}
	}
}

func TestLassoDoesNotMutateInput(t *testing.T) {
	X, y := regressionData(50, 4, 3)
	Xcopy := mat.DenseCopyOf(X)
	yCopy := mat.VecDenseCopyOf(y)

	l := NewLasso(WithLassoAlpha(0.1))
	if err := l.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(X, Xcopy) || !mat.Equal(y, yCopy) {
		t.Fatal("Fit mutated its inputs")
	}
}

func TestLassoWithPenaltyClones(t *testing.T) {
	base := NewLasso(WithLassoAlpha(0.1), WithLassoMaxIter(500))
	clone := base.WithPenalty(0.9)

	X, y := regressionData(50, 4, 4)
	if err := clone.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	// The base must stay untouched by the clone's fit.
	if base.Coef() != nil {
		t.Fatal("fitting a clone mutated the base estimator")
	}
}

func TestLassoPredict(t *testing.T) {
	X, y := regressionData(150, 6, 5)

	l := NewLasso(WithLassoAlpha(0.01))
	if err := l.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	pred, err := l.Predict(X)
	if err != nil {
		t.Fatal(err)
	}
	if pred.Len() != 150 {
		t.Fatalf("got %d predictions, want 150", pred.Len())
	}
	var sse float64
	for i := 0; i < pred.Len(); i++ {
		d := pred.AtVec(i) - y.AtVec(i)
		sse += d * d
	}
	if sse/150 > 0.1 {
		t.Fatalf("in-sample MSE %v too large for a near-exact fit", sse/150)
	}
}

func TestLassoPredictBeforeFit(t *testing.T) {
	l := NewLasso()
	if _, err := l.Predict(mat.NewDense(2, 2, nil)); err == nil {
		t.Fatal("Predict before Fit must fail")
	}
}
