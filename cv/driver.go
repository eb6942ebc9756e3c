package cv

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	stabl "github.com/joshuagi/Stabl"
	"github.com/joshuagi/Stabl/core/model"
	"github.com/joshuagi/Stabl/linear"
	"github.com/joshuagi/Stabl/metrics"
	"github.com/joshuagi/Stabl/pkg/errors"
	stabllog "github.com/joshuagi/Stabl/pkg/log"
	"github.com/joshuagi/Stabl/preprocessing"
)

// Task tells the driver how to refit and score the selected features.
type Task string

const (
	TaskRegression           Task = "regression"
	TaskBinaryClassification Task = "binary_classification"
)

// Model bundles a named selection configuration for the outer loop. A fresh
// selector is built per fold with a fold-derived master seed, so fold runs
// are independent and reproducible.
type Model struct {
	Name   string
	Base   stabl.Penalized
	Config stabl.Config
	Task   Task
}

// FoldOutcome records what one fold selected.
type FoldOutcome struct {
	Selected    []string
	Cutoff      float64
	Unreachable bool
}

// Result is the outcome of one cross-validated model.
type Result struct {
	ModelName string
	Folds     []FoldOutcome

	// Predictions holds the per-sample out-of-fold prediction, the median
	// across every fold that held the sample out. Samples never held out
	// carry NaN.
	Predictions []float64

	// Metrics are computed once over all held-out samples. Regression:
	// mse, mae, r2. Classification: auc, accuracy.
	Metrics map[string]float64

	// Jaccard measures selection overlap between every pair of folds.
	Jaccard *mat.Dense
}

// CrossValidate runs the outer loop: split, preprocess each train fold, run
// the selector, refit an unpenalized model on the selected features and
// predict the held-out side. Folds where nothing was selected fall back to
// the train-fold outcome mean (regression) or 0.5 (classification), so a
// sparse model is always comparable against its competitors on the same
// splits.
func CrossValidate(m Model, X mat.Matrix, y *mat.VecDense, featureNames []string, groups []string, splitter Splitter) (*Result, error) {
	if err := m.Config.Validate(); err != nil {
		return nil, err
	}
	switch m.Task {
	case TaskRegression, TaskBinaryClassification:
	default:
		return nil, errors.NewValueError("CrossValidate", "unknown task "+string(m.Task))
	}

	n, p := X.Dims()
	if y.Len() != n {
		return nil, errors.NewDimensionError("CrossValidate", n, y.Len(), 0)
	}
	if featureNames != nil && len(featureNames) != p {
		return nil, errors.NewDimensionError("CrossValidate", p, len(featureNames), 1)
	}

	folds, err := splitter.Split(n, y, groups)
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With(
		stabllog.SelectorKey, m.Name,
		stabllog.SamplesKey, n,
		stabllog.FeaturesKey, p,
	)

	res := &Result{
		ModelName:   m.Name,
		Folds:       make([]FoldOutcome, len(folds)),
		Predictions: make([]float64, n),
	}
	perSample := make([][]float64, n)

	for fi, fold := range folds {
		preds, outcome, err := runFold(m, X, y, featureNames, fold, int64(stabl.SeedFor(m.Config.RandomState, fi, 0)))
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d", fi)
		}
		res.Folds[fi] = outcome
		for k, row := range fold.Test {
			perSample[row] = append(perSample[row], preds[k])
		}
		logger.Debug("fold finished",
			stabllog.FoldKey, fi,
			stabllog.SelectedKey, len(outcome.Selected),
			stabllog.CutoffKey, outcome.Cutoff,
		)
	}

	var tested []int
	for i := range perSample {
		if len(perSample[i]) == 0 {
			res.Predictions[i] = math.NaN()
			continue
		}
		res.Predictions[i] = median(perSample[i])
		tested = append(tested, i)
	}

	res.Metrics, err = scoreTask(m.Task, y, res.Predictions, tested)
	if err != nil {
		return nil, err
	}

	selections := make([][]string, len(res.Folds))
	for i, f := range res.Folds {
		selections[i] = f.Selected
	}
	res.Jaccard = JaccardMatrix(selections)

	logger.Info("cross-validation finished",
		stabllog.OperationKey, "cross_validate",
		"metrics", res.Metrics,
	)
	return res, nil
}

// CompareModels cross-validates several models over identical splits. The
// splitter is seeded, so calling Split once per model yields the same folds
// and every model is scored on the same held-out samples. Typical use is a
// calibrated primary against hard-threshold comparators built from the same
// config via WithHardThreshold.
func CompareModels(models []Model, X mat.Matrix, y *mat.VecDense, featureNames []string, groups []string, splitter Splitter) ([]*Result, error) {
	if len(models) == 0 {
		return nil, errors.NewValueError("CompareModels", "no models given")
	}
	results := make([]*Result, len(models))
	for i, m := range models {
		res, err := CrossValidate(m, X, y, featureNames, groups, splitter)
		if err != nil {
			return nil, errors.Wrapf(err, "model %q", m.Name)
		}
		results[i] = res
	}
	return results, nil
}

// runFold preprocesses one fold, runs the selector on the train side and
// returns predictions for the test rows in fold order.
func runFold(m Model, X mat.Matrix, y *mat.VecDense, featureNames []string, fold Fold, seed int64) ([]float64, FoldOutcome, error) {
	Xtrain, ytrain := subsetRows(X, y, fold.Train)
	Xtest, _ := subsetRows(X, y, fold.Test)

	Xtrain, Xtest, names, err := preprocessFold(Xtrain, Xtest, featureNames)
	if err != nil {
		return nil, FoldOutcome{}, err
	}

	sel := stabl.NewSelector(m.Base, m.Config.WithRandomState(seed))
	if err := sel.Fit(Xtrain, ytrain, names); err != nil {
		return nil, FoldOutcome{}, err
	}
	selected, err := sel.SelectedFeatures()
	if err != nil {
		return nil, FoldOutcome{}, err
	}
	outcome := FoldOutcome{
		Selected:    selected,
		Cutoff:      sel.Cutoff(),
		Unreachable: sel.FDRTargetUnreachable(),
	}

	XtrainSel, _, err := sel.Transform(Xtrain)
	if err != nil {
		return nil, FoldOutcome{}, err
	}
	if XtrainSel == nil {
		return fallbackPredictions(m.Task, ytrain, len(fold.Test)), outcome, nil
	}
	XtestSel, _, err := sel.Transform(Xtest)
	if err != nil {
		return nil, FoldOutcome{}, err
	}

	var est model.Estimator
	switch m.Task {
	case TaskRegression:
		est = linear.NewRegression()
	case TaskBinaryClassification:
		est = linear.NewLogistic()
	}
	if err := est.Fit(XtrainSel, ytrain); err != nil {
		return nil, FoldOutcome{}, errors.Wrap(err, "refit on selected features")
	}
	pred, err := est.Predict(XtestSel)
	if err != nil {
		return nil, FoldOutcome{}, err
	}

	out := make([]float64, pred.Len())
	for i := range out {
		out[i] = pred.AtVec(i)
	}
	return out, outcome, nil
}

// preprocessFold fits the pipeline on the train side only: drop zero-variance
// features, impute missing values with the train median, standardize.
func preprocessFold(Xtrain, Xtest *mat.Dense, featureNames []string) (*mat.Dense, *mat.Dense, []string, error) {
	vt := preprocessing.NewVarianceThreshold(0)
	if err := vt.Fit(Xtrain); err != nil {
		return nil, nil, nil, err
	}
	Xtrain, err := vt.Transform(Xtrain)
	if err != nil {
		return nil, nil, nil, err
	}
	Xtest, err = vt.Transform(Xtest)
	if err != nil {
		return nil, nil, nil, err
	}
	var names []string
	if featureNames != nil {
		names = vt.FilterNames(featureNames)
	}

	imp := preprocessing.NewMedianImputer()
	if err := imp.Fit(Xtrain); err != nil {
		return nil, nil, nil, err
	}
	if Xtrain, err = imp.Transform(Xtrain); err != nil {
		return nil, nil, nil, err
	}
	if Xtest, err = imp.Transform(Xtest); err != nil {
		return nil, nil, nil, err
	}

	sc := preprocessing.NewStandardScaler()
	if err := sc.Fit(Xtrain); err != nil {
		return nil, nil, nil, err
	}
	if Xtrain, err = sc.Transform(Xtrain); err != nil {
		return nil, nil, nil, err
	}
	if Xtest, err = sc.Transform(Xtest); err != nil {
		return nil, nil, nil, err
	}
	return Xtrain, Xtest, names, nil
}

// fallbackPredictions covers folds where the selector kept nothing.
func fallbackPredictions(task Task, ytrain *mat.VecDense, nTest int) []float64 {
	fill := 0.5
	if task == TaskRegression {
		sum := 0.0
		for i := 0; i < ytrain.Len(); i++ {
			sum += ytrain.AtVec(i)
		}
		fill = sum / float64(ytrain.Len())
	}
	out := make([]float64, nTest)
	for i := range out {
		out[i] = fill
	}
	return out
}

func scoreTask(task Task, y *mat.VecDense, preds []float64, tested []int) (map[string]float64, error) {
	if len(tested) == 0 {
		return nil, errors.New("no sample was ever held out; check the splitter")
	}
	yt := mat.NewVecDense(len(tested), nil)
	yp := mat.NewVecDense(len(tested), nil)
	for k, i := range tested {
		yt.SetVec(k, y.AtVec(i))
		yp.SetVec(k, preds[i])
	}

	out := make(map[string]float64)
	switch task {
	case TaskRegression:
		mse, err := metrics.MSE(yt, yp)
		if err != nil {
			return nil, err
		}
		mae, err := metrics.MAE(yt, yp)
		if err != nil {
			return nil, err
		}
		r2, err := metrics.R2Score(yt, yp)
		if err != nil {
			return nil, err
		}
		out["mse"], out["mae"], out["r2"] = mse, mae, r2
	case TaskBinaryClassification:
		auc, err := metrics.ROCAUC(yt, yp)
		if err != nil {
			return nil, err
		}
		acc, err := metrics.Accuracy(yt, yp)
		if err != nil {
			return nil, err
		}
		out["auc"], out["accuracy"] = auc, acc
	}
	return out, nil
}

func subsetRows(X mat.Matrix, y *mat.VecDense, idx []int) (*mat.Dense, *mat.VecDense) {
	_, p := X.Dims()
	Xs := mat.NewDense(len(idx), p, nil)
	ys := mat.NewVecDense(len(idx), nil)
	for i, row := range idx {
		for j := 0; j < p; j++ {
			Xs.Set(i, j, X.At(row, j))
		}
		ys.SetVec(i, y.AtVec(row))
	}
	return Xs, ys
}

func median(v []float64) float64 {
	s := append([]float64(nil), v...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}
