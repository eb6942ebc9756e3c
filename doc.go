// Package stabl implements stability-driven feature selection for
// high-dimensional biomarker discovery.
//
// The selector fits an L1-penalized base estimator on many bootstrap
// resamples of the training data, across a grid of regularization strengths,
// and scores each feature by the fraction of resamples that kept it at its
// best grid point. Injected artificial features (random permutations of real
// columns) act as a null reference: scanning a range of stability-score
// cutoffs against the artificial-feature score distribution yields an
// estimated false discovery rate per cutoff, and the cutoff minimizing that
// estimate defines the selected feature set. Without artificial features the
// selector falls back to classic stability selection with a fixed hard
// threshold.
//
// Subpackages:
//
//   - linear: penalized and plain base estimators (Lasso, L1 logistic, OLS)
//   - cv: grouped splitters and the outer cross-validation driver
//   - preprocessing: variance filter, median imputer, standard scaler
//   - metrics: regression and binary-classification scores
//   - pkg/errors, pkg/log: error taxonomy and structured logging
//
// A minimal run:
//
//	base := linear.NewLasso(linear.WithLassoMaxIter(2000))
//	sel := stabl.NewSelector(base, stabl.DefaultConfig().
//	    WithLambdaGrid([]float64{0.1, 0.3, 1.0}).
//	    WithBootstraps(100))
//	if err := sel.Fit(X, y, featureNames); err != nil {
//	    log.Fatal(err)
//	}
//	features, err := sel.SelectedFeatures()
package stabl
