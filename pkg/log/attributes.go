// Standard attribute keys for selection runs. Using these keys keeps fold
// and bootstrap logs filterable across the library.

package log

// Selector and operation context.
const (
	// SelectorKey identifies the selection model emitting the record.
	// Examples: "stabl", "stability_selection", "lasso"
	SelectorKey = "selector"

	// OperationKey names the operation being performed.
	// Standard values: "fit", "refit", "calibrate", "split"
	OperationKey = "operation"

	// EstimatorKey names the base estimator fitted inside the bootstrap
	// loop. Examples: "Lasso", "LogisticLasso"
	EstimatorKey = "estimator"
)

// Data shape.
const (
	// SamplesKey is the number of samples (rows) in play.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of real features (columns).
	FeaturesKey = "data.features"

	// ArtificialKey is the number of injected artificial features.
	ArtificialKey = "data.artificial"
)

// Selection progress.
const (
	// FoldKey is the 1-based outer cross-validation fold index.
	FoldKey = "cv.fold"

	// BootstrapsKey is the number of resamples per grid point.
	BootstrapsKey = "stabl.bootstraps"

	// LambdaIndexKey is the index into the regularization grid.
	LambdaIndexKey = "stabl.lambda_index"

	// SelectedKey is the number of features in the selected set.
	SelectedKey = "stabl.selected"

	// CutoffKey is the stability-score cutoff that produced the set.
	CutoffKey = "stabl.cutoff"

	// MinFDRKey is the smallest estimated FDR over the threshold scan.
	MinFDRKey = "stabl.min_fdr"
)
