package stabl

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/joshuagi/Stabl/core/model"
	"github.com/joshuagi/Stabl/core/parallel"
	"github.com/joshuagi/Stabl/pkg/errors"
	stabllog "github.com/joshuagi/Stabl/pkg/log"
)

// Penalized is the capability the selector requires from its base estimator:
// a linear model that can be cloned with a new penalization strength.
// WithPenalty must return an independent instance, so bootstrap fits can run
// concurrently against a shared base.
type Penalized interface {
	model.Estimator
	WithPenalty(lambda float64) model.Estimator
}

// convergenceReporter is implemented by estimators that can tell whether the
// last fit converged. A non-converged fit contributes an empty selection
// record instead of noise coefficients.
type convergenceReporter interface {
	Converged() bool
}

// Selector runs the stability selection procedure: it fits the base
// estimator on NBootstraps resamples at every grid point, scores each
// feature by its selection frequency, and derives the final feature set
// either from FDR calibration against injected artificial features or from a
// fixed hard threshold.
type Selector struct {
	state *model.StateManager
	cfg   Config
	base  Penalized

	featureNames []string
	nFeatures    int

	// Selection frequencies, features x grid points. artificialScores is
	// nil when injection is disabled.
	scores           *mat.Dense
	artificialScores *mat.Dense

	fdrs        []float64
	minFDR      float64
	cutoff      float64
	unreachable bool
}

// NewSelector creates a Selector around a base estimator. The configuration
// is validated at Fit time.
func NewSelector(base Penalized, cfg Config) *Selector {
	return &Selector{
		state: model.NewStateManager(),
		cfg:   cfg,
		base:  base,
	}
}

// Config returns the selector's configuration.
func (s *Selector) Config() Config { return s.cfg }

// Fit runs the selection procedure on ungrouped samples. featureNames may be
// nil, in which case names x0..x{p-1} are generated.
func (s *Selector) Fit(X mat.Matrix, y *mat.VecDense, featureNames []string) error {
	return s.FitGroups(X, y, featureNames, nil)
}

// FitGroups runs the selection procedure with grouped resampling: all rows
// sharing a group identifier enter or leave a resample together.
func (s *Selector) FitGroups(X mat.Matrix, y *mat.VecDense, featureNames []string, groups []string) error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	n, p := X.Dims()
	if n == 0 || p == 0 {
		return errors.Wrap(errors.ErrEmptyData, "Selector.Fit")
	}
	if y.Len() != n {
		return errors.NewDimensionError("Selector.Fit", n, y.Len(), 0)
	}
	if featureNames == nil {
		featureNames = make([]string, p)
		for j := range featureNames {
			featureNames[j] = fmt.Sprintf("x%d", j)
		}
	}
	if len(featureNames) != p {
		return errors.NewDimensionError("Selector.Fit", p, len(featureNames), 1)
	}
	for _, name := range featureNames {
		if strings.HasPrefix(name, artificialPrefix) {
			return errors.NewValueError("Selector.Fit",
				fmt.Sprintf("feature name %q collides with the reserved %q namespace", name, artificialPrefix))
		}
	}

	nSubsamples := int(math.Floor(s.cfg.SampleFraction * float64(n)))
	if nSubsamples < 2 {
		return errors.NewValueError("Selector.Fit",
			fmt.Sprintf("sample_fraction %.3f of %d samples leaves fewer than 2 rows per resample", s.cfg.SampleFraction, n))
	}

	nArtificial := 0
	augmented := mat.Matrix(X)
	if s.cfg.ArtificialType == ArtificialRandomPermutation {
		nArtificial = int(math.Round(s.cfg.ArtificialProportion * float64(p)))
		if nArtificial < 1 {
			nArtificial = 1
		}
		// Decoys are generated once per run, on a reserved RNG stream,
		// and shared by every resample.
		artificial := makeArtificialFeatures(X, nArtificial, newRNG(SeedFor(s.cfg.RandomState, -1, 0)))
		augmented = concatColumns(X, artificial)
	}
	totalCols := p + nArtificial

	logger := slog.Default().With(
		stabllog.SelectorKey, "stabl",
		stabllog.EstimatorKey, fmt.Sprintf("%T", s.base),
		stabllog.SamplesKey, n,
		stabllog.FeaturesKey, p,
		stabllog.ArtificialKey, nArtificial,
		stabllog.BootstrapsKey, s.cfg.NBootstraps,
	)
	logger.Debug("starting selection run", stabllog.OperationKey, "fit")

	nLambdas := len(s.cfg.LambdaGrid)
	B := s.cfg.NBootstraps

	scores := mat.NewDense(p, nLambdas, nil)
	var artificialScores *mat.Dense
	if nArtificial > 0 {
		artificialScores = mat.NewDense(nArtificial, nLambdas, nil)
	}

	var totalFits, failedFits int
	var firstFailure error

	selected := make([][]bool, B)
	fitErrs := make([]error, B)

	for l, lambda := range s.cfg.LambdaGrid {
		for b := range selected {
			selected[b] = nil
			fitErrs[b] = nil
		}

		// Each resample owns its output slot and a seed derived from
		// (master, grid index, resample index); results are identical
		// regardless of worker interleaving. Row draws are deliberately
		// independent per grid point rather than shared across the grid,
		// which decorrelates adjacent grid points at no cost to
		// reproducibility.
		parallel.ForEach(B, func(b int) {
			rng := newRNG(SeedFor(s.cfg.RandomState, l, b))

			idx, err := resampleIndices(y, groups, nSubsamples, s.cfg.Replace, s.cfg.MaxResampleRetries, rng)
			if err != nil {
				fitErrs[b] = err
				return
			}

			Xb := mat.NewDense(len(idx), totalCols, nil)
			yb := mat.NewVecDense(len(idx), nil)
			for i, row := range idx {
				for j := 0; j < totalCols; j++ {
					Xb.Set(i, j, augmented.At(row, j))
				}
				yb.SetVec(i, y.AtVec(row))
			}

			est := s.base.WithPenalty(lambda)
			if err := errors.SafeExecute("bootstrap fit", func() error {
				return est.Fit(Xb, yb)
			}); err != nil {
				fitErrs[b] = err
				return
			}

			if cr, ok := est.(convergenceReporter); ok && !cr.Converged() {
				// Warning already emitted by the estimator; this
				// grid point contributes an empty record.
				return
			}

			coef := est.Coef()
			mask := make([]bool, totalCols)
			for j := 0; j < totalCols && j < len(coef); j++ {
				mask[j] = math.Abs(coef[j]) > s.cfg.CoefTolerance
			}
			selected[b] = mask
		})

		for b := 0; b < B; b++ {
			totalFits++
			if fitErrs[b] != nil {
				failedFits++
				if firstFailure == nil {
					firstFailure = fitErrs[b]
				}
				logger.Debug("bootstrap fit failed",
					stabllog.LambdaIndexKey, l,
					stabllog.ErrAttrKey, fitErrs[b],
				)
				continue
			}
			mask := selected[b]
			if mask == nil {
				continue
			}
			for j := 0; j < p; j++ {
				if mask[j] {
					scores.Set(j, l, scores.At(j, l)+1)
				}
			}
			for j := 0; j < nArtificial; j++ {
				if mask[p+j] {
					artificialScores.Set(j, l, artificialScores.At(j, l)+1)
				}
			}
		}

		for j := 0; j < p; j++ {
			scores.Set(j, l, scores.At(j, l)/float64(B))
		}
		for j := 0; j < nArtificial; j++ {
			artificialScores.Set(j, l, artificialScores.At(j, l)/float64(B))
		}

		if rate := float64(failedFits) / float64(totalFits); rate > s.cfg.MaxFailureRate {
			err := errors.Mark(
				errors.Wrapf(firstFailure, "aborting run: %d of %d bootstrap fits failed", failedFits, totalFits),
				errors.ErrTooManyFailures,
			)
			logger.Error("selection run aborted", stabllog.ErrAttrKey, err)
			return err
		}
	}

	s.featureNames = append([]string(nil), featureNames...)
	s.nFeatures = p
	s.scores = scores
	s.artificialScores = artificialScores
	s.fdrs = nil
	s.unreachable = false

	if nArtificial > 0 {
		res := calibrateFDR(
			maxPerRow(scores),
			maxPerRow(artificialScores),
			s.cfg.FDRThresholdRange,
			s.cfg.ArtificialProportion,
			s.cfg.FDRTarget,
		)
		s.fdrs = res.fdps
		s.minFDR = res.minFDR
		s.cutoff = res.cutoff
		s.unreachable = res.unreachable
		if res.unreachable {
			errors.Warn(errors.NewFDRTargetUnreachableWarning(res.minFDR, s.cfg.FDRTarget))
		}
	} else {
		s.cutoff = s.cfg.HardThreshold
		s.minFDR = math.NaN()
	}

	s.state.SetDimensions(p, n)
	s.state.SetFitted()

	nSelected := 0
	for _, keep := range s.supportMask(s.cutoff) {
		if keep {
			nSelected++
		}
	}
	logger.Info("selection run finished",
		stabllog.OperationKey, "fit",
		stabllog.SelectedKey, nSelected,
		stabllog.CutoffKey, s.cutoff,
		stabllog.MinFDRKey, s.minFDR,
	)
	return nil
}

// maxPerRow reduces a features x grid matrix to the per-feature maximum.
func maxPerRow(m *mat.Dense) []float64 {
	r, c := m.Dims()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		best := m.At(i, 0)
		for j := 1; j < c; j++ {
			if v := m.At(i, j); v > best {
				best = v
			}
		}
		out[i] = best
	}
	return out
}

// StabilityScores returns the real-feature selection frequencies, features x
// grid points. The matrix is owned by the selector and must not be mutated.
func (s *Selector) StabilityScores() *mat.Dense { return s.scores }

// ArtificialStabilityScores returns the decoy selection frequencies, or nil
// when injection is disabled.
func (s *Selector) ArtificialStabilityScores() *mat.Dense { return s.artificialScores }

// MaxStabilityScores returns each real feature's stability score: its
// selection frequency at the best grid point.
func (s *Selector) MaxStabilityScores() ([]float64, error) {
	if !s.state.IsFitted() {
		return nil, errors.NewNotFittedError("Selector", "MaxStabilityScores")
	}
	return maxPerRow(s.scores), nil
}

// FDRs returns the estimated false discovery proportion at each scanned
// cutoff, or nil in hard-threshold mode.
func (s *Selector) FDRs() []float64 { return s.fdrs }

// MinFDR returns the smallest estimated FDR over the scan, NaN in
// hard-threshold mode.
func (s *Selector) MinFDR() float64 { return s.minFDR }

// Cutoff returns the stability-score cutoff that defines the selected set.
func (s *Selector) Cutoff() float64 { return s.cutoff }

// FDRTargetUnreachable reports whether the last run failed to reach the FDR
// target and fell back to the most conservative achievable set.
func (s *Selector) FDRTargetUnreachable() bool { return s.unreachable }

// FeatureNames returns the real feature names seen during Fit.
func (s *Selector) FeatureNames() []string { return s.featureNames }

// SupportMask returns, per real feature, whether its stability score exceeds
// the fitted cutoff. Decoy features have no entry: by construction they can
// never appear in the selected set.
func (s *Selector) SupportMask() ([]bool, error) {
	return s.SupportMaskAt(s.cutoff)
}

// SupportMaskAt evaluates the support under a caller-supplied cutoff,
// ignoring the fitted one. Used for hard-threshold comparators and plots.
func (s *Selector) SupportMaskAt(threshold float64) ([]bool, error) {
	if !s.state.IsFitted() {
		return nil, errors.NewNotFittedError("Selector", "SupportMask")
	}
	return s.supportMask(threshold), nil
}

func (s *Selector) supportMask(threshold float64) []bool {
	maxScores := maxPerRow(s.scores)
	mask := make([]bool, s.nFeatures)
	for j, score := range maxScores {
		mask[j] = score > threshold
	}
	return mask
}

// SelectedFeatures returns the names of the selected real features.
func (s *Selector) SelectedFeatures() ([]string, error) {
	return s.SelectedFeaturesAt(s.cutoff)
}

// SelectedFeaturesAt returns the selected names under a caller-supplied
// cutoff.
func (s *Selector) SelectedFeaturesAt(threshold float64) ([]string, error) {
	mask, err := s.SupportMaskAt(threshold)
	if err != nil {
		return nil, err
	}
	var names []string
	for j, keep := range mask {
		if keep {
			names = append(names, s.featureNames[j])
		}
	}
	return names, nil
}

// Transform reduces X to the selected features. When nothing was selected it
// returns nil with no error, after emitting a warning: either the data is
// too noisy or the selection too strict.
func (s *Selector) Transform(X mat.Matrix) (*mat.Dense, []string, error) {
	mask, err := s.SupportMask()
	if err != nil {
		return nil, nil, err
	}
	n, p := X.Dims()
	if p != s.nFeatures {
		return nil, nil, errors.NewDimensionError("Selector.Transform", s.nFeatures, p, 1)
	}

	var kept []int
	var names []string
	for j, keep := range mask {
		if keep {
			kept = append(kept, j)
			names = append(names, s.featureNames[j])
		}
	}
	if len(kept) == 0 {
		errors.Warn(errors.New("no features were selected: either the data is too noisy or the selection too strict"))
		return nil, nil, nil
	}

	out := mat.NewDense(n, len(kept), nil)
	for i := 0; i < n; i++ {
		for jj, j := range kept {
			out.Set(i, jj, X.At(i, j))
		}
	}
	return out, names, nil
}
