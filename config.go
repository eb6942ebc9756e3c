package stabl

import (
	"github.com/joshuagi/Stabl/pkg/errors"
)

// ArtificialType selects how decoy features are generated.
type ArtificialType string

const (
	// ArtificialRandomPermutation injects independently permuted copies of
	// real columns.
	ArtificialRandomPermutation ArtificialType = "random_permutation"

	// ArtificialNone disables decoy injection; a hard selection threshold
	// must be supplied instead.
	ArtificialNone ArtificialType = "none"
)

// Config holds every knob of a selection run. Config is a value type: the
// With* methods return modified copies, so a comparator (for example a pure
// stability-selection run at a fixed threshold) can be derived from the
// primary configuration without shared mutable state.
type Config struct {
	// LambdaGrid is the ordered grid of penalization strengths handed to
	// the base estimator, one fit per grid point per resample.
	LambdaGrid []float64

	// NBootstraps is the number of resamples per grid point.
	NBootstraps int

	// SampleFraction is the fraction of samples drawn into each resample.
	SampleFraction float64

	// Replace draws resamples with replacement when true.
	Replace bool

	// ArtificialType selects the decoy generation mode.
	ArtificialType ArtificialType

	// ArtificialProportion scales the number of injected decoys relative
	// to the number of real features.
	ArtificialProportion float64

	// FDRThresholdRange is the ordered grid of candidate stability-score
	// cutoffs scanned by the calibrator.
	FDRThresholdRange []float64

	// FDRTarget is the largest acceptable estimated FDR. When no scanned
	// cutoff achieves it the run completes with the most conservative set
	// and is flagged unreachable.
	FDRTarget float64

	// HardThreshold, when non-zero, bypasses FDR calibration entirely and
	// selects every real feature with stability score above it. Mutually
	// exclusive with artificial injection.
	HardThreshold float64

	// CoefTolerance is the magnitude below which a fitted coefficient
	// counts as zero.
	CoefTolerance float64

	// MaxResampleRetries bounds the redraws of a resample that lacks
	// outcome variance.
	MaxResampleRetries int

	// MaxFailureRate is the tolerated fraction of failed bootstrap fits
	// before the whole run aborts.
	MaxFailureRate float64

	// RandomState seeds the run. Every resample RNG is derived from it,
	// so results are reproducible under parallel execution.
	RandomState int64
}

// DefaultConfig mirrors the reference defaults: 1000 bootstraps on half
// subsamples without replacement, one decoy per real feature, cutoffs
// scanned from 0.30 to 0.99 in steps of 0.01.
func DefaultConfig() Config {
	return Config{
		LambdaGrid:           linspace(0.01, 1, 30),
		NBootstraps:          1000,
		SampleFraction:       0.5,
		Replace:              false,
		ArtificialType:       ArtificialRandomPermutation,
		ArtificialProportion: 1.0,
		FDRThresholdRange:    arange(0.3, 1.0, 0.01),
		FDRTarget:            1.0,
		CoefTolerance:        1e-5,
		MaxResampleRetries:   100,
		MaxFailureRate:       0.5,
		RandomState:          0,
	}
}

// WithLambdaGrid returns a copy with a new penalization grid.
func (c Config) WithLambdaGrid(grid []float64) Config {
	c.LambdaGrid = append([]float64(nil), grid...)
	return c
}

// WithBootstraps returns a copy with a new resample count.
func (c Config) WithBootstraps(n int) Config {
	c.NBootstraps = n
	return c
}

// WithSampleFraction returns a copy with a new subsample fraction.
func (c Config) WithSampleFraction(f float64) Config {
	c.SampleFraction = f
	return c
}

// WithReplace returns a copy toggling replacement draws.
func (c Config) WithReplace(replace bool) Config {
	c.Replace = replace
	return c
}

// WithArtificial returns a copy with a new decoy mode and proportion.
func (c Config) WithArtificial(t ArtificialType, proportion float64) Config {
	c.ArtificialType = t
	c.ArtificialProportion = proportion
	return c
}

// WithFDRThresholdRange returns a copy with a new cutoff scan grid.
func (c Config) WithFDRThresholdRange(grid []float64) Config {
	c.FDRThresholdRange = append([]float64(nil), grid...)
	return c
}

// WithFDRTarget returns a copy with a new FDR target.
func (c Config) WithFDRTarget(target float64) Config {
	c.FDRTarget = target
	return c
}

// WithHardThreshold returns a copy running in hard-threshold mode, with
// decoy injection disabled. This is how the pure stability-selection
// comparator is built from the primary configuration.
func (c Config) WithHardThreshold(threshold float64) Config {
	c.HardThreshold = threshold
	c.ArtificialType = ArtificialNone
	return c
}

// WithRandomState returns a copy with a new master seed.
func (c Config) WithRandomState(seed int64) Config {
	c.RandomState = seed
	return c
}

// Validate checks the configuration and fails fast with a
// ConfigurationError before any computation starts.
func (c Config) Validate() error {
	if c.NBootstraps <= 0 {
		return errors.NewConfigurationError("n_bootstraps", "must be a positive integer", c.NBootstraps)
	}
	if c.SampleFraction <= 0 || c.SampleFraction > 1 {
		return errors.NewConfigurationError("sample_fraction", "must be in (0, 1]", c.SampleFraction)
	}
	if len(c.LambdaGrid) == 0 {
		return errors.NewConfigurationError("lambda_grid", "must not be empty", c.LambdaGrid)
	}
	for _, l := range c.LambdaGrid {
		if l <= 0 {
			return errors.NewConfigurationError("lambda_grid", "strengths must be strictly positive", l)
		}
	}
	if c.CoefTolerance < 0 {
		return errors.NewConfigurationError("coef_tolerance", "must be non-negative", c.CoefTolerance)
	}
	if c.MaxResampleRetries <= 0 {
		return errors.NewConfigurationError("max_resample_retries", "must be positive", c.MaxResampleRetries)
	}
	if c.MaxFailureRate < 0 || c.MaxFailureRate > 1 {
		return errors.NewConfigurationError("max_failure_rate", "must be in [0, 1]", c.MaxFailureRate)
	}

	switch c.ArtificialType {
	case ArtificialRandomPermutation:
		if c.HardThreshold != 0 {
			return errors.NewConfigurationError("hard_threshold",
				"mutually exclusive with artificial feature injection", c.HardThreshold)
		}
		if c.ArtificialProportion <= 0 || c.ArtificialProportion > 1 {
			return errors.NewConfigurationError("artificial_proportion", "must be in (0, 1]", c.ArtificialProportion)
		}
		if len(c.FDRThresholdRange) == 0 {
			return errors.NewConfigurationError("fdr_threshold_range", "must not be empty", c.FDRThresholdRange)
		}
		for i, t := range c.FDRThresholdRange {
			if t <= 0 || t >= 1 {
				return errors.NewConfigurationError("fdr_threshold_range", "cutoffs must be in (0, 1)", t)
			}
			if i > 0 && t < c.FDRThresholdRange[i-1] {
				return errors.NewConfigurationError("fdr_threshold_range", "cutoffs must be non-decreasing", c.FDRThresholdRange)
			}
		}
		if c.FDRTarget <= 0 {
			return errors.NewConfigurationError("fdr_target", "must be positive", c.FDRTarget)
		}
	case ArtificialNone:
		if c.HardThreshold == 0 {
			return errors.NewConfigurationError("hard_threshold",
				"required when artificial feature injection is disabled", c.HardThreshold)
		}
		if c.HardThreshold <= 0 || c.HardThreshold >= 1 {
			return errors.NewConfigurationError("hard_threshold", "must be in (0, 1)", c.HardThreshold)
		}
	default:
		return errors.NewConfigurationError("artificial_type",
			`must be "random_permutation" or "none"`, string(c.ArtificialType))
	}

	return nil
}

func linspace(start, stop float64, num int) []float64 {
	out := make([]float64, num)
	if num == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(num-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func arange(start, stop, step float64) []float64 {
	var out []float64
	for v := start; v < stop-step/2; v += step {
		out = append(out, v)
	}
	return out
}
