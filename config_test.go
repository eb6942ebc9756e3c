package stabl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stablerrors "github.com/joshuagi/Stabl/pkg/errors"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestConfigWithMethodsDoNotMutateReceiver(t *testing.T) {
	base := DefaultConfig()
	_ = base.WithBootstraps(7).WithSampleFraction(0.9).WithRandomState(42)

	assert.Equal(t, DefaultConfig().NBootstraps, base.NBootstraps)
	assert.Equal(t, DefaultConfig().SampleFraction, base.SampleFraction)
	assert.Equal(t, DefaultConfig().RandomState, base.RandomState)
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"empty lambda grid", DefaultConfig().WithLambdaGrid(nil)},
		{"zero bootstraps", DefaultConfig().WithBootstraps(0)},
		{"fraction above one", DefaultConfig().WithSampleFraction(1.5)},
		{"fraction zero", DefaultConfig().WithSampleFraction(0)},
		{"negative fdr target", DefaultConfig().WithFDRTarget(-0.1)},
		{"empty threshold range", DefaultConfig().WithFDRThresholdRange(nil)},
		{"artificial proportion zero", DefaultConfig().WithArtificial(ArtificialRandomPermutation, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			require.Error(t, err)

			var cfgErr *stablerrors.ConfigurationError
			assert.True(t, stablerrors.As(err, &cfgErr), "want ConfigurationError, got %v", err)
		})
	}
}

func TestConfigModesAreMutuallyExclusive(t *testing.T) {
	// Forcing both a hard threshold and artificial injection must fail
	// validation, whichever order the options are applied in.
	cfg := DefaultConfig().WithHardThreshold(0.5)
	cfg.ArtificialType = ArtificialRandomPermutation
	cfg.ArtificialProportion = 1.0

	var cfgErr *stablerrors.ConfigurationError
	require.True(t, stablerrors.As(cfg.Validate(), &cfgErr))

	cfg = DefaultConfig()
	cfg.HardThreshold = 0.5
	require.True(t, stablerrors.As(cfg.Validate(), &cfgErr))
}

func TestWithHardThresholdDisablesArtificial(t *testing.T) {
	cfg := DefaultConfig().WithHardThreshold(0.5)
	assert.Equal(t, ArtificialNone, cfg.ArtificialType)
	require.NoError(t, cfg.Validate())
}

func TestLinspaceAndArange(t *testing.T) {
	grid := linspace(0, 1, 5)
	require.Len(t, grid, 5)
	assert.InDelta(t, 0, grid[0], 1e-12)
	assert.InDelta(t, 0.25, grid[1], 1e-12)
	assert.InDelta(t, 1, grid[4], 1e-12)

	thresholds := arange(0.3, 0.6, 0.1)
	require.Len(t, thresholds, 3)
	assert.InDelta(t, 0.3, thresholds[0], 1e-9)
	assert.InDelta(t, 0.5, thresholds[2], 1e-9)
}
