package stabl

import "math/rand/v2"

// SeedFor derives the RNG seed of one resample from the run's master seed,
// the grid (or fold) index and the resample index. The derivation is a
// SplitMix64 mix, so seeds are decorrelated and every resample draws an
// independent stream regardless of worker scheduling.
func SeedFor(master int64, gridIndex, resampleIndex int) uint64 {
	z := uint64(master)
	z ^= uint64(gridIndex)*0x9E3779B97F4A7C15 + uint64(resampleIndex)*0xBF58476D1CE4E5B9
	z += 0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// newRNG builds a PCG generator from a derived seed.
func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xDA942042E4DD58B5))
}
