package stabl

// fdrResult is the outcome of one calibration scan.
type fdrResult struct {
	// fdps holds the estimated false discovery proportion at each scanned
	// cutoff, aligned with the threshold grid.
	fdps []float64

	minFDR      float64
	cutoff      float64
	unreachable bool
}

// calibrateFDR scans the cutoff grid and estimates, at each cutoff t, the
// false discovery proportion
//
//	FDP(t) = (#artificial(score > t) / proportion + 1) / max(1, #real(score > t))
//
// The artificial count is scaled by the injection proportion so it estimates
// the expected false positives among the real features; the +1 keeps the
// estimate conservative when no decoy survives. The chosen cutoff is the
// smallest threshold attaining the minimum FDP. When even the minimum
// exceeds target, the cutoff is forced to 1.0 (empty under the strict
// comparison) and the run is flagged.
func calibrateFDR(maxReal, maxArtificial, thresholds []float64, proportion, target float64) fdrResult {
	fdps := make([]float64, len(thresholds))

	for k, t := range thresholds {
		var nArt, nReal int
		for _, s := range maxArtificial {
			if s > t {
				nArt++
			}
		}
		for _, s := range maxReal {
			if s > t {
				nReal++
			}
		}

		num := float64(nArt)/proportion + 1
		den := float64(nReal)
		if den < 1 {
			den = 1
		}
		fdps[k] = num / den
	}

	best := 0
	for k := 1; k < len(fdps); k++ {
		if fdps[k] < fdps[best] {
			best = k
		}
	}

	res := fdrResult{
		fdps:   fdps,
		minFDR: fdps[best],
		cutoff: thresholds[best],
	}
	if res.minFDR > target {
		res.cutoff = 1
		res.unreachable = true
	}
	return res
}
