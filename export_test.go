package stabl

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/joshuagi/Stabl/linear"
)

func fittedSelector(t *testing.T) *Selector {
	t.Helper()
	X, y := signalData(100, 20, 7)
	sel := NewSelector(linear.NewLasso(), testConfig())
	if err := sel.Fit(X, y, nil); err != nil {
		t.Fatal(err)
	}
	return sel
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return records
}

func TestSaveResultsWritesBundle(t *testing.T) {
	sel := fittedSelector(t)
	dir := t.TempDir()

	if err := sel.SaveResults(dir); err != nil {
		t.Fatal(err)
	}

	scores := readCSV(t, filepath.Join(dir, "stability_scores.csv"))
	if len(scores) != 21 { // header + 20 features
		t.Fatalf("stability_scores.csv has %d rows, want 21", len(scores))
	}
	if len(scores[0]) != 1+len(sel.Config().LambdaGrid) {
		t.Fatalf("header has %d columns, want %d", len(scores[0]), 1+len(sel.Config().LambdaGrid))
	}

	maxScores := readCSV(t, filepath.Join(dir, "max_scores.csv"))
	if len(maxScores) != 21 {
		t.Fatalf("max_scores.csv has %d rows, want 21", len(maxScores))
	}
	// Sorted descending by score.
	prev := 2.0
	for _, rec := range maxScores[1:] {
		v, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			t.Fatal(err)
		}
		if v > prev {
			t.Fatal("max_scores.csv not sorted descending")
		}
		prev = v
	}

	artificial := readCSV(t, filepath.Join(dir, "artificial_scores.csv"))
	if len(artificial) != 21 { // header + 20 decoys at proportion 1.0
		t.Fatalf("artificial_scores.csv has %d rows, want 21", len(artificial))
	}

	profile := readCSV(t, filepath.Join(dir, "fdr_profile.csv"))
	if len(profile) != 1+len(sel.Config().FDRThresholdRange) {
		t.Fatalf("fdr_profile.csv has %d rows, want %d", len(profile), 1+len(sel.Config().FDRThresholdRange))
	}

	selected := readCSV(t, filepath.Join(dir, "selected_features.csv"))
	want, err := sel.SelectedFeatures()
	if err != nil {
		t.Fatal(err)
	}
	if len(selected) != 1+len(want) {
		t.Fatalf("selected_features.csv has %d rows, want %d", len(selected), 1+len(want))
	}
}

func TestSaveResultsHardThresholdSkipsProfile(t *testing.T) {
	X, y := signalData(100, 20, 7)
	sel := NewSelector(linear.NewLasso(), testConfig().WithHardThreshold(0.8))
	if err := sel.Fit(X, y, nil); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	if err := sel.SaveResults(dir); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "fdr_profile.csv")); !os.IsNotExist(err) {
		t.Fatal("fdr_profile.csv written in hard-threshold mode")
	}
}

func TestExportsRequireFit(t *testing.T) {
	sel := NewSelector(linear.NewLasso(), testConfig())
	if err := sel.SaveResults(t.TempDir()); err == nil {
		t.Fatal("SaveResults on unfitted selector must fail")
	}
}

func TestSavePlots(t *testing.T) {
	sel := fittedSelector(t)
	dir := t.TempDir()

	pathFile := filepath.Join(dir, "path.png")
	if err := sel.SaveStabilityPath(pathFile); err != nil {
		t.Fatal(err)
	}
	if info, err := os.Stat(pathFile); err != nil || info.Size() == 0 {
		t.Fatal("stability path plot missing or empty")
	}

	profileFile := filepath.Join(dir, "fdr.png")
	if err := sel.SaveFDRProfile(profileFile); err != nil {
		t.Fatal(err)
	}
	if info, err := os.Stat(profileFile); err != nil || info.Size() == 0 {
		t.Fatal("fdr profile plot missing or empty")
	}
}
