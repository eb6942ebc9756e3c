package stabl

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/joshuagi/Stabl/pkg/errors"
)

// ExportStabilityScores writes the full selection-frequency table to w: one
// row per real feature, one column per grid point.
func (s *Selector) ExportStabilityScores(w *csv.Writer) error {
	if !s.state.IsFitted() {
		return errors.NewNotFittedError("Selector", "ExportStabilityScores")
	}

	header := make([]string, 1+len(s.cfg.LambdaGrid))
	header[0] = "feature"
	for l, lambda := range s.cfg.LambdaGrid {
		header[l+1] = strconv.FormatFloat(lambda, 'g', -1, 64)
	}
	if err := w.Write(header); err != nil {
		return errors.Wrap(err, "write stability scores header")
	}

	record := make([]string, len(header))
	for j := 0; j < s.nFeatures; j++ {
		record[0] = s.featureNames[j]
		for l := range s.cfg.LambdaGrid {
			record[l+1] = strconv.FormatFloat(s.scores.At(j, l), 'g', -1, 64)
		}
		if err := w.Write(record); err != nil {
			return errors.Wrap(err, "write stability scores row")
		}
	}
	w.Flush()
	return errors.Wrap(w.Error(), "flush stability scores")
}

// ExportMaxScores writes each feature's stability score and selection flag,
// sorted by score descending.
func (s *Selector) ExportMaxScores(w *csv.Writer) error {
	maxScores, err := s.MaxStabilityScores()
	if err != nil {
		return err
	}
	mask, err := s.SupportMask()
	if err != nil {
		return err
	}

	order := make([]int, len(maxScores))
	for j := range order {
		order[j] = j
	}
	sort.SliceStable(order, func(a, b int) bool {
		return maxScores[order[a]] > maxScores[order[b]]
	})

	if err := w.Write([]string{"feature", "max_score", "selected"}); err != nil {
		return errors.Wrap(err, "write max scores header")
	}
	for _, j := range order {
		rec := []string{
			s.featureNames[j],
			strconv.FormatFloat(maxScores[j], 'g', -1, 64),
			strconv.FormatBool(mask[j]),
		}
		if err := w.Write(rec); err != nil {
			return errors.Wrap(err, "write max scores row")
		}
	}
	w.Flush()
	return errors.Wrap(w.Error(), "flush max scores")
}

// ExportArtificialScores writes each decoy feature's stability score, the
// null distribution the calibration compares against. Errors in
// hard-threshold mode, where no decoys exist.
func (s *Selector) ExportArtificialScores(w *csv.Writer) error {
	if !s.state.IsFitted() {
		return errors.NewNotFittedError("Selector", "ExportArtificialScores")
	}
	if s.artificialScores == nil {
		return errors.NewValueError("Selector.ExportArtificialScores",
			"no artificial features: selector ran in hard-threshold mode")
	}

	nArt, _ := s.artificialScores.Dims()
	names := artificialNames(nArt)
	maxScores := maxPerRow(s.artificialScores)

	if err := w.Write([]string{"feature", "max_score"}); err != nil {
		return errors.Wrap(err, "write artificial scores header")
	}
	for j, name := range names {
		rec := []string{name, strconv.FormatFloat(maxScores[j], 'g', -1, 64)}
		if err := w.Write(rec); err != nil {
			return errors.Wrap(err, "write artificial scores row")
		}
	}
	w.Flush()
	return errors.Wrap(w.Error(), "flush artificial scores")
}

// ExportFDRProfile writes the threshold scan: one row per scanned cutoff with
// its estimated false discovery proportion. In hard-threshold mode there is
// no scan and the export is an error.
func (s *Selector) ExportFDRProfile(w *csv.Writer) error {
	if !s.state.IsFitted() {
		return errors.NewNotFittedError("Selector", "ExportFDRProfile")
	}
	if s.fdrs == nil {
		return errors.NewValueError("Selector.ExportFDRProfile",
			"no FDR profile: selector ran in hard-threshold mode")
	}

	if err := w.Write([]string{"threshold", "fdp"}); err != nil {
		return errors.Wrap(err, "write fdr profile header")
	}
	for k, t := range s.cfg.FDRThresholdRange {
		rec := []string{
			strconv.FormatFloat(t, 'g', -1, 64),
			strconv.FormatFloat(s.fdrs[k], 'g', -1, 64),
		}
		if err := w.Write(rec); err != nil {
			return errors.Wrap(err, "write fdr profile row")
		}
	}
	w.Flush()
	return errors.Wrap(w.Error(), "flush fdr profile")
}

// SaveResults writes the full result bundle into dir, creating it if needed:
// stability_scores.csv, max_scores.csv, selected_features.csv and, when FDR
// calibration ran, fdr_profile.csv.
func (s *Selector) SaveResults(dir string) error {
	if !s.state.IsFitted() {
		return errors.NewNotFittedError("Selector", "SaveResults")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create results directory")
	}

	if err := s.saveCSV(filepath.Join(dir, "stability_scores.csv"), s.ExportStabilityScores); err != nil {
		return err
	}
	if err := s.saveCSV(filepath.Join(dir, "max_scores.csv"), s.ExportMaxScores); err != nil {
		return err
	}
	if s.fdrs != nil {
		if err := s.saveCSV(filepath.Join(dir, "fdr_profile.csv"), s.ExportFDRProfile); err != nil {
			return err
		}
		if err := s.saveCSV(filepath.Join(dir, "artificial_scores.csv"), s.ExportArtificialScores); err != nil {
			return err
		}
	}

	selected, err := s.SelectedFeatures()
	if err != nil {
		return err
	}
	return s.saveCSV(filepath.Join(dir, "selected_features.csv"), func(w *csv.Writer) error {
		if err := w.Write([]string{"feature"}); err != nil {
			return errors.Wrap(err, "write selected features header")
		}
		for _, name := range selected {
			if err := w.Write([]string{name}); err != nil {
				return errors.Wrap(err, "write selected features row")
			}
		}
		w.Flush()
		return errors.Wrap(w.Error(), "flush selected features")
	})
}

func (s *Selector) saveCSV(path string, export func(*csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", filepath.Base(path))
	}
	defer f.Close()

	if err := export(csv.NewWriter(f)); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "close %s", filepath.Base(path))
	}
	return nil
}
