package stabl

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/joshuagi/Stabl/pkg/errors"
)

var (
	pathGrey   = color.RGBA{R: 0xB0, G: 0xB0, B: 0xB0, A: 0xFF}
	pathRed    = color.RGBA{R: 0xD6, G: 0x2E, B: 0x2E, A: 0xFF}
	pathBlue   = color.RGBA{R: 0x2E, G: 0x5C, B: 0xD6, A: 0xFF}
	cutoffGrey = color.RGBA{R: 0x40, G: 0x40, B: 0x40, A: 0xFF}
)

// SaveStabilityPath renders the selection-frequency path of every feature
// against the penalization grid: unselected real features in grey, selected
// ones in red, artificial features dotted, the cutoff as a dashed horizontal
// line.
func (s *Selector) SaveStabilityPath(filename string) error {
	mask, err := s.SupportMask()
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = "Stability path"
	p.X.Label.Text = "lambda"
	p.Y.Label.Text = "selection frequency"
	p.Y.Min, p.Y.Max = 0, 1

	addPath := func(scores []float64, c color.Color, dashes []vg.Length) error {
		pts := make(plotter.XYs, len(s.cfg.LambdaGrid))
		for l, lambda := range s.cfg.LambdaGrid {
			pts[l].X = lambda
			pts[l].Y = scores[l]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return errors.Wrap(err, "build path line")
		}
		line.Color = c
		line.Dashes = dashes
		p.Add(line)
		return nil
	}

	row := make([]float64, len(s.cfg.LambdaGrid))
	for j := 0; j < s.nFeatures; j++ {
		for l := range row {
			row[l] = s.scores.At(j, l)
		}
		c := color.Color(pathGrey)
		if mask[j] {
			c = pathRed
		}
		if err := addPath(row, c, nil); err != nil {
			return err
		}
	}
	if s.artificialScores != nil {
		nArt, _ := s.artificialScores.Dims()
		for j := 0; j < nArt; j++ {
			for l := range row {
				row[l] = s.artificialScores.At(j, l)
			}
			if err := addPath(row, pathBlue, []vg.Length{vg.Points(1), vg.Points(3)}); err != nil {
				return err
			}
		}
	}

	cutoffLine, err := plotter.NewLine(plotter.XYs{
		{X: s.cfg.LambdaGrid[0], Y: s.cutoff},
		{X: s.cfg.LambdaGrid[len(s.cfg.LambdaGrid)-1], Y: s.cutoff},
	})
	if err != nil {
		return errors.Wrap(err, "build cutoff line")
	}
	cutoffLine.Color = cutoffGrey
	cutoffLine.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(cutoffLine)

	return errors.Wrap(p.Save(8*vg.Inch, 5*vg.Inch, filename), "save stability path plot")
}

// SaveFDRProfile renders the estimated false discovery proportion across the
// scanned cutoffs, with the chosen cutoff marked.
func (s *Selector) SaveFDRProfile(filename string) error {
	if !s.state.IsFitted() {
		return errors.NewNotFittedError("Selector", "SaveFDRProfile")
	}
	if s.fdrs == nil {
		return errors.NewValueError("Selector.SaveFDRProfile",
			"no FDR profile: selector ran in hard-threshold mode")
	}

	p := plot.New()
	p.Title.Text = "FDR estimate"
	p.X.Label.Text = "stability cutoff"
	p.Y.Label.Text = "estimated FDP"

	pts := make(plotter.XYs, len(s.fdrs))
	for k, t := range s.cfg.FDRThresholdRange {
		pts[k].X = t
		pts[k].Y = s.fdrs[k]
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return errors.Wrap(err, "build fdr line")
	}
	line.Color = pathBlue
	p.Add(line)

	marker, err := plotter.NewLine(plotter.XYs{
		{X: s.cutoff, Y: 0},
		{X: s.cutoff, Y: s.minFDR},
	})
	if err != nil {
		return errors.Wrap(err, "build cutoff marker")
	}
	marker.Color = pathRed
	marker.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(marker)

	return errors.Wrap(p.Save(8*vg.Inch, 5*vg.Inch, filename), "save fdr profile plot")
}
