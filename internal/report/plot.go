package report

import (
	"image/color"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/YuminosukeSato/scibench/data"
	"github.com/YuminosukeSato/scibench/metrics"
	"github.com/YuminosukeSato/scibench/pkg/errors"
)

const plotSize = 5 * vg.Inch

// SavePlot renders the test set of r to path. The image format follows the
// file extension (png, svg, pdf, ...). Regression draws predicted against
// actual values with the identity line; binary draws the ROC curve.
func SavePlot(path string, r *Result) error {
	var (
		p   *plot.Plot
		err error
	)
	if r.Task == data.TaskBinary {
		p, err = rocPlot(r)
	} else {
		p, err = scatterPlot(r)
	}
	if err != nil {
		return err
	}
	if err := p.Save(plotSize, plotSize, path); err != nil {
		return errors.Wrapf(err, "save plot %s", path)
	}
	return nil
}

func scatterPlot(r *Result) (*plot.Plot, error) {
	if len(r.TestTruth) == 0 || len(r.TestTruth) != len(r.TestPredicted) {
		return nil, errors.NewValueError("SavePlot", "no test predictions to plot")
	}

	p := plot.New()
	p.Title.Text = r.Name() + ": predicted vs actual"
	p.X.Label.Text = "actual"
	p.Y.Label.Text = "predicted"

	pts := make(plotter.XYs, 0, len(r.TestTruth))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, t := range r.TestTruth {
		v := r.TestPredicted[i]
		if math.IsNaN(t) || math.IsNaN(v) {
			continue
		}
		pts = append(pts, plotter.XY{X: t, Y: v})
		lo = math.Min(lo, math.Min(t, v))
		hi = math.Max(hi, math.Max(t, v))
	}
	if len(pts) == 0 {
		return nil, errors.NewValueError("SavePlot", "every test prediction is NaN")
	}

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, errors.Wrap(err, "scatter")
	}
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	s.GlyphStyle.Radius = vg.Points(2)

	identity, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return nil, errors.Wrap(err, "identity line")
	}
	identity.LineStyle.Color = color.RGBA{R: 200, A: 255}
	identity.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}

	p.Add(s, identity)
	return p, nil
}

func rocPlot(r *Result) (*plot.Plot, error) {
	if len(r.TestTruth) == 0 || len(r.TestTruth) != len(r.TestScores) {
		return nil, errors.NewValueError("SavePlot", "no test scores to plot")
	}

	n := len(r.TestTruth)
	fpr, tpr, _, err := metrics.ROCCurve(
		mat.NewVecDense(n, append([]float64(nil), r.TestTruth...)),
		mat.NewVecDense(n, append([]float64(nil), r.TestScores...)),
	)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = r.Name() + ": ROC"
	p.X.Label.Text = "false positive rate"
	p.Y.Label.Text = "true positive rate"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1

	pts := make(plotter.XYs, len(fpr))
	for i := range fpr {
		pts[i] = plotter.XY{X: fpr[i], Y: tpr[i]}
	}
	curve, err := plotter.NewLine(pts)
	if err != nil {
		return nil, errors.Wrap(err, "roc line")
	}
	curve.LineStyle.Width = vg.Points(2)

	chance, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 1}})
	if err != nil {
		return nil, errors.Wrap(err, "chance line")
	}
	chance.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}

	p.Add(curve, chance)
	p.Legend.Add("ROC", curve)
	p.Legend.Top = false
	p.Legend.Left = false
	return p, nil
}
