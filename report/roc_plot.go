// Package report renders run artifacts: the ROC curve of the blended
// out-of-fold predictions and the feature-importance ranking.
package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/riskfold/riskfold/metrics"
	"github.com/riskfold/riskfold/pkg/errors"
)

// SaveROCPlot renders the ROC curve to an image file. The format follows
// the path extension (png, svg, pdf). auc is drawn into the legend.
func SaveROCPlot(points []metrics.ROCPoint, auc float64, path string) error {
	if len(points) == 0 {
		return errors.NewValueError("SaveROCPlot", "no ROC points to plot")
	}

	p := plot.New()
	p.Title.Text = "Receiver Operating Characteristic"
	p.X.Label.Text = "False Positive Rate"
	p.Y.Label.Text = "True Positive Rate"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1
	p.Add(plotter.NewGrid())

	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X = pt.FPR
		xys[i].Y = pt.TPR
	}
	curve, err := plotter.NewLine(xys)
	if err != nil {
		return errors.Wrap(err, "building ROC line")
	}
	curve.Width = vg.Points(1.5)

	chance, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 1}})
	if err != nil {
		return errors.Wrap(err, "building chance line")
	}
	chance.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}

	p.Add(curve, chance)
	p.Legend.Add(fmt.Sprintf("blend (AUC = %.4f)", auc), curve)
	p.Legend.Add("chance", chance)
	p.Legend.Top = false
	p.Legend.Left = false
	p.Legend.Padding = vg.Points(2)

	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "saving ROC plot to %s", path)
	}
	return nil
}

// SaveImportancePlot renders the feature-importance ranking as a horizontal
// bar chart, most important feature at the top.
func SaveImportancePlot(names []string, gains []float64, path string) error {
	if len(names) != len(gains) {
		return errors.NewDimensionError("SaveImportancePlot", len(names), len(gains), 0)
	}
	if len(names) == 0 {
		return errors.NewValueError("SaveImportancePlot", "no features to plot")
	}

	p := plot.New()
	p.Title.Text = "Feature Importance (normalized gain)"
	p.X.Label.Text = "Gain"

	// Reversed so the top bar is the most important feature.
	values := make(plotter.Values, len(gains))
	labels := make([]string, len(names))
	for i := range gains {
		values[i] = gains[len(gains)-1-i]
		labels[i] = names[len(names)-1-i]
	}

	bars, err := plotter.NewBarChart(values, vg.Points(12))
	if err != nil {
		return errors.Wrap(err, "building importance bars")
	}
	bars.Horizontal = true
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalY(labels...)
	p.Y.Tick.Label.XAlign = draw.XRight

	height := vg.Points(float64(len(names))*18 + 60)
	if err := p.Save(6*vg.Inch, height, path); err != nil {
		return errors.Wrapf(err, "saving importance plot to %s", path)
	}
	return nil
}
