package render

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"covid-explorer/models"
)

// BarChart draws one bar per label and saves it as an image.
// Non-finite values are drawn as empty bars.
func (r *Renderer) BarChart(ctx context.Context, chart models.BarChart) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = chart.Title
	p.X.Label.Text = chart.XLabel
	p.Y.Label.Text = chart.YLabel
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	values := make(plotter.Values, len(chart.Bars))
	labels := make([]string, len(chart.Bars))
	for i, b := range chart.Bars {
		labels[i] = b.Label
		if !models.IsFinite(b.Value) {
			r.logger.Warn("Chart '%s': value for '%s' is %v, drawing an empty bar", chart.Title, b.Label, b.Value)
			continue
		}
		values[i] = b.Value
	}

	if len(values) > 0 {
		bars, err := plotter.NewBarChart(values, vg.Points(40))
		if err != nil {
			return fmt.Errorf("failed to build bars for '%s': %w", chart.Title, err)
		}
		bars.Color = plotutil.Color(0)
		bars.LineStyle.Width = vg.Length(0)
		p.Add(bars)
		p.NominalX(labels...)
	}
	p.Add(plotter.NewGrid())

	file, err := r.path(chart.File)
	if err != nil {
		return err
	}
	if err := p.Save(r.width, r.height, file); err != nil {
		return fmt.Errorf("failed to save chart '%s': %w", chart.Title, err)
	}

	r.logger.Info("Bar chart written to: %s (%d bars)", file, len(chart.Bars))
	return nil
}
