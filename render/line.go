package render

import (
	"context"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"covid-explorer/models"
)

// LineChart draws one line per series against a date axis and saves it as an image.
// NaN and infinite points are left out, breaking the line at the gap.
func (r *Renderer) LineChart(ctx context.Context, chart models.LineChart) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = chart.Title
	p.X.Label.Text = chart.XLabel
	p.Y.Label.Text = chart.YLabel
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	for i, s := range chart.Series {
		segments := finiteSegments(s)
		if len(segments) == 0 {
			r.logger.Debug("Chart '%s': series '%s' has no drawable points", chart.Title, s.Name)
			continue
		}

		color := plotutil.Color(i)
		for j, seg := range segments {
			line, err := plotter.NewLine(seg)
			if err != nil {
				return fmt.Errorf("failed to build line for '%s': %w", s.Name, err)
			}
			line.Color = color
			line.Width = vg.Points(1.5)
			p.Add(line)
			if j == 0 {
				p.Legend.Add(s.Name, line)
			}
		}
	}

	file, err := r.path(chart.File)
	if err != nil {
		return err
	}
	if err := p.Save(r.width, r.height, file); err != nil {
		return fmt.Errorf("failed to save chart '%s': %w", chart.Title, err)
	}

	r.logger.Info("Line chart written to: %s (%d series)", file, len(chart.Series))
	return nil
}

// finiteSegments splits a series into runs of consecutive finite points,
// with dates as Unix seconds for plot.TimeTicks.
func finiteSegments(s models.LineSeries) []plotter.XYs {
	var segments []plotter.XYs
	var current plotter.XYs
	for i, v := range s.Values {
		if i >= len(s.Dates) {
			break
		}
		if !models.IsFinite(v) {
			if len(current) > 0 {
				segments = append(segments, current)
				current = nil
			}
			continue
		}
		current = append(current, plotter.XY{X: float64(s.Dates[i].Unix()), Y: v})
	}
	if len(current) > 0 {
		segments = append(segments, current)
	}
	return segments
}
