package render

import (
	"context"
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"covid-explorer/models"
)

// plasma is the sequential Plasma color scale, low to high.
var plasma = []string{
	"#0d0887", "#46039f", "#7201a8", "#9c179e", "#bd3786",
	"#d8576b", "#ed7953", "#fb9f3a", "#fdca26", "#f0f921",
}

// regionNames maps ISO-3 codes to the region name used by the world map
// where it differs from the dataset's location name.
var regionNames = map[string]string{
	"ATF": "Fr. S. Antarctic Lands",
	"BIH": "Bosnia and Herz.",
	"CAF": "Central African Rep.",
	"CIV": "Côte d'Ivoire",
	"COD": "Dem. Rep. Congo",
	"COG": "Congo",
	"CZE": "Czech Rep.",
	"DOM": "Dominican Rep.",
	"ESH": "W. Sahara",
	"FLK": "Falkland Is.",
	"GNQ": "Eq. Guinea",
	"KOR": "Korea",
	"LAO": "Lao PDR",
	"MKD": "Macedonia",
	"PRK": "Dem. Rep. Korea",
	"PSE": "Palestine",
	"SLB": "Solomon Is.",
	"SSD": "S. Sudan",
	"SWZ": "Swaziland",
	"TLS": "Timor-Leste",
}

// tooltipFormatter shows the dataset's location rather than the map region name.
const tooltipFormatter = `function (p) {
	if (!p.data) { return p.name; }
	return p.data.location + '<br/>' + p.seriesName + ': ' + p.value.toLocaleString();
}`

// MapItem is one entry of the map series. Name must match a map region;
// Location is carried for the tooltip.
type MapItem struct {
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
	Location string  `json:"location"`
}

// Choropleth writes an interactive world map as HTML, coloring each country
// by value. Points without a country ISO-3 code (e.g. OWID aggregates) or
// with a non-finite value are skipped. When chart.Screenshot is set, the
// page is also captured as a PNG with a headless browser.
func (r *Renderer) Choropleth(ctx context.Context, chart models.Choropleth) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data := MapData(chart.Points)
	maxValue := 0.0
	for _, d := range data {
		if d.Value > maxValue {
			maxValue = d.Value
		}
	}

	mc := charts.NewMap()
	mc.RegisterMapType("world")
	mc.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: chart.Title,
			Width:     "1200px",
			Height:    "700px",
		}),
		charts.WithTitleOpts(opts.Title{Title: chart.Title}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:      true,
			Trigger:   "item",
			Formatter: opts.FuncOpts(tooltipFormatter),
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: true,
			Min:        0,
			Max:        float32(maxValue),
			InRange:    &opts.VisualMapInRange{Color: plasma},
		}),
	)
	mc.AddSeries(chart.SeriesName, nil)
	mc.MultiSeries[0].Data = data

	file, err := r.path(chart.File)
	if err != nil {
		return err
	}
	f, err := os.Create(file)
	if err != nil {
		return fmt.Errorf("failed to create map file: %w", err)
	}
	if err := mc.Render(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to render map '%s': %w", chart.Title, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close map file: %w", err)
	}
	r.logger.Info("Choropleth written to: %s (%d of %d countries)", file, len(data), len(chart.Points))

	if chart.Screenshot == "" {
		return nil
	}
	png, err := r.path(chart.Screenshot)
	if err != nil {
		return err
	}
	return r.SnapshotHTML(ctx, file, png)
}

// MapData converts points into map entries named after the map's regions.
func MapData(points []models.MapPoint) []MapItem {
	data := make([]MapItem, 0, len(points))
	for _, p := range points {
		if !isCountryCode(p.ISOCode) || !models.IsFinite(p.Value) {
			continue
		}
		data = append(data, MapItem{
			Name:     RegionName(p.ISOCode, p.Location),
			Value:    p.Value,
			Location: p.Location,
		})
	}
	return data
}

// RegionName resolves the map region for an ISO-3 code, falling back to the location name.
func RegionName(iso, location string) string {
	if name, ok := regionNames[iso]; ok {
		return name
	}
	return location
}

// isCountryCode reports whether code is a three-letter upper-case ISO code.
func isCountryCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}
