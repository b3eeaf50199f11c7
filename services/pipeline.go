package services

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"covid-explorer/config"
	"covid-explorer/models"
	"covid-explorer/storage"
	"covid-explorer/utils"
)

// Chart file names written under the output directory.
const (
	TotalCasesFile        = "total_cases.png"
	NewCasesRollingFile   = "new_cases_rolling.png"
	FullyVaccinatedFile   = "fully_vaccinated.png"
	TotalCasesBarFile     = "total_cases_by_country.png"
	DeathRateBarFile      = "death_rate_by_country.png"
	CasesPerMillionMap    = "cases_per_million_map.html"
	CasesPerMillionMapPNG = "cases_per_million_map.png"
)

// ChartRenderer draws chart specifications. Implementations must be safe for
// concurrent use when charts write to distinct files.
type ChartRenderer interface {
	LineChart(ctx context.Context, chart models.LineChart) error
	BarChart(ctx context.Context, chart models.BarChart) error
	Choropleth(ctx context.Context, chart models.Choropleth) error
}

// Pipeline wires the loader, cleaner, aggregator and renderer together
type Pipeline struct {
	cfg        *config.Config
	source     storage.RecordSource
	renderer   ChartRenderer
	sink       storage.SnapshotSink // optional
	out        io.Writer
	logger     *utils.Logger
	cleaner    *DataCleaner
	aggregator *Aggregator
	insights   *InsightService
}

// NewPipeline creates a Pipeline. sink may be nil to skip the snapshot export.
func NewPipeline(cfg *config.Config, source storage.RecordSource, renderer ChartRenderer,
	sink storage.SnapshotSink, out io.Writer, logger *utils.Logger) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		source:     source,
		renderer:   renderer,
		sink:       sink,
		out:        out,
		logger:     logger,
		cleaner:    NewDataCleaner(cfg.Countries, logger.Named("cleaner")),
		aggregator: NewAggregator(cfg.RollingWindow, cfg.RollingMinPeriods),
		insights:   NewInsightService(logger.Named("insights")),
	}
}

// Run executes the whole analysis: exploration, cleaning, aggregation,
// the six charts and the snapshot export.
func (p *Pipeline) Run(ctx context.Context) error {
	raw, err := p.source.Load()
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	PrintExplorationReport(p.out, p.insights.Explore(raw))

	records, err := p.cleaner.Clean(raw)
	if err != nil {
		return fmt.Errorf("clean dataset: %w", err)
	}
	series := p.aggregator.CountrySeries(records, p.cfg.Countries)
	latest := LatestSnapshot(records)

	// The map covers every location, so it starts from a fresh, unfiltered load.
	worldRaw, err := p.source.Load()
	if err != nil {
		return fmt.Errorf("load worldwide dataset: %w", err)
	}
	world, err := ParseDates(worldRaw)
	if err != nil {
		return fmt.Errorf("parse worldwide dates: %w", err)
	}
	worldLatest := LatestSnapshot(world)
	p.logger.Info("Worldwide snapshot covers %d locations", len(worldLatest))

	if err := p.render(ctx, series, latest, worldLatest); err != nil {
		return err
	}

	return p.exportSnapshot(latest)
}

// Explore loads the dataset and prints the exploration overview only.
func (p *Pipeline) Explore(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := p.source.Load()
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	PrintExplorationReport(p.out, p.insights.Explore(raw))
	return nil
}

// Snapshot loads and cleans the dataset, then prints and exports the latest
// row of each selected country.
func (p *Pipeline) Snapshot(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := p.source.Load()
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	records, err := p.cleaner.Clean(raw)
	if err != nil {
		return fmt.Errorf("clean dataset: %w", err)
	}
	return p.exportSnapshot(LatestSnapshot(records))
}

func (p *Pipeline) exportSnapshot(latest []models.Record) error {
	PrintSnapshotTable(p.out, latest)
	if p.sink == nil {
		return nil
	}
	if err := p.sink.WriteSnapshot(latest); err != nil {
		return fmt.Errorf("export snapshot: %w", err)
	}
	return nil
}

// render draws the six charts, at most MaxConcurrency at a time.
func (p *Pipeline) render(ctx context.Context, series []models.Series, latest, worldLatest []models.Record) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.MaxConcurrency)

	for _, chart := range BuildLineCharts(series, p.aggregator) {
		chart := chart
		g.Go(func() error { return p.renderer.LineChart(gctx, chart) })
	}
	for _, chart := range BuildBarCharts(latest) {
		chart := chart
		g.Go(func() error { return p.renderer.BarChart(gctx, chart) })
	}

	worldMap := BuildChoropleth(worldLatest)
	if p.cfg.SnapshotMap {
		worldMap.Screenshot = CasesPerMillionMapPNG
	}
	g.Go(func() error { return p.renderer.Choropleth(gctx, worldMap) })

	if err := g.Wait(); err != nil {
		return fmt.Errorf("render charts: %w", err)
	}
	return nil
}

// BuildLineCharts returns the total cases, rolling new cases and fully
// vaccinated percentage charts, one line per series.
func BuildLineCharts(series []models.Series, agg *Aggregator) []models.LineChart {
	total := models.LineChart{
		File:   TotalCasesFile,
		Title:  "Total COVID-19 Cases Over Time",
		XLabel: "Date",
		YLabel: "Total Cases",
	}
	rolling := models.LineChart{
		File:   NewCasesRollingFile,
		Title:  fmt.Sprintf("Daily New COVID-19 Cases (%d-day Average)", agg.window),
		XLabel: "Date",
		YLabel: "New Cases",
	}
	vaccinated := models.LineChart{
		File:   FullyVaccinatedFile,
		Title:  "Percentage of Population Fully Vaccinated",
		XLabel: "Date",
		YLabel: "% Population Fully Vaccinated",
	}

	for _, s := range series {
		dates := s.Dates()
		total.Series = append(total.Series, models.LineSeries{
			Name:   s.Location,
			Dates:  dates,
			Values: s.Values(func(r models.Record) float64 { return r.TotalCases }),
		})
		rolling.Series = append(rolling.Series, models.LineSeries{
			Name:   s.Location,
			Dates:  dates,
			Values: agg.RollingNewCases(s),
		})
		vaccinated.Series = append(vaccinated.Series, models.LineSeries{
			Name:   s.Location,
			Dates:  dates,
			Values: s.Values(models.Record.FullyVaccinatedPercent),
		})
	}

	return []models.LineChart{total, rolling, vaccinated}
}

// BuildBarCharts returns the total cases and death rate comparisons of the latest snapshot.
func BuildBarCharts(latest []models.Record) []models.BarChart {
	cases := models.BarChart{
		File:   TotalCasesBarFile,
		Title:  "Total COVID-19 Cases by Country",
		XLabel: "location",
		YLabel: "total_cases",
	}
	deaths := models.BarChart{
		File:   DeathRateBarFile,
		Title:  "COVID-19 Death Rates by Country",
		XLabel: "location",
		YLabel: "death_rate",
	}
	for _, r := range latest {
		cases.Bars = append(cases.Bars, models.Bar{Label: r.Location, Value: r.TotalCases})
		deaths.Bars = append(deaths.Bars, models.Bar{Label: r.Location, Value: r.DeathRate})
	}
	return []models.BarChart{cases, deaths}
}

// BuildChoropleth maps total cases per million of every location by ISO code.
func BuildChoropleth(worldLatest []models.Record) models.Choropleth {
	chart := models.Choropleth{
		File:       CasesPerMillionMap,
		Title:      "Total COVID-19 Cases per Million People",
		SeriesName: "total_cases_per_million",
		Points:     make([]models.MapPoint, 0, len(worldLatest)),
	}
	for _, r := range worldLatest {
		chart.Points = append(chart.Points, models.MapPoint{
			ISOCode:  r.ISOCode,
			Location: r.Location,
			Value:    r.TotalCasesPerMillion,
		})
	}
	return chart
}
