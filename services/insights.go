package services

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"covid-explorer/models"
	"covid-explorer/utils"
)

const headRows = 5

// numericColumns maps column names to their raw field, in report order.
var numericColumns = []struct {
	name  string
	field func(models.RawRecord) float64
}{
	{"total_cases", func(r models.RawRecord) float64 { return r.TotalCases }},
	{"new_cases", func(r models.RawRecord) float64 { return r.NewCases }},
	{"total_deaths", func(r models.RawRecord) float64 { return r.TotalDeaths }},
	{"new_deaths", func(r models.RawRecord) float64 { return r.NewDeaths }},
	{"total_vaccinations", func(r models.RawRecord) float64 { return r.TotalVaccinations }},
	{"people_vaccinated", func(r models.RawRecord) float64 { return r.PeopleVaccinated }},
	{"people_fully_vaccinated", func(r models.RawRecord) float64 { return r.PeopleFullyVaccinated }},
	{"population", func(r models.RawRecord) float64 { return r.Population }},
	{"total_cases_per_million", func(r models.RawRecord) float64 { return r.TotalCasesPerMillion }},
}

// InsightService computes the exploration overview of the raw dataset
type InsightService struct {
	logger *utils.Logger
}

// NewInsightService creates a new InsightService
func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Explore summarises shape, per-column statistics and missing values of raw.
func (s *InsightService) Explore(raw *models.RawDataset) *models.ExplorationReport {
	report := &models.ExplorationReport{
		Rows:          len(raw.Records),
		Columns:       len(raw.Header),
		MissingCounts: make(map[string]int),
	}

	if len(raw.Records) == 0 {
		s.logger.Warn("No rows to explore")
		return report
	}

	locations := make(map[string]struct{})
	for _, r := range raw.Records {
		if r.Location != "" {
			locations[r.Location] = struct{}{}
		}
		// ISO dates order lexically
		if r.Date != "" && (report.FirstDate == "" || r.Date < report.FirstDate) {
			report.FirstDate = r.Date
		}
		if r.Date > report.LastDate {
			report.LastDate = r.Date
		}
		if r.Location == "" {
			report.MissingCounts["location"]++
		}
		if r.ISOCode == "" {
			report.MissingCounts["iso_code"]++
		}
		if r.Date == "" {
			report.MissingCounts["date"]++
		}
	}
	report.Locations = len(locations)
	report.MissingColumns = append(report.MissingColumns, "date", "location", "iso_code")

	for _, col := range numericColumns {
		values := make([]float64, 0, len(raw.Records))
		for _, r := range raw.Records {
			v := col.field(r)
			if math.IsNaN(v) {
				report.MissingCounts[col.name]++
				continue
			}
			values = append(values, v)
		}
		report.MissingColumns = append(report.MissingColumns, col.name)
		report.Summaries = append(report.Summaries, Describe(col.name, values))
	}

	n := headRows
	if len(raw.Records) < n {
		n = len(raw.Records)
	}
	report.Head = append([]models.RawRecord(nil), raw.Records[:n]...)

	s.logger.Debug("Explored %d rows across %d locations", report.Rows, report.Locations)
	return report
}

// Describe computes count, mean, sample standard deviation, min, quartiles
// and max of values. The input slice is not modified.
func Describe(column string, values []float64) models.ColumnSummary {
	summary := models.ColumnSummary{Column: column, Count: len(values)}
	if len(values) == 0 {
		nan := math.NaN()
		summary.Mean, summary.Std, summary.Min, summary.Max = nan, nan, nan, nan
		summary.Q25, summary.Median, summary.Q75 = nan, nan, nan
		return summary
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	summary.Mean, summary.Std = stat.MeanStdDev(sorted, nil)
	summary.Min = floats.Min(sorted)
	summary.Max = floats.Max(sorted)
	summary.Q25 = stat.Quantile(0.25, stat.LinInterp, sorted, nil)
	summary.Median = stat.Quantile(0.5, stat.LinInterp, sorted, nil)
	summary.Q75 = stat.Quantile(0.75, stat.LinInterp, sorted, nil)
	return summary
}
