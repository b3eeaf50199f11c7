package services

import (
	"math"
	"sort"

	"covid-explorer/models"
)

// Aggregator slices cleaned records into per-country series and snapshots
type Aggregator struct {
	window     int
	minPeriods int
}

// NewAggregator creates an Aggregator using a trailing window of the given
// size. A rolling value is defined once minPeriods samples are available.
func NewAggregator(window, minPeriods int) *Aggregator {
	return &Aggregator{window: window, minPeriods: minPeriods}
}

// CountrySeries returns one series per country, in the order given, each
// sorted by ascending date. Countries without rows get an empty series.
func (a *Aggregator) CountrySeries(records []models.Record, countries []string) []models.Series {
	byLocation := make(map[string][]models.Record, len(countries))
	for _, r := range records {
		byLocation[r.Location] = append(byLocation[r.Location], r)
	}

	series := make([]models.Series, 0, len(countries))
	for _, country := range countries {
		rows := append([]models.Record(nil), byLocation[country]...)
		sortByDate(rows)
		series = append(series, models.Series{Location: country, Records: rows})
	}
	return series
}

// RollingNewCases applies the configured rolling mean to a series' new cases.
func (a *Aggregator) RollingNewCases(s models.Series) []float64 {
	return RollingMean(s.Values(func(r models.Record) float64 { return r.NewCases }), a.window, a.minPeriods)
}

// RollingMean computes a trailing mean over window samples. The output has
// the same length as values. NaN inputs are skipped; index i is NaN when
// its window holds fewer than minPeriods non-NaN samples.
func RollingMean(values []float64, window, minPeriods int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		var sum float64
		n := 0
		for _, v := range values[start : i+1] {
			if math.IsNaN(v) {
				continue
			}
			sum += v
			n++
		}
		if n < minPeriods || n == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(n)
	}
	return out
}

// LatestSnapshot returns the most recent record of every location. Rows are
// stable-sorted by date and the last row of each location is kept, so ties
// on the maximum date resolve to the later row in input order. The result is
// ordered by that sorted position. Rows without a location are ignored.
func LatestSnapshot(records []models.Record) []models.Record {
	sorted := append([]models.Record(nil), records...)
	sortByDate(sorted)

	seen := make(map[string]bool)
	latest := make([]models.Record, 0)
	for i := len(sorted) - 1; i >= 0; i-- {
		r := sorted[i]
		if r.Location == "" || seen[r.Location] {
			continue
		}
		seen[r.Location] = true
		latest = append(latest, r)
	}

	for i, j := 0, len(latest)-1; i < j; i, j = i+1, j-1 {
		latest[i], latest[j] = latest[j], latest[i]
	}
	return latest
}

func sortByDate(records []models.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})
}
