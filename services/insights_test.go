package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covid-explorer/models"
)

func TestExplore(t *testing.T) {
	raw := parseCSV(t,
		"2021-01-02,Kenya,KEN,10,1,0,0,,,,50000000,0.2",
		"2021-01-01,Kenya,KEN,9,,0,0,,,,50000000,0.18",
		"2021-01-03,India,IND,30,3,1,0,,,,1380000000,",
		"2021-01-03,World,,40,4,1,0,,,,,",
		"2021-01-04,India,IND,33,3,1,0,,,,1380000000,0.03",
		"2021-01-05,India,IND,35,2,1,0,,,,1380000000,0.03",
	)

	report := NewInsightService(testLogger()).Explore(raw)

	assert.Equal(t, 6, report.Rows)
	assert.Equal(t, 12, report.Columns)
	assert.Equal(t, 3, report.Locations)
	assert.Equal(t, "2021-01-01", report.FirstDate)
	assert.Equal(t, "2021-01-05", report.LastDate)
	assert.Len(t, report.Head, 5)
	assert.Equal(t, "2021-01-02", report.Head[0].Date)

	assert.Equal(t, 1, report.MissingCounts["new_cases"])
	assert.Equal(t, 6, report.MissingCounts["total_vaccinations"])
	assert.Equal(t, 1, report.MissingCounts["population"])
	assert.Equal(t, 2, report.MissingCounts["total_cases_per_million"])
	assert.Equal(t, 1, report.MissingCounts["iso_code"])
	assert.Equal(t, 0, report.MissingCounts["date"])
	assert.Contains(t, report.MissingColumns, "people_fully_vaccinated")

	require.NotEmpty(t, report.Summaries)
	cases := report.Summaries[0]
	assert.Equal(t, "total_cases", cases.Column)
	assert.Equal(t, 6, cases.Count)
	assert.InDelta(t, 157.0/6, cases.Mean, 1e-9)
	assert.Equal(t, 9.0, cases.Min)
	assert.Equal(t, 40.0, cases.Max)
}

func TestExploreEmpty(t *testing.T) {
	report := NewInsightService(testLogger()).Explore(&models.RawDataset{Header: []string{"date"}})

	assert.Equal(t, 0, report.Rows)
	assert.Equal(t, 1, report.Columns)
	assert.Empty(t, report.Summaries)
	assert.Empty(t, report.Head)
}

func TestDescribe(t *testing.T) {
	values := []float64{4, 1, 3, 2}

	s := Describe("x", values)
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 2.5, s.Mean)
	assert.InDelta(t, math.Sqrt(5.0/3), s.Std, 1e-12)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 4.0, s.Max)
	assert.True(t, s.Q25 <= s.Median && s.Median <= s.Q75)
	assert.Equal(t, []float64{4, 1, 3, 2}, values, "input order preserved")
}

func TestDescribeNoValues(t *testing.T) {
	s := Describe("x", nil)

	assert.Equal(t, 0, s.Count)
	assert.True(t, math.IsNaN(s.Mean))
	assert.True(t, math.IsNaN(s.Max))
}
