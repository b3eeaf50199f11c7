package services

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covid-explorer/config"
	"covid-explorer/models"
	"covid-explorer/render"
	"covid-explorer/storage"
)

const sampleCSV = `date,location,iso_code,total_cases,new_cases,total_deaths,new_deaths,total_vaccinations,people_vaccinated,people_fully_vaccinated,population,total_cases_per_million
2021-01-02,Kenya,KEN,12,2,1,0,,,,50000000,0.24
2021-01-01,Kenya,KEN,10,10,0,0,,,,50000000,0.2
2021-01-01,India,IND,100,100,2,2,50,40,10,1380000000,0.07
2021-01-02,India,IND,150,50,3,1,80,60,20,1380000000,0.11
2021-01-02,France,FRA,500,20,10,1,,,,67000000,7.4
2021-01-02,World,OWID_WRL,1000,30,20,2,,,,7800000000,0.13
`

type fakeSource struct {
	data  string
	err   error
	loads int
}

func (s *fakeSource) Load() (*models.RawDataset, error) {
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	return storage.Parse(strings.NewReader(s.data))
}

type fakeRenderer struct {
	mu     sync.Mutex
	lines  []models.LineChart
	bars   []models.BarChart
	maps   []models.Choropleth
	barErr error
}

func (r *fakeRenderer) LineChart(_ context.Context, c models.LineChart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, c)
	return nil
}

func (r *fakeRenderer) BarChart(_ context.Context, c models.BarChart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bars = append(r.bars, c)
	return r.barErr
}

func (r *fakeRenderer) Choropleth(_ context.Context, c models.Choropleth) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.maps = append(r.maps, c)
	return nil
}

type fakeSink struct {
	records []models.Record
}

func (s *fakeSink) WriteSnapshot(records []models.Record) error {
	s.records = records
	return nil
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Countries = []string{"Kenya", "India"}
	cfg.RollingWindow = 2
	cfg.RollingMinPeriods = 2
	return cfg
}

func TestPipelineRun(t *testing.T) {
	cfg := testConfig()
	cfg.MaxConcurrency = 3
	source := &fakeSource{data: sampleCSV}
	renderer := &fakeRenderer{}
	sink := &fakeSink{}
	var out bytes.Buffer

	p := NewPipeline(cfg, source, renderer, sink, &out, testLogger())
	require.NoError(t, p.Run(context.Background()))

	assert.Equal(t, 2, source.loads, "worldwide map reloads the file")
	assert.Len(t, renderer.lines, 3)
	assert.Len(t, renderer.bars, 2)
	require.Len(t, renderer.maps, 1)

	files := map[string]bool{}
	for _, c := range renderer.lines {
		files[c.File] = true
		require.Len(t, c.Series, 2)
		assert.Equal(t, "Kenya", c.Series[0].Name)
		assert.Equal(t, "India", c.Series[1].Name)
	}
	assert.True(t, files[TotalCasesFile])
	assert.True(t, files[NewCasesRollingFile])
	assert.True(t, files[FullyVaccinatedFile])

	worldMap := renderer.maps[0]
	assert.Len(t, worldMap.Points, 4, "one point per distinct location worldwide")
	assert.Empty(t, worldMap.Screenshot)

	require.Len(t, sink.records, 2)
	for _, r := range sink.records {
		assert.Equal(t, date(2021, 1, 2), r.Date)
	}
	assert.Contains(t, out.String(), "COVID-19 DATASET OVERVIEW")
	assert.Contains(t, out.String(), "LATEST SNAPSHOT BY COUNTRY")
}

func TestPipelineRunRequestsScreenshot(t *testing.T) {
	cfg := testConfig()
	cfg.SnapshotMap = true
	renderer := &fakeRenderer{}

	p := NewPipeline(cfg, &fakeSource{data: sampleCSV}, renderer, nil, &bytes.Buffer{}, testLogger())
	require.NoError(t, p.Run(context.Background()))

	require.Len(t, renderer.maps, 1)
	assert.Equal(t, CasesPerMillionMapPNG, renderer.maps[0].Screenshot)
}

func TestPipelineRunPropagatesErrors(t *testing.T) {
	t.Run("load", func(t *testing.T) {
		boom := errors.New("disk on fire")
		p := NewPipeline(testConfig(), &fakeSource{err: boom}, &fakeRenderer{}, nil, &bytes.Buffer{}, testLogger())
		assert.ErrorIs(t, p.Run(context.Background()), boom)
	})

	t.Run("render", func(t *testing.T) {
		boom := errors.New("no ink")
		sink := &fakeSink{}
		p := NewPipeline(testConfig(), &fakeSource{data: sampleCSV}, &fakeRenderer{barErr: boom}, sink, &bytes.Buffer{}, testLogger())
		assert.ErrorIs(t, p.Run(context.Background()), boom)
		assert.Nil(t, sink.records)
	})

	t.Run("bad date", func(t *testing.T) {
		data := sampleCSV + "someday,Kenya,KEN,1,1,0,0,,,,50000000,0\n"
		p := NewPipeline(testConfig(), &fakeSource{data: data}, &fakeRenderer{}, nil, &bytes.Buffer{}, testLogger())
		assert.ErrorIs(t, p.Run(context.Background()), ErrInvalidDate)
	})
}

func TestPipelineExploreAndSnapshot(t *testing.T) {
	source := &fakeSource{data: sampleCSV}
	sink := &fakeSink{}
	var out bytes.Buffer
	p := NewPipeline(testConfig(), source, &fakeRenderer{}, sink, &out, testLogger())

	require.NoError(t, p.Explore(context.Background()))
	assert.Contains(t, out.String(), "SUMMARY STATISTICS")
	assert.Nil(t, sink.records)

	require.NoError(t, p.Snapshot(context.Background()))
	assert.Len(t, sink.records, 2)
	assert.Equal(t, 2, source.loads)
}

func TestBuildLineCharts(t *testing.T) {
	agg := NewAggregator(2, 2)
	series := []models.Series{{
		Location: "India",
		Records: []models.Record{
			{Date: date(2021, 1, 1), TotalCases: 100, NewCases: 100, PeopleFullyVaccinated: 10, Population: 1000},
			{Date: date(2021, 1, 2), TotalCases: 150, NewCases: 50, PeopleFullyVaccinated: 20, Population: 1000},
		},
	}}

	charts := BuildLineCharts(series, agg)
	require.Len(t, charts, 3)

	assert.Equal(t, []float64{100, 150}, charts[0].Series[0].Values)
	assert.Contains(t, charts[1].Title, "2-day Average")
	assert.True(t, math.IsNaN(charts[1].Series[0].Values[0]))
	assert.Equal(t, 75.0, charts[1].Series[0].Values[1])
	assert.InDeltaSlice(t, []float64{1, 2}, charts[2].Series[0].Values, 1e-12)
}

func TestBuildBarCharts(t *testing.T) {
	latest := []models.Record{
		{Location: "Kenya", TotalCases: 10, DeathRate: 0.1},
		{Location: "India", TotalCases: 20, DeathRate: math.NaN()},
	}

	charts := BuildBarCharts(latest)
	require.Len(t, charts, 2)
	assert.Equal(t, []models.Bar{{Label: "Kenya", Value: 10}, {Label: "India", Value: 20}}, charts[0].Bars)
	assert.True(t, math.IsNaN(charts[1].Bars[1].Value))
}

func TestPipelineEndToEnd(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "owid-covid-data.csv")
	require.NoError(t, os.WriteFile(dataPath, []byte(sampleCSV), 0644))

	cfg := testConfig()
	cfg.DataPath = dataPath
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.SnapshotCSVPath = filepath.Join(dir, "out", "latest.csv")
	cfg.ChartWidthInches = 4
	cfg.ChartHeightInches = 3
	logger := testLogger()

	p := NewPipeline(cfg,
		storage.NewCSVLoader(cfg.DataPath, logger),
		render.NewRenderer(cfg, logger),
		storage.NewCSVWriter(cfg.SnapshotCSVPath, logger),
		&bytes.Buffer{}, logger)
	require.NoError(t, p.Run(context.Background()))

	for _, name := range []string{
		TotalCasesFile, NewCasesRollingFile, FullyVaccinatedFile,
		TotalCasesBarFile, DeathRateBarFile, CasesPerMillionMap, "latest.csv",
	} {
		assert.FileExists(t, filepath.Join(cfg.OutputDir, name))
	}
}
