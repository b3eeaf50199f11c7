package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"covid-explorer/models"
	"covid-explorer/utils"
)

// ErrMissingColumn is returned when the CSV header lacks an expected column.
var ErrMissingColumn = errors.New("missing required column")

// RequiredColumns lists the header fields the loader needs.
var RequiredColumns = []string{
	"date", "location", "iso_code",
	"total_cases", "new_cases", "total_deaths", "new_deaths",
	"total_vaccinations", "people_vaccinated", "people_fully_vaccinated",
	"population", "total_cases_per_million",
}

// missingTokens are cell values treated as a missing number.
var missingTokens = map[string]bool{
	"": true, "NA": true, "N/A": true, "n/a": true, "NaN": true, "nan": true,
	"-NaN": true, "-nan": true, "null": true, "NULL": true, "#N/A": true, "<NA>": true,
}

// ParseError reports a numeric cell that could not be parsed.
type ParseError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: column %q: cannot parse %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// CSVLoader reads the OWID dataset from a CSV file
type CSVLoader struct {
	filePath string
	logger   *utils.Logger
}

// NewCSVLoader creates a new CSVLoader
func NewCSVLoader(filePath string, logger *utils.Logger) *CSVLoader {
	return &CSVLoader{filePath: filePath, logger: logger}
}

// Load reads the whole file into memory.
func (l *CSVLoader) Load() (*models.RawDataset, error) {
	file, err := os.Open(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	ds, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", l.filePath, err)
	}

	l.logger.Info("Loaded %d rows (%d columns) from %s", len(ds.Records), len(ds.Header), l.filePath)
	return ds, nil
}

// Parse decodes a CSV stream with a header row.
func Parse(r io.Reader) (*models.RawDataset, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file has no header", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	header = append([]string(nil), header...)
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	for _, col := range RequiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	ds := &models.RawDataset{Header: header}
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		p := rowParser{row: row, idx: idx, line: line}
		rec := models.RawRecord{
			Location:              p.text("location"),
			ISOCode:               p.text("iso_code"),
			Date:                  p.text("date"),
			TotalCases:            p.number("total_cases"),
			NewCases:              p.number("new_cases"),
			TotalDeaths:           p.number("total_deaths"),
			NewDeaths:             p.number("new_deaths"),
			TotalVaccinations:     p.number("total_vaccinations"),
			PeopleVaccinated:      p.number("people_vaccinated"),
			PeopleFullyVaccinated: p.number("people_fully_vaccinated"),
			Population:            p.number("population"),
			TotalCasesPerMillion:  p.number("total_cases_per_million"),
		}
		if p.err != nil {
			return nil, p.err
		}
		ds.Records = append(ds.Records, rec)
	}

	return ds, nil
}

// rowParser extracts typed cells from one row and keeps the first error.
type rowParser struct {
	row  []string
	idx  map[string]int
	line int
	err  error
}

func (p *rowParser) text(col string) string {
	return strings.TrimSpace(p.row[p.idx[col]])
}

func (p *rowParser) number(col string) float64 {
	raw := p.text(col)
	if missingTokens[raw] {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		if p.err == nil {
			p.err = &ParseError{Line: p.line, Column: col, Value: raw, Err: err}
		}
		return math.NaN()
	}
	return v
}
