package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"covid-explorer/models"
	"covid-explorer/utils"
)

// ErrInvalidDate is returned when a date cell cannot be parsed.
var ErrInvalidDate = errors.New("invalid date")

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
}

// DataCleaner turns raw rows into typed, filtered records with derived ratios
type DataCleaner struct {
	countries []string
	logger    *utils.Logger
}

// NewDataCleaner creates a new DataCleaner keeping only the given countries
func NewDataCleaner(countries []string, logger *utils.Logger) *DataCleaner {
	return &DataCleaner{countries: countries, logger: logger}
}

// Clean parses dates, filters to the configured countries, fills missing
// counts with zero and derives death_rate and vaccination_rate.
func (c *DataCleaner) Clean(raw *models.RawDataset) ([]models.Record, error) {
	records, err := ParseDates(raw)
	if err != nil {
		return nil, err
	}

	filtered := FilterLocations(records, c.countries)
	if len(filtered) == 0 {
		c.logger.Warn("No rows matched the selected countries %v", c.countries)
	}

	cleaned := DeriveRates(FillMissing(filtered))
	c.logger.Info("Cleaned %d records from %d raw rows", len(cleaned), len(raw.Records))
	return cleaned, nil
}

// ParseDates converts every raw row into a Record. One bad date fails the whole dataset.
func ParseDates(raw *models.RawDataset) ([]models.Record, error) {
	records := make([]models.Record, 0, len(raw.Records))
	for i, r := range raw.Records {
		date, err := parseDate(r.Date)
		if err != nil {
			// +2: one-based, after the header line
			return nil, fmt.Errorf("%w: line %d: %q", ErrInvalidDate, i+2, r.Date)
		}
		records = append(records, models.Record{
			Location:              r.Location,
			ISOCode:               r.ISOCode,
			Date:                  date,
			TotalCases:            r.TotalCases,
			NewCases:              r.NewCases,
			TotalDeaths:           r.TotalDeaths,
			NewDeaths:             r.NewDeaths,
			TotalVaccinations:     r.TotalVaccinations,
			PeopleVaccinated:      r.PeopleVaccinated,
			PeopleFullyVaccinated: r.PeopleFullyVaccinated,
			Population:            r.Population,
			TotalCasesPerMillion:  r.TotalCasesPerMillion,
			DeathRate:             math.NaN(),
			VaccinationRate:       math.NaN(),
		})
	}
	return records, nil
}

func parseDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// FilterLocations keeps records whose location is in the allow-list, preserving order.
func FilterLocations(records []models.Record, locations []string) []models.Record {
	allowed := make(map[string]bool, len(locations))
	for _, loc := range locations {
		allowed[loc] = true
	}

	kept := make([]models.Record, 0)
	for _, r := range records {
		if allowed[r.Location] {
			kept = append(kept, r)
		}
	}
	return kept
}

// FillMissing returns a copy with NaN replaced by 0 in the case, death and vaccination counts.
// Population and total_cases_per_million stay as loaded.
func FillMissing(records []models.Record) []models.Record {
	out := make([]models.Record, len(records))
	for i, r := range records {
		r.TotalCases = zeroIfNaN(r.TotalCases)
		r.NewCases = zeroIfNaN(r.NewCases)
		r.TotalDeaths = zeroIfNaN(r.TotalDeaths)
		r.NewDeaths = zeroIfNaN(r.NewDeaths)
		r.TotalVaccinations = zeroIfNaN(r.TotalVaccinations)
		r.PeopleVaccinated = zeroIfNaN(r.PeopleVaccinated)
		r.PeopleFullyVaccinated = zeroIfNaN(r.PeopleFullyVaccinated)
		out[i] = r
	}
	return out
}

// DeriveRates returns a copy with DeathRate and VaccinationRate set.
// Division is unguarded: 0/0 yields NaN and x/0 yields Inf.
func DeriveRates(records []models.Record) []models.Record {
	out := make([]models.Record, len(records))
	for i, r := range records {
		r.DeathRate = r.TotalDeaths / r.TotalCases
		r.VaccinationRate = r.PeopleVaccinated / r.Population
		out[i] = r
	}
	return out
}

func zeroIfNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
