package models

import (
	"math"
	"time"
)

// RawRecord is one CSV row before cleaning. Missing numeric cells are NaN.
type RawRecord struct {
	Location string
	ISOCode  string
	Date     string // e.g. "2021-03-14"

	TotalCases            float64
	NewCases              float64
	TotalDeaths           float64
	NewDeaths             float64
	TotalVaccinations     float64
	PeopleVaccinated      float64
	PeopleFullyVaccinated float64
	Population            float64
	TotalCasesPerMillion  float64
}

// RawDataset is the loader output: the file header plus every row in file order.
type RawDataset struct {
	Header  []string
	Records []RawRecord
}

// Record is a cleaned row with a parsed date and derived ratios
type Record struct {
	Location string
	ISOCode  string
	Date     time.Time

	TotalCases            float64
	NewCases              float64
	TotalDeaths           float64
	NewDeaths             float64
	TotalVaccinations     float64
	PeopleVaccinated      float64
	PeopleFullyVaccinated float64
	Population            float64
	TotalCasesPerMillion  float64

	// Derived by the cleaner. IEEE division: 0/0 is NaN, x/0 is Inf.
	DeathRate       float64
	VaccinationRate float64
}

// FullyVaccinatedPercent returns the share of the population fully vaccinated, in percent.
func (r Record) FullyVaccinatedPercent() float64 {
	return r.PeopleFullyVaccinated / r.Population * 100
}

// Series holds one location's records ordered by ascending date
type Series struct {
	Location string
	Records  []Record
}

// Dates returns the dates of the series in order.
func (s Series) Dates() []time.Time {
	dates := make([]time.Time, len(s.Records))
	for i, r := range s.Records {
		dates[i] = r.Date
	}
	return dates
}

// Values extracts one numeric field per record.
func (s Series) Values(field func(Record) float64) []float64 {
	values := make([]float64, len(s.Records))
	for i, r := range s.Records {
		values[i] = field(r)
	}
	return values
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
