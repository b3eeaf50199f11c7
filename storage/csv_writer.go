package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"covid-explorer/models"
	"covid-explorer/utils"
)

// SnapshotHeader is the column order written by WriteSnapshot.
var SnapshotHeader = []string{
	"location", "iso_code", "date", "total_cases", "total_deaths",
	"death_rate", "vaccination_rate", "people_fully_vaccinated", "population",
}

// CSVWriter handles writing the latest snapshot to a CSV file
type CSVWriter struct {
	filePath string
	logger   *utils.Logger
}

// NewCSVWriter creates a new CSVWriter
func NewCSVWriter(filePath string, logger *utils.Logger) *CSVWriter {
	return &CSVWriter{filePath: filePath, logger: logger}
}

// WriteSnapshot writes one row per record, replacing any existing file.
func (w *CSVWriter) WriteSnapshot(records []models.Record) error {
	// Ensure output directory exists
	dir := filepath.Dir(w.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(w.filePath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(SnapshotHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.Location,
			r.ISOCode,
			r.Date.Format("2006-01-02"),
			formatFloat(r.TotalCases),
			formatFloat(r.TotalDeaths),
			formatFloat(r.DeathRate),
			formatFloat(r.VaccinationRate),
			formatFloat(r.PeopleFullyVaccinated),
			formatFloat(r.Population),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row for '%s': %w", r.Location, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	w.logger.Info("Latest snapshot written to: %s (%d rows)", w.filePath, len(records))
	return nil
}

// formatFloat renders NaN as an empty cell, the way the loader reads it back.
func formatFloat(v float64) string {
	if v != v {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
