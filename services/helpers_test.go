package services

import (
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"covid-explorer/models"
	"covid-explorer/storage"
	"covid-explorer/utils"
)

func testLogger() *utils.Logger {
	return utils.NewLoggerWithOutput(io.Discard, "error")
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// csvHeader is the required column order used by parseCSV rows.
var csvHeader = strings.Join(storage.RequiredColumns, ",")

// parseCSV decodes rows written in storage.RequiredColumns order.
func parseCSV(t *testing.T, rows ...string) *models.RawDataset {
	t.Helper()
	ds, err := storage.Parse(strings.NewReader(csvHeader + "\n" + strings.Join(rows, "\n") + "\n"))
	require.NoError(t, err)
	return ds
}

func rawRecord(location, day string) models.RawRecord {
	nan := math.NaN()
	return models.RawRecord{
		Location: location, Date: day,
		TotalCases: nan, NewCases: nan, TotalDeaths: nan, NewDeaths: nan,
		TotalVaccinations: nan, PeopleVaccinated: nan, PeopleFullyVaccinated: nan,
		Population: nan, TotalCasesPerMillion: nan,
	}
}
