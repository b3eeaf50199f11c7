package services

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"covid-explorer/models"
)

const reportWidth = 100

// PrintExplorationReport formats the dataset overview for the terminal
func PrintExplorationReport(w io.Writer, report *models.ExplorationReport) {
	border := strings.Repeat("═", reportWidth)
	thin := strings.Repeat("─", reportWidth)

	fmt.Fprintf(w, "\n╔%s╗\n", border)
	fmt.Fprintf(w, "║%s║\n", center("COVID-19 DATASET OVERVIEW", reportWidth))
	fmt.Fprintf(w, "╚%s╝\n", border)

	fmt.Fprintf(w, "\n SHAPE\n%s\n", thin)
	fmt.Fprintf(w, "  Rows       : %s\n", humanize.Comma(int64(report.Rows)))
	fmt.Fprintf(w, "  Columns    : %d\n", report.Columns)
	fmt.Fprintf(w, "  Locations  : %d\n", report.Locations)
	if report.FirstDate != "" {
		fmt.Fprintf(w, "  Date range : %s → %s\n", report.FirstDate, report.LastDate)
	}

	if len(report.Summaries) > 0 {
		fmt.Fprintf(w, "\n SUMMARY STATISTICS\n%s\n", thin)
		fmt.Fprintf(w, "  %-20s %8s %12s %12s %10s %10s %12s %12s %14s\n",
			"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max")
		for _, s := range report.Summaries {
			fmt.Fprintf(w, "  %-20s %8d %12s %12s %10s %10s %12s %12s %14s\n",
				truncate(s.Column, 20), s.Count,
				formatNumber(s.Mean), formatNumber(s.Std), formatNumber(s.Min),
				formatNumber(s.Q25), formatNumber(s.Median), formatNumber(s.Q75),
				formatNumber(s.Max))
		}
	}

	if len(report.MissingColumns) > 0 {
		fmt.Fprintf(w, "\n MISSING VALUES\n%s\n", thin)
		for _, col := range report.MissingColumns {
			fmt.Fprintf(w, "  %-26s %s\n", col+":", humanize.Comma(int64(report.MissingCounts[col])))
		}
	}

	if len(report.Head) > 0 {
		fmt.Fprintf(w, "\n FIRST %d ROWS\n%s\n", len(report.Head), thin)
		fmt.Fprintf(w, "  %-12s %-20s %12s %10s %12s %10s %14s\n",
			"date", "location", "total_cases", "new_cases", "total_deaths", "new_deaths", "population")
		for _, r := range report.Head {
			fmt.Fprintf(w, "  %-12s %-20s %12s %10s %12s %10s %14s\n",
				r.Date, truncate(r.Location, 20),
				formatNumber(r.TotalCases), formatNumber(r.NewCases),
				formatNumber(r.TotalDeaths), formatNumber(r.NewDeaths),
				formatNumber(r.Population))
		}
	}

	fmt.Fprintf(w, "\n%s\n\n", border)
}

// PrintSnapshotTable prints the latest record of each location
func PrintSnapshotTable(w io.Writer, records []models.Record) {
	thin := strings.Repeat("─", reportWidth)

	fmt.Fprintf(w, "\n LATEST SNAPSHOT BY COUNTRY\n%s\n", thin)
	if len(records) == 0 {
		fmt.Fprintf(w, "  (no rows)\n%s\n\n", thin)
		return
	}

	fmt.Fprintf(w, "  %-20s %-12s %14s %12s %11s %12s %12s\n",
		"location", "date", "total_cases", "total_deaths", "death_rate", "vaccinated", "fully_vacc")
	for _, r := range records {
		fmt.Fprintf(w, "  %-20s %-12s %14s %12s %11s %12s %12s\n",
			truncate(r.Location, 20), r.Date.Format("2006-01-02"),
			formatNumber(r.TotalCases), formatNumber(r.TotalDeaths),
			formatPercent(r.DeathRate), formatPercent(r.VaccinationRate),
			formatPercent(r.FullyVaccinatedPercent()/100))
	}
	fmt.Fprintf(w, "%s\n\n", thin)
}

func formatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 0):
		return fmt.Sprint(v)
	case v == math.Trunc(v) && math.Abs(v) < 1e15:
		return humanize.Comma(int64(v))
	default:
		return humanize.CommafWithDigits(v, 2)
	}
}

func formatPercent(v float64) string {
	if !models.IsFinite(v) {
		return formatNumber(v)
	}
	return fmt.Sprintf("%.2f%%", v*100)
}

func center(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return s
	}
	pad := (width - len(runes)) / 2
	return strings.Repeat(" ", pad) + s + strings.Repeat(" ", width-len(runes)-pad)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
