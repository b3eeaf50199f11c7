package models

// ColumnSummary holds descriptive statistics of one numeric column.
// Statistics are computed over non-missing values only.
type ColumnSummary struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Median float64
	Q75    float64
	Max    float64
}

// ExplorationReport holds the overview printed before cleaning
type ExplorationReport struct {
	Rows           int
	Columns        int
	Locations      int
	FirstDate      string
	LastDate       string
	Summaries      []ColumnSummary
	MissingCounts  map[string]int
	MissingColumns []string // column order for MissingCounts
	Head           []RawRecord
}
