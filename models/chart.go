package models

import "time"

// LineSeries is one named line of a time-series chart
type LineSeries struct {
	Name   string
	Dates  []time.Time
	Values []float64
}

// LineChart describes a time-series chart with one line per series
type LineChart struct {
	File   string
	Title  string
	XLabel string
	YLabel string
	Series []LineSeries
}

// Bar is a single labelled bar
type Bar struct {
	Label string
	Value float64
}

// BarChart describes a categorical bar chart
type BarChart struct {
	File   string
	Title  string
	XLabel string
	YLabel string
	Bars   []Bar
}

// MapPoint is one country's value on a choropleth, keyed by ISO code
type MapPoint struct {
	ISOCode  string
	Location string
	Value    float64
}

// Choropleth describes a world map colored by value
type Choropleth struct {
	File       string
	Title      string
	SeriesName string
	Points     []MapPoint
	Screenshot string // optional PNG path; empty disables the browser snapshot
}
