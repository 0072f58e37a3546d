package model

import "time"

// Bar represents a single candlestick bar on the primary timeframe.
// Index is the bar's sequence position in the primary feed.
type Bar struct {
	Index  int
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Timeframe names a higher timeframe that runs alongside the primary feed.
type Timeframe string

const (
	Daily   Timeframe = "1D"
	Weekly  Timeframe = "1W"
	Monthly Timeframe = "1M"
	Yearly  Timeframe = "12M"
)

// Timeframes lists the higher timeframes in update order.
var Timeframes = []Timeframe{Daily, Weekly, Monthly, Yearly}

// SeriesView is the latest known state of a higher-timeframe series at the
// current primary bar.
type SeriesView struct {
	// Index of the in-progress aggregated bar; -1 while the series is empty.
	Index int
	// Current is the in-progress aggregated bar.
	Current Bar
	// Previous is the most recently closed aggregated bar, valid when Index >= 1.
	Previous Bar
}

// EmptySeries is the view of a series that has not produced any bar yet.
var EmptySeries = SeriesView{Index: -1}
