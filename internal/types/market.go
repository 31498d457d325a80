package types

import "time"

// DateLayout is the calendar date format used in backtest results and price histories.
const DateLayout = "2006-01-02"

// Observation is a single price observation fed to a strategy.
type Observation struct {
	Symbol    string    `json:"symbol" yaml:"symbol"`
	Price     float64   `json:"price" yaml:"price"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// PriceBar is one daily bar of a price history.
type PriceBar struct {
	Date   time.Time `json:"date" yaml:"date"`
	Open   float64   `json:"open" yaml:"open"`
	High   float64   `json:"high" yaml:"high"`
	Low    float64   `json:"low" yaml:"low"`
	Close  float64   `json:"close" yaml:"close"`
	Volume float64   `json:"volume" yaml:"volume"`
}

// Day returns the bar's calendar date formatted with DateLayout.
func (b PriceBar) Day() string {
	return b.Date.Format(DateLayout)
}
