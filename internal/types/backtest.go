package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EquityPoint is one point on the portfolio equity curve.
type EquityPoint struct {
	Date  string  `json:"date" yaml:"date"`
	Value float64 `json:"value" yaml:"value"`
}

// BacktestTrade is a trade executed during a backtest.
type BacktestTrade struct {
	Date     string      `json:"date" yaml:"date"`
	Ticker   string      `json:"ticker" yaml:"ticker"`
	Action   TradeAction `json:"action" yaml:"action"`
	Price    float64     `json:"price" yaml:"price"`
	Quantity float64     `json:"quantity" yaml:"quantity"`
	// Cost is quantity*price.
	Cost     float64 `json:"cost" yaml:"cost"`
	Strategy string  `json:"strategy" yaml:"strategy"`
}

// StockPerformance is the isolated contribution of one ticker.
type StockPerformance struct {
	PnL            float64 `json:"pnl" yaml:"pnl"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct" yaml:"max_drawdown_pct"`
	Trades         int     `json:"trades" yaml:"trades"`
}

// DailyPrice is one close of a ticker inside the backtest range.
type DailyPrice struct {
	Date  string  `json:"date" yaml:"date"`
	Close float64 `json:"close" yaml:"close"`
}

// BacktestResult is the outcome of a backtest run. When Error is set the
// run had no usable data and every other field is zero.
type BacktestResult struct {
	// ID is the unique identifier for this backtest run.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`
	// Timestamp is when this backtest run was executed.
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Error     string    `json:"error,omitempty" yaml:"error,omitempty"`

	InitialCapital      float64                      `json:"initial_capital" yaml:"initial_capital"`
	FinalValue          float64                      `json:"final_value" yaml:"final_value"`
	TotalReturnPct      float64                      `json:"total_return_pct" yaml:"total_return_pct"`
	MaxDrawdownPct      float64                      `json:"max_drawdown_pct" yaml:"max_drawdown_pct"`
	TotalTrades         int                          `json:"total_trades" yaml:"total_trades"`
	EquityCurve         []EquityPoint                `json:"equity_curve" yaml:"equity_curve"`
	Trades              []BacktestTrade              `json:"trades" yaml:"trades"`
	PerStockPerformance map[string]StockPerformance `json:"per_stock_performance" yaml:"per_stock_performance"`
	DailyPrices         map[string][]DailyPrice     `json:"daily_prices" yaml:"daily_prices"`
}

// Failed reports whether the run produced an error payload.
func (r BacktestResult) Failed() bool {
	return r.Error != ""
}

// WriteBacktestResult writes the result to path as YAML.
func WriteBacktestResult(path string, result BacktestResult) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal backtest result to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write backtest result to file: %w", err)
	}

	return nil
}
