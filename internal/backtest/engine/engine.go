package engine

import (
	"context"

	"github.com/rxtech-lab/argo-stocks/internal/strategy"
	"github.com/rxtech-lab/argo-stocks/internal/types"
	"github.com/rxtech-lab/argo-stocks/pkg/marketdata/provider"
)

// Lifecycle callback types for backtest phases
// All callbacks with error return can abort execution if they return an error

// OnBacktestStartCallback is called once the price histories are loaded.
// tickers lists the tickers that have data in range.
type OnBacktestStartCallback func(runID string, tickers []string, totalDays int) error

// OnBacktestEndCallback is called when the backtest completes (always called via defer).
type OnBacktestEndCallback func(err error)

// OnProcessDayCallback is called after each timeline date is processed.
type OnProcessDayCallback func(current int, total int) error

// OnTradeCallback is called for every executed backtest trade.
type OnTradeCallback func(trade types.BacktestTrade)

// LifecycleCallbacks holds all lifecycle callback functions for the backtest engine.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnBacktestStart *OnBacktestStartCallback
	OnBacktestEnd   *OnBacktestEndCallback
	OnProcessDay    *OnProcessDayCallback
	OnTrade         *OnTradeCallback
}

type Engine interface {
	// Initialize the engine with the given YAML configuration.
	Initialize(config string) error
	// SetPriceSource sets the source of daily price histories.
	SetPriceSource(source provider.PriceSource) error
	// SetStrategyFactory sets the factory that builds strategy instances.
	// Strategy names in the configuration resolve through its catalog.
	SetStrategyFactory(factory *strategy.Factory) error
	// LoadStrategy adds a strategy template. Could be called multiple times to load multiple strategies.
	LoadStrategy(cfg strategy.Config) error
	// Run replays the configured date range and returns the result.
	// A run without usable data returns a result carrying Error and a nil error.
	// The context is checked between timeline dates.
	Run(ctx context.Context, callbacks LifecycleCallbacks) (types.BacktestResult, error)
	// GetConfigSchema returns the schema of the engine configuration
	GetConfigSchema() (string, error)
}
