package engine

import (
	"context"
	"time"

	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/argo-stocks/internal/store"
	"github.com/rxtech-lab/argo-stocks/internal/strategy"
	tradingprovider "github.com/rxtech-lab/argo-stocks/internal/trading/provider"
	"github.com/rxtech-lab/argo-stocks/internal/types"
	"github.com/rxtech-lab/argo-stocks/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-stocks/pkg/utils"
)

// Status is the state of a trading engine loop.
type Status string

const (
	StatusStopped Status = "stopped"
	StatusRunning Status = "running"
)

// DefaultInterval is the sleep between two scan cycles.
const DefaultInterval = 60 * time.Second

// TradeQuantity is the fixed quantity of every live trade.
const TradeQuantity = 1.0

// Lifecycle callback types for live trading phases.
// Callbacks with an error return abort the loop when they fail.

// OnCycleStartCallback is called before each scan cycle with the ticker snapshot it will scan.
type OnCycleStartCallback func(cycle int, tickers []string) error

// OnCycleEndCallback is called after each scan cycle.
type OnCycleEndCallback func(summary CycleSummary)

// OnTradeCallback is called after a trade was committed to the ledger.
type OnTradeCallback func(trade types.Trade)

// OnErrorCallback is called when a non-fatal error occurs.
type OnErrorCallback func(err error)

// OnEngineStopCallback is called when the loop exits (always called via defer).
type OnEngineStopCallback func(err error)

// Callbacks holds all lifecycle callback functions for the trading engine.
// All fields are pointers - nil means no callback will be invoked.
type Callbacks struct {
	OnCycleStart *OnCycleStartCallback
	OnCycleEnd   *OnCycleEndCallback
	OnTrade      *OnTradeCallback
	OnError      *OnErrorCallback
	OnEngineStop *OnEngineStopCallback
}

// CycleSummary describes one completed scan cycle.
type CycleSummary struct {
	Cycle int
	// Prices holds the prices fetched in the cycle, by ticker.
	Prices map[string]float64
	Trades []types.Trade
	// Equity is the valuation checkpoint written by the cycle, None when
	// some holding had no price.
	Equity optional.Option[float64]
}

// Config holds the configuration of a trading engine.
type Config struct {
	// SessionID scopes the ledger rows; zero selects the legacy per-mode ledger.
	SessionID int64             `json:"session_id" yaml:"session_id"`
	Mode      types.TradingMode `json:"mode" yaml:"mode" validate:"required,oneof=PAPER LIVE" jsonschema:"enum=PAPER,enum=LIVE"`
	Tickers   []string          `json:"tickers" yaml:"tickers" validate:"required,min=1,dive,required"`
	// Interval is the sleep between cycles (default: 60s)
	Interval time.Duration `json:"interval" yaml:"interval" validate:"gte=0"`
	// InitialBalance opens the account when the ledger has none yet.
	InitialBalance float64 `json:"initial_balance" yaml:"initial_balance" validate:"gte=0"`
	// Strategies are templates; the engine builds one instance per ticker.
	Strategies []strategy.Config `json:"strategies" yaml:"strategies" validate:"required,min=1"`
}

// Key returns the ledger key of the engine.
func (c Config) Key() types.LedgerKey {
	return types.LedgerKey{SessionID: c.SessionID, Mode: c.Mode}
}

// GetConfigSchema returns the JSON schema for Config.
func GetConfigSchema() (string, error) {
	return utils.ToJSONSchema(&Config{})
}

// TradingEngine polls current prices, evaluates strategies and executes trades.
//
//nolint:interfacebloat // Engine is a core interface that naturally requires multiple methods
type TradingEngine interface {
	// Initialize sets up the engine with the given configuration.
	Initialize(config Config) error

	// SetPriceSource configures where current prices come from.
	SetPriceSource(source provider.PriceSource) error

	// SetLedger configures the ledger trades are executed against.
	SetLedger(ledger store.Ledger) error

	// SetBroker configures the broker LIVE trades are forwarded to.
	SetBroker(broker tradingprovider.Broker) error

	// SetStrategyFactory configures the factory strategy instances are built with.
	SetStrategyFactory(factory *strategy.Factory) error

	// Run loops scan cycles until ctx is cancelled. Cancellation is only
	// observed between cycles; a cycle in flight always completes.
	Run(ctx context.Context, callbacks Callbacks) error

	// RunCycle executes one scan cycle.
	RunCycle(ctx context.Context, callbacks Callbacks) (CycleSummary, error)

	// SetTickers replaces the ticker list with a copy of tickers.
	SetTickers(tickers []string)

	// Tickers returns a copy of the current ticker list.
	Tickers() []string

	// Status reports whether the loop is running.
	Status() Status

	// Config returns the configuration the engine was initialized with.
	Config() Config
}
