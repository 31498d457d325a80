// Package trading wires the configured store, price source, broker and
// strategy catalog into the engines and the session manager.
package trading

import (
	"context"

	"go.uber.org/zap"

	backtestv1 "github.com/rxtech-lab/argo-stocks/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-stocks/internal/config"
	"github.com/rxtech-lab/argo-stocks/internal/logger"
	"github.com/rxtech-lab/argo-stocks/internal/store"
	"github.com/rxtech-lab/argo-stocks/internal/strategy"
	"github.com/rxtech-lab/argo-stocks/internal/trading/engine"
	tradingprovider "github.com/rxtech-lab/argo-stocks/internal/trading/provider"
	"github.com/rxtech-lab/argo-stocks/internal/trading/session"
	"github.com/rxtech-lab/argo-stocks/pkg/marketdata/provider"
)

// TradingSystem holds the dependencies built from a config.Config.
type TradingSystem struct {
	Config  config.Config
	Store   *store.Store
	Prices  provider.PriceSource
	Broker  tradingprovider.Broker
	Factory *strategy.Factory
	log     *logger.Logger
}

// NewTradingSystem opens the store, seeds the strategy table on first use
// and builds the price source and broker selected by cfg.
func NewTradingSystem(ctx context.Context, cfg config.Config, log *logger.Logger) (*TradingSystem, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	prices, err := provider.NewPriceSource(cfg.PriceSource)
	if err != nil {
		return nil, err
	}

	broker, err := tradingprovider.NewBroker(cfg.Broker)
	if err != nil {
		return nil, err
	}

	db, err := store.Open(cfg.DatabasePath, log.Named("store"))
	if err != nil {
		return nil, err
	}

	if _, err := db.SeedStrategyConfigs(ctx); err != nil {
		db.Close()

		return nil, err
	}

	configs, err := db.ListStrategyConfigs(ctx)
	if err != nil {
		db.Close()

		return nil, err
	}

	catalog := strategy.NewCatalog()
	for _, c := range configs {
		if err := catalog.Put(c); err != nil {
			log.Warn("Skipping invalid strategy configuration", zap.String("strategy", c.Name), zap.Error(err))
		}
	}

	return &TradingSystem{
		Config:  cfg,
		Store:   db,
		Prices:  prices,
		Broker:  broker,
		Factory: strategy.NewFactory(catalog),
		log:     log,
	}, nil
}

// SessionManager builds a session manager over the system's dependencies.
// Serve it with Run.
func (t *TradingSystem) SessionManager(callbacks engine.Callbacks) (*session.SessionManager, error) {
	return session.NewSessionManager(session.Config{
		Store:          t.Store,
		Prices:         t.Prices,
		Factory:        t.Factory,
		Broker:         t.Broker,
		InitialBalance: t.Config.InitialBalance,
		Interval:       t.Config.PollInterval,
		Callbacks:      callbacks,
	}, t.log.Named("sessions"))
}

// BacktestEngine returns a backtest engine resolving strategies through the
// system's catalog. Initialize it before running.
func (t *TradingSystem) BacktestEngine() (*backtestv1.BacktestEngineV1, error) {
	bt := backtestv1.NewBacktestEngineV1(t.log.Named("backtest"))

	if err := bt.SetStrategyFactory(t.Factory); err != nil {
		return nil, err
	}

	if err := bt.SetPriceSource(t.Prices); err != nil {
		return nil, err
	}

	return bt, nil
}

func (t *TradingSystem) Close() error {
	return t.Store.Close()
}
