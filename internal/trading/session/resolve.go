package session

import (
	"context"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-stocks/internal/store"
	"github.com/rxtech-lab/argo-stocks/internal/strategy"
	"github.com/rxtech-lab/argo-stocks/internal/trading/engine"
	"github.com/rxtech-lab/argo-stocks/internal/types"
	"github.com/rxtech-lab/argo-stocks/pkg/errors"
	"github.com/rxtech-lab/argo-stocks/pkg/marketdata/provider"
)

// validateTickers normalizes symbols and rejects any the price source
// cannot quote. No symbols is not an error.
func (m *SessionManager) validateTickers(ctx context.Context, symbols []string) ([]string, error) {
	if len(provider.NormalizeSymbols(symbols)) == 0 {
		return nil, nil
	}

	valid, invalid, err := provider.ValidateSymbols(ctx, m.cfg.Prices, symbols)
	if err != nil {
		return nil, err
	}

	if len(invalid) > 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidSymbol, "invalid tickers: %s", strings.Join(invalid, ", "))
	}

	return valid, nil
}

// resolveStrategies resolves names through the catalog. Composite marker
// rows and unknown names are skipped.
func (m *SessionManager) resolveStrategies(names []string) []strategy.Config {
	catalog := m.cfg.Factory.Catalog()
	configs := make([]strategy.Config, 0, len(names))

	for _, name := range names {
		if strings.HasPrefix(name, strategy.CompositeMarkerPrefix) {
			continue
		}

		if slices.ContainsFunc(configs, func(cfg strategy.Config) bool { return cfg.Name == name }) {
			continue
		}

		cfg, err := catalog.Resolve(name)
		if err != nil {
			m.log.Warn("Skipping unknown strategy", zap.String("strategy", name), zap.Error(err))

			continue
		}

		configs = append(configs, cfg)
	}

	return configs
}

func withDefault(catalog *strategy.Catalog, configs []strategy.Config) []strategy.Config {
	if len(configs) > 0 {
		return configs
	}

	cfg, err := catalog.Resolve(strategy.DefaultStrategy)
	if err != nil {
		return nil
	}

	return []strategy.Config{cfg}
}

// compositeConfig builds the composite configuration of a buy/sell pair
// and checks that both legs resolve.
func (m *SessionManager) compositeConfig(buyName, sellName string) (strategy.Config, error) {
	cfg := strategy.Config{
		Name:   strategy.CompositeName(buyName, sellName),
		Kind:   strategy.KindComposite,
		Params: strategy.CompositeParams{BuyStrategy: buyName, SellStrategy: sellName},
	}

	probe, err := m.cfg.Factory.Create(cfg)
	if err != nil {
		return strategy.Config{}, err
	}

	if err := probe.Initialize(strategy.Context{Logger: m.log}); err != nil {
		return strategy.Config{}, err
	}

	return cfg, nil
}

// sessionStrategies resolves what a stored session trades: its composite
// pair, else its active strategies, else the default strategy.
func (m *SessionManager) sessionStrategies(ctx context.Context, session types.Session) ([]strategy.Config, error) {
	if session.IsComposite() {
		cfg, err := m.compositeConfig(session.BuyStrategy, session.SellStrategy)
		if err != nil {
			return nil, err
		}

		return []strategy.Config{cfg}, nil
	}

	selected, err := m.cfg.Store.SessionStrategies(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	configs := withDefault(m.cfg.Factory.Catalog(), m.resolveStrategies(store.ActiveStrategyNames(selected)))
	if len(configs) == 0 {
		return nil, errors.Newf(errors.ErrCodeNoValidStrategy, "session %d resolves no strategy", session.ID)
	}

	return configs, nil
}

func (m *SessionManager) sessionTickers(ctx context.Context, id int64) ([]string, error) {
	tickers, err := m.cfg.Store.SessionTickers(ctx, id)
	if err != nil {
		return nil, err
	}

	return tickersOrFallback(tickers), nil
}

func tickersOrFallback(tickers []string) []string {
	if len(tickers) == 0 {
		return slices.Clone(FallbackTickers)
	}

	return tickers
}

// rebuild builds the engine of a stored session.
func (m *SessionManager) rebuild(ctx context.Context, session types.Session) (engine.TradingEngine, error) {
	configs, err := m.sessionStrategies(ctx, session)
	if err != nil {
		return nil, err
	}

	tickers, err := m.sessionTickers(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	m.log.Debug("Rebuilt session engine",
		zap.Int64("session_id", session.ID),
		zap.Int("strategies", len(configs)),
		zap.Strings("tickers", tickers),
	)

	return m.newEngine(session, tickers, configs)
}

func (m *SessionManager) newEngine(session types.Session, tickers []string, configs []strategy.Config) (engine.TradingEngine, error) {
	if session.Mode == types.ModeLive && m.cfg.Broker == nil {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "session %d trades LIVE but no broker is configured", session.ID)
	}

	eng := m.cfg.NewEngine(m.log)

	err := eng.Initialize(engine.Config{
		SessionID:      session.ID,
		Mode:           session.Mode,
		Tickers:        tickers,
		Interval:       m.cfg.Interval,
		InitialBalance: session.InitialBalance,
		Strategies:     configs,
	})
	if err != nil {
		return nil, err
	}

	if err := eng.SetPriceSource(m.cfg.Prices); err != nil {
		return nil, err
	}

	if err := eng.SetLedger(m.cfg.Store); err != nil {
		return nil, err
	}

	if err := eng.SetStrategyFactory(m.cfg.Factory); err != nil {
		return nil, err
	}

	if m.cfg.Broker != nil {
		if err := eng.SetBroker(m.cfg.Broker); err != nil {
			return nil, err
		}
	}

	return eng, nil
}
