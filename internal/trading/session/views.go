package session

import (
	"context"
	"sort"
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	backtestengine "github.com/rxtech-lab/argo-stocks/internal/backtest/engine"
	backtestv1 "github.com/rxtech-lab/argo-stocks/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-stocks/internal/strategy"
	"github.com/rxtech-lab/argo-stocks/internal/trading/stats"
	"github.com/rxtech-lab/argo-stocks/internal/types"
	"github.com/rxtech-lab/argo-stocks/pkg/errors"
	"github.com/rxtech-lab/argo-stocks/pkg/marketdata/provider"
)

// BacktestRequest configures a backtest of a session. Empty Strategies and
// Tickers are resolved from the session.
type BacktestRequest struct {
	StartDate  optional.Option[time.Time]
	EndDate    optional.Option[time.Time]
	Strategies []string
	Tickers    []string
	// InitialCapital defaults to backtestv1.DefaultInitialCapital.
	InitialCapital float64
}

// Account returns the cash and last equity checkpoint of a session. A
// session without an account reports zero balances.
func (m *SessionManager) Account(ctx context.Context, id int64) (types.Account, error) {
	session, err := m.cfg.Store.GetSession(ctx, id)
	if err != nil {
		return types.Account{}, err
	}

	account, err := m.cfg.Store.GetAccount(ctx, session.Key())
	if errors.HasCode(err, errors.ErrCodeDataNotFound) {
		return types.Account{SessionID: session.ID, Mode: session.Mode}, nil
	}

	return account, err
}

// Holdings marks the open holdings and the watched tickers of a session to
// the current prices, sorted by value with the largest first. Tickers the
// price source cannot quote are valued at zero.
func (m *SessionManager) Holdings(ctx context.Context, id int64) ([]types.HoldingValuation, error) {
	session, err := m.cfg.Store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	holdings, err := m.cfg.Store.Holdings(ctx, session.Key())
	if err != nil {
		return nil, err
	}

	watched, err := m.cfg.Store.SessionTickers(ctx, id)
	if err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(holdings)+len(watched))
	for _, h := range holdings {
		symbols = append(symbols, h.Symbol)
	}

	symbols = provider.NormalizeSymbols(append(symbols, watched...))

	prices := map[string]float64{}

	if len(symbols) > 0 {
		quoted, err := m.cfg.Prices.CurrentPrices(ctx, symbols)
		if err != nil {
			m.log.Warn("Failed to price holdings", zap.Int64("session_id", id), zap.Error(err))
		} else {
			prices = quoted
		}
	}

	held := make(map[string]bool, len(holdings))
	valuations := make([]types.HoldingValuation, 0, len(symbols))

	for _, h := range holdings {
		held[h.Symbol] = true
		valuations = append(valuations, value(h, prices[h.Symbol]))
	}

	for _, symbol := range watched {
		if held[symbol] {
			continue
		}

		valuations = append(valuations, types.HoldingValuation{
			Symbol:       symbol,
			Strategy:     types.WatchlistStrategy,
			CurrentPrice: prices[symbol],
		})
	}

	sort.SliceStable(valuations, func(i, j int) bool {
		return valuations[i].Value > valuations[j].Value
	})

	return valuations, nil
}

func value(h types.Holding, price float64) types.HoldingValuation {
	qty := decimal.NewFromFloat(h.Quantity)
	current := decimal.NewFromFloat(price)

	v := types.HoldingValuation{
		Symbol:       h.Symbol,
		Strategy:     h.Strategy,
		Quantity:     h.Quantity,
		AveragePrice: h.AveragePrice,
		CurrentPrice: price,
		Value:        qty.Mul(current).Round(2).InexactFloat64(),
	}

	if h.Quantity > 0 {
		v.UnrealizedPnL = current.Sub(decimal.NewFromFloat(h.AveragePrice)).Mul(qty).Round(2).InexactFloat64()
	}

	return v
}

// Trades returns the trade log of a session, newest first. A zero limit
// reads DefaultTradeLimit trades.
func (m *SessionManager) Trades(ctx context.Context, id int64, filter types.TradeFilter) ([]types.Trade, error) {
	session, err := m.cfg.Store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	if filter.Limit == 0 {
		filter.Limit = DefaultTradeLimit
	}

	return m.cfg.Store.Trades(ctx, session.Key(), filter)
}

// Performance summarizes the filled trades of a session.
func (m *SessionManager) Performance(ctx context.Context, id int64) (types.TradeSummary, error) {
	trades, err := m.Trades(ctx, id, types.TradeFilter{Status: types.TradeStatusFilled, Limit: stats.SummaryTradeLimit})
	if err != nil {
		return types.TradeSummary{}, err
	}

	return stats.Summarize(trades), nil
}

// RunSessionBacktest replays history for a session's strategies and
// tickers. Strategies resolve from the request, else the session's
// composite pair, else its active strategies, else the default strategy.
// A run that finds no data returns its result with ErrCodeDataNotFound.
func (m *SessionManager) RunSessionBacktest(ctx context.Context, id int64, req BacktestRequest, callbacks backtestengine.LifecycleCallbacks) (types.BacktestResult, error) {
	session, err := m.cfg.Store.GetSession(ctx, id)
	if err != nil {
		return types.BacktestResult{}, err
	}

	var configs []strategy.Config

	if len(req.Strategies) > 0 {
		configs = m.resolveStrategies(req.Strategies)
		if len(configs) == 0 {
			return types.BacktestResult{}, errors.New(errors.ErrCodeNoValidStrategy, "no valid strategies provided or recognized")
		}
	} else {
		configs, err = m.sessionStrategies(ctx, session)
		if err != nil {
			return types.BacktestResult{}, err
		}
	}

	tickers := provider.NormalizeSymbols(req.Tickers)
	if len(tickers) == 0 {
		tickers, err = m.sessionTickers(ctx, id)
		if err != nil {
			return types.BacktestResult{}, err
		}
	}

	config := backtestv1.EmptyConfig()
	config.StartDate = req.StartDate
	config.EndDate = req.EndDate
	config.Tickers = tickers

	if req.InitialCapital > 0 {
		config.InitialCapital = req.InitialCapital
	}

	bt := backtestv1.NewBacktestEngineV1(m.log)
	if err := bt.SetStrategyFactory(m.cfg.Factory); err != nil {
		return types.BacktestResult{}, err
	}

	if err := bt.SetPriceSource(m.cfg.Prices); err != nil {
		return types.BacktestResult{}, err
	}

	if err := bt.InitializeWithConfig(config); err != nil {
		return types.BacktestResult{}, err
	}

	for _, cfg := range configs {
		if err := bt.LoadStrategy(cfg); err != nil {
			return types.BacktestResult{}, err
		}
	}

	result, err := bt.Run(ctx, callbacks)
	if err != nil {
		return result, err
	}

	if result.Error != "" {
		return result, errors.New(errors.ErrCodeDataNotFound, result.Error)
	}

	return result, nil
}
