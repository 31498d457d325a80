package engine_v1

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-stocks/internal/logger"
	"github.com/rxtech-lab/argo-stocks/internal/store"
	"github.com/rxtech-lab/argo-stocks/internal/strategy"
	"github.com/rxtech-lab/argo-stocks/internal/trading/engine"
	tradingprovider "github.com/rxtech-lab/argo-stocks/internal/trading/provider"
	"github.com/rxtech-lab/argo-stocks/internal/types"
	"github.com/rxtech-lab/argo-stocks/pkg/errors"
	"github.com/rxtech-lab/argo-stocks/pkg/marketdata/provider"
)

// TradingEngineV1 implements the TradingEngine interface with a fixed-interval poll loop.
type TradingEngineV1 struct {
	config      engine.Config
	prices      provider.PriceSource
	ledger      store.Ledger
	broker      tradingprovider.Broker
	factory     *strategy.Factory
	log         *logger.Logger
	initialized bool

	tickers atomic.Pointer[[]string]
	running atomic.Bool

	// cycleMu serializes scan cycles; instances is only touched under it.
	cycleMu   sync.Mutex
	instances map[string][]strategy.Strategy

	now        func() time.Time
	newOrderID func() string
}

// NewTradingEngineV1 creates a new TradingEngineV1 instance.
func NewTradingEngineV1(log *logger.Logger) *TradingEngineV1 {
	if log == nil {
		log = logger.NewNopLogger()
	}

	e := &TradingEngineV1{
		log:        log,
		factory:    strategy.NewFactory(nil),
		instances:  make(map[string][]strategy.Strategy),
		now:        func() time.Time { return time.Now().UTC() },
		newOrderID: uuid.NewString,
	}
	e.tickers.Store(&[]string{})

	return e
}

// Initialize implements engine.TradingEngine.
func (e *TradingEngineV1) Initialize(config engine.Config) error {
	if e.running.Load() {
		return errors.New(errors.ErrCodeEngineRunning, "cannot initialize a running engine")
	}

	if len(config.Strategies) == 0 {
		return errors.New(errors.ErrCodeNoValidStrategy, "no strategy configured")
	}

	if err := validator.New().Struct(config); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid trading engine config", err)
	}

	if config.Interval == 0 {
		config.Interval = engine.DefaultInterval
	}

	e.config = config
	e.SetTickers(config.Tickers)
	e.instances = make(map[string][]strategy.Strategy)
	e.initialized = true

	e.log.Debug("Trading engine initialized",
		zap.Int64("session_id", config.SessionID),
		zap.String("mode", string(config.Mode)),
		zap.Strings("tickers", config.Tickers),
		zap.Duration("interval", config.Interval),
	)

	return nil
}

// SetPriceSource implements engine.TradingEngine.
func (e *TradingEngineV1) SetPriceSource(source provider.PriceSource) error {
	e.prices = source

	return nil
}

// SetLedger implements engine.TradingEngine.
func (e *TradingEngineV1) SetLedger(ledger store.Ledger) error {
	e.ledger = ledger

	return nil
}

// SetBroker implements engine.TradingEngine.
func (e *TradingEngineV1) SetBroker(broker tradingprovider.Broker) error {
	e.broker = broker

	return nil
}

// SetStrategyFactory implements engine.TradingEngine.
func (e *TradingEngineV1) SetStrategyFactory(factory *strategy.Factory) error {
	if factory == nil {
		return errors.New(errors.ErrCodeInvalidParameter, "strategy factory is required")
	}

	e.factory = factory

	return nil
}

// SetTickers implements engine.TradingEngine.
func (e *TradingEngineV1) SetTickers(tickers []string) {
	fresh := slices.Clone(tickers)
	e.tickers.Store(&fresh)
}

// Tickers implements engine.TradingEngine.
func (e *TradingEngineV1) Tickers() []string {
	return slices.Clone(*e.tickers.Load())
}

// Status implements engine.TradingEngine.
func (e *TradingEngineV1) Status() engine.Status {
	if e.running.Load() {
		return engine.StatusRunning
	}

	return engine.StatusStopped
}

// Config implements engine.TradingEngine.
func (e *TradingEngineV1) Config() engine.Config {
	return e.config
}

// Run implements engine.TradingEngine.
func (e *TradingEngineV1) Run(ctx context.Context, callbacks engine.Callbacks) (runErr error) {
	if err := e.preRunCheck(); err != nil {
		return err
	}

	if !e.running.CompareAndSwap(false, true) {
		return errors.New(errors.ErrCodeEngineRunning, "trading engine is already running")
	}

	defer func() {
		e.running.Store(false)

		e.log.Info("Trading engine stopped", zap.Int64("session_id", e.config.SessionID), zap.Error(runErr))

		if callbacks.OnEngineStop != nil {
			(*callbacks.OnEngineStop)(runErr)
		}
	}()

	if _, err := e.ledger.EnsureAccount(ctx, e.config.Key(), e.config.InitialBalance); err != nil {
		return err
	}

	e.log.Info("Trading engine started",
		zap.Int64("session_id", e.config.SessionID),
		zap.String("mode", string(e.config.Mode)),
		zap.Strings("tickers", e.Tickers()),
		zap.Duration("interval", e.config.Interval),
	)

	for cycle := 1; ; cycle++ {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		// The cycle runs detached from cancellation so a stop request lets it finish.
		if _, err := e.runCycle(context.WithoutCancel(ctx), cycle, callbacks); err != nil {
			return err
		}

		timer := time.NewTimer(e.config.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()

			return nil
		case <-timer.C:
		}
	}
}

// RunCycle implements engine.TradingEngine.
func (e *TradingEngineV1) RunCycle(ctx context.Context, callbacks engine.Callbacks) (engine.CycleSummary, error) {
	if err := e.preRunCheck(); err != nil {
		return engine.CycleSummary{}, err
	}

	if _, err := e.ledger.EnsureAccount(ctx, e.config.Key(), e.config.InitialBalance); err != nil {
		return engine.CycleSummary{}, err
	}

	return e.runCycle(ctx, 0, callbacks)
}

func (e *TradingEngineV1) runCycle(ctx context.Context, cycle int, callbacks engine.Callbacks) (summary engine.CycleSummary, err error) {
	e.cycleMu.Lock()
	defer e.cycleMu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf(errors.ErrCodeUnknown, "trading cycle %d panicked: %v", cycle, r)
		}
	}()

	tickers := e.Tickers()
	summary = engine.CycleSummary{Cycle: cycle, Prices: make(map[string]float64, len(tickers))}

	if callbacks.OnCycleStart != nil {
		if err := (*callbacks.OnCycleStart)(cycle, tickers); err != nil {
			return summary, errors.Wrap(errors.ErrCodeCallbackFailed, "OnCycleStart callback failed", err)
		}
	}

	e.pruneInstances(tickers)

	for _, symbol := range tickers {
		price, ok := e.fetchPrice(ctx, symbol, callbacks)
		if !ok {
			continue
		}

		summary.Prices[symbol] = price

		instances, err := e.strategiesFor(symbol)
		if err != nil {
			e.reportError(callbacks, err)
			e.log.Error("Failed to build strategies", zap.String("ticker", symbol), zap.Error(err))

			continue
		}

		obs := types.Observation{Symbol: symbol, Price: price, Timestamp: e.now()}

		for _, s := range instances {
			decision, err := strategy.Evaluate(s, obs)
			if err != nil {
				e.reportError(callbacks, err)
				e.log.Error("Strategy evaluation failed",
					zap.String("strategy", s.Name()),
					zap.String("ticker", symbol),
					zap.Error(err),
				)

				continue
			}

			var action types.TradeAction

			switch {
			case decision.Buy:
				action = types.ActionBuy
			case decision.Sell:
				action = types.ActionSell
			default:
				continue
			}

			trade, err := e.executeTrade(ctx, s.Name(), obs, action)
			if err != nil {
				e.reportError(callbacks, err)
				e.log.Error("Trade execution failed",
					zap.String("strategy", s.Name()),
					zap.String("ticker", symbol),
					zap.String("action", string(action)),
					zap.Error(err),
				)

				continue
			}

			if trade.IsSome() {
				summary.Trades = append(summary.Trades, trade.Unwrap())

				if callbacks.OnTrade != nil {
					(*callbacks.OnTrade)(trade.Unwrap())
				}
			}
		}
	}

	summary.Equity = e.checkpoint(ctx, summary.Prices, callbacks)

	if callbacks.OnCycleEnd != nil {
		(*callbacks.OnCycleEnd)(summary)
	}

	return summary, nil
}

func (e *TradingEngineV1) fetchPrice(ctx context.Context, symbol string, callbacks engine.Callbacks) (float64, bool) {
	price, err := e.prices.CurrentPrice(ctx, symbol)
	if err != nil {
		e.reportError(callbacks, err)
		e.log.Warn("Failed to fetch price", zap.String("ticker", symbol), zap.Error(err))

		return 0, false
	}

	if price.IsNone() || price.Unwrap() <= 0 {
		e.log.Warn("No price available", zap.String("ticker", symbol))

		return 0, false
	}

	return price.Unwrap(), true
}

// strategiesFor returns the strategy instances bound to symbol, building
// them from the configured templates on first use.
func (e *TradingEngineV1) strategiesFor(symbol string) ([]strategy.Strategy, error) {
	if instances, ok := e.instances[symbol]; ok {
		return instances, nil
	}

	instances := make([]strategy.Strategy, 0, len(e.config.Strategies))

	for _, cfg := range e.config.Strategies {
		s, err := e.factory.Create(cfg)
		if err != nil {
			return nil, err
		}

		if err := s.Initialize(strategy.Context{Symbol: symbol, Logger: e.log}); err != nil {
			return nil, err
		}

		instances = append(instances, s)
	}

	e.instances[symbol] = instances

	return instances, nil
}

func (e *TradingEngineV1) pruneInstances(tickers []string) {
	for symbol := range e.instances {
		if !slices.Contains(tickers, symbol) {
			delete(e.instances, symbol)
		}
	}
}

// executeTrade runs one trade in its own ledger transaction. It returns
// None when the trade was skipped for lack of funds or shares or because
// the broker declined it. LIVE orders are placed before that transaction
// opens, after a read-only check of the same position.
func (e *TradingEngineV1) executeTrade(ctx context.Context, strategyName string, obs types.Observation, action types.TradeAction) (optional.Option[types.Trade], error) {
	key := e.config.Key()
	quantity := decimal.NewFromFloat(engine.TradeQuantity)
	price := decimal.NewFromFloat(obs.Price)
	cost := quantity.Mul(price)

	orderID := e.newOrderID()
	status := types.TradeStatusFilled

	if e.config.Mode == types.ModeLive {
		ok, err := e.precheckTrade(ctx, strategyName, obs.Symbol, action, quantity, cost)
		if err != nil || !ok {
			return optional.None[types.Trade](), err
		}

		confirmation, err := e.broker.PlaceOrder(ctx, tradingprovider.OrderRequest{
			Symbol:   obs.Symbol,
			Quantity: engine.TradeQuantity,
			Side:     action,
			Type:     types.OrderTypeMarket,
		})
		if err != nil {
			return optional.None[types.Trade](), errors.Wrapf(errors.ErrCodeOrderFailed, err, "broker rejected %s %s", action, obs.Symbol)
		}

		if confirmation.IsNone() {
			e.log.Warn("Broker returned no confirmation, ledger untouched",
				zap.String("ticker", obs.Symbol),
				zap.String("action", string(action)),
			)

			return optional.None[types.Trade](), nil
		}

		orderID = confirmation.Unwrap().OrderID
		status = types.TradeStatusSubmitted
	}

	tx, err := e.ledger.Begin(ctx)
	if err != nil {
		return optional.None[types.Trade](), err
	}

	committed := false

	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil {
				e.log.Warn("Failed to roll back trade", zap.Error(err))
			}
		}
	}()

	account, holding, err := e.position(tx, strategyName, obs.Symbol)
	if err != nil {
		return optional.None[types.Trade](), err
	}

	if !e.affordable(account, holding, action, quantity, cost) {
		if status == types.TradeStatusSubmitted {
			return optional.None[types.Trade](), errors.Newf(errors.ErrCodeTransactionFailed,
				"position of %s changed while order %s was in flight", obs.Symbol, orderID)
		}

		return optional.None[types.Trade](), nil
	}

	cash := decimal.NewFromFloat(account.CashBalance)
	heldQuantity := decimal.NewFromFloat(holding.Quantity)

	if action == types.ActionBuy {
		newQuantity := heldQuantity.Add(quantity)
		averagePrice := heldQuantity.Mul(decimal.NewFromFloat(holding.AveragePrice)).Add(cost).Div(newQuantity)

		cash = cash.Sub(cost)
		holding.Quantity = newQuantity.InexactFloat64()
		holding.AveragePrice = averagePrice.InexactFloat64()
	} else {
		cash = cash.Add(cost)
		holding.Quantity = heldQuantity.Sub(quantity).InexactFloat64()
	}

	if err := tx.UpdateCash(key, cash.InexactFloat64()); err != nil {
		return optional.None[types.Trade](), err
	}

	if _, err := tx.SaveHolding(holding); err != nil {
		return optional.None[types.Trade](), err
	}

	trade, err := tx.InsertTrade(types.Trade{
		SessionID: e.config.SessionID,
		OrderID:   orderID,
		Symbol:    obs.Symbol,
		Action:    action,
		Quantity:  engine.TradeQuantity,
		Price:     obs.Price,
		TotalCost: cost.InexactFloat64(),
		Strategy:  strategyName,
		Status:    status,
		Mode:      e.config.Mode,
		Timestamp: obs.Timestamp,
	})
	if err != nil {
		return optional.None[types.Trade](), err
	}

	if err := tx.Commit(); err != nil {
		return optional.None[types.Trade](), err
	}

	committed = true

	e.log.Info("Trade executed",
		zap.Int64("session_id", e.config.SessionID),
		zap.String("strategy", strategyName),
		zap.String("ticker", obs.Symbol),
		zap.String("action", string(action)),
		zap.Float64("price", obs.Price),
		zap.String("status", string(status)),
		zap.String("order_id", orderID),
	)

	return optional.Some(trade), nil
}

// precheckTrade reads the position in a transaction that is rolled back
// before any broker call.
func (e *TradingEngineV1) precheckTrade(ctx context.Context, strategyName, symbol string, action types.TradeAction, quantity, cost decimal.Decimal) (bool, error) {
	tx, err := e.ledger.Begin(ctx)
	if err != nil {
		return false, err
	}

	account, holding, err := e.position(tx, strategyName, symbol)

	if rbErr := tx.Rollback(); rbErr != nil {
		e.log.Warn("Failed to roll back position check", zap.Error(rbErr))
	}

	if err != nil {
		return false, err
	}

	return e.affordable(account, holding, action, quantity, cost), nil
}

// position loads the account and the holding of strategyName in symbol.
// A missing holding is returned empty.
func (e *TradingEngineV1) position(tx store.LedgerTx, strategyName, symbol string) (types.Account, types.Holding, error) {
	key := e.config.Key()

	account, err := tx.Account(key)
	if err != nil {
		return types.Account{}, types.Holding{}, err
	}

	held, err := tx.Holding(key, strategyName, symbol)
	if err != nil {
		return types.Account{}, types.Holding{}, err
	}

	holding := types.Holding{
		SessionID: e.config.SessionID,
		Mode:      e.config.Mode,
		Strategy:  strategyName,
		Symbol:    symbol,
	}
	if held.IsSome() {
		holding = held.Unwrap()
	}

	return account, holding, nil
}

// affordable reports whether the account can pay for a buy or the holding
// covers a sell.
func (e *TradingEngineV1) affordable(account types.Account, holding types.Holding, action types.TradeAction, quantity, cost decimal.Decimal) bool {
	switch action {
	case types.ActionBuy:
		if decimal.NewFromFloat(account.CashBalance).LessThan(cost) {
			e.log.Warn("Insufficient funds, skipping buy",
				zap.String("strategy", holding.Strategy),
				zap.String("ticker", holding.Symbol),
				zap.Float64("cash", account.CashBalance),
				zap.Float64("cost", cost.InexactFloat64()),
			)

			return false
		}
	case types.ActionSell:
		if decimal.NewFromFloat(holding.Quantity).LessThan(quantity) {
			e.log.Warn("Insufficient shares, skipping sell",
				zap.String("strategy", holding.Strategy),
				zap.String("ticker", holding.Symbol),
				zap.Float64("held", holding.Quantity),
			)

			return false
		}
	}

	return true
}

// checkpoint rewrites the account equity when every open holding was
// priced in this cycle.
func (e *TradingEngineV1) checkpoint(ctx context.Context, prices map[string]float64, callbacks engine.Callbacks) optional.Option[float64] {
	key := e.config.Key()

	holdings, err := e.ledger.Holdings(ctx, key)
	if err != nil {
		e.reportError(callbacks, err)
		e.log.Warn("Failed to load holdings for valuation", zap.Error(err))

		return optional.None[float64]()
	}

	account, err := e.ledger.GetAccount(ctx, key)
	if err != nil {
		e.reportError(callbacks, err)
		e.log.Warn("Failed to load account for valuation", zap.Error(err))

		return optional.None[float64]()
	}

	equity := decimal.NewFromFloat(account.CashBalance)

	for _, holding := range holdings {
		if holding.Quantity == 0 {
			continue
		}

		price, ok := prices[holding.Symbol]
		if !ok {
			e.log.Debug("Skipping valuation, holding not priced", zap.String("ticker", holding.Symbol))

			return optional.None[float64]()
		}

		equity = equity.Add(decimal.NewFromFloat(holding.Quantity).Mul(decimal.NewFromFloat(price)))
	}

	value := equity.InexactFloat64()

	if err := e.ledger.UpdateEquity(ctx, key, value); err != nil {
		e.reportError(callbacks, err)
		e.log.Warn("Failed to write valuation checkpoint", zap.Error(err))

		return optional.None[float64]()
	}

	return optional.Some(value)
}

func (e *TradingEngineV1) reportError(callbacks engine.Callbacks, err error) {
	if callbacks.OnError != nil {
		(*callbacks.OnError)(err)
	}
}

// preRunCheck validates that all required components are configured before running.
func (e *TradingEngineV1) preRunCheck() error {
	if !e.initialized {
		return errors.New(errors.ErrCodeInvalidConfiguration, "engine not initialized - call Initialize() first")
	}

	if e.prices == nil {
		return errors.New(errors.ErrCodeInvalidConfiguration, "price source not set - call SetPriceSource() first")
	}

	if e.ledger == nil {
		return errors.New(errors.ErrCodeInvalidConfiguration, "ledger not set - call SetLedger() first")
	}

	if e.config.Mode == types.ModeLive && e.broker == nil {
		return errors.New(errors.ErrCodeInvalidConfiguration, "LIVE mode needs a broker - call SetBroker() first")
	}

	return nil
}

// Verify TradingEngineV1 implements engine.TradingEngine interface.
var _ engine.TradingEngine = (*TradingEngineV1)(nil)
