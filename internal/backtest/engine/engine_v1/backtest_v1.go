package engine

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/argo-stocks/internal/backtest/engine"
	"github.com/rxtech-lab/argo-stocks/internal/backtest/engine/engine_v1/cache"
	"github.com/rxtech-lab/argo-stocks/internal/logger"
	"github.com/rxtech-lab/argo-stocks/internal/strategy"
	"github.com/rxtech-lab/argo-stocks/internal/types"
	"github.com/rxtech-lab/argo-stocks/pkg/errors"
	"github.com/rxtech-lab/argo-stocks/pkg/marketdata/provider"
)

// NoDataMessage is the result error of a run in which no ticker had data in range.
const NoDataMessage = "No data found for any ticker in the specified range"

type BacktestEngineV1 struct {
	config      BacktestEngineV1Config
	strategies  []strategy.Config
	prices      provider.PriceSource
	factory     *strategy.Factory
	cache       cache.Cache
	log         *logger.Logger
	initialized bool
	now         func() time.Time
}

// tickerSeries is the in-range history of one ticker.
type tickerSeries struct {
	bars  []types.PriceBar
	byDay map[string]types.PriceBar
}

func NewBacktestEngineV1(log *logger.Logger) *BacktestEngineV1 {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &BacktestEngineV1{
		config:  EmptyConfig(),
		factory: strategy.NewFactory(nil),
		cache:   cache.NewHistoryCacheV1(),
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Initialize implements engine.Engine.
func (b *BacktestEngineV1) Initialize(config string) error {
	parsed := EmptyConfig()
	if err := yaml.Unmarshal([]byte(config), &parsed); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestConfigError, "failed to parse backtest config", err)
	}

	return b.InitializeWithConfig(parsed)
}

// InitializeWithConfig initializes the engine from an already decoded configuration.
// Strategy names in the configuration are resolved and loaded.
func (b *BacktestEngineV1) InitializeWithConfig(config BacktestEngineV1Config) error {
	if config.HistoryDays == 0 {
		config.HistoryDays = DefaultHistoryDays
	}

	config.Tickers = provider.NormalizeSymbols(config.Tickers)

	if err := config.Validate(); err != nil {
		return err
	}

	b.config = config
	b.strategies = nil

	for _, name := range config.Strategies {
		cfg, err := b.factory.Catalog().Resolve(name)
		if err != nil {
			return err
		}

		if err := b.LoadStrategy(cfg); err != nil {
			return err
		}
	}

	b.initialized = true

	b.log.Debug("Backtest engine initialized",
		zap.Float64("initial_capital", config.InitialCapital),
		zap.Strings("tickers", config.Tickers),
		zap.Strings("strategies", config.Strategies),
	)

	return nil
}

// SetPriceSource implements engine.Engine. Cached histories of the previous source are dropped.
func (b *BacktestEngineV1) SetPriceSource(source provider.PriceSource) error {
	b.prices = source
	b.cache.Reset()

	return nil
}

// SetStrategyFactory implements engine.Engine.
func (b *BacktestEngineV1) SetStrategyFactory(factory *strategy.Factory) error {
	if factory == nil {
		return errors.New(errors.ErrCodeInvalidParameter, "strategy factory is required")
	}

	b.factory = factory

	return nil
}

// SetTickers replaces the configured tickers.
func (b *BacktestEngineV1) SetTickers(tickers []string) {
	b.config.Tickers = provider.NormalizeSymbols(tickers)
}

// LoadStrategy implements engine.Engine.
func (b *BacktestEngineV1) LoadStrategy(cfg strategy.Config) error {
	if cfg.Name == "" || cfg.Params == nil {
		return errors.New(errors.ErrCodeStrategyConfigError, "strategy config needs a name and parameters")
	}

	b.strategies = append(b.strategies, cfg)
	b.log.Debug("Strategy loaded",
		zap.String("strategy", cfg.Name),
		zap.Int("total_strategies", len(b.strategies)),
	)

	return nil
}

// GetConfigSchema implements engine.Engine.
func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	schema, err := b.config.GenerateSchemaJSON()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeBacktestConfigError, "failed to generate schema", err)
	}

	return schema, nil
}

// Run implements engine.Engine.
func (b *BacktestEngineV1) Run(ctx context.Context, callbacks engine.LifecycleCallbacks) (result types.BacktestResult, runErr error) {
	if err := b.preRunCheck(); err != nil {
		return types.BacktestResult{}, err
	}

	defer func() {
		if callbacks.OnBacktestEnd != nil {
			(*callbacks.OnBacktestEnd)(runErr)
		}
	}()

	runID := uuid.New().String()
	startedAt := b.now()

	b.log.Info("Starting backtest",
		zap.String("run_id", runID),
		zap.Strings("tickers", b.config.Tickers),
		zap.Int("strategies", len(b.strategies)),
	)

	series := b.loadSeries(ctx)
	if len(series) == 0 {
		b.log.Warn("No data for any ticker in range", zap.String("run_id", runID))

		return types.BacktestResult{ID: runID, Timestamp: startedAt, Error: NoDataMessage}, nil
	}

	instances, err := b.buildInstances(series)
	if err != nil {
		return types.BacktestResult{}, err
	}

	timeline := buildTimeline(series)
	active := b.activeTickers(series)

	if callbacks.OnBacktestStart != nil {
		if err := (*callbacks.OnBacktestStart)(runID, active, len(timeline)); err != nil {
			return types.BacktestResult{}, errors.Wrap(errors.ErrCodeCallbackFailed, "OnBacktestStart callback failed", err)
		}
	}

	book := newPortfolio(b.config.InitialCapital)
	equityCurve := make([]types.EquityPoint, 0, len(timeline))
	tickerCurves := make(map[string][]float64, len(b.config.Tickers))

	for i, day := range timeline {
		if err := ctx.Err(); err != nil {
			return types.BacktestResult{}, errors.Wrapf(errors.ErrCodeBacktestCancelled, err, "backtest cancelled at %s", day)
		}

		prices := make(map[string]float64, len(active))

		for _, ticker := range active {
			if bar, ok := series[ticker].byDay[day]; ok {
				prices[ticker] = bar.Close
			}
		}

		equityCurve = append(equityCurve, types.EquityPoint{Date: day, Value: book.Value(prices)})

		for _, ticker := range b.config.Tickers {
			tickerCurves[ticker] = append(tickerCurves[ticker], book.TickerValue(ticker, prices[ticker]))
		}

		for _, ticker := range active {
			bar, ok := series[ticker].byDay[day]
			if !ok {
				continue
			}

			b.processTicker(book, instances[ticker], ticker, bar, callbacks)
		}

		if callbacks.OnProcessDay != nil {
			if err := (*callbacks.OnProcessDay)(i+1, len(timeline)); err != nil {
				return types.BacktestResult{}, errors.Wrap(errors.ErrCodeCallbackFailed, "OnProcessDay callback failed", err)
			}
		}
	}

	result = b.buildResult(runID, startedAt, book, equityCurve, tickerCurves, series)

	b.log.Info("Backtest completed",
		zap.String("run_id", runID),
		zap.Float64("final_value", result.FinalValue),
		zap.Float64("total_return_pct", result.TotalReturnPct),
		zap.Int("total_trades", result.TotalTrades),
	)

	return result, nil
}

// processTicker feeds one observation to every strategy of ticker and
// executes their signals against the portfolio immediately.
func (b *BacktestEngineV1) processTicker(book *portfolio, strategies []strategy.Strategy, ticker string, bar types.PriceBar, callbacks engine.LifecycleCallbacks) {
	day, price := bar.Day(), bar.Close
	obs := types.Observation{Symbol: ticker, Price: price, Timestamp: bar.Date}

	for _, s := range strategies {
		decision, err := strategy.Evaluate(s, obs)
		if err != nil {
			b.log.Error("Strategy error",
				zap.String("date", day),
				zap.String("ticker", ticker),
				zap.String("strategy", s.Name()),
				zap.Error(err),
			)

			continue
		}

		var trade types.BacktestTrade

		switch {
		case decision.Buy:
			bought := book.Buy(day, ticker, price, s.Name())
			if bought.IsNone() {
				continue
			}

			trade = bought.Unwrap()
		case decision.Sell:
			sold := book.Sell(day, ticker, price, s.Name())
			if sold.IsNone() {
				continue
			}

			trade = sold.Unwrap()
		default:
			continue
		}

		if callbacks.OnTrade != nil {
			(*callbacks.OnTrade)(trade)
		}
	}
}

// loadSeries fetches and filters the history of every configured ticker.
// Tickers that fail to fetch or have no bars in range are left out.
func (b *BacktestEngineV1) loadSeries(ctx context.Context) map[string]*tickerSeries {
	series := make(map[string]*tickerSeries, len(b.config.Tickers))

	for _, ticker := range b.config.Tickers {
		bars, err := b.history(ctx, ticker)
		if err != nil {
			b.log.Error("Error fetching data for backtest", zap.String("ticker", ticker), zap.Error(err))

			continue
		}

		inRange := make([]types.PriceBar, 0, len(bars))

		for _, bar := range bars {
			if b.config.InRange(bar.Day()) {
				inRange = append(inRange, bar)
			}
		}

		if len(inRange) == 0 {
			b.log.Warn("No data for ticker in range", zap.String("ticker", ticker))

			continue
		}

		sort.SliceStable(inRange, func(i, j int) bool { return inRange[i].Date.Before(inRange[j].Date) })

		byDay := make(map[string]types.PriceBar, len(inRange))
		for _, bar := range inRange {
			byDay[bar.Day()] = bar
		}

		series[ticker] = &tickerSeries{bars: inRange, byDay: byDay}
	}

	return series
}

func (b *BacktestEngineV1) history(ctx context.Context, ticker string) ([]types.PriceBar, error) {
	if cached := b.cache.Get(ticker, b.config.HistoryDays); cached.IsSome() {
		return cached.Unwrap(), nil
	}

	bars, err := b.prices.DailyHistory(ctx, ticker, b.config.HistoryDays)
	if err != nil {
		return nil, err
	}

	b.cache.Set(ticker, b.config.HistoryDays, bars)

	return bars, nil
}

// buildInstances constructs one fresh strategy instance per (ticker, strategy).
// Instances that fail to initialize are logged and left out.
func (b *BacktestEngineV1) buildInstances(series map[string]*tickerSeries) (map[string][]strategy.Strategy, error) {
	instances := make(map[string][]strategy.Strategy, len(series))

	for ticker := range series {
		for _, cfg := range b.strategies {
			s, err := b.factory.Create(cfg)
			if err != nil {
				return nil, errors.Wrapf(errors.ErrCodeBacktestInitFailed, err, "failed to create strategy %s", cfg.Name)
			}

			if err := s.Initialize(strategy.Context{Symbol: ticker, Logger: b.log}); err != nil {
				b.log.Error("Failed to initialize strategy",
					zap.String("strategy", cfg.Name),
					zap.String("ticker", ticker),
					zap.Error(err),
				)

				continue
			}

			instances[ticker] = append(instances[ticker], s)
		}
	}

	return instances, nil
}

// activeTickers returns the configured tickers that have data, in configuration order.
func (b *BacktestEngineV1) activeTickers(series map[string]*tickerSeries) []string {
	active := make([]string, 0, len(series))

	for _, ticker := range b.config.Tickers {
		if _, ok := series[ticker]; ok {
			active = append(active, ticker)
		}
	}

	return active
}

// buildTimeline returns the sorted union of trading days across series.
func buildTimeline(series map[string]*tickerSeries) []string {
	seen := make(map[string]struct{})
	timeline := make([]string, 0)

	for _, s := range series {
		for _, bar := range s.bars {
			day := bar.Day()
			if _, ok := seen[day]; ok {
				continue
			}

			seen[day] = struct{}{}
			timeline = append(timeline, day)
		}
	}

	slices.Sort(timeline)

	return timeline
}

func (b *BacktestEngineV1) buildResult(runID string, startedAt time.Time, book *portfolio, equityCurve []types.EquityPoint, tickerCurves map[string][]float64, series map[string]*tickerSeries) types.BacktestResult {
	finalValue := b.config.InitialCapital
	if len(equityCurve) > 0 {
		finalValue = equityCurve[len(equityCurve)-1].Value
	}

	perStock := make(map[string]types.StockPerformance, len(b.config.Tickers))
	for _, ticker := range b.config.Tickers {
		perStock[ticker] = stockPerformance(tickerCurves[ticker], book.tradeCount[ticker])
	}

	dailyPrices := make(map[string][]types.DailyPrice, len(series))

	for ticker, s := range series {
		prices := make([]types.DailyPrice, len(s.bars))
		for i, bar := range s.bars {
			prices[i] = types.DailyPrice{Date: bar.Day(), Close: bar.Close}
		}

		dailyPrices[ticker] = prices
	}

	trades := book.trades
	if trades == nil {
		trades = []types.BacktestTrade{}
	}

	return types.BacktestResult{
		ID:                  runID,
		Timestamp:           startedAt,
		InitialCapital:      b.config.InitialCapital,
		FinalValue:          finalValue,
		TotalReturnPct:      totalReturnPct(b.config.InitialCapital, finalValue),
		MaxDrawdownPct:      equityDrawdownPct(equityCurve),
		TotalTrades:         len(trades),
		EquityCurve:         equityCurve,
		Trades:              trades,
		PerStockPerformance: perStock,
		DailyPrices:         dailyPrices,
	}
}

func (b *BacktestEngineV1) preRunCheck() error {
	if !b.initialized {
		b.log.Error("Backtest engine not initialized")

		return errors.New(errors.ErrCodeBacktestInitFailed, "engine not initialized - call Initialize() first")
	}

	if len(b.strategies) == 0 {
		b.log.Error("No strategies loaded")

		return errors.New(errors.ErrCodeBacktestNoStrategies, "no strategies loaded")
	}

	if len(b.config.Tickers) == 0 {
		b.log.Error("No tickers configured")

		return errors.New(errors.ErrCodeBacktestNoTickers, "no tickers configured")
	}

	if b.prices == nil {
		b.log.Error("No price source set")

		return errors.New(errors.ErrCodeBacktestInitFailed, "price source not set - call SetPriceSource() first")
	}

	return nil
}

// Verify BacktestEngineV1 implements engine.Engine interface.
var _ engine.Engine = (*BacktestEngineV1)(nil)
