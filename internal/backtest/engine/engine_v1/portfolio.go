package engine

import (
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/argo-stocks/internal/types"
	"github.com/rxtech-lab/argo-stocks/internal/utils"
)

// portfolio is the pooled cash and per-ticker share count of one backtest
// run. Every trade also lands in the ticker's own cash-flow ledger so each
// ticker's contribution can be valued in isolation.
type portfolio struct {
	cash       decimal.Decimal
	holdings   map[string]int64
	cashFlow   map[string]decimal.Decimal
	tradeCount map[string]int
	trades     []types.BacktestTrade
}

func newPortfolio(initialCapital float64) *portfolio {
	return &portfolio{
		cash:       decimal.NewFromFloat(initialCapital),
		holdings:   make(map[string]int64),
		cashFlow:   make(map[string]decimal.Decimal),
		tradeCount: make(map[string]int),
	}
}

func (p *portfolio) Cash() float64 {
	return p.cash.InexactFloat64()
}

// Value marks every holding to prices. Holdings without a price contribute nothing.
func (p *portfolio) Value(prices map[string]float64) float64 {
	value := p.cash

	for ticker, price := range prices {
		value = value.Add(decimal.NewFromInt(p.holdings[ticker]).Mul(decimal.NewFromFloat(price)))
	}

	return value.InexactFloat64()
}

// TickerValue is the synthetic P&L of ticker: its cash flow plus its holding at price.
func (p *portfolio) TickerValue(ticker string, price float64) float64 {
	held := decimal.NewFromInt(p.holdings[ticker]).Mul(decimal.NewFromFloat(price))

	return p.cashFlow[ticker].Add(held).InexactFloat64()
}

// Buy invests BuyCashFraction of current cash into whole shares of ticker.
// It returns None when that budget does not exceed price.
func (p *portfolio) Buy(day, ticker string, price float64, strategyName string) optional.Option[types.BacktestTrade] {
	budget := p.cash.Mul(decimal.NewFromFloat(BuyCashFraction))
	if !budget.GreaterThan(decimal.NewFromFloat(price)) {
		return optional.None[types.BacktestTrade]()
	}

	quantity := utils.WholeSharesForFraction(p.Cash(), price, BuyCashFraction)
	if quantity <= 0 {
		return optional.None[types.BacktestTrade]()
	}

	cost := decimal.NewFromInt(quantity).Mul(decimal.NewFromFloat(price))

	p.cash = p.cash.Sub(cost)
	p.holdings[ticker] += quantity
	p.cashFlow[ticker] = p.cashFlow[ticker].Sub(cost)

	return optional.Some(p.record(day, ticker, types.ActionBuy, price, quantity, cost, strategyName))
}

// Sell liquidates the whole holding of ticker. It returns None when nothing is held.
func (p *portfolio) Sell(day, ticker string, price float64, strategyName string) optional.Option[types.BacktestTrade] {
	quantity := p.holdings[ticker]
	if quantity <= 0 {
		return optional.None[types.BacktestTrade]()
	}

	proceeds := decimal.NewFromInt(quantity).Mul(decimal.NewFromFloat(price))

	p.cash = p.cash.Add(proceeds)
	p.holdings[ticker] = 0
	p.cashFlow[ticker] = p.cashFlow[ticker].Add(proceeds)

	return optional.Some(p.record(day, ticker, types.ActionSell, price, quantity, proceeds, strategyName))
}

func (p *portfolio) record(day, ticker string, action types.TradeAction, price float64, quantity int64, cost decimal.Decimal, strategyName string) types.BacktestTrade {
	trade := types.BacktestTrade{
		Date:     day,
		Ticker:   ticker,
		Action:   action,
		Price:    price,
		Quantity: float64(quantity),
		Cost:     cost.InexactFloat64(),
		Strategy: strategyName,
	}

	p.trades = append(p.trades, trade)
	p.tradeCount[ticker]++

	return trade
}
