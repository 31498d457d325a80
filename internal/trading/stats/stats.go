package stats

import (
	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/argo-stocks/internal/types"
	"github.com/rxtech-lab/argo-stocks/internal/utils"
)

// SummaryTradeLimit caps the number of trades read for a performance summary.
const SummaryTradeLimit = 1000

// accumulator holds running totals for one trade side.
type accumulator struct {
	count int
	sum   decimal.Decimal
}

func (a *accumulator) add(price float64) {
	a.count++
	a.sum = a.sum.Add(decimal.NewFromFloat(price))
}

func (a *accumulator) mean() float64 {
	if a.count == 0 {
		return 0
	}

	return utils.Round2(a.sum.Div(decimal.NewFromInt(int64(a.count))).InexactFloat64())
}

// Summarize computes the performance summary of trades. Only FILLED trades
// count; average prices are rounded to 2 decimals.
func Summarize(trades []types.Trade) types.TradeSummary {
	var (
		buys    accumulator
		sells   accumulator
		summary types.TradeSummary
	)

	for _, trade := range trades {
		if trade.Status != types.TradeStatusFilled {
			continue
		}

		summary.TotalTrades++

		switch trade.Action {
		case types.ActionBuy:
			buys.add(trade.Price)
		case types.ActionSell:
			sells.add(trade.Price)
		}

		if trade.Timestamp.After(summary.LastTradeTime) {
			summary.LastTradeTime = trade.Timestamp
		}
	}

	summary.BuyOrders = buys.count
	summary.SellOrders = sells.count
	summary.AvgBuyPrice = buys.mean()
	summary.AvgSellPrice = sells.mean()

	return summary
}

// MaxDrawdown returns the largest peak-to-trough fraction of curve. Points
// are skipped until the running peak is positive.
func MaxDrawdown(curve []float64) float64 {
	var peak, maxDrawdown float64

	for _, value := range curve {
		if value > peak {
			peak = value
		}

		if peak <= 0 {
			continue
		}

		if drawdown := (peak - value) / peak; drawdown > maxDrawdown {
			maxDrawdown = drawdown
		}
	}

	return maxDrawdown
}
