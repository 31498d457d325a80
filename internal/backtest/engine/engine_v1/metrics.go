package engine

import (
	"github.com/rxtech-lab/argo-stocks/internal/trading/stats"
	"github.com/rxtech-lab/argo-stocks/internal/types"
	"github.com/rxtech-lab/argo-stocks/internal/utils"
)

// totalReturnPct is the percent return of final over initial, 0 without capital.
func totalReturnPct(initial, final float64) float64 {
	if initial <= 0 {
		return 0
	}

	return utils.Round2((final - initial) / initial * 100)
}

// equityDrawdownPct is the maximum drawdown of the equity curve in percent.
func equityDrawdownPct(curve []types.EquityPoint) float64 {
	values := make([]float64, len(curve))
	for i, point := range curve {
		values[i] = point.Value
	}

	return utils.Round2(stats.MaxDrawdown(values) * 100)
}

// tickerDrawdownPct is the largest absolute decline of a synthetic P&L
// curve as a percent of the curve's peak. A curve that never rises above
// zero reports 0.
func tickerDrawdownPct(curve []float64) float64 {
	if len(curve) == 0 {
		return 0
	}

	peak := curve[0]
	maxDecline := 0.0

	for _, value := range curve {
		if value > peak {
			peak = value
		}

		if decline := peak - value; decline > maxDecline {
			maxDecline = decline
		}
	}

	if peak <= 0 {
		return 0
	}

	return utils.Round2(maxDecline / peak * 100)
}

func stockPerformance(curve []float64, trades int) types.StockPerformance {
	if len(curve) == 0 {
		return types.StockPerformance{}
	}

	return types.StockPerformance{
		PnL:            utils.Round2(curve[len(curve)-1]),
		MaxDrawdownPct: tickerDrawdownPct(curve),
		Trades:         trades,
	}
}
