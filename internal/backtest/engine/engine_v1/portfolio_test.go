package engine

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-stocks/internal/types"
)

type PortfolioTestSuite struct {
	suite.Suite
}

func TestPortfolioSuite(t *testing.T) {
	suite.Run(t, new(PortfolioTestSuite))
}

func (suite *PortfolioTestSuite) TestBuySizesOnCurrentCash() {
	book := newPortfolio(10000)

	first := book.Buy("2023-01-03", "AAPL", 125, "GoldenCross_SMA")
	suite.Require().True(first.IsSome())
	suite.Equal(8.0, first.Unwrap().Quantity)
	suite.Equal(1000.0, first.Unwrap().Cost)
	suite.Equal(9000.0, book.Cash())

	// 10% of 9000 buys 7 shares, not 8
	second := book.Buy("2023-01-04", "AAPL", 125, "GoldenCross_SMA")
	suite.Require().True(second.IsSome())
	suite.Equal(7.0, second.Unwrap().Quantity)
	suite.Equal(int64(15), book.holdings["AAPL"])
	suite.Equal(2, book.tradeCount["AAPL"])
}

func (suite *PortfolioTestSuite) TestSellLiquidates() {
	book := newPortfolio(10000)
	suite.True(book.Sell("2023-01-03", "AAPL", 100, "RSI_Oscillator").IsNone())

	book.Buy("2023-01-03", "AAPL", 100, "RSI_Oscillator")
	sold := book.Sell("2023-01-04", "AAPL", 120, "RSI_Oscillator")
	suite.Require().True(sold.IsSome())
	suite.Equal(types.ActionSell, sold.Unwrap().Action)
	suite.Equal(10.0, sold.Unwrap().Quantity)
	suite.Equal(1200.0, sold.Unwrap().Cost)
	suite.Equal(10200.0, book.Cash())
	suite.Zero(book.holdings["AAPL"])
	suite.Equal(200.0, book.TickerValue("AAPL", 50))
}

func (suite *PortfolioTestSuite) TestValueIgnoresUnpricedHoldings() {
	book := newPortfolio(10000)
	book.Buy("2023-01-03", "AAPL", 100, "a")
	book.Buy("2023-01-03", "MSFT", 50, "a")

	// AAPL: 10 shares for 1000; MSFT: 18 shares for 900
	suite.Equal(8100.0, book.Cash())
	suite.Equal(8100.0+10*110, book.Value(map[string]float64{"AAPL": 110}))
	suite.Equal(8100.0+10*110+18*60, book.Value(map[string]float64{"AAPL": 110, "MSFT": 60}))
	suite.Equal(-900.0, book.TickerValue("MSFT", 0))
}

type MetricsTestSuite struct {
	suite.Suite
}

func TestMetricsSuite(t *testing.T) {
	suite.Run(t, new(MetricsTestSuite))
}

func (suite *MetricsTestSuite) TestEquityDrawdown() {
	flat := []types.EquityPoint{{Value: 100}, {Value: 110}, {Value: 110}}
	suite.Equal(0.0, equityDrawdownPct(flat))

	halved := []types.EquityPoint{{Value: 100}, {Value: 50}, {Value: 80}}
	suite.Equal(50.0, equityDrawdownPct(halved))
}

func (suite *MetricsTestSuite) TestTickerDrawdown() {
	suite.Equal(0.0, tickerDrawdownPct(nil))
	suite.Equal(0.0, tickerDrawdownPct([]float64{0, -10, -20}))
	suite.Equal(50.0, tickerDrawdownPct([]float64{0, 100, 50, 60}))
}

func (suite *MetricsTestSuite) TestTotalReturn() {
	suite.Equal(0.0, totalReturnPct(0, 100))
	suite.Equal(12.34, totalReturnPct(10000, 11234))
}

func (suite *MetricsTestSuite) TestStockPerformance() {
	suite.Equal(types.StockPerformance{}, stockPerformance(nil, 0))
	suite.Equal(types.StockPerformance{PnL: 12.35, MaxDrawdownPct: 0, Trades: 3}, stockPerformance([]float64{0, 12.345}, 3))
}
