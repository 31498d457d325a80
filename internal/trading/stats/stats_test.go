package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-stocks/internal/types"
)

type StatsTestSuite struct {
	suite.Suite
}

func TestStatsSuite(t *testing.T) {
	suite.Run(t, new(StatsTestSuite))
}

func (suite *StatsTestSuite) TestSummarize() {
	base := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)
	trades := []types.Trade{
		{Symbol: "AAPL", Action: types.ActionBuy, Price: 100, Status: types.TradeStatusFilled, Timestamp: base},
		{Symbol: "AAPL", Action: types.ActionBuy, Price: 101.335, Status: types.TradeStatusFilled, Timestamp: base.Add(time.Minute)},
		{Symbol: "AAPL", Action: types.ActionSell, Price: 110, Status: types.TradeStatusFilled, Timestamp: base.Add(3 * time.Minute)},
		{Symbol: "TSLA", Action: types.ActionBuy, Price: 250, Status: types.TradeStatusSubmitted, Timestamp: base.Add(time.Hour)},
	}

	summary := Summarize(trades)
	suite.Equal(3, summary.TotalTrades)
	suite.Equal(2, summary.BuyOrders)
	suite.Equal(1, summary.SellOrders)
	suite.Equal(100.67, summary.AvgBuyPrice)
	suite.Equal(110.0, summary.AvgSellPrice)
	suite.Equal(base.Add(3*time.Minute), summary.LastTradeTime)
	suite.False(summary.Empty())
}

func (suite *StatsTestSuite) TestSummarizeNoFilledTrades() {
	summary := Summarize([]types.Trade{{Action: types.ActionBuy, Price: 10, Status: types.TradeStatusSubmitted}})
	suite.True(summary.Empty())
	suite.Zero(summary.AvgBuyPrice)
	suite.True(summary.LastTradeTime.IsZero())
}

func (suite *StatsTestSuite) TestMaxDrawdown() {
	tests := []struct {
		name     string
		curve    []float64
		expected float64
	}{
		{name: "empty", curve: nil, expected: 0},
		{name: "rising", curve: []float64{100, 110, 120}, expected: 0},
		{name: "single dip", curve: []float64{100, 120, 90, 130}, expected: 0.25},
		{name: "deepest wins", curve: []float64{100, 80, 150, 90}, expected: 0.4},
		{name: "non-positive start", curve: []float64{0, -10, 50, 25}, expected: 0.5},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.InDelta(tc.expected, MaxDrawdown(tc.curve), 1e-9)
		})
	}
}
