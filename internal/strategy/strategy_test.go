package strategy

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-stocks/internal/types"
	"github.com/rxtech-lab/argo-stocks/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type StrategyTestSuite struct {
	suite.Suite
	start time.Time
}

func TestStrategySuite(t *testing.T) {
	suite.Run(t, new(StrategyTestSuite))
}

func (suite *StrategyTestSuite) SetupTest() {
	suite.start = time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
}

func (suite *StrategyTestSuite) obs(i int, price float64) types.Observation {
	return types.Observation{Symbol: "AAPL", Price: price, Timestamp: suite.start.AddDate(0, 0, i)}
}

// run evaluates prices through s and returns the indices of buy and sell signals.
func (suite *StrategyTestSuite) run(s Strategy, prices []float64) (buys, sells []int) {
	for i, price := range prices {
		decision, err := Evaluate(s, suite.obs(i, price))
		suite.Require().NoError(err)

		if decision.Buy {
			buys = append(buys, i)
		}

		if decision.Sell {
			sells = append(sells, i)
		}
	}

	return buys, sells
}

func (suite *StrategyTestSuite) TestMovingAverageSingleBuyOnJump() {
	prices := make([]float64, 0, 20)
	for range 19 {
		prices = append(prices, 10)
	}

	prices = append(prices, 20)

	s := NewMovingAverageCrossover("sma", MovingAverageParams{ShortWindow: 5, LongWindow: 10})
	suite.Require().NoError(s.Initialize(Context{}))

	buys, sells := suite.run(s, prices)
	suite.Equal([]int{19}, buys)
	suite.Empty(sells)
	suite.Equal(Long, s.Position())
}

func (suite *StrategyTestSuite) TestMovingAverageNeedsLongWindow() {
	s := NewMovingAverageCrossover("sma", MovingAverageParams{ShortWindow: 2, LongWindow: 4})
	suite.Require().NoError(s.Initialize(Context{}))

	buys, _ := suite.run(s, []float64{1, 2, 3})
	suite.Empty(buys)

	buys, _ = suite.run(s, []float64{4})
	suite.Len(buys, 1)
}

func (suite *StrategyTestSuite) TestMovingAverageRoundTrip() {
	s := NewMovingAverageCrossover("sma", MovingAverageParams{ShortWindow: 2, LongWindow: 4})
	suite.Require().NoError(s.Initialize(Context{}))

	buys, sells := suite.run(s, []float64{10, 10, 10, 12, 13, 14, 9, 8, 7, 12, 13})
	suite.Equal([]int{3, 9}, buys)
	suite.Equal([]int{6}, sells)
}

func (suite *StrategyTestSuite) TestMovingAverageIgnoresZeroPrice() {
	s := NewMovingAverageCrossover("sma", MovingAverageParams{ShortWindow: 1, LongWindow: 2})
	s.OnData(suite.obs(0, 0))
	s.OnData(suite.obs(1, 5))
	suite.Equal(1, s.history.Len())
}

func (suite *StrategyTestSuite) TestRSINeverDoubleEnters() {
	s := NewRSIStrategy("rsi", RSIParams{Period: 3, Oversold: 30, Overbought: 70})
	suite.Require().NoError(s.Initialize(Context{}))

	// falling prices keep RSI at 0 but only one buy can fire
	buys, sells := suite.run(s, []float64{10, 9, 8, 7, 6, 5, 4})
	suite.Equal([]int{3}, buys)
	suite.Empty(sells)

	// rising prices push RSI to 100 and close the position once
	buys, sells = suite.run(s, []float64{5, 6, 7, 8, 9})
	suite.Empty(buys)
	suite.Equal([]int{2}, sells)
	suite.Equal(Flat, s.Position())
}

func (suite *StrategyTestSuite) TestRSIRequiresFullWindow() {
	s := NewRSIStrategy("rsi", RSIParams{Period: 14, Oversold: 30, Overbought: 70})
	suite.Require().NoError(s.Initialize(Context{}))

	for i := range 14 {
		decision, err := Evaluate(s, suite.obs(i, float64(100-i)))
		suite.NoError(err)
		suite.False(decision.Buy)
		suite.False(decision.Sell)
		suite.Equal(50.0, s.Value())
	}
}

func (suite *StrategyTestSuite) TestRSIValueBounded() {
	s := NewRSIStrategy("rsi", RSIParams{Period: 5, Oversold: 30, Overbought: 70})
	suite.Require().NoError(s.Initialize(Context{}))

	prices := []float64{10, 12, 9, 15, 15, 11, 8, 20, 21, 3, 4, 30}
	for i, price := range prices {
		_, err := Evaluate(s, suite.obs(i, price))
		suite.Require().NoError(err)
		suite.GreaterOrEqual(s.Value(), 0.0)
		suite.LessOrEqual(s.Value(), 100.0)
	}
}

func (suite *StrategyTestSuite) TestMACDCrossovers() {
	s := NewMACDStrategy("macd", MACDParams{FastPeriod: 3, SlowPeriod: 6, SignalPeriod: 3})
	suite.Require().NoError(s.Initialize(Context{}))

	prices := make([]float64, 0, 60)
	for i := range 20 {
		prices = append(prices, 100-float64(i))
	}

	for i := range 20 {
		prices = append(prices, 81+3*float64(i+1))
	}

	for i := range 20 {
		prices = append(prices, 141-4*float64(i+1))
	}

	buys, sells := suite.run(s, prices)
	suite.Require().Len(buys, 1)
	suite.GreaterOrEqual(buys[0], 20)
	suite.Less(buys[0], 40)
	suite.Require().Len(sells, 1)
	suite.GreaterOrEqual(sells[0], 40)

	_, _, ok := s.Latest()
	suite.True(ok)
}

func (suite *StrategyTestSuite) TestMACDSilentUntilSignalLineExists() {
	s := NewMACDStrategy("macd", MACDParams{FastPeriod: 3, SlowPeriod: 6, SignalPeriod: 3})
	suite.Require().NoError(s.Initialize(Context{}))

	for i := range 7 {
		s.OnData(suite.obs(i, float64(10+i)))
		_, _, ok := s.Latest()
		suite.False(ok)
	}

	s.OnData(suite.obs(7, 17))
	_, _, ok := s.Latest()
	suite.True(ok)
}

func (suite *StrategyTestSuite) TestBollingerBands() {
	s := NewBollingerBandsStrategy("bb", BollingerParams{Period: 4, NumStd: 1})
	suite.Require().NoError(s.Initialize(Context{}))

	buys, sells := suite.run(s, []float64{10, 11, 10, 11, 2, 10, 30})
	suite.Equal([]int{4}, buys)
	suite.Equal([]int{6}, sells)

	_, ok := s.Bands()
	suite.True(ok)
}

func (suite *StrategyTestSuite) TestBollingerFlatSeriesTouchesBands() {
	s := NewBollingerBandsStrategy("bb", BollingerParams{Period: 3, NumStd: 2})
	suite.Require().NoError(s.Initialize(Context{}))

	// zero std-dev: the price equals both bands, buy then sell
	buys, sells := suite.run(s, []float64{5, 5, 5, 5})
	suite.Equal([]int{2}, buys)
	suite.Equal([]int{3}, sells)
}

func (suite *StrategyTestSuite) TestMomentum() {
	s := NewMomentumStrategy("momentum", MomentumParams{LookbackPeriod: 2, Threshold: 0.05})
	suite.Require().NoError(s.Initialize(Context{}))

	buys, sells := suite.run(s, []float64{100, 101, 110, 111, 100, 90})
	suite.Equal([]int{2}, buys)
	suite.Equal([]int{4}, sells)
}

func (suite *StrategyTestSuite) TestNoAction() {
	s := NewNoActionStrategy(NoAction)
	suite.Equal(NoAction, s.Name())

	buys, sells := suite.run(s, []float64{1, 100, 1, 100})
	suite.Empty(buys)
	suite.Empty(sells)
}

func (suite *StrategyTestSuite) TestInitializeResetsState() {
	s := NewRSIStrategy("rsi", RSIParams{Period: 2, Oversold: 30, Overbought: 70})
	suite.run(s, []float64{3, 2, 1})
	suite.Equal(Long, s.Position())

	suite.Require().NoError(s.Initialize(Context{}))
	suite.Equal(Flat, s.Position())
	suite.Equal(0, s.history.Len())
}

type panickingStrategy struct {
	NoActionStrategy
}

func (p *panickingStrategy) ShouldBuy(_ types.Observation) bool {
	panic("index out of range")
}

func (suite *StrategyTestSuite) TestEvaluateRecoversPanic() {
	decision, err := Evaluate(&panickingStrategy{NoActionStrategy{name: "broken"}}, suite.obs(0, 1))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeStrategyRuntimeError))
	suite.Equal(Decision{}, decision)
}

func (suite *StrategyTestSuite) TestPositionString() {
	suite.Equal("flat", Flat.String())
	suite.Equal("long", Long.String())
}
