package strategy

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-stocks/internal/types"
	"github.com/rxtech-lab/argo-stocks/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type FactoryTestSuite struct {
	suite.Suite
	factory *Factory
}

func TestFactorySuite(t *testing.T) {
	suite.Run(t, new(FactoryTestSuite))
}

func (suite *FactoryTestSuite) SetupTest() {
	suite.factory = NewFactory(nil)
}

func (suite *FactoryTestSuite) TestCreateDefaults() {
	testCases := []struct {
		name     string
		expected any
	}{
		{name: GoldenCrossSMA, expected: &MovingAverageCrossover{}},
		{name: RSIOscillator, expected: &RSIStrategy{}},
		{name: MACDCrossover, expected: &MACDStrategy{}},
		{name: BollingerMeanReversion, expected: &BollingerBandsStrategy{}},
		{name: MomentumBreakout, expected: &MomentumStrategy{}},
		{name: NoAction, expected: &NoActionStrategy{}},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			s, err := suite.factory.CreateByName(tc.name)
			suite.Require().NoError(err)
			suite.IsType(tc.expected, s)
			suite.Equal(tc.name, s.Name())
		})
	}
}

func (suite *FactoryTestSuite) TestGoldenCrossParameters() {
	s, err := suite.factory.CreateByName(GoldenCrossSMA)
	suite.Require().NoError(err)

	sma := s.(*MovingAverageCrossover)
	suite.Equal(MovingAverageParams{ShortWindow: 10, LongWindow: 30}, sma.params)
	suite.Equal(31, sma.history.Cap())
}

func (suite *FactoryTestSuite) TestCreateReturnsFreshInstances() {
	first, err := suite.factory.CreateByName(RSIOscillator)
	suite.Require().NoError(err)
	second, err := suite.factory.CreateByName(RSIOscillator)
	suite.Require().NoError(err)

	first.OnData(types.Observation{Price: 10})
	suite.Equal(1, first.(*RSIStrategy).history.Len())
	suite.Equal(0, second.(*RSIStrategy).history.Len())
}

func (suite *FactoryTestSuite) TestUnknownStrategy() {
	_, err := suite.factory.CreateByName("Martingale")
	suite.True(errors.HasCode(err, errors.ErrCodeUnsupportedStrategy))

	_, err = suite.factory.Create(Config{Name: "x", Kind: Kind("Martingale")})
	suite.True(errors.HasCode(err, errors.ErrCodeUnsupportedStrategy))
}

func (suite *FactoryTestSuite) TestCreateRejectsInvalidParams() {
	_, err := suite.factory.Create(Config{Name: "bad", Kind: KindRSI, Params: RSIParams{Period: 0, Oversold: 30, Overbought: 70}})
	suite.True(errors.HasCode(err, errors.ErrCodeStrategyConfigError))

	_, err = suite.factory.Create(Config{Name: "mismatch", Kind: KindRSI, Params: MomentumParams{LookbackPeriod: 3}})
	suite.True(errors.HasCode(err, errors.ErrCodeStrategyConfigError))
}

func (suite *FactoryTestSuite) TestCreateNilParamsUsesDefaults() {
	s, err := suite.factory.Create(Config{Name: "bb", Kind: KindBollingerBands})
	suite.Require().NoError(err)
	suite.Equal(BollingerParams{Period: 20, NumStd: 2}, s.(*BollingerBandsStrategy).params)
}

func (suite *FactoryTestSuite) TestDecodeParamsKeepsDefaults() {
	params, err := DecodeParams(KindMovingAverageCrossover, []byte(`{"short_window": 5}`))
	suite.Require().NoError(err)
	suite.Equal(MovingAverageParams{ShortWindow: 5, LongWindow: 30}, params)

	params, err = DecodeParams(KindMomentum, nil)
	suite.Require().NoError(err)
	suite.Equal(MomentumParams{LookbackPeriod: 10, Threshold: 0.02}, params)

	params, err = DecodeParams(KindNoAction, []byte(`{"ignored": true}`))
	suite.Require().NoError(err)
	suite.Equal(NoActionParams{}, params)
}

func (suite *FactoryTestSuite) TestDecodeParamsErrors() {
	_, err := DecodeParams(KindRSI, []byte(`{"period": "fourteen"}`))
	suite.True(errors.HasCode(err, errors.ErrCodeStrategyConfigError))

	_, err = DecodeParams(KindRSI, []byte(`{"period": -1}`))
	suite.True(errors.HasCode(err, errors.ErrCodeStrategyConfigError))

	_, err = DecodeParams(Kind("Unknown"), nil)
	suite.True(errors.HasCode(err, errors.ErrCodeUnsupportedStrategy))
}

func (suite *FactoryTestSuite) TestEncodeParams() {
	data, err := EncodeParams(MACDParams{FastPeriod: 12, SlowPeriod: 26, SignalPeriod: 9})
	suite.Require().NoError(err)
	suite.JSONEq(`{"fast_period":12,"slow_period":26,"signal_period":9}`, string(data))
}

func (suite *FactoryTestSuite) TestCatalogOverridesDefaults() {
	catalog := NewCatalog()
	suite.Require().NoError(catalog.Put(Config{
		Name:   GoldenCrossSMA,
		Kind:   KindMovingAverageCrossover,
		Params: MovingAverageParams{ShortWindow: 3, LongWindow: 7},
	}))

	s, err := NewFactory(catalog).CreateByName(GoldenCrossSMA)
	suite.Require().NoError(err)
	suite.Equal(MovingAverageParams{ShortWindow: 3, LongWindow: 7}, s.(*MovingAverageCrossover).params)
	suite.Contains(catalog.Names(), MomentumBreakout)
	suite.Len(catalog.Names(), len(DefaultConfigs()))
}

func (suite *FactoryTestSuite) TestCatalogPutValidation() {
	catalog := NewCatalog()
	suite.True(errors.HasCode(catalog.Put(Config{Kind: KindRSI, Params: RSIParams{Period: 14}}), errors.ErrCodeMissingParameter))
	suite.True(errors.HasCode(catalog.Put(Config{Name: "x", Kind: KindRSI}), errors.ErrCodeMissingParameter))
	suite.True(errors.HasCode(catalog.Put(Config{Name: "x", Kind: KindMACD, Params: RSIParams{Period: 14}}), errors.ErrCodeStrategyConfigError))
}

func (suite *FactoryTestSuite) TestCompositeDelegates() {
	s, err := suite.factory.NewComposite(CompositeName(MomentumBreakout, RSIOscillator), MomentumBreakout, RSIOscillator)
	suite.Require().NoError(err)
	suite.Equal("Composite:Momentum_Breakout/RSI_Oscillator", s.Name())

	composite := s.(*Composite)
	buyLeg, sellLeg := composite.Legs()
	suite.Nil(buyLeg)
	suite.Nil(sellLeg)
	suite.False(composite.ShouldBuy(types.Observation{Price: 1}))

	suite.Require().NoError(composite.Initialize(Context{Symbol: "AAPL"}))
	buyLeg, sellLeg = composite.Legs()
	suite.IsType(&MomentumStrategy{}, buyLeg)
	suite.IsType(&RSIStrategy{}, sellLeg)
}

// The sell leg only goes long through its own ShouldBuy, so the test opens
// that position by hand before checking both signals together.
func (suite *FactoryTestSuite) TestCompositeBothSignalsOnceSellLegIsLong() {
	s, err := suite.factory.NewComposite("combo", MomentumBreakout, RSIOscillator)
	suite.Require().NoError(err)
	suite.Require().NoError(s.Initialize(Context{}))

	composite := s.(*Composite)
	_, sellLeg := composite.Legs()

	start := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	feed := func(price float64) types.Observation {
		obs := types.Observation{Symbol: "AAPL", Price: price, Timestamp: start.AddDate(0, 0, tick)}
		tick++
		composite.OnData(obs)

		return obs
	}

	// fifteen falling prices put RSI at 0; open the sell leg's position directly
	var obs types.Observation
	for i := range 15 {
		obs = feed(100 - float64(i))
	}

	suite.Require().True(sellLeg.ShouldBuy(obs))

	// fifteen rising prices put RSI at 100 and momentum well above 2%
	for i := range 15 {
		obs = feed(90 + 2*float64(i))
	}

	suite.True(composite.ShouldBuy(obs))
	suite.True(composite.ShouldSell(obs))
}

func (suite *FactoryTestSuite) TestCompositeSellLegStaysFlatThroughEvaluate() {
	s, err := suite.factory.NewComposite("combo", MomentumBreakout, RSIOscillator)
	suite.Require().NoError(err)
	suite.Require().NoError(s.Initialize(Context{}))

	start := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	buys, sells := 0, 0

	for i := range 400 {
		// rising legs followed by sharp reversals
		price := 100 + float64(i%40)*2
		if i%40 >= 30 {
			price = 160 - float64(i%40-30)*6
		}

		decision, err := Evaluate(s, types.Observation{Symbol: "AAPL", Price: price, Timestamp: start.AddDate(0, 0, i)})
		suite.Require().NoError(err)

		if decision.Buy {
			buys++
		}

		if decision.Sell {
			sells++
		}
	}

	suite.Positive(buys)
	suite.Zero(sells)
}

func (suite *FactoryTestSuite) TestCompositeRejectsNestedComposite() {
	catalog := NewCatalog()
	suite.Require().NoError(catalog.Put(Config{
		Name:   "nested",
		Kind:   KindComposite,
		Params: CompositeParams{BuyStrategy: RSIOscillator, SellStrategy: RSIOscillator},
	}))

	factory := NewFactory(catalog)
	s, err := factory.NewComposite("outer", "nested", RSIOscillator)
	suite.Require().NoError(err)
	suite.True(errors.HasCode(s.Initialize(Context{}), errors.ErrCodeStrategyConfigError))

	s, err = factory.NewComposite("missing", "Unknown", RSIOscillator)
	suite.Require().NoError(err)
	suite.Error(s.Initialize(Context{}))
}

func (suite *FactoryTestSuite) TestCompositeSameStrategyIndependentLegs() {
	s, err := suite.factory.NewComposite("rsi-pair", RSIOscillator, RSIOscillator)
	suite.Require().NoError(err)
	suite.Require().NoError(s.Initialize(Context{}))

	buyLeg, sellLeg := s.(*Composite).Legs()
	suite.NotSame(buyLeg, sellLeg)
}

func (suite *FactoryTestSuite) TestCompositeRequiresBothLegs() {
	_, err := suite.factory.NewComposite("half", MomentumBreakout, "")
	suite.True(errors.HasCode(err, errors.ErrCodeStrategyConfigError))
}

func (suite *FactoryTestSuite) TestDescribe() {
	suite.Equal("GoldenCross_SMA (SMA 10/30)", Describe(DefaultConfigs()[0]))
}
