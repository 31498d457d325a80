package trading

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-stocks/internal/config"
	"github.com/rxtech-lab/argo-stocks/internal/logger"
	"github.com/rxtech-lab/argo-stocks/internal/strategy"
	"github.com/rxtech-lab/argo-stocks/internal/trading/engine"
	tradingprovider "github.com/rxtech-lab/argo-stocks/internal/trading/provider"
	"github.com/rxtech-lab/argo-stocks/pkg/errors"
	"github.com/rxtech-lab/argo-stocks/pkg/marketdata/provider"
)

type TradingSystemTestSuite struct {
	suite.Suite
	cfg config.Config
}

func TestTradingSystemSuite(t *testing.T) {
	suite.Run(t, new(TradingSystemTestSuite))
}

func (suite *TradingSystemTestSuite) SetupTest() {
	suite.cfg = config.Default()
	suite.cfg.DatabasePath = ":memory:"
	suite.cfg.PriceSource = provider.Config{Type: provider.ProviderMemory}
}

func (suite *TradingSystemTestSuite) TestNewTradingSystem() {
	system, err := NewTradingSystem(context.Background(), suite.cfg, logger.NewNopLogger())
	suite.Require().NoError(err)
	defer system.Close()

	suite.IsType(&provider.MemorySource{}, system.Prices)
	suite.IsType(&tradingprovider.PaperBroker{}, system.Broker)

	configs, err := system.Store.ListStrategyConfigs(context.Background())
	suite.Require().NoError(err)
	suite.Len(configs, len(strategy.DefaultConfigs()))

	_, err = system.Factory.Catalog().Resolve(strategy.DefaultStrategy)
	suite.NoError(err)

	manager, err := system.SessionManager(engine.Callbacks{})
	suite.Require().NoError(err)
	suite.NotNil(manager)

	bt, err := system.BacktestEngine()
	suite.Require().NoError(err)
	suite.NotNil(bt)
}

func (suite *TradingSystemTestSuite) TestInvalidProviders() {
	cfg := suite.cfg
	cfg.PriceSource.Type = "yahoo"

	_, err := NewTradingSystem(context.Background(), cfg, nil)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidProvider))

	cfg = suite.cfg
	cfg.Broker.Provider = tradingprovider.ProviderBinanceLive

	_, err = NewTradingSystem(context.Background(), cfg, nil)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}
