package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-stocks/internal/types"
)

// HistoryCacheTestSuite is a test suite for HistoryCacheV1
type HistoryCacheTestSuite struct {
	suite.Suite
	cache Cache
}

func (suite *HistoryCacheTestSuite) SetupTest() {
	suite.cache = NewHistoryCacheV1()
}

func TestHistoryCacheSuite(t *testing.T) {
	suite.Run(t, new(HistoryCacheTestSuite))
}

func (suite *HistoryCacheTestSuite) TestGetMissing() {
	suite.True(suite.cache.Get("AAPL", 1825).IsNone())
}

func (suite *HistoryCacheTestSuite) TestSetAndGet() {
	bars := []types.PriceBar{{Date: time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC), Close: 125}}
	suite.cache.Set("AAPL", 1825, bars)

	got := suite.cache.Get("AAPL", 1825)
	suite.Require().True(got.IsSome())
	suite.Equal(bars, got.Unwrap())

	// lookback is part of the key
	suite.True(suite.cache.Get("AAPL", 30).IsNone())
}

func (suite *HistoryCacheTestSuite) TestCopies() {
	bars := []types.PriceBar{{Close: 125}}
	suite.cache.Set("AAPL", 10, bars)
	bars[0].Close = 1

	got := suite.cache.Get("AAPL", 10).Unwrap()
	suite.Equal(125.0, got[0].Close)

	got[0].Close = 2
	suite.Equal(125.0, suite.cache.Get("AAPL", 10).Unwrap()[0].Close)
}

func (suite *HistoryCacheTestSuite) TestReset() {
	suite.cache.Set("AAPL", 10, []types.PriceBar{{Close: 125}})
	suite.cache.Reset()
	suite.True(suite.cache.Get("AAPL", 10).IsNone())
}
