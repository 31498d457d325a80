package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	argoErrors "github.com/rxtech-lab/argo-stocks/pkg/errors"
)

// flakySource fails the first failures calls with err, then serves the memory source.
type flakySource struct {
	*MemorySource
	failures int
	calls    int
	err      error
}

func (f *flakySource) CurrentPrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}

	return f.MemorySource.CurrentPrices(ctx, symbols)
}

type RetryingSourceTestSuite struct {
	suite.Suite
	memory *MemorySource
}

func TestRetryingSourceSuite(t *testing.T) {
	suite.Run(t, new(RetryingSourceTestSuite))
}

func (suite *RetryingSourceTestSuite) SetupTest() {
	suite.memory = NewMemorySource()
	suite.memory.SetPrice("AAPL", 190)
}

func (suite *RetryingSourceTestSuite) TestRecoversFromTransientErrors() {
	flaky := &flakySource{MemorySource: suite.memory, failures: 2, err: errors.New("connection reset")}
	source := WithRetry(flaky, 3, time.Millisecond)

	prices, err := source.CurrentPrices(context.Background(), []string{"AAPL"})
	suite.Require().NoError(err)
	suite.Equal(map[string]float64{"AAPL": 190}, prices)
	suite.Equal(3, flaky.calls)
}

func (suite *RetryingSourceTestSuite) TestGivesUpAfterMaxRetries() {
	flaky := &flakySource{MemorySource: suite.memory, failures: 10, err: errors.New("connection reset")}
	source := WithRetry(flaky, 2, time.Millisecond)

	_, err := source.CurrentPrices(context.Background(), []string{"AAPL"})
	suite.EqualError(err, "connection reset")
	suite.Equal(3, flaky.calls)
}

func (suite *RetryingSourceTestSuite) TestMissingDataIsNotRetried() {
	flaky := &flakySource{
		MemorySource: suite.memory,
		failures:     10,
		err:          argoErrors.New(argoErrors.ErrCodeDataNotFound, "unknown symbol"),
	}
	source := WithRetry(flaky, 5, time.Millisecond)

	_, err := source.CurrentPrices(context.Background(), []string{"NOPE"})
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeDataNotFound))
	suite.Equal(1, flaky.calls)

	_, err = source.DailyHistory(context.Background(), "NOPE", 30)
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeDataNotFound))
}

func (suite *RetryingSourceTestSuite) TestCancelledContextStopsRetrying() {
	flaky := &flakySource{MemorySource: suite.memory, failures: 10, err: errors.New("connection reset")}
	source := WithRetry(flaky, 100, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := source.CurrentPrices(ctx, []string{"AAPL"})
	suite.Error(err)
	suite.Equal(1, flaky.calls)
}

func (suite *RetryingSourceTestSuite) TestCurrentPricePassesThrough() {
	price, err := WithRetry(suite.memory, 1, 0).CurrentPrice(context.Background(), "AAPL")
	suite.Require().NoError(err)
	suite.Equal(190.0, price.Unwrap())
}
