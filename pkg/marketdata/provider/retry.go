package provider

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/argo-stocks/internal/types"
	"github.com/rxtech-lab/argo-stocks/pkg/errors"
)

// DefaultRetryInterval is the first backoff interval of a RetryingSource.
const DefaultRetryInterval = 500 * time.Millisecond

// RetryingSource retries failed fetches of another source with exponential
// backoff. Missing data and configuration faults are not retried.
type RetryingSource struct {
	source          PriceSource
	maxRetries      uint64
	initialInterval time.Duration
}

// WithRetry wraps source so every fetch is retried up to maxRetries times.
func WithRetry(source PriceSource, maxRetries uint64, initialInterval time.Duration) *RetryingSource {
	if initialInterval <= 0 {
		initialInterval = DefaultRetryInterval
	}

	return &RetryingSource{source: source, maxRetries: maxRetries, initialInterval: initialInterval}
}

func (r *RetryingSource) CurrentPrice(ctx context.Context, symbol string) (optional.Option[float64], error) {
	return retry(ctx, r, func() (optional.Option[float64], error) {
		return r.source.CurrentPrice(ctx, symbol)
	})
}

func (r *RetryingSource) CurrentPrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	return retry(ctx, r, func() (map[string]float64, error) {
		return r.source.CurrentPrices(ctx, symbols)
	})
}

func (r *RetryingSource) DailyHistory(ctx context.Context, symbol string, lookbackDays int) ([]types.PriceBar, error) {
	return retry(ctx, r, func() ([]types.PriceBar, error) {
		return r.source.DailyHistory(ctx, symbol, lookbackDays)
	})
}

func retry[T any](ctx context.Context, r *RetryingSource, fetch func() (T, error)) (T, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.initialInterval

	return backoff.RetryWithData(func() (T, error) {
		value, err := fetch()
		if err != nil && !retryable(err) {
			return value, backoff.Permanent(err)
		}

		return value, err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, r.maxRetries), ctx))
}

func retryable(err error) bool {
	for _, code := range []errors.ErrorCode{
		errors.ErrCodeDataNotFound,
		errors.ErrCodeInvalidSymbol,
		errors.ErrCodeInvalidConfiguration,
	} {
		if errors.ChainHasCode(err, code) {
			return false
		}
	}

	return true
}

var _ PriceSource = (*RetryingSource)(nil)
