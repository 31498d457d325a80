package provider

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"github.com/rxtech-lab/argo-stocks/internal/types"
	"github.com/rxtech-lab/argo-stocks/pkg/errors"
)

// PolygonAggsIterator is the subset of the polygon aggregate iterator used here.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient is the subset of the polygon REST client used here.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
	GetLastTrade(ctx context.Context, params *models.GetLastTradeParams, options ...models.RequestOption) (*models.GetLastTradeResponse, error)
}

type polygonAPIClient struct {
	client *polygon.Client
}

func (c *polygonAPIClient) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return c.client.ListAggs(ctx, params, options...)
}

func (c *polygonAPIClient) GetLastTrade(ctx context.Context, params *models.GetLastTradeParams, options ...models.RequestOption) (*models.GetLastTradeResponse, error) {
	return c.client.GetLastTrade(ctx, params, options...)
}

// PolygonClient reads prices from the Polygon.io REST API.
type PolygonClient struct {
	apiClient PolygonAPIClient
	now       func() time.Time
}

// NewPolygonClient creates a polygon client authenticated with apiKey.
func NewPolygonClient(apiKey string) (*PolygonClient, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "polygon api key is required")
	}

	return NewPolygonClientWithAPI(&polygonAPIClient{client: polygon.New(apiKey)}), nil
}

// NewPolygonClientWithAPI creates a polygon client over apiClient.
func NewPolygonClientWithAPI(apiClient PolygonAPIClient) *PolygonClient {
	return &PolygonClient{apiClient: apiClient, now: time.Now}
}

func (c *PolygonClient) CurrentPrice(ctx context.Context, symbol string) (optional.Option[float64], error) {
	resp, err := c.apiClient.GetLastTrade(ctx, &models.GetLastTradeParams{Ticker: symbol})
	if err != nil {
		return optional.None[float64](), errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "polygon last trade for %s failed", symbol)
	}

	if resp == nil || resp.Results.Price == 0 {
		return optional.None[float64](), nil
	}

	return optional.Some(resp.Results.Price), nil
}

// CurrentPrices queries each symbol in turn. Symbols that fail are omitted
// unless every symbol failed.
func (c *PolygonClient) CurrentPrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(symbols))

	var lastErr error

	for _, symbol := range symbols {
		price, err := c.CurrentPrice(ctx, symbol)
		if err != nil {
			lastErr = err

			continue
		}

		if value, err := price.Take(); err == nil {
			prices[symbol] = value
		}
	}

	if len(prices) == 0 && lastErr != nil {
		return nil, lastErr
	}

	return prices, nil
}

func (c *PolygonClient) DailyHistory(ctx context.Context, symbol string, lookbackDays int) ([]types.PriceBar, error) {
	end := c.now().UTC()
	start := end.AddDate(0, 0, -lookbackDays)

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(start),
		To:         models.Millis(end),
	}.WithLimit(50000)

	iter := c.apiClient.ListAggs(ctx, params)

	bars := make([]types.PriceBar, 0, lookbackDays)
	for iter.Next() {
		agg := iter.Item()
		timestamp := time.Time(agg.Timestamp).UTC()

		bars = append(bars, types.PriceBar{
			Date:   time.Date(timestamp.Year(), timestamp.Month(), timestamp.Day(), 0, 0, 0, 0, time.UTC),
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		})
	}

	if iter.Err() != nil {
		return nil, errors.Wrapf(errors.ErrCodeHistoricalDataFailed, iter.Err(), "error iterating polygon aggregates for %s", symbol)
	}

	return bars, nil
}
