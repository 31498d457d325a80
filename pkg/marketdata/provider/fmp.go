package provider

import (
	"context"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/argo-stocks/internal/types"
	"github.com/rxtech-lab/argo-stocks/pkg/errors"
)

// DefaultFMPBaseURL is the Financial Modeling Prep v3 API.
const DefaultFMPBaseURL = "https://financialmodelingprep.com/api/v3"

type fmpQuote struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

type fmpHistoricalBar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

type fmpHistory struct {
	Symbol     string             `json:"symbol"`
	Historical []fmpHistoricalBar `json:"historical"`
}

// FMPClient reads prices from the Financial Modeling Prep REST API.
type FMPClient struct {
	client *resty.Client
}

// NewFMPClient creates an FMP client. An empty baseURL uses DefaultFMPBaseURL.
func NewFMPClient(apiKey string, baseURL string) (*FMPClient, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "fmp api key is required")
	}

	if baseURL == "" {
		baseURL = DefaultFMPBaseURL
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(10*time.Second).
		SetQueryParam("apikey", apiKey)

	return &FMPClient{client: client}, nil
}

func (c *FMPClient) get(ctx context.Context, path string, query map[string]string, result any) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetResult(result).
		Get(path)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "fmp request %s failed", path)
	}

	if resp.IsError() {
		return errors.Newf(errors.ErrCodeMarketDataFetchFailed, "fmp request %s returned %d: %s", path, resp.StatusCode(), resp.String())
	}

	return nil
}

func (c *FMPClient) quotes(ctx context.Context, symbols []string) ([]fmpQuote, error) {
	escaped := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		escaped = append(escaped, url.PathEscape(symbol))
	}

	var quotes []fmpQuote
	if err := c.get(ctx, "/quote-short/"+strings.Join(escaped, ","), nil, &quotes); err != nil {
		return nil, err
	}

	return quotes, nil
}

func (c *FMPClient) CurrentPrice(ctx context.Context, symbol string) (optional.Option[float64], error) {
	quotes, err := c.quotes(ctx, []string{symbol})
	if err != nil {
		return optional.None[float64](), err
	}

	if len(quotes) == 0 || quotes[0].Price == 0 {
		return optional.None[float64](), nil
	}

	return optional.Some(quotes[0].Price), nil
}

func (c *FMPClient) CurrentPrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(symbols))
	if len(symbols) == 0 {
		return prices, nil
	}

	quotes, err := c.quotes(ctx, symbols)
	if err != nil {
		return nil, err
	}

	for _, quote := range quotes {
		if quote.Symbol == "" || quote.Price == 0 {
			continue
		}

		prices[quote.Symbol] = quote.Price
	}

	return prices, nil
}

func (c *FMPClient) DailyHistory(ctx context.Context, symbol string, lookbackDays int) ([]types.PriceBar, error) {
	var history fmpHistory

	query := map[string]string{"timeseries": strconv.Itoa(lookbackDays)}
	if err := c.get(ctx, "/historical-price-full/"+url.PathEscape(symbol), query, &history); err != nil {
		return nil, err
	}

	bars := make([]types.PriceBar, 0, len(history.Historical))

	for _, bar := range history.Historical {
		date, err := time.Parse(types.DateLayout, bar.Date)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid date %q in %s history", bar.Date, symbol)
		}

		bars = append(bars, types.PriceBar{
			Date:   date,
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: bar.Volume,
		})
	}

	// fmp returns the newest bar first
	slices.SortFunc(bars, func(a, b types.PriceBar) int {
		return a.Date.Compare(b.Date)
	})

	return bars, nil
}
