// Package provider implements the price sources consumed by the backtest
// and trading engines.
package provider

import (
	"context"

	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/argo-stocks/internal/types"
	"github.com/rxtech-lab/argo-stocks/pkg/errors"
)

// ProviderType selects a price source implementation.
type ProviderType string

const (
	ProviderFMP     ProviderType = "fmp"
	ProviderPolygon ProviderType = "polygon"
	ProviderMemory  ProviderType = "memory"
)

// DefaultHistoryDays is the lookback requested by backtests.
const DefaultHistoryDays = 1825

// PriceSource returns current and historical prices for symbols.
type PriceSource interface {
	// CurrentPrice returns the latest price of symbol, None when the source has no price.
	CurrentPrice(ctx context.Context, symbol string) (optional.Option[float64], error)
	// CurrentPrices returns the latest prices of symbols. Symbols without a price are omitted.
	CurrentPrices(ctx context.Context, symbols []string) (map[string]float64, error)
	// DailyHistory returns up to lookbackDays daily bars of symbol, oldest first.
	DailyHistory(ctx context.Context, symbol string, lookbackDays int) ([]types.PriceBar, error)
}

// Config selects and configures a price source.
type Config struct {
	Type          ProviderType `yaml:"type" json:"type" validate:"required,oneof=fmp polygon memory" jsonschema:"enum=fmp,enum=polygon,enum=memory"`
	FMPApiKey     string       `yaml:"fmp_api_key" json:"fmp_api_key" validate:"required_if=Type fmp"`
	FMPBaseURL    string       `yaml:"fmp_base_url,omitempty" json:"fmp_base_url,omitempty" validate:"omitempty,url"`
	PolygonApiKey string       `yaml:"polygon_api_key" json:"polygon_api_key" validate:"required_if=Type polygon"`
	// Retries is how often a failed fetch is retried with exponential backoff.
	Retries uint64 `yaml:"retries" json:"retries"`
}

// NewPriceSource creates the price source selected by cfg.
func NewPriceSource(cfg Config) (PriceSource, error) {
	source, err := newPriceSource(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Retries > 0 {
		return WithRetry(source, cfg.Retries, DefaultRetryInterval), nil
	}

	return source, nil
}

func newPriceSource(cfg Config) (PriceSource, error) {
	switch cfg.Type {
	case ProviderFMP:
		return NewFMPClient(cfg.FMPApiKey, cfg.FMPBaseURL)
	case ProviderPolygon:
		return NewPolygonClient(cfg.PolygonApiKey)
	case ProviderMemory:
		return NewMemorySource(), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported price source: %s", cfg.Type)
	}
}
