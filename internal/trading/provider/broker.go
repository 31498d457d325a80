package tradingprovider

import (
	"context"
	"slices"
	"time"

	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/argo-stocks/internal/types"
	"github.com/rxtech-lab/argo-stocks/pkg/errors"
	"github.com/rxtech-lab/argo-stocks/pkg/utils"
)

// OrderRequest is a buy or sell instruction sent to a broker.
type OrderRequest struct {
	Symbol   string
	Quantity float64
	Side     types.TradeAction
	Type     types.OrderType
	// LimitPrice is required for limit orders.
	LimitPrice optional.Option[float64]
}

// OrderConfirmation is a broker's acknowledgement of an accepted order.
type OrderConfirmation struct {
	OrderID     string
	Symbol      string
	Side        types.TradeAction
	Quantity    float64
	Status      string
	SubmittedAt time.Time
}

// Broker places orders with an external venue.
type Broker interface {
	// PlaceOrder returns None when the broker declined the order. An error
	// means the broker could not be reached or answered with a failure.
	PlaceOrder(ctx context.Context, order OrderRequest) (optional.Option[OrderConfirmation], error)
}

func validateOrder(order OrderRequest) error {
	if order.Symbol == "" {
		return errors.New(errors.ErrCodeInvalidSymbol, "order symbol is required")
	}

	if order.Quantity <= 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "order quantity must be greater than zero")
	}

	switch order.Side {
	case types.ActionBuy, types.ActionSell:
	default:
		return errors.Newf(errors.ErrCodeInvalidParameter, "unsupported order side: %s", order.Side)
	}

	switch order.Type {
	case types.OrderTypeMarket:
	case types.OrderTypeLimit:
		if order.LimitPrice.IsNone() || order.LimitPrice.Unwrap() <= 0 {
			return errors.New(errors.ErrCodeInvalidParameter, "limit orders need a positive limit price")
		}
	default:
		return errors.Newf(errors.ErrCodeInvalidParameter, "unsupported order type: %s", order.Type)
	}

	return nil
}

type ProviderType string

const (
	ProviderPaper        ProviderType = "paper"
	ProviderBinancePaper ProviderType = "binance-paper"
	ProviderBinanceLive  ProviderType = "binance-live"
)

type ProviderInfo struct {
	Name           string `json:"name"`
	DisplayName    string `json:"displayName"`
	Description    string `json:"description"`
	IsPaperTrading bool   `json:"isPaperTrading"`
}

var providerRegistry = map[ProviderType]ProviderInfo{
	ProviderPaper: {
		Name:           string(ProviderPaper),
		DisplayName:    "Simulated Broker",
		Description:    "Accepts every order locally, for dry runs of LIVE sessions",
		IsPaperTrading: true,
	},
	ProviderBinancePaper: {
		Name:           string(ProviderBinancePaper),
		DisplayName:    "Binance Testnet",
		Description:    "Binance testnet for paper trading without real funds",
		IsPaperTrading: true,
	},
	ProviderBinanceLive: {
		Name:           string(ProviderBinanceLive),
		DisplayName:    "Binance Live",
		Description:    "Binance live environment for real-funds trading",
		IsPaperTrading: false,
	},
}

// GetSupportedProviders returns the registered broker names, sorted.
func GetSupportedProviders() []string {
	providers := make([]string, 0, len(providerRegistry))
	for providerType := range providerRegistry {
		providers = append(providers, string(providerType))
	}

	slices.Sort(providers)

	return providers
}

// GetProviderInfo returns metadata for a specific broker.
func GetProviderInfo(providerName string) (ProviderInfo, error) {
	info, exists := providerRegistry[ProviderType(providerName)]
	if !exists {
		return ProviderInfo{}, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported trading provider: %s", providerName)
	}

	return info, nil
}

// GetProviderConfigSchema returns the JSON schema for a broker's configuration.
func GetProviderConfigSchema(providerName string) (string, error) {
	switch ProviderType(providerName) {
	case ProviderPaper:
		return utils.ToJSONSchema(struct{}{})
	case ProviderBinancePaper, ProviderBinanceLive:
		return utils.ToJSONSchema(BinanceProviderConfig{})
	default:
		return "", errors.Newf(errors.ErrCodeInvalidProvider, "unsupported trading provider: %s", providerName)
	}
}

// Config selects and configures the broker used by LIVE sessions.
type Config struct {
	Provider ProviderType          `yaml:"provider" json:"provider" jsonschema:"enum=paper,enum=binance-paper,enum=binance-live" validate:"omitempty,oneof=paper binance-paper binance-live"`
	// Binance is validated when a Binance broker is built.
	Binance BinanceProviderConfig `yaml:"binance" json:"binance" validate:"-"`
}

// NewBroker creates the broker selected by cfg. An empty provider selects
// the simulated broker.
func NewBroker(cfg Config) (Broker, error) {
	switch cfg.Provider {
	case "", ProviderPaper:
		return NewPaperBroker(), nil
	case ProviderBinancePaper:
		if err := cfg.Binance.Validate(); err != nil {
			return nil, err
		}

		return NewBinanceBroker(cfg.Binance, true)
	case ProviderBinanceLive:
		if err := cfg.Binance.Validate(); err != nil {
			return nil, err
		}

		return NewBinanceBroker(cfg.Binance, false)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported trading provider: %s", cfg.Provider)
	}
}
