package tradingprovider

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"

	"github.com/rxtech-lab/argo-stocks/pkg/errors"
)

// BinanceProviderConfig contains configuration for Binance trading.
type BinanceProviderConfig struct {
	ApiKey    string `yaml:"api_key" json:"apiKey" jsonschema:"title=API Key,description=Binance API key" validate:"required"`
	SecretKey string `yaml:"secret_key" json:"secretKey" jsonschema:"title=Secret Key,description=Binance API secret key" validate:"required"`
	// BaseURL takes precedence over the testnet switch.
	BaseURL string `yaml:"base_url" json:"baseUrl,omitempty" jsonschema:"title=Base URL,description=Overrides the Binance REST endpoint"`
	// QuoteAsset is appended to a ticker to form the market symbol (AAPL -> AAPLUSDT).
	QuoteAsset string `yaml:"quote_asset" json:"quoteAsset,omitempty" jsonschema:"title=Quote Asset,default=USDT"`
}

// Validate validates the BinanceProviderConfig struct.
func (c *BinanceProviderConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid binance provider config", err)
	}

	return nil
}

// ParseBinanceConfig parses a JSON configuration string into a BinanceProviderConfig.
func ParseBinanceConfig(jsonConfig string) (*BinanceProviderConfig, error) {
	var config BinanceProviderConfig
	if err := json.Unmarshal([]byte(jsonConfig), &config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse binance config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
