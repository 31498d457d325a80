// Package config loads the application configuration shared by the CLIs.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	tradingprovider "github.com/rxtech-lab/argo-stocks/internal/trading/provider"
	"github.com/rxtech-lab/argo-stocks/pkg/errors"
	"github.com/rxtech-lab/argo-stocks/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-stocks/pkg/utils"
)

// Defaults applied before the config file is read.
const (
	DefaultDatabasePath   = "argo-stocks.db"
	DefaultPollInterval   = 60 * time.Second
	DefaultInitialBalance = 10000.0
	DefaultLogLevel       = "info"
	DefaultDotEnvFile     = ".env"
)

// Environment variables that override file values.
const (
	EnvDatabasePath  = "ARGO_DATABASE_PATH"
	EnvPriceSource   = "ARGO_PRICE_SOURCE"
	EnvPollInterval  = "ARGO_POLL_INTERVAL"
	EnvLogLevel      = "ARGO_LOG_LEVEL"
	EnvFMPApiKey     = "FMP_API_KEY"
	EnvPolygonApiKey = "POLYGON_API_KEY"
	EnvBroker        = "ARGO_BROKER"
	EnvBinanceKey    = "BINANCE_API_KEY"
	EnvBinanceSecret = "BINANCE_SECRET_KEY"
)

type Config struct {
	DatabasePath string                 `yaml:"database_path" json:"database_path" validate:"required" jsonschema:"title=Database Path,description=DuckDB file holding sessions and ledgers"`
	PriceSource  provider.Config        `yaml:"price_source" json:"price_source" jsonschema:"title=Price Source"`
	Broker       tradingprovider.Config `yaml:"broker" json:"broker" jsonschema:"title=Broker,description=Order routing for LIVE sessions"`
	// PollInterval is the pause between two trading cycles of a session.
	PollInterval   time.Duration `yaml:"poll_interval" json:"poll_interval" validate:"gt=0" jsonschema:"title=Poll Interval,type=string,example=60s"`
	InitialBalance float64       `yaml:"initial_balance" json:"initial_balance" validate:"gte=0" jsonschema:"title=Initial Balance,minimum=0"`
	LogLevel       string        `yaml:"log_level" json:"log_level" validate:"oneof=debug info warn error" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		DatabasePath:   DefaultDatabasePath,
		PriceSource:    provider.Config{Type: provider.ProviderFMP},
		Broker:         tradingprovider.Config{Provider: tradingprovider.ProviderPaper},
		PollInterval:   DefaultPollInterval,
		InitialBalance: DefaultInitialBalance,
		LogLevel:       DefaultLogLevel,
	}
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse config %s", path)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.DatabasePath, EnvDatabasePath)
	setString(&c.LogLevel, EnvLogLevel)
	setString(&c.PriceSource.FMPApiKey, EnvFMPApiKey)
	setString(&c.PriceSource.PolygonApiKey, EnvPolygonApiKey)
	setString(&c.Broker.Binance.ApiKey, EnvBinanceKey)
	setString(&c.Broker.Binance.SecretKey, EnvBinanceSecret)

	if value, ok := lookup(EnvPriceSource); ok {
		c.PriceSource.Type = provider.ProviderType(strings.ToLower(value))
	}

	if value, ok := lookup(EnvBroker); ok {
		c.Broker.Provider = tradingprovider.ProviderType(strings.ToLower(value))
	}

	if value, ok := lookup(EnvPollInterval); ok {
		interval, err := time.ParseDuration(value)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid %s %q", EnvPollInterval, value)
		}

		c.PollInterval = interval
	}

	return nil
}

func lookup(name string) (string, bool) {
	value, ok := os.LookupEnv(name)
	value = strings.TrimSpace(value)

	return value, ok && value != ""
}

func setString(field *string, name string) {
	if value, ok := lookup(name); ok {
		*field = value
	}
}

// Validate checks field constraints, including the price source settings.
// Binance credentials are only required when a Binance broker is selected.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	if c.Broker.Provider == tradingprovider.ProviderBinancePaper || c.Broker.Provider == tradingprovider.ProviderBinanceLive {
		if err := c.Broker.Binance.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// Level returns the zap level named by LogLevel, Info when it is unset.
func (c Config) Level() zapcore.Level {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}

	return level
}

// Schema returns the JSON schema of the config file.
func Schema() (string, error) {
	return utils.ToJSONSchema(Config{})
}

// LoadDotEnv loads KEY=VALUE files into the process environment without
// overriding variables that are already set. Without paths it loads .env
// from the working directory and ignores a missing file.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		if _, err := os.Stat(DefaultDotEnvFile); err != nil {
			return nil
		}

		paths = []string{DefaultDotEnvFile}
	}

	if err := godotenv.Load(paths...); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to load env file", err)
	}

	return nil
}
