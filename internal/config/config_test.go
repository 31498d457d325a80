package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zapcore"

	tradingprovider "github.com/rxtech-lab/argo-stocks/internal/trading/provider"
	"github.com/rxtech-lab/argo-stocks/pkg/errors"
	"github.com/rxtech-lab/argo-stocks/pkg/marketdata/provider"
)

type ConfigTestSuite struct {
	suite.Suite
	dir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()

	for _, name := range []string{
		EnvDatabasePath, EnvPriceSource, EnvPollInterval, EnvLogLevel,
		EnvFMPApiKey, EnvPolygonApiKey, EnvBroker, EnvBinanceKey, EnvBinanceSecret,
	} {
		suite.T().Setenv(name, "")
	}
}

func (suite *ConfigTestSuite) write(name string, content string) string {
	path := filepath.Join(suite.dir, name)
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0o600))

	return path
}

func (suite *ConfigTestSuite) TestLoadFile() {
	path := suite.write("config.yaml", `
database_path: /tmp/sessions.db
price_source:
  type: polygon
  polygon_api_key: poly
  retries: 2
poll_interval: 30s
initial_balance: 2500
log_level: debug
`)

	cfg, err := Load(path)
	suite.Require().NoError(err)
	suite.Equal("/tmp/sessions.db", cfg.DatabasePath)
	suite.Equal(provider.ProviderPolygon, cfg.PriceSource.Type)
	suite.Equal("poly", cfg.PriceSource.PolygonApiKey)
	suite.Equal(uint64(2), cfg.PriceSource.Retries)
	suite.Equal(30*time.Second, cfg.PollInterval)
	suite.Equal(2500.0, cfg.InitialBalance)
	suite.Equal(zapcore.DebugLevel, cfg.Level())
	suite.Equal(tradingprovider.ProviderPaper, cfg.Broker.Provider)
}

func (suite *ConfigTestSuite) TestMissingKeysKeepDefaults() {
	suite.T().Setenv(EnvFMPApiKey, "fmp")

	cfg, err := Load(suite.write("config.yaml", "initial_balance: 500\n"))
	suite.Require().NoError(err)
	suite.Equal(DefaultDatabasePath, cfg.DatabasePath)
	suite.Equal(DefaultPollInterval, cfg.PollInterval)
	suite.Equal(500.0, cfg.InitialBalance)
	suite.Equal(zapcore.InfoLevel, cfg.Level())
}

func (suite *ConfigTestSuite) TestEnvironmentOverridesFile() {
	path := suite.write("config.yaml", `
database_path: file.db
price_source:
  type: fmp
  fmp_api_key: from-file
`)

	suite.T().Setenv(EnvDatabasePath, "env.db")
	suite.T().Setenv(EnvFMPApiKey, "from-env")
	suite.T().Setenv(EnvPollInterval, "5s")

	cfg, err := Load(path)
	suite.Require().NoError(err)
	suite.Equal("env.db", cfg.DatabasePath)
	suite.Equal("from-env", cfg.PriceSource.FMPApiKey)
	suite.Equal(5*time.Second, cfg.PollInterval)
}

func (suite *ConfigTestSuite) TestValidation() {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{name: "missing fmp key", content: "price_source:\n  type: fmp\n"},
		{name: "unknown price source", content: "price_source:\n  type: yahoo\n"},
		{name: "negative balance", content: "initial_balance: -1\n", env: map[string]string{EnvFMPApiKey: "k"}},
		{name: "unknown log level", content: "log_level: loud\n", env: map[string]string{EnvFMPApiKey: "k"}},
		{name: "binance without keys", content: "broker:\n  provider: binance-live\n", env: map[string]string{EnvFMPApiKey: "k"}},
		{name: "bad interval", content: "", env: map[string]string{EnvFMPApiKey: "k", EnvPollInterval: "soon"}},
		{name: "malformed yaml", content: "price_source: [\n"},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			for name, value := range tc.env {
				suite.T().Setenv(name, value)
			}

			_, err := Load(suite.write("config.yaml", tc.content))
			suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration), "got %v", err)
		})
	}
}

func (suite *ConfigTestSuite) TestBinanceBrokerFromEnv() {
	suite.T().Setenv(EnvFMPApiKey, "k")
	suite.T().Setenv(EnvBroker, "BINANCE-PAPER")
	suite.T().Setenv(EnvBinanceKey, "key")
	suite.T().Setenv(EnvBinanceSecret, "secret")

	cfg, err := Load("")
	suite.Require().NoError(err)
	suite.Equal(tradingprovider.ProviderBinancePaper, cfg.Broker.Provider)
	suite.Equal("key", cfg.Broker.Binance.ApiKey)
}

func (suite *ConfigTestSuite) TestMissingFile() {
	_, err := Load(filepath.Join(suite.dir, "absent.yaml"))
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestLoadDotEnv() {
	path := suite.write("test.env", "FMP_API_KEY=dotenv-key\n")

	suite.Require().NoError(LoadDotEnv(path))
	suite.Equal("", os.Getenv(EnvFMPApiKey), "existing variables are not overridden")

	suite.Require().NoError(os.Unsetenv(EnvFMPApiKey))
	suite.Require().NoError(LoadDotEnv(path))
	suite.Equal("dotenv-key", os.Getenv(EnvFMPApiKey))

	suite.True(errors.HasCode(LoadDotEnv(filepath.Join(suite.dir, "absent.env")), errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestSchema() {
	schema, err := Schema()
	suite.Require().NoError(err)

	var decoded map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(schema), &decoded))
	suite.Contains(decoded["properties"], "price_source")
	suite.Contains(decoded["properties"], "poll_interval")
}
