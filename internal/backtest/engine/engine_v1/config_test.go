package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestUnmarshalKeepsDefaults() {
	config := EmptyConfig()
	suite.Require().NoError(yaml.Unmarshal([]byte(`tickers: [AAPL]`), &config))

	suite.Equal(DefaultInitialCapital, config.InitialCapital)
	suite.Equal(DefaultHistoryDays, config.HistoryDays)
	suite.Equal([]string{"AAPL"}, config.Tickers)
	suite.True(config.StartDate.IsNone())
	suite.True(config.EndDate.IsNone())
}

func (suite *ConfigTestSuite) TestUnmarshalDates() {
	config := EmptyConfig()
	suite.Require().NoError(yaml.Unmarshal([]byte(`
initial_capital: 5000
start_date: "2023-01-01"
end_date: 2023-12-31
`), &config))

	suite.Equal(5000.0, config.InitialCapital)
	suite.Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), config.StartDate.Unwrap())
	suite.Equal(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), config.EndDate.Unwrap())
}

func (suite *ConfigTestSuite) TestInRange() {
	config := EmptyConfig()
	suite.True(config.InRange("1999-01-01"))

	suite.Require().NoError(yaml.Unmarshal([]byte(`{start_date: "2023-01-01", end_date: "2023-12-31"}`), &config))
	suite.True(config.InRange("2023-01-01"))
	suite.True(config.InRange("2023-12-31"))
	suite.False(config.InRange("2022-12-30"))
	suite.False(config.InRange("2024-01-01"))
}
