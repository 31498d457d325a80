package engine

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/argo-stocks/internal/types"
	"github.com/rxtech-lab/argo-stocks/pkg/errors"
)

// Defaults applied by the backtest engine.
const (
	DefaultInitialCapital = 10000.0
	// DefaultHistoryDays is the lookback requested from the price source before
	// the date range filter is applied.
	DefaultHistoryDays = 1825
	// BuyCashFraction is the share of current cash invested on a buy signal.
	BuyCashFraction = 0.10
)

type BacktestEngineV1Config struct {
	InitialCapital float64 `yaml:"initial_capital" json:"initial_capital" validate:"gte=0" jsonschema:"title=Initial Capital,description=Starting capital for the backtest in USD,minimum=0"`
	// StartDate and EndDate bound the replay inclusively. None leaves the side open.
	StartDate   optional.Option[time.Time] `yaml:"start_date" json:"start_date" jsonschema:"title=Start Date,description=Optional first date of the backtest period (YYYY-MM-DD)"`
	EndDate     optional.Option[time.Time] `yaml:"end_date" json:"end_date" jsonschema:"title=End Date,description=Optional last date of the backtest period (YYYY-MM-DD)"`
	Tickers     []string                   `yaml:"tickers" json:"tickers" validate:"dive,required" jsonschema:"title=Tickers,description=Symbols to replay"`
	Strategies  []string                   `yaml:"strategies" json:"strategies" validate:"dive,required" jsonschema:"title=Strategies,description=Names of catalog strategies to run"`
	HistoryDays int                        `yaml:"history_days" json:"history_days" validate:"gte=0" jsonschema:"title=History Days,description=Lookback requested from the price source,minimum=0"`
}

// UnmarshalYAML implements custom unmarshaling for BacktestEngineV1Config
func (c *BacktestEngineV1Config) UnmarshalYAML(value *yaml.Node) error {
	type config struct {
		InitialCapital float64  `yaml:"initial_capital"`
		StartDate      *string  `yaml:"start_date"`
		EndDate        *string  `yaml:"end_date"`
		Tickers        []string `yaml:"tickers"`
		Strategies     []string `yaml:"strategies"`
		HistoryDays    int      `yaml:"history_days"`
	}

	// fields missing from the document keep their current values
	raw := config{
		InitialCapital: c.InitialCapital,
		Tickers:        c.Tickers,
		Strategies:     c.Strategies,
		HistoryDays:    c.HistoryDays,
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	startDate, err := parseDate("start_date", raw.StartDate)
	if err != nil {
		return err
	}

	endDate, err := parseDate("end_date", raw.EndDate)
	if err != nil {
		return err
	}

	c.InitialCapital = raw.InitialCapital
	c.Tickers = raw.Tickers
	c.Strategies = raw.Strategies
	c.HistoryDays = raw.HistoryDays

	if raw.StartDate != nil {
		c.StartDate = startDate
	}

	if raw.EndDate != nil {
		c.EndDate = endDate
	}

	return nil
}

func parseDate(field string, raw *string) (optional.Option[time.Time], error) {
	if raw == nil || *raw == "" {
		return optional.None[time.Time](), nil
	}

	date, err := time.Parse(types.DateLayout, *raw)
	if err != nil {
		return optional.None[time.Time](), errors.Wrapf(errors.ErrCodeInvalidDateRange, err, "invalid %s %q", field, *raw)
	}

	return optional.Some(date), nil
}

// Validate checks field constraints and that the date range is ordered.
func (c BacktestEngineV1Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestConfigError, "invalid backtest config", err)
	}

	if c.StartDate.IsSome() && c.EndDate.IsSome() && c.EndDate.Unwrap().Before(c.StartDate.Unwrap()) {
		return errors.Newf(errors.ErrCodeInvalidDateRange, "end date %s is before start date %s",
			c.EndDate.Unwrap().Format(types.DateLayout), c.StartDate.Unwrap().Format(types.DateLayout))
	}

	return nil
}

// InRange reports whether day (formatted with types.DateLayout) lies inside the configured range.
func (c BacktestEngineV1Config) InRange(day string) bool {
	if c.StartDate.IsSome() && day < c.StartDate.Unwrap().Format(types.DateLayout) {
		return false
	}

	if c.EndDate.IsSome() && day > c.EndDate.Unwrap().Format(types.DateLayout) {
		return false
	}

	return true
}

// GenerateSchema generates a JSON schema for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == reflect.TypeOf(optional.Option[time.Time]{}) {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date",
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "backtest-engine-v1-config"
	schema.Description = "Configuration schema for BacktestEngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema
}

// GenerateSchemaJSON generates a JSON schema string for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchemaJSON() (string, error) {
	schemaBytes, err := json.MarshalIndent(c.GenerateSchema(), "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// EmptyConfig returns a BacktestEngineV1Config with default values
func EmptyConfig() BacktestEngineV1Config {
	return BacktestEngineV1Config{
		InitialCapital: DefaultInitialCapital,
		StartDate:      optional.None[time.Time](),
		EndDate:        optional.None[time.Time](),
		HistoryDays:    DefaultHistoryDays,
	}
}
