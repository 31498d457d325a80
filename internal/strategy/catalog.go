package strategy

import (
	"slices"
	"sync"

	"github.com/rxtech-lab/argo-stocks/pkg/errors"
)

// Names of the built-in strategy configurations.
const (
	GoldenCrossSMA         = "GoldenCross_SMA"
	RSIOscillator          = "RSI_Oscillator"
	MACDCrossover          = "MACD_Crossover"
	BollingerMeanReversion = "Bollinger_MeanReversion"
	MomentumBreakout       = "Momentum_Breakout"
	NoAction               = "No_Action"
)

// DefaultStrategy is used when a session resolves no strategy of its own.
const DefaultStrategy = GoldenCrossSMA

// CompositeMarkerPrefix prefixes the strategy row that records a composite
// selection in a session's strategy list.
const CompositeMarkerPrefix = "Composite:"

// Config is a named strategy configuration.
type Config struct {
	Name        string `json:"name" yaml:"name" validate:"required"`
	Kind        Kind   `json:"kind" yaml:"kind" validate:"required"`
	Params      Params `json:"parameters" yaml:"parameters" validate:"required"`
	Description string `json:"description" yaml:"description"`
	IsActive    bool   `json:"is_active" yaml:"is_active"`
}

// DefaultConfigs returns the built-in strategy configurations.
func DefaultConfigs() []Config {
	return []Config{
		{
			Name:        GoldenCrossSMA,
			Kind:        KindMovingAverageCrossover,
			Params:      MovingAverageParams{ShortWindow: 10, LongWindow: 30},
			Description: "Buys when the 10 day SMA crosses above the 30 day SMA",
			IsActive:    true,
		},
		{
			Name:        RSIOscillator,
			Kind:        KindRSI,
			Params:      RSIParams{Period: 14, Oversold: 30, Overbought: 70},
			Description: "Buys when RSI is oversold and sells when it is overbought",
			IsActive:    true,
		},
		{
			Name:        MACDCrossover,
			Kind:        KindMACD,
			Params:      MACDParams{FastPeriod: 12, SlowPeriod: 26, SignalPeriod: 9},
			Description: "Trades MACD crossings of the signal line",
			IsActive:    true,
		},
		{
			Name:        BollingerMeanReversion,
			Kind:        KindBollingerBands,
			Params:      BollingerParams{Period: 20, NumStd: 2},
			Description: "Buys at the lower band and sells at the upper band",
			IsActive:    true,
		},
		{
			Name:        MomentumBreakout,
			Kind:        KindMomentum,
			Params:      MomentumParams{LookbackPeriod: 10, Threshold: 0.02},
			Description: "Buys on a 2% rise over 10 days and sells on a 2% fall",
			IsActive:    true,
		},
		{
			Name:        NoAction,
			Kind:        KindNoAction,
			Params:      NoActionParams{},
			Description: "Never trades, used to watch tickers",
			IsActive:    true,
		},
	}
}

// Catalog maps strategy names to configurations. Names missing from the
// catalog fall back to the built-in configurations.
type Catalog struct {
	mu       sync.RWMutex
	configs  map[string]Config
	defaults map[string]Config
}

// NewCatalog creates a catalog holding configs.
func NewCatalog(configs ...Config) *Catalog {
	c := &Catalog{
		configs:  make(map[string]Config, len(configs)),
		defaults: make(map[string]Config),
	}

	for _, cfg := range DefaultConfigs() {
		c.defaults[cfg.Name] = cfg
	}

	for _, cfg := range configs {
		c.configs[cfg.Name] = cfg
	}

	return c
}

// Put adds or replaces a configuration.
func (c *Catalog) Put(cfg Config) error {
	if cfg.Name == "" {
		return errors.New(errors.ErrCodeMissingParameter, "strategy name is required")
	}

	if cfg.Params == nil {
		return errors.Newf(errors.ErrCodeMissingParameter, "strategy %s has no parameters", cfg.Name)
	}

	if cfg.Params.Kind() != cfg.Kind {
		return errors.Newf(errors.ErrCodeStrategyConfigError, "strategy %s: parameters are for %s, not %s", cfg.Name, cfg.Params.Kind(), cfg.Kind)
	}

	if err := ValidateParams(cfg.Params); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.configs[cfg.Name] = cfg

	return nil
}

// Resolve returns the configuration registered under name, falling back
// to the built-in configuration of the same name.
func (c *Catalog) Resolve(name string) (Config, error) {
	c.mu.RLock()
	cfg, ok := c.configs[name]
	c.mu.RUnlock()

	if ok {
		return cfg, nil
	}

	if cfg, ok := c.defaults[name]; ok {
		return cfg, nil
	}

	return Config{}, errors.Newf(errors.ErrCodeUnsupportedStrategy, "strategy %q is not configured", name)
}

// Names returns every resolvable strategy name, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.configs)+len(c.defaults))
	for name := range c.configs {
		names = append(names, name)
	}

	for name := range c.defaults {
		if _, ok := c.configs[name]; !ok {
			names = append(names, name)
		}
	}

	slices.Sort(names)

	return names
}
