package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-stocks/internal/types"
)

// DataGenerator generates realistic daily price bars for tests.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how bars are generated.
type GeneratorConfig struct {
	// Symbol is the ticker (e.g., "AAPL", "SPY")
	Symbol string
	// StartDate is the first calendar day considered
	StartDate time.Time
	// Count is the number of bars to generate
	Count int
	// SkipWeekends leaves Saturdays and Sundays out, like an exchange calendar
	SkipWeekends bool
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement (0.01 = 1% typical daily volatility)
	Volatility float64
	// Trend is the total drift over the series (-0.5 to 0.5 for bearish to bullish)
	Trend float64
	// VolumeBase is the average volume per bar
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:         "TEST",
		StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Count:          250,
		SkipWeekends:   true,
		InitialPrice:   100.0,
		Volatility:     0.015,
		Trend:          0.0,
		VolumeBase:     1_000_000,
		VolumeVariance: 0.3,
	}
}

// Generate creates daily bars following a geometric Brownian motion.
func (g *DataGenerator) Generate(config GeneratorConfig) []types.PriceBar {
	bars := make([]types.PriceBar, 0, config.Count)
	currentPrice := config.InitialPrice
	day := config.StartDate.UTC().Truncate(24 * time.Hour)

	for len(bars) < config.Count {
		if config.SkipWeekends && (day.Weekday() == time.Saturday || day.Weekday() == time.Sunday) {
			day = day.AddDate(0, 0, 1)

			continue
		}

		open := currentPrice

		// Box-Muller transform for a normal shock
		u1 := 1 - g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		drift := config.Trend / float64(config.Count)

		close := open * (1 + config.Volatility*z + drift)
		if close <= 0 {
			close = open * 0.99
		}

		highExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)
		lowExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)

		high := math.Max(open, close) + highExtension
		low := math.Min(open, close) - lowExtension
		if low <= 0 {
			low = math.Min(open, close) * 0.99
		}

		volume := config.VolumeBase * (1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance)
		if volume < 0 {
			volume = config.VolumeBase * 0.1
		}

		bars = append(bars, types.PriceBar{
			Date:   day,
			Open:   roundToDecimals(open, 4),
			High:   roundToDecimals(high, 4),
			Low:    roundToDecimals(low, 4),
			Close:  roundToDecimals(close, 4),
			Volume: roundToDecimals(volume, 0),
		})

		currentPrice = close
		day = day.AddDate(0, 0, 1)
	}

	return bars
}

// GenerateMultiSymbol generates bars for several symbols, varying the
// initial price and volatility slightly per symbol.
func (g *DataGenerator) GenerateMultiSymbol(symbols []string, baseConfig GeneratorConfig) map[string][]types.PriceBar {
	all := make(map[string][]types.PriceBar, len(symbols))

	for _, symbol := range symbols {
		config := baseConfig
		config.Symbol = symbol
		config.InitialPrice = baseConfig.InitialPrice * (0.8 + g.rng.Float64()*0.4)
		config.Volatility = baseConfig.Volatility * (0.8 + g.rng.Float64()*0.4)

		all[symbol] = g.Generate(config)
	}

	return all
}

// GenerateTradingYear returns the weekday bars of year for symbol with a fixed seed.
func GenerateTradingYear(symbol string, year int, initialPrice float64) []types.PriceBar {
	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	weekdays := 0

	for day := start; day.Year() == year; day = day.AddDate(0, 0, 1) {
		if day.Weekday() != time.Saturday && day.Weekday() != time.Sunday {
			weekdays++
		}
	}

	config := DefaultConfig()
	config.Symbol = symbol
	config.StartDate = start
	config.Count = weekdays
	config.InitialPrice = initialPrice
	config.Trend = 0.2

	return NewDataGenerator(42).Generate(config)
}

func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
