package strategy

import "fmt"

// MovingAverageParams configures a moving-average crossover.
type MovingAverageParams struct {
	ShortWindow int `json:"short_window" yaml:"short_window" validate:"gt=0"`
	LongWindow  int `json:"long_window" yaml:"long_window" validate:"gt=0"`
}

func (MovingAverageParams) Kind() Kind { return KindMovingAverageCrossover }

func (p MovingAverageParams) Summary() string {
	return fmt.Sprintf("SMA %d/%d", p.ShortWindow, p.LongWindow)
}

// RSIParams configures an RSI oscillator.
type RSIParams struct {
	Period     int     `json:"period" yaml:"period" validate:"gt=0"`
	Oversold   float64 `json:"oversold" yaml:"oversold" validate:"gte=0,lte=100"`
	Overbought float64 `json:"overbought" yaml:"overbought" validate:"gte=0,lte=100"`
}

func (RSIParams) Kind() Kind { return KindRSI }

func (p RSIParams) Summary() string {
	return fmt.Sprintf("RSI %d %.0f/%.0f", p.Period, p.Oversold, p.Overbought)
}

// MACDParams configures a MACD signal-line crossover.
type MACDParams struct {
	FastPeriod   int `json:"fast_period" yaml:"fast_period" validate:"gt=0"`
	SlowPeriod   int `json:"slow_period" yaml:"slow_period" validate:"gt=0"`
	SignalPeriod int `json:"signal_period" yaml:"signal_period" validate:"gt=0"`
}

func (MACDParams) Kind() Kind { return KindMACD }

func (p MACDParams) Summary() string {
	return fmt.Sprintf("MACD %d/%d/%d", p.FastPeriod, p.SlowPeriod, p.SignalPeriod)
}

// BollingerParams configures a Bollinger band mean reversion.
type BollingerParams struct {
	Period int     `json:"period" yaml:"period" validate:"gt=0"`
	NumStd float64 `json:"num_std" yaml:"num_std" validate:"gte=0"`
}

func (BollingerParams) Kind() Kind { return KindBollingerBands }

func (p BollingerParams) Summary() string {
	return fmt.Sprintf("BB %d/%.1f", p.Period, p.NumStd)
}

// MomentumParams configures a momentum breakout.
type MomentumParams struct {
	LookbackPeriod int     `json:"lookback_period" yaml:"lookback_period" validate:"gt=0"`
	Threshold      float64 `json:"threshold" yaml:"threshold" validate:"gte=0"`
}

func (MomentumParams) Kind() Kind { return KindMomentum }

func (p MomentumParams) Summary() string {
	return fmt.Sprintf("Momentum %d/%.4f", p.LookbackPeriod, p.Threshold)
}

// NoActionParams configures the inert strategy.
type NoActionParams struct{}

func (NoActionParams) Kind() Kind { return KindNoAction }

func (NoActionParams) Summary() string { return "no action" }

// CompositeParams names the strategies that take buy and sell decisions.
type CompositeParams struct {
	BuyStrategy  string `json:"buy_strategy" yaml:"buy_strategy" validate:"required"`
	SellStrategy string `json:"sell_strategy" yaml:"sell_strategy" validate:"required"`
}

func (CompositeParams) Kind() Kind { return KindComposite }

func (p CompositeParams) Summary() string {
	return fmt.Sprintf("buy=%s sell=%s", p.BuyStrategy, p.SellStrategy)
}
