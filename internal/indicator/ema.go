package indicator

// EMA returns the exponential moving average over all of prices. The EMA is
// seeded with the simple mean of the first period prices and then smoothed
// over the remainder with multiplier 2/(period+1).
func EMA(prices []float64, period int) (float64, error) {
	if err := requirePeriod("EMA", period); err != nil {
		return 0, err
	}

	if err := requireData("EMA", prices, period); err != nil {
		return 0, err
	}

	multiplier := 2.0 / float64(period+1)
	ema := Mean(prices[:period])

	for _, price := range prices[period:] {
		ema = (price-ema)*multiplier + ema
	}

	return ema, nil
}
