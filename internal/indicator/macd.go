package indicator

// MACD returns fast EMA minus slow EMA, both computed over all of prices.
func MACD(prices []float64, fastPeriod, slowPeriod int) (float64, error) {
	if err := requirePeriod("MACD fast", fastPeriod); err != nil {
		return 0, err
	}

	if err := requirePeriod("MACD slow", slowPeriod); err != nil {
		return 0, err
	}

	if err := requireData("MACD", prices, max(fastPeriod, slowPeriod)); err != nil {
		return 0, err
	}

	fast, err := EMA(prices, fastPeriod)
	if err != nil {
		return 0, err
	}

	slow, err := EMA(prices, slowPeriod)
	if err != nil {
		return 0, err
	}

	return fast - slow, nil
}
