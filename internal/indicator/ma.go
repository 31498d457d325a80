package indicator

// Mean returns the arithmetic mean of prices, or 0 for an empty slice.
func Mean(prices []float64) float64 {
	if len(prices) == 0 {
		return 0
	}

	sum := 0.0
	for _, p := range prices {
		sum += p
	}

	return sum / float64(len(prices))
}

// SMA returns the simple moving average of the trailing period prices.
func SMA(prices []float64, period int) (float64, error) {
	if err := requirePeriod("SMA", period); err != nil {
		return 0, err
	}

	if err := requireData("SMA", prices, period); err != nil {
		return 0, err
	}

	return Mean(prices[len(prices)-period:]), nil
}
