package indicator

// Momentum returns (latest-earliest)/earliest over the trailing lookback+1
// prices. A zero earliest price yields 0.
func Momentum(prices []float64, lookback int) (float64, error) {
	if err := requirePeriod("Momentum", lookback); err != nil {
		return 0, err
	}

	if err := requireData("Momentum", prices, lookback+1); err != nil {
		return 0, err
	}

	window := prices[len(prices)-lookback-1:]
	earliest := window[0]

	if earliest == 0 {
		return 0, nil
	}

	return (window[len(window)-1] - earliest) / earliest, nil
}
