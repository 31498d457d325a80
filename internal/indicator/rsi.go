package indicator

// NeutralRSI is reported while the window is too short.
const NeutralRSI = 50.0

// RSI returns the relative strength index of the trailing period+1 prices.
// Gains and losses are simple averages over period changes. The result is
// 100 when there were no losses and NeutralRSI when fewer than period+1
// prices are available.
func RSI(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period+1 {
		return NeutralRSI
	}

	window := prices[len(prices)-period-1:]

	gains := 0.0
	losses := 0.0

	for i := 1; i < len(window); i++ {
		change := window[i] - window[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss

	return 100 - (100 / (1 + rs))
}
