package indicator

import "math"

// Bands are Bollinger bands around a simple mean.
type Bands struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// StdDev returns the population standard deviation of prices.
func StdDev(prices []float64) float64 {
	if len(prices) == 0 {
		return 0
	}

	mean := Mean(prices)

	var squaredDiffSum float64
	for _, p := range prices {
		diff := p - mean
		squaredDiffSum += diff * diff
	}

	return math.Sqrt(squaredDiffSum / float64(len(prices)))
}

// BollingerBands returns mean ± numStd·σ over the trailing period prices.
func BollingerBands(prices []float64, period int, numStd float64) (Bands, error) {
	if err := requirePeriod("Bollinger Bands", period); err != nil {
		return Bands{}, err
	}

	if err := requireData("Bollinger Bands", prices, period); err != nil {
		return Bands{}, err
	}

	window := prices[len(prices)-period:]
	middle := Mean(window)
	stdDev := StdDev(window)

	return Bands{
		Upper:  middle + numStd*stdDev,
		Middle: middle,
		Lower:  middle - numStd*stdDev,
	}, nil
}
