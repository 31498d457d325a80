package utils

import (
	"github.com/shopspring/decimal"
)

// RoundToDecimalPrecision truncates quantity to decimalPrecision places.
func RoundToDecimalPrecision(quantity float64, decimalPrecision int) float64 {
	return decimal.NewFromFloat(quantity).Truncate(int32(decimalPrecision)).InexactFloat64()
}

// WholeSharesForFraction returns how many whole shares fraction of cash buys at price.
func WholeSharesForFraction(cash, price, fraction float64) int64 {
	if price <= 0 || cash <= 0 || fraction <= 0 {
		return 0
	}

	budget := decimal.NewFromFloat(cash).Mul(decimal.NewFromFloat(fraction))

	return budget.Div(decimal.NewFromFloat(price)).Floor().IntPart()
}

// Round2 rounds v half away from zero to two decimal places.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
