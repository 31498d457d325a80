package provider

import (
	"context"
	"strings"

	"github.com/rxtech-lab/argo-stocks/pkg/errors"
)

// NormalizeSymbols upper-cases and trims symbols, dropping blanks and duplicates.
func NormalizeSymbols(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	normalized := make([]string, 0, len(symbols))

	for _, symbol := range symbols {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol == "" {
			continue
		}

		if _, ok := seen[symbol]; ok {
			continue
		}

		seen[symbol] = struct{}{}
		normalized = append(normalized, symbol)
	}

	return normalized
}

// ValidateSymbols normalizes symbols and checks that source can price each
// of them. It returns the valid symbols and the ones the source rejected.
func ValidateSymbols(ctx context.Context, source PriceSource, symbols []string) (valid []string, invalid []string, err error) {
	normalized := NormalizeSymbols(symbols)
	if len(normalized) == 0 {
		return nil, nil, errors.New(errors.ErrCodeInvalidSymbol, "no symbols given")
	}

	prices, err := source.CurrentPrices(ctx, normalized)
	if err != nil {
		return nil, nil, err
	}

	for _, symbol := range normalized {
		if _, ok := prices[symbol]; ok {
			valid = append(valid, symbol)
		} else {
			invalid = append(invalid, symbol)
		}
	}

	return valid, invalid, nil
}
