package provider

import (
	"context"
	"slices"
	"sync"

	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/argo-stocks/internal/types"
	"github.com/rxtech-lab/argo-stocks/pkg/errors"
)

// MemorySource serves prices held in memory. It backs offline backtests
// and paper sessions driven by synthetic data.
type MemorySource struct {
	mu      sync.RWMutex
	prices  map[string]float64
	history map[string][]types.PriceBar
	// failing symbols return an error from every call
	failing map[string]error
}

func NewMemorySource() *MemorySource {
	return &MemorySource{
		prices:  make(map[string]float64),
		history: make(map[string][]types.PriceBar),
		failing: make(map[string]error),
	}
}

// SetPrice sets the current price of symbol.
func (m *MemorySource) SetPrice(symbol string, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prices[symbol] = price
}

// SetHistory replaces the daily history of symbol. The current price
// becomes the last close.
func (m *MemorySource) SetHistory(symbol string, bars []types.PriceBar) {
	sorted := slices.Clone(bars)
	slices.SortFunc(sorted, func(a, b types.PriceBar) int {
		return a.Date.Compare(b.Date)
	})

	m.mu.Lock()
	defer m.mu.Unlock()

	m.history[symbol] = sorted
	if len(sorted) > 0 {
		m.prices[symbol] = sorted[len(sorted)-1].Close
	}
}

// Fail makes every call for symbol return err.
func (m *MemorySource) Fail(symbol string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failing[symbol] = err
}

func (m *MemorySource) CurrentPrice(_ context.Context, symbol string) (optional.Option[float64], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err, ok := m.failing[symbol]; ok {
		return optional.None[float64](), err
	}

	price, ok := m.prices[symbol]
	if !ok || price == 0 {
		return optional.None[float64](), nil
	}

	return optional.Some(price), nil
}

func (m *MemorySource) CurrentPrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(symbols))

	for _, symbol := range symbols {
		price, err := m.CurrentPrice(ctx, symbol)
		if err != nil {
			continue
		}

		if value, err := price.Take(); err == nil {
			prices[symbol] = value
		}
	}

	return prices, nil
}

func (m *MemorySource) DailyHistory(_ context.Context, symbol string, lookbackDays int) ([]types.PriceBar, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err, ok := m.failing[symbol]; ok {
		return nil, err
	}

	bars, ok := m.history[symbol]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeDataNotFound, "no history for %s", symbol)
	}

	if lookbackDays > 0 && len(bars) > lookbackDays {
		bars = bars[len(bars)-lookbackDays:]
	}

	return slices.Clone(bars), nil
}
