package cache

import (
	"slices"
	"sync"

	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/argo-stocks/internal/types"
)

type Cache interface {
	// Get returns the cached bars of symbol fetched with lookbackDays.
	Get(symbol string, lookbackDays int) optional.Option[[]types.PriceBar]
	// Set stores the bars of symbol fetched with lookbackDays.
	Set(symbol string, lookbackDays int, bars []types.PriceBar)
	Reset()
}

type historyKey struct {
	symbol       string
	lookbackDays int
}

// HistoryCacheV1 keeps daily price histories in memory so consecutive
// backtests over the same tickers hit the price source once.
type HistoryCacheV1 struct {
	mu        sync.RWMutex
	histories map[historyKey][]types.PriceBar
}

func NewHistoryCacheV1() Cache {
	return &HistoryCacheV1{
		histories: make(map[historyKey][]types.PriceBar),
	}
}

// Get implements cache.Cache. The returned slice is a copy.
func (c *HistoryCacheV1) Get(symbol string, lookbackDays int) optional.Option[[]types.PriceBar] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	bars, ok := c.histories[historyKey{symbol: symbol, lookbackDays: lookbackDays}]
	if !ok {
		return optional.None[[]types.PriceBar]()
	}

	return optional.Some(slices.Clone(bars))
}

// Set implements cache.Cache.
func (c *HistoryCacheV1) Set(symbol string, lookbackDays int, bars []types.PriceBar) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.histories[historyKey{symbol: symbol, lookbackDays: lookbackDays}] = slices.Clone(bars)
}

// Reset implements cache.Cache.
func (c *HistoryCacheV1) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.histories = make(map[historyKey][]types.PriceBar)
}
