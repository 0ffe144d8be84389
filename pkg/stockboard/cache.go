package stockboard

import (
	"context"
	"math/rand/v2"
	"sync"

	"stockboard/internal/dashboard"
)

// Cache holds the artifacts fetched during one session. The index is
// fetched once and each series once per symbol; failed fetches are not
// cached. Reload is the only invalidation.
type Cache struct {
	client *Client

	mu     sync.Mutex
	index  *StocksIndex
	series map[string]StockSeries
}

// NewCache creates an empty cache backed by client.
func NewCache(client *Client) *Cache {
	return &Cache{client: client, series: make(map[string]StockSeries)}
}

// Index returns the cached index, fetching it on first use.
func (c *Cache) Index(ctx context.Context) (*StocksIndex, error) {
	c.mu.Lock()
	idx := c.index
	c.mu.Unlock()
	if idx != nil {
		return idx, nil
	}

	idx, err := c.client.Index(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index == nil {
		c.index = idx
	}
	return c.index, nil
}

// Series returns the cached series for symbol, fetching it on first use.
func (c *Cache) Series(ctx context.Context, symbol string) (StockSeries, error) {
	c.mu.Lock()
	s, ok := c.series[symbol]
	c.mu.Unlock()
	if ok {
		return s, nil
	}

	s, err := c.client.Series(ctx, symbol)
	if err != nil {
		return StockSeries{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.series[symbol]; ok {
		return cached, nil
	}
	c.series[symbol] = s
	return s, nil
}

// Lookup returns the index row for symbol, or nil when the index has none.
func (c *Cache) Lookup(ctx context.Context, symbol string) (*StockSummary, error) {
	idx, err := c.Index(ctx)
	if err != nil {
		return nil, err
	}
	return idx.Find(symbol), nil
}

// Sample returns n index rows chosen at random, as shown on the landing
// page.
func (c *Cache) Sample(ctx context.Context, n int, rng *rand.Rand) ([]StockSummary, error) {
	idx, err := c.Index(ctx)
	if err != nil {
		return nil, err
	}
	return dashboard.Sample(idx.Stocks, n, rng), nil
}

// Reload drops everything cached so the next reads fetch again.
func (c *Cache) Reload() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = nil
	c.series = make(map[string]StockSeries)
}
