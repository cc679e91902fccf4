package cache

import (
	"fmt"
	"maps"
	"time"

	"github.com/dgraph-io/ristretto"
)

// RistrettoRateCache keeps remote conversion tables per base currency.
type RistrettoRateCache struct {
	cache *ristretto.Cache
}

func NewRateCache(maxItems int64) (*RistrettoRateCache, error) {
	// every entry costs 1, so MaxCost counts entries
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        10 * maxItems,
		MaxCost:            maxItems,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create rate cache failed: %w", err)
	}
	return &RistrettoRateCache{cache: c}, nil
}

func (c *RistrettoRateCache) Get(base string) (map[string]float64, bool) {
	if v, ok := c.cache.Get(base); ok {
		rates, ok := v.(map[string]float64)
		if !ok {
			return nil, false
		}
		return maps.Clone(rates), true
	}
	return nil, false
}

// Set stores a copy; a non-positive ttl means the entry never expires.
func (c *RistrettoRateCache) Set(base string, rates map[string]float64, ttl time.Duration) {
	if ttl <= 0 {
		c.cache.Set(base, maps.Clone(rates), 1)
		return
	}
	c.cache.SetWithTTL(base, maps.Clone(rates), 1, ttl)
}

func (c *RistrettoRateCache) Close() { c.cache.Close() }
