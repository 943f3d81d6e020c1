package attribution

import (
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"polymarket-lab/internal/domain"
	"polymarket-lab/internal/observability"
)

// PositionCache memoizes BuildPosition per (market, trader, event-set version).
// Concurrent misses for the same key share one fold.
// Cached positions are shared between callers and must not be mutated.
type PositionCache struct {
	mu      sync.RWMutex
	entries map[string]*domain.TraderPosition // keyed by market|trader|version
	group   singleflight.Group
}

// NewPositionCache creates an empty cache.
func NewPositionCache() *PositionCache {
	return &PositionCache{
		entries: make(map[string]*domain.TraderPosition),
	}
}

func cacheKey(marketID, trader, version string) string {
	return marketID + "|" + trader + "|" + version
}

// Get returns the cached position or builds it from events.
// version must change whenever the event set changes.
// Every call records exactly one cache lookup: a miss only for the call that folds.
func (c *PositionCache) Get(version, trader string, events []*domain.TradeEvent, meta *domain.MarketMetadata) (*domain.TraderPosition, error) {
	if meta == nil {
		return nil, domain.ErrNilMetadata
	}
	key := cacheKey(meta.MarketID, NormalizeTrader(trader), version)

	c.mu.RLock()
	pos, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		observability.RecordPositionCache(true)
		return pos, nil
	}

	// Do runs fn on the calling goroutine, so ran is only set for the leader
	ran := false
	v, err, _ := c.group.Do(key, func() (any, error) {
		ran = true
		c.mu.RLock()
		cached, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			observability.RecordPositionCache(true)
			return cached, nil
		}

		observability.RecordPositionCache(false)
		built, err := BuildPosition(events, trader, meta)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = built
		c.mu.Unlock()
		return built, nil
	})
	if !ran {
		// Waited on another caller's fold
		observability.RecordPositionCache(true)
	}
	if err != nil {
		return nil, err
	}
	return v.(*domain.TraderPosition), nil
}

// Len returns the number of cached positions.
func (c *PositionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Purge drops every cached position for a market.
func (c *PositionCache) Purge(marketID string) {
	prefix := marketID + "|"

	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}
