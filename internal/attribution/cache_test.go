package attribution

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polymarket-lab/internal/domain"
	"polymarket-lab/internal/observability"
)

func TestPositionCache_HitReturnsSamePosition(t *testing.T) {
	cache := NewPositionCache()
	events := []*domain.TradeEvent{fill(0, "0xa", 0.4, 10, domain.SideBuy)}
	m := meta(false, "")

	first, err := cache.Get("v1", "0xA", events, m)
	require.NoError(t, err)

	second, err := cache.Get("v1", "0xa", events, m)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, cache.Len())
}

func TestPositionCache_VersionChangeRebuilds(t *testing.T) {
	cache := NewPositionCache()
	m := meta(false, "")

	v1, err := cache.Get("v1", "0xa", []*domain.TradeEvent{fill(0, "0xa", 0.4, 10, domain.SideBuy)}, m)
	require.NoError(t, err)

	v2, err := cache.Get("v2", "0xa", []*domain.TradeEvent{
		fill(0, "0xa", 0.4, 10, domain.SideBuy),
		fill(1, "0xa", 0.4, 5, domain.SideBuy),
	}, m)
	require.NoError(t, err)

	assert.Equal(t, 10.0, v1.Inventory)
	assert.Equal(t, 15.0, v2.Inventory)
	assert.Equal(t, 2, cache.Len())
}

func TestPositionCache_ConcurrentGet(t *testing.T) {
	cache := NewPositionCache()
	events := []*domain.TradeEvent{fill(0, "0xa", 0.4, 10, domain.SideBuy)}
	m := meta(true, domain.OutcomeUp)

	var wg sync.WaitGroup
	results := make([]*domain.TraderPosition, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pos, err := cache.Get("v1", "0xa", events, m)
			if err == nil {
				results[i] = pos
			}
		}(i)
	}
	wg.Wait()

	for i, pos := range results {
		require.NotNil(t, pos, "goroutine %d", i)
		assert.Same(t, results[0], pos)
	}
	assert.Equal(t, 1, cache.Len())
}

func TestPositionCache_ErrorsAreNotCached(t *testing.T) {
	cache := NewPositionCache()

	_, err := cache.Get("v1", "", nil, meta(false, ""))
	assert.Error(t, err)
	assert.Equal(t, 0, cache.Len())
}

func TestPositionCache_Purge(t *testing.T) {
	cache := NewPositionCache()
	m := meta(false, "")

	_, _ = cache.Get("v1", "0xa", nil, m)
	_, _ = cache.Get("v1", "0xb", nil, m)
	require.Equal(t, 2, cache.Len())

	cache.Purge("m1")
	assert.Equal(t, 0, cache.Len())
}

func TestPositionCache_RecordsEveryLookup(t *testing.T) {
	cache := NewPositionCache()
	events := []*domain.TradeEvent{fill(0, "0xa", 0.4, 10, domain.SideBuy)}
	m := meta(true, domain.OutcomeUp)

	hitsBefore := testutil.ToFloat64(observability.DefaultMetrics.PositionCacheHits)
	missesBefore := testutil.ToFloat64(observability.DefaultMetrics.PositionCacheMisses)

	const callers = 32
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = cache.Get("v-lookups", "0xa", events, m)
		}()
	}
	wg.Wait()

	hits := testutil.ToFloat64(observability.DefaultMetrics.PositionCacheHits) - hitsBefore
	misses := testutil.ToFloat64(observability.DefaultMetrics.PositionCacheMisses) - missesBefore

	assert.Equal(t, 1.0, misses, "only one caller folds")
	assert.Equal(t, float64(callers-1), hits)
}
