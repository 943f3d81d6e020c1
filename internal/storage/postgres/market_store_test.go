package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polymarket-lab/internal/domain"
	"polymarket-lab/internal/storage"
)

func testMarket(id, slug string) *domain.MarketMetadata {
	return &domain.MarketMetadata{
		MarketID:         id,
		Slug:             slug,
		Question:         "Bitcoin Up or Down?",
		Outcomes:         [2]string{domain.OutcomeUp, domain.OutcomeDown},
		TickSize:         0.01,
		StartTimeMs:      1769760000000,
		ResolutionTimeMs: 1769763600000,
		Resolved:         true,
		WinningOutcome:   domain.OutcomeUp,
	}
}

func TestMarketStore_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewMarketStore(pool)

	m := testMarket("m1", "bitcoin-up-or-down-january-30-3am-et")
	m.ConditionID = "0xcond"
	require.NoError(t, store.Insert(ctx, m))

	got, err := store.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, m, got)

	bySlug, err := store.GetBySlug(ctx, m.Slug)
	require.NoError(t, err)
	assert.Equal(t, "m1", bySlug.MarketID)
}

func TestMarketStore_NullableColumns(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewMarketStore(pool)

	// Two markets without slug must not collide on the unique index
	require.NoError(t, store.Insert(ctx, testMarket("m1", "")))
	require.NoError(t, store.Insert(ctx, testMarket("m2", "")))

	got, err := store.GetByID(ctx, "m2")
	require.NoError(t, err)
	assert.Empty(t, got.Slug)
	assert.Empty(t, got.ConditionID)
}

func TestMarketStore_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewMarketStore(pool)

	require.NoError(t, store.Insert(ctx, testMarket("m1", "a")))

	err := store.Insert(ctx, testMarket("m1", "b"))
	assert.True(t, errors.Is(err, storage.ErrDuplicateKey))

	err = store.Insert(ctx, testMarket("m2", "a"))
	assert.True(t, errors.Is(err, storage.ErrDuplicateKey))
}

func TestMarketStore_NotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewMarketStore(pool)

	_, err := store.GetByID(ctx, "missing")
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	_, err = store.GetBySlug(ctx, "missing")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestMarketStore_List(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewMarketStore(pool)

	late := testMarket("late", "late")
	late.StartTimeMs = 2000
	early := testMarket("early", "early")
	early.StartTimeMs = 1000

	require.NoError(t, store.Insert(ctx, late))
	require.NoError(t, store.Insert(ctx, early))

	markets, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, markets, 2)
	assert.Equal(t, "early", markets[0].MarketID)
	assert.Equal(t, "late", markets[1].MarketID)
}
