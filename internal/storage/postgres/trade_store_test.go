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

func TestTradeStore_InsertBulkAndGetByMarketID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTradeStore(pool)

	trades := []*domain.RawTrade{
		{MarketID: "m1", TimestampMs: 3000, Price: 0.55, Size: 10, Side: "buy", Outcome: "Up", TraderAddress: "0xA", TxHash: "0x01"},
		{MarketID: "m1", TimestampMs: 1000, Price: 0.45, Size: 4, Side: "sell", Outcome: "Down", TraderAddress: "0xb", TxHash: "0x02"},
		{MarketID: "m2", TimestampMs: 2000, Price: 0.50, Size: 1, Side: "buy", TraderAddress: "0xc"},
	}

	err := store.InsertBulk(ctx, trades)
	require.NoError(t, err)

	result, err := store.GetByMarketID(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, result, 2)

	// Arrival order, not timestamp order
	assert.Equal(t, int64(3000), result[0].TimestampMs)
	assert.Equal(t, int64(1000), result[1].TimestampMs)

	assert.Equal(t, "m1", result[0].MarketID)
	assert.InDelta(t, 0.55, result[0].Price, 0.0001)
	assert.InDelta(t, 10.0, result[0].Size, 0.0001)
	assert.Equal(t, "buy", result[0].Side)
	assert.Equal(t, "Up", result[0].Outcome)
	assert.Equal(t, "0xA", result[0].TraderAddress)
	assert.Equal(t, "0x01", result[0].TxHash)
}

func TestTradeStore_KeepsExactDuplicates(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTradeStore(pool)

	trade := &domain.RawTrade{MarketID: "m1", TimestampMs: 1000, Price: 0.5, Size: 1, Side: "buy", TraderAddress: "0xa"}

	err := store.InsertBulk(ctx, []*domain.RawTrade{trade, trade})
	require.NoError(t, err)

	result, err := store.GetByMarketID(ctx, "m1")
	require.NoError(t, err)
	assert.Len(t, result, 2)
}

func TestTradeStore_InvalidInput(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTradeStore(pool)

	err := store.InsertBulk(ctx, []*domain.RawTrade{{MarketID: ""}})
	assert.True(t, errors.Is(err, storage.ErrInvalidInput))
}

func TestTradeStore_GetByTimeRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTradeStore(pool)

	var trades []*domain.RawTrade
	for _, ts := range []int64{1000, 2000, 3000, 4000} {
		trades = append(trades, &domain.RawTrade{MarketID: "m1", TimestampMs: ts, Price: 0.5, Size: 1, Side: "buy", TraderAddress: "0xa"})
	}
	require.NoError(t, store.InsertBulk(ctx, trades))

	result, err := store.GetByTimeRange(ctx, "m1", 2000, 3000)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, int64(2000), result[0].TimestampMs)
	assert.Equal(t, int64(3000), result[1].TimestampMs)
}
