package memory

import (
	"context"
	"errors"
	"testing"

	"polymarket-lab/internal/domain"
	"polymarket-lab/internal/storage"
)

func TestTradeStore_InsertBulkAndGet(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	trades := []*domain.RawTrade{
		{MarketID: "m1", TimestampMs: 3000, Price: 0.5, Size: 10, Side: "buy", TraderAddress: "0xa"},
		{MarketID: "m1", TimestampMs: 1000, Price: 0.4, Size: 5, Side: "sell", TraderAddress: "0xb"},
		{MarketID: "m2", TimestampMs: 2000, Price: 0.6, Size: 1, Side: "buy", TraderAddress: "0xa"},
	}

	if err := store.InsertBulk(ctx, trades); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetByMarketID(ctx, "m1")
	if err != nil {
		t.Fatalf("GetByMarketID failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("Expected 2 trades, got %d", len(result))
	}

	// Arrival order is preserved
	if result[0].TimestampMs != 3000 || result[1].TimestampMs != 1000 {
		t.Errorf("Arrival order not preserved: got %d, %d", result[0].TimestampMs, result[1].TimestampMs)
	}
}

func TestTradeStore_KeepsExactDuplicates(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	trade := &domain.RawTrade{MarketID: "m1", TimestampMs: 1000, Price: 0.5, Size: 10, Side: "buy", TraderAddress: "0xa"}

	if err := store.InsertBulk(ctx, []*domain.RawTrade{trade, trade}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, _ := store.GetByMarketID(ctx, "m1")
	if len(result) != 2 {
		t.Errorf("Expected 2 stored trades, got %d", len(result))
	}
}

func TestTradeStore_InvalidInputRejectsBatch(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	trades := []*domain.RawTrade{
		{MarketID: "m1", TimestampMs: 1000},
		{MarketID: "", TimestampMs: 2000},
	}

	err := store.InsertBulk(ctx, trades)
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}

	result, _ := store.GetByMarketID(ctx, "m1")
	if len(result) != 0 {
		t.Errorf("Batch should be atomic, got %d stored trades", len(result))
	}
}

func TestTradeStore_GetByTimeRange(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	var trades []*domain.RawTrade
	for _, ts := range []int64{1000, 2000, 3000, 4000} {
		trades = append(trades, &domain.RawTrade{MarketID: "m1", TimestampMs: ts})
	}
	if err := store.InsertBulk(ctx, trades); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetByTimeRange(ctx, "m1", 2000, 3000)
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}
	if len(result) != 2 {
		t.Errorf("Expected 2 trades in range, got %d", len(result))
	}
}

func TestTradeStore_ReturnsCopies(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	trade := &domain.RawTrade{MarketID: "m1", TimestampMs: 1000, Price: 0.5}
	_ = store.InsertBulk(ctx, []*domain.RawTrade{trade})

	trade.Price = 0.9
	result, _ := store.GetByMarketID(ctx, "m1")
	result[0].Price = 0.1

	again, _ := store.GetByMarketID(ctx, "m1")
	if again[0].Price != 0.5 {
		t.Errorf("Stored trade mutated: got %f, want 0.5", again[0].Price)
	}
}
