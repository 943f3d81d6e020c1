package memory

import (
	"context"
	"sync"

	"polymarket-lab/internal/domain"
	"polymarket-lab/internal/storage"
)

// TradeStore is an in-memory implementation of storage.TradeStore.
type TradeStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.RawTrade // keyed by market_id, arrival order
}

// NewTradeStore creates a new in-memory trade store.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		data: make(map[string][]*domain.RawTrade),
	}
}

// InsertBulk appends raw trades atomically.
func (s *TradeStore) InsertBulk(_ context.Context, trades []*domain.RawTrade) error {
	if len(trades) == 0 {
		return nil
	}

	// First pass: validate the whole batch
	for _, t := range trades {
		if t == nil || t.MarketID == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Second pass: append copies
	for _, t := range trades {
		tradeCopy := *t
		s.data[t.MarketID] = append(s.data[t.MarketID], &tradeCopy)
	}

	return nil
}

// GetByMarketID retrieves all raw trades for a market in arrival order.
func (s *TradeStore) GetByMarketID(_ context.Context, marketID string) ([]*domain.RawTrade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.data[marketID]
	result := make([]*domain.RawTrade, 0, len(stored))
	for _, t := range stored {
		tradeCopy := *t
		result = append(result, &tradeCopy)
	}
	return result, nil
}

// GetByTimeRange retrieves raw trades for a market within [start, end] (inclusive).
func (s *TradeStore) GetByTimeRange(_ context.Context, marketID string, start, end int64) ([]*domain.RawTrade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.RawTrade
	for _, t := range s.data[marketID] {
		if t.TimestampMs >= start && t.TimestampMs <= end {
			tradeCopy := *t
			result = append(result, &tradeCopy)
		}
	}
	return result, nil
}

var _ storage.TradeStore = (*TradeStore)(nil)
