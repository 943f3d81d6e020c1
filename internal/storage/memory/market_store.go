package memory

import (
	"context"
	"sort"
	"sync"

	"polymarket-lab/internal/domain"
	"polymarket-lab/internal/storage"
)

// MarketStore is an in-memory implementation of storage.MarketStore.
type MarketStore struct {
	mu     sync.RWMutex
	byID   map[string]*domain.MarketMetadata // keyed by market_id
	bySlug map[string]*domain.MarketMetadata // keyed by slug (unique when set)
}

// NewMarketStore creates a new in-memory market store.
func NewMarketStore() *MarketStore {
	return &MarketStore{
		byID:   make(map[string]*domain.MarketMetadata),
		bySlug: make(map[string]*domain.MarketMetadata),
	}
}

// Insert adds market metadata. Returns ErrDuplicateKey if market_id or slug already exists.
func (s *MarketStore) Insert(_ context.Context, m *domain.MarketMetadata) error {
	if m == nil || m.MarketID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[m.MarketID]; exists {
		return storage.ErrDuplicateKey
	}
	if m.Slug != "" {
		if _, exists := s.bySlug[m.Slug]; exists {
			return storage.ErrDuplicateKey
		}
	}

	metaCopy := *m
	s.byID[m.MarketID] = &metaCopy
	if m.Slug != "" {
		s.bySlug[m.Slug] = &metaCopy
	}
	return nil
}

// GetByID retrieves metadata by market ID. Returns ErrNotFound if not exists.
func (s *MarketStore) GetByID(_ context.Context, marketID string) (*domain.MarketMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, exists := s.byID[marketID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	metaCopy := *m
	return &metaCopy, nil
}

// GetBySlug retrieves metadata by slug. Returns ErrNotFound if not exists.
func (s *MarketStore) GetBySlug(_ context.Context, slug string) (*domain.MarketMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, exists := s.bySlug[slug]
	if !exists {
		return nil, storage.ErrNotFound
	}

	metaCopy := *m
	return &metaCopy, nil
}

// List returns all markets ordered by start time ASC.
func (s *MarketStore) List(_ context.Context) ([]*domain.MarketMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.MarketMetadata, 0, len(s.byID))
	for _, m := range s.byID {
		metaCopy := *m
		result = append(result, &metaCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].StartTimeMs != result[j].StartTimeMs {
			return result[i].StartTimeMs < result[j].StartTimeMs
		}
		return result[i].MarketID < result[j].MarketID
	})

	return result, nil
}

var _ storage.MarketStore = (*MarketStore)(nil)
