package memory

import (
	"context"
	"fmt"
	"sync"

	"polymarket-lab/internal/domain"
	"polymarket-lab/internal/storage"
)

// SeriesStore is an in-memory implementation of storage.SeriesStore.
type SeriesStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ReconstructedSeries // keyed by composite key
}

// NewSeriesStore creates a new in-memory series store.
func NewSeriesStore() *SeriesStore {
	return &SeriesStore{
		data: make(map[string]*domain.ReconstructedSeries),
	}
}

// seriesKey generates a unique key for a series.
func seriesKey(marketID string, intervalMs int64, policy domain.FillPolicy) string {
	return fmt.Sprintf("%s|%d|%s", marketID, intervalMs, policy)
}

// InsertSeries stores every point of a series. Returns ErrDuplicateKey if the series exists.
func (s *SeriesStore) InsertSeries(_ context.Context, series *domain.ReconstructedSeries) error {
	if series == nil || series.MarketID == "" || series.IntervalMs <= 0 {
		return storage.ErrInvalidInput
	}

	key := seriesKey(series.MarketID, series.IntervalMs, series.FillPolicy)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[key] = copySeries(series)
	return nil
}

// ReplaceSeries drops any stored copy of the series and stores the given one.
func (s *SeriesStore) ReplaceSeries(_ context.Context, series *domain.ReconstructedSeries) error {
	if series == nil || series.MarketID == "" || series.IntervalMs <= 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[seriesKey(series.MarketID, series.IntervalMs, series.FillPolicy)] = copySeries(series)
	return nil
}

// GetSeries retrieves a stored series. Returns ErrNotFound if not exists.
func (s *SeriesStore) GetSeries(_ context.Context, marketID string, intervalMs int64, policy domain.FillPolicy) (*domain.ReconstructedSeries, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series, exists := s.data[seriesKey(marketID, intervalMs, policy)]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copySeries(series), nil
}

// GetByTimeRange retrieves series points with bucket start within [start, end] (inclusive).
func (s *SeriesStore) GetByTimeRange(_ context.Context, marketID string, intervalMs int64, policy domain.FillPolicy, start, end int64) ([]*domain.SamplePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series, exists := s.data[seriesKey(marketID, intervalMs, policy)]
	if !exists {
		return nil, nil
	}

	var result []*domain.SamplePoint
	for _, p := range series.Points {
		if p.TimestampMs >= start && p.TimestampMs <= end {
			result = append(result, copyPoint(p))
		}
	}
	return result, nil
}

func copySeries(src *domain.ReconstructedSeries) *domain.ReconstructedSeries {
	dst := *src
	dst.Points = make([]*domain.SamplePoint, len(src.Points))
	for i, p := range src.Points {
		dst.Points[i] = copyPoint(p)
	}
	return &dst
}

func copyPoint(src *domain.SamplePoint) *domain.SamplePoint {
	dst := *src
	if src.Price != nil {
		price := *src.Price
		dst.Price = &price
	}
	return &dst
}

var _ storage.SeriesStore = (*SeriesStore)(nil)
