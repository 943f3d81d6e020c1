package storage

import (
	"context"

	"polymarket-lab/internal/domain"
)

// TradeStore provides access to raw_trades storage.
// Raw trades are stored as received; exact duplicates are kept and
// collapsed later by the normalizer.
type TradeStore interface {
	// InsertBulk appends raw trades atomically. Returns ErrInvalidInput on nil or marketless records.
	InsertBulk(ctx context.Context, trades []*domain.RawTrade) error

	// GetByMarketID retrieves all raw trades for a market in arrival order.
	GetByMarketID(ctx context.Context, marketID string) ([]*domain.RawTrade, error)

	// GetByTimeRange retrieves raw trades for a market within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, marketID string, start, end int64) ([]*domain.RawTrade, error)
}

// MarketStore provides access to markets storage.
type MarketStore interface {
	// Insert adds market metadata. Returns ErrDuplicateKey if market_id exists.
	Insert(ctx context.Context, m *domain.MarketMetadata) error

	// GetByID retrieves metadata by market ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, marketID string) (*domain.MarketMetadata, error)

	// GetBySlug retrieves metadata by slug. Returns ErrNotFound if not exists.
	GetBySlug(ctx context.Context, slug string) (*domain.MarketMetadata, error)

	// List returns all markets ordered by start time ASC.
	List(ctx context.Context) ([]*domain.MarketMetadata, error)
}

// SeriesStore provides access to series_points storage.
// A series is identified by (market_id, interval_ms, fill_policy).
type SeriesStore interface {
	// InsertSeries stores every point of a series. Returns ErrDuplicateKey if the series exists.
	InsertSeries(ctx context.Context, series *domain.ReconstructedSeries) error

	// ReplaceSeries drops any stored copy of the series and stores the given one.
	ReplaceSeries(ctx context.Context, series *domain.ReconstructedSeries) error

	// GetSeries retrieves a stored series. Returns ErrNotFound if not exists.
	GetSeries(ctx context.Context, marketID string, intervalMs int64, policy domain.FillPolicy) (*domain.ReconstructedSeries, error)

	// GetByTimeRange retrieves series points with bucket start within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, marketID string, intervalMs int64, policy domain.FillPolicy, start, end int64) ([]*domain.SamplePoint, error)
}
