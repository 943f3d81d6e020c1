package normalization

import (
	"context"
	"log/slog"

	"polymarket-lab/internal/domain"
	"polymarket-lab/internal/idhash"
	"polymarket-lab/internal/storage"
)

// Engine prepares a market for analysis.
type Engine interface {
	// PrepareMarket loads, normalizes and reconstructs one market.
	PrepareMarket(ctx context.Context, marketID string) (*Snapshot, error)
}

// Snapshot is the immutable input to the analytics, attribution and scoring stages.
// Every stage reads the same events and series; nothing mutates them after build.
type Snapshot struct {
	Market     *domain.MarketMetadata
	Events     []*domain.TradeEvent
	Rejected   []*domain.Rejection
	Duplicates int
	Series     *domain.ReconstructedSeries
	Version    string // event-set version, changes whenever the event set changes
}

// Runner implements Engine over the trade, market and series stores.
type Runner struct {
	trades     storage.TradeStore
	markets    storage.MarketStore
	series     storage.SeriesStore // optional, nil disables persistence
	normalizer *Normalizer
	cfg        SeriesConfig
	logger     *slog.Logger
}

// NewRunner creates a new normalization runner.
func NewRunner(
	trades storage.TradeStore,
	markets storage.MarketStore,
	series storage.SeriesStore,
	cfg SeriesConfig,
	logger *slog.Logger,
) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		trades:     trades,
		markets:    markets,
		series:     series,
		normalizer: NewNormalizer(),
		cfg:        cfg,
		logger:     logger.With("component", "normalization"),
	}
}

// BuildSnapshot normalizes raw trades and reconstructs the series without touching any store.
func BuildSnapshot(n *Normalizer, raw []*domain.RawTrade, meta *domain.MarketMetadata, cfg SeriesConfig) (*Snapshot, error) {
	res, err := n.Normalize(raw, meta)
	if err != nil {
		return nil, err
	}

	series, err := Reconstruct(res.Events, meta, cfg)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(res.Events))
	for i, e := range res.Events {
		ids[i] = e.EventID
	}
	version := idhash.ComputeEventSetVersion(ids)
	series.Version = version

	return &Snapshot{
		Market:     meta,
		Events:     res.Events,
		Rejected:   res.Rejected,
		Duplicates: res.Duplicates,
		Series:     series,
		Version:    version,
	}, nil
}
