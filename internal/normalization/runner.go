package normalization

import (
	"context"
	"errors"
	"fmt"
	"time"

	"polymarket-lab/internal/domain"
	"polymarket-lab/internal/observability"
	"polymarket-lab/internal/storage"
)

// PrepareMarket processes a single market.
// Steps:
//  1. Load market metadata and raw trades from stores
//  2. Normalize: validate, canonicalize, dedup, sort
//  3. Reconstruct the sampled series
//  4. Persist the series, replacing a stored copy built from another event set
func (r *Runner) PrepareMarket(ctx context.Context, marketID string) (*Snapshot, error) {
	// 1. Load inputs
	start := time.Now()
	meta, err := r.markets.GetByID(ctx, marketID)
	observability.RecordStoreCall("markets", "get_by_id", start, err)
	if err != nil {
		return nil, fmt.Errorf("load market %s: %w", marketID, err)
	}

	start = time.Now()
	raw, err := r.trades.GetByMarketID(ctx, marketID)
	observability.RecordStoreCall("trades", "get_by_market_id", start, err)
	if err != nil {
		return nil, fmt.Errorf("load trades for %s: %w", marketID, err)
	}

	// 2-3. Normalize and reconstruct
	start = time.Now()
	snap, err := BuildSnapshot(r.normalizer, raw, meta, r.cfg)
	if err != nil {
		return nil, fmt.Errorf("prepare market %s: %w", marketID, err)
	}
	observability.RecordNormalization(len(snap.Events), snap.Duplicates, rejectedFields(snap.Rejected))
	observability.RecordSeriesBuilt(snap.Series.FillPolicy.String(), len(snap.Series.Points), time.Since(start))

	if len(snap.Rejected) > 0 {
		r.logger.Warn("rejected raw trades",
			"market_id", marketID,
			"rejected", len(snap.Rejected),
			"first_reason", snap.Rejected[0].Reason(),
		)
	}

	// 4. Persist
	if err := r.persist(ctx, snap.Series); err != nil {
		return nil, err
	}

	r.logger.Info("market prepared",
		"market_id", marketID,
		"raw", len(raw),
		"events", len(snap.Events),
		"duplicates", snap.Duplicates,
		"points", len(snap.Series.Points),
		"fill_policy", snap.Series.FillPolicy,
		"version", snap.Version[:12],
	)

	return snap, nil
}

// PrepareBatch processes multiple markets, stopping at the first failure.
func (r *Runner) PrepareBatch(ctx context.Context, marketIDs []string) ([]*Snapshot, error) {
	snaps := make([]*Snapshot, 0, len(marketIDs))
	for _, marketID := range marketIDs {
		if err := ctx.Err(); err != nil {
			return snaps, err
		}
		snap, err := r.PrepareMarket(ctx, marketID)
		if err != nil {
			return snaps, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

func (r *Runner) persist(ctx context.Context, series *domain.ReconstructedSeries) error {
	if r.series == nil || series.IsEmpty() {
		return nil
	}

	start := time.Now()
	err := r.series.InsertSeries(ctx, series)
	if errors.Is(err, storage.ErrDuplicateKey) {
		observability.RecordStoreCall("series", "insert", start, nil)
		return r.refresh(ctx, series)
	}
	observability.RecordStoreCall("series", "insert", start, err)
	if err != nil {
		return fmt.Errorf("store series for %s: %w", series.MarketID, err)
	}
	return nil
}

// refresh replaces a stored series when late or corrected trades changed the event set.
func (r *Runner) refresh(ctx context.Context, series *domain.ReconstructedSeries) error {
	start := time.Now()
	stored, err := r.series.GetSeries(ctx, series.MarketID, series.IntervalMs, series.FillPolicy)
	observability.RecordStoreCall("series", "get", start, err)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("load stored series for %s: %w", series.MarketID, err)
	}
	if err == nil && stored.Version == series.Version {
		r.logger.Debug("series already stored", "market_id", series.MarketID, "interval_ms", series.IntervalMs)
		return nil
	}

	start = time.Now()
	err = r.series.ReplaceSeries(ctx, series)
	observability.RecordStoreCall("series", "replace", start, err)
	if err != nil {
		return fmt.Errorf("replace series for %s: %w", series.MarketID, err)
	}
	r.logger.Info("stored series replaced",
		"market_id", series.MarketID,
		"interval_ms", series.IntervalMs,
		"points", len(series.Points),
	)
	return nil
}

// rejectedFields extracts the offending field of each rejection for metrics.
func rejectedFields(rejected []*domain.Rejection) []string {
	fields := make([]string, len(rejected))
	for i, rej := range rejected {
		var verr *domain.ValidationError
		if errors.As(rej.Err, &verr) {
			fields[i] = verr.Field
		}
	}
	return fields
}

var _ Engine = (*Runner)(nil)
