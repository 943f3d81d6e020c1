package clickhouse

import (
	"context"
	"fmt"

	"polymarket-lab/internal/domain"
	"polymarket-lab/internal/storage"
)

// SeriesStore implements storage.SeriesStore using ClickHouse.
type SeriesStore struct {
	conn *Conn
}

// NewSeriesStore creates a new SeriesStore.
func NewSeriesStore(conn *Conn) *SeriesStore {
	return &SeriesStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SeriesStore = (*SeriesStore)(nil)

const selectSeriesColumns = `
	SELECT market_id, interval_ms, series_start_ms, series_end_ms, event_set_version, timestamp_ms,
		price, volume, buy_volume, sell_volume, cumulative_volume, trade_count, source
	FROM series_points
`

// InsertSeries stores every point of a series. Returns ErrDuplicateKey if the series exists.
// An empty series stores nothing.
func (s *SeriesStore) InsertSeries(ctx context.Context, series *domain.ReconstructedSeries) error {
	if series == nil || series.MarketID == "" || series.IntervalMs <= 0 {
		return storage.ErrInvalidInput
	}
	if series.IsEmpty() {
		return nil
	}

	// Check for intra-batch duplicates
	seen := make(map[int64]struct{}, len(series.Points))
	for _, p := range series.Points {
		if _, exists := seen[p.TimestampMs]; exists {
			return storage.ErrDuplicateKey
		}
		seen[p.TimestampMs] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	exists, err := s.exists(ctx, series.MarketID, series.IntervalMs, series.FillPolicy)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	return s.insertPoints(ctx, series)
}

// ReplaceSeries drops any stored copy of the series and stores the given one.
// Uses a lightweight delete, so the old rows are invisible once it returns.
func (s *SeriesStore) ReplaceSeries(ctx context.Context, series *domain.ReconstructedSeries) error {
	if series == nil || series.MarketID == "" || series.IntervalMs <= 0 {
		return storage.ErrInvalidInput
	}

	err := s.conn.Exec(ctx, `
		DELETE FROM series_points
		WHERE market_id = ? AND interval_ms = ? AND fill_policy = ?
	`, series.MarketID, uint64(series.IntervalMs), string(series.FillPolicy))
	if err != nil {
		return fmt.Errorf("delete stored series: %w", err)
	}

	if series.IsEmpty() {
		return nil
	}
	return s.insertPoints(ctx, series)
}

func (s *SeriesStore) insertPoints(ctx context.Context, series *domain.ReconstructedSeries) error {
	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO series_points (
			market_id, interval_ms, fill_policy, series_start_ms, series_end_ms, event_set_version, timestamp_ms,
			price, volume, buy_volume, sell_volume, cumulative_volume, trade_count, source
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range series.Points {
		err = batch.Append(
			series.MarketID, uint64(series.IntervalMs), string(series.FillPolicy),
			series.StartMs, series.EndMs, series.Version, p.TimestampMs,
			p.Price, p.Volume, p.BuyVolume, p.SellVolume, p.CumulativeVolume,
			uint32(p.TradeCount), string(p.Source),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetSeries retrieves a stored series. Returns ErrNotFound if not exists.
func (s *SeriesStore) GetSeries(ctx context.Context, marketID string, intervalMs int64, policy domain.FillPolicy) (*domain.ReconstructedSeries, error) {
	query := selectSeriesColumns + `
		WHERE market_id = ? AND interval_ms = ? AND fill_policy = ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, marketID, uint64(intervalMs), string(policy))
	if err != nil {
		return nil, fmt.Errorf("query series: %w", err)
	}
	defer rows.Close()

	points, bounds, err := scanSeriesPoints(rows)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, storage.ErrNotFound
	}

	return &domain.ReconstructedSeries{
		MarketID:   marketID,
		IntervalMs: intervalMs,
		FillPolicy: policy,
		StartMs:    bounds.startMs,
		EndMs:      bounds.endMs,
		Version:    bounds.version,
		Points:     points,
	}, nil
}

// GetByTimeRange retrieves series points with bucket start within [start, end] (inclusive).
func (s *SeriesStore) GetByTimeRange(ctx context.Context, marketID string, intervalMs int64, policy domain.FillPolicy, start, end int64) ([]*domain.SamplePoint, error) {
	query := selectSeriesColumns + `
		WHERE market_id = ? AND interval_ms = ? AND fill_policy = ?
			AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, marketID, uint64(intervalMs), string(policy), start, end)
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	points, _, err := scanSeriesPoints(rows)
	return points, err
}

// exists checks if any point of the series is stored.
func (s *SeriesStore) exists(ctx context.Context, marketID string, intervalMs int64, policy domain.FillPolicy) (bool, error) {
	query := `
		SELECT count(*) FROM series_points
		WHERE market_id = ? AND interval_ms = ? AND fill_policy = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, marketID, uint64(intervalMs), string(policy)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type seriesBounds struct {
	startMs int64
	endMs   int64
	version string
}

// scanSeriesPoints scans multiple rows.
func scanSeriesPoints(rows chRows) ([]*domain.SamplePoint, seriesBounds, error) {
	var points []*domain.SamplePoint
	var bounds seriesBounds

	for rows.Next() {
		var p domain.SamplePoint
		var intervalMs uint64
		var tradeCount uint32
		var source string

		err := rows.Scan(
			&p.MarketID, &intervalMs, &bounds.startMs, &bounds.endMs, &bounds.version, &p.TimestampMs,
			&p.Price, &p.Volume, &p.BuyVolume, &p.SellVolume, &p.CumulativeVolume,
			&tradeCount, &source,
		)
		if err != nil {
			return nil, bounds, fmt.Errorf("scan series point row: %w", err)
		}

		p.IntervalMs = int64(intervalMs)
		p.TradeCount = int(tradeCount)
		p.Source = domain.SampleSource(source)
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, bounds, fmt.Errorf("iterate series point rows: %w", err)
	}

	return points, bounds, nil
}
