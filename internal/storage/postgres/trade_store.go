package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"polymarket-lab/internal/domain"
	"polymarket-lab/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

// InsertBulk appends raw trades atomically.
func (s *TradeStore) InsertBulk(ctx context.Context, trades []*domain.RawTrade) error {
	if len(trades) == 0 {
		return nil
	}
	for _, t := range trades {
		if t == nil || t.MarketID == "" {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO raw_trades (
			market_id, timestamp_ms, price, size, side, outcome, trader_address, tx_hash
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	batch := &pgx.Batch{}
	for _, t := range trades {
		batch.Queue(query,
			t.MarketID,
			t.TimestampMs,
			t.Price,
			t.Size,
			t.Side,
			t.Outcome,
			t.TraderAddress,
			t.TxHash,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for range trades {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("insert raw trade in bulk: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByMarketID retrieves all raw trades for a market in arrival order.
func (s *TradeStore) GetByMarketID(ctx context.Context, marketID string) ([]*domain.RawTrade, error) {
	query := `
		SELECT market_id, timestamp_ms, price, size, side, outcome, trader_address, tx_hash
		FROM raw_trades
		WHERE market_id = $1
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query, marketID)
	if err != nil {
		return nil, fmt.Errorf("get raw trades by market id: %w", err)
	}
	defer rows.Close()

	return scanRawTrades(rows)
}

// GetByTimeRange retrieves raw trades for a market within [start, end] (inclusive).
func (s *TradeStore) GetByTimeRange(ctx context.Context, marketID string, start, end int64) ([]*domain.RawTrade, error) {
	query := `
		SELECT market_id, timestamp_ms, price, size, side, outcome, trader_address, tx_hash
		FROM raw_trades
		WHERE market_id = $1 AND timestamp_ms >= $2 AND timestamp_ms <= $3
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query, marketID, start, end)
	if err != nil {
		return nil, fmt.Errorf("get raw trades by time range: %w", err)
	}
	defer rows.Close()

	return scanRawTrades(rows)
}

// scanRawTrades scans multiple rows into a slice of RawTrade.
func scanRawTrades(rows pgx.Rows) ([]*domain.RawTrade, error) {
	var trades []*domain.RawTrade

	for rows.Next() {
		var t domain.RawTrade

		err := rows.Scan(
			&t.MarketID,
			&t.TimestampMs,
			&t.Price,
			&t.Size,
			&t.Side,
			&t.Outcome,
			&t.TraderAddress,
			&t.TxHash,
		)
		if err != nil {
			return nil, fmt.Errorf("scan raw trade row: %w", err)
		}

		trades = append(trades, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate raw trade rows: %w", err)
	}

	return trades, nil
}
