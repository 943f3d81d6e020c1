package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"polymarket-lab/internal/domain"
	"polymarket-lab/internal/storage"
)

// MarketStore implements storage.MarketStore using PostgreSQL.
type MarketStore struct {
	pool *Pool
}

// NewMarketStore creates a new MarketStore.
func NewMarketStore(pool *Pool) *MarketStore {
	return &MarketStore{pool: pool}
}

// Compile-time interface check.
var _ storage.MarketStore = (*MarketStore)(nil)

const selectMarketColumns = `
	SELECT market_id, slug, question, condition_id, primary_outcome, secondary_outcome,
		tick_size, start_time_ms, resolution_time_ms, resolved, winning_outcome
	FROM markets
`

// Insert adds market metadata. Returns ErrDuplicateKey if market_id or slug exists.
func (s *MarketStore) Insert(ctx context.Context, m *domain.MarketMetadata) error {
	if m == nil || m.MarketID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO markets (
			market_id, slug, question, condition_id, primary_outcome, secondary_outcome,
			tick_size, start_time_ms, resolution_time_ms, resolved, winning_outcome
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := s.pool.Exec(ctx, query,
		m.MarketID,
		nullableString(m.Slug),
		m.Question,
		nullableString(m.ConditionID),
		m.Outcomes[0],
		m.Outcomes[1],
		m.TickSize,
		m.StartTimeMs,
		m.ResolutionTimeMs,
		m.Resolved,
		m.WinningOutcome,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert market: %w", err)
	}
	return nil
}

// GetByID retrieves metadata by market ID. Returns ErrNotFound if not exists.
func (s *MarketStore) GetByID(ctx context.Context, marketID string) (*domain.MarketMetadata, error) {
	row := s.pool.QueryRow(ctx, selectMarketColumns+` WHERE market_id = $1`, marketID)
	m, err := scanMarket(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get market by id: %w", err)
	}
	return m, nil
}

// GetBySlug retrieves metadata by slug. Returns ErrNotFound if not exists.
func (s *MarketStore) GetBySlug(ctx context.Context, slug string) (*domain.MarketMetadata, error) {
	row := s.pool.QueryRow(ctx, selectMarketColumns+` WHERE slug = $1`, slug)
	m, err := scanMarket(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get market by slug: %w", err)
	}
	return m, nil
}

// List returns all markets ordered by start time ASC.
func (s *MarketStore) List(ctx context.Context) ([]*domain.MarketMetadata, error) {
	rows, err := s.pool.Query(ctx, selectMarketColumns+` ORDER BY start_time_ms ASC, market_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list markets: %w", err)
	}
	defer rows.Close()

	var markets []*domain.MarketMetadata
	for rows.Next() {
		m, err := scanMarket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan market row: %w", err)
		}
		markets = append(markets, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate market rows: %w", err)
	}

	return markets, nil
}

// scanMarket scans a single row into MarketMetadata.
func scanMarket(row pgx.Row) (*domain.MarketMetadata, error) {
	var m domain.MarketMetadata
	var slug, conditionID *string

	err := row.Scan(
		&m.MarketID,
		&slug,
		&m.Question,
		&conditionID,
		&m.Outcomes[0],
		&m.Outcomes[1],
		&m.TickSize,
		&m.StartTimeMs,
		&m.ResolutionTimeMs,
		&m.Resolved,
		&m.WinningOutcome,
	)
	if err != nil {
		return nil, err
	}

	if slug != nil {
		m.Slug = *slug
	}
	if conditionID != nil {
		m.ConditionID = *conditionID
	}

	return &m, nil
}

// nullableString maps the empty string to SQL NULL.
func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
