package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"news-impact-lab/internal/domain"
	"news-impact-lab/internal/storage"
)

// PriceBarStore implements storage.PriceBarStore using PostgreSQL.
type PriceBarStore struct {
	pool *Pool
}

// NewPriceBarStore creates a new PriceBarStore.
func NewPriceBarStore(pool *Pool) *PriceBarStore {
	return &PriceBarStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PriceBarStore = (*PriceBarStore)(nil)

// UpsertBulk inserts or fully replaces bars keyed by (symbol, date) in one transaction.
func (s *PriceBarStore) UpsertBulk(ctx context.Context, bars []*domain.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}
	for _, b := range bars {
		if b == nil || b.Symbol == "" || b.Date.IsZero() {
			return storage.ErrInvalidInput
		}
	}

	start := time.Now()
	err := s.upsertBulk(ctx, bars)
	observe("price_upsert_bulk", start, err)
	return err
}

func (s *PriceBarStore) upsertBulk(ctx context.Context, bars []*domain.PriceBar) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO stock_prices (symbol, date, open, high, low, close, volume, adj_close)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (symbol, date) DO UPDATE SET
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			volume = EXCLUDED.volume,
			adj_close = EXCLUDED.adj_close,
			updated_at = now()
	`

	for _, b := range bars {
		_, err := tx.Exec(ctx, query,
			b.Symbol,
			domain.DateOf(b.Date),
			b.Open,
			b.High,
			b.Low,
			b.Close,
			b.Volume,
			b.AdjClose,
		)
		if err != nil {
			return translateError("upsert price bar", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetRange retrieves bars for a symbol within [start, end] (inclusive), ordered by date ASC.
func (s *PriceBarStore) GetRange(ctx context.Context, symbol string, start, end time.Time) ([]*domain.PriceBar, error) {
	query := `
		SELECT symbol, date, open, high, low, close, volume, adj_close
		FROM stock_prices
		WHERE symbol = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`

	rows, err := s.pool.Query(ctx, query, symbol, domain.DateOf(start), domain.DateOf(end))
	if err != nil {
		return nil, translateError("get price bars by range", err)
	}
	defer rows.Close()

	return scanPriceBars(rows)
}

// GetLatest retrieves up to limit most recent bars for a symbol, ordered by date DESC.
func (s *PriceBarStore) GetLatest(ctx context.Context, symbol string, limit int) ([]*domain.PriceBar, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := `
		SELECT symbol, date, open, high, low, close, volume, adj_close
		FROM stock_prices
		WHERE symbol = $1
		ORDER BY date DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, symbol, limit)
	if err != nil {
		return nil, translateError("get latest price bars", err)
	}
	defer rows.Close()

	return scanPriceBars(rows)
}

// Count returns the number of stored bars.
func (s *PriceBarStore) Count(ctx context.Context) (int64, error) {
	return countRows(ctx, s.pool, "stock_prices")
}

// scanPriceBars scans multiple rows into a slice of PriceBar.
func scanPriceBars(rows pgx.Rows) ([]*domain.PriceBar, error) {
	var bars []*domain.PriceBar

	for rows.Next() {
		var b domain.PriceBar
		err := rows.Scan(
			&b.Symbol,
			&b.Date,
			&b.Open,
			&b.High,
			&b.Low,
			&b.Close,
			&b.Volume,
			&b.AdjClose,
		)
		if err != nil {
			return nil, fmt.Errorf("scan price bar row: %w", err)
		}
		b.Date = domain.DateOf(b.Date)
		bars = append(bars, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price bar rows: %w", err)
	}
	return bars, nil
}
