package clickhouse

import (
	"context"
	"fmt"
	"time"

	"news-impact-lab/internal/domain"
	"news-impact-lab/internal/storage"
)

// PriceBarStore implements storage.PriceBarStore using ClickHouse.
// Upserts append a new row version; reads use FINAL to see the latest one.
type PriceBarStore struct {
	conn *Conn
}

// NewPriceBarStore creates a new PriceBarStore.
func NewPriceBarStore(conn *Conn) *PriceBarStore {
	return &PriceBarStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceBarStore = (*PriceBarStore)(nil)

// UpsertBulk inserts or replaces bars keyed by (symbol, date).
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
	err := s.send(ctx, bars)
	observe("price_upsert_bulk", start, err)
	return err
}

func (s *PriceBarStore) send(ctx context.Context, bars []*domain.PriceBar) error {
	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO stock_prices (
			symbol, date, open, high, low, close, volume, adj_close, version
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	version := rowVersion()
	for _, b := range bars {
		err = batch.Append(
			b.Symbol, domain.DateOf(b.Date),
			b.Open, b.High, b.Low, b.Close,
			b.Volume, b.AdjClose, version,
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

// GetRange retrieves bars for a symbol within [start, end] (inclusive), ordered by date ASC.
func (s *PriceBarStore) GetRange(ctx context.Context, symbol string, start, end time.Time) ([]*domain.PriceBar, error) {
	query := `
		SELECT symbol, date, open, high, low, close, volume, adj_close
		FROM stock_prices FINAL
		WHERE symbol = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, symbol, domain.DateOf(start), domain.DateOf(end))
	if err != nil {
		return nil, fmt.Errorf("query price bars by range: %w", err)
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
		FROM stock_prices FINAL
		WHERE symbol = ?
		ORDER BY date DESC
		LIMIT ?
	`

	rows, err := s.conn.Query(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query latest price bars: %w", err)
	}
	defer rows.Close()

	return scanPriceBars(rows)
}

// Count returns the number of distinct (symbol, date) bars.
func (s *PriceBarStore) Count(ctx context.Context) (int64, error) {
	var count uint64
	if err := s.conn.QueryRow(ctx, `SELECT count() FROM stock_prices FINAL`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count price bars: %w", err)
	}
	return int64(count), nil
}

// scanPriceBars scans multiple rows.
func scanPriceBars(rows chRows) ([]*domain.PriceBar, error) {
	var bars []*domain.PriceBar

	for rows.Next() {
		var b domain.PriceBar
		err := rows.Scan(
			&b.Symbol, &b.Date,
			&b.Open, &b.High, &b.Low, &b.Close,
			&b.Volume, &b.AdjClose,
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
