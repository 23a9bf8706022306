package clickhouse

import (
	"context"
	"fmt"
	"time"

	"news-impact-lab/internal/domain"
	"news-impact-lab/internal/storage"
)

// CorrelationStore implements storage.CorrelationStore using ClickHouse.
type CorrelationStore struct {
	conn *Conn
}

// NewCorrelationStore creates a new CorrelationStore.
func NewCorrelationStore(conn *Conn) *CorrelationStore {
	return &CorrelationStore{conn: conn}
}

// Compile-time interface check.
var _ storage.CorrelationStore = (*CorrelationStore)(nil)

// UpsertBulk inserts or replaces rows keyed by (symbol, date).
func (s *CorrelationStore) UpsertBulk(ctx context.Context, rows []*domain.DailyCorrelation) error {
	if len(rows) == 0 {
		return nil
	}
	for _, r := range rows {
		if r == nil || r.Symbol == "" || r.Date.IsZero() {
			return storage.ErrInvalidInput
		}
	}

	start := time.Now()
	err := s.send(ctx, rows)
	observe("correlation_upsert_bulk", start, err)
	return err
}

func (s *CorrelationStore) send(ctx context.Context, rows []*domain.DailyCorrelation) error {
	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_news_correlation (
			symbol, date, price_change, news_sentiment_avg, news_impact_avg, news_count,
			positive_news_count, negative_news_count, neutral_news_count,
			correlation_strength, version
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	version := rowVersion()
	for _, r := range rows {
		err = batch.Append(
			r.Symbol, domain.DateOf(r.Date),
			r.PriceChangePct, r.AvgSentiment, r.AvgImpact, uint32(r.NewsCount),
			uint32(r.PositiveCount), uint32(r.NegativeCount), uint32(r.NeutralCount),
			r.CorrelationStrength, version,
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

// GetLatest retrieves up to limit most recent rows for a symbol, ordered by date DESC.
func (s *CorrelationStore) GetLatest(ctx context.Context, symbol string, limit int) ([]*domain.DailyCorrelation, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := `
		SELECT symbol, date, price_change, news_sentiment_avg, news_impact_avg, news_count,
			positive_news_count, negative_news_count, neutral_news_count, correlation_strength
		FROM price_news_correlation FINAL
		WHERE symbol = ?
		ORDER BY date DESC
		LIMIT ?
	`

	rows, err := s.conn.Query(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query latest correlations: %w", err)
	}
	defer rows.Close()

	return scanCorrelations(rows)
}

// GetRange retrieves rows for a symbol within [start, end] (inclusive), ordered by date ASC.
func (s *CorrelationStore) GetRange(ctx context.Context, symbol string, start, end time.Time) ([]*domain.DailyCorrelation, error) {
	query := `
		SELECT symbol, date, price_change, news_sentiment_avg, news_impact_avg, news_count,
			positive_news_count, negative_news_count, neutral_news_count, correlation_strength
		FROM price_news_correlation FINAL
		WHERE symbol = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, symbol, domain.DateOf(start), domain.DateOf(end))
	if err != nil {
		return nil, fmt.Errorf("query correlations by range: %w", err)
	}
	defer rows.Close()

	return scanCorrelations(rows)
}

// Count returns the number of distinct (symbol, date) rows.
func (s *CorrelationStore) Count(ctx context.Context) (int64, error) {
	var count uint64
	if err := s.conn.QueryRow(ctx, `SELECT count() FROM price_news_correlation FINAL`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count correlations: %w", err)
	}
	return int64(count), nil
}

// scanCorrelations scans multiple rows.
func scanCorrelations(rows chRows) ([]*domain.DailyCorrelation, error) {
	var result []*domain.DailyCorrelation

	for rows.Next() {
		var r domain.DailyCorrelation
		var newsCount, positive, negative, neutral uint32

		err := rows.Scan(
			&r.Symbol, &r.Date,
			&r.PriceChangePct, &r.AvgSentiment, &r.AvgImpact, &newsCount,
			&positive, &negative, &neutral,
			&r.CorrelationStrength,
		)
		if err != nil {
			return nil, fmt.Errorf("scan correlation row: %w", err)
		}

		r.Date = domain.DateOf(r.Date)
		r.NewsCount = int(newsCount)
		r.PositiveCount = int(positive)
		r.NegativeCount = int(negative)
		r.NeutralCount = int(neutral)
		result = append(result, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate correlation rows: %w", err)
	}
	return result, nil
}
