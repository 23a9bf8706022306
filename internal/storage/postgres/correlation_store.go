package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"news-impact-lab/internal/domain"
	"news-impact-lab/internal/storage"
)

// CorrelationStore implements storage.CorrelationStore using PostgreSQL.
type CorrelationStore struct {
	pool *Pool
}

// NewCorrelationStore creates a new CorrelationStore.
func NewCorrelationStore(pool *Pool) *CorrelationStore {
	return &CorrelationStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CorrelationStore = (*CorrelationStore)(nil)

// UpsertBulk inserts or replaces rows keyed by (symbol, date) in one transaction.
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
	err := s.upsertBulk(ctx, rows)
	observe("correlation_upsert_bulk", start, err)
	return err
}

func (s *CorrelationStore) upsertBulk(ctx context.Context, rows []*domain.DailyCorrelation) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO price_news_correlation (
			symbol, date, price_change, news_sentiment_avg, news_impact_avg, news_count,
			positive_news_count, negative_news_count, neutral_news_count, correlation_strength
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (symbol, date) DO UPDATE SET
			price_change = EXCLUDED.price_change,
			news_sentiment_avg = EXCLUDED.news_sentiment_avg,
			news_impact_avg = EXCLUDED.news_impact_avg,
			news_count = EXCLUDED.news_count,
			positive_news_count = EXCLUDED.positive_news_count,
			negative_news_count = EXCLUDED.negative_news_count,
			neutral_news_count = EXCLUDED.neutral_news_count,
			correlation_strength = EXCLUDED.correlation_strength,
			computed_at = now()
	`

	for _, r := range rows {
		_, err := tx.Exec(ctx, query,
			r.Symbol,
			domain.DateOf(r.Date),
			r.PriceChangePct,
			r.AvgSentiment,
			r.AvgImpact,
			r.NewsCount,
			r.PositiveCount,
			r.NegativeCount,
			r.NeutralCount,
			r.CorrelationStrength,
		)
		if err != nil {
			return translateError("upsert correlation", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const selectCorrelationColumns = `
	SELECT symbol, date, price_change, news_sentiment_avg, news_impact_avg, news_count,
		positive_news_count, negative_news_count, neutral_news_count, correlation_strength
	FROM price_news_correlation
`

// GetLatest retrieves up to limit most recent rows for a symbol, ordered by date DESC.
func (s *CorrelationStore) GetLatest(ctx context.Context, symbol string, limit int) ([]*domain.DailyCorrelation, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := selectCorrelationColumns + `
		WHERE symbol = $1
		ORDER BY date DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, symbol, limit)
	if err != nil {
		return nil, translateError("get latest correlations", err)
	}
	defer rows.Close()

	return scanCorrelations(rows)
}

// GetRange retrieves rows for a symbol within [start, end] (inclusive), ordered by date ASC.
func (s *CorrelationStore) GetRange(ctx context.Context, symbol string, start, end time.Time) ([]*domain.DailyCorrelation, error) {
	query := selectCorrelationColumns + `
		WHERE symbol = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`

	rows, err := s.pool.Query(ctx, query, symbol, domain.DateOf(start), domain.DateOf(end))
	if err != nil {
		return nil, translateError("get correlations by range", err)
	}
	defer rows.Close()

	return scanCorrelations(rows)
}

// Count returns the number of stored rows.
func (s *CorrelationStore) Count(ctx context.Context) (int64, error) {
	return countRows(ctx, s.pool, "price_news_correlation")
}

// scanCorrelations scans multiple rows into a slice of DailyCorrelation.
func scanCorrelations(rows pgx.Rows) ([]*domain.DailyCorrelation, error) {
	var result []*domain.DailyCorrelation

	for rows.Next() {
		var r domain.DailyCorrelation
		err := rows.Scan(
			&r.Symbol,
			&r.Date,
			&r.PriceChangePct,
			&r.AvgSentiment,
			&r.AvgImpact,
			&r.NewsCount,
			&r.PositiveCount,
			&r.NegativeCount,
			&r.NeutralCount,
			&r.CorrelationStrength,
		)
		if err != nil {
			return nil, fmt.Errorf("scan correlation row: %w", err)
		}
		r.Date = domain.DateOf(r.Date)
		result = append(result, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate correlation rows: %w", err)
	}
	return result, nil
}
