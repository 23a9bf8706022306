package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"news-impact-lab/internal/domain"
	"news-impact-lab/internal/storage"
)

// NewsStore implements storage.NewsStore using PostgreSQL.
// Deduplication is enforced by the UNIQUE(dedup_key) constraint.
type NewsStore struct {
	pool *Pool
}

// NewNewsStore creates a new NewsStore.
func NewNewsStore(pool *Pool) *NewsStore {
	return &NewsStore{pool: pool}
}

// Compile-time interface check.
var _ storage.NewsStore = (*NewsStore)(nil)

const insertNewsQuery = `
	INSERT INTO news_events (
		dedup_key, symbol, headline, summary, source, url,
		sentiment_score, sentiment_label, impact_score, published_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (dedup_key) DO NOTHING
	RETURNING id
`

func newsArgs(n *domain.NewsItem) []any {
	label := n.SentimentLabel
	if label == "" {
		label = domain.SentimentLabelFor(n.SentimentScore)
	}
	return []any{
		n.DedupKey,
		n.Symbol,
		n.Headline,
		n.Summary,
		n.Source,
		n.URL,
		n.SentimentScore,
		label,
		n.ImpactScore,
		n.PublishedAt.UTC(),
	}
}

// InsertIgnore inserts an item unless its dedup key exists.
func (s *NewsStore) InsertIgnore(ctx context.Context, n *domain.NewsItem) (bool, error) {
	if err := validateNews(n); err != nil {
		return false, err
	}

	start := time.Now()
	var id int64
	err := s.pool.QueryRow(ctx, insertNewsQuery, newsArgs(n)...).Scan(&id)
	if isNotFoundError(err) {
		// ON CONFLICT DO NOTHING returns no row for an existing key.
		observe("news_insert", start, nil)
		return false, nil
	}
	observe("news_insert", start, err)
	if err != nil {
		return false, translateError("insert news", err)
	}
	n.ID = id
	return true, nil
}

// InsertIgnoreBulk inserts items in one batch, skipping existing keys.
func (s *NewsStore) InsertIgnoreBulk(ctx context.Context, items []*domain.NewsItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	for _, n := range items {
		if err := validateNews(n); err != nil {
			return 0, err
		}
	}

	start := time.Now()
	inserted, err := s.insertBatch(ctx, items)
	observe("news_insert_bulk", start, err)
	return inserted, err
}

func (s *NewsStore) insertBatch(ctx context.Context, items []*domain.NewsItem) (int, error) {
	batch := &pgx.Batch{}
	for _, n := range items {
		batch.Queue(insertNewsQuery, newsArgs(n)...)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for _, n := range items {
		var id int64
		err := results.QueryRow().Scan(&id)
		if isNotFoundError(err) {
			continue
		}
		if err != nil {
			return inserted, translateError("insert news in batch", err)
		}
		n.ID = id
		inserted++
	}
	return inserted, nil
}

// GetSince retrieves items with published_at >= since, ordered by published_at DESC.
func (s *NewsStore) GetSince(ctx context.Context, symbol string, since time.Time) ([]*domain.NewsItem, error) {
	query := `
		SELECT id, dedup_key, symbol, headline, summary, source, url,
			sentiment_score, sentiment_label, impact_score, published_at
		FROM news_events
		WHERE symbol = $1 AND published_at >= $2
		ORDER BY published_at DESC, id DESC
	`

	rows, err := s.pool.Query(ctx, query, symbol, since.UTC())
	if err != nil {
		return nil, translateError("get news since", err)
	}
	defer rows.Close()

	return scanNews(rows)
}

// GetRange retrieves items with published_at in [start, end), ordered by published_at ASC.
func (s *NewsStore) GetRange(ctx context.Context, symbol string, start, end time.Time) ([]*domain.NewsItem, error) {
	query := `
		SELECT id, dedup_key, symbol, headline, summary, source, url,
			sentiment_score, sentiment_label, impact_score, published_at
		FROM news_events
		WHERE symbol = $1 AND published_at >= $2 AND published_at < $3
		ORDER BY published_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, symbol, start.UTC(), end.UTC())
	if err != nil {
		return nil, translateError("get news by range", err)
	}
	defer rows.Close()

	return scanNews(rows)
}

// Count returns the number of stored items.
func (s *NewsStore) Count(ctx context.Context) (int64, error) {
	return countRows(ctx, s.pool, "news_events")
}

func validateNews(n *domain.NewsItem) error {
	if n == nil || n.Symbol == "" || n.DedupKey == "" || n.Headline == "" {
		return storage.ErrInvalidInput
	}
	return nil
}

// scanNews scans multiple rows into a slice of NewsItem.
func scanNews(rows pgx.Rows) ([]*domain.NewsItem, error) {
	var items []*domain.NewsItem

	for rows.Next() {
		var n domain.NewsItem
		err := rows.Scan(
			&n.ID,
			&n.DedupKey,
			&n.Symbol,
			&n.Headline,
			&n.Summary,
			&n.Source,
			&n.URL,
			&n.SentimentScore,
			&n.SentimentLabel,
			&n.ImpactScore,
			&n.PublishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan news row: %w", err)
		}
		n.PublishedAt = n.PublishedAt.UTC()
		items = append(items, &n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate news rows: %w", err)
	}
	return items, nil
}
