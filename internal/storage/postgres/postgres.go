package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"news-impact-lab/internal/observability"
	"news-impact-lab/internal/storage"
)

// Pool wraps pgxpool.Pool for dependency injection.
type Pool struct {
	*pgxpool.Pool
}

// NewPool creates a new Postgres connection pool.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// Close closes the connection pool.
func (p *Pool) Close() {
	p.Pool.Close()
}

// NewStores creates the full set of Postgres-backed stores sharing pool.
func NewStores(pool *Pool) storage.Stores {
	return storage.Stores{
		Sectors:      NewSectorStore(pool),
		Companies:    NewCompanyStore(pool),
		Prices:       NewPriceBarStore(pool),
		News:         NewNewsStore(pool),
		Correlations: NewCorrelationStore(pool),
	}
}

// PostgreSQL error codes
const (
	pgErrUniqueViolation = "23505" // unique_violation
	pgErrCheckViolation  = "23514" // check_violation
)

// isDuplicateKeyError checks if error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgErrUniqueViolation
	}
	return false
}

// isCheckViolation checks if error is a CHECK constraint violation.
func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgErrCheckViolation
	}
	return false
}

// isNotFoundError checks if error indicates no rows found.
func isNotFoundError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// translateError maps driver errors onto storage sentinels.
func translateError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case isNotFoundError(err):
		return storage.ErrNotFound
	case isDuplicateKeyError(err):
		return storage.ErrDuplicateKey
	case isCheckViolation(err):
		return fmt.Errorf("%s: %w: %v", op, storage.ErrInvalidInput, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// observe records query latency and errors for op.
func observe(op string, start time.Time, err error) {
	observability.RecordDBQuery("postgres", op, time.Since(start).Seconds(), err)
}

// countRows returns SELECT count(*) for a table name from a fixed set.
func countRows(ctx context.Context, pool *Pool, table string) (int64, error) {
	var n int64
	// table is always a package constant, never user input.
	err := pool.QueryRow(ctx, "SELECT count(*) FROM "+table).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
