package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"news-impact-lab/internal/domain"
	"news-impact-lab/internal/storage"
)

// SectorStore implements storage.SectorStore using PostgreSQL.
type SectorStore struct {
	pool *Pool
}

// NewSectorStore creates a new SectorStore.
func NewSectorStore(pool *Pool) *SectorStore {
	return &SectorStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SectorStore = (*SectorStore)(nil)

// Upsert inserts or replaces a sector keyed by name.
func (s *SectorStore) Upsert(ctx context.Context, sector *domain.Sector) error {
	if sector == nil || sector.Name == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO sectors (name, code, description)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET
			code = EXCLUDED.code,
			description = EXCLUDED.description
	`
	start := time.Now()
	_, err := s.pool.Exec(ctx, query, sector.Name, sector.Code, sector.Description)
	observe("sector_upsert", start, err)
	return translateError("upsert sector", err)
}

// GetByName retrieves a sector. Returns ErrNotFound if not exists.
func (s *SectorStore) GetByName(ctx context.Context, name string) (*domain.Sector, error) {
	query := `SELECT name, code, description FROM sectors WHERE name = $1`

	var sector domain.Sector
	err := s.pool.QueryRow(ctx, query, name).Scan(&sector.Name, &sector.Code, &sector.Description)
	if err != nil {
		return nil, translateError("get sector", err)
	}
	return &sector, nil
}

// List returns all sectors ordered by name ASC.
func (s *SectorStore) List(ctx context.Context) ([]*domain.Sector, error) {
	rows, err := s.pool.Query(ctx, `SELECT name, code, description FROM sectors ORDER BY name ASC`)
	if err != nil {
		return nil, translateError("list sectors", err)
	}
	defer rows.Close()

	var result []*domain.Sector
	for rows.Next() {
		var sector domain.Sector
		if err := rows.Scan(&sector.Name, &sector.Code, &sector.Description); err != nil {
			return nil, translateError("scan sector row", err)
		}
		result = append(result, &sector)
	}
	return result, translateError("iterate sector rows", rows.Err())
}

// Count returns the number of stored sectors.
func (s *SectorStore) Count(ctx context.Context) (int64, error) {
	return countRows(ctx, s.pool, "sectors")
}

// CompanyStore implements storage.CompanyStore using PostgreSQL.
type CompanyStore struct {
	pool *Pool
}

// NewCompanyStore creates a new CompanyStore.
func NewCompanyStore(pool *Pool) *CompanyStore {
	return &CompanyStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CompanyStore = (*CompanyStore)(nil)

// Upsert inserts or replaces a company keyed by symbol.
// An empty sector is stored as NULL.
func (s *CompanyStore) Upsert(ctx context.Context, c *domain.Company) error {
	if c == nil || c.Symbol == "" {
		return storage.ErrInvalidInput
	}

	var sector *string
	if c.Sector != "" {
		sector = &c.Sector
	}

	query := `
		INSERT INTO companies (symbol, name, sector, exchange)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (symbol) DO UPDATE SET
			name = EXCLUDED.name,
			sector = EXCLUDED.sector,
			exchange = EXCLUDED.exchange,
			updated_at = now()
	`
	start := time.Now()
	_, err := s.pool.Exec(ctx, query, c.Symbol, c.Name, sector, c.Exchange)
	observe("company_upsert", start, err)
	return translateError("upsert company", err)
}

// GetBySymbol retrieves a company. Returns ErrNotFound if not exists.
func (s *CompanyStore) GetBySymbol(ctx context.Context, symbol string) (*domain.Company, error) {
	query := `SELECT symbol, name, COALESCE(sector, ''), exchange FROM companies WHERE symbol = $1`

	rows, err := s.pool.Query(ctx, query, symbol)
	if err != nil {
		return nil, translateError("get company", err)
	}
	defer rows.Close()

	companies, err := scanCompanies(rows)
	if err != nil {
		return nil, err
	}
	if len(companies) == 0 {
		return nil, storage.ErrNotFound
	}
	return companies[0], nil
}

// GetBySector retrieves all companies of a sector ordered by symbol ASC.
func (s *CompanyStore) GetBySector(ctx context.Context, sector string) ([]*domain.Company, error) {
	query := `
		SELECT symbol, name, COALESCE(sector, ''), exchange
		FROM companies
		WHERE sector = $1
		ORDER BY symbol ASC
	`

	rows, err := s.pool.Query(ctx, query, sector)
	if err != nil {
		return nil, translateError("get companies by sector", err)
	}
	defer rows.Close()

	return scanCompanies(rows)
}

// Count returns the number of stored companies.
func (s *CompanyStore) Count(ctx context.Context) (int64, error) {
	return countRows(ctx, s.pool, "companies")
}

// scanCompanies scans multiple rows into a slice of Company.
func scanCompanies(rows pgx.Rows) ([]*domain.Company, error) {
	var companies []*domain.Company
	for rows.Next() {
		var c domain.Company
		if err := rows.Scan(&c.Symbol, &c.Name, &c.Sector, &c.Exchange); err != nil {
			return nil, translateError("scan company row", err)
		}
		companies = append(companies, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("iterate company rows", err)
	}
	return companies, nil
}
