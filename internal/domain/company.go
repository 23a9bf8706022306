package domain

// Sector is a fixed industry grouping.
// Corresponds to sectors table in PostgreSQL.
type Sector struct {
	Name        string // unique key, e.g. "defense"
	Code        string // short unique code, e.g. "DEF"
	Description string
}

// Company is a listed company tracked by the pipeline.
// Corresponds to companies table in PostgreSQL.
type Company struct {
	Symbol   string // ticker, unique key
	Name     string
	Sector   string // FK to sectors.name, empty if unassigned
	Exchange string // "NYSE" | "NASDAQ"
}

// Exchange constants
const (
	ExchangeNYSE   = "NYSE"
	ExchangeNASDAQ = "NASDAQ"
)
