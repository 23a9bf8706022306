// Package catalog holds the fixed sector enumeration and the company rosters
// assigned to each sector.
package catalog

import (
	"errors"
	"fmt"

	"news-impact-lab/internal/domain"
)

// ErrUnknownSector is returned when a sector name is not part of the enumeration.
var ErrUnknownSector = errors.New("unknown sector")

// Sector names.
const (
	Defense     = "defense"
	Technology  = "technology"
	Finance     = "finance"
	Healthcare  = "healthcare"
	Energy      = "energy"
	Consumer    = "consumer"
	Industrials = "industrials"
	Utilities   = "utilities"
	Materials   = "materials"
	RealEstate  = "real_estate"
)

var sectors = []domain.Sector{
	{Name: Defense, Code: "DEF", Description: "Defense and aerospace"},
	{Name: Technology, Code: "TECH", Description: "Technology"},
	{Name: Finance, Code: "FIN", Description: "Financial services"},
	{Name: Healthcare, Code: "HLTH", Description: "Healthcare and pharmaceuticals"},
	{Name: Energy, Code: "ENRG", Description: "Energy and oil"},
	{Name: Consumer, Code: "CONS", Description: "Consumer goods"},
	{Name: Industrials, Code: "IND", Description: "Industrials"},
	{Name: Utilities, Code: "UTIL", Description: "Utilities"},
	{Name: Materials, Code: "MAT", Description: "Basic materials"},
	{Name: RealEstate, Code: "REIT", Description: "Real estate"},
}

// companies lists every tracked company grouped by sector.
// Order within a sector is the canonical roster order used for tie-breaks.
var companies = []domain.Company{
	{Symbol: "LMT", Name: "Lockheed Martin Corp", Sector: Defense, Exchange: domain.ExchangeNYSE},
	{Symbol: "RTX", Name: "Raytheon Technologies", Sector: Defense, Exchange: domain.ExchangeNYSE},
	{Symbol: "BA", Name: "Boeing Co", Sector: Defense, Exchange: domain.ExchangeNYSE},
	{Symbol: "GD", Name: "General Dynamics Corp", Sector: Defense, Exchange: domain.ExchangeNYSE},
	{Symbol: "NOC", Name: "Northrop Grumman Corp", Sector: Defense, Exchange: domain.ExchangeNYSE},
	{Symbol: "LHX", Name: "L3Harris Technologies", Sector: Defense, Exchange: domain.ExchangeNYSE},

	{Symbol: "AAPL", Name: "Apple Inc", Sector: Technology, Exchange: domain.ExchangeNASDAQ},
	{Symbol: "MSFT", Name: "Microsoft Corp", Sector: Technology, Exchange: domain.ExchangeNASDAQ},
	{Symbol: "GOOGL", Name: "Alphabet Inc", Sector: Technology, Exchange: domain.ExchangeNASDAQ},
	{Symbol: "AMZN", Name: "Amazon.com Inc", Sector: Technology, Exchange: domain.ExchangeNASDAQ},
	{Symbol: "META", Name: "Meta Platforms Inc", Sector: Technology, Exchange: domain.ExchangeNASDAQ},
	{Symbol: "NVDA", Name: "NVIDIA Corp", Sector: Technology, Exchange: domain.ExchangeNASDAQ},

	{Symbol: "JPM", Name: "JPMorgan Chase & Co", Sector: Finance, Exchange: domain.ExchangeNYSE},
	{Symbol: "BAC", Name: "Bank of America Corp", Sector: Finance, Exchange: domain.ExchangeNYSE},
	{Symbol: "WFC", Name: "Wells Fargo & Co", Sector: Finance, Exchange: domain.ExchangeNYSE},
	{Symbol: "GS", Name: "Goldman Sachs Group", Sector: Finance, Exchange: domain.ExchangeNYSE},
	{Symbol: "MS", Name: "Morgan Stanley", Sector: Finance, Exchange: domain.ExchangeNYSE},
	{Symbol: "C", Name: "Citigroup Inc", Sector: Finance, Exchange: domain.ExchangeNYSE},

	{Symbol: "JNJ", Name: "Johnson & Johnson", Sector: Healthcare, Exchange: domain.ExchangeNYSE},
	{Symbol: "PFE", Name: "Pfizer Inc", Sector: Healthcare, Exchange: domain.ExchangeNYSE},
	{Symbol: "UNH", Name: "UnitedHealth Group", Sector: Healthcare, Exchange: domain.ExchangeNYSE},
	{Symbol: "MRK", Name: "Merck & Co Inc", Sector: Healthcare, Exchange: domain.ExchangeNYSE},
	{Symbol: "ABT", Name: "Abbott Laboratories", Sector: Healthcare, Exchange: domain.ExchangeNYSE},
	{Symbol: "TMO", Name: "Thermo Fisher Scientific", Sector: Healthcare, Exchange: domain.ExchangeNYSE},

	{Symbol: "XOM", Name: "Exxon Mobil Corp", Sector: Energy, Exchange: domain.ExchangeNYSE},
	{Symbol: "CVX", Name: "Chevron Corp", Sector: Energy, Exchange: domain.ExchangeNYSE},
	{Symbol: "COP", Name: "ConocoPhillips", Sector: Energy, Exchange: domain.ExchangeNYSE},
	{Symbol: "EOG", Name: "EOG Resources Inc", Sector: Energy, Exchange: domain.ExchangeNYSE},
	{Symbol: "SLB", Name: "Schlumberger NV", Sector: Energy, Exchange: domain.ExchangeNYSE},
	{Symbol: "OXY", Name: "Occidental Petroleum", Sector: Energy, Exchange: domain.ExchangeNYSE},

	{Symbol: "PG", Name: "Procter & Gamble Co", Sector: Consumer, Exchange: domain.ExchangeNYSE},
	{Symbol: "KO", Name: "Coca-Cola Co", Sector: Consumer, Exchange: domain.ExchangeNYSE},
	{Symbol: "PEP", Name: "PepsiCo Inc", Sector: Consumer, Exchange: domain.ExchangeNASDAQ},
	{Symbol: "WMT", Name: "Walmart Inc", Sector: Consumer, Exchange: domain.ExchangeNYSE},
	{Symbol: "COST", Name: "Costco Wholesale Corp", Sector: Consumer, Exchange: domain.ExchangeNASDAQ},
	{Symbol: "MCD", Name: "McDonald's Corp", Sector: Consumer, Exchange: domain.ExchangeNYSE},

	{Symbol: "CAT", Name: "Caterpillar Inc", Sector: Industrials, Exchange: domain.ExchangeNYSE},
	{Symbol: "HON", Name: "Honeywell International", Sector: Industrials, Exchange: domain.ExchangeNASDAQ},
	{Symbol: "GE", Name: "General Electric Co", Sector: Industrials, Exchange: domain.ExchangeNYSE},
	{Symbol: "DE", Name: "Deere & Co", Sector: Industrials, Exchange: domain.ExchangeNYSE},
	{Symbol: "UPS", Name: "United Parcel Service", Sector: Industrials, Exchange: domain.ExchangeNYSE},
	{Symbol: "MMM", Name: "3M Co", Sector: Industrials, Exchange: domain.ExchangeNYSE},

	{Symbol: "NEE", Name: "NextEra Energy Inc", Sector: Utilities, Exchange: domain.ExchangeNYSE},
	{Symbol: "DUK", Name: "Duke Energy Corp", Sector: Utilities, Exchange: domain.ExchangeNYSE},
	{Symbol: "SO", Name: "Southern Co", Sector: Utilities, Exchange: domain.ExchangeNYSE},
	{Symbol: "D", Name: "Dominion Energy Inc", Sector: Utilities, Exchange: domain.ExchangeNYSE},
	{Symbol: "AEP", Name: "American Electric Power", Sector: Utilities, Exchange: domain.ExchangeNASDAQ},
	{Symbol: "EXC", Name: "Exelon Corp", Sector: Utilities, Exchange: domain.ExchangeNASDAQ},

	{Symbol: "LIN", Name: "Linde plc", Sector: Materials, Exchange: domain.ExchangeNASDAQ},
	{Symbol: "APD", Name: "Air Products & Chemicals", Sector: Materials, Exchange: domain.ExchangeNYSE},
	{Symbol: "SHW", Name: "Sherwin-Williams Co", Sector: Materials, Exchange: domain.ExchangeNYSE},
	{Symbol: "FCX", Name: "Freeport-McMoRan Inc", Sector: Materials, Exchange: domain.ExchangeNYSE},
	{Symbol: "NEM", Name: "Newmont Corp", Sector: Materials, Exchange: domain.ExchangeNYSE},
	{Symbol: "DOW", Name: "Dow Inc", Sector: Materials, Exchange: domain.ExchangeNYSE},

	{Symbol: "PLD", Name: "Prologis Inc", Sector: RealEstate, Exchange: domain.ExchangeNYSE},
	{Symbol: "AMT", Name: "American Tower Corp", Sector: RealEstate, Exchange: domain.ExchangeNYSE},
	{Symbol: "EQIX", Name: "Equinix Inc", Sector: RealEstate, Exchange: domain.ExchangeNASDAQ},
	{Symbol: "SPG", Name: "Simon Property Group", Sector: RealEstate, Exchange: domain.ExchangeNYSE},
	{Symbol: "O", Name: "Realty Income Corp", Sector: RealEstate, Exchange: domain.ExchangeNYSE},
	{Symbol: "PSA", Name: "Public Storage", Sector: RealEstate, Exchange: domain.ExchangeNYSE},
}

// Sectors returns a copy of the sector enumeration in canonical order.
func Sectors() []domain.Sector {
	out := make([]domain.Sector, len(sectors))
	copy(out, sectors)
	return out
}

// SectorNames returns the sector names in canonical order.
func SectorNames() []string {
	names := make([]string, len(sectors))
	for i, s := range sectors {
		names[i] = s.Name
	}
	return names
}

// Lookup returns the sector with the given name.
func Lookup(name string) (domain.Sector, error) {
	for _, s := range sectors {
		if s.Name == name {
			return s, nil
		}
	}
	return domain.Sector{}, fmt.Errorf("%w: %q", ErrUnknownSector, name)
}

// Roster returns the ordered symbol roster of a sector.
func Roster(sector string) ([]string, error) {
	if _, err := Lookup(sector); err != nil {
		return nil, err
	}
	var symbols []string
	for _, c := range companies {
		if c.Sector == sector {
			symbols = append(symbols, c.Symbol)
		}
	}
	return symbols, nil
}

// Companies returns a copy of every tracked company.
func Companies() []domain.Company {
	out := make([]domain.Company, len(companies))
	copy(out, companies)
	return out
}

// Company returns the catalog entry for a symbol.
func Company(symbol string) (domain.Company, bool) {
	for _, c := range companies {
		if c.Symbol == symbol {
			return c, true
		}
	}
	return domain.Company{}, false
}
