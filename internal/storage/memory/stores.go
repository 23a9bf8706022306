package memory

import "news-impact-lab/internal/storage"

// NewStores creates a complete set of empty in-memory stores.
func NewStores() storage.Stores {
	return storage.Stores{
		Sectors:      NewSectorStore(),
		Companies:    NewCompanyStore(),
		Prices:       NewPriceBarStore(),
		News:         NewNewsStore(),
		Correlations: NewCorrelationStore(),
	}
}
