package reporting

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"news-impact-lab/internal/domain"
)

// CorrelationRow is the Parquet layout of a DailyCorrelation.
type CorrelationRow struct {
	Symbol              string  `parquet:"symbol"`
	Date                int32   `parquet:"date,date"` // days since epoch
	PriceChangePct      float64 `parquet:"price_change_pct"`
	AvgSentiment        float64 `parquet:"avg_sentiment"`
	AvgImpact           float64 `parquet:"avg_impact"`
	NewsCount           int32   `parquet:"news_count"`
	PositiveCount       int32   `parquet:"positive_count"`
	NegativeCount       int32   `parquet:"negative_count"`
	NeutralCount        int32   `parquet:"neutral_count"`
	CorrelationStrength float64 `parquet:"correlation_strength"`
}

// ToCorrelationRows converts domain rows to their Parquet layout.
func ToCorrelationRows(rows []*domain.DailyCorrelation) []CorrelationRow {
	out := make([]CorrelationRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, CorrelationRow{
			Symbol:              r.Symbol,
			Date:                int32(domain.DateOf(r.Date).Unix() / 86400),
			PriceChangePct:      r.PriceChangePct,
			AvgSentiment:        r.AvgSentiment,
			AvgImpact:           r.AvgImpact,
			NewsCount:           int32(r.NewsCount),
			PositiveCount:       int32(r.PositiveCount),
			NegativeCount:       int32(r.NegativeCount),
			NeutralCount:        int32(r.NeutralCount),
			CorrelationStrength: r.CorrelationStrength,
		})
	}
	return out
}

// WriteCorrelationParquet writes rows to a Parquet file at path.
func WriteCorrelationParquet(path string, rows []*domain.DailyCorrelation) error {
	if err := parquet.WriteFile(path, ToCorrelationRows(rows)); err != nil {
		return fmt.Errorf("write parquet %s: %w", path, err)
	}
	return nil
}

// WriteCorrelationParquetTo writes rows as Parquet to w.
func WriteCorrelationParquetTo(w io.Writer, rows []*domain.DailyCorrelation) error {
	if err := parquet.Write(w, ToCorrelationRows(rows)); err != nil {
		return fmt.Errorf("write parquet: %w", err)
	}
	return nil
}
