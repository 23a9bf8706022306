package reporting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"news-impact-lab/internal/domain"
	"news-impact-lab/internal/storage"
)

// Exporter writes snapshot reports and correlation history to a directory.
type Exporter struct {
	correlations storage.CorrelationStore
	outputDir    string
}

// NewExporter creates an exporter writing under outputDir.
func NewExporter(correlations storage.CorrelationStore, outputDir string) *Exporter {
	return &Exporter{correlations: correlations, outputDir: outputDir}
}

// Files lists the paths written for one sector.
type Files struct {
	JSON     string
	Markdown string
	CSV      string
	Parquet  string
}

// CollectCorrelations loads correlation rows of the snapshot's symbols with date in [start, end].
func (e *Exporter) CollectCorrelations(ctx context.Context, s *domain.SectorSnapshot, start, end time.Time) ([]*domain.DailyCorrelation, error) {
	var rows []*domain.DailyCorrelation
	for _, symbol := range s.Symbols {
		r, err := e.correlations.GetRange(ctx, symbol, start, end)
		if err != nil {
			return nil, fmt.Errorf("load correlations for %s: %w", symbol, err)
		}
		rows = append(rows, r...)
	}
	return rows, nil
}

// Export writes <sector>.json, <sector>.md, <sector>.csv and
// <sector>_correlations.parquet. The Parquet file covers [start, end].
func (e *Exporter) Export(ctx context.Context, s *domain.SectorSnapshot, start, end time.Time) (*Files, error) {
	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	files := &Files{
		JSON:     filepath.Join(e.outputDir, s.Sector+".json"),
		Markdown: filepath.Join(e.outputDir, s.Sector+".md"),
		CSV:      filepath.Join(e.outputDir, s.Sector+".csv"),
		Parquet:  filepath.Join(e.outputDir, s.Sector+"_correlations.parquet"),
	}

	data, err := MarshalSnapshot(s)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(files.JSON, data, 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", files.JSON, err)
	}

	if err := os.WriteFile(files.Markdown, []byte(RenderMarkdown([]*domain.SectorSnapshot{s})), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", files.Markdown, err)
	}

	if err := os.WriteFile(files.CSV, []byte(RenderCSV(s)), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", files.CSV, err)
	}

	if e.correlations != nil {
		rows, err := e.CollectCorrelations(ctx, s, start, end)
		if err != nil {
			return nil, err
		}
		if err := WriteCorrelationParquet(files.Parquet, rows); err != nil {
			return nil, err
		}
	} else {
		files.Parquet = ""
	}

	return files, nil
}
