// Package reporting renders sector snapshots and correlation rows for export.
package reporting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"news-impact-lab/internal/domain"
)

// MarshalSnapshot returns the canonical JSON form of a snapshot: map keys
// sorted, UTF-8, HTML characters left unescaped, two-space indentation.
func MarshalSnapshot(s *domain.SectorSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteSnapshotJSON(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteSnapshotJSON writes the canonical JSON form of s to w.
func WriteSnapshotJSON(w io.Writer, s *domain.SectorSnapshot) error {
	if s == nil {
		return fmt.Errorf("nil snapshot")
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode snapshot %s: %w", s.Sector, err)
	}
	return nil
}
