package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// ComputeNewsKey computes the deterministic dedup key of a news item.
// Formula: SHA256(symbol|url) when url is set, otherwise
// SHA256(symbol|headline|published_at_unix_ms).
// Returns hex-encoded hash (64 characters).
func ComputeNewsKey(symbol, url, headline string, publishedAt time.Time) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	url = strings.TrimSpace(url)

	var data string
	if url != "" {
		data = fmt.Sprintf("%s|%s", symbol, url)
	} else {
		data = fmt.Sprintf("%s|%s|%d", symbol, strings.TrimSpace(headline), publishedAt.UTC().UnixMilli())
	}

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
