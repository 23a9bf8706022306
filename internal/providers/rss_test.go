package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"news-impact-lab/internal/adapter"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Market Wire</title>
  <link>https://www.marketwatch.com/</link>
  <item>
    <title>Apple unveils new chip</title>
    <link>https://www.marketwatch.com/apple-chip</link>
    <description><![CDATA[<p>The company said <b>sales</b> grew.</p>]]></description>
    <pubDate>Tue, 05 Mar 2024 14:30:00 GMT</pubDate>
  </item>
  <item>
    <title>AAPL shares rally</title>
    <link>https://www.marketwatch.com/aapl-rally</link>
    <description>Stock up</description>
    <pubDate>Wed, 06 Mar 2024 10:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Apple story from last year</title>
    <link>https://www.marketwatch.com/old</link>
    <pubDate>Mon, 06 Mar 2023 10:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Oil prices climb</title>
    <link>https://www.marketwatch.com/oil</link>
    <pubDate>Wed, 06 Mar 2024 11:00:00 GMT</pubDate>
  </item>
</channel>
</rss>`

func TestRSS_FetchNews(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testFeed))
	}))
	defer server.Close()

	source := NewRSS([]string{server.URL}, server.Client())
	records, err := source.FetchNews(context.Background(), "AAPL", testFrom, testTo)
	if err != nil {
		t.Fatalf("FetchNews failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 matching in-range items, got %d", len(records))
	}

	first := records[0].(adapter.GenericArticle)
	if first.SourceName != "marketwatch.com" {
		t.Errorf("Expected source marketwatch.com, got %q", first.SourceName)
	}
	if first.Description != "The company said sales grew." {
		t.Errorf("Expected cleaned description, got %q", first.Description)
	}
}

func TestRSS_AllFeedsFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	source := NewRSS([]string{server.URL}, server.Client())
	if _, err := source.FetchNews(context.Background(), "AAPL", testFrom, testTo); err == nil {
		t.Error("Expected error when every feed fails")
	}
}

func TestMentionMatcher(t *testing.T) {
	m := newMentionMatcher("AAPL")
	tests := []struct {
		text string
		want bool
	}{
		{"AAPL hits record", true},
		{"Buy $AAPL now", true},
		{"apple shares climb", true},
		{"AAPLX is a fund", false},
		{"Pineapple prices", false},
	}
	for _, tt := range tests {
		if got := m.matches(tt.text); got != tt.want {
			t.Errorf("matches(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
