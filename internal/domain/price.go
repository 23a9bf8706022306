package domain

import "time"

// PriceBar is a daily OHLCV bar for a symbol.
// Corresponds to stock_prices table. Unique on (symbol, date).
type PriceBar struct {
	Symbol   string
	Date     time.Time // UTC midnight of the trading day
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   int64
	AdjClose float64
}

// PriceChange is the day-over-day close change for one bar.
type PriceChange struct {
	Symbol    string
	Date      time.Time
	Close     float64
	PrevClose float64
	ChangePct float64 // (close - prev_close) / prev_close * 100
}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
