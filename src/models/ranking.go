package models

import "time"

// MRankingEntry is one row of a volume-ranking snapshot taken during
// instrument selection.
type MRankingEntry struct {
	Symbol      string    `json:"symbol"`
	QuoteVolume float64   `json:"quote_volume"`
	Rank        int       `json:"rank"`
	FetchedAt   time.Time `json:"fetched_at"`
}
