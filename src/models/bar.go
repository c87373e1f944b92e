package models

// MIntervalBar is one trading-interval summary for one instrument as
// delivered by the exchange stream. Immutable once received; only closed
// bars reach the detector.
type MIntervalBar struct {
	Symbol     string  `json:"symbol"`
	StartTime  int64   `json:"start_time"` // interval open, unix ms
	Open       float64 `json:"open"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Close      float64 `json:"close"`
	TradeCount int64   `json:"trade_count"`
	IsClosed   bool    `json:"is_closed"`
}
