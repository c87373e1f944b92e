package models

// Trend markers pushed to viewers.
const (
	TrendUp   = "🟢"
	TrendDown = "🔴"
)

// MSignal is one detected volatility event. At most one exists per symbol
// per session; later qualifying bars update it in place.
type MSignal struct {
	Symbol    string  `json:"symbol"`
	Time      string  `json:"time"` // HH:MM:SS in the display timezone
	Change    float64 `json:"change"`
	ChangeStr string  `json:"change_str"` // "X.XX%"
	Trend     string  `json:"trend"`
}
