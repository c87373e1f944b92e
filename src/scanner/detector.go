package scanner

import (
	"fmt"
	"time"

	"volatility-scanner/src/models"
)

// -----------------------------------------------------------------------------
// Signal Detector
// -----------------------------------------------------------------------------

// displayZone is the fixed timezone used for signal display times.
var displayZone = time.FixedZone("UTC+8", 8*60*60)

// Evaluate computes the volatility signal for one completed interval bar
// under the given configuration. It is a pure function; the second return
// value reports whether the bar qualifies. Incomplete or malformed bars
// never qualify and never panic.
func Evaluate(bar models.MIntervalBar, cfg models.MScanConfig) (models.MSignal, bool) {
	if !bar.IsClosed || bar.Symbol == "" || bar.Low <= 0 {
		return models.MSignal{}, false
	}

	change := (bar.High - bar.Low) / bar.Low * 100
	if change < cfg.ThresholdPercent || bar.TradeCount < int64(cfg.MinTradesCount) {
		return models.MSignal{}, false
	}

	trend := models.TrendDown
	if bar.Close > bar.Open {
		trend = models.TrendUp
	}

	return models.MSignal{
		Symbol:    bar.Symbol,
		Time:      time.UnixMilli(bar.StartTime).In(displayZone).Format("15:04:05"),
		Change:    change,
		ChangeStr: fmt.Sprintf("%.2f%%", change),
		Trend:     trend,
	}, true
}
