package config

import (
	"fmt"
	"sync"

	"volatility-scanner/src/helpers"
	"volatility-scanner/src/models"
)

// -----------------------------------------------------------------------------
// Scan Config Store
// -----------------------------------------------------------------------------

// timeFrames recognized by the exchange kline stream.
var timeFrames = map[string]struct{}{
	"1m": {}, "3m": {}, "5m": {}, "15m": {}, "30m": {},
	"1h": {}, "2h": {}, "4h": {}, "6h": {}, "8h": {}, "12h": {},
	"1d": {}, "3d": {}, "1w": {}, "1M": {},
}

// Store holds the single live MScanConfig shared by all sessions. The value
// is replaced wholesale; readers never observe a half-updated record.
type Store struct {
	mu   sync.RWMutex
	live models.MScanConfig
}

// -----------------------------------------------------------------------------

// NewStore creates a Store seeded with the given scan parameters.
func NewStore(initial models.MScanConfig) *Store {
	return &Store{live: initial}
}

// -----------------------------------------------------------------------------

// Get returns a consistent snapshot of the live configuration.
func (s *Store) Get() models.MScanConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.live
}

// -----------------------------------------------------------------------------

// Replace validates the candidate and atomically swaps it in. On validation
// failure the previous value stays live and an InvalidConfiguration error
// is returned. Partial updates are not supported.
func (s *Store) Replace(next models.MScanConfig) (models.MScanConfig, error) {
	if err := ValidateScanConfig(next); err != nil {
		return s.Get(), err
	}

	s.mu.Lock()
	s.live = next
	s.mu.Unlock()
	return next, nil
}

// -----------------------------------------------------------------------------

// ValidateScanConfig checks the field constraints of a scan configuration.
func ValidateScanConfig(c models.MScanConfig) error {
	if c.ThresholdPercent < 0 {
		return helpers.NewInvalidConfiguration(fmt.Sprintf("threshold_percent must be non-negative, got %v", c.ThresholdPercent))
	}
	if _, ok := timeFrames[c.TimeFrame]; !ok {
		return helpers.NewInvalidConfiguration(fmt.Sprintf("unrecognized time_frame %q", c.TimeFrame))
	}
	if c.MaxSymbols <= 0 {
		return helpers.NewInvalidConfiguration(fmt.Sprintf("max_symbols must be positive, got %d", c.MaxSymbols))
	}
	if c.RefreshRateSeconds <= 0 {
		return helpers.NewInvalidConfiguration(fmt.Sprintf("refresh_rate_seconds must be positive, got %d", c.RefreshRateSeconds))
	}
	if c.MinTradesCount < 0 {
		return helpers.NewInvalidConfiguration(fmt.Sprintf("min_trades_count must be non-negative, got %d", c.MinTradesCount))
	}
	if c.SoundAlertThreshold < 0 {
		return helpers.NewInvalidConfiguration(fmt.Sprintf("sound_alert_threshold must be non-negative, got %v", c.SoundAlertThreshold))
	}
	return nil
}
