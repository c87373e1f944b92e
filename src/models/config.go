package models

// MConfig is the bootstrap configuration loaded from YAML at process start.
type MConfig struct {
	Name     string         `yaml:"name"`
	Host     string         `yaml:"host"`
	Port     int            `yaml:"port"`
	LogLevel string         `yaml:"log_level"`
	Storage  MStorageConfig `yaml:"storage"`
	Network  MNetworkConfig `yaml:"network"`
	Market   MMarketConfig  `yaml:"market"`
	Scan     MScanConfig    `yaml:"scan"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MNetworkConfig struct {
	RequestTimeout int `yaml:"timeout"`
	MaxRetries     int `yaml:"retries"`
}

// MMarketConfig points at the exchange endpoints. Defaults target Binance
// Futures; the mock exchange overrides both for offline runs.
type MMarketConfig struct {
	RestBase      string `yaml:"rest_base"`
	StreamBase    string `yaml:"stream_base"`
	QuoteCurrency string `yaml:"quote_currency"`
}

// -----------------------------------------------------------------------------
// Scan Configuration (hot-reloadable via viewer commands)
// -----------------------------------------------------------------------------

// MScanConfig is the live set of scan tunables. It is replaced wholesale
// through config.Store; readers always observe a complete snapshot.
type MScanConfig struct {
	ThresholdPercent    float64 `json:"threshold_percent" yaml:"threshold_percent"`
	TimeFrame           string  `json:"time_frame" yaml:"time_frame"`
	MaxSymbols          int     `json:"max_symbols" yaml:"max_symbols"`
	RefreshRateSeconds  int     `json:"refresh_rate_seconds" yaml:"refresh_rate_seconds"`
	MinTradesCount      int     `json:"min_trades_count" yaml:"min_trades_count"`
	SoundAlertThreshold float64 `json:"sound_alert_threshold" yaml:"sound_alert_threshold"`
}

// -----------------------------------------------------------------------------

// DefaultScanConfig returns the scan parameters used before any viewer
// pushes an update.
func DefaultScanConfig() MScanConfig {
	return MScanConfig{
		ThresholdPercent:    0.15,
		TimeFrame:           "1m",
		MaxSymbols:          500,
		RefreshRateSeconds:  13,
		MinTradesCount:      1000,
		SoundAlertThreshold: 2.0,
	}
}
