package config

import (
	"fmt"
	"os"

	"volatility-scanner/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides loading/validation
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config instance from a YAML file
func NewConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	modelConfig := defaults()
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// defaults returns the bootstrap config used for fields the YAML omits
func defaults() models.MConfig {
	return models.MConfig{
		Name:     "volatility-scanner",
		Host:     "0.0.0.0",
		Port:     8080,
		LogLevel: "INFO",
		Storage: models.MStorageConfig{
			DBType: "sqlite",
			DBPath: "scanner.db",
		},
		Network: models.MNetworkConfig{
			RequestTimeout: 15,
			MaxRetries:     3,
		},
		Market: models.MMarketConfig{
			RestBase:      "https://fapi.binance.com",
			StreamBase:    "wss://fstream.binance.com",
			QuoteCurrency: "USDT",
		},
		Scan: models.DefaultScanConfig(),
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d", c.Port)
	}

	if c.Storage.DBType == "" {
		return fmt.Errorf("database type cannot be empty")
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		return fmt.Errorf("database path cannot be empty for sqlite")
	}
	if c.Storage.DBType == "postgres" && c.Storage.DBConnectionString == "" {
		return fmt.Errorf("connection string cannot be empty for postgres")
	}

	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}

	if c.Market.RestBase == "" {
		return fmt.Errorf("market rest_base cannot be empty")
	}
	if c.Market.StreamBase == "" {
		return fmt.Errorf("market stream_base cannot be empty")
	}
	if c.Market.QuoteCurrency == "" {
		return fmt.Errorf("market quote_currency cannot be empty")
	}

	if err := ValidateScanConfig(c.Scan); err != nil {
		return fmt.Errorf("scan defaults invalid: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
