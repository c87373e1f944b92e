package config

import (
	"sync"
	"testing"

	"volatility-scanner/src/helpers"
	"volatility-scanner/src/models"
)

// -----------------------------------------------------------------------------

func validScanConfig() models.MScanConfig {
	return models.MScanConfig{
		ThresholdPercent:    1.5,
		TimeFrame:           "5m",
		MaxSymbols:          100,
		RefreshRateSeconds:  10,
		MinTradesCount:      500,
		SoundAlertThreshold: 3.0,
	}
}

// -----------------------------------------------------------------------------

func TestStoreReplaceThenGet(t *testing.T) {
	store := NewStore(models.DefaultScanConfig())

	want := validScanConfig()
	applied, err := store.Replace(want)
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if applied != want {
		t.Errorf("Replace returned %+v, want %+v", applied, want)
	}
	if got := store.Get(); got != want {
		t.Errorf("Get returned %+v, want %+v", got, want)
	}
}

// -----------------------------------------------------------------------------

func TestStoreRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.MScanConfig)
	}{
		{"negative threshold", func(c *models.MScanConfig) { c.ThresholdPercent = -0.1 }},
		{"unknown time frame", func(c *models.MScanConfig) { c.TimeFrame = "7m" }},
		{"empty time frame", func(c *models.MScanConfig) { c.TimeFrame = "" }},
		{"zero max symbols", func(c *models.MScanConfig) { c.MaxSymbols = 0 }},
		{"negative max symbols", func(c *models.MScanConfig) { c.MaxSymbols = -5 }},
		{"zero refresh rate", func(c *models.MScanConfig) { c.RefreshRateSeconds = 0 }},
		{"negative min trades", func(c *models.MScanConfig) { c.MinTradesCount = -1 }},
		{"negative sound threshold", func(c *models.MScanConfig) { c.SoundAlertThreshold = -2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			initial := models.DefaultScanConfig()
			store := NewStore(initial)

			bad := validScanConfig()
			tt.mutate(&bad)

			returned, err := store.Replace(bad)
			if err == nil {
				t.Fatalf("Replace accepted invalid config %+v", bad)
			}
			if !helpers.IsInvalidConfiguration(err) {
				t.Errorf("expected InvalidConfiguration, got %v", err)
			}
			if returned != initial {
				t.Errorf("Replace returned %+v on failure, want previous %+v", returned, initial)
			}
			if got := store.Get(); got != initial {
				t.Errorf("Get returned %+v after failed replace, want %+v", got, initial)
			}
		})
	}
}

// -----------------------------------------------------------------------------

func TestStoreConcurrentReadWrite(t *testing.T) {
	store := NewStore(models.DefaultScanConfig())

	a := validScanConfig()
	b := validScanConfig()
	b.ThresholdPercent = 9.0
	b.MaxSymbols = 7

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			next := a
			if i%2 == 0 {
				next = b
			}
			for j := 0; j < 200; j++ {
				store.Replace(next)
			}
		}(i)
	}

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				got := store.Get()
				// Snapshots must be one of the whole values, never a blend
				if got != a && got != b && got != models.DefaultScanConfig() {
					t.Errorf("torn config read: %+v", got)
					return
				}
			}
		}()
	}

	wg.Wait()
}
