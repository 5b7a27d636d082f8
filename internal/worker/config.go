// Package worker provides background job processing for SunTrack.
package worker

import (
	"time"
)

// RefreshConfig holds configuration for the UV refresh job.
type RefreshConfig struct {
	// Concurrency is the number of concurrent refresh operations.
	// Default: 3
	Concurrency int

	// Timeout is the timeout for each location refresh.
	// Default: 30 seconds
	Timeout time.Duration

	// RefreshForecast enables hourly forecast refresh alongside the
	// current reading. Default: true
	RefreshForecast bool

	// ForecastHours limits how many forecast hours are published per
	// location. Default: 12
	ForecastHours int
}

// DefaultRefreshConfig returns the default refresh configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Concurrency:     3,
		Timeout:         30 * time.Second,
		RefreshForecast: true,
		ForecastHours:   12,
	}
}

func (c RefreshConfig) withDefaults() RefreshConfig {
	if c.Concurrency == 0 {
		c.Concurrency = 3
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.ForecastHours == 0 {
		c.ForecastHours = 12
	}
	return c
}
