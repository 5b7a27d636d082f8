package weather_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/suntrack/suntrack/internal/weather"
)

func TestObservation_GetRiskBand(t *testing.T) {
	tests := []struct {
		name     string
		index    int
		expected weather.RiskBand
	}{
		{"low - zero", 0, weather.RiskLow},
		{"low - boundary", 2, weather.RiskLow},
		{"moderate - boundary", 3, weather.RiskModerate},
		{"moderate - high", 5, weather.RiskModerate},
		{"high - boundary", 6, weather.RiskHigh},
		{"high - top", 7, weather.RiskHigh},
		{"very high - boundary", 8, weather.RiskVeryHigh},
		{"very high - top", 10, weather.RiskVeryHigh},
		{"extreme - boundary", 11, weather.RiskExtreme},
		{"extreme - above scale", 14, weather.RiskExtreme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := &weather.Observation{UVIndex: tt.index}
			assert.Equal(t, tt.expected, obs.GetRiskBand())
		})
	}
}

func TestHourlyForecast_GetRiskBand(t *testing.T) {
	tests := []struct {
		name     string
		index    int
		expected weather.RiskBand
	}{
		{"low", 1, weather.RiskLow},
		{"moderate", 4, weather.RiskModerate},
		{"high", 7, weather.RiskHigh},
		{"very high", 9, weather.RiskVeryHigh},
		{"extreme", 12, weather.RiskExtreme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &weather.HourlyForecast{UVIndex: tt.index}
			assert.Equal(t, tt.expected, h.GetRiskBand())
		})
	}
}

func TestForecast_PeakHours(t *testing.T) {
	base := time.Date(2025, 6, 21, 9, 0, 0, 0, time.UTC)
	forecast := &weather.Forecast{
		Hourly: []weather.HourlyForecast{
			{Time: base, UVIndex: 3},
			{Time: base.Add(1 * time.Hour), UVIndex: 6},
			{Time: base.Add(2 * time.Hour), UVIndex: 8},
			{Time: base.Add(3 * time.Hour), UVIndex: 9},
			{Time: base.Add(4 * time.Hour), UVIndex: 5},
		},
	}

	peaks := forecast.PeakHours(8)
	assert.Len(t, peaks, 2)
	assert.Equal(t, 8, peaks[0].UVIndex)
	assert.Equal(t, 9, peaks[1].UVIndex)

	// Threshold includes boundary values
	peaks = forecast.PeakHours(6)
	assert.Len(t, peaks, 3)

	// No hours at or above threshold
	peaks = forecast.PeakHours(11)
	assert.Empty(t, peaks)
}

func TestRiskBandConstants(t *testing.T) {
	// Verify all bands are distinct
	bands := []weather.RiskBand{
		weather.RiskLow,
		weather.RiskModerate,
		weather.RiskHigh,
		weather.RiskVeryHigh,
		weather.RiskExtreme,
	}

	seen := make(map[weather.RiskBand]bool)
	for _, b := range bands {
		assert.False(t, seen[b], "duplicate band: %s", b)
		seen[b] = true
	}
}
