package weather

import (
	"errors"
	"time"
)

// Weather errors.
var (
	ErrProviderUnavailable = errors.New("uv provider unavailable")
	ErrNoDataForLocation   = errors.New("no uv data for location")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
)

// Observation represents a UV reading at a specific point and time.
type Observation struct {
	// Location coordinates
	Lat float64
	Lon float64

	// UVIndex is the provider reading rounded to the integer scale.
	UVIndex int

	// UVRaw preserves the provider's fractional reading.
	UVRaw float64

	// Cloud cover percentage (0-100), useful context for the reading
	CloudCover float64

	// Timestamps
	ObservedAt time.Time
	FetchedAt  time.Time

	// Provider names the data source that produced the reading.
	Provider string
}

// RiskBand categorizes a UV index per the WHO exposure scale.
type RiskBand string

const (
	RiskLow      RiskBand = "LOW"       // 0-2
	RiskModerate RiskBand = "MODERATE"  // 3-5
	RiskHigh     RiskBand = "HIGH"      // 6-7
	RiskVeryHigh RiskBand = "VERY_HIGH" // 8-10
	RiskExtreme  RiskBand = "EXTREME"   // 11+
)

// GetRiskBand returns the WHO risk band for the observation.
func (o *Observation) GetRiskBand() RiskBand {
	return riskBandFor(o.UVIndex)
}

func riskBandFor(index int) RiskBand {
	switch {
	case index <= 2:
		return RiskLow
	case index <= 5:
		return RiskModerate
	case index <= 7:
		return RiskHigh
	case index <= 10:
		return RiskVeryHigh
	default:
		return RiskExtreme
	}
}

// Forecast represents hourly UV forecast data.
type Forecast struct {
	// Location
	Lat float64
	Lon float64

	// Hourly forecasts, ascending in time
	Hourly []HourlyForecast

	// When the forecast was fetched
	FetchedAt time.Time
}

// HourlyForecast represents the UV forecast for a specific hour.
type HourlyForecast struct {
	Time       time.Time
	UVIndex    int
	UVRaw      float64
	CloudCover float64
}

// GetRiskBand returns the WHO risk band for the hourly forecast.
func (h *HourlyForecast) GetRiskBand() RiskBand {
	return riskBandFor(h.UVIndex)
}

// PeakHours returns the forecast hours whose index meets or exceeds the
// given threshold.
func (f *Forecast) PeakHours(threshold int) []HourlyForecast {
	var peaks []HourlyForecast
	for _, h := range f.Hourly {
		if h.UVIndex >= threshold {
			peaks = append(peaks, h)
		}
	}
	return peaks
}
