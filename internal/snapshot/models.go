// Package snapshot serialises the combined exposure and sunscreen state
// into the durable record consumed by out-of-process renderers (widget and
// live-activity collaborators).
package snapshot

import (
	"time"

	"github.com/suntrack/suntrack/internal/exposure"
)

// Key is the well-known identifier renderers read the record under.
// Per-device records are stored as "<Key>:<deviceID>".
const Key = "uv_tracking_state"

// HourlyUV is one point of the hourly UV forecast slice carried for
// chart rendering.
type HourlyUV struct {
	UVIndex   int       `json:"uvIndex"`
	Timestamp time.Time `json:"timestamp"`
}

// Snapshot is the flattened cross-process record. It is always written
// whole, never patched, so a concurrent reader can never observe a
// partially-updated record.
type Snapshot struct {
	UVIndex                   int             `json:"uvIndex"`
	TimeToBurnSeconds         int             `json:"timeToBurnSeconds"`
	ElapsedSeconds            float64         `json:"elapsedSeconds"`
	TotalExposureSeconds      float64         `json:"totalExposureSeconds"`
	IsRunning                 bool            `json:"isRunning"`
	LastSunscreenApplication  *time.Time      `json:"lastSunscreenApplication,omitempty"`
	SunscreenRemainingSeconds float64         `json:"sunscreenRemainingSeconds"`
	ExposureStatus            exposure.Status `json:"exposureStatus"`
	ExposureProgress          float64         `json:"exposureProgress"`
	LocationName              string          `json:"locationName"`
	LastUpdated               time.Time       `json:"lastUpdated"`
	HourlyForecast            []HourlyUV      `json:"hourlyForecast,omitempty"`
}

// Default returns the record a fresh install reads before any state has
// been written.
func Default() Snapshot {
	return Snapshot{
		ExposureStatus: exposure.StatusNoUV,
	}
}
