// Package uvfeed carries UV readings from the worker to the session
// controllers over Pub/Sub.
package uvfeed

import (
	"time"
)

// HourlyPoint is a single forecast hour in a feed message.
type HourlyPoint struct {
	UVIndex   int       `json:"uv_index"`
	Timestamp time.Time `json:"timestamp"`
}

// Update is a UV reading for a tracked device location.
type Update struct {
	DeviceID     string        `json:"device_id"`
	UVIndex      int           `json:"uv_index"`
	UVRaw        float64       `json:"uv_raw,omitempty"`
	LocationName string        `json:"location_name,omitempty"`
	Forecast     []HourlyPoint `json:"forecast,omitempty"`
	ObservedAt   time.Time     `json:"observed_at"`
}
