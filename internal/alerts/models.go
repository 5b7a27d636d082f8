// Package alerts publishes exposure and sunscreen alert events for the
// notification pipeline.
package alerts

import (
	"time"

	"github.com/suntrack/suntrack/internal/exposure"
	"github.com/suntrack/suntrack/internal/sunscreen"
)

// Alert types.
const (
	TypeExposureExceeded = "exposure_exceeded"
	TypeSunscreenExpired = "sunscreen_expired"
)

// Message is the wire form of an alert event.
type Message struct {
	Type     string    `json:"type"`
	DeviceID string    `json:"device_id"`
	At       time.Time `json:"at"`

	// Exposure fields (exposure_exceeded only). PreviousUVIndex is the
	// index in effect before the change that tripped the limit; equal to
	// UVIndex when the limit was reached by accumulation alone.
	UVIndex           int `json:"uv_index,omitempty"`
	PreviousUVIndex   int `json:"previous_uv_index,omitempty"`
	TimeToBurnSeconds int `json:"time_to_burn_seconds,omitempty"`
	ExposureSeconds   int `json:"exposure_seconds,omitempty"`

	// Sunscreen fields (sunscreen_expired only)
	AppliedAt *time.Time `json:"applied_at,omitempty"`
}

// ExposureExceededMessage builds the wire message for an exposure limit event.
func ExposureExceededMessage(deviceID string, ev exposure.ExceededEvent) Message {
	return Message{
		Type:              TypeExposureExceeded,
		DeviceID:          deviceID,
		At:                ev.At,
		UVIndex:           int(ev.NewUV),
		PreviousUVIndex:   int(ev.PreviousUV),
		TimeToBurnSeconds: int(ev.TimeToBurn.Seconds()),
		ExposureSeconds:   int(ev.Cumulative.Seconds()),
	}
}

// SunscreenExpiredMessage builds the wire message for a reapply reminder.
func SunscreenExpiredMessage(deviceID string, ev sunscreen.ExpiredEvent) Message {
	appliedAt := ev.AppliedAt
	return Message{
		Type:      TypeSunscreenExpired,
		DeviceID:  deviceID,
		At:        ev.ReapplyAt,
		AppliedAt: &appliedAt,
	}
}
