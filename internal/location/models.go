// Package location manages the tracked location for each device: where the
// worker fetches UV readings for it.
package location

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrLocationNotFound = errors.New("location not found")
)

// TrackedLocation is the place a device's UV readings are fetched for.
type TrackedLocation struct {
	DeviceID    string
	Lat         float64
	Lon         float64
	DisplayName string
	UpdatedAt   time.Time
}
