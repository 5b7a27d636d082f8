package location

import "context"

// Repository defines the interface for tracked-location persistence.
type Repository interface {
	// Get retrieves the tracked location for a device.
	// Returns ErrLocationNotFound if the device has none.
	Get(ctx context.Context, deviceID string) (*TrackedLocation, error)

	// Upsert creates or replaces the tracked location for a device.
	Upsert(ctx context.Context, loc *TrackedLocation) error

	// List retrieves all tracked locations.
	List(ctx context.Context) ([]*TrackedLocation, error)

	// Delete removes the tracked location for a device.
	// Returns ErrLocationNotFound if the device has none.
	Delete(ctx context.Context, deviceID string) error
}
