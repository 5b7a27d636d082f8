package location

import (
	"context"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu        sync.RWMutex
	locations map[string]*TrackedLocation
}

// NewInMemoryRepository creates a new in-memory location repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		locations: make(map[string]*TrackedLocation),
	}
}

// Get retrieves the tracked location for a device.
func (r *InMemoryRepository) Get(_ context.Context, deviceID string) (*TrackedLocation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	loc, ok := r.locations[deviceID]
	if !ok {
		return nil, ErrLocationNotFound
	}
	cpy := *loc
	return &cpy, nil
}

// Upsert creates or replaces the tracked location for a device.
func (r *InMemoryRepository) Upsert(_ context.Context, loc *TrackedLocation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *loc
	r.locations[loc.DeviceID] = &cpy
	return nil
}

// List retrieves all tracked locations.
func (r *InMemoryRepository) List(_ context.Context) ([]*TrackedLocation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*TrackedLocation, 0, len(r.locations))
	for _, loc := range r.locations {
		cpy := *loc
		out = append(out, &cpy)
	}
	return out, nil
}

// Delete removes the tracked location for a device.
func (r *InMemoryRepository) Delete(_ context.Context, deviceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.locations[deviceID]; !ok {
		return ErrLocationNotFound
	}
	delete(r.locations, deviceID)
	return nil
}
