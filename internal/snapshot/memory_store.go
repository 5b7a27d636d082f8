package snapshot

import (
	"context"
	"sync"
)

// InMemoryStore is an in-memory implementation of Store. Records live
// under the same "<Key>:<deviceID>" names PostgresStore uses.
// This is intended for testing. Production should use PostgresStore.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]Snapshot
}

// NewInMemoryStore creates a new in-memory snapshot store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[string]Snapshot),
	}
}

// Save replaces the record for the device.
func (s *InMemoryStore) Save(_ context.Context, deviceID string, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[recordKey(deviceID)] = snap
	return nil
}

// Load returns the last-written record, or Default() if none exists.
func (s *InMemoryStore) Load(_ context.Context, deviceID string) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.records[recordKey(deviceID)]
	if !ok {
		return Default(), nil
	}
	return snap, nil
}
