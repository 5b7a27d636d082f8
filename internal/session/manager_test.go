package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suntrack/suntrack/internal/session"
	"github.com/suntrack/suntrack/internal/snapshot"
	"github.com/suntrack/suntrack/pkg/clock"
)

func newTestManager(t *testing.T) *session.Manager {
	t.Helper()
	m := session.NewManager(session.ManagerConfig{
		Clock:  clock.NewFake(time.Date(2025, 7, 14, 10, 0, 0, 0, time.UTC)),
		Store:  snapshot.NewInMemoryStore(),
		Logger: zerolog.Nop(),
	})
	t.Cleanup(m.Shutdown)
	return m
}

func TestManager_GetOrCreate_ReturnsSameController(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	c1 := m.GetOrCreate(ctx, "dev_1")
	c2 := m.GetOrCreate(ctx, "dev_1")

	assert.Same(t, c1, c2)
}

func TestManager_Get_NotFound(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Get("dev_unknown")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestManager_Get_AfterCreate(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	created := m.GetOrCreate(ctx, "dev_1")
	got, err := m.Get("dev_1")
	require.NoError(t, err)
	assert.Same(t, created, got)
}

func TestManager_UpdateUV_CreatesSession(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	snap := m.UpdateUV(ctx, "dev_1", session.UVUpdate{
		UVIndex:      7,
		LocationName: "Lisbon",
		ObservedAt:   time.Now(),
	})

	assert.Equal(t, 7, snap.UVIndex)
	assert.Equal(t, "Lisbon", snap.LocationName)
	assert.Contains(t, m.DeviceIDs(), "dev_1")
}

func TestManager_SessionsAreIsolatedPerDevice(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	m.UpdateUV(ctx, "dev_1", session.UVUpdate{UVIndex: 3})
	m.UpdateUV(ctx, "dev_2", session.UVUpdate{UVIndex: 9})

	c1, err := m.Get("dev_1")
	require.NoError(t, err)
	c2, err := m.Get("dev_2")
	require.NoError(t, err)

	assert.Equal(t, 3, c1.Snapshot().UVIndex)
	assert.Equal(t, 9, c2.Snapshot().UVIndex)
}

func TestManager_Remove(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	m.GetOrCreate(ctx, "dev_1")
	m.Remove("dev_1")

	_, err := m.Get("dev_1")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
	assert.Empty(t, m.DeviceIDs())
}

func TestManager_DeviceIDs(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	assert.Empty(t, m.DeviceIDs())

	m.GetOrCreate(ctx, "dev_1")
	m.GetOrCreate(ctx, "dev_2")

	ids := m.DeviceIDs()
	assert.Len(t, ids, 2)
	assert.ElementsMatch(t, []string{"dev_1", "dev_2"}, ids)
}
