package sunscreen_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suntrack/suntrack/internal/sunscreen"
	"github.com/suntrack/suntrack/pkg/clock"
)

func newTracker() (*sunscreen.Tracker, *clock.Fake) {
	fake := clock.NewFake(time.Date(2025, 7, 14, 9, 0, 0, 0, time.UTC))
	return sunscreen.NewTracker(fake), fake
}

func TestTracker_ApplyStartsWindow(t *testing.T) {
	tracker, fake := newTracker()

	tracker.Apply()

	assert.True(t, tracker.IsActive())
	assert.Equal(t, sunscreen.ProtectionWindow, tracker.Remaining())

	status := tracker.Current()
	require.NotNil(t, status.AppliedAt)
	require.NotNil(t, status.ReapplyAt)
	assert.Equal(t, fake.Now().Add(sunscreen.ProtectionWindow), *status.ReapplyAt)
}

func TestTracker_ExpiryScenario(t *testing.T) {
	tracker, fake := newTracker()
	tracker.Apply()

	// One second before the boundary protection still holds.
	fake.Advance(sunscreen.ProtectionWindow - time.Second)
	assert.Nil(t, tracker.Tick())
	assert.True(t, tracker.IsActive())
	assert.Equal(t, time.Second, tracker.Remaining())

	// At exactly 7200s the expired event fires and protection lapses.
	fake.Advance(time.Second)
	ev := tracker.Tick()
	require.NotNil(t, ev)
	assert.False(t, tracker.IsActive())
	assert.Equal(t, time.Duration(0), tracker.Remaining())
	assert.Equal(t, ev.AppliedAt.Add(sunscreen.ProtectionWindow), ev.ReapplyAt)
}

func TestTracker_ExpiryFiresExactlyOnce(t *testing.T) {
	tracker, fake := newTracker()
	tracker.Apply()

	fake.Advance(sunscreen.ProtectionWindow)
	require.NotNil(t, tracker.Tick())

	for i := 0; i < 10; i++ {
		fake.Advance(time.Second)
		assert.Nil(t, tracker.Tick())
	}

	// Cancel after expiry is a no-op that must not re-arm the event.
	tracker.Cancel()
	fake.Advance(time.Second)
	assert.Nil(t, tracker.Tick())
}

func TestTracker_ReapplyRearmsEvent(t *testing.T) {
	tracker, fake := newTracker()
	tracker.Apply()
	fake.Advance(sunscreen.ProtectionWindow)
	require.NotNil(t, tracker.Tick())

	tracker.Apply()
	assert.True(t, tracker.IsActive())

	fake.Advance(sunscreen.ProtectionWindow)
	assert.NotNil(t, tracker.Tick())
}

func TestTracker_CancelIsIdempotent(t *testing.T) {
	tracker, _ := newTracker()

	tracker.Cancel()
	assert.False(t, tracker.IsActive())

	tracker.Apply()
	tracker.Cancel()
	tracker.Cancel()

	assert.False(t, tracker.IsActive())
	assert.Nil(t, tracker.Current().AppliedAt)
	assert.Equal(t, time.Duration(0), tracker.Remaining())
}

func TestTracker_RolloverClearsPreviousDay(t *testing.T) {
	tracker, fake := newTracker()
	tracker.Apply()

	// Same day: rollover keeps the application.
	tracker.Rollover()
	assert.True(t, tracker.IsActive())

	// Past midnight: the stale application is cancelled without an event.
	fake.Advance(24 * time.Hour)
	tracker.Rollover()
	assert.False(t, tracker.IsActive())
	assert.Nil(t, tracker.Current().AppliedAt)
	assert.Nil(t, tracker.Tick())
}
