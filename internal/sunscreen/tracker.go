// Package sunscreen tracks the reapplication countdown that runs
// independently of exposure accounting.
package sunscreen

import (
	"time"

	"github.com/suntrack/suntrack/pkg/clock"
)

// ProtectionWindow is how long a single application protects before
// reapplication is due.
const ProtectionWindow = 2 * time.Hour

// ExpiredEvent is fired exactly once when protection lapses.
type ExpiredEvent struct {
	AppliedAt time.Time
	ReapplyAt time.Time
}

// Status is a point-in-time view of the countdown.
type Status struct {
	AppliedAt *time.Time
	ReapplyAt *time.Time
	Active    bool
	Remaining time.Duration
}

// Tracker owns the countdown for one device. All operations are idempotent
// no-ops when their precondition doesn't hold, and the tracker is mutated
// only by the session controller's run loop.
type Tracker struct {
	clock clock.Clock

	appliedAt *time.Time
	reapplyAt time.Time
	lapsed    bool
}

// NewTracker creates a tracker with no application recorded.
func NewTracker(c clock.Clock) *Tracker {
	return &Tracker{clock: c}
}

// Apply records a sunscreen application now. Reapplying restarts the window
// and re-arms the expiry event.
func (t *Tracker) Apply() {
	now := t.clock.Now()
	t.appliedAt = &now
	t.reapplyAt = now.Add(ProtectionWindow)
	t.lapsed = false
}

// Cancel clears the application. Safe to call when nothing is recorded or
// after expiry; it never re-fires the expired event.
func (t *Tracker) Cancel() {
	t.appliedAt = nil
	t.reapplyAt = time.Time{}
	t.lapsed = false
}

// RestoreApplication seeds the tracker from a persisted record at load
// time. An application whose window already passed is restored as lapsed so
// the expiry event is not replayed.
func (t *Tracker) RestoreApplication(at time.Time) {
	t.appliedAt = &at
	t.reapplyAt = at.Add(ProtectionWindow)
	t.lapsed = !t.clock.Now().Before(t.reapplyAt)
}

// IsActive reports whether protection currently holds.
func (t *Tracker) IsActive() bool {
	return t.appliedAt != nil && !t.lapsed && t.clock.Now().Before(t.reapplyAt)
}

// Remaining returns the time until reapplication is due, clamped to zero.
func (t *Tracker) Remaining() time.Duration {
	if t.appliedAt == nil || t.lapsed {
		return 0
	}
	r := t.reapplyAt.Sub(t.clock.Now())
	if r < 0 {
		return 0
	}
	return r
}

// Tick checks the countdown against the clock. The first tick at or past
// the reapply time returns the expiry event; later ticks return nil.
func (t *Tracker) Tick() *ExpiredEvent {
	if t.appliedAt == nil || t.lapsed {
		return nil
	}
	if t.clock.Now().Before(t.reapplyAt) {
		return nil
	}
	t.lapsed = true
	return &ExpiredEvent{
		AppliedAt: *t.appliedAt,
		ReapplyAt: t.reapplyAt,
	}
}

// Rollover cancels an application that is not from the current calendar day.
// Called at load time and when the controller detects a date change.
func (t *Tracker) Rollover() {
	if t.appliedAt == nil {
		return
	}
	now := t.clock.Now()
	y1, m1, d1 := t.appliedAt.Date()
	y2, m2, d2 := now.Date()
	if y1 != y2 || m1 != m2 || d1 != d2 {
		t.Cancel()
	}
}

// Current returns the renderer-facing status.
func (t *Tracker) Current() Status {
	s := Status{
		AppliedAt: t.appliedAt,
		Active:    t.IsActive(),
		Remaining: t.Remaining(),
	}
	if t.appliedAt != nil {
		reapply := t.reapplyAt
		s.ReapplyAt = &reapply
	}
	return s
}
