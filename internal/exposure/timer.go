package exposure

import (
	"time"

	"github.com/suntrack/suntrack/internal/uvindex"
	"github.com/suntrack/suntrack/pkg/clock"
)

// Timer is the exposure state machine for a single tracked day.
//
// The timer is not safe for concurrent use; the session controller is its
// single mutator. Invalid transitions are silent no-ops so double-taps from
// the UI layer never fault.
//
// Accounting: while running, Advance grows elapsed only. Cumulative exposure
// is total plus elapsed; Pause folds elapsed into total and zeroes it, so
// total only grows except on Reset or day rollover.
type Timer struct {
	clock clock.Clock

	state     State
	protected bool

	elapsed    time.Duration
	total      time.Duration
	uv         uvindex.Index
	timeToBurn time.Duration
}

// NewTimer creates a timer in the NotStarted state with no UV data.
func NewTimer(c clock.Clock) *Timer {
	return &Timer{
		clock: c,
		state: StateNotStarted,
	}
}

// State returns the externally visible state. A running timer under active
// sunscreen protection reports SunscreenApplied.
func (t *Timer) State() State {
	if t.state == StateRunning && t.protected {
		return StateSunscreenApplied
	}
	return t.state
}

// IsRunning reports whether the timer is accumulating exposure.
func (t *Timer) IsRunning() bool {
	return t.state == StateRunning
}

// Elapsed returns the current running segment's duration.
func (t *Timer) Elapsed() time.Duration { return t.elapsed }

// Total returns exposure accumulated by completed segments.
func (t *Timer) Total() time.Duration { return t.total }

// Cumulative returns all exposure accumulated today.
func (t *Timer) Cumulative() time.Duration { return t.total + t.elapsed }

// UVIndex returns the last-known UV index.
func (t *Timer) UVIndex() uvindex.Index { return t.uv }

// TimeToBurn returns the current safe exposure limit. Zero means no burn
// risk (UV index 0).
func (t *Timer) TimeToBurn() time.Duration { return t.timeToBurn }

// Start begins or resumes exposure accounting. No-op unless the timer is
// NotStarted or Paused; an Exceeded timer needs an explicit Reset first.
func (t *Timer) Start() bool {
	if t.state != StateNotStarted && t.state != StatePaused {
		return false
	}
	t.state = StateRunning
	return true
}

// Pause stops accounting, folding the running segment into the total.
// No-op unless running.
func (t *Timer) Pause() bool {
	if t.state != StateRunning {
		return false
	}
	t.total += t.elapsed
	t.elapsed = 0
	t.state = StatePaused
	return true
}

// Resume is Start from Paused.
func (t *Timer) Resume() bool {
	return t.Start()
}

// Reset unconditionally returns the timer to NotStarted and zeroes all
// accumulated exposure. The last-known UV index and its limit are kept.
func (t *Timer) Reset() {
	t.state = StateNotStarted
	t.protected = false
	t.elapsed = 0
	t.total = 0
}

// Restore seeds the timer from a persisted record at load time. Only a
// fresh timer can be restored; restored exposure resumes from Paused so the
// user explicitly continues.
func (t *Timer) Restore(total time.Duration, rawUV int) {
	if t.state != StateNotStarted {
		return
	}
	t.uv = uvindex.Clamp(rawUV)
	t.timeToBurn = uvindex.TimeToBurn(t.uv)
	if total > 0 {
		t.total = total
		t.state = StatePaused
	}
}

// SetProtected records whether sunscreen protection is currently active.
// Protection is presentation state only; accounting is unaffected.
func (t *Timer) SetProtected(active bool) {
	t.protected = active
}

// Advance moves exposure accounting forward by d. A tick arriving after a
// transition out of Running is a no-op. Returns a non-nil event when the
// advance crosses the safe exposure limit.
func (t *Timer) Advance(d time.Duration) *ExceededEvent {
	if t.state != StateRunning || d <= 0 {
		return nil
	}
	t.elapsed += d
	return t.checkExceeded(t.uv)
}

// UpdateUVIndex applies a fresh UV reading, re-deriving the safe exposure
// limit. The exceeded boundary is rechecked in every non-terminal state: a
// new limit below time already accumulated trips Exceeded even when the
// index went down.
func (t *Timer) UpdateUVIndex(raw int) *ExceededEvent {
	prev := t.uv
	t.uv = uvindex.Clamp(raw)
	t.timeToBurn = uvindex.TimeToBurn(t.uv)

	if t.state == StateNotStarted || t.state == StateExceeded {
		return nil
	}
	return t.checkExceeded(prev)
}

// checkExceeded transitions to Exceeded when cumulative exposure has
// reached the limit. Zero limit means no burn risk and never trips.
func (t *Timer) checkExceeded(prevUV uvindex.Index) *ExceededEvent {
	if t.timeToBurn <= 0 || t.Cumulative() < t.timeToBurn {
		return nil
	}
	t.state = StateExceeded
	t.protected = false
	return &ExceededEvent{
		PreviousUV: prevUV,
		NewUV:      t.uv,
		TimeToBurn: t.timeToBurn,
		Cumulative: t.Cumulative(),
		At:         t.clock.Now(),
	}
}

// Progress returns the burn-risk fraction in [0, 1]. Zero when there is no
// burn risk.
func (t *Timer) Progress() float64 {
	if t.timeToBurn <= 0 {
		return 0
	}
	p := float64(t.Cumulative()) / float64(t.timeToBurn)
	if p > 1 {
		return 1
	}
	return p
}

// Status derives the renderer-facing burn-risk status.
func (t *Timer) Status() Status {
	if t.state == StateExceeded {
		return StatusExceeded
	}
	if !t.uv.HasBurnRisk() {
		return StatusNoUV
	}
	p := t.Progress()
	switch {
	case p >= 1:
		return StatusExceeded
	case p >= WarningThreshold:
		return StatusWarning
	default:
		return StatusSafe
	}
}
