// Package exposure implements the UV exposure accounting state machine:
// elapsed and cumulative exposure time, burn-risk progress, and the
// exceeded-threshold transitions driven by ticks and UV index changes.
package exposure

import (
	"time"

	"github.com/suntrack/suntrack/internal/uvindex"
)

// State is the exposure timer state.
type State string

const (
	StateNotStarted       State = "NOT_STARTED"
	StateRunning          State = "RUNNING"
	StatePaused           State = "PAUSED"
	StateSunscreenApplied State = "SUNSCREEN_APPLIED"
	StateExceeded         State = "EXCEEDED"
)

// Status is the derived burn-risk status exposed to renderers.
type Status string

const (
	StatusNoUV     Status = "NO_UV"
	StatusSafe     Status = "SAFE"
	StatusWarning  Status = "WARNING"
	StatusExceeded Status = "EXCEEDED"
)

// WarningThreshold is the progress fraction at which the status turns to
// WARNING. Comparisons use >= on both the warning and exceeded boundaries.
const WarningThreshold = 0.8

// ExceededEvent is emitted when cumulative exposure crosses the safe limit,
// either by ticking past it or because a UV index change shrank the limit
// below time already accumulated. For tick-driven events PreviousUV equals
// NewUV.
type ExceededEvent struct {
	PreviousUV uvindex.Index
	NewUV      uvindex.Index
	TimeToBurn time.Duration
	Cumulative time.Duration
	At         time.Time
}
