// Package session orchestrates the exposure timer, sunscreen tracker, and
// snapshot serialiser for tracked devices.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/suntrack/suntrack/internal/exposure"
	"github.com/suntrack/suntrack/internal/snapshot"
	"github.com/suntrack/suntrack/internal/sunscreen"
	"github.com/suntrack/suntrack/internal/uvindex"
	"github.com/suntrack/suntrack/pkg/clock"
)

// AlertSink consumes the core's outbound events. Delivery is best-effort;
// implementations own their retry policy.
type AlertSink interface {
	ExposureExceeded(ctx context.Context, deviceID string, ev exposure.ExceededEvent) error
	SunscreenExpired(ctx context.Context, deviceID string, ev sunscreen.ExpiredEvent) error
}

// UVUpdate is a fresh reading pushed by the weather-fetch collaborator.
type UVUpdate struct {
	UVIndex      int
	LocationName string
	Forecast     []snapshot.HourlyUV
	ObservedAt   time.Time
}

// ControllerConfig holds configuration for a session controller.
type ControllerConfig struct {
	DeviceID string
	Clock    clock.Clock
	Store    snapshot.Store
	Notifier snapshot.Notifier
	Alerts   AlertSink
	Logger   zerolog.Logger

	// TickInterval is the cadence of exposure accounting (default: 1s).
	TickInterval time.Duration
}

// Controller owns all mutable state for one device's tracked day. Every
// mutation happens under one lock and ends by writing a whole snapshot, so
// state transitions are observed in a total order matching the clock and a
// tick arriving after Pause or Reset is a no-op.
type Controller struct {
	deviceID     string
	clock        clock.Clock
	store        snapshot.Store
	notifier     snapshot.Notifier
	alerts       AlertSink
	logger       zerolog.Logger
	tickInterval time.Duration

	mu           sync.Mutex
	timer        *exposure.Timer
	tracker      *sunscreen.Tracker
	locationName string
	forecast     []snapshot.HourlyUV
	day          time.Time // midnight of the day being accounted
}

// NewController creates a controller, restoring the current day's state
// from the snapshot store when present.
func NewController(ctx context.Context, cfg ControllerConfig) *Controller {
	tickInterval := cfg.TickInterval
	if tickInterval == 0 {
		tickInterval = time.Second
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = snapshot.NopNotifier{}
	}

	c := &Controller{
		deviceID:     cfg.DeviceID,
		clock:        cfg.Clock,
		store:        cfg.Store,
		notifier:     notifier,
		alerts:       cfg.Alerts,
		logger:       cfg.Logger.With().Str("device_id", cfg.DeviceID).Logger(),
		tickInterval: tickInterval,
		timer:        exposure.NewTimer(cfg.Clock),
		tracker:      sunscreen.NewTracker(cfg.Clock),
		day:          midnight(cfg.Clock.Now()),
	}
	c.restore(ctx)
	return c
}

// restore rehydrates same-day state from the last persisted snapshot.
// Rollover rules apply: records from a previous day are ignored.
func (c *Controller) restore(ctx context.Context) {
	snap, err := c.store.Load(ctx, c.deviceID)
	if err != nil {
		c.logger.Warn().Err(err).Msg("snapshot load failed, starting fresh")
		return
	}
	if snap.LastUpdated.IsZero() || !sameDay(snap.LastUpdated, c.clock.Now()) {
		return
	}

	total := time.Duration(snap.TotalExposureSeconds+snap.ElapsedSeconds) * time.Second
	c.timer.Restore(total, snap.UVIndex)
	if snap.LastSunscreenApplication != nil {
		c.tracker.RestoreApplication(*snap.LastSunscreenApplication)
		c.timer.SetProtected(c.tracker.IsActive())
	}
	c.locationName = snap.LocationName
	c.forecast = snap.HourlyForecast

	c.logger.Info().
		Float64("restored_total_seconds", total.Seconds()).
		Int("uv_index", snap.UVIndex).
		Msg("session restored from snapshot")
}

// Run drives the 1 Hz tick loop until the context is cancelled.
func (c *Controller) Run(ctx context.Context) {
	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Tick(ctx)
		}
	}
}

// Tick advances exposure accounting by one interval and drives the
// sunscreen countdown. Safe to call from a test harness instead of Run.
func (c *Controller) Tick(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rolloverLocked()

	if ev := c.timer.Advance(c.tickInterval); ev != nil {
		c.emitExceeded(ctx, ev)
	}
	if ev := c.tracker.Tick(); ev != nil {
		c.timer.SetProtected(false)
		c.emitExpired(ctx, ev)
	}

	c.publishLocked(ctx)
}

// Start begins or resumes exposure accounting.
func (c *Controller) Start(ctx context.Context) snapshot.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rolloverLocked()
	if c.timer.Start() {
		c.timer.SetProtected(c.tracker.IsActive())
	}
	return c.publishLocked(ctx)
}

// Pause stops exposure accounting, folding the running segment.
func (c *Controller) Pause(ctx context.Context) snapshot.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.timer.Pause()
	return c.publishLocked(ctx)
}

// Reset clears the day: exposure zeroed, sunscreen cancelled.
func (c *Controller) Reset(ctx context.Context) snapshot.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.timer.Reset()
	c.tracker.Cancel()
	return c.publishLocked(ctx)
}

// ApplySunscreen starts the 2-hour protection window. Exposure accounting
// is unaffected.
func (c *Controller) ApplySunscreen(ctx context.Context) snapshot.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tracker.Apply()
	c.timer.SetProtected(c.timer.IsRunning())
	return c.publishLocked(ctx)
}

// CancelSunscreen clears the protection window.
func (c *Controller) CancelSunscreen(ctx context.Context) snapshot.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tracker.Cancel()
	c.timer.SetProtected(false)
	return c.publishLocked(ctx)
}

// UpdateUV applies a fresh UV reading pushed by the weather collaborator.
func (c *Controller) UpdateUV(ctx context.Context, update UVUpdate) snapshot.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rolloverLocked()
	if update.LocationName != "" {
		c.locationName = update.LocationName
	}
	if update.Forecast != nil {
		c.forecast = update.Forecast
	}
	if ev := c.timer.UpdateUVIndex(update.UVIndex); ev != nil {
		c.emitExceeded(ctx, ev)
	}
	return c.publishLocked(ctx)
}

// SetLocation updates the display name carried in the snapshot.
func (c *Controller) SetLocation(ctx context.Context, name string) snapshot.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.locationName = name
	return c.publishLocked(ctx)
}

// Snapshot returns the current combined state without mutating it.
func (c *Controller) Snapshot() snapshot.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buildLocked()
}

// rolloverLocked clears accounting when the calendar day has changed since
// the last mutation.
func (c *Controller) rolloverLocked() {
	now := c.clock.Now()
	if sameDay(c.day, now) {
		return
	}
	c.logger.Info().
		Time("previous_day", c.day).
		Msg("midnight rollover, clearing exposure session")
	c.day = midnight(now)
	c.timer.Reset()
	c.tracker.Rollover()
}

// publishLocked rebuilds the snapshot, persists it, and signals renderers.
// Persistence failures are logged and swallowed: in-memory state stays
// authoritative and the next write catches up.
func (c *Controller) publishLocked(ctx context.Context) snapshot.Snapshot {
	snap := c.buildLocked()

	if err := c.store.Save(ctx, c.deviceID, snap); err != nil {
		c.logger.Error().Err(err).Msg("snapshot save failed")
		return snap
	}
	if err := c.notifier.SnapshotUpdated(ctx, c.deviceID); err != nil {
		c.logger.Warn().Err(err).Msg("snapshot refresh signal failed")
	}
	return snap
}

func (c *Controller) buildLocked() snapshot.Snapshot {
	st := c.tracker.Current()
	return snapshot.Snapshot{
		UVIndex:                   int(c.timer.UVIndex()),
		TimeToBurnSeconds:         int(c.timer.TimeToBurn().Seconds()),
		ElapsedSeconds:            c.timer.Elapsed().Seconds(),
		TotalExposureSeconds:      c.timer.Total().Seconds(),
		IsRunning:                 c.timer.IsRunning(),
		LastSunscreenApplication:  st.AppliedAt,
		SunscreenRemainingSeconds: st.Remaining.Seconds(),
		ExposureStatus:            c.timer.Status(),
		ExposureProgress:          c.timer.Progress(),
		LocationName:              c.locationName,
		LastUpdated:               c.clock.Now(),
		HourlyForecast:            c.forecast,
	}
}

func (c *Controller) emitExceeded(ctx context.Context, ev *exposure.ExceededEvent) {
	c.logger.Info().
		Int("previous_uv", int(ev.PreviousUV)).
		Int("new_uv", int(ev.NewUV)).
		Float64("time_to_burn_seconds", ev.TimeToBurn.Seconds()).
		Msg("safe exposure limit exceeded")

	if c.alerts == nil {
		return
	}
	if err := c.alerts.ExposureExceeded(ctx, c.deviceID, *ev); err != nil {
		c.logger.Warn().Err(err).Msg("exposure exceeded alert failed")
	}
}

func (c *Controller) emitExpired(ctx context.Context, ev *sunscreen.ExpiredEvent) {
	c.logger.Info().
		Time("applied_at", ev.AppliedAt).
		Msg("sunscreen protection lapsed")

	if c.alerts == nil {
		return
	}
	if err := c.alerts.SunscreenExpired(ctx, c.deviceID, *ev); err != nil {
		c.logger.Warn().Err(err).Msg("sunscreen expired alert failed")
	}
}

// UVLevel returns the display category for the last-known UV index.
func (c *Controller) UVLevel() uvindex.Level {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer.UVIndex().LevelFor()
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
