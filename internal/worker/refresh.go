package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/suntrack/suntrack/internal/location"
	"github.com/suntrack/suntrack/internal/uvfeed"
	"github.com/suntrack/suntrack/internal/weather"
)

// UVService is the slice of the weather service the refresh job needs.
type UVService interface {
	GetCurrentUV(ctx context.Context, lat, lon float64) (*weather.Observation, error)
	GetForecast(ctx context.Context, lat, lon float64) (*weather.Forecast, error)
}

// FeedPublisher pushes refreshed readings to the session controllers.
type FeedPublisher interface {
	Publish(ctx context.Context, update uvfeed.Update) error
}

// RefreshJob fetches fresh UV readings for every tracked device
// location and publishes them on the feed.
type RefreshJob struct {
	config    RefreshConfig
	logger    zerolog.Logger
	locations location.Repository
	uvService UVService
	feed      FeedPublisher

	metrics *RefreshMetrics
}

// RefreshMetrics tracks refresh job statistics.
type RefreshMetrics struct {
	mu sync.RWMutex

	// Counters
	TotalRuns          int64
	LocationsRefreshed int64
	LocationsFailed    int64
	ForecastsRefreshed int64
	UpdatesPublished   int64
	PublishFailures    int64

	// Timings
	LastRunAt       time.Time
	LastRunDuration time.Duration
	TotalDuration   time.Duration
}

// RefreshJobConfig holds configuration for creating a RefreshJob.
type RefreshJobConfig struct {
	Config    RefreshConfig
	Logger    zerolog.Logger
	Locations location.Repository
	UVService UVService
	Feed      FeedPublisher
}

// NewRefreshJob creates a new refresh job processor.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	return &RefreshJob{
		config:    cfg.Config.withDefaults(),
		logger:    cfg.Logger,
		locations: cfg.Locations,
		uvService: cfg.UVService,
		feed:      cfg.Feed,
		metrics:   &RefreshMetrics{},
	}
}

// RefreshResult contains the result of a refresh run.
type RefreshResult struct {
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalLocations int
	Successful     int
	Failed         int
	Errors         []RefreshError
}

// RefreshError represents an error during refresh.
type RefreshError struct {
	DeviceID string
	Stage    string
	Error    string
}

// Run executes the refresh job for all tracked locations.
func (j *RefreshJob) Run(ctx context.Context) *RefreshResult {
	startTime := time.Now()
	result := &RefreshResult{StartTime: startTime}

	tracked, err := j.locations.List(ctx)
	if err != nil {
		j.logger.Error().Err(err).Msg("failed to list tracked locations")
		result.Failed = 1
		result.Errors = append(result.Errors, RefreshError{Stage: "list", Error: err.Error()})
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(startTime)
		j.updateMetrics(result)
		return result
	}

	result.TotalLocations = len(tracked)

	j.logger.Info().
		Int("locations", len(tracked)).
		Int("concurrency", j.config.Concurrency).
		Msg("starting uv refresh job")

	// Create work channels
	work := make(chan *location.TrackedLocation, len(tracked))
	results := make(chan locationResult, len(tracked))

	// Start workers
	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.refreshWorker(ctx, work, results)
		}()
	}

	// Send locations to workers
	for _, loc := range tracked {
		work <- loc
	}
	close(work)

	// Wait for workers to complete
	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect results
	for lr := range results {
		if lr.success {
			result.Successful++
		} else {
			result.Failed++
		}
		result.Errors = append(result.Errors, lr.errors...)
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Msg("uv refresh job completed")

	return result
}

type locationResult struct {
	deviceID string
	success  bool
	errors   []RefreshError
}

func (j *RefreshJob) refreshWorker(ctx context.Context, work <-chan *location.TrackedLocation, results chan<- locationResult) {
	for loc := range work {
		select {
		case <-ctx.Done():
			return
		default:
			results <- j.refreshLocation(ctx, loc)
		}
	}
}

func (j *RefreshJob) refreshLocation(ctx context.Context, loc *location.TrackedLocation) locationResult {
	result := locationResult{deviceID: loc.DeviceID, success: true}

	locCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	obs, err := j.uvService.GetCurrentUV(locCtx, loc.Lat, loc.Lon)
	if err != nil {
		result.errors = append(result.errors, RefreshError{
			DeviceID: loc.DeviceID,
			Stage:    "current",
			Error:    err.Error(),
		})
		result.success = false
		atomic.AddInt64(&j.metrics.LocationsFailed, 1)
		return result
	}
	atomic.AddInt64(&j.metrics.LocationsRefreshed, 1)

	update := uvfeed.Update{
		DeviceID:     loc.DeviceID,
		UVIndex:      obs.UVIndex,
		UVRaw:        obs.UVRaw,
		LocationName: loc.DisplayName,
		ObservedAt:   obs.ObservedAt,
	}

	if j.config.RefreshForecast {
		forecast, err := j.uvService.GetForecast(locCtx, loc.Lat, loc.Lon)
		if err != nil {
			// Forecast failures degrade the update, not the reading
			result.errors = append(result.errors, RefreshError{
				DeviceID: loc.DeviceID,
				Stage:    "forecast",
				Error:    err.Error(),
			})
		} else {
			update.Forecast = toFeedForecast(forecast, j.config.ForecastHours)
			atomic.AddInt64(&j.metrics.ForecastsRefreshed, 1)
		}
	}

	if err := j.feed.Publish(locCtx, update); err != nil {
		result.errors = append(result.errors, RefreshError{
			DeviceID: loc.DeviceID,
			Stage:    "publish",
			Error:    err.Error(),
		})
		result.success = false
		atomic.AddInt64(&j.metrics.PublishFailures, 1)
		return result
	}
	atomic.AddInt64(&j.metrics.UpdatesPublished, 1)

	return result
}

func toFeedForecast(forecast *weather.Forecast, maxHours int) []uvfeed.HourlyPoint {
	n := len(forecast.Hourly)
	if n > maxHours {
		n = maxHours
	}

	points := make([]uvfeed.HourlyPoint, 0, n)
	for _, h := range forecast.Hourly[:n] {
		points = append(points, uvfeed.HourlyPoint{
			UVIndex:   h.UVIndex,
			Timestamp: h.Time,
		})
	}
	return points
}

func (j *RefreshJob) updateMetrics(result *RefreshResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *RefreshJob) GetMetrics() RefreshMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return RefreshMetrics{
		TotalRuns:          j.metrics.TotalRuns,
		LocationsRefreshed: atomic.LoadInt64(&j.metrics.LocationsRefreshed),
		LocationsFailed:    atomic.LoadInt64(&j.metrics.LocationsFailed),
		ForecastsRefreshed: atomic.LoadInt64(&j.metrics.ForecastsRefreshed),
		UpdatesPublished:   atomic.LoadInt64(&j.metrics.UpdatesPublished),
		PublishFailures:    atomic.LoadInt64(&j.metrics.PublishFailures),
		LastRunAt:          j.metrics.LastRunAt,
		LastRunDuration:    j.metrics.LastRunDuration,
		TotalDuration:      j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns the current metrics as a map for the status
// endpoint.
func (j *RefreshJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_runs":          m.TotalRuns,
		"locations_refreshed": m.LocationsRefreshed,
		"locations_failed":    m.LocationsFailed,
		"forecasts_refreshed": m.ForecastsRefreshed,
		"updates_published":   m.UpdatesPublished,
		"publish_failures":    m.PublishFailures,
		"last_run_at":         m.LastRunAt,
		"last_run_duration":   m.LastRunDuration.String(),
		"total_duration":      m.TotalDuration.String(),
	}
}
