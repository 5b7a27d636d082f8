package weather_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suntrack/suntrack/internal/weather"
)

// mockProvider is a mock UV provider for testing.
type mockProvider struct {
	mu        sync.Mutex
	callCount int
	uv        float64
	err       error
}

func newMockProvider() *mockProvider {
	return &mockProvider{uv: 6.4}
}

func (m *mockProvider) Name() string {
	return "mock"
}

func (m *mockProvider) GetCurrentUV(_ context.Context, lat, lon float64) (*weather.Observation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++

	if m.err != nil {
		return nil, m.err
	}

	return &weather.Observation{
		Lat:        lat,
		Lon:        lon,
		UVIndex:    int(m.uv + 0.5),
		UVRaw:      m.uv,
		ObservedAt: time.Now(),
		FetchedAt:  time.Now(),
	}, nil
}

func (m *mockProvider) GetForecast(_ context.Context, lat, lon float64) (*weather.Forecast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++

	if m.err != nil {
		return nil, m.err
	}

	return &weather.Forecast{
		Lat: lat,
		Lon: lon,
		Hourly: []weather.HourlyForecast{
			{Time: time.Now().Add(1 * time.Hour), UVIndex: 7, UVRaw: 7.2},
			{Time: time.Now().Add(2 * time.Hour), UVIndex: 5, UVRaw: 5.1},
		},
		FetchedAt: time.Now(),
	}, nil
}

func (m *mockProvider) getCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

func (m *mockProvider) setError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func TestService_GetCurrentUV(t *testing.T) {
	provider := newMockProvider()
	service := weather.NewService(weather.ServiceConfig{
		Provider: provider,
		Logger:   zerolog.Nop(),
		CacheTTL: 5 * time.Minute,
	})

	obs, err := service.GetCurrentUV(context.Background(), 52.370, 4.895)
	require.NoError(t, err)
	require.NotNil(t, obs)

	assert.Equal(t, 52.370, obs.Lat)
	assert.Equal(t, 4.895, obs.Lon)
	assert.Equal(t, 6, obs.UVIndex)
	assert.Equal(t, weather.RiskHigh, obs.GetRiskBand())
	assert.Equal(t, "mock", obs.Provider)
}

func TestService_GetCurrentUV_Caching(t *testing.T) {
	provider := newMockProvider()
	service := weather.NewService(weather.ServiceConfig{
		Provider: provider,
		Logger:   zerolog.Nop(),
		CacheTTL: 5 * time.Minute,
	})

	// First call
	_, err := service.GetCurrentUV(context.Background(), 52.370, 4.895)
	require.NoError(t, err)

	// Second call should use cache
	_, err = service.GetCurrentUV(context.Background(), 52.370, 4.895)
	require.NoError(t, err)

	// Only one provider call (cached)
	assert.Equal(t, 1, provider.getCallCount())
}

func TestService_GetCurrentUV_CacheGriding(t *testing.T) {
	provider := newMockProvider()
	service := weather.NewService(weather.ServiceConfig{
		Provider:      provider,
		Logger:        zerolog.Nop(),
		CacheTTL:      5 * time.Minute,
		CacheGridSize: 0.1, // ~11km grid
	})

	// Two nearby points in same grid cell
	_, err := service.GetCurrentUV(context.Background(), 52.371, 4.891)
	require.NoError(t, err)

	_, err = service.GetCurrentUV(context.Background(), 52.375, 4.895)
	require.NoError(t, err)

	// Should only call provider once (same grid cell)
	assert.Equal(t, 1, provider.getCallCount())

	// Point in different grid cell
	_, err = service.GetCurrentUV(context.Background(), 52.5, 4.9)
	require.NoError(t, err)

	// Should call provider again
	assert.Equal(t, 2, provider.getCallCount())
}

func TestService_GetCurrentUV_InvalidCoordinates(t *testing.T) {
	provider := newMockProvider()
	service := weather.NewService(weather.ServiceConfig{
		Provider: provider,
		Logger:   zerolog.Nop(),
	})

	tests := []struct {
		name string
		lat  float64
		lon  float64
	}{
		{"lat too high", 91.0, 4.895},
		{"lat too low", -91.0, 4.895},
		{"lon too high", 52.370, 181.0},
		{"lon too low", 52.370, -181.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.GetCurrentUV(context.Background(), tt.lat, tt.lon)
			require.Error(t, err)
			assert.ErrorIs(t, err, weather.ErrInvalidCoordinates)
		})
	}
}

func TestService_GetCurrentUV_ProviderError(t *testing.T) {
	provider := newMockProvider()
	provider.setError(errors.New("api error"))

	service := weather.NewService(weather.ServiceConfig{
		Provider: provider,
		Logger:   zerolog.Nop(),
	})

	_, err := service.GetCurrentUV(context.Background(), 52.370, 4.895)
	require.Error(t, err)
	assert.ErrorIs(t, err, weather.ErrProviderUnavailable)
}

func TestService_GetCurrentUV_StaleOnError(t *testing.T) {
	provider := newMockProvider()
	service := weather.NewService(weather.ServiceConfig{
		Provider:        provider,
		Logger:          zerolog.Nop(),
		CacheTTL:        100 * time.Millisecond,
		StaleIfErrorTTL: 1 * time.Hour,
	})

	// First call succeeds
	obs1, err := service.GetCurrentUV(context.Background(), 52.370, 4.895)
	require.NoError(t, err)
	require.NotNil(t, obs1)

	// Wait for cache to expire
	time.Sleep(150 * time.Millisecond)

	// Set error on provider
	provider.setError(errors.New("api error"))

	// Second call should return stale data
	obs2, err := service.GetCurrentUV(context.Background(), 52.370, 4.895)
	require.NoError(t, err)
	require.NotNil(t, obs2)
}

func TestService_GetForecast(t *testing.T) {
	provider := newMockProvider()
	service := weather.NewService(weather.ServiceConfig{
		Provider: provider,
		Logger:   zerolog.Nop(),
	})

	forecast, err := service.GetForecast(context.Background(), 52.370, 4.895)
	require.NoError(t, err)
	require.NotNil(t, forecast)

	assert.Equal(t, 52.370, forecast.Lat)
	assert.Len(t, forecast.Hourly, 2)
	assert.Equal(t, 7, forecast.Hourly[0].UVIndex)
}

func TestService_InvalidateCache(t *testing.T) {
	provider := newMockProvider()
	service := weather.NewService(weather.ServiceConfig{
		Provider: provider,
		Logger:   zerolog.Nop(),
		CacheTTL: 5 * time.Minute,
	})

	// First call
	_, err := service.GetCurrentUV(context.Background(), 52.370, 4.895)
	require.NoError(t, err)

	// Invalidate cache
	service.InvalidateCache()

	// Second call should hit provider again
	_, err = service.GetCurrentUV(context.Background(), 52.370, 4.895)
	require.NoError(t, err)

	assert.Equal(t, 2, provider.getCallCount())
}

func TestService_CacheStats(t *testing.T) {
	provider := newMockProvider()
	service := weather.NewService(weather.ServiceConfig{
		Provider: provider,
		Logger:   zerolog.Nop(),
		CacheTTL: 5 * time.Minute,
	})

	// Empty cache
	stats := service.CacheStats()
	assert.Equal(t, 0, stats.UVEntries)
	assert.Equal(t, "mock", stats.Provider)

	// Add some entries
	_, _ = service.GetCurrentUV(context.Background(), 52.370, 4.895)
	_, _ = service.GetForecast(context.Background(), 52.370, 4.895)

	stats = service.CacheStats()
	assert.Equal(t, 1, stats.UVEntries)
	assert.Equal(t, 1, stats.ForecastEntries)
	assert.Equal(t, 1, stats.UVFreshEntries)
	assert.Equal(t, 1, stats.ForecastFreshEntries)
}
