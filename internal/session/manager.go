package session

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/suntrack/suntrack/internal/snapshot"
	"github.com/suntrack/suntrack/pkg/clock"
)

// Manager errors.
var (
	ErrSessionNotFound = errors.New("session not found")
)

// ManagerConfig holds shared dependencies for all session controllers.
type ManagerConfig struct {
	Clock    clock.Clock
	Store    snapshot.Store
	Notifier snapshot.Notifier
	Alerts   AlertSink
	Logger   zerolog.Logger

	// RunTickers starts each controller's 1 Hz tick loop. Disabled in
	// tests, where ticks are driven explicitly.
	RunTickers bool
}

// Manager owns one Controller per tracked device. Controllers are created
// lazily on first use and run until Shutdown.
type Manager struct {
	cfg ManagerConfig

	mu       sync.RWMutex
	sessions map[string]*Controller
	cancels  map[string]context.CancelFunc
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewManager creates a session manager.
func NewManager(cfg ManagerConfig) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		cfg:      cfg,
		sessions: make(map[string]*Controller),
		cancels:  make(map[string]context.CancelFunc),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// GetOrCreate returns the controller for a device, creating and starting
// it when first seen.
func (m *Manager) GetOrCreate(ctx context.Context, deviceID string) *Controller {
	m.mu.RLock()
	if c, ok := m.sessions[deviceID]; ok {
		m.mu.RUnlock()
		return c
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring the write lock.
	if c, ok := m.sessions[deviceID]; ok {
		return c
	}

	c := NewController(ctx, ControllerConfig{
		DeviceID: deviceID,
		Clock:    m.cfg.Clock,
		Store:    m.cfg.Store,
		Notifier: m.cfg.Notifier,
		Alerts:   m.cfg.Alerts,
		Logger:   m.cfg.Logger,
	})
	m.sessions[deviceID] = c

	if m.cfg.RunTickers {
		runCtx, cancel := context.WithCancel(m.ctx)
		m.cancels[deviceID] = cancel
		go c.Run(runCtx)
	}
	return c
}

// Get returns an existing controller, or ErrSessionNotFound.
func (m *Manager) Get(deviceID string) (*Controller, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.sessions[deviceID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return c, nil
}

// UpdateUV routes a fresh reading to the device's controller, creating the
// session when the device is not yet tracked in this process.
func (m *Manager) UpdateUV(ctx context.Context, deviceID string, update UVUpdate) snapshot.Snapshot {
	return m.GetOrCreate(ctx, deviceID).UpdateUV(ctx, update)
}

// Remove stops and forgets a device's controller.
func (m *Manager) Remove(deviceID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cancel, ok := m.cancels[deviceID]; ok {
		cancel()
		delete(m.cancels, deviceID)
	}
	delete(m.sessions, deviceID)
}

// DeviceIDs lists the devices with live sessions in this process.
func (m *Manager) DeviceIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Shutdown stops all controllers' tick loops.
func (m *Manager) Shutdown() {
	m.cancel()
}
