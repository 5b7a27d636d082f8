// Package handler provides HTTP handlers for the SunTrack API.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/suntrack/suntrack/internal/api/models"
	"github.com/suntrack/suntrack/internal/api/response"
	"github.com/suntrack/suntrack/internal/provider/resilience"
	"github.com/suntrack/suntrack/internal/session"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
	sessions  *session.Manager
}

// OpsConfig configures an OpsHandler.
type OpsConfig struct {
	Version   string
	BuildTime string

	// Registry reports external provider health. Optional.
	Registry *resilience.Registry

	// Sessions reports active tracking sessions. Optional.
	Sessions *session.Manager
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	return &OpsHandler{
		version:   cfg.Version,
		buildTime: cfg.BuildTime,
		registry:  cfg.Registry,
		sessions:  cfg.Sessions,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check.
// The service is not ready when every registered UV provider circuit is open.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatusOK
	if h.registry != nil {
		providers := h.registry.GetAllHealth()
		healthy := 0
		for _, p := range providers {
			if p.IsHealthy() {
				healthy++
			}
		}
		if len(providers) > 0 && healthy == 0 {
			status = models.HealthStatusFail
		}
	}

	health := models.Health{
		Status: status,
		Time:   models.Timestamp(time.Now()),
	}
	code := http.StatusOK
	if status == models.HealthStatusFail {
		code = http.StatusServiceUnavailable
	}
	response.JSON(w, r, code, health)
}

// SystemStatus handles GET /v1/ops/status - provider and subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	now := models.Timestamp(time.Now())

	var subsystems []models.SubsystemStatus
	if h.sessions != nil {
		detail := "sessions: " + strconv.Itoa(len(h.sessions.DeviceIDs()))
		subsystems = append(subsystems, models.SubsystemStatus{
			Name:   "sessions",
			Status: models.HealthStatusOK,
			Detail: &detail,
		})
	}

	var providers []models.ProviderStatus
	overall := models.HealthStatusOK
	if h.registry != nil {
		for _, p := range h.registry.GetAllHealth() {
			ps := models.ProviderStatus{
				Provider: p.Name,
				Status:   providerStatus(p),
			}
			if p.LastSuccessAt != nil {
				ts := models.Timestamp(*p.LastSuccessAt)
				ps.LastSuccessAt = &ts
			}
			if p.LastFailureAt != nil {
				ts := models.Timestamp(*p.LastFailureAt)
				ps.LastFailureAt = &ts
			}
			if p.LastError != "" {
				msg := p.LastError
				ps.Message = &msg
			}
			if ps.Status == models.HealthStatusFail {
				overall = models.HealthStatusDegraded
			}
			providers = append(providers, ps)
		}
	}

	status := models.SystemStatus{
		Status:     overall,
		Time:       now,
		Subsystems: subsystems,
		Providers:  providers,
	}
	response.JSON(w, r, http.StatusOK, status)
}

func providerStatus(h *resilience.ProviderHealth) models.HealthStatus {
	switch h.CircuitState {
	case gobreaker.StateOpen:
		return models.HealthStatusFail
	case gobreaker.StateHalfOpen:
		return models.HealthStatusDegraded
	default:
		return models.HealthStatusOK
	}
}
