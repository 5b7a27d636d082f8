package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/suntrack/suntrack/internal/api/response"
	"github.com/suntrack/suntrack/internal/session"
)

// SessionHandler handles exposure session endpoints.
type SessionHandler struct {
	sessions *session.Manager
	logger   zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *session.Manager, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// GetSession handles GET /v1/session - current tracking snapshot.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	deviceID := GetDeviceID(r.Context())
	ctrl := h.sessions.GetOrCreate(r.Context(), deviceID)
	response.JSON(w, r, http.StatusOK, ctrl.Snapshot())
}

// StartSession handles POST /v1/session/start - begin or resume exposure
// accounting. Starting an already-running session is a no-op and still
// returns the current snapshot.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	deviceID := GetDeviceID(r.Context())
	ctrl := h.sessions.GetOrCreate(r.Context(), deviceID)
	snap := ctrl.Start(r.Context())

	h.logger.Info().
		Str("device_id", deviceID).
		Int("uv_index", snap.UVIndex).
		Msg("exposure session started")
	response.JSON(w, r, http.StatusOK, snap)
}

// PauseSession handles POST /v1/session/pause - stop exposure accounting,
// preserving accumulated exposure.
func (h *SessionHandler) PauseSession(w http.ResponseWriter, r *http.Request) {
	deviceID := GetDeviceID(r.Context())
	ctrl := h.sessions.GetOrCreate(r.Context(), deviceID)
	snap := ctrl.Pause(r.Context())

	h.logger.Info().
		Str("device_id", deviceID).
		Float64("total_exposure_seconds", snap.TotalExposureSeconds).
		Msg("exposure session paused")
	response.JSON(w, r, http.StatusOK, snap)
}

// ResetSession handles POST /v1/session/reset - clear the day's exposure
// and cancel any sunscreen protection.
func (h *SessionHandler) ResetSession(w http.ResponseWriter, r *http.Request) {
	deviceID := GetDeviceID(r.Context())
	ctrl := h.sessions.GetOrCreate(r.Context(), deviceID)
	snap := ctrl.Reset(r.Context())

	h.logger.Info().
		Str("device_id", deviceID).
		Msg("exposure session reset")
	response.JSON(w, r, http.StatusOK, snap)
}

// ApplySunscreen handles POST /v1/session/sunscreen - start the 2-hour
// protection window.
func (h *SessionHandler) ApplySunscreen(w http.ResponseWriter, r *http.Request) {
	deviceID := GetDeviceID(r.Context())
	ctrl := h.sessions.GetOrCreate(r.Context(), deviceID)
	snap := ctrl.ApplySunscreen(r.Context())

	h.logger.Info().
		Str("device_id", deviceID).
		Msg("sunscreen applied")
	response.JSON(w, r, http.StatusOK, snap)
}

// CancelSunscreen handles DELETE /v1/session/sunscreen - clear the
// protection window.
func (h *SessionHandler) CancelSunscreen(w http.ResponseWriter, r *http.Request) {
	deviceID := GetDeviceID(r.Context())
	ctrl := h.sessions.GetOrCreate(r.Context(), deviceID)
	snap := ctrl.CancelSunscreen(r.Context())

	h.logger.Info().
		Str("device_id", deviceID).
		Msg("sunscreen cancelled")
	response.JSON(w, r, http.StatusOK, snap)
}
