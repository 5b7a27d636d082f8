package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/suntrack/suntrack/internal/api/models"
	"github.com/suntrack/suntrack/internal/api/response"
	"github.com/suntrack/suntrack/internal/location"
	"github.com/suntrack/suntrack/internal/session"
)

// LocationHandler handles tracked-location endpoints.
type LocationHandler struct {
	locations location.Repository
	sessions  *session.Manager
	logger    zerolog.Logger
}

// NewLocationHandler creates a new LocationHandler.
func NewLocationHandler(locations location.Repository, sessions *session.Manager, logger zerolog.Logger) *LocationHandler {
	return &LocationHandler{
		locations: locations,
		sessions:  sessions,
		logger:    logger,
	}
}

// GetLocation handles GET /v1/location - the device's tracked location.
func (h *LocationHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	deviceID := GetDeviceID(r.Context())

	loc, err := h.locations.Get(r.Context(), deviceID)
	if err != nil {
		if errors.Is(err, location.ErrLocationNotFound) {
			response.NotFound(w, r, "no tracked location for device")
			return
		}
		h.logger.Error().Err(err).Str("device_id", deviceID).Msg("location lookup failed")
		response.InternalError(w, r, "failed to load tracked location")
		return
	}

	response.JSON(w, r, http.StatusOK, toLocationResponse(loc))
}

// UpdateLocation handles PUT /v1/location - set the device's tracked
// location. The worker fetches UV readings for this coordinate on its next
// refresh cycle.
func (h *LocationHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	deviceID := GetDeviceID(r.Context())

	var req models.UpdateLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}

	if fieldErrors := validateLocationRequest(req); len(fieldErrors) > 0 {
		response.BadRequest(w, r, "invalid coordinates", fieldErrors)
		return
	}

	loc := &location.TrackedLocation{
		DeviceID:    deviceID,
		Lat:         req.Lat,
		Lon:         req.Lon,
		DisplayName: req.DisplayName,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := h.locations.Upsert(r.Context(), loc); err != nil {
		h.logger.Error().Err(err).Str("device_id", deviceID).Msg("location upsert failed")
		response.InternalError(w, r, "failed to save tracked location")
		return
	}

	// Reflect the display name in the live snapshot without waiting for
	// the next worker refresh.
	if req.DisplayName != "" {
		if ctrl, err := h.sessions.Get(deviceID); err == nil {
			ctrl.SetLocation(r.Context(), req.DisplayName)
		}
	}

	h.logger.Info().
		Str("device_id", deviceID).
		Float64("lat", req.Lat).
		Float64("lon", req.Lon).
		Msg("tracked location updated")
	response.JSON(w, r, http.StatusOK, toLocationResponse(loc))
}

// DeleteLocation handles DELETE /v1/location - stop tracking a location
// for the device.
func (h *LocationHandler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	deviceID := GetDeviceID(r.Context())

	if err := h.locations.Delete(r.Context(), deviceID); err != nil {
		if errors.Is(err, location.ErrLocationNotFound) {
			response.NotFound(w, r, "no tracked location for device")
			return
		}
		h.logger.Error().Err(err).Str("device_id", deviceID).Msg("location delete failed")
		response.InternalError(w, r, "failed to delete tracked location")
		return
	}

	response.NoContent(w, r)
}

func validateLocationRequest(req models.UpdateLocationRequest) []models.FieldError {
	var fieldErrors []models.FieldError
	if req.Lat < -90 || req.Lat > 90 {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field: "lat", Message: "must be between -90 and 90", Code: "OUT_OF_RANGE",
		})
	}
	if req.Lon < -180 || req.Lon > 180 {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field: "lon", Message: "must be between -180 and 180", Code: "OUT_OF_RANGE",
		})
	}
	return fieldErrors
}

func toLocationResponse(loc *location.TrackedLocation) models.LocationResponse {
	return models.LocationResponse{
		Lat:         loc.Lat,
		Lon:         loc.Lon,
		DisplayName: loc.DisplayName,
		UpdatedAt:   models.Timestamp(loc.UpdatedAt),
	}
}
