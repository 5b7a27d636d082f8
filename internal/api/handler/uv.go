package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/suntrack/suntrack/internal/api/models"
	"github.com/suntrack/suntrack/internal/api/response"
	"github.com/suntrack/suntrack/internal/location"
	"github.com/suntrack/suntrack/internal/weather"
)

// UVHandler handles UV observation and forecast endpoints.
type UVHandler struct {
	uvService *weather.Service
	locations location.Repository
	logger    zerolog.Logger
}

// NewUVHandler creates a new UVHandler.
func NewUVHandler(uvService *weather.Service, locations location.Repository, logger zerolog.Logger) *UVHandler {
	return &UVHandler{
		uvService: uvService,
		locations: locations,
		logger:    logger,
	}
}

// GetCurrent handles GET /v1/uv/current - the current UV observation.
// Coordinates come from lat/lon query params, falling back to the device's
// tracked location.
func (h *UVHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := h.resolveCoordinates(w, r)
	if !ok {
		return
	}

	obs, err := h.uvService.GetCurrentUV(r.Context(), lat, lon)
	if err != nil {
		h.writeUVError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.CurrentUVResponse{
		Point:      models.Point{Lat: obs.Lat, Lon: obs.Lon},
		UVIndex:    obs.UVIndex,
		UVRaw:      obs.UVRaw,
		RiskBand:   string(obs.GetRiskBand()),
		CloudCover: obs.CloudCover,
		ObservedAt: models.Timestamp(obs.ObservedAt),
		Provider:   obs.Provider,
	})
}

// GetForecast handles GET /v1/uv/forecast - the hourly UV forecast.
func (h *UVHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := h.resolveCoordinates(w, r)
	if !ok {
		return
	}

	fc, err := h.uvService.GetForecast(r.Context(), lat, lon)
	if err != nil {
		h.writeUVError(w, r, err)
		return
	}

	hourly := make([]models.UVForecastHour, 0, len(fc.Hourly))
	for i := range fc.Hourly {
		hour := &fc.Hourly[i]
		hourly = append(hourly, models.UVForecastHour{
			Time:     models.Timestamp(hour.Time),
			UVIndex:  hour.UVIndex,
			RiskBand: string(hour.GetRiskBand()),
		})
	}

	response.JSON(w, r, http.StatusOK, models.UVForecastResponse{
		Point:  models.Point{Lat: fc.Lat, Lon: fc.Lon},
		Hourly: hourly,
	})
}

// resolveCoordinates reads lat/lon query params, or falls back to the
// device's tracked location. Writes the error response itself when
// resolution fails.
func (h *UVHandler) resolveCoordinates(w http.ResponseWriter, r *http.Request) (float64, float64, bool) {
	latStr := r.URL.Query().Get("lat")
	lonStr := r.URL.Query().Get("lon")

	if latStr == "" && lonStr == "" {
		deviceID := GetDeviceID(r.Context())
		loc, err := h.locations.Get(r.Context(), deviceID)
		if err != nil {
			if errors.Is(err, location.ErrLocationNotFound) {
				response.BadRequest(w, r, "lat and lon are required when no tracked location is set", nil)
				return 0, 0, false
			}
			h.logger.Error().Err(err).Str("device_id", deviceID).Msg("location lookup failed")
			response.InternalError(w, r, "failed to load tracked location")
			return 0, 0, false
		}
		return loc.Lat, loc.Lon, true
	}

	lat, latErr := strconv.ParseFloat(latStr, 64)
	lon, lonErr := strconv.ParseFloat(lonStr, 64)
	if latErr != nil || lonErr != nil {
		var fieldErrors []models.FieldError
		if latErr != nil {
			fieldErrors = append(fieldErrors, models.FieldError{Field: "lat", Message: "must be a number", Code: "INVALID"})
		}
		if lonErr != nil {
			fieldErrors = append(fieldErrors, models.FieldError{Field: "lon", Message: "must be a number", Code: "INVALID"})
		}
		response.BadRequest(w, r, "invalid coordinates", fieldErrors)
		return 0, 0, false
	}
	return lat, lon, true
}

func (h *UVHandler) writeUVError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, weather.ErrInvalidCoordinates):
		response.BadRequest(w, r, "coordinates out of range", nil)
	case errors.Is(err, weather.ErrNoDataForLocation):
		response.NotFound(w, r, "no uv data for location")
	default:
		h.logger.Error().Err(err).Msg("uv lookup failed")
		response.ServiceUnavailable(w, r, "uv provider unavailable")
	}
}
