// Package api provides the HTTP API for SunTrack.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/suntrack/suntrack/internal/api/handler"
	"github.com/suntrack/suntrack/internal/api/middleware"
	"github.com/suntrack/suntrack/internal/auth"
	"github.com/suntrack/suntrack/internal/location"
	"github.com/suntrack/suntrack/internal/provider/resilience"
	"github.com/suntrack/suntrack/internal/session"
	"github.com/suntrack/suntrack/internal/weather"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics
	JWTService  *auth.JWTService
	Sessions    *session.Manager
	Locations   location.Repository
	UVService   *weather.Service
	Registry    *resilience.Registry
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "suntrack-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		Registry:  cfg.Registry,
		Sessions:  cfg.Sessions,
	})
	sessionHandler := handler.NewSessionHandler(cfg.Sessions, cfg.Logger)
	locationHandler := handler.NewLocationHandler(cfg.Locations, cfg.Sessions, cfg.Logger)
	uvHandler := handler.NewUVHandler(cfg.UVService, cfg.Locations, cfg.Logger)

	// Create auth middleware
	authMiddleware := middleware.Auth(cfg.JWTService)

	// Create rate limit middleware for different endpoint categories
	expensiveRateLimit := middleware.RateLimitByDevice(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByDevice(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			// Status endpoint requires authentication
			r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
		})

		// Session endpoints (authenticated) - device-based rate limiting
		r.Route("/session", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(standardRateLimit)
			r.Get("/", sessionHandler.GetSession)
			r.Post("/start", sessionHandler.StartSession)
			r.Post("/pause", sessionHandler.PauseSession)
			r.Post("/reset", sessionHandler.ResetSession)
			r.Post("/sunscreen", sessionHandler.ApplySunscreen)
			r.Delete("/sunscreen", sessionHandler.CancelSunscreen)
		})

		// Tracked location endpoints (authenticated)
		r.Route("/location", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(standardRateLimit)
			r.Get("/", locationHandler.GetLocation)
			r.Put("/", locationHandler.UpdateLocation)
			r.Delete("/", locationHandler.DeleteLocation)
		})

		// UV endpoints (authenticated) - provider-backed, strict rate limiting
		r.Route("/uv", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(expensiveRateLimit)
			r.Get("/current", uvHandler.GetCurrent)
			r.Get("/forecast", uvHandler.GetForecast)
		})
	})

	return r
}
