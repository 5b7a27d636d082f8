// Package main provides the entrypoint for the SunTrack API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/suntrack/suntrack/internal/alerts"
	"github.com/suntrack/suntrack/internal/api"
	"github.com/suntrack/suntrack/internal/api/middleware"
	"github.com/suntrack/suntrack/internal/auth"
	"github.com/suntrack/suntrack/internal/database"
	"github.com/suntrack/suntrack/internal/location"
	"github.com/suntrack/suntrack/internal/provider/resilience"
	"github.com/suntrack/suntrack/internal/session"
	"github.com/suntrack/suntrack/internal/snapshot"
	"github.com/suntrack/suntrack/internal/telemetry"
	"github.com/suntrack/suntrack/internal/uvfeed"
	"github.com/suntrack/suntrack/internal/weather"
	"github.com/suntrack/suntrack/internal/weather/openweathermap"
	"github.com/suntrack/suntrack/pkg/clock"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "suntrack-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting SunTrack API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Initialize JWT verification (tokens are minted by the account backend)
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		jwtSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SigningKey: jwtSigningKey,
		Issuer:     os.Getenv("JWT_ISSUER"),
		Audience:   os.Getenv("JWT_AUDIENCE"),
	})

	// Connect to Pub/Sub for snapshot refresh signals, alerts, and the UV feed
	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	var (
		notifier     snapshot.Notifier
		alertSink    session.AlertSink
		pubsubClient *pubsub.Client
	)
	if projectID != "" {
		pubsubClient, err = pubsub.NewClient(ctx, projectID)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub client")
		}
		defer pubsubClient.Close()

		snapshotTopic := envOrDefault("SNAPSHOT_TOPIC", "uv-snapshot-updates")
		notifier = snapshot.NewPubSubNotifier(snapshot.PubSubNotifierConfig{
			Client: pubsubClient,
			Topic:  snapshotTopic,
			Logger: log,
		})

		alertTopic := envOrDefault("ALERT_TOPIC", "uv-alerts")
		alertPublisher := alerts.NewPublisher(alerts.PublisherConfig{
			Client: pubsubClient,
			Topic:  alertTopic,
			Logger: log,
		})
		defer alertPublisher.Stop()
		alertSink = alertPublisher

		log.Info().
			Str("project_id", projectID).
			Str("snapshot_topic", snapshotTopic).
			Str("alert_topic", alertTopic).
			Msg("pubsub connected")
	} else {
		log.Warn().Msg("PUBSUB_PROJECT_ID not set - snapshot signals and alerts disabled")
	}

	// Initialize session manager with persistent snapshots
	sessions := session.NewManager(session.ManagerConfig{
		Clock:      clock.System{},
		Store:      snapshot.NewPostgresStore(pool),
		Notifier:   notifier,
		Alerts:     alertSink,
		Logger:     log,
		RunTickers: true,
	})
	defer sessions.Shutdown()
	log.Info().Msg("session manager initialized")

	// Initialize the UV provider with circuit breaking and retries
	registry := resilience.NewRegistry()
	owmClient := resilience.NewClient(resilience.DefaultClientConfig(openweathermap.ProviderName))
	registry.Register(openweathermap.ProviderName, owmClient)

	provider := openweathermap.NewClient(openweathermap.ClientConfig{
		APIKey:     os.Getenv("OPENWEATHERMAP_API_KEY"),
		HTTPClient: owmClient,
		Logger:     log,
	})
	uvService := weather.NewService(weather.ServiceConfig{
		Provider: provider,
		Logger:   log,
	})
	log.Info().Str("provider", provider.Name()).Msg("uv service initialized")

	// Initialize tracked-location repository
	locations := location.NewPostgresRepository(pool)

	// Subscribe to the UV feed, routing readings into live sessions
	if pubsubClient != nil {
		feedSubscription := envOrDefault("UV_FEED_SUBSCRIPTION", "uv-feed-api")
		subscriber := uvfeed.NewSubscriber(uvfeed.SubscriberConfig{
			Client:           pubsubClient,
			SubscriptionName: feedSubscription,
			Logger:           log,
			Handler: uvfeed.HandlerFunc(func(ctx context.Context, update uvfeed.Update) {
				sessions.UpdateUV(ctx, update.DeviceID, toUVUpdate(update))
			}),
		})
		go func() {
			if recvErr := subscriber.Start(ctx); recvErr != nil {
				log.Error().Err(recvErr).Msg("uv feed subscriber stopped")
			}
		}()
	}

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		ServiceName: serviceName,
		Metrics:     metrics,
		JWTService:  jwtService,
		Sessions:    sessions,
		Locations:   locations,
		UVService:   uvService,
		Registry:    registry,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

// toUVUpdate maps a feed payload onto the session controller's input.
func toUVUpdate(update uvfeed.Update) session.UVUpdate {
	forecast := make([]snapshot.HourlyUV, 0, len(update.Forecast))
	for _, p := range update.Forecast {
		forecast = append(forecast, snapshot.HourlyUV{
			UVIndex:   p.UVIndex,
			Timestamp: p.Timestamp,
		})
	}
	return session.UVUpdate{
		UVIndex:      update.UVIndex,
		LocationName: update.LocationName,
		Forecast:     forecast,
		ObservedAt:   update.ObservedAt,
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
