// Package main provides the entrypoint for the SunTrack worker. It refreshes
// UV readings for every tracked location and publishes them onto the UV feed.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/suntrack/suntrack/internal/database"
	"github.com/suntrack/suntrack/internal/location"
	"github.com/suntrack/suntrack/internal/provider/resilience"
	"github.com/suntrack/suntrack/internal/uvfeed"
	"github.com/suntrack/suntrack/internal/weather"
	"github.com/suntrack/suntrack/internal/weather/openweathermap"
	"github.com/suntrack/suntrack/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "suntrack-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting SunTrack worker")

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	refreshInterval := 10 * time.Minute
	if v := os.Getenv("REFRESH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Fatal().Err(err).Str("value", v).Msg("invalid REFRESH_INTERVAL")
		}
		refreshInterval = d
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Str("database", dbConfig.Database).
		Msg("database connected")

	locations := location.NewPostgresRepository(pool)

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

	// Connect to Pub/Sub for the UV feed
	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	if projectID == "" {
		log.Fatal().Msg("PUBSUB_PROJECT_ID is required")
	}
	pubsubClient, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create pubsub client")
	}
	defer pubsubClient.Close()

	feedTopic := envOrDefault("UV_FEED_TOPIC", "uv-feed")
	feed := uvfeed.NewPublisher(uvfeed.PublisherConfig{
		Client: pubsubClient,
		Topic:  feedTopic,
		Logger: log,
	})
	defer feed.Stop()
	log.Info().
		Str("project_id", projectID).
		Str("feed_topic", feedTopic).
		Msg("pubsub connected")

	refreshJob := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:    worker.DefaultRefreshConfig(),
		Logger:    log,
		Locations: locations,
		UVService: uvService,
		Feed:      feed,
	})

	// On-demand jobs arrive over Pub/Sub alongside the periodic schedule
	var jobHandler *worker.PubSubHandler
	if sub := os.Getenv("WORKER_JOBS_SUBSCRIPTION"); sub != "" {
		jobHandler, err = worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        projectID,
			SubscriptionName: sub,
			RefreshJob:       refreshJob,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create job handler")
		}
		defer jobHandler.Close()

		go func() {
			if recvErr := jobHandler.Start(ctx); recvErr != nil && ctx.Err() == nil {
				log.Error().Err(recvErr).Msg("job handler stopped")
			}
		}()
	} else {
		log.Warn().Msg("WORKER_JOBS_SUBSCRIPTION not set - on-demand jobs disabled")
	}

	// Periodic refresh loop
	go func() {
		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()

		// Refresh immediately on startup, then on the interval.
		runRefresh(ctx, refreshJob, log)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runRefresh(ctx, refreshJob, log)
			}
		}
	}()

	// Health check endpoint for Cloud Run
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":"%s"}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("health server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}

func runRefresh(ctx context.Context, job *worker.RefreshJob, log zerolog.Logger) {
	result := job.Run(ctx)
	log.Info().
		Int("total", result.TotalLocations).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Dur("duration", result.Duration).
		Msg("refresh run complete")
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
