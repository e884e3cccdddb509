// Package main provides the entrypoint for the TripSentry background worker.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripsentry/tripsentry/internal/database"
	"github.com/tripsentry/tripsentry/internal/geo"
	"github.com/tripsentry/tripsentry/internal/itinerary"
	"github.com/tripsentry/tripsentry/internal/policy"
	"github.com/tripsentry/tripsentry/internal/safety"
	"github.com/tripsentry/tripsentry/internal/telemetry"
	"github.com/tripsentry/tripsentry/internal/tracking"
	"github.com/tripsentry/tripsentry/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "tripsentry-worker"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting TripSentry worker")

	// Get configuration from environment
	// Worker also exposes a health endpoint for Cloud Run
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	projectID := os.Getenv("GCP_PROJECT_ID")
	if projectID == "" {
		log.Fatal().Msg("GCP_PROJECT_ID is required")
	}

	subscriptionName := os.Getenv("PUBSUB_SUBSCRIPTION")
	if subscriptionName == "" {
		subscriptionName = "tripsentry-jobs"
	}

	alertTopic := os.Getenv("PUBSUB_ALERT_TOPIC")
	if alertTopic == "" {
		alertTopic = "tripsentry-alerts"
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

	// Initialize domain services backing the sweep
	gazetteer := geo.NewGazetteer()
	itineraryService := itinerary.NewService(itinerary.NewPostgresRepository(pool), gazetteer)
	trackingService := tracking.NewService(tracking.NewPostgresRepository(pool))
	policyService := policy.NewService(policy.ServiceConfig{
		Repository: policy.NewPostgresRepository(pool),
		Logger:     log,
	})
	assessmentRepo := safety.NewPostgresRepository(pool)

	// Alert publisher with its own Pub/Sub client
	alertPublisher, err := worker.NewPubSubAlertPublisher(ctx, projectID, alertTopic, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create alert publisher")
	}
	defer func() {
		if closeErr := alertPublisher.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close alert publisher")
		}
	}()

	sweepJob := worker.NewSweepJob(worker.SweepJobConfig{
		Config:      worker.DefaultSweepConfig(),
		Logger:      log,
		Itineraries: itineraryService,
		Trails:      trackingService,
		Policies:    policyService,
		Assessments: assessmentRepo,
		Resolver:    gazetteer,
		Alerts:      alertPublisher,
	})

	// Pub/Sub subscription handler
	pubsubHandler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
		ProjectID:        projectID,
		SubscriptionName: subscriptionName,
		SweepJob:         sweepJob,
		Logger:           log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create pubsub handler")
	}
	defer func() {
		if closeErr := pubsubHandler.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close pubsub handler")
		}
	}()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Create HTTP server for health checks
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
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

	// Start health check server
	go func() {
		log.Info().Str("addr", server.Addr).Msg("health check server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Start consuming job messages
	receiveErr := make(chan error, 1)
	go func() {
		receiveErr <- pubsubHandler.Start(ctx)
	}()

	// Wait for interrupt signal or receive failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info().Msg("shutting down worker")
	case err := <-receiveErr:
		if err != nil {
			log.Error().Err(err).Msg("pubsub receive failed")
		}
	}
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
