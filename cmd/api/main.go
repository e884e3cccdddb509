// Package main provides the entrypoint for the TripSentry API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripsentry/tripsentry/internal/api"
	"github.com/tripsentry/tripsentry/internal/api/middleware"
	"github.com/tripsentry/tripsentry/internal/assistant/gemini"
	"github.com/tripsentry/tripsentry/internal/chat"
	"github.com/tripsentry/tripsentry/internal/database"
	"github.com/tripsentry/tripsentry/internal/geo"
	"github.com/tripsentry/tripsentry/internal/icons"
	"github.com/tripsentry/tripsentry/internal/itinerary"
	"github.com/tripsentry/tripsentry/internal/policy"
	"github.com/tripsentry/tripsentry/internal/provider/resilience"
	"github.com/tripsentry/tripsentry/internal/safety"
	"github.com/tripsentry/tripsentry/internal/telemetry"
	"github.com/tripsentry/tripsentry/internal/tracking"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "tripsentry-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting TripSentry API")

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

	// Backend health registry for the ops status endpoint
	backends := resilience.NewRegistry()

	// Initialize the generation backend (chat + icon suggestion)
	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	if geminiAPIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY not set - chat and icon endpoints will fail")
	}

	providerMetrics, err := middleware.NewProviderMetrics(gemini.BackendName)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize provider metrics")
	}

	geminiClient := gemini.NewClient(gemini.ClientConfig{
		APIKey:            geminiAPIKey,
		Model:             os.Getenv("GEMINI_MODEL"),
		SystemInstruction: os.Getenv("ASSISTANT_SYSTEM_PROMPT"),
		Registry:          backends,
		Metrics:           providerMetrics,
		Logger:            log,
	})

	// Initialize chat service
	chatRepo := chat.NewPostgresRepository(pool)
	chatService := chat.NewService(chat.ServiceConfig{
		Generator:  geminiClient,
		Repository: chatRepo,
		Logger:     log,
	})
	log.Info().Msg("chat service initialized")

	// Initialize icon suggestion service
	iconService := icons.NewService(icons.ServiceConfig{
		Completer: geminiClient,
		Logger:    log,
	})
	log.Info().Msg("icon service initialized")

	// Gazetteer is shared: itinerary writes register labels, the evaluator
	// resolves them.
	gazetteer := geo.NewGazetteer()

	// Initialize itinerary repository and service
	itineraryRepo := itinerary.NewPostgresRepository(pool)
	itineraryService := itinerary.NewService(itineraryRepo, gazetteer)
	log.Info().Msg("itinerary service initialized")

	// Initialize location tracking repository and service
	trackingRepo := tracking.NewPostgresRepository(pool)
	trackingService := tracking.NewService(trackingRepo)
	log.Info().Msg("tracking service initialized")

	// Initialize policy repository and service
	policyRepo := policy.NewPostgresRepository(pool)
	policyService := policy.NewService(policy.ServiceConfig{
		Repository: policyRepo,
		Logger:     log,
		CacheTTL:   1 * time.Minute,
	})
	log.Info().Msg("policy service initialized")

	// Assessment store backing the per-tourist safety-score endpoints
	assessmentRepo := safety.NewPostgresRepository(pool)

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:              Version,
		BuildTime:            BuildTime,
		Logger:               log,
		ServiceName:          serviceName,
		Metrics:              metrics,
		DB:                   pool,
		Backends:             backends,
		ChatService:          chatService,
		IconService:          iconService,
		ItineraryService:     itineraryService,
		TrackingService:      trackingService,
		PolicyService:        policyService,
		PlaceResolver:        gazetteer,
		AssessmentRepository: assessmentRepo,
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
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
