// Package api provides the HTTP API for TripSentry.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/tripsentry/tripsentry/internal/api/handler"
	"github.com/tripsentry/tripsentry/internal/api/middleware"
	"github.com/tripsentry/tripsentry/internal/chat"
	"github.com/tripsentry/tripsentry/internal/icons"
	"github.com/tripsentry/tripsentry/internal/itinerary"
	"github.com/tripsentry/tripsentry/internal/policy"
	"github.com/tripsentry/tripsentry/internal/provider/resilience"
	"github.com/tripsentry/tripsentry/internal/safety"
	"github.com/tripsentry/tripsentry/internal/tracking"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	// DB is pinged by the readiness and status endpoints. Optional.
	DB handler.Pinger

	// Backends reports external backend health on the status endpoint.
	// Optional.
	Backends *resilience.Registry

	ChatService      *chat.Service
	IconService      *icons.Service
	ItineraryService *itinerary.Service
	TrackingService  *tracking.Service
	PolicyService    *policy.Service

	// PlaceResolver resolves itinerary labels during stateless evaluation.
	PlaceResolver safety.PlaceResolver

	// AssessmentRepository serves stored assessments. Optional.
	AssessmentRepository safety.Repository
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "tripsentry-api"
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
	r.Use(middleware.RequireJSON)          // Reject non-JSON request bodies

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.DB, cfg.Backends)
	safetyHandler := handler.NewSafetyHandler(cfg.PolicyService, cfg.PlaceResolver, cfg.AssessmentRepository, cfg.Logger)
	chatHandler := handler.NewChatHandler(cfg.ChatService)
	iconsHandler := handler.NewIconsHandler(cfg.IconService)
	itineraryHandler := handler.NewItineraryHandler(cfg.ItineraryService)
	trackingHandler := handler.NewTrackingHandler(cfg.TrackingService)
	policyHandler := handler.NewPolicyHandler(cfg.PolicyService)

	// Create rate limit middleware for different endpoint categories
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Stateless evaluation - expensive compute, strict rate limiting
		r.With(expensiveRateLimit).Post("/safety-score", safetyHandler.EvaluateSafetyScore)

		// Assistant conversation - backed by the generation API
		r.With(expensiveRateLimit).Post("/chat", chatHandler.Chat)

		// Icon suggestion - backed by the generation API
		r.With(expensiveRateLimit).Post("/icons:suggest", iconsHandler.SuggestIcon)

		// Per-tourist resources - tourist-scoped rate limiting
		r.Route("/tourists/{touristId}", func(r chi.Router) {
			r.Use(middleware.RateLimitByTourist(middleware.StandardRateLimit)) // 100 req/min per tourist

			r.Get("/safety-score", safetyHandler.GetTouristSafetyScore)
			r.Get("/safety-score/history", safetyHandler.ListTouristSafetyScores)

			r.Route("/locations", func(r chi.Router) {
				r.Get("/", trackingHandler.ListLocations)
				r.Post("/", trackingHandler.ReportLocations)
			})

			r.Route("/itinerary", func(r chi.Router) {
				r.Get("/", itineraryHandler.ListEntries)
				r.Post("/", itineraryHandler.CreateEntry)
				r.Route("/{entryId}", func(r chi.Router) {
					r.Get("/", itineraryHandler.GetEntry)
					r.Put("/", itineraryHandler.UpdateEntry)
					r.Delete("/", itineraryHandler.DeleteEntry)
				})
			})
		})

		// Admin endpoints - for authority operations
		r.Route("/admin", func(r chi.Router) {
			r.Use(standardRateLimit)

			r.Route("/policy", func(r chi.Router) {
				r.Get("/", policyHandler.GetPolicy)
				r.Put("/", policyHandler.UpdatePolicy)
				r.Post("/invalidate", policyHandler.InvalidatePolicyCache)
			})
		})
	})

	return r
}
