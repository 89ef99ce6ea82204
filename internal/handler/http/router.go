package http

import (
	"net/http"

	"catalog-analytics/pkg/logger"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions configures the optional parts of the router
type RouterOptions struct {
	AllowedOrigin string
	EnableMetrics bool

	// Limiter guards the tracking endpoint. Nil disables rate limiting.
	Limiter RateLimiter
}

// NewRouter builds the HTTP surface with its middleware chain
func NewRouter(h *Handler, log *logger.Logger, opts RouterOptions) http.Handler {
	r := mux.NewRouter()
	r.Use(MetricsMiddleware)
	r.NotFoundHandler = MetricsMiddleware(http.HandlerFunc(h.NotFound))

	var track http.Handler = http.HandlerFunc(h.Track)
	if opts.Limiter != nil {
		track = RateLimitMiddleware(opts.Limiter, log)(track)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.Handle("/analytics/track", track).Methods(http.MethodPost)
	api.HandleFunc("/analytics/cleanup", h.Cleanup).Methods(http.MethodGet, http.MethodPost)
	api.HandleFunc("/analytics/totals", h.Totals).Methods(http.MethodGet)
	api.HandleFunc("/analytics/ranked", h.Ranked).Methods(http.MethodGet)
	api.HandleFunc("/analytics", h.Summary).Methods(http.MethodGet)
	api.HandleFunc("/openapi.json", ServeOpenAPISpec).Methods(http.MethodGet)

	r.HandleFunc("/health/live", h.HealthLive).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", h.HealthReady).Methods(http.MethodGet)

	if opts.EnableMetrics {
		r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}

	origin := opts.AllowedOrigin
	if origin == "" {
		origin = "*"
	}

	return Chain(
		RecoveryMiddleware(log),
		RequestIDMiddleware,
		LoggingMiddleware(log),
		CORSMiddleware(origin),
	)(r)
}
