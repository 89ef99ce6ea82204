package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"catalog-analytics/internal/cleanup"
	"catalog-analytics/internal/domain"
	"catalog-analytics/internal/service"
	"catalog-analytics/pkg/logger"
	"catalog-analytics/pkg/validator"
)

// maxTrackBodyBytes caps the ingestion payload
const maxTrackBodyBytes = 4 << 10

// IngestService interface defines the ingestion methods needed by the handler
type IngestService interface {
	Track(ctx context.Context, productID int64, action domain.Action, clientID string) (domain.Outcome, error)
}

// ReportService interface defines the read methods needed by the handler
type ReportService interface {
	Totals(ctx context.Context) (*domain.Totals, error)
	Ranked(ctx context.Context) ([]*domain.ProductAnalytics, error)
	Summary(ctx context.Context) (*service.Summary, error)
}

// Cleaner purges expired ledger entries on demand
type Cleaner interface {
	Run(ctx context.Context) (*cleanup.Result, error)
}

// Pinger reports whether the database is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	ingest  IngestService
	reports ReportService
	cleaner Cleaner
	db      Pinger
	logger  *logger.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(ingest IngestService, reports ReportService, cleaner Cleaner, db Pinger, log *logger.Logger) *Handler {
	return &Handler{
		ingest:  ingest,
		reports: reports,
		cleaner: cleaner,
		db:      db,
		logger:  log,
	}
}

// Track handles POST /api/analytics/track
func (h *Handler) Track(w http.ResponseWriter, r *http.Request) {
	var req TrackRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTrackBodyBytes))
	if err := dec.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidRequest, "Invalid JSON body")
		return
	}

	productID, action, err := parseTrackRequest(req)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	outcome, err := h.ingest.Track(r.Context(), productID, action, ResolveClientID(r))
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, TrackResponse{
		Accepted: true,
		Counted:  outcome.Counted(),
	})
}

// Cleanup handles GET and POST /api/analytics/cleanup
func (h *Handler) Cleanup(w http.ResponseWriter, r *http.Request) {
	result, err := h.cleaner.Run(r.Context())
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, CleanupResponse{
		Removed: result.Removed,
		Cutoff:  result.Cutoff,
	}, "Old ledger entries cleaned up")
}

// Summary handles GET /api/analytics
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reports.Summary(r.Context())
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, SummaryResponse{
		Analytics: toAnalyticsResponses(summary.Analytics),
		Stats:     toTotalsResponse(summary.Stats),
	}, "")
}

// Totals handles GET /api/analytics/totals
func (h *Handler) Totals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.reports.Totals(r.Context())
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, toTotalsResponse(totals), "")
}

// Ranked handles GET /api/analytics/ranked
func (h *Handler) Ranked(w http.ResponseWriter, r *http.Request) {
	ranked, err := h.reports.Ranked(r.Context())
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, toAnalyticsResponses(ranked), "")
}

// HealthLive handles GET /health/live
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// HealthReady handles GET /health/ready
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.WithContext(r.Context()).Warn("Readiness check failed", "error", err)
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NotFound handles unmatched routes
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, CodeNotFound, "Not found")
}

// parseTrackRequest validates the wire payload, accepting legacy field names
func parseTrackRequest(req TrackRequest) (int64, domain.Action, error) {
	rawID := req.ProductID
	if len(rawID) == 0 {
		rawID = req.LegacyProductID
	}
	productID, err := validator.ParseProductID(rawID)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %w", domain.ErrInvalidProductID, err)
	}

	rawAction := req.Action
	if len(rawAction) == 0 {
		rawAction = req.LegacyType
	}
	name, err := validator.ParseAction(rawAction)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %w", domain.ErrInvalidAction, err)
	}
	action, err := domain.ParseAction(name)
	if err != nil {
		return 0, "", err
	}

	return productID, action, nil
}

// respondDomainError maps service errors to status codes. Storage details
// are logged, never returned to the caller.
func (h *Handler) respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidProductID):
		respondError(w, http.StatusBadRequest, CodeInvalidProductID, err.Error())
	case errors.Is(err, domain.ErrInvalidAction):
		respondError(w, http.StatusBadRequest, CodeInvalidAction, err.Error())
	default:
		h.logger.WithContext(r.Context()).Error("Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		respondError(w, http.StatusInternalServerError, CodeInternalError, "Internal server error")
	}
}
