package http

import (
	"encoding/json"
	"net/http"
	"time"

	"catalog-analytics/internal/domain"
)

// Error codes returned in ErrorResponse.Code
const (
	CodeInvalidRequest   = "invalid_request"
	CodeInvalidProductID = "invalid_product_id"
	CodeInvalidAction    = "invalid_action"
	CodeRateLimited      = "rate_limited"
	CodeInternalError    = "internal_error"
	CodeNotFound         = "not_found"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// SuccessResponse represents a successful response
type SuccessResponse struct {
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

// TrackRequest is the ingestion payload. productId and type are the
// field names used by older clients.
type TrackRequest struct {
	ProductID json.RawMessage `json:"product_id"`
	Action    json.RawMessage `json:"action"`

	LegacyProductID json.RawMessage `json:"productId,omitempty"`
	LegacyType      json.RawMessage `json:"type,omitempty"`
}

// TrackResponse reports whether the event was counted
type TrackResponse struct {
	Accepted bool `json:"accepted"`
	Counted  bool `json:"counted"`
}

// CleanupResponse describes a completed purge
type CleanupResponse struct {
	Removed int64     `json:"removed"`
	Cutoff  time.Time `json:"cutoff"`
}

type ProductResponse struct {
	ID           int64     `json:"id"`
	PhotoURL     string    `json:"photo_url"`
	Link         string    `json:"link"`
	Title        string    `json:"title"`
	Description  *string   `json:"description,omitempty"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ProductAnalyticsResponse struct {
	ID            int64            `json:"id"`
	ProductID     int64            `json:"product_id"`
	ViewCount     int64            `json:"view_count"`
	ClickCount    int64            `json:"click_count"`
	LastClickedAt *time.Time       `json:"last_clicked_at"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	Product       *ProductResponse `json:"product,omitempty"`
}

type TotalsResponse struct {
	TotalViews    int64 `json:"total_views"`
	TotalClicks   int64 `json:"total_clicks"`
	TotalProducts int64 `json:"total_products"`
}

type SummaryResponse struct {
	Analytics []ProductAnalyticsResponse `json:"analytics"`
	Stats     TotalsResponse             `json:"stats"`
}

func toTotalsResponse(t *domain.Totals) TotalsResponse {
	if t == nil {
		return TotalsResponse{}
	}
	return TotalsResponse{
		TotalViews:    t.TotalViews,
		TotalClicks:   t.TotalClicks,
		TotalProducts: t.TotalProducts,
	}
}

func toAnalyticsResponses(items []*domain.ProductAnalytics) []ProductAnalyticsResponse {
	out := make([]ProductAnalyticsResponse, 0, len(items))
	for _, a := range items {
		item := ProductAnalyticsResponse{
			ID:            a.ID,
			ProductID:     a.ProductID,
			ViewCount:     a.ViewCount,
			ClickCount:    a.ClickCount,
			LastClickedAt: a.LastClickedAt,
			CreatedAt:     a.CreatedAt,
			UpdatedAt:     a.UpdatedAt,
		}
		if p := a.Product; p != nil {
			item.Product = &ProductResponse{
				ID:           p.ID,
				PhotoURL:     p.PhotoURL,
				Link:         p.Link,
				Title:        p.Title,
				Description:  p.Description,
				DisplayOrder: p.DisplayOrder,
				CreatedAt:    p.CreatedAt,
				UpdatedAt:    p.UpdatedAt,
			}
		}
		out = append(out, item)
	}
	return out
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	// Headers are already sent, so an encoding failure cannot be reported.
	_ = json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, statusCode int, code, message string) {
	respondJSON(w, statusCode, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// respondSuccess sends a success response
func respondSuccess(w http.ResponseWriter, statusCode int, data any, message string) {
	respondJSON(w, statusCode, SuccessResponse{
		Data:    data,
		Message: message,
	})
}
