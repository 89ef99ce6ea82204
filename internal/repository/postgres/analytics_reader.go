package postgres

import (
	"context"
	"fmt"

	"catalog-analytics/internal/domain"
	"catalog-analytics/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// analyticsReader is the PostgreSQL implementation for aggregate reads
type analyticsReader struct {
	db querier
}

// NewAnalyticsReader creates a new PostgreSQL analytics reader
func NewAnalyticsReader(db *pgxpool.Pool) repository.AnalyticsReader {
	return &analyticsReader{db: db}
}

// Totals sums every analytics row in one statement so the three figures
// come from the same snapshot
func (r *analyticsReader) Totals(ctx context.Context) (*domain.Totals, error) {
	query := `
		SELECT
			COALESCE(SUM(view_count), 0)::BIGINT,
			COALESCE(SUM(click_count), 0)::BIGINT,
			COUNT(DISTINCT product_id)
		FROM analytics
	`

	totals := &domain.Totals{}
	err := r.db.QueryRow(ctx, query).Scan(
		&totals.TotalViews,
		&totals.TotalClicks,
		&totals.TotalProducts,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get totals: %w", err)
	}

	return totals, nil
}

// Ranked returns all aggregates joined with their products, best first
func (r *analyticsReader) Ranked(ctx context.Context) ([]*domain.ProductAnalytics, error) {
	query := `
		SELECT a.id, a.product_id, a.click_count, a.view_count,
		       a.last_clicked_at, a.created_at, a.updated_at,
		       p.id, p.photo_url, p.link, p.title, p.description,
		       p.display_order, p.created_at, p.updated_at
		FROM analytics a
		JOIN products p ON a.product_id = p.id
		ORDER BY a.click_count DESC, a.view_count DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get ranked analytics: %w", err)
	}
	defer rows.Close()

	ranked := []*domain.ProductAnalytics{}
	for rows.Next() {
		item := &domain.ProductAnalytics{Product: &domain.Product{}}
		err := rows.Scan(
			&item.ID,
			&item.ProductID,
			&item.ClickCount,
			&item.ViewCount,
			&item.LastClickedAt,
			&item.CreatedAt,
			&item.UpdatedAt,
			&item.Product.ID,
			&item.Product.PhotoURL,
			&item.Product.Link,
			&item.Product.Title,
			&item.Product.Description,
			&item.Product.DisplayOrder,
			&item.Product.CreatedAt,
			&item.Product.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analytics row: %w", err)
		}
		ranked = append(ranked, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analytics: %w", err)
	}

	return ranked, nil
}
