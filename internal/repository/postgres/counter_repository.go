package postgres

import (
	"context"
	"fmt"
	"time"

	"catalog-analytics/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// counterRepository maintains the per-product analytics row
type counterRepository struct {
	db querier
}

// NewCounterRepository creates a counter repository backed by the pool
func NewCounterRepository(db *pgxpool.Pool) repository.CounterRepository {
	return &counterRepository{db: db}
}

// IncrementView atomically creates or bumps the product's view counter.
// ON CONFLICT makes concurrent first events for a product safe: exactly
// one INSERT wins and the rest become updates.
func (r *counterRepository) IncrementView(ctx context.Context, productID int64, at time.Time) error {
	query := `
		INSERT INTO analytics (product_id, view_count, created_at, updated_at)
		VALUES ($1, 1, $2, $2)
		ON CONFLICT (product_id)
		DO UPDATE SET
			view_count = analytics.view_count + 1,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.Exec(ctx, query, productID, at); err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}

	return nil
}

// IncrementClick atomically creates or bumps the product's click counter
// and stamps last_clicked_at on every counted click
func (r *counterRepository) IncrementClick(ctx context.Context, productID int64, at time.Time) error {
	query := `
		INSERT INTO analytics (product_id, click_count, last_clicked_at, created_at, updated_at)
		VALUES ($1, 1, $2, $2, $2)
		ON CONFLICT (product_id)
		DO UPDATE SET
			click_count = analytics.click_count + 1,
			last_clicked_at = EXCLUDED.last_clicked_at,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.Exec(ctx, query, productID, at); err != nil {
		return fmt.Errorf("failed to increment clicks: %w", err)
	}

	return nil
}
