package postgres

import (
	"context"
	"fmt"
	"time"

	"catalog-analytics/internal/domain"
	"catalog-analytics/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ledgerRepository is the PostgreSQL dedup ledger
type ledgerRepository struct {
	db querier
}

// NewLedgerRepository creates a ledger repository backed by the pool.
// Inside an event transaction the ledger is obtained from EventTx instead.
func NewLedgerRepository(db *pgxpool.Pool) repository.LedgerRepository {
	return &ledgerRepository{db: db}
}

// HasRecent checks for an entry newer than since for the exact key
func (r *ledgerRepository) HasRecent(ctx context.Context, key domain.EventKey, since time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM analytics_ledger
			WHERE client_id = $1 AND product_id = $2 AND action = $3
			  AND recorded_at > $4
		)
	`

	var exists bool
	err := r.db.QueryRow(ctx, query, key.ClientID, key.ProductID, string(key.Action), since).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check ledger: %w", err)
	}

	return exists, nil
}

// Record appends a ledger entry and fills in its ID
func (r *ledgerRepository) Record(ctx context.Context, entry *domain.LedgerEntry) error {
	query := `
		INSERT INTO analytics_ledger (client_id, product_id, action, recorded_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.db.QueryRow(
		ctx,
		query,
		entry.ClientID,
		entry.ProductID,
		string(entry.Action),
		entry.RecordedAt,
	).Scan(&entry.ID)

	if err != nil {
		return fmt.Errorf("failed to record ledger entry: %w", err)
	}

	return nil
}

// PurgeOlderThan deletes entries recorded strictly before cutoff
func (r *ledgerRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM analytics_ledger WHERE recorded_at < $1`

	result, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge ledger: %w", err)
	}

	return result.RowsAffected(), nil
}
