package repository

import (
	"context"
	"time"

	"catalog-analytics/internal/domain"
)

// LedgerRepository is the dedup ledger: an append-only record of accepted
// events, queried by exact (client, product, action) key.
type LedgerRepository interface {
	// HasRecent reports whether an entry for key exists with
	// recorded_at strictly after since.
	HasRecent(ctx context.Context, key domain.EventKey, since time.Time) (bool, error)

	// Record appends an entry. Duplicate content is allowed.
	Record(ctx context.Context, entry *domain.LedgerEntry) error

	// PurgeOlderThan deletes entries with recorded_at strictly before
	// cutoff and returns how many were removed. Safe to call concurrently
	// with reads and writes, and idempotent.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// CounterRepository holds one aggregate row per product. Both increments
// are single atomic upserts, never a read followed by a write.
type CounterRepository interface {
	// IncrementView creates the row with view_count = 1 or adds 1.
	IncrementView(ctx context.Context, productID int64, at time.Time) error

	// IncrementClick creates the row with click_count = 1 or adds 1,
	// and sets last_clicked_at = at on every call.
	IncrementClick(ctx context.Context, productID int64, at time.Time) error
}

// AnalyticsReader serves read-only aggregate queries.
type AnalyticsReader interface {
	// Totals sums all aggregate rows.
	Totals(ctx context.Context) (*domain.Totals, error)

	// Ranked returns every aggregate joined with its product, ordered by
	// click_count DESC, view_count DESC.
	Ranked(ctx context.Context) ([]*domain.ProductAnalytics, error)
}

// EventTx exposes the ledger and counters bound to one unit of work.
type EventTx interface {
	Ledger() LedgerRepository
	Counters() CounterRepository
}

// EventStore runs the check-record-increment sequence for a single key
// as one atomic unit.
type EventStore interface {
	// WithEventLock runs fn while holding an exclusive lock on key.
	// Writes made through tx commit only if fn returns nil; any error,
	// including context cancellation, discards all of them.
	WithEventLock(ctx context.Context, key domain.EventKey, fn func(tx EventTx) error) error

	// WithTx runs fn in a transaction without taking any key lock.
	// Commit and rollback follow the same rules as WithEventLock.
	WithTx(ctx context.Context, fn func(tx EventTx) error) error
}
