package postgres

import (
	"context"
	"fmt"

	"catalog-analytics/internal/domain"
	"catalog-analytics/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// eventStore serializes work on a single dedup key with a transaction-scoped
// advisory lock. The lock is released by COMMIT or ROLLBACK, so a crashed or
// cancelled request can never leave it held.
type eventStore struct {
	db *pgxpool.Pool
}

// NewEventStore creates a new PostgreSQL event store
func NewEventStore(db *pgxpool.Pool) repository.EventStore {
	return &eventStore{db: db}
}

// eventTx binds the ledger and counter repositories to one transaction
type eventTx struct {
	ledger   *ledgerRepository
	counters *counterRepository
}

func (t *eventTx) Ledger() repository.LedgerRepository   { return t.ledger }
func (t *eventTx) Counters() repository.CounterRepository { return t.counters }

// WithEventLock runs fn inside a transaction that holds
// pg_advisory_xact_lock for key. Two requests for the same key queue on the
// lock, so the second one sees the first one's ledger row.
func (s *eventStore) WithEventLock(ctx context.Context, key domain.EventKey, fn func(tx repository.EventTx) error) error {
	lockKey := key.String()
	return s.inTx(ctx, &lockKey, fn)
}

// WithTx runs fn inside a plain transaction
func (s *eventStore) WithTx(ctx context.Context, fn func(tx repository.EventTx) error) error {
	return s.inTx(ctx, nil, fn)
}

func (s *eventStore) inTx(ctx context.Context, lockKey *string, fn func(tx repository.EventTx) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin event transaction: %w", err)
	}
	// No-op after a successful commit.
	defer func() {
		_ = tx.Rollback(context.WithoutCancel(ctx))
	}()

	if lockKey != nil {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, *lockKey); err != nil {
			return fmt.Errorf("failed to lock event key: %w", err)
		}
	}

	if err := fn(&eventTx{
		ledger:   &ledgerRepository{db: tx},
		counters: &counterRepository{db: tx},
	}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit event transaction: %w", err)
	}

	return nil
}
