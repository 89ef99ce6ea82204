package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"catalog-analytics/internal/domain"
	"catalog-analytics/internal/metrics"
	"catalog-analytics/internal/repository"
	"catalog-analytics/pkg/logger"

	"golang.org/x/sync/singleflight"
)

// DedupCache is a fast path in front of the ledger. A hit proves a
// counted event inside the window; a miss proves nothing.
type DedupCache interface {
	Seen(ctx context.Context, key domain.EventKey) (bool, error)
	MarkCounted(ctx context.Context, key domain.EventKey, ttl time.Duration) error
}

// CleanupTrigger starts a ledger purge without waiting for it
type CleanupTrigger interface {
	Trigger()
}

// IngestConfig holds the tunables of the ingestion path
type IngestConfig struct {
	Window              time.Duration
	CleanupProbability  float64
	UnknownClientPolicy domain.UnknownClientPolicy
}

// IngestService decides whether a view or click is counted.
//
// The check-record-increment sequence for one (client, product, action)
// runs under the store's per-key lock, so concurrent identical events
// across instances count once. Within one process a singleflight gate
// collapses identical in-flight events before they reach the database.
type IngestService struct {
	store   repository.EventStore
	cache   DedupCache
	cleaner CleanupTrigger
	cfg     IngestConfig
	logger  *logger.Logger
	gate    singleflight.Group

	now  func() time.Time
	roll func() float64
}

// NewIngestService creates a new ingestion service. cache and cleaner may be nil.
func NewIngestService(store repository.EventStore, cache DedupCache, cleaner CleanupTrigger, cfg IngestConfig, log *logger.Logger) *IngestService {
	if cfg.Window <= 0 {
		cfg.Window = domain.DefaultDedupWindow
	}
	if cfg.UnknownClientPolicy == "" {
		cfg.UnknownClientPolicy = domain.UnknownClientShared
	}

	return &IngestService{
		store:   store,
		cache:   cache,
		cleaner: cleaner,
		cfg:     cfg,
		logger:  log,
		now:     time.Now,
		roll:    rand.Float64,
	}
}

// Track ingests one event. clientID may be empty or domain.UnknownClient
// when the caller could not be identified.
//
// Validation errors are returned as domain.ErrInvalidProductID or
// domain.ErrInvalidAction before anything is written. Storage errors wrap
// domain.ErrStorageUnavailable and leave no partial state behind.
func (s *IngestService) Track(ctx context.Context, productID int64, action domain.Action, clientID string) (domain.Outcome, error) {
	if err := domain.ValidateProductID(productID); err != nil {
		metrics.RecordEvent("invalid", metrics.OutcomeInvalid)
		return domain.OutcomeDeduplicated, err
	}
	if !action.Valid() {
		metrics.RecordEvent("invalid", metrics.OutcomeInvalid)
		return domain.OutcomeDeduplicated, domain.ErrInvalidAction
	}

	unresolved := clientID == "" || clientID == domain.UnknownClient
	if unresolved {
		clientID = domain.UnknownClient
		metrics.RecordUnknownClient()
	}

	key := domain.EventKey{ClientID: clientID, ProductID: productID, Action: action}
	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"product_id": productID,
		"action":     action,
	})

	start := time.Now()
	var (
		outcome domain.Outcome
		err     error
	)
	if unresolved && s.cfg.UnknownClientPolicy == domain.UnknownClientDistinct {
		outcome, err = s.countAlways(ctx, key)
	} else {
		outcome, err = s.countOnce(ctx, key)
	}
	metrics.IngestDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.RecordEvent(string(action), metrics.OutcomeError)
		log.Error("failed to ingest event", "error", err)
		return domain.OutcomeDeduplicated, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}

	metrics.RecordEvent(string(action), outcome.String())
	log.Debug("event ingested",
		"client_id", clientID,
		"outcome", outcome.String(),
	)

	s.maybeCleanup()

	return outcome, nil
}

// countOnce counts key at most once per window
func (s *IngestService) countOnce(ctx context.Context, key domain.EventKey) (domain.Outcome, error) {
	if s.cache != nil {
		seen, err := s.cache.Seen(ctx, key)
		switch {
		case err != nil:
			s.logger.Warn("dedup cache unavailable, falling back to ledger", "error", err)
		case seen:
			metrics.RecordDedupHit(metrics.DedupSourceCache)
			return domain.OutcomeDeduplicated, nil
		}
	}

	// Do runs the function on the calling goroutine, so executed is only
	// ever set by the caller that did the work.
	executed := false
	v, err, _ := s.gate.Do(key.String(), func() (any, error) {
		executed = true
		return s.checkAndCount(ctx, key)
	})
	if err != nil {
		return domain.OutcomeDeduplicated, err
	}
	if !executed {
		// Joined an identical in-flight event. At most one of them counts.
		metrics.RecordDedupHit(metrics.DedupSourceGate)
		return domain.OutcomeDeduplicated, nil
	}

	return v.(domain.Outcome), nil
}

// checkAndCount runs the ledger check and the conditional writes as one unit
func (s *IngestService) checkAndCount(ctx context.Context, key domain.EventKey) (domain.Outcome, error) {
	outcome := domain.OutcomeDeduplicated
	var recordedAt time.Time

	err := s.store.WithEventLock(ctx, key, func(tx repository.EventTx) error {
		now := s.now()

		recent, err := tx.Ledger().HasRecent(ctx, key, domain.WindowStart(now, s.cfg.Window))
		if err != nil {
			return fmt.Errorf("failed to check ledger: %w", err)
		}
		if recent {
			return nil
		}

		if err := s.record(ctx, tx, key, now); err != nil {
			return err
		}
		outcome = domain.OutcomeCounted
		recordedAt = now
		return nil
	})
	if err != nil {
		return domain.OutcomeDeduplicated, err
	}

	if !outcome.Counted() {
		metrics.RecordDedupHit(metrics.DedupSourceLedger)
		return outcome, nil
	}

	if s.cache != nil {
		// The key must expire when the ledger entry leaves the window.
		if ttl := s.cfg.Window - s.now().Sub(recordedAt); ttl > 0 {
			if err := s.cache.MarkCounted(ctx, key, ttl); err != nil {
				s.logger.Warn("failed to populate dedup cache", "error", err)
			}
		}
	}

	return outcome, nil
}

// countAlways records and counts key without a dedup check
func (s *IngestService) countAlways(ctx context.Context, key domain.EventKey) (domain.Outcome, error) {
	// Nothing is checked, so there is nothing to serialize on.
	err := s.store.WithTx(ctx, func(tx repository.EventTx) error {
		return s.record(ctx, tx, key, s.now())
	})
	if err != nil {
		return domain.OutcomeDeduplicated, err
	}
	return domain.OutcomeCounted, nil
}

func (s *IngestService) record(ctx context.Context, tx repository.EventTx, key domain.EventKey, now time.Time) error {
	if err := tx.Ledger().Record(ctx, domain.NewLedgerEntry(key, now)); err != nil {
		return fmt.Errorf("failed to record ledger entry: %w", err)
	}

	var err error
	switch key.Action {
	case domain.ActionView:
		err = tx.Counters().IncrementView(ctx, key.ProductID, now)
	case domain.ActionClick:
		err = tx.Counters().IncrementClick(ctx, key.ProductID, now)
	}
	if err != nil {
		return fmt.Errorf("failed to increment %s counter: %w", key.Action, err)
	}

	return nil
}

// maybeCleanup fires a detached purge with the configured probability
func (s *IngestService) maybeCleanup() {
	if s.cleaner == nil || s.cfg.CleanupProbability <= 0 {
		return
	}
	if s.roll() < s.cfg.CleanupProbability {
		s.cleaner.Trigger()
	}
}
