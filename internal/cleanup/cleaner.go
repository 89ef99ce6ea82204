package cleanup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"catalog-analytics/internal/domain"
	"catalog-analytics/internal/metrics"
	"catalog-analytics/internal/repository"
	"catalog-analytics/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Trigger labels used in logs and metrics
const (
	TriggerManual    = "manual"
	TriggerInline    = "inline"
	TriggerScheduled = "scheduled"
)

// DefaultTimeout bounds a detached purge
const DefaultTimeout = 30 * time.Second

var (
	ErrAlreadyStarted = errors.New("cleanup schedule already started")
	ErrStopped        = errors.New("cleaner stopped")
)

// Result describes one completed purge
type Result struct {
	Removed int64
	Cutoff  time.Time
}

// Cleaner removes ledger entries that fell out of the dedup window.
//
// Purges are idempotent and only touch entries older than the window, so
// they may overlap with ingestion freely. Detached purges (Trigger and the
// cron schedule) are limited to one in flight per process.
type Cleaner struct {
	ledger  repository.LedgerRepository
	window  time.Duration
	timeout time.Duration
	logger  *logger.Logger
	now     func() time.Time

	running atomic.Bool
	wg      sync.WaitGroup

	// mu guards scheduler and stopping. wg.Add only happens under mu while
	// stopping is false, so it cannot race with wg.Wait in Stop.
	mu        sync.Mutex
	scheduler *cron.Cron
	stopping  bool
}

// NewCleaner creates a new cleaner
func NewCleaner(ledger repository.LedgerRepository, window, timeout time.Duration, log *logger.Logger) *Cleaner {
	if window <= 0 {
		window = domain.DefaultDedupWindow
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Cleaner{
		ledger:  ledger,
		window:  window,
		timeout: timeout,
		logger:  log,
		now:     time.Now,
	}
}

// Run purges synchronously and returns what was removed
func (c *Cleaner) Run(ctx context.Context) (*Result, error) {
	return c.run(ctx, TriggerManual)
}

// Trigger starts a purge in the background and returns immediately.
// It does nothing if a detached purge is already running.
func (c *Cleaner) Trigger() {
	c.detach(TriggerInline)
}

// Start schedules purges using a standard cron spec or descriptor
// such as "@hourly".
func (c *Cleaner) Start(spec string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopping {
		return ErrStopped
	}
	if c.scheduler != nil {
		return ErrAlreadyStarted
	}

	cl := cronLogger{c.logger}
	scheduler := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl)))
	if _, err := scheduler.AddFunc(spec, func() { c.detach(TriggerScheduled) }); err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", spec, err)
	}
	scheduler.Start()
	c.scheduler = scheduler

	c.logger.Info("Cleanup schedule started", "schedule", spec)
	return nil
}

// Stop ends the schedule and waits for detached purges until ctx is done.
// Triggers arriving after Stop are ignored.
func (c *Cleaner) Stop(ctx context.Context) error {
	c.mu.Lock()
	c.stopping = true
	if c.scheduler != nil {
		c.scheduler.Stop()
		c.scheduler = nil
	}
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Cleaner) detach(trigger string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopping || !c.running.CompareAndSwap(false, true) {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.running.Store(false)

		// Detached from any request so a finished response cannot cancel it.
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		// Errors are logged and counted inside run.
		_, _ = c.run(ctx, trigger)
	}()
}

func (c *Cleaner) run(ctx context.Context, trigger string) (*Result, error) {
	start := time.Now()
	cutoff := domain.WindowStart(c.now(), c.window)

	removed, err := c.ledger.PurgeOlderThan(ctx, cutoff)
	metrics.RecordCleanup(trigger, removed, time.Since(start).Seconds(), err)
	if err != nil {
		c.logger.Error("Ledger cleanup failed",
			"trigger", trigger,
			"cutoff", cutoff,
			"error", err,
		)
		return nil, fmt.Errorf("%w: failed to purge ledger: %w", domain.ErrStorageUnavailable, err)
	}

	c.logger.Info("Ledger cleanup finished",
		"trigger", trigger,
		"cutoff", cutoff,
		"removed", removed,
		"duration", time.Since(start),
	)

	return &Result{Removed: removed, Cutoff: cutoff}, nil
}

// cronLogger routes scheduler messages into the service logger
type cronLogger struct {
	logger *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
