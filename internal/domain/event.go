package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Action is the kind of engagement being tracked for a product.
type Action string

const (
	ActionView  Action = "view"
	ActionClick Action = "click"
)

// MaxProductID is the largest identifier the products table can hold.
const MaxProductID = math.MaxInt32

// UnknownClient is the client identifier used when no proxy header
// identifies the caller.
const UnknownClient = "unknown"

// DefaultDedupWindow is the rolling interval within which an identical
// (client, product, action) event is counted at most once.
const DefaultDedupWindow = 24 * time.Hour

// Domain errors. Handlers check these with errors.Is to pick a status code.
var (
	ErrInvalidProductID   = errors.New("invalid product_id")
	ErrInvalidAction      = errors.New("invalid action")
	ErrStorageUnavailable = errors.New("analytics storage unavailable")
)

// ParseAction converts a wire value into an Action.
func ParseAction(s string) (Action, error) {
	if a := Action(s); a.Valid() {
		return a, nil
	}
	return "", fmt.Errorf(`%w: must be "view" or "click"`, ErrInvalidAction)
}

// Valid reports whether a is one of the recognized actions.
func (a Action) Valid() bool {
	return a == ActionView || a == ActionClick
}

// ValidateProductID rejects identifiers outside 1..MaxProductID.
func ValidateProductID(id int64) error {
	if id <= 0 || id > MaxProductID {
		return ErrInvalidProductID
	}
	return nil
}

// Outcome is the result of a validated ingestion event.
type Outcome int

const (
	// OutcomeDeduplicated means the event was accepted but not counted.
	OutcomeDeduplicated Outcome = iota
	// OutcomeCounted means the event was recorded and the counter incremented.
	OutcomeCounted
)

// Counted reports whether the outcome incremented a counter.
func (o Outcome) Counted() bool {
	return o == OutcomeCounted
}

func (o Outcome) String() string {
	if o == OutcomeCounted {
		return "counted"
	}
	return "deduplicated"
}

// EventKey identifies the dedup scope of an event.
type EventKey struct {
	ClientID  string
	ProductID int64
	Action    Action
}

// String renders the key in a stable form usable as a lock or cache key.
// The client goes last because it is the only free-form component.
func (k EventKey) String() string {
	return fmt.Sprintf("%s:%d:%s", k.Action, k.ProductID, k.ClientID)
}

// LedgerEntry records one accepted event. Entries are append-only and
// are removed only once they fall outside the dedup window.
type LedgerEntry struct {
	ID         int64
	ClientID   string
	ProductID  int64
	Action     Action
	RecordedAt time.Time
}

// NewLedgerEntry creates the ledger entry for an accepted event.
func NewLedgerEntry(key EventKey, recordedAt time.Time) *LedgerEntry {
	return &LedgerEntry{
		ClientID:   key.ClientID,
		ProductID:  key.ProductID,
		Action:     key.Action,
		RecordedAt: recordedAt,
	}
}

// Key returns the dedup key this entry answers for.
func (e *LedgerEntry) Key() EventKey {
	return EventKey{ClientID: e.ClientID, ProductID: e.ProductID, Action: e.Action}
}

// WindowStart returns the earliest recorded_at, exclusive, that still
// counts as recent at instant now.
func WindowStart(now time.Time, window time.Duration) time.Time {
	return now.Add(-window)
}

// UnknownClientPolicy decides how events from unresolved clients are
// deduplicated.
type UnknownClientPolicy string

const (
	// UnknownClientShared puts every unresolved client under one dedup key,
	// so only the first such event per product and action counts per window.
	UnknownClientShared UnknownClientPolicy = "shared"
	// UnknownClientDistinct treats every unresolved event as a new client.
	// Such events skip the dedup check and are always counted.
	UnknownClientDistinct UnknownClientPolicy = "distinct"
)

var ErrInvalidClientPolicy = errors.New(`unknown client policy must be "shared" or "distinct"`)

// ParseUnknownClientPolicy converts a configuration value into a policy.
func ParseUnknownClientPolicy(s string) (UnknownClientPolicy, error) {
	switch p := UnknownClientPolicy(s); p {
	case UnknownClientShared, UnknownClientDistinct:
		return p, nil
	default:
		return "", ErrInvalidClientPolicy
	}
}
