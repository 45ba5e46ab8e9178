// Package storage defines the persistence contracts consumed by the
// pipeline: the credit ledger and the rewrite run record store.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrInsufficientCredits is returned by CheckAndReserve when the balance
// is below one credit.
var ErrInsufficientCredits = errors.New("insufficient credits")

// CreditLedger brackets a pipeline run. CheckAndReserve is the strict
// precondition before any paid generation work; Commit and Refund are
// best-effort bracketing operations, not a two-phase commit.
type CreditLedger interface {
	// CheckAndReserve verifies the user has at least one credit and
	// reserves it, returning the balance after the reservation.
	CheckAndReserve(ctx context.Context, userID string) (remaining int64, err error)

	// Commit finalizes a reservation after a successful run.
	Commit(ctx context.Context, userID string) error

	// Refund releases a reservation after a failed run.
	Refund(ctx context.Context, userID string) error

	// Balance reads the current settled balance.
	Balance(ctx context.Context, userID string) (int64, error)
}

// RewriteRecord is one persisted pipeline run, success or failure.
type RewriteRecord struct {
	ID           string
	UserID       string
	Address      string
	Status       string // "completed" or "failed"
	ErrorType    string
	PromptTokens int
	DurationNS   int64
	Variations   map[string]string
	CreatedAt    time.Time
}

// RecordStore persists rewrite runs. Writes are best-effort from the
// pipeline's perspective.
type RecordStore interface {
	SaveRewrite(ctx context.Context, rec *RewriteRecord) error
	GetRewrite(ctx context.Context, id string) (*RewriteRecord, error)
}
