// Package store defines the collaborator interfaces the reconciliation engine
// consumes (the transaction feed, the obligation ledger, and the apply sink)
// together with a SQLite-backed implementation.
//
// The interfaces are the engine's idempotence guard: the listing queries must
// exclude already-claimed records, and ApplyMatch must perform the paired
// state transition atomically.
package store

import (
	"context"

	"github.com/dvillagrablanco/inmova-app-sub030/internal/models"
)

// TransactionSource lists bank transactions awaiting reconciliation.
type TransactionSource interface {
	// ListUnmatchedTransactions returns transactions in pending_review with a
	// positive amount and no linked obligation, ordered by posted date
	// descending. limit <= 0 means no limit.
	ListUnmatchedTransactions(ctx context.Context, limit int) ([]*models.Transaction, error)
}

// ObligationSource lists rent obligations still open for payment.
type ObligationSource interface {
	// ListOpenObligations returns obligations in pending or overdue status
	// with no linked transactions, ordered by due date ascending.
	// limit <= 0 means no limit.
	ListOpenObligations(ctx context.Context, limit int) ([]*models.Obligation, error)
}

// ApplySink performs the paired state transition for an accepted suggestion.
type ApplySink interface {
	// ApplyMatch transitions the transaction to reconciled and the obligation
	// to paid as a single atomic unit, re-verifying at apply time that both
	// are still unclaimed. A concurrent claim returns an apply error with
	// code already_claimed; no partial state is ever left behind.
	ApplyMatch(ctx context.Context, transactionID, obligationID string, confidence int, reason, actor string) error
}

// Store combines the three collaborator interfaces behind one backing store.
type Store interface {
	TransactionSource
	ObligationSource
	ApplySink
	Close() error
}
