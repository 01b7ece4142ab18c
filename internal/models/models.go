// Package models defines the core entities of the rent reconciliation engine:
// bank transactions, rent obligations, and the match suggestions that pair them.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus represents the lifecycle state of a bank transaction.
type TransactionStatus string

const (
	// TransactionPendingReview is the initial state set by the bank feed.
	TransactionPendingReview TransactionStatus = "pending_review"
	// TransactionReconciled is set exactly once by the apply engine.
	TransactionReconciled TransactionStatus = "reconciled"
)

// String returns the string representation of TransactionStatus
func (s TransactionStatus) String() string {
	return string(s)
}

// IsValid checks if the transaction status is valid
func (s TransactionStatus) IsValid() bool {
	return s == TransactionPendingReview || s == TransactionReconciled
}

// ObligationStatus represents the lifecycle state of a rent obligation.
type ObligationStatus string

const (
	ObligationPending   ObligationStatus = "pending"
	ObligationOverdue   ObligationStatus = "overdue"
	ObligationPaid      ObligationStatus = "paid"
	ObligationCancelled ObligationStatus = "cancelled"
)

// String returns the string representation of ObligationStatus
func (s ObligationStatus) String() string {
	return string(s)
}

// IsValid checks if the obligation status is valid
func (s ObligationStatus) IsValid() bool {
	switch s {
	case ObligationPending, ObligationOverdue, ObligationPaid, ObligationCancelled:
		return true
	default:
		return false
	}
}

// IsOpen reports whether the obligation is still payable.
func (s ObligationStatus) IsOpen() bool {
	return s == ObligationPending || s == ObligationOverdue
}

// Transaction represents an incoming bank-ledger entry awaiting reconciliation.
// Transactions are created by the bank feed collaborator and mutated only by
// the apply engine.
type Transaction struct {
	ID           string            `json:"id"`
	PostedAt     time.Time         `json:"posted_at"`
	Amount       decimal.Decimal   `json:"amount"`
	Description  string            `json:"description"`
	Reference    string            `json:"reference,omitempty"`
	Status       TransactionStatus `json:"status"`
	ObligationID string            `json:"obligation_id,omitempty"`
	MatchScore   int               `json:"match_score,omitempty"`
	ReconciledBy string            `json:"reconciled_by,omitempty"`
	ReconciledAt time.Time         `json:"reconciled_at,omitempty"`
	Note         string            `json:"note,omitempty"`
}

// Validate performs basic validation on the Transaction
func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("transaction ID cannot be empty")
	}

	if t.Amount.IsZero() {
		return fmt.Errorf("transaction amount cannot be zero")
	}

	if !t.Status.IsValid() {
		return fmt.Errorf("invalid transaction status: %s", t.Status)
	}

	if t.PostedAt.IsZero() {
		return fmt.Errorf("transaction posted date cannot be zero")
	}

	return nil
}

// IsMatchable reports whether the transaction is eligible for candidate
// generation: credited, pending review, and not linked to any obligation.
func (t *Transaction) IsMatchable() bool {
	return t.Status == TransactionPendingReview &&
		t.Amount.IsPositive() &&
		t.ObligationID == ""
}

// SearchText returns the free text searched for tenant names and keywords.
func (t *Transaction) SearchText() string {
	if t.Reference == "" {
		return t.Description
	}
	return t.Description + " " + t.Reference
}

// String returns a string representation of the Transaction
func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction{ID: %s, Amount: %s, Status: %s, Posted: %s}",
		t.ID, t.Amount.String(), t.Status, t.PostedAt.Format("2006-01-02"))
}

// Obligation represents an outstanding rent payment due from a tenant.
// Obligations are created and mutated externally; this engine transitions
// status to paid only through the apply engine, and only once.
type Obligation struct {
	ID                   string           `json:"id"`
	Amount               decimal.Decimal  `json:"amount"`
	DueDate              time.Time        `json:"due_date"`
	Status               ObligationStatus `json:"status"`
	TenantName           string           `json:"tenant_name"`
	UnitRef              string           `json:"unit_ref,omitempty"`
	LinkedTransactionIDs []string         `json:"linked_transaction_ids,omitempty"`
	PaidAt               time.Time        `json:"paid_at,omitempty"`
	PaymentMethod        string           `json:"payment_method,omitempty"`
}

// Validate performs basic validation on the Obligation
func (o *Obligation) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return fmt.Errorf("obligation ID cannot be empty")
	}

	if !o.Amount.IsPositive() {
		return fmt.Errorf("obligation amount must be positive")
	}

	if !o.Status.IsValid() {
		return fmt.Errorf("invalid obligation status: %s", o.Status)
	}

	if o.DueDate.IsZero() {
		return fmt.Errorf("obligation due date cannot be zero")
	}

	return nil
}

// IsOpen reports whether the obligation is eligible for candidate generation:
// still payable and not linked to any transaction from a prior run.
func (o *Obligation) IsOpen() bool {
	return o.Status.IsOpen() && len(o.LinkedTransactionIDs) == 0
}

// TenantFirstName returns the first token of the tenant display name,
// lowercased, for name-signal scoring. Empty when no name is set.
func (o *Obligation) TenantFirstName() string {
	fields := strings.Fields(o.TenantName)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

// String returns a string representation of the Obligation
func (o *Obligation) String() string {
	return fmt.Sprintf("Obligation{ID: %s, Amount: %s, Status: %s, Due: %s, Tenant: %s}",
		o.ID, o.Amount.String(), o.Status, o.DueDate.Format("2006-01-02"), o.TenantName)
}

// SuggestionSource identifies which phase produced a match suggestion.
type SuggestionSource string

const (
	// SourceRule marks suggestions from the rule-based candidate generator.
	SourceRule SuggestionSource = "rule"
	// SourceAugmented marks suggestions from the external augmentation adapter.
	SourceAugmented SuggestionSource = "augmented"
)

// MatchSuggestion is a scored, unapplied proposal pairing one transaction with
// one obligation. Suggestions are ephemeral: they exist only inside a single
// engine invocation and its returned report.
type MatchSuggestion struct {
	TransactionID string           `json:"transaction_id"`
	ObligationID  string           `json:"obligation_id"`
	Confidence    int              `json:"confidence"`
	Reason        string           `json:"reason"`
	Source        SuggestionSource `json:"source"`
	Applied       bool             `json:"applied"`
}

// Validate performs basic validation on the MatchSuggestion
func (ms *MatchSuggestion) Validate() error {
	if strings.TrimSpace(ms.TransactionID) == "" {
		return fmt.Errorf("suggestion transaction ID cannot be empty")
	}

	if strings.TrimSpace(ms.ObligationID) == "" {
		return fmt.Errorf("suggestion obligation ID cannot be empty")
	}

	if ms.Confidence < 0 || ms.Confidence > 100 {
		return fmt.Errorf("suggestion confidence must be between 0 and 100: %d", ms.Confidence)
	}

	return nil
}

// String returns a string representation of the MatchSuggestion
func (ms *MatchSuggestion) String() string {
	return fmt.Sprintf("MatchSuggestion{Tx: %s, Obligation: %s, Confidence: %d, Source: %s}",
		ms.TransactionID, ms.ObligationID, ms.Confidence, ms.Source)
}

// ClampConfidence clamps a raw confidence value into the [0,100] range.
func ClampConfidence(confidence int) int {
	if confidence < 0 {
		return 0
	}
	if confidence > 100 {
		return 100
	}
	return confidence
}
