// Package augment provides the optional external augmentation capability: a
// pluggable suggestor that proposes matches for the transactions the
// rule-based pass left unmatched.
//
// The engine treats every suggestor as untrusted: suggestions below the
// acceptance floor, or referencing ids outside the unmatched sets, are
// discarded before merging, and a failed call degrades silently to the
// rule-based result.
package augment

import (
	"context"
	"time"

	"github.com/dvillagrablanco/inmova-app-sub030/internal/models"
)

// Suggestor is the external augmentation capability. Implementations are pure
// request/response: they must not mutate the caller's data.
type Suggestor interface {
	// Suggest proposes matches between the still-unmatched transactions and
	// the still-open obligations. Confidence values are the suggestor's own
	// estimates in [0,100]; the engine clamps and filters them.
	Suggest(ctx context.Context, transactions []*models.Transaction, obligations []*models.Obligation) ([]*models.MatchSuggestion, error)
}

// Config holds configuration for the OpenAI-backed suggestor.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

// transactionRecord is the plain structured record serialized into the prompt.
type transactionRecord struct {
	ID          string `json:"id"`
	PostedAt    string `json:"posted_at"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Reference   string `json:"reference,omitempty"`
}

// obligationRecord is the plain structured record serialized into the prompt.
type obligationRecord struct {
	ID         string `json:"id"`
	Amount     string `json:"amount"`
	DueDate    string `json:"due_date"`
	TenantName string `json:"tenant_name"`
	UnitRef    string `json:"unit_ref,omitempty"`
}

// suggestionRecord is the shape each suggestion must take in the response.
type suggestionRecord struct {
	TransactionID string `json:"transaction_id"`
	ObligationID  string `json:"obligation_id"`
	Confidence    int    `json:"confidence"`
	Reason        string `json:"reason"`
}

func toTransactionRecords(transactions []*models.Transaction) []transactionRecord {
	records := make([]transactionRecord, 0, len(transactions))
	for _, tx := range transactions {
		records = append(records, transactionRecord{
			ID:          tx.ID,
			PostedAt:    tx.PostedAt.Format("2006-01-02"),
			Amount:      tx.Amount.String(),
			Description: tx.Description,
			Reference:   tx.Reference,
		})
	}
	return records
}

func toObligationRecords(obligations []*models.Obligation) []obligationRecord {
	records := make([]obligationRecord, 0, len(obligations))
	for _, obl := range obligations {
		records = append(records, obligationRecord{
			ID:         obl.ID,
			Amount:     obl.Amount.String(),
			DueDate:    obl.DueDate.Format("2006-01-02"),
			TenantName: obl.TenantName,
			UnitRef:    obl.UnitRef,
		})
	}
	return records
}
