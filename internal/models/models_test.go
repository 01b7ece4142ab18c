package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validTransaction() *Transaction {
	return &Transaction{
		ID:          "TX001",
		PostedAt:    time.Date(2025, 3, 5, 10, 30, 0, 0, time.UTC),
		Amount:      decimal.NewFromFloat(1200.00),
		Description: "Transfer Juan Perez rent March",
		Status:      TransactionPendingReview,
	}
}

func validObligation() *Obligation {
	return &Obligation{
		ID:         "OB001",
		Amount:     decimal.NewFromFloat(1200.00),
		DueDate:    time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:     ObligationPending,
		TenantName: "Juan Perez",
		UnitRef:    "Unit 4B",
	}
}

func TestTransaction_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Transaction)
		wantErr bool
	}{
		{
			name:    "valid transaction",
			modify:  func(tx *Transaction) {},
			wantErr: false,
		},
		{
			name:    "empty ID",
			modify:  func(tx *Transaction) { tx.ID = "  " },
			wantErr: true,
		},
		{
			name:    "zero amount",
			modify:  func(tx *Transaction) { tx.Amount = decimal.Zero },
			wantErr: true,
		},
		{
			name:    "invalid status",
			modify:  func(tx *Transaction) { tx.Status = "archived" },
			wantErr: true,
		},
		{
			name:    "zero posted date",
			modify:  func(tx *Transaction) { tx.PostedAt = time.Time{} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.modify(tx)

			err := tx.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTransaction_IsMatchable(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Transaction)
		want   bool
	}{
		{
			name:   "pending positive unlinked",
			modify: func(tx *Transaction) {},
			want:   true,
		},
		{
			name:   "already reconciled",
			modify: func(tx *Transaction) { tx.Status = TransactionReconciled },
			want:   false,
		},
		{
			name:   "negative amount is a refund",
			modify: func(tx *Transaction) { tx.Amount = decimal.NewFromFloat(-50.00) },
			want:   false,
		},
		{
			name:   "already linked to an obligation",
			modify: func(tx *Transaction) { tx.ObligationID = "OB009" },
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.modify(tx)

			if got := tx.IsMatchable(); got != tt.want {
				t.Errorf("IsMatchable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransaction_SearchText(t *testing.T) {
	tx := validTransaction()
	if got := tx.SearchText(); got != tx.Description {
		t.Errorf("SearchText() without reference = %q, want %q", got, tx.Description)
	}

	tx.Reference = "REF-42"
	want := tx.Description + " REF-42"
	if got := tx.SearchText(); got != want {
		t.Errorf("SearchText() with reference = %q, want %q", got, want)
	}
}

func TestObligation_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Obligation)
		wantErr bool
	}{
		{
			name:    "valid obligation",
			modify:  func(o *Obligation) {},
			wantErr: false,
		},
		{
			name:    "empty ID",
			modify:  func(o *Obligation) { o.ID = "" },
			wantErr: true,
		},
		{
			name:    "negative amount",
			modify:  func(o *Obligation) { o.Amount = decimal.NewFromFloat(-1200.00) },
			wantErr: true,
		},
		{
			name:    "invalid status",
			modify:  func(o *Obligation) { o.Status = "unknown" },
			wantErr: true,
		},
		{
			name:    "zero due date",
			modify:  func(o *Obligation) { o.DueDate = time.Time{} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obl := validObligation()
			tt.modify(obl)

			err := obl.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestObligation_IsOpen(t *testing.T) {
	obl := validObligation()
	if !obl.IsOpen() {
		t.Error("Expected pending obligation with no links to be open")
	}

	obl.Status = ObligationOverdue
	if !obl.IsOpen() {
		t.Error("Expected overdue obligation to be open")
	}

	obl.Status = ObligationPaid
	if obl.IsOpen() {
		t.Error("Expected paid obligation to be closed")
	}

	obl = validObligation()
	obl.LinkedTransactionIDs = []string{"TX900"}
	if obl.IsOpen() {
		t.Error("Expected obligation with linked transactions to be excluded from candidacy")
	}
}

func TestObligation_TenantFirstName(t *testing.T) {
	tests := []struct {
		name       string
		tenantName string
		want       string
	}{
		{"full name", "Juan Perez", "juan"},
		{"single name", "Marta", "marta"},
		{"extra whitespace", "  Ana Maria Lopez ", "ana"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obl := validObligation()
			obl.TenantName = tt.tenantName

			if got := obl.TenantFirstName(); got != tt.want {
				t.Errorf("TenantFirstName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMatchSuggestion_Validate(t *testing.T) {
	suggestion := &MatchSuggestion{
		TransactionID: "TX001",
		ObligationID:  "OB001",
		Confidence:    95,
		Source:        SourceRule,
	}

	if err := suggestion.Validate(); err != nil {
		t.Errorf("Expected valid suggestion, got error: %v", err)
	}

	suggestion.Confidence = 101
	if err := suggestion.Validate(); err == nil {
		t.Error("Expected error for confidence above 100")
	}

	suggestion.Confidence = -1
	if err := suggestion.Validate(); err == nil {
		t.Error("Expected error for negative confidence")
	}
}

func TestClampConfidence(t *testing.T) {
	tests := []struct {
		input int
		want  int
	}{
		{-10, 0},
		{0, 0},
		{55, 55},
		{100, 100},
		{130, 100},
	}

	for _, tt := range tests {
		if got := ClampConfidence(tt.input); got != tt.want {
			t.Errorf("ClampConfidence(%d) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
