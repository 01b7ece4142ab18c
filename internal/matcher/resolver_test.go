package matcher

import (
	"testing"

	"github.com/dvillagrablanco/inmova-app-sub030/internal/models"
)

func suggestion(txID, oblID string, confidence int) *models.MatchSuggestion {
	return &models.MatchSuggestion{
		TransactionID: txID,
		ObligationID:  oblID,
		Confidence:    confidence,
		Reason:        "exact amount match",
		Source:        models.SourceRule,
	}
}

func TestResolveAssignments_HighestConfidenceWins(t *testing.T) {
	input := []*models.MatchSuggestion{
		suggestion("TX001", "OB001", 80),
		suggestion("TX002", "OB001", 95),
	}

	resolved := ResolveAssignments(input)

	if len(resolved) != 1 {
		t.Fatalf("Expected 1 resolved suggestion, got %d", len(resolved))
	}

	if resolved[0].TransactionID != "TX002" {
		t.Errorf("Expected TX002 to claim OB001, got %s", resolved[0].TransactionID)
	}
}

func TestResolveAssignments_OneToOne(t *testing.T) {
	input := []*models.MatchSuggestion{
		suggestion("TX001", "OB001", 90),
		suggestion("TX001", "OB002", 85),
		suggestion("TX002", "OB001", 85),
		suggestion("TX002", "OB002", 80),
	}

	resolved := ResolveAssignments(input)

	if len(resolved) != 2 {
		t.Fatalf("Expected 2 resolved suggestions, got %d", len(resolved))
	}

	seenTx := make(map[string]bool)
	seenObl := make(map[string]bool)
	for _, s := range resolved {
		if seenTx[s.TransactionID] {
			t.Errorf("Transaction %s assigned twice", s.TransactionID)
		}
		if seenObl[s.ObligationID] {
			t.Errorf("Obligation %s assigned twice", s.ObligationID)
		}
		seenTx[s.TransactionID] = true
		seenObl[s.ObligationID] = true
	}

	// TX001/OB001 at 90 wins first, leaving TX002/OB002 at 80.
	if resolved[0].TransactionID != "TX001" || resolved[0].ObligationID != "OB001" {
		t.Errorf("Expected TX001/OB001 first, got %s/%s", resolved[0].TransactionID, resolved[0].ObligationID)
	}
	if resolved[1].TransactionID != "TX002" || resolved[1].ObligationID != "OB002" {
		t.Errorf("Expected TX002/OB002 second, got %s/%s", resolved[1].TransactionID, resolved[1].ObligationID)
	}
}

func TestResolveAssignments_EqualConfidenceKeepsInputOrder(t *testing.T) {
	input := []*models.MatchSuggestion{
		suggestion("TX001", "OB001", 85),
		suggestion("TX002", "OB001", 85),
	}

	resolved := ResolveAssignments(input)

	if len(resolved) != 1 {
		t.Fatalf("Expected 1 resolved suggestion, got %d", len(resolved))
	}

	if resolved[0].TransactionID != "TX001" {
		t.Errorf("Expected earlier suggestion to win the tie, got %s", resolved[0].TransactionID)
	}
}

func TestResolveAssignments_Deterministic(t *testing.T) {
	input := []*models.MatchSuggestion{
		suggestion("TX003", "OB002", 85),
		suggestion("TX001", "OB001", 85),
		suggestion("TX002", "OB002", 85),
		suggestion("TX001", "OB003", 80),
	}

	first := ResolveAssignments(input)
	for i := 0; i < 10; i++ {
		again := ResolveAssignments(input)
		if len(again) != len(first) {
			t.Fatalf("Run %d produced %d suggestions, want %d", i, len(again), len(first))
		}
		for j := range first {
			if again[j].TransactionID != first[j].TransactionID || again[j].ObligationID != first[j].ObligationID {
				t.Fatalf("Run %d differs at position %d: %s/%s vs %s/%s",
					i, j, again[j].TransactionID, again[j].ObligationID, first[j].TransactionID, first[j].ObligationID)
			}
		}
	}
}

func TestResolveAssignments_DoesNotMutateInput(t *testing.T) {
	input := []*models.MatchSuggestion{
		suggestion("TX001", "OB001", 70),
		suggestion("TX002", "OB002", 95),
	}

	ResolveAssignments(input)

	if input[0].TransactionID != "TX001" || input[1].TransactionID != "TX002" {
		t.Error("Expected input slice order to be preserved")
	}
}

func TestResolveAssignments_Empty(t *testing.T) {
	if resolved := ResolveAssignments(nil); len(resolved) != 0 {
		t.Errorf("Expected no suggestions for nil input, got %d", len(resolved))
	}
}
