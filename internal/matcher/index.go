package matcher

import (
	"sort"

	"github.com/dvillagrablanco/inmova-app-sub030/internal/models"
	"github.com/shopspring/decimal"
)

// ObligationIndex provides amount-keyed lookups over open obligations.
// Obligations are bucketed by their amount rounded to cents; lookups scan the
// bucket for the transaction amount plus both cent neighbors so that a
// tolerance straddling a cent boundary still finds its candidates.
//
// Ordering matters: candidates are returned in obligations input order, which
// is the documented tie-break policy for equal amounts.
type ObligationIndex struct {
	// AmountIndex maps cent-rounded amount strings to obligation slices.
	AmountIndex map[string][]*indexedObligation

	// AllObligations holds all indexed obligations in input order.
	AllObligations []*models.Obligation
}

type indexedObligation struct {
	obligation *models.Obligation
	position   int
}

// NewObligationIndex builds an index over the given obligations.
// The input slice is not mutated.
func NewObligationIndex(obligations []*models.Obligation) *ObligationIndex {
	index := &ObligationIndex{
		AmountIndex:    make(map[string][]*indexedObligation),
		AllObligations: obligations,
	}

	for i, obl := range obligations {
		key := obl.Amount.Round(2).StringFixed(2)
		index.AmountIndex[key] = append(index.AmountIndex[key], &indexedObligation{
			obligation: obl,
			position:   i,
		})
	}

	return index
}

// GetCandidates returns the obligations whose amount is within epsilon of the
// transaction amount, in input order.
func (oi *ObligationIndex) GetCandidates(tx *models.Transaction, epsilon decimal.Decimal) []*models.Obligation {
	cent := decimal.NewFromFloat(0.01)
	rounded := tx.Amount.Round(2)

	keys := []string{
		rounded.Sub(cent).StringFixed(2),
		rounded.StringFixed(2),
		rounded.Add(cent).StringFixed(2),
	}

	var entries []*indexedObligation
	for _, key := range keys {
		entries = append(entries, oi.AmountIndex[key]...)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].position < entries[j].position
	})

	var candidates []*models.Obligation
	for _, entry := range entries {
		diff := tx.Amount.Sub(entry.obligation.Amount).Abs()
		if diff.LessThan(epsilon) {
			candidates = append(candidates, entry.obligation)
		}
	}

	return candidates
}

// Size returns the number of indexed obligations.
func (oi *ObligationIndex) Size() int {
	return len(oi.AllObligations)
}
