package matcher

import (
	"github.com/dvillagrablanco/inmova-app-sub030/internal/models"
)

// CandidatePair is a (transaction, obligation) pairing produced by the
// candidate generator, before scoring.
type CandidatePair struct {
	Transaction *models.Transaction
	Obligation  *models.Obligation
}

// GenerateCandidates produces at most one best rule-based candidate obligation
// per transaction. A candidate requires the absolute amount difference to be
// below the configured epsilon. The search skips obligations already claimed
// by an earlier transaction in the same pass (first-wins), and ties between
// obligations with identical amounts resolve by input order.
//
// Refunds and debits are out of scope: transactions with non-positive amounts
// yield no candidate. Inputs are never mutated.
func GenerateCandidates(
	transactions []*models.Transaction,
	obligations []*models.Obligation,
	config *MatchingConfig,
) []*CandidatePair {
	if config == nil {
		config = DefaultMatchingConfig()
	}

	index := NewObligationIndex(obligations)
	claimed := make(map[string]bool, len(obligations))

	var pairs []*CandidatePair
	for _, tx := range transactions {
		if !tx.IsMatchable() {
			continue
		}

		for _, obl := range index.GetCandidates(tx, config.AmountEpsilon) {
			if claimed[obl.ID] {
				continue
			}

			pairs = append(pairs, &CandidatePair{Transaction: tx, Obligation: obl})
			claimed[obl.ID] = true
			break
		}
	}

	return pairs
}
