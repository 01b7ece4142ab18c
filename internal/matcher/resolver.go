package matcher

import (
	"sort"

	"github.com/dvillagrablanco/inmova-app-sub030/internal/models"
)

// ResolveAssignments turns a set of scored suggestions, which may still
// contain duplicate transaction or obligation ids, into a conflict-free
// one-to-one assignment. Suggestions are processed in descending confidence
// order and accepted greedily when both ids are still unclaimed; the rest are
// dropped.
//
// The sort is stable, so equal-confidence suggestions keep their input order
// and the result is deterministic. This is a greedy approximation to
// maximum-weight bipartite matching, chosen because batches are bounded and
// the engine runs inside a request cycle.
func ResolveAssignments(suggestions []*models.MatchSuggestion) []*models.MatchSuggestion {
	ordered := make([]*models.MatchSuggestion, len(suggestions))
	copy(ordered, suggestions)

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Confidence > ordered[j].Confidence
	})

	claimedTransactions := make(map[string]bool, len(ordered))
	claimedObligations := make(map[string]bool, len(ordered))

	var resolved []*models.MatchSuggestion
	for _, suggestion := range ordered {
		if claimedTransactions[suggestion.TransactionID] || claimedObligations[suggestion.ObligationID] {
			continue
		}

		resolved = append(resolved, suggestion)
		claimedTransactions[suggestion.TransactionID] = true
		claimedObligations[suggestion.ObligationID] = true
	}

	return resolved
}
