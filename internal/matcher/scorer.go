package matcher

import (
	"fmt"
	"strings"
	"time"

	"github.com/dvillagrablanco/inmova-app-sub030/internal/models"
)

// ScorePair computes the confidence score for a candidate pair and the reason
// string enumerating which signals fired. The score starts at the configured
// base for the amount match, each bonus applies at most once, and the result
// is clamped to [0,100].
//
// ScorePair is a pure function over its inputs and is safe to call from
// concurrent goroutines.
func ScorePair(tx *models.Transaction, obl *models.Obligation, config *MatchingConfig) (int, string) {
	if config == nil {
		config = DefaultMatchingConfig()
	}

	score := config.BaseScore
	reasons := []string{"exact amount match"}

	searchText := strings.ToLower(tx.SearchText())

	if name := obl.TenantFirstName(); name != "" && strings.Contains(searchText, name) {
		score += config.NameBonus
		reasons = append(reasons, fmt.Sprintf("tenant name %q in transaction text", name))
	}

	if keyword := firstKeyword(searchText, config.Keywords); keyword != "" {
		score += config.KeywordBonus
		reasons = append(reasons, fmt.Sprintf("payment keyword %q present", keyword))
	}

	if withinDays(tx.PostedAt, obl.DueDate, config.DateToleranceDays) {
		score += config.DateBonus
		reasons = append(reasons, fmt.Sprintf("posted within %d days of due date", config.DateToleranceDays))
	}

	return models.ClampConfidence(score), strings.Join(reasons, "; ")
}

// ScoreCandidates scores all candidate pairs into rule-based suggestions.
func ScoreCandidates(pairs []*CandidatePair, config *MatchingConfig) []*models.MatchSuggestion {
	suggestions := make([]*models.MatchSuggestion, 0, len(pairs))

	for _, pair := range pairs {
		confidence, reason := ScorePair(pair.Transaction, pair.Obligation, config)
		suggestions = append(suggestions, &models.MatchSuggestion{
			TransactionID: pair.Transaction.ID,
			ObligationID:  pair.Obligation.ID,
			Confidence:    confidence,
			Reason:        reason,
			Source:        models.SourceRule,
		})
	}

	return suggestions
}

func firstKeyword(text string, keywords []string) string {
	for _, keyword := range keywords {
		if strings.Contains(text, strings.ToLower(keyword)) {
			return keyword
		}
	}
	return ""
}

func withinDays(a, b time.Time, days int) bool {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= time.Duration(days)*24*time.Hour
}
