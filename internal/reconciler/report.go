package reconciler

import (
	"fmt"

	"github.com/dvillagrablanco/inmova-app-sub030/internal/models"
)

// ApplyResult records the per-pair outcome of the apply phase. Failure
// visibility is a first-class return value: callers read the report, not the
// logs, to see which pairs went through.
type ApplyResult struct {
	Suggestion *models.MatchSuggestion `json:"suggestion"`
	Applied    bool                    `json:"applied"`
	Reason     string                  `json:"reason,omitempty"`
}

// ApplyReport is the result of one reconciliation run.
type ApplyReport struct {
	// RunID correlates the report with engine log lines.
	RunID string `json:"run_id"`

	// Evaluated is the total number of suggestions considered.
	Evaluated int `json:"evaluated"`

	// AppliedCount is the number of pairs successfully applied.
	AppliedCount int `json:"applied_count"`

	// Results holds every suggestion with its apply outcome. Suggestions
	// below the automatic-apply threshold appear here as advisory-only.
	Results []*ApplyResult `json:"results"`

	// Message is a human-readable summary of the run.
	Message string `json:"message"`
}

// Suggestions returns the annotated suggestion list from the results.
func (r *ApplyReport) Suggestions() []*models.MatchSuggestion {
	suggestions := make([]*models.MatchSuggestion, 0, len(r.Results))
	for _, result := range r.Results {
		suggestions = append(suggestions, result.Suggestion)
	}
	return suggestions
}

// FailedCount returns the number of eligible pairs that failed to apply.
func (r *ApplyReport) FailedCount() int {
	failed := 0
	for _, result := range r.Results {
		if !result.Applied && result.Reason != "" {
			failed++
		}
	}
	return failed
}

func buildSummaryMessage(evaluated, applied, failed int) string {
	if evaluated == 0 {
		return "no match suggestions produced"
	}
	if failed == 0 {
		return fmt.Sprintf("%d suggestions evaluated, %d applied", evaluated, applied)
	}
	return fmt.Sprintf("%d suggestions evaluated, %d applied, %d failed", evaluated, applied, failed)
}
