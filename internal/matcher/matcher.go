package matcher

import (
	"fmt"

	"github.com/dvillagrablanco/inmova-app-sub030/internal/models"
)

// MatchingEngine is the rule-based core of the reconciliation pipeline.
// It is stateless between invocations: each Suggest call indexes, scores,
// and resolves one bounded batch.
type MatchingEngine struct {
	Config *MatchingConfig
}

// NewMatchingEngine creates a new matching engine with the specified
// configuration. A nil config selects the production defaults.
func NewMatchingEngine(config *MatchingConfig) *MatchingEngine {
	if config == nil {
		config = DefaultMatchingConfig()
	}

	return &MatchingEngine{Config: config}
}

// Suggest runs candidate generation, scoring, and assignment resolution over
// one batch and returns the rule-based suggestions. The result satisfies the
// engine invariants: no transaction or obligation id appears twice and every
// confidence is in [0,100]. Inputs are never mutated.
func (me *MatchingEngine) Suggest(
	transactions []*models.Transaction,
	obligations []*models.Obligation,
) []*models.MatchSuggestion {
	pairs := GenerateCandidates(transactions, obligations, me.Config)
	scored := ScoreCandidates(pairs, me.Config)
	return ResolveAssignments(scored)
}

// ValidateConfiguration validates the matching engine configuration.
func (me *MatchingEngine) ValidateConfiguration() error {
	if me.Config == nil {
		return fmt.Errorf("matching configuration is required")
	}
	return me.Config.Validate()
}

// GetConfiguration returns a copy of the current configuration.
func (me *MatchingEngine) GetConfiguration() *MatchingConfig {
	return me.Config.Clone()
}
