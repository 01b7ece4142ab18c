package reconciler

import (
	"context"

	"github.com/google/uuid"

	"github.com/dvillagrablanco/inmova-app-sub030/internal/store"
	"github.com/dvillagrablanco/inmova-app-sub030/pkg/logger"
)

// Service binds the reconciliation engine to a backing store. It lists both
// sides of the batch from the collaborator sources and runs the pipeline.
// Listing failures are the only fatal errors: nothing is applied when either
// list cannot be produced.
type Service struct {
	engine *Engine
	store  store.Store
	logger logger.Logger
}

// RunOptions controls one reconciliation run.
type RunOptions struct {
	// Limit bounds the batch size on both sides. <= 0 means no limit.
	Limit int

	// Apply enables the apply phase. When false the run is read-only and the
	// report's applied count is always zero.
	Apply bool

	// UseAugmentation enables the external augmentation adapter for the
	// transactions the rule-based pass leaves unmatched.
	UseAugmentation bool
}

// NewService creates a reconciliation service over the given store.
func NewService(engine *Engine, st store.Store) *Service {
	return &Service{
		engine: engine,
		store:  st,
		logger: logger.GetGlobalLogger().WithComponent("reconciliation_service"),
	}
}

// Run executes one bounded reconciliation batch and returns its report.
func (s *Service) Run(ctx context.Context, opts RunOptions) (*ApplyReport, error) {
	transactions, err := s.store.ListUnmatchedTransactions(ctx, opts.Limit)
	if err != nil {
		return nil, err
	}

	obligations, err := s.store.ListOpenObligations(ctx, opts.Limit)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logger.Fields{
		"transactions": len(transactions),
		"obligations":  len(obligations),
		"apply":        opts.Apply,
	}).Info("Starting reconciliation run")

	if !opts.Apply {
		suggestions := s.engine.ComputeSuggestions(ctx, transactions, obligations, opts.UseAugmentation)

		report := &ApplyReport{
			RunID:     uuid.NewString(),
			Evaluated: len(suggestions),
			Results:   make([]*ApplyResult, 0, len(suggestions)),
		}
		for _, suggestion := range suggestions {
			report.Results = append(report.Results, &ApplyResult{Suggestion: suggestion})
		}
		report.Message = buildSummaryMessage(report.Evaluated, 0, 0)
		return report, nil
	}

	return s.engine.ComputeAndApply(ctx, transactions, obligations, opts.UseAugmentation)
}
