// Package reconciler orchestrates the reconciliation pipeline: candidate
// generation, scoring, assignment resolution, optional augmentation, and the
// apply phase, producing a per-item result report.
//
// Phases run sequentially within one bounded batch invocation. The apply
// phase is the only one that mutates external state; each pair goes through
// the apply sink's atomic transition independently, so one failure never
// aborts the batch.
//
// Example usage:
//
//	engine := reconciler.NewEngine(reconciler.DefaultConfig(), suggestor, sink)
//	report, err := engine.ComputeAndApply(ctx, transactions, obligations, true)
package reconciler

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dvillagrablanco/inmova-app-sub030/internal/augment"
	"github.com/dvillagrablanco/inmova-app-sub030/internal/matcher"
	"github.com/dvillagrablanco/inmova-app-sub030/internal/models"
	"github.com/dvillagrablanco/inmova-app-sub030/internal/store"
	"github.com/dvillagrablanco/inmova-app-sub030/pkg/logger"
)

// Config holds configuration for the reconciliation engine.
type Config struct {
	// Matching holds the rule-based matcher parameters.
	Matching *matcher.MatchingConfig

	// AugmentationTimeout bounds the external augmentation call. A timed-out
	// call is treated identically to an empty result.
	AugmentationTimeout time.Duration

	// Actor is recorded on every applied transaction.
	Actor string
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Matching:            matcher.DefaultMatchingConfig(),
		AugmentationTimeout: 20 * time.Second,
		Actor:               "reconciliation-engine",
	}
}

// Validate checks if the engine configuration is valid
func (c *Config) Validate() error {
	return c.Matching.Validate()
}

// Engine runs the reconciliation pipeline over bounded batches.
type Engine struct {
	config    *Config
	matching  *matcher.MatchingEngine
	suggestor augment.Suggestor
	sink      store.ApplySink
	logger    logger.Logger
}

// NewEngine creates a reconciliation engine. The suggestor is optional: when
// nil, the pipeline is rule-based only. The sink is required only for
// ComputeAndApply.
func NewEngine(config *Config, suggestor augment.Suggestor, sink store.ApplySink) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Matching == nil {
		config.Matching = matcher.DefaultMatchingConfig()
	}

	return &Engine{
		config:    config,
		matching:  matcher.NewMatchingEngine(config.Matching),
		suggestor: suggestor,
		sink:      sink,
		logger:    logger.GetGlobalLogger().WithComponent("reconciliation_engine"),
	}
}

// ComputeSuggestions runs the read-only pipeline: rule-based matching,
// optionally followed by augmentation over the remaining gaps, with the
// merged set passed back through assignment resolution. Nothing is mutated.
//
// Malformed input records are rejected per record and never abort the batch;
// records already linked from a prior run are excluded by construction.
func (e *Engine) ComputeSuggestions(
	ctx context.Context,
	transactions []*models.Transaction,
	obligations []*models.Obligation,
	useAugmentation bool,
) []*models.MatchSuggestion {
	runID := uuid.NewString()
	log := e.logger.WithField("run_id", runID)

	validTxs, validObls := e.filterInputs(transactions, obligations, log)

	suggestions := e.matching.Suggest(validTxs, validObls)
	log.WithFields(logger.Fields{
		"transactions": len(validTxs),
		"obligations":  len(validObls),
		"rule_matches": len(suggestions),
	}).Info("Rule-based matching complete")

	if useAugmentation && e.suggestor != nil {
		augmented := e.augmentGaps(ctx, validTxs, validObls, suggestions, log)
		if len(augmented) > 0 {
			merged := append(append([]*models.MatchSuggestion{}, suggestions...), augmented...)
			suggestions = matcher.ResolveAssignments(merged)
		}
	}

	return suggestions
}

// ComputeAndApply runs the full pipeline including the apply phase. Every
// suggestion at or above the automatic-apply threshold goes through the apply
// sink; the rest are returned as advisory-only. Per-pair failures are
// recorded in the report and the batch continues.
func (e *Engine) ComputeAndApply(
	ctx context.Context,
	transactions []*models.Transaction,
	obligations []*models.Obligation,
	useAugmentation bool,
) (*ApplyReport, error) {
	runID := uuid.NewString()
	log := e.logger.WithField("run_id", runID)

	validTxs, validObls := e.filterInputs(transactions, obligations, log)

	suggestions := e.matching.Suggest(validTxs, validObls)
	if useAugmentation && e.suggestor != nil {
		augmented := e.augmentGaps(ctx, validTxs, validObls, suggestions, log)
		if len(augmented) > 0 {
			merged := append(append([]*models.MatchSuggestion{}, suggestions...), augmented...)
			suggestions = matcher.ResolveAssignments(merged)
		}
	}

	report := &ApplyReport{
		RunID:     runID,
		Evaluated: len(suggestions),
		Results:   make([]*ApplyResult, 0, len(suggestions)),
	}

	threshold := e.config.Matching.AutoApplyThreshold
	for _, suggestion := range suggestions {
		result := &ApplyResult{Suggestion: suggestion}
		report.Results = append(report.Results, result)

		if suggestion.Confidence < threshold {
			log.WithFields(logger.Fields{
				"transaction_id": suggestion.TransactionID,
				"confidence":     suggestion.Confidence,
			}).Debug("Suggestion below auto-apply threshold, advisory only")
			continue
		}

		if e.sink == nil {
			result.Reason = "no apply sink configured"
			continue
		}

		err := e.sink.ApplyMatch(ctx, suggestion.TransactionID, suggestion.ObligationID,
			suggestion.Confidence, suggestion.Reason, e.config.Actor)
		if err != nil {
			result.Reason = err.Error()
			log.WithError(err).WithFields(logger.Fields{
				"transaction_id": suggestion.TransactionID,
				"obligation_id":  suggestion.ObligationID,
			}).Warn("Failed to apply suggestion")
			continue
		}

		suggestion.Applied = true
		result.Applied = true
		report.AppliedCount++
	}

	report.Message = buildSummaryMessage(report.Evaluated, report.AppliedCount, report.FailedCount())
	log.WithFields(logger.Fields{
		"evaluated": report.Evaluated,
		"applied":   report.AppliedCount,
		"failed":    report.FailedCount(),
	}).Info("Apply phase complete")

	return report, nil
}

// filterInputs rejects malformed or ineligible records per record. Records
// already linked from a prior run never re-enter candidacy.
func (e *Engine) filterInputs(
	transactions []*models.Transaction,
	obligations []*models.Obligation,
	log logger.Logger,
) ([]*models.Transaction, []*models.Obligation) {
	validTxs := make([]*models.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if err := tx.Validate(); err != nil {
			log.WithError(err).WithField("transaction_id", tx.ID).Warn("Rejecting malformed transaction")
			continue
		}
		if !tx.IsMatchable() {
			continue
		}
		validTxs = append(validTxs, tx)
	}

	validObls := make([]*models.Obligation, 0, len(obligations))
	for _, obl := range obligations {
		if err := obl.Validate(); err != nil {
			log.WithError(err).WithField("obligation_id", obl.ID).Warn("Rejecting malformed obligation")
			continue
		}
		if !obl.IsOpen() {
			continue
		}
		validObls = append(validObls, obl)
	}

	return validTxs, validObls
}

// augmentGaps invokes the external suggestor over the transactions and
// obligations the rule-based pass left unmatched, then filters the response:
// suggestions below the acceptance floor or referencing unknown ids are
// discarded. A failed call degrades silently to an empty result.
func (e *Engine) augmentGaps(
	ctx context.Context,
	transactions []*models.Transaction,
	obligations []*models.Obligation,
	ruleMatches []*models.MatchSuggestion,
	log logger.Logger,
) []*models.MatchSuggestion {
	matchedTxs := make(map[string]bool, len(ruleMatches))
	matchedObls := make(map[string]bool, len(ruleMatches))
	for _, suggestion := range ruleMatches {
		matchedTxs[suggestion.TransactionID] = true
		matchedObls[suggestion.ObligationID] = true
	}

	var gapTxs []*models.Transaction
	for _, tx := range transactions {
		if !matchedTxs[tx.ID] {
			gapTxs = append(gapTxs, tx)
		}
	}

	var openObls []*models.Obligation
	for _, obl := range obligations {
		if !matchedObls[obl.ID] {
			openObls = append(openObls, obl)
		}
	}

	if len(gapTxs) == 0 || len(openObls) == 0 {
		return nil
	}

	augmentCtx, cancel := context.WithTimeout(ctx, e.config.AugmentationTimeout)
	defer cancel()

	raw, err := e.suggestor.Suggest(augmentCtx, gapTxs, openObls)
	if err != nil {
		log.WithError(err).Warn("Augmentation call failed, continuing with rule-based results")
		return nil
	}

	gapTxIDs := make(map[string]bool, len(gapTxs))
	for _, tx := range gapTxs {
		gapTxIDs[tx.ID] = true
	}
	openOblIDs := make(map[string]bool, len(openObls))
	for _, obl := range openObls {
		openOblIDs[obl.ID] = true
	}

	floor := e.config.Matching.AugmentationFloor
	accepted := make([]*models.MatchSuggestion, 0, len(raw))
	for _, suggestion := range raw {
		suggestion.Confidence = models.ClampConfidence(suggestion.Confidence)
		suggestion.Source = models.SourceAugmented

		if suggestion.Confidence < floor {
			log.WithFields(logger.Fields{
				"transaction_id": suggestion.TransactionID,
				"confidence":     suggestion.Confidence,
			}).Debug("Discarding augmentation suggestion below acceptance floor")
			continue
		}

		if !gapTxIDs[suggestion.TransactionID] || !openOblIDs[suggestion.ObligationID] {
			log.WithFields(logger.Fields{
				"transaction_id": suggestion.TransactionID,
				"obligation_id":  suggestion.ObligationID,
			}).Warn("Discarding augmentation suggestion with unknown ids")
			continue
		}

		accepted = append(accepted, suggestion)
	}

	log.WithFields(logger.Fields{
		"raw":      len(raw),
		"accepted": len(accepted),
	}).Info("Augmentation complete")

	return accepted
}
