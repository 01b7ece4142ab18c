// Package matcher implements the rule-based core of the rent reconciliation
// engine: candidate generation, confidence scoring, and conflict-free
// assignment of bank transactions to rent obligations.
//
// The matching pipeline runs in three stages:
//  1. Candidate generation: amount-indexed lookup of obligations within a
//     fixed tolerance of each transaction amount, first-wins per pass.
//  2. Confidence scoring: a base score for the amount match plus independent
//     bonuses for tenant name, domain keywords, and due-date proximity.
//  3. Assignment resolution: greedy descending-confidence selection that
//     guarantees each transaction and each obligation appears at most once.
//
// Example usage:
//
//	config := matcher.DefaultMatchingConfig()
//	engine := matcher.NewMatchingEngine(config)
//	suggestions := engine.Suggest(transactions, obligations)
package matcher

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MatchingConfig holds the tunable parameters of the rule-based matcher.
// The defaults encode the production contract: effectively exact amount
// matching, a base score of 80, and an automatic-apply threshold of 85.
type MatchingConfig struct {
	// AmountEpsilon is the maximum absolute amount difference for a candidate.
	AmountEpsilon decimal.Decimal `json:"amount_epsilon"`

	// BaseScore is awarded for any amount match within AmountEpsilon.
	BaseScore int `json:"base_score"`

	// NameBonus is awarded when the tenant's first name appears in the
	// transaction description or reference.
	NameBonus int `json:"name_bonus"`

	// KeywordBonus is awarded when a domain keyword appears in the
	// transaction description or reference.
	KeywordBonus int `json:"keyword_bonus"`

	// DateBonus is awarded when posted and due dates are within
	// DateToleranceDays of each other.
	DateBonus int `json:"date_bonus"`

	// DateToleranceDays is the maximum day distance for the date bonus.
	DateToleranceDays int `json:"date_tolerance_days"`

	// AutoApplyThreshold is the minimum confidence for automatic application.
	AutoApplyThreshold int `json:"auto_apply_threshold"`

	// AugmentationFloor is the minimum confidence accepted from the
	// external augmentation adapter.
	AugmentationFloor int `json:"augmentation_floor"`

	// Keywords are the domain terms searched in transaction text,
	// matched case-insensitively.
	Keywords []string `json:"keywords"`
}

// DefaultMatchingConfig returns the production configuration.
func DefaultMatchingConfig() *MatchingConfig {
	return &MatchingConfig{
		AmountEpsilon:      decimal.NewFromFloat(0.01),
		BaseScore:          80,
		NameBonus:          10,
		KeywordBonus:       5,
		DateBonus:          5,
		DateToleranceDays:  5,
		AutoApplyThreshold: 85,
		AugmentationFloor:  60,
		Keywords: []string{
			"rent", "monthly", "installment",
			"alquiler", "renta", "mensualidad", "cuota", "arriendo",
		},
	}
}

// Validate checks if the matching configuration is valid
func (mc *MatchingConfig) Validate() error {
	if mc.AmountEpsilon.IsNegative() {
		return fmt.Errorf("amount epsilon cannot be negative: %s", mc.AmountEpsilon)
	}

	if mc.BaseScore < 0 || mc.BaseScore > 100 {
		return fmt.Errorf("base score must be between 0 and 100: %d", mc.BaseScore)
	}

	for name, bonus := range map[string]int{
		"name bonus":    mc.NameBonus,
		"keyword bonus": mc.KeywordBonus,
		"date bonus":    mc.DateBonus,
	} {
		if bonus < 0 {
			return fmt.Errorf("%s cannot be negative: %d", name, bonus)
		}
	}

	if mc.DateToleranceDays < 0 {
		return fmt.Errorf("date tolerance days cannot be negative: %d", mc.DateToleranceDays)
	}

	if mc.AutoApplyThreshold < 0 || mc.AutoApplyThreshold > 100 {
		return fmt.Errorf("auto-apply threshold must be between 0 and 100: %d", mc.AutoApplyThreshold)
	}

	if mc.AugmentationFloor < 0 || mc.AugmentationFloor > 100 {
		return fmt.Errorf("augmentation floor must be between 0 and 100: %d", mc.AugmentationFloor)
	}

	return nil
}

// Clone creates a deep copy of the matching configuration
func (mc *MatchingConfig) Clone() *MatchingConfig {
	if mc == nil {
		return nil
	}

	clone := *mc
	clone.Keywords = make([]string, len(mc.Keywords))
	copy(clone.Keywords, mc.Keywords)
	return &clone
}

// String returns a human-readable description of the configuration
func (mc *MatchingConfig) String() string {
	return fmt.Sprintf("MatchingConfig{Epsilon: %s, Base: %d, Threshold: %d, Floor: %d, DateTolerance: %d days}",
		mc.AmountEpsilon, mc.BaseScore, mc.AutoApplyThreshold, mc.AugmentationFloor, mc.DateToleranceDays)
}
