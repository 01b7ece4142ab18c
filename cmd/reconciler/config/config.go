// Package config builds engine configuration from CLI flags and environment
// variables.
package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/dvillagrablanco/inmova-app-sub030/internal/augment"
	"github.com/dvillagrablanco/inmova-app-sub030/internal/reconciler"
	"github.com/dvillagrablanco/inmova-app-sub030/pkg/errors"
)

// CreateEngineConfig creates a reconciliation engine configuration with the
// specified CLI overrides applied to the production defaults.
func CreateEngineConfig(dateTolerance, applyThreshold int, augmentTimeout time.Duration) (*reconciler.Config, error) {
	config := reconciler.DefaultConfig()

	config.Matching.DateToleranceDays = dateTolerance
	config.Matching.AutoApplyThreshold = applyThreshold
	if augmentTimeout > 0 {
		config.AugmentationTimeout = augmentTimeout
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "matching", config.Matching, err)
	}

	return config, nil
}

// CreateSuggestor creates the augmentation suggestor from environment
// configuration. The API key is read from RECONCILER_OPENAI_API_KEY.
func CreateSuggestor() (augment.Suggestor, error) {
	apiKey := viper.GetString("openai_api_key")
	if apiKey == "" {
		return nil, errors.AugmentationError(errors.CodeCapabilityUnavailable, "openai", nil).
			WithSuggestion("set RECONCILER_OPENAI_API_KEY to enable augmentation")
	}

	return augment.NewOpenAISuggestor(augment.Config{
		APIKey:  apiKey,
		Model:   viper.GetString("openai_model"),
		BaseURL: viper.GetString("openai_base_url"),
	})
}
