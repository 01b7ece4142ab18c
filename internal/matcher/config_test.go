package matcher

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDefaultMatchingConfig(t *testing.T) {
	config := DefaultMatchingConfig()

	if err := config.Validate(); err != nil {
		t.Fatalf("Default config should be valid: %v", err)
	}

	if config.BaseScore != 80 {
		t.Errorf("Expected base score 80, got %d", config.BaseScore)
	}
	if config.AutoApplyThreshold != 85 {
		t.Errorf("Expected auto-apply threshold 85, got %d", config.AutoApplyThreshold)
	}
	if config.AugmentationFloor != 60 {
		t.Errorf("Expected augmentation floor 60, got %d", config.AugmentationFloor)
	}
	if !config.AmountEpsilon.Equal(decimal.NewFromFloat(0.01)) {
		t.Errorf("Expected amount epsilon 0.01, got %s", config.AmountEpsilon)
	}
	if len(config.Keywords) == 0 {
		t.Error("Expected default keyword list to be populated")
	}
}

func TestMatchingConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*MatchingConfig)
		wantErr bool
	}{
		{
			name:    "default is valid",
			modify:  func(*MatchingConfig) {},
			wantErr: false,
		},
		{
			name:    "negative epsilon",
			modify:  func(c *MatchingConfig) { c.AmountEpsilon = decimal.NewFromFloat(-0.01) },
			wantErr: true,
		},
		{
			name:    "base score above 100",
			modify:  func(c *MatchingConfig) { c.BaseScore = 101 },
			wantErr: true,
		},
		{
			name:    "negative bonus",
			modify:  func(c *MatchingConfig) { c.NameBonus = -1 },
			wantErr: true,
		},
		{
			name:    "negative date tolerance",
			modify:  func(c *MatchingConfig) { c.DateToleranceDays = -1 },
			wantErr: true,
		},
		{
			name:    "threshold out of range",
			modify:  func(c *MatchingConfig) { c.AutoApplyThreshold = 150 },
			wantErr: true,
		},
		{
			name:    "floor out of range",
			modify:  func(c *MatchingConfig) { c.AugmentationFloor = -5 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultMatchingConfig()
			tt.modify(config)

			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMatchingConfig_Clone(t *testing.T) {
	original := DefaultMatchingConfig()
	clone := original.Clone()

	clone.BaseScore = 50
	clone.Keywords[0] = "changed"

	if original.BaseScore != 80 {
		t.Error("Clone modification leaked into original base score")
	}
	if original.Keywords[0] == "changed" {
		t.Error("Clone modification leaked into original keywords")
	}
}
