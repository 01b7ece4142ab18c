package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestEngineError_Error(t *testing.T) {
	err := New(CategoryStorage, CodeQueryFailed, "query failed during listing")
	if err.Error() != "query failed during listing" {
		t.Errorf("Unexpected message: %s", err.Error())
	}

	err.WithSuggestion("check the store schema")
	if !strings.Contains(err.Error(), "suggestion: check the store schema") {
		t.Errorf("Expected suggestion in message, got: %s", err.Error())
	}
}

func TestEngineError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("disk I/O error")
	err := Wrap(cause, CategoryStorage, CodeQueryFailed, "query failed")

	if err.Unwrap() != cause {
		t.Error("Expected Unwrap to return the cause")
	}
}

func TestEngineError_GetExitCode(t *testing.T) {
	tests := []struct {
		category ErrorCategory
		want     int
	}{
		{CategoryInput, 2},
		{CategoryConfiguration, 3},
		{CategoryStorage, 4},
		{CategoryApply, 5},
		{CategoryInternal, 5},
		{CategoryAugmentation, 6},
		{ErrorCategory("unknown"), 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			err := New(tt.category, CodeUnexpectedError, "test")
			if got := err.GetExitCode(); got != tt.want {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEngineError_WithContext(t *testing.T) {
	err := New(CategoryApply, CodeApplyFailed, "apply failed").
		WithContext("transaction_id", "TX001").
		WithContext("obligation_id", "OB001")

	if err.Context["transaction_id"] != "TX001" {
		t.Errorf("Expected transaction_id in context, got %v", err.Context)
	}
	if err.Context["obligation_id"] != "OB001" {
		t.Errorf("Expected obligation_id in context, got %v", err.Context)
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *EngineError
		category ErrorCategory
		code     ErrorCode
	}{
		{
			name:     "input error",
			err:      InputError(CodeInvalidRecord, "TX001", fmt.Errorf("amount is zero")),
			category: CategoryInput,
			code:     CodeInvalidRecord,
		},
		{
			name:     "configuration error",
			err:      ConfigurationError(CodeInvalidConfig, "apply_threshold", 150, nil),
			category: CategoryConfiguration,
			code:     CodeInvalidConfig,
		},
		{
			name:     "storage error",
			err:      StorageError(CodeStoreUnavailable, "open", fmt.Errorf("no such file")),
			category: CategoryStorage,
			code:     CodeStoreUnavailable,
		},
		{
			name:     "augmentation timeout",
			err:      AugmentationError(CodeTimeout, "openai", fmt.Errorf("deadline exceeded")),
			category: CategoryAugmentation,
			code:     CodeTimeout,
		},
		{
			name:     "apply conflict",
			err:      ApplyError(CodeAlreadyClaimed, "TX001", "OB001", nil),
			category: CategoryApply,
			code:     CodeAlreadyClaimed,
		},
		{
			name:     "internal error",
			err:      InternalError(CodeUnexpectedError, "pipeline", fmt.Errorf("boom")),
			category: CategoryInternal,
			code:     CodeUnexpectedError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Category != tt.category {
				t.Errorf("Category = %s, want %s", tt.err.Category, tt.category)
			}
			if tt.err.Code != tt.code {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.code)
			}
			if tt.err.Message == "" {
				t.Error("Expected a message")
			}
			if tt.err.Suggestion == "" {
				t.Error("Expected a suggestion")
			}
		})
	}
}

func TestAsEngineError(t *testing.T) {
	engineErr := StorageError(CodeQueryFailed, "listing", fmt.Errorf("syntax error"))
	wrapped := fmt.Errorf("run failed: %w", engineErr)

	extracted, ok := AsEngineError(wrapped)
	if !ok {
		t.Fatal("Expected engine error in chain")
	}
	if extracted.Code != CodeQueryFailed {
		t.Errorf("Expected query_failed, got %s", extracted.Code)
	}

	if _, ok := AsEngineError(fmt.Errorf("plain error")); ok {
		t.Error("Plain errors must not extract as engine errors")
	}
}

func TestHasCode(t *testing.T) {
	err := ApplyError(CodeAlreadyClaimed, "TX001", "OB001", nil)

	if !HasCode(err, CodeAlreadyClaimed) {
		t.Error("Expected HasCode to match")
	}
	if HasCode(err, CodeTimeout) {
		t.Error("Expected HasCode to reject a different code")
	}
	if HasCode(nil, CodeTimeout) {
		t.Error("Expected HasCode to reject nil")
	}
}

func TestWrap_NilError(t *testing.T) {
	if err := Wrap(nil, CategoryStorage, CodeQueryFailed, "ignored"); err != nil {
		t.Errorf("Expected nil for nil cause, got %v", err)
	}
}

func TestErrorSummary(t *testing.T) {
	summary := NewErrorSummary([]*EngineError{
		InputError(CodeInvalidRecord, "TX001", nil),
		InputError(CodeInvalidRecord, "TX002", nil),
		AugmentationError(CodeTimeout, "openai", nil),
	})

	if summary.Total != 3 {
		t.Errorf("Expected total 3, got %d", summary.Total)
	}
	if summary.ByCategory[CategoryInput] != 2 {
		t.Errorf("Expected 2 input errors, got %d", summary.ByCategory[CategoryInput])
	}

	msg := summary.Error()
	if !strings.Contains(msg, "3 errors occurred") {
		t.Errorf("Unexpected summary message: %s", msg)
	}

	empty := NewErrorSummary(nil)
	if empty.Error() != "no errors" {
		t.Errorf("Expected 'no errors', got %s", empty.Error())
	}

	single := NewErrorSummary([]*EngineError{InputError(CodeInvalidRecord, "TX001", nil)})
	if single.Error() != single.Errors[0].Error() {
		t.Errorf("Single-error summary should use the error's own message")
	}
}
