// Package errors defines the typed error taxonomy of the reconciliation
// engine. Errors carry a category, a specific code, optional context, and a
// suggestion for the operator; categories map to distinct CLI exit codes.
//
// The propagation policy is deliberate: only storage (listing) failures are
// fatal to a pipeline run. Input, augmentation, and apply errors degrade
// per-record and surface through the returned report instead.
package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryInput         ErrorCategory = "input"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryStorage       ErrorCategory = "storage"
	CategoryAugmentation  ErrorCategory = "augmentation"
	CategoryApply         ErrorCategory = "apply"
	CategoryInternal      ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// Input errors
	CodeInvalidRecord ErrorCode = "invalid_record"
	CodeMissingField  ErrorCode = "missing_field"

	// Configuration errors
	CodeInvalidConfig ErrorCode = "invalid_config"
	CodeMissingConfig ErrorCode = "missing_config"

	// Storage errors
	CodeStoreUnavailable ErrorCode = "store_unavailable"
	CodeQueryFailed      ErrorCode = "query_failed"

	// Augmentation errors
	CodeTimeout               ErrorCode = "timeout"
	CodeBadResponse           ErrorCode = "bad_response"
	CodeCapabilityUnavailable ErrorCode = "capability_unavailable"

	// Apply errors
	CodeAlreadyClaimed ErrorCode = "already_claimed"
	CodeStoreConflict  ErrorCode = "store_conflict"
	CodeApplyFailed    ErrorCode = "apply_failed"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// EngineError is the base error type for all engine errors
type EngineError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *EngineError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *EngineError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate exit code for the error
func (e *EngineError) GetExitCode() int {
	switch e.Category {
	case CategoryInput:
		return 2
	case CategoryConfiguration:
		return 3
	case CategoryStorage:
		return 4
	case CategoryApply, CategoryInternal:
		return 5
	case CategoryAugmentation:
		return 6
	default:
		return 1
	}
}

// WithContext adds context information to the error
func (e *EngineError) WithContext(key string, value interface{}) *EngineError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *EngineError) WithSuggestion(suggestion string) *EngineError {
	e.Suggestion = suggestion
	return e
}

// New creates a new EngineError
func New(category ErrorCategory, code ErrorCode, message string) *EngineError {
	return &EngineError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with EngineError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *EngineError {
	if err == nil {
		return nil
	}

	return &EngineError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// stackTracer interface for extracting stack traces
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// InputError creates an error for a malformed transaction or obligation record
func InputError(code ErrorCode, recordID string, err error) *EngineError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidRecord:
		message = fmt.Sprintf("invalid record: %s", recordID)
		suggestion = "check the record fields in the backing store"
	case CodeMissingField:
		message = fmt.Sprintf("record %s is missing a required field", recordID)
		suggestion = "provide a value for the required field"
	default:
		message = fmt.Sprintf("input error for record: %s", recordID)
		suggestion = "check the record and try again"
	}

	return build(err, CategoryInput, code, message).
		WithSuggestion(suggestion).
		WithContext("record_id", recordID)
}

// ConfigurationError creates a configuration-related error
func ConfigurationError(code ErrorCode, setting string, value interface{}, err error) *EngineError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidConfig:
		message = fmt.Sprintf("invalid configuration for '%s': %v", setting, value)
		suggestion = "check the configuration documentation for valid values"
	case CodeMissingConfig:
		message = fmt.Sprintf("missing required configuration: %s", setting)
		suggestion = "provide this configuration setting or use a config file"
	default:
		message = fmt.Sprintf("configuration error: %s", setting)
		suggestion = "check your configuration and try again"
	}

	return build(err, CategoryConfiguration, code, message).
		WithSuggestion(suggestion).
		WithContext("setting", setting).
		WithContext("value", value)
}

// StorageError creates an error for a failed store operation.
// Listing failures are the only fatal errors in the pipeline.
func StorageError(code ErrorCode, operation string, err error) *EngineError {
	var message string
	var suggestion string

	switch code {
	case CodeStoreUnavailable:
		message = fmt.Sprintf("store unavailable during %s", operation)
		suggestion = "check the database path and connectivity"
	case CodeQueryFailed:
		message = fmt.Sprintf("query failed during %s", operation)
		suggestion = "check the store schema and data integrity"
	default:
		message = fmt.Sprintf("storage error during %s", operation)
		suggestion = "check the backing store and try again"
	}

	return build(err, CategoryStorage, code, message).
		WithSuggestion(suggestion).
		WithContext("operation", operation)
}

// AugmentationError creates an error for a failed augmentation call.
// These errors are logged and never propagated to the caller.
func AugmentationError(code ErrorCode, provider string, err error) *EngineError {
	var message string
	var suggestion string

	switch code {
	case CodeTimeout:
		message = fmt.Sprintf("augmentation call to %s timed out", provider)
		suggestion = "increase the augmentation timeout or disable augmentation"
	case CodeBadResponse:
		message = fmt.Sprintf("augmentation provider %s returned a malformed response", provider)
		suggestion = "the rule-based results are unaffected; check provider status"
	case CodeCapabilityUnavailable:
		message = fmt.Sprintf("augmentation capability %s is not configured", provider)
		suggestion = "set the provider API key or run without --use-augmentation"
	default:
		message = fmt.Sprintf("augmentation error from %s", provider)
		suggestion = "the rule-based results are unaffected"
	}

	return build(err, CategoryAugmentation, code, message).
		WithSuggestion(suggestion).
		WithContext("provider", provider)
}

// ApplyError creates an error for a single failed apply pair.
// A pair failure is recorded in the report and never fails the batch.
func ApplyError(code ErrorCode, transactionID, obligationID string, err error) *EngineError {
	var message string
	var suggestion string

	switch code {
	case CodeAlreadyClaimed:
		message = fmt.Sprintf("transaction %s or obligation %s was claimed concurrently", transactionID, obligationID)
		suggestion = "another invocation applied this pair first; no action needed"
	case CodeStoreConflict:
		message = fmt.Sprintf("store conflict applying transaction %s to obligation %s", transactionID, obligationID)
		suggestion = "re-run the reconciliation to retry unapplied pairs"
	default:
		message = fmt.Sprintf("failed to apply transaction %s to obligation %s", transactionID, obligationID)
		suggestion = "check the store logs and re-run the reconciliation"
	}

	return build(err, CategoryApply, code, message).
		WithSuggestion(suggestion).
		WithContext("transaction_id", transactionID).
		WithContext("obligation_id", obligationID)
}

// InternalError creates an internal error
func InternalError(code ErrorCode, operation string, err error) *EngineError {
	message := fmt.Sprintf("internal error during %s", operation)
	suggestion := "this is likely a bug - please report it with the error details"

	return build(err, CategoryInternal, code, message).
		WithSuggestion(suggestion).
		WithContext("operation", operation)
}

func build(err error, category ErrorCategory, code ErrorCode, message string) *EngineError {
	if err != nil {
		return Wrap(err, category, code, message)
	}
	return New(category, code, message)
}

// IsEngineError checks if an error is an EngineError
func IsEngineError(err error) bool {
	_, ok := AsEngineError(err)
	return ok
}

// AsEngineError extracts an EngineError from an error chain
func AsEngineError(err error) (*EngineError, bool) {
	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return engineErr, true
	}
	return nil, false
}

// HasCode reports whether the error chain contains an EngineError with the
// given code.
func HasCode(err error, code ErrorCode) bool {
	engineErr, ok := AsEngineError(err)
	return ok && engineErr.Code == code
}

// ErrorSummary aggregates multiple per-record errors into one reportable value
type ErrorSummary struct {
	Total      int                   `json:"total"`
	ByCategory map[ErrorCategory]int `json:"by_category"`
	Errors     []*EngineError        `json:"errors"`
}

// NewErrorSummary creates a new error summary
func NewErrorSummary(errs []*EngineError) *ErrorSummary {
	summary := &ErrorSummary{
		Total:      len(errs),
		ByCategory: make(map[ErrorCategory]int),
		Errors:     errs,
	}

	for _, err := range errs {
		summary.ByCategory[err.Category]++
	}

	return summary
}

// Error returns a formatted error message for the summary
func (es *ErrorSummary) Error() string {
	if es.Total == 0 {
		return "no errors"
	}

	if es.Total == 1 {
		return es.Errors[0].Error()
	}

	var categories []string
	for category, count := range es.ByCategory {
		categories = append(categories, fmt.Sprintf("%s: %d", category, count))
	}

	return fmt.Sprintf("%d errors occurred (%s)", es.Total, strings.Join(categories, ", "))
}
