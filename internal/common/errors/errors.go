// Package errors provides standardized error handling for the knowledge
// routing pipeline.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Adapter-level failures. Both are isolated per adapter and excluded
	// from scoring; they never abort a request.
	ErrCodeAdapterTimeout     ErrorCode = "ADAPTER_TIMEOUT"
	ErrCodeAdapterUnavailable ErrorCode = "ADAPTER_UNAVAILABLE"
	ErrCodeAdapterFailed      ErrorCode = "ADAPTER_FAILED"

	// Pipeline conditions.
	ErrCodeNoResultsAboveFloor ErrorCode = "NO_RESULTS_ABOVE_FLOOR"
	ErrCodeSynthesisFailed     ErrorCode = "SYNTHESIS_FAILED"

	// Feedback/learning failures stay behind the registration surface.
	ErrCodeFeedbackExtraction ErrorCode = "FEEDBACK_EXTRACTION_FAILED"
	ErrCodeLearningImport     ErrorCode = "LEARNING_IMPORT_INVALID"

	// Infrastructure.
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed        ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeCacheFailed              ErrorCode = "CACHE_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewAdapterTimeoutError marks an adapter that exceeded its call budget.
func NewAdapterTimeoutError(sourceID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAdapterTimeout,
		Message:   "Adapter exceeded its call budget",
		Details:   fmt.Sprintf("sourceId: %s", sourceID),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAdapterUnavailableError marks an adapter whose backing service is down.
func NewAdapterUnavailableError(sourceID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAdapterUnavailable,
		Message:   "Adapter backing service unavailable",
		Details:   fmt.Sprintf("sourceId: %s, error: %v", sourceID, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAdapterFailedError wraps any other per-adapter failure.
func NewAdapterFailedError(sourceID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAdapterFailed,
		Message:   "Adapter search failed",
		Details:   fmt.Sprintf("sourceId: %s, error: %v", sourceID, err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSynthesisFailedError covers a recovered panic inside the synthesizer.
func NewSynthesisFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSynthesisFailed,
		Message:   "Answer synthesis failed, fallback answer served",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewFeedbackExtractionError marks a pattern extraction that was skipped.
// It is logged and dropped, never surfaced to the feedback caller.
func NewFeedbackExtractionError(feedbackID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFeedbackExtraction,
		Message:   "Learning pattern extraction failed",
		Details:   fmt.Sprintf("feedbackId: %s, error: %v", feedbackID, err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLearningImportError marks an import payload that failed schema validation.
func NewLearningImportError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLearningImport,
		Message:   "Learning data import rejected",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable search backend error.
func NewSearchQueryFailedError(index string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Search query execution error",
		Details:   fmt.Sprintf("index: %s, error: %s", index, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Classification Helpers
// ==========================

// IsRetryable reports whether an error code is worth another attempt.
func IsRetryable(code ErrorCode) bool {
	switch code {
	case ErrCodeAdapterTimeout, ErrCodeAdapterUnavailable,
		ErrCodeDatabaseConnectionFailed, ErrCodeSearchQueryFailed, ErrCodeCacheFailed:
		return true
	default:
		return false
	}
}

// GetErrorCategory groups codes for logging and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeAdapterTimeout, ErrCodeAdapterUnavailable, ErrCodeAdapterFailed:
		return "adapter"
	case ErrCodeNoResultsAboveFloor, ErrCodeSynthesisFailed:
		return "pipeline"
	case ErrCodeFeedbackExtraction, ErrCodeLearningImport:
		return "learning"
	default:
		return "infrastructure"
	}
}
