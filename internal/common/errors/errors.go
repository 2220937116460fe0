// Package errors provides standardized error handling for the recommendation
// workers and their BPMN workflow integration.
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
	// Validation errors: terminal, never retried, never trigger a fallback.
	ErrCodeValidationFailed     ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidUserID        ErrorCode = "INVALID_USER_ID"
	ErrCodeInvalidCriteriaShape ErrorCode = "INVALID_CRITERIA_SHAPE"

	// Language-understanding collaborator: recovered locally by the
	// resolver's fallback transition, never surfaced to the workflow.
	ErrCodeNLUServiceFailed ErrorCode = "NLU_SERVICE_FAILED"
	ErrCodeNLUTimeout       ErrorCode = "NLU_TIMEOUT"

	// Catalog store (Elasticsearch).
	ErrCodeCatalogQueryFailed ErrorCode = "CATALOG_QUERY_FAILED"
	ErrCodeCatalogTimeout     ErrorCode = "CATALOG_TIMEOUT"

	// Order / combo stores (PostgreSQL).
	ErrCodeOrderQueryFailed ErrorCode = "ORDER_QUERY_FAILED"
	ErrCodeOrderTimeout     ErrorCode = "ORDER_QUERY_TIMEOUT"
	ErrCodeComboWriteFailed ErrorCode = "COMBO_WRITE_FAILED"
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
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ConvertToBPMNError maps a StandardError into its workflow form.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   GetRetryCount(stdErr.Code),
	}
}

// ==========================
// 3. Error Constructors
// ==========================

// NewValidationFailedError creates a terminal input-validation error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidUserIDError creates a terminal user-id validation error. It is
// raised before any store query runs.
func NewInvalidUserIDError(userID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidUserID,
		Message:   "User id is not a valid identifier",
		Details:   fmt.Sprintf("userId: %s", userID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidCriteriaShapeError reports a sort directive arriving where a
// filterable field was expected.
func NewInvalidCriteriaShapeError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidCriteriaShape,
		Message:   "Criteria contain a non-filterable key",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNLUServiceFailedError creates a recoverable language-understanding
// error. Callers handle it by switching to the keyword fallback, not by
// failing the job.
func NewNLUServiceFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNLUServiceFailed,
		Message:   "Language understanding service error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNLUTimeoutError creates a recoverable language-understanding timeout.
func NewNLUTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeNLUTimeout,
		Message:   "Language understanding service timed out",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogQueryFailedError creates a retryable catalog store error.
func NewCatalogQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogQueryFailed,
		Message:   "Catalog query error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogTimeoutError creates a retryable catalog timeout error.
func NewCatalogTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogTimeout,
		Message:   "Catalog query timeout",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewOrderQueryFailedError creates a retryable order store error.
func NewOrderQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeOrderQueryFailed,
		Message:   "Order history query error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewOrderTimeoutError creates a retryable order store timeout error.
func NewOrderTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeOrderTimeout,
		Message:   "Order history query timeout",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewComboWriteFailedError creates a retryable combo counter write error.
func NewComboWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeComboWriteFailed,
		Message:   "Combo frequency increment failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Retry / Category Policy
// ==========================

// GetRetryCount returns the retry budget for an error code. Validation and
// shape errors are terminal; store errors get bounded retries.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeCatalogQueryFailed, ErrCodeOrderQueryFailed, ErrCodeComboWriteFailed:
		return 3
	case ErrCodeCatalogTimeout, ErrCodeOrderTimeout:
		return 2
	default:
		return 0
	}
}

// GetErrorCategory buckets codes for logging and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeValidationFailed, ErrCodeInvalidUserID, ErrCodeInvalidCriteriaShape:
		return "validation"
	case ErrCodeNLUServiceFailed, ErrCodeNLUTimeout:
		return "external_service"
	case ErrCodeCatalogQueryFailed, ErrCodeCatalogTimeout:
		return "catalog_store"
	case ErrCodeOrderQueryFailed, ErrCodeOrderTimeout, ErrCodeComboWriteFailed:
		return "order_store"
	default:
		return "unknown"
	}
}
