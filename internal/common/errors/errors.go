// Package errors provides standardized error handling for the decision layer.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Deterministic classification outcomes that surface as user-facing
	// clarifications rather than failures.
	ErrCodeAmbiguousInput     ErrorCode = "AMBIGUOUS_INPUT"
	ErrCodeLowConfidenceMatch ErrorCode = "LOW_CONFIDENCE_MATCH"

	// Chain planning failures.
	ErrCodeChainInvariantViolation ErrorCode = "CHAIN_INVARIANT_VIOLATION"
	ErrCodeChainSelectionFailed    ErrorCode = "CHAIN_SELECTION_FAILED"

	// Collaborator failures.
	ErrCodeLLMTimeout                ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMInterpretationFailed   ErrorCode = "LLM_INTERPRETATION_FAILED"
	ErrCodeLLMResponseInvalid        ErrorCode = "LLM_RESPONSE_INVALID"
	ErrCodeEntityRegistryUnavailable ErrorCode = "ENTITY_REGISTRY_UNAVAILABLE"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the cause so errors.Is can match sentinel values through
// the StandardError.
func (e *StandardError) Unwrap() error {
	return e.Cause
}

// ==========================
// 2. Error Constructors
// ==========================

// NewAmbiguousInputError marks a deterministic multi-intent match. Never
// retryable: the resolution is a CLARIFY response, not a retry.
func NewAmbiguousInputError(details string, splitOptions []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAmbiguousInput,
		Message:   "Request matches more than one intent",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"splitOptions": splitOptions},
		Timestamp: time.Now().UTC(),
	}
}

// NewLowConfidenceMatchError records a classification kept below the
// confidence threshold after the validation call could not confirm it.
func NewLowConfidenceMatchError(intent string, confidence float64) *StandardError {
	return &StandardError{
		Code:      ErrCodeLowConfidenceMatch,
		Message:   "Classification confidence below threshold",
		Details:   fmt.Sprintf("intent: %s, confidence: %.2f", intent, confidence),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewChainInvariantViolationError creates a non-retryable planning error.
// The reason string is user-facing and accompanies the CLARIFY chain.
func NewChainInvariantViolationError(rule, reason string) *StandardError {
	return &StandardError{
		Code:      ErrCodeChainInvariantViolation,
		Message:   "Contract chain failed validation",
		Details:   reason,
		Retryable: false,
		Metadata:  map[string]interface{}{"rule": rule},
		Timestamp: time.Now().UTC(),
	}
}

// NewChainSelectionFailedError indicates no selection stage produced a
// usable chain.
func NewChainSelectionFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeChainSelectionFailed,
		Message:   "No contract chain could be selected",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMTimeoutError creates a retryable LLM timeout error wrapping cause.
func NewLLMTimeoutError(call string, cause error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMTimeout,
		Message:   "LLM call timed out",
		Details:   fmt.Sprintf("call: %s", call),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		Cause:     cause,
	}
}

// NewLLMInterpretationFailedError creates a retryable LLM transport error.
func NewLLMInterpretationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMInterpretationFailed,
		Message:   "LLM interpretation call failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewLLMResponseInvalidError marks a response that failed schema validation.
// Non-retryable: the caller degrades to the safe default instead.
func NewLLMResponseInvalidError(details string, cause error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMResponseInvalid,
		Message:   "LLM response failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Cause:     cause,
	}
}

// NewEntityRegistryUnavailableError creates a retryable registry error.
func NewEntityRegistryUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEntityRegistryUnavailable,
		Message:   "Entity registry lookup failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// IsRetryable reports whether err carries a StandardError marked retryable.
func IsRetryable(err error) bool {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se.Retryable
	}
	return false
}

// CodeOf extracts the ErrorCode from err, or UNKNOWN_ERROR.
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ErrorCode("UNKNOWN_ERROR")
}
