// Package errors provides standardized error handling for the admission bot.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeConfigMissing      ErrorCode = "CONFIG_MISSING"
	ErrCodeCatalogUnavailable ErrorCode = "CATALOG_UNAVAILABLE"
	ErrCodeCatalogAnomaly     ErrorCode = "CATALOG_ANOMALY"

	ErrCodeInputFormat    ErrorCode = "INPUT_FORMAT"
	ErrCodeBelowThreshold ErrorCode = "BELOW_THRESHOLD"

	ErrCodeGatewayError    ErrorCode = "GATEWAY_ERROR"
	ErrCodeSignCheckFailed ErrorCode = "SIGN_CHECK_FAILED"
	ErrCodeNetworkError    ErrorCode = "NETWORK_ERROR"

	ErrCodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeInvalidEvent    ErrorCode = "INVALID_EVENT"
	ErrCodeStorageError    ErrorCode = "STORAGE_ERROR"
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

// CodeOf extracts the error code from an error chain, or "" when the
// error is not a StandardError.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// ==========================
// 2. Error Constructors
// ==========================

// NewConfigMissingError reports absent payment credentials. Fatal to the
// session, never retried.
func NewConfigMissingError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigMissing,
		Message:   "Payment gateway credentials are not configured",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogUnavailableError reports a failed catalog load. Fatal to the
// session, retried only on the next independent request.
func NewCatalogUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogUnavailable,
		Message:   "University catalog is unavailable",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogAnomalyError reports one malformed program entry. Isolated and
// skipped by the caller, never escalated to a session-level error.
func NewCatalogAnomalyError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogAnomaly,
		Message:   "Malformed catalog program entry",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInputFormatError reports a non-numeric score submission. Recoverable,
// the caller re-prompts.
func NewInputFormatError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputFormat,
		Message:   "Score must be a number",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewBelowThresholdError reports a score under the minimum passing score.
// An expected business outcome, not a system error.
func NewBelowThresholdError(threshold float64) *StandardError {
	return &StandardError{
		Code:      ErrCodeBelowThreshold,
		Message:   "Score is below the minimum passing score",
		Details:   fmt.Sprintf("threshold: %.1f", threshold),
		Retryable: false,
		Metadata:  map[string]interface{}{"threshold": threshold},
		Timestamp: time.Now().UTC(),
	}
}

// NewGatewayError reports a non-zero error code from the payment gateway,
// surfaced with the gateway's own note.
func NewGatewayError(errorCode int64, errorNote string) *StandardError {
	return &StandardError{
		Code:      ErrCodeGatewayError,
		Message:   "Payment gateway reported an error",
		Details:   fmt.Sprintf("error_code: %d, error_note: %s", errorCode, errorNote),
		Retryable: false,
		Metadata:  map[string]interface{}{"gatewayCode": errorCode, "gatewayNote": errorNote},
		Timestamp: time.Now().UTC(),
	}
}

// NewSignCheckFailedError reports a webhook signature mismatch. Logged as a
// security event; must never flip payment status.
func NewSignCheckFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSignCheckFailed,
		Message:   "Webhook signature verification failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNetworkError reports a timeout or connection failure to the gateway.
// Retryable "unknown" result, distinct from a gateway-reported failure.
func NewNetworkError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNetworkError,
		Message:   "Payment gateway is unreachable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionNotFoundError reports an event for an unknown session key.
func NewSessionNotFoundError(sessionKey string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionNotFound,
		Message:   "Session not found",
		Details:   fmt.Sprintf("sessionKey: %s", sessionKey),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidEventError reports an event not accepted in the current state.
// The session stays in its current state.
func NewInvalidEventError(state, event string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidEvent,
		Message:   "Event not accepted in current state",
		Details:   fmt.Sprintf("state: %s, event: %s", state, event),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStorageError reports a payment store failure.
func NewStorageError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStorageError,
		Message:   "Payment store operation failed",
		Details:   fmt.Sprintf("op: %s, error: %s", op, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// IsRetryable checks if an error allows the user to retry the same action.
func IsRetryable(err error) bool {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Retryable
	}
	return false
}

// IsTerminal checks if an error ends the conversation.
func IsTerminal(err error) bool {
	switch CodeOf(err) {
	case ErrCodeConfigMissing, ErrCodeCatalogUnavailable, ErrCodeBelowThreshold:
		return true
	default:
		return false
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CONFIG"):
		return "CONFIG"
	case strings.Contains(codeStr, "CATALOG"):
		return "CATALOG"
	case strings.Contains(codeStr, "GATEWAY") || strings.Contains(codeStr, "SIGN") || strings.Contains(codeStr, "NETWORK"):
		return "PAYMENT"
	case strings.Contains(codeStr, "INPUT") || strings.Contains(codeStr, "THRESHOLD"):
		return "USER_INPUT"
	case strings.Contains(codeStr, "SESSION") || strings.Contains(codeStr, "EVENT"):
		return "CONVERSATION"
	default:
		return "OTHER"
	}
}
