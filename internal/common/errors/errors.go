// Package errors provides standardized error handling for the concierge service.
package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeConfigMissing        ErrorCode = "CONFIG_MISSING"
	ErrCodeRateLimitExceeded    ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrCodeInvalidRequest       ErrorCode = "INVALID_REQUEST"
	ErrCodeUpstreamOverloaded   ErrorCode = "UPSTREAM_OVERLOADED"
	ErrCodeUpstreamUnavailable  ErrorCode = "UPSTREAM_UNAVAILABLE"
	ErrCodeUpstreamFailed       ErrorCode = "UPSTREAM_FAILED"
	ErrCodeMalformedModelOutput ErrorCode = "MALFORMED_MODEL_OUTPUT"
	ErrCodeReservationInvalid   ErrorCode = "RESERVATION_INVALID"
	ErrCodeBookingStoreFailed   ErrorCode = "BOOKING_STORE_FAILED"
	ErrCodeInternal             ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error. Message is
// safe to show to callers; Details is for server-side logs only.
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

// HTTPStatus maps an error code to the status the boundary responds with.
func (e *StandardError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeRateLimitExceeded, ErrCodeUpstreamOverloaded:
		return http.StatusTooManyRequests
	case ErrCodeUpstreamUnavailable:
		return http.StatusPaymentRequired
	case ErrCodeInvalidRequest, ErrCodeReservationInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ==========================
// 2. Error Constructors
// ==========================

// NewConfigMissingError creates a non-retryable configuration error.
// Matches the exception-message behavior of the boundary: the caller
// sees which credential is missing, not the value.
func NewConfigMissingError(name string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigMissing,
		Message:   fmt.Sprintf("%s is not configured", name),
		Details:   fmt.Sprintf("%s is not configured", name),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRateLimitExceededError creates the 429 returned by the limiter.
func NewRateLimitExceededError(identifier string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimitExceeded,
		Message:   "Too many requests. Please wait a moment before trying again.",
		Details:   fmt.Sprintf("identifier: %s", identifier),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRequestError creates a non-retryable bad request error.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Invalid request",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamOverloadedError creates the 429 passthrough from the model gateway.
func NewUpstreamOverloadedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamOverloaded,
		Message:   "We're experiencing high demand. Please try again in a moment.",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamUnavailableError creates the 402 passthrough from the model gateway.
func NewUpstreamUnavailableError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamUnavailable,
		Message:   "Service temporarily unavailable. Please try again later.",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamFailedError creates an opaque 500 for any other gateway failure.
// Upstream status and body go to Details for server-side logging only.
func NewUpstreamFailedError(status int, body string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamFailed,
		Message:   "Unable to process your request",
		Details:   fmt.Sprintf("upstream status %d: %s", status, body),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedModelOutputError creates a non-retryable parse error for a
// reservation block that was present but not valid JSON.
func NewMalformedModelOutputError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedModelOutput,
		Message:   "Assistant produced an unreadable reservation block",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewReservationInvalidError creates a non-retryable validation error.
func NewReservationInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeReservationInvalid,
		Message:   "Reservation request is invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewBookingStoreFailedError creates a retryable reservation insert error.
func NewBookingStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBookingStoreFailed,
		Message:   "Failed to create reservation",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected error.
func NewInternalError(err error) *StandardError {
	msg := "Unknown error"
	details := ""
	if err != nil {
		msg = err.Error()
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   msg,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
