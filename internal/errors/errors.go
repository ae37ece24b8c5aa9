package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Common error types that can be used across the application
var (
	ErrNotFound         = new(ErrCodeNotFound, "resource not found")
	ErrAlreadyExists    = new(ErrCodeAlreadyExists, "resource already exists")
	ErrVersionConflict  = new(ErrCodeVersionConflict, "version conflict")
	ErrValidation       = new(ErrCodeValidation, "validation error")
	ErrInvalidOperation = new(ErrCodeInvalidOperation, "invalid operation")
	ErrDatabase         = new(ErrCodeDatabase, "database error")
	ErrSystem           = new(ErrCodeSystemError, "system error")
	ErrHTTPClient       = new(ErrCodeHTTPClient, "http client error")

	// Billing-domain errors surfaced with their own machine-readable codes
	ErrTierUnavailable        = new(ErrCodeTierUnavailable, "tier is not available")
	ErrSubscriberNotFound     = new(ErrCodeSubscriberNotFound, "subscriber not found")
	ErrUnknownTier            = new(ErrCodeUnknownTier, "unknown tier")
	ErrUnknownQuotaKind       = new(ErrCodeUnknownQuotaKind, "unknown quota kind")
	ErrPaymentDeclined        = new(ErrCodePaymentDeclined, "payment declined")
	ErrPaymentTimeout         = new(ErrCodePaymentTimeout, "payment timed out")
	ErrGatewayUnreachable     = new(ErrCodeGatewayUnreachable, "payment gateway unreachable")
	ErrConcurrentChange       = new(ErrCodeConcurrentChange, "concurrent change in progress")
	ErrInvalidStateTransition = new(ErrCodeInvalidStateTransition, "invalid state transition")

	// maps errors to http status codes
	statusCodeMap = map[error]int{
		ErrDatabase:               http.StatusInternalServerError,
		ErrNotFound:               http.StatusNotFound,
		ErrAlreadyExists:          http.StatusConflict,
		ErrVersionConflict:        http.StatusConflict,
		ErrValidation:             http.StatusBadRequest,
		ErrInvalidOperation:       http.StatusBadRequest,
		ErrSystem:                 http.StatusInternalServerError,
		ErrHTTPClient:             http.StatusInternalServerError,
		ErrTierUnavailable:        http.StatusNotFound,
		ErrSubscriberNotFound:     http.StatusNotFound,
		ErrUnknownTier:            http.StatusBadRequest,
		ErrUnknownQuotaKind:       http.StatusBadRequest,
		ErrPaymentDeclined:        http.StatusPaymentRequired,
		ErrPaymentTimeout:         http.StatusGatewayTimeout,
		ErrGatewayUnreachable:     http.StatusBadGateway,
		ErrConcurrentChange:       http.StatusConflict,
		ErrInvalidStateTransition: http.StatusInternalServerError,
	}
)

const (
	ErrCodeSystemError            = "system_error"
	ErrCodeNotFound               = "not_found"
	ErrCodeAlreadyExists          = "already_exists"
	ErrCodeVersionConflict        = "version_conflict"
	ErrCodeValidation             = "validation_error"
	ErrCodeInvalidOperation       = "invalid_operation"
	ErrCodeDatabase               = "database_error"
	ErrCodeHTTPClient             = "http_client_error"
	ErrCodeTierUnavailable        = "tier_unavailable"
	ErrCodeSubscriberNotFound     = "subscriber_not_found"
	ErrCodeUnknownTier            = "unknown_tier"
	ErrCodeUnknownQuotaKind       = "unknown_quota_kind"
	ErrCodePaymentDeclined        = "payment_declined"
	ErrCodePaymentTimeout         = "payment_timeout"
	ErrCodeGatewayUnreachable     = "payment_gateway_unreachable"
	ErrCodeConcurrentChange       = "concurrent_change_in_progress"
	ErrCodeInvalidStateTransition = "invalid_state_transition"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Op      string // Logical operation name
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

// New creates a new InternalError
func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsVersionConflict checks if an error is a version conflict error
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsInvalidOperation checks if an error is an invalid operation error
func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}

// Code returns the machine-readable code of the first marked InternalError in
// the chain, or the system error code when nothing matches.
func Code(err error) string {
	for sentinel := range statusCodeMap {
		if errors.Is(err, sentinel) {
			if ie, ok := sentinel.(*InternalError); ok {
				return ie.Code
			}
		}
	}
	return ErrCodeSystemError
}

func HTTPStatusFromErr(err error) int {
	for e, status := range statusCodeMap {
		if errors.Is(err, e) {
			return status
		}
	}
	return http.StatusInternalServerError
}
