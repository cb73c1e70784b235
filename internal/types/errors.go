package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode is a typed string for categorizing application errors.
type ErrorCode string

// Error codes grouped by the collaborator that produced them. The prefix
// decides how the engine reacts: provider_* aborts the run, notifier_* is
// logged and skipped, state_* degrades (read) or is surfaced after the fact
// (write).
const (
	// Forecast provider (fatal for the current run)
	ErrCodeProviderUnavailable      ErrorCode = "provider_unavailable"
	ErrCodeProviderBadStatus        ErrorCode = "provider_bad_status"
	ErrCodeProviderMalformedPayload ErrorCode = "provider_malformed_payload"
	ErrCodeProviderRateLimited      ErrorCode = "provider_rate_limited"

	// Notifier (never fatal)
	ErrCodeNotifierRejected    ErrorCode = "notifier_rejected"
	ErrCodeNotifierUnavailable ErrorCode = "notifier_unavailable"

	// Persisted alert state
	ErrCodeStateReadFailed  ErrorCode = "state_read_failed"
	ErrCodeStateWriteFailed ErrorCode = "state_write_failed"

	// Catch-all for local failures (request construction, marshalling).
	ErrCodeInternalUnexpected ErrorCode = "internal_unexpected_error"
)

// Category returns the collaborator family of the code ("provider",
// "notifier", "state" or "internal").
func (c ErrorCode) Category() string {
	s := string(c)
	if i := strings.IndexByte(s, '_'); i > 0 {
		return s[:i]
	}
	return s
}

// AppError is the standard application error type used throughout the
// module. Components return AppError so callers can branch on the code
// instead of parsing messages.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails returns a copy of the error with the provided details merged in.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	merged := make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     e.Err,
		Details: merged,
	}
}

// NewAppError creates a new AppError with the given code, message, and optional
// underlying error.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewAppErrorWithDetails creates a new AppError carrying structured details.
func NewAppErrorWithDetails(code ErrorCode, message string, err error, details map[string]any) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
		Details: details,
	}
}

// CodeOf extracts the ErrorCode of the first AppError in err's chain.
// Returns "" when the chain holds no AppError.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsProviderError reports whether err originated from the forecast provider.
func IsProviderError(err error) bool {
	return CodeOf(err).Category() == "provider"
}

// IsNotifierError reports whether err originated from a notification channel.
func IsNotifierError(err error) bool {
	return CodeOf(err).Category() == "notifier"
}

// IsStateError reports whether err originated from the alert state store.
func IsStateError(err error) bool {
	return CodeOf(err).Category() == "state"
}
