package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Credential and capability lifecycle error types.
const (
	ErrorTypeTokenExpired     ErrorType = "token_expired"
	ErrorTypeTokenAlreadyUsed ErrorType = "token_already_used"
	ErrorTypeUpstreamFailure  ErrorType = "upstream_failure"
)

// TokenError is returned when a magic link or download token exists but can
// no longer be exchanged. It is an expected user error and never audited.
type TokenError struct {
	*AppError
}

// Error implements the error interface
func (e *TokenError) Error() string {
	return e.AppError.Error()
}

// Unwrap allows errors.Is and errors.As to reach the AppError
func (e *TokenError) Unwrap() error {
	return e.AppError
}

// NewTokenExpiredError creates an error for a credential past its expiry.
func NewTokenExpiredError(message string) *TokenError {
	return &TokenError{
		AppError: &AppError{
			Type:    ErrorTypeTokenExpired,
			Message: message,
			Code:    http.StatusGone,
		},
	}
}

// NewTokenAlreadyUsedError creates an error for a consumed one-time token.
func NewTokenAlreadyUsedError(message string) *TokenError {
	return &TokenError{
		AppError: &AppError{
			Type:    ErrorTypeTokenAlreadyUsed,
			Message: message,
			Code:    http.StatusConflict,
		},
	}
}

// IsTokenExpiredError reports whether err is an expired-token error.
func IsTokenExpiredError(err error) bool { return hasType(err, ErrorTypeTokenExpired) }

// IsTokenAlreadyUsedError reports whether err is an already-used-token error.
func IsTokenAlreadyUsedError(err error) bool { return hasType(err, ErrorTypeTokenAlreadyUsed) }

// UpstreamError wraps a failure of an external collaborator (payment
// processor, object storage, session store).
type UpstreamError struct {
	*AppError
	Collaborator string
	Retryable    bool
	cause        error
}

// Error implements the error interface
func (e *UpstreamError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.AppError.Error(), e.Collaborator, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.AppError.Error(), e.Collaborator)
}

// Unwrap returns the AppError so GetAppError keeps working; use Cause for
// the collaborator error.
func (e *UpstreamError) Unwrap() error {
	return e.AppError
}

// Cause returns the underlying collaborator error.
func (e *UpstreamError) Cause() error {
	return e.cause
}

// NewUpstreamError creates a retryable upstream failure.
func NewUpstreamError(collaborator string, cause error) *UpstreamError {
	return &UpstreamError{
		AppError: &AppError{
			Type:    ErrorTypeUpstreamFailure,
			Message: "upstream service unavailable, please retry",
			Code:    http.StatusServiceUnavailable,
		},
		Collaborator: collaborator,
		Retryable:    true,
		cause:        cause,
	}
}

// IsUpstreamError reports whether err is an upstream failure.
func IsUpstreamError(err error) bool {
	var upErr *UpstreamError
	return stderrors.As(err, &upErr)
}
