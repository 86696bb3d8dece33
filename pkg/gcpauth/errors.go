package gcpauth

import (
	"errors"
	"fmt"
)

// ErrorCategory categorizes errors for handling and reporting.
type ErrorCategory string

const (
	// ErrCategoryConfig indicates a credential file that is missing,
	// unreadable, or structurally invalid. Never retried.
	ErrCategoryConfig ErrorCategory = "config"
	// ErrCategorySigning indicates unusable signing key material. Never retried.
	ErrCategorySigning ErrorCategory = "signing"
	// ErrCategoryTransport indicates a connection failure, timeout, or
	// non-success response from an outbound call.
	ErrCategoryTransport ErrorCategory = "transport"
	// ErrCategoryExchange indicates a response that was received but is
	// unparsable or missing expected fields.
	ErrCategoryExchange ErrorCategory = "exchange"
)

// AuthError is a structured error with category and context.
//
// Retry policy is the caller's concern: the library performs no internal
// retries, and Retryable only records whether a later GetToken call can
// reasonably succeed.
type AuthError struct {
	// Category classifies the error type.
	Category ErrorCategory

	// Message is a human-readable error message.
	Message string

	// Source is the credential source where the error occurred, if known.
	Source SourceKind

	// Cause is the underlying error.
	Cause error

	// Retryable indicates whether a later call may succeed.
	Retryable bool
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Category, e.Message)
	if e.Source != "" {
		msg = fmt.Sprintf("[%s:%s] %s", e.Source, e.Category, e.Message)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *AuthError) Unwrap() error {
	return e.Cause
}

// Is checks if the target error matches this error's category.
func (e *AuthError) Is(target error) bool {
	var authErr *AuthError
	if errors.As(target, &authErr) {
		return e.Category == authErr.Category
	}
	return false
}

// NewError creates a new AuthError.
func NewError(category ErrorCategory, message string) *AuthError {
	return &AuthError{
		Category: category,
		Message:  message,
	}
}

// WithSource sets the credential source.
func (e *AuthError) WithSource(kind SourceKind) *AuthError {
	e.Source = kind
	return e
}

// WithCause sets the underlying error.
func (e *AuthError) WithCause(err error) *AuthError {
	e.Cause = err
	return e
}

// WithRetryable marks the error as retryable.
func (e *AuthError) WithRetryable(retryable bool) *AuthError {
	e.Retryable = retryable
	return e
}

// Convenience constructors for common error types

// ErrConfig creates a configuration error.
func ErrConfig(message string) *AuthError {
	return NewError(ErrCategoryConfig, message)
}

// ErrSigning creates a signing error.
func ErrSigning(message string) *AuthError {
	return NewError(ErrCategorySigning, message)
}

// ErrTransport creates a transport error.
func ErrTransport(message string) *AuthError {
	return NewError(ErrCategoryTransport, message).WithRetryable(true)
}

// ErrExchange creates an exchange error.
func ErrExchange(message string) *AuthError {
	return NewError(ErrCategoryExchange, message).WithRetryable(true)
}

// IsCategory checks if an error is of a specific category.
func IsCategory(err error, category ErrorCategory) bool {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Category == category
	}
	return false
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Retryable
	}
	return false
}

// NoAuthMethodError is the terminal resolver failure: no explicit credential
// path was configured, and both environment-detection probes failed. Both
// probe failures are kept so operators can see why each source was rejected.
type NoAuthMethodError struct {
	// MetadataErr is the metadata-service probe failure.
	MetadataErr error

	// AuthorizedUserErr is the application-default-credentials probe failure.
	AuthorizedUserErr error
}

// Error implements the error interface.
func (e *NoAuthMethodError) Error() string {
	return fmt.Sprintf("no authentication method available: metadata service: %v; authorized user: %v",
		e.MetadataErr, e.AuthorizedUserErr)
}

// Unwrap returns both probe failures.
func (e *NoAuthMethodError) Unwrap() []error {
	return []error{e.MetadataErr, e.AuthorizedUserErr}
}
