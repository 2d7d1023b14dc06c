// Package errors provides a lightweight structured error type (DocServeError)
// for category-based classification and retry semantics in the HTTP layer and CLI.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a docserve error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryAuth       ErrorCategory = "auth"

	// External system integration errors
	CategorySource   ErrorCategory = "source"
	CategoryNotFound ErrorCategory = "not_found"

	// Content pipeline errors
	CategoryParse  ErrorCategory = "parse"
	CategoryRender ErrorCategory = "render"

	// Cache and infrastructure errors
	CategoryCache    ErrorCategory = "cache"
	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// DocServeError is a structured error with category, retryability, and context
type DocServeError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// Build returns the error itself for compatibility with builder-style call sites.
func (e *DocServeError) Build() *DocServeError {
	return e
}

// ContextFields carries structured context for DocServeError
type ContextFields map[string]any

// Error implements the error interface
func (e *DocServeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *DocServeError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *DocServeError) WithContext(key string, value any) *DocServeError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new DocServeError
func New(category ErrorCategory, severity ErrorSeverity, message string) *DocServeError {
	return &DocServeError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Retryable: false,
	}
}

// Wrap creates a new DocServeError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *DocServeError {
	return &DocServeError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: false,
	}
}

// WrapRetryable creates a new retryable DocServeError that wraps an existing error
func WrapRetryable(err error, category ErrorCategory, severity ErrorSeverity, message string) *DocServeError {
	return &DocServeError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: true,
	}
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if dse, ok := err.(*DocServeError); ok {
		return dse.Category == category
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if dse, ok := err.(*DocServeError); ok {
		return dse.Retryable
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a DocServeError
func GetCategory(err error) ErrorCategory {
	if dse, ok := err.(*DocServeError); ok {
		return dse.Category
	}
	return CategoryInternal
}

// ValidationError creates a new validation error (400 Bad Request)
func ValidationError(message string) *DocServeError {
	return &DocServeError{
		Category:  CategoryValidation,
		Severity:  SeverityWarning,
		Message:   message,
		Retryable: false,
	}
}

// NotFoundError creates a new not-found error (404)
func NotFoundError(message string) *DocServeError {
	return &DocServeError{
		Category:  CategoryNotFound,
		Severity:  SeverityInfo,
		Message:   message,
		Retryable: false,
	}
}

// SourceError wraps a source fetch failure (bad gateway semantics)
func SourceError(err error, message string) *DocServeError {
	return &DocServeError{
		Category:  CategorySource,
		Severity:  SeverityError,
		Message:   message,
		Cause:     err,
		Retryable: true,
	}
}

// CacheError wraps a cache backend failure
func CacheError(err error, message string) *DocServeError {
	return &DocServeError{
		Category:  CategoryCache,
		Severity:  SeverityError,
		Message:   message,
		Cause:     err,
		Retryable: true,
	}
}

// WrapError wraps an existing error with a new DocServeError
func WrapError(err error, category ErrorCategory, message string) *DocServeError {
	return &DocServeError{
		Category:  category,
		Severity:  SeverityError,
		Message:   message,
		Cause:     err,
		Retryable: false,
	}
}
