// Package guideerr provides a lightweight structured error type (GuideError)
// for category-based classification and retry semantics in HTTP adapters and CLI.
package guideerr

import (
	"errors"
	"fmt"
)

// ErrorCategory represents the category of a guidebuilder error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryAuth       ErrorCategory = "auth"

	// External system integration errors
	CategoryNetwork  ErrorCategory = "network"
	CategoryGit      ErrorCategory = "git"
	CategoryNotFound ErrorCategory = "not_found"

	// Corpus and build processing errors
	CategoryContent    ErrorCategory = "content"
	CategoryNav        ErrorCategory = "nav"
	CategoryBuild      ErrorCategory = "build"
	CategoryRender     ErrorCategory = "render"
	CategoryFileSystem ErrorCategory = "filesystem"

	// Runtime and infrastructure errors
	CategoryRuntime  ErrorCategory = "runtime"
	CategoryDaemon   ErrorCategory = "daemon"
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

// GuideError is a structured error with category, retryability, and context
type GuideError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for GuideError
type ContextFields map[string]any

// Error implements the error interface
func (e *GuideError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *GuideError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *GuideError) WithContext(key string, value any) *GuideError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new GuideError
func New(category ErrorCategory, severity ErrorSeverity, message string) *GuideError {
	return &GuideError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Retryable: false,
	}
}

// Wrap creates a new GuideError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *GuideError {
	return &GuideError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: false,
	}
}

// Retryable creates a new retryable GuideError
func Retryable(category ErrorCategory, severity ErrorSeverity, message string) *GuideError {
	return &GuideError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Retryable: true,
	}
}

// WrapRetryable creates a new retryable GuideError that wraps an existing error
func WrapRetryable(err error, category ErrorCategory, severity ErrorSeverity, message string) *GuideError {
	return &GuideError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: true,
	}
}

// ValidationError creates a new validation error (400 Bad Request)
func ValidationError(message string) *GuideError {
	return &GuideError{
		Category:  CategoryValidation,
		Severity:  SeverityWarning,
		Message:   message,
		Retryable: false,
	}
}

// DaemonError creates a new daemon error (service unavailable)
func DaemonError(message string) *GuideError {
	return &GuideError{
		Category:  CategoryDaemon,
		Severity:  SeverityError,
		Message:   message,
		Retryable: false,
	}
}

// WrapError wraps an existing error with a new GuideError
func WrapError(err error, category ErrorCategory, message string) *GuideError {
	return &GuideError{
		Category:  category,
		Severity:  SeverityError,
		Message:   message,
		Cause:     err,
		Retryable: false,
	}
}

// IsCategory checks if an error belongs to a specific category, unwrapping as needed
func IsCategory(err error, category ErrorCategory) bool {
	var ge *GuideError
	if errors.As(err, &ge) {
		return ge.Category == category
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	var ge *GuideError
	if errors.As(err, &ge) {
		return ge.Retryable
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a GuideError
func GetCategory(err error) ErrorCategory {
	var ge *GuideError
	if errors.As(err, &ge) {
		return ge.Category
	}
	return CategoryInternal
}
