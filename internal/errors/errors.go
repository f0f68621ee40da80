// Package errors provides a lightweight structured error type (StoreError)
// for category-based classification across the polling and checkout paths.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a storewatch error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// External tool integration errors
	CategoryTool  ErrorCategory = "tool"
	CategoryParse ErrorCategory = "parse"

	// Snapshot comparison misuse (programmer error)
	CategoryRepository ErrorCategory = "repository"

	// Runtime and infrastructure errors
	CategoryHistory  ErrorCategory = "history"
	CategoryDaemon   ErrorCategory = "daemon"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// StoreError is a structured error with category, severity, and context
type StoreError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for StoreError
type ContextFields map[string]any

// Error implements the error interface
func (e *StoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *StoreError) WithContext(key string, value any) *StoreError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new StoreError
func New(category ErrorCategory, severity ErrorSeverity, message string) *StoreError {
	return &StoreError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new StoreError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *StoreError {
	return &StoreError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// ToolFailure creates an error for an external tool run that reported failure.
func ToolFailure(err error, message string) *StoreError {
	return Wrap(err, CategoryTool, SeverityError, message)
}

// ParseFailure creates an error for tool output that could not be parsed.
func ParseFailure(message string) *StoreError {
	return New(CategoryParse, SeverityError, message)
}

// ConfigurationError creates a fatal configuration error (e.g. unregistered script).
func ConfigurationError(message string) *StoreError {
	return New(CategoryConfig, SeverityFatal, message)
}

// RepositoryMismatch creates an error for comparing snapshots of different repositories.
func RepositoryMismatch(message string) *StoreError {
	return New(CategoryRepository, SeverityFatal, message)
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if se, ok := err.(*StoreError); ok {
		return se.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a StoreError
func GetCategory(err error) ErrorCategory {
	if se, ok := err.(*StoreError); ok {
		return se.Category
	}
	return CategoryInternal
}
