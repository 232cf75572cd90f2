package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Generation errors (GEN-001 to GEN-099)
	ErrCodeGenSafetyBlocked ErrorCode = "GEN-001"
	ErrCodeGenNoCandidate   ErrorCode = "GEN-002"
	ErrCodeGenTextOnly      ErrorCode = "GEN-003"
	ErrCodeGenTransport     ErrorCode = "GEN-004"

	// Layer errors (LAYER-001 to LAYER-099)
	ErrCodeLayerInvalidCategory ErrorCode = "LAYER-001"
	ErrCodeLayerNotFound        ErrorCode = "LAYER-002"
	ErrCodeLayerInvalidInput    ErrorCode = "LAYER-003"

	// Cache errors (CACHE-001 to CACHE-099)
	ErrCodeCacheCapacity ErrorCode = "CACHE-001"

	// History errors (HIST-001 to HIST-099)
	ErrCodeHistoryEmpty  ErrorCode = "HIST-001"
	ErrCodeHistoryNoRedo ErrorCode = "HIST-002"

	// Closet errors (STORE-001 to STORE-099)
	ErrCodeStoreOpenFailed  ErrorCode = "STORE-001"
	ErrCodeStoreNotFound    ErrorCode = "STORE-002"
	ErrCodeStoreWriteFailed ErrorCode = "STORE-003"

	// Config errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigNotFound  ErrorCode = "CONFIG-001"
	ErrCodeConfigInvalid   ErrorCode = "CONFIG-002"
	ErrCodeConfigUnmarshal ErrorCode = "CONFIG-003"

	// Invariant violations (INVARIANT-001 to INVARIANT-099)
	ErrCodeInvariantUnreachableCommit ErrorCode = "INVARIANT-001"
	ErrCodeInvariantSignatureClash    ErrorCode = "INVARIANT-002"
)

// AttireError represents an enhanced error with code, suggestions, and cause
type AttireError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *AttireError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *AttireError) Unwrap() error {
	return e.Cause
}

// New creates a new AttireError
func New(code ErrorCode, message string) *AttireError {
	return &AttireError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new AttireError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *AttireError {
	return &AttireError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *AttireError) WithSuggestion(suggestion string) *AttireError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *AttireError) WithSuggestions(suggestions ...string) *AttireError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// IsCode reports whether err is an AttireError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	attErr, ok := err.(*AttireError)
	return ok && attErr.Code == code
}

// Common error constructors for frequently used errors

// NewInvalidCategoryError creates an unrecognized garment category error
func NewInvalidCategoryError(category string) *AttireError {
	return New(ErrCodeLayerInvalidCategory, fmt.Sprintf("unrecognized garment category: %q", category)).
		WithSuggestion("Use one of: top, bottom, outer, accessory, full-body")
}

// NewLayerNotFoundError creates a missing layer error
func NewLayerNotFoundError(id string) *AttireError {
	return New(ErrCodeLayerNotFound, fmt.Sprintf("no applied layer with id: %s", id)).
		WithSuggestion("List the current layers before removing one")
}

// NewInvalidInputError creates a selection-boundary rejection error
func NewInvalidInputError(details string) *AttireError {
	return New(ErrCodeLayerInvalidInput, fmt.Sprintf("invalid garment selection: %s", details)).
		WithSuggestion("Select an image file with a name and category")
}

// NewUnreachableCommitError creates an invariant violation for a commit whose
// signature is no longer reachable from the live layer stack
func NewUnreachableCommitError(sig string) *AttireError {
	return New(ErrCodeInvariantUnreachableCommit, fmt.Sprintf("commit arrived for unreachable signature: %s", sig)).
		WithSuggestion("The session reverts to the last known-good history entry")
}

// NewConfigUnmarshalError creates a config parse error
func NewConfigUnmarshalError(path string, cause error) *AttireError {
	return Wrap(ErrCodeConfigUnmarshal, fmt.Sprintf("failed to parse config file: %s", path), cause).
		WithSuggestion("Check the YAML syntax of the config file")
}
