package errors

import (
	goerrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Plan errors (PLAN-001 to PLAN-099)
	ErrCodePlanNotFound     ErrorCode = "PLAN-001"
	ErrCodeTaskNotFound     ErrorCode = "PLAN-002"
	ErrCodeInvalidOperation ErrorCode = "PLAN-003"
	ErrCodeLockFailure      ErrorCode = "PLAN-004"

	// Lease errors (LEASE-001 to LEASE-099)
	ErrCodeLeaseRequired    ErrorCode = "LEASE-001"
	ErrCodeLeaseInvalid     ErrorCode = "LEASE-002"
	ErrCodeAlreadyCompleted ErrorCode = "LEASE-003"
	ErrCodeNotCompleted     ErrorCode = "LEASE-004"

	// Path errors (PATH-001 to PATH-099)
	ErrCodePathSyntax ErrorCode = "PATH-001"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigRead    ErrorCode = "CONFIG-001"
	ErrCodeConfigInvalid ErrorCode = "CONFIG-002"

	// Client errors (CLIENT-001 to CLIENT-099)
	ErrCodeClientTransport ErrorCode = "CLIENT-001"
	ErrCodeClientDecode    ErrorCode = "CLIENT-002"

	// Internal errors (INTERNAL-001 to INTERNAL-099)
	ErrCodeInternal ErrorCode = "INTERNAL-001"
)

// StrataError represents an enhanced error with code and suggestions
type StrataError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *StrataError) Error() string {
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
func (e *StrataError) Unwrap() error {
	return e.Cause
}

// New creates a new StrataError
func New(code ErrorCode, message string) *StrataError {
	return &StrataError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new StrataError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *StrataError {
	return &StrataError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *StrataError) WithSuggestion(suggestion string) *StrataError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *StrataError) WithSuggestions(suggestions ...string) *StrataError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// CodeOf extracts the error code from an error chain.
// Returns an empty code when the chain contains no StrataError.
func CodeOf(err error) ErrorCode {
	var serr *StrataError
	if goerrors.As(err, &serr) {
		return serr.Code
	}
	return ""
}

// HasCode reports whether the error chain carries the given code
func HasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// As delegates to the standard library so callers importing this package
// under the errors name keep the familiar API.
func As(err error, target any) bool {
	return goerrors.As(err, target)
}

// Is delegates to the standard library.
func Is(err, target error) bool {
	return goerrors.Is(err, target)
}

// Common error constructors for frequently used errors

// NewPlanNotFoundError creates a plan not found error
func NewPlanNotFoundError(id int64) *StrataError {
	return New(ErrCodePlanNotFound, fmt.Sprintf("plan %d not found", id)).
		WithSuggestion("Run 'strata plan list' to see available plans").
		WithSuggestion("Create a plan with 'strata plan create --goal <goal>'")
}

// NewTaskNotFoundError creates a task not found error for an index path
func NewTaskNotFoundError(path string) *StrataError {
	return New(ErrCodeTaskNotFound, fmt.Sprintf("no task at path [%s]", path)).
		WithSuggestion("Index paths shift when earlier siblings are removed; re-fetch the plan").
		WithSuggestion("Run 'strata context' to see current paths")
}

// NewLeaseRequiredError creates a lease required error
func NewLeaseRequiredError(path string) *StrataError {
	return New(ErrCodeLeaseRequired, fmt.Sprintf("completing task [%s] requires a lease", path)).
		WithSuggestion("Generate one with 'strata lease <path>' and pass it to complete").
		WithSuggestion("Use --force only when bypassing coordination is intentional")
}

// NewLeaseInvalidError creates a stale or mismatched lease error
func NewLeaseInvalidError(path string) *StrataError {
	return New(ErrCodeLeaseInvalid, fmt.Sprintf("lease for task [%s] is stale or does not match", path)).
		WithSuggestion("Another caller may hold a newer lease; generate a fresh one").
		WithSuggestion("Leases are single-use and superseded by newer issuance")
}

// NewAlreadyCompletedError creates a redundant completion error
func NewAlreadyCompletedError(path string) *StrataError {
	return New(ErrCodeAlreadyCompleted, fmt.Sprintf("task [%s] is already completed", path)).
		WithSuggestion("Uncomplete it first if it needs to be redone")
}

// NewNotCompletedError creates an error for uncompleting an incomplete task
func NewNotCompletedError(path string) *StrataError {
	return New(ErrCodeNotCompleted, fmt.Sprintf("task [%s] is not completed", path))
}

// NewPathSyntaxError creates an index path parse error
func NewPathSyntaxError(raw string, cause error) *StrataError {
	return Wrap(ErrCodePathSyntax, fmt.Sprintf("invalid index path %q", raw), cause).
		WithSuggestion("Paths are comma-separated child offsets, e.g. '0,1,2'")
}

// NewLockFailureError creates a lock acquisition failure error
func NewLockFailureError(id int64) *StrataError {
	return New(ErrCodeLockFailure, fmt.Sprintf("plan %d is no longer accepting operations", id))
}
