// Package exitcode defines process exit codes and maps errors onto them so
// scripts can distinguish failure classes without parsing output.
package exitcode

import (
	"os"

	"github.com/felixgeelhaar/strata/internal/errors"
)

// ExitCode is a process exit status.
type ExitCode int

const (
	// Success indicates the command completed normally.
	Success ExitCode = 0
	// GeneralError covers failures with no more specific code.
	GeneralError ExitCode = 1
	// UsageError indicates invalid arguments or flags.
	UsageError ExitCode = 2
	// NotFound indicates a missing plan or task.
	NotFound ExitCode = 3
	// LeaseConflict covers lease-gated completion failures.
	LeaseConflict ExitCode = 4
	// Unavailable indicates the server could not be reached or is shutting down.
	Unavailable ExitCode = 5
	// Interrupted indicates the command was cancelled by a signal.
	Interrupted ExitCode = 130
)

// Int returns the code as a plain int for os.Exit.
func (c ExitCode) Int() int {
	return int(c)
}

// String returns a short human-readable name for the code.
func (c ExitCode) String() string {
	switch c {
	case Success:
		return "success"
	case GeneralError:
		return "error"
	case UsageError:
		return "usage error"
	case NotFound:
		return "not found"
	case LeaseConflict:
		return "lease conflict"
	case Unavailable:
		return "unavailable"
	case Interrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Exit terminates the process with the given code.
func Exit(code ExitCode) {
	os.Exit(code.Int())
}

// ExitWithError terminates the process with the code determined from err.
func ExitWithError(err error) {
	os.Exit(DetermineExitCode(err).Int())
}

// DetermineExitCode maps an error to its exit code. A nil error is Success.
func DetermineExitCode(err error) ExitCode {
	if err == nil {
		return Success
	}

	switch errors.CodeOf(err) {
	case errors.ErrCodePlanNotFound, errors.ErrCodeTaskNotFound:
		return NotFound
	case errors.ErrCodeLeaseRequired, errors.ErrCodeLeaseInvalid,
		errors.ErrCodeAlreadyCompleted, errors.ErrCodeNotCompleted:
		return LeaseConflict
	case errors.ErrCodeInvalidOperation, errors.ErrCodePathSyntax,
		errors.ErrCodeConfigRead, errors.ErrCodeConfigInvalid:
		return UsageError
	case errors.ErrCodeLockFailure, errors.ErrCodeClientTransport:
		return Unavailable
	default:
		return GeneralError
	}
}
