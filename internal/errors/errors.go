// Package errors provides centralized error definitions and error handling utilities
// for picopala. It defines the plan engine's error taxonomy, semantic error types,
// error constructors with context wrapping, and helpers that map errors onto
// process exit codes.
//
// # Error Types
//
// Domain errors describe failures of the plan engine:
//   - PlanError: a plan document could not be turned into tasks (no tasks,
//     unreadable document, invalid plan)
//   - DeadlockError: the scheduler was left with tasks whose dependencies can
//     never be satisfied
//
// Invocation errors describe how the process was called:
//   - UsageError: bad CLI invocation, missing file, unknown command
//   - ExitError: a command already reported its outcome and only needs a
//     specific exit code
//
// # Usage
//
//	err := errors.NewPlanError("no tasks found", errors.ErrNoTasksFound).WithPath(path)
//	if errors.Is(err, errors.ErrNoTasksFound) { ... }
//
//	var deadlock *errors.DeadlockError
//	if errors.As(err, &deadlock) { ... }
//
//	os.Exit(errors.ExitCode(err))
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Process exit codes used by every picopala entry point.
const (
	// ExitOK means the command succeeded (or a hook allowed the action).
	ExitOK = 0
	// ExitFailure means validation, scheduling or usage failed.
	ExitFailure = 1
	// ExitBlocked means a hook blocked the action; stderr carries the reason.
	ExitBlocked = 2
)

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Plan-related sentinel errors
var (
	// ErrNoTasksFound indicates that no task heading matched in the document.
	ErrNoTasksFound = New("no tasks found")
	// ErrPlanInvalid indicates the plan has one or more validation issues.
	ErrPlanInvalid = New("plan is invalid")
	// ErrDeadlock indicates remaining tasks can never have their dependencies met.
	ErrDeadlock = New("deadlock")
	// ErrIterationLimit indicates wave computation ran past its iteration bound.
	ErrIterationLimit = New("wave computation exceeded maximum iterations")
)

// Invocation-related sentinel errors
var (
	// ErrUsage indicates the command line was malformed.
	ErrUsage = New("usage error")
	// ErrFileNotFound indicates the plan document does not exist.
	ErrFileNotFound = New("file not found")
	// ErrUnknownCommand indicates an unrecognized subcommand.
	ErrUnknownCommand = New("unknown command")
)

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError carries the message and optional cause shared by all error types.
type baseError struct {
	message    string
	cause      error
	userFacing bool
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// userFacer is implemented by every error type in this package.
type userFacer interface {
	IsUserFacing() bool
}

// -----------------------------------------------------------------------------
// Domain Errors
// -----------------------------------------------------------------------------

// PlanError represents a failure to obtain or accept a plan.
//
// Example:
//
//	err := errors.NewPlanError("No tasks found in plan.md", errors.ErrNoTasksFound).
//		WithHint("Tasks must be formatted as '### T1: Task Name'")
//	fmt.Println(err) // "No tasks found in plan.md. Tasks must be formatted as '### T1: Task Name'"
type PlanError struct {
	baseError
	Path string
	Hint string
}

// NewPlanError creates a new PlanError. The cause is usually one of the plan
// sentinel errors and is matched by Is but not repeated in the message.
func NewPlanError(message string, cause error) *PlanError {
	return &PlanError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			userFacing: true,
		},
	}
}

// WithPath records the plan document path.
func (e *PlanError) WithPath(path string) *PlanError {
	e.Path = path
	return e
}

// WithHint appends a remediation hint to the message.
func (e *PlanError) WithHint(hint string) *PlanError {
	e.Hint = hint
	return e
}

// Error returns the message followed by the hint, if any.
func (e *PlanError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s. %s", e.message, e.Hint)
	}
	return e.message
}

// DeadlockError reports the scheduler state at the moment no further wave
// could be formed.
type DeadlockError struct {
	baseError
	Remaining []string
	Completed []string
}

// NewDeadlockError creates a DeadlockError. Both slices should already be sorted.
func NewDeadlockError(remaining, completed []string) *DeadlockError {
	return &DeadlockError{
		baseError: baseError{
			message:    "deadlock",
			cause:      ErrDeadlock,
			userFacing: true,
		},
		Remaining: remaining,
		Completed: completed,
	}
}

// Error returns the formatted error message.
func (e *DeadlockError) Error() string {
	return fmt.Sprintf("Deadlock: tasks %s have unsatisfied dependencies. Completed: %s",
		FormatIDs(e.Remaining), FormatIDs(e.Completed))
}

// -----------------------------------------------------------------------------
// Invocation Errors
// -----------------------------------------------------------------------------

// UsageError represents a malformed invocation.
//
// Example:
//
//	err := errors.NewUsageError("File not found: plan.md", errors.ErrFileNotFound)
type UsageError struct {
	baseError
	Usage string
}

// NewUsageError creates a UsageError. A nil cause defaults to ErrUsage.
func NewUsageError(message string, cause error) *UsageError {
	if cause == nil {
		cause = ErrUsage
	}
	return &UsageError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			userFacing: true,
		},
	}
}

// WithUsage attaches a usage line printed after the message.
func (e *UsageError) WithUsage(usage string) *UsageError {
	e.Usage = usage
	return e
}

// Error returns the message without repeating the sentinel cause.
func (e *UsageError) Error() string {
	return e.message
}

// Is lets every UsageError match ErrUsage in addition to its own cause.
func (e *UsageError) Is(target error) bool {
	return target == ErrUsage
}

// ExitError carries an exit code for a command whose output has already been
// written. Entry points must not print it.
type ExitError struct {
	Code   int
	Reason string
}

// NewExitError creates an ExitError with the given code.
func NewExitError(code int, reason string) *ExitError {
	return &ExitError{Code: code, Reason: reason}
}

func (e *ExitError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// IsUserFacing reports false: the user-facing output was already produced.
func (e *ExitError) IsUserFacing() bool {
	return false
}

// -----------------------------------------------------------------------------
// Classification Helpers
// -----------------------------------------------------------------------------

// IsUserFacing returns true if the error message is safe to display to end users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var uf userFacer
	if As(err, &uf) {
		return uf.IsUserFacing()
	}
	return false
}

// IsSilent returns true for errors whose output has already been written.
func IsSilent(err error) bool {
	var exitErr *ExitError
	return As(err, &exitErr)
}

// ExitCode maps an error to the process exit code.
//
//   - nil: ExitOK
//   - *ExitError: its Code
//   - anything else: ExitFailure
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var exitErr *ExitError
	if As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// FormatIDs renders a list of ids as "[T1, T2]".
func FormatIDs(ids []string) string {
	return "[" + strings.Join(ids, ", ") + "]"
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to read plan")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
//
// Example:
//
//	err := errors.Wrapf(baseErr, "failed to read plan %s", path)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
