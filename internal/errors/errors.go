package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Exit codes for CLI commands.
const (
	// ExitSuccess indicates the command completed successfully.
	// Dry runs and diffs that find differences still exit with this code.
	ExitSuccess = 0

	// ExitUser indicates a user-related error (invalid format name,
	// from == to, bad flag combination).
	ExitUser = 1

	// ExitSystem indicates a system-related error (I/O failure while
	// reading a required directory, permission denied).
	ExitSystem = 2
)

// Sentinel errors for common failure conditions.
var (
	// ErrUnknownFormat indicates the format name is not claude, opencode, or cursor.
	ErrUnknownFormat = errors.New("unknown format")

	// ErrSameFormat indicates migrate/diff was invoked with from == to.
	ErrSameFormat = errors.New("source and target formats are identical")

	// ErrInvalidConfig indicates configuration validation failed.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNoBackupsFound indicates no backup snapshots exist.
	ErrNoBackupsFound = errors.New("no backups found")

	// ErrMissingName indicates a required name field is missing.
	ErrMissingName = errors.New("name is required")
)

// Re-exports from cockroachdb/errors so callers need a single import.
var (
	New    = errors.New
	Newf   = errors.Newf
	Wrap   = errors.Wrap
	Wrapf  = errors.Wrapf
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)

// ExitError wraps an error with an exit code and optional suggestion.
// It implements the error interface and supports unwrapping via errors.Unwrap.
type ExitError struct {
	// Err is the underlying error that caused the exit.
	Err error

	// Code is the exit code to return to the operating system.
	Code int

	// Suggestion is an optional actionable suggestion for the user.
	Suggestion string
}

// NewExitError creates an ExitError with the given underlying error and exit code.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{
		Err:  err,
		Code: code,
	}
}

// NewUserError creates an ExitError with ExitUser code and a suggestion.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: suggestion,
	}
}

// NewSystemError creates an ExitError with ExitSystem code and a suggestion.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitSystem,
		Suggestion: suggestion,
	}
}

// NewConfigError creates an ExitError with ExitUser code and a standard suggestion.
func NewConfigError(err error) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: "Check $XDG_CONFIG_HOME/convey/config.yaml",
	}
}

// Error returns the error message from the underlying error.
// If the underlying error is nil, it returns a generic message with the exit code.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As
// to examine the error chain.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode extracts the exit code from an error chain.
// Returns ExitSuccess for nil, the embedded code for an ExitError,
// and ExitUser for any other error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitUser
}
