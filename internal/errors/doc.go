// Package errors provides error handling conventions for the convey CLI.
//
// It defines sentinel errors for common failure conditions, an ExitError
// type carrying the process exit code, and the exit code constants used
// by every command.
//
// The error taxonomy follows the conversion pipeline's propagation policy:
// item-level failures (one malformed agent file, one failed write) are
// recorded in reports and never reach this package; only argument
// validation and scan-directory-level I/O failures become ExitErrors.
//
//	if err := migrate(); err != nil {
//	    var exitErr *errors.ExitError
//	    if errors.As(err, &exitErr) {
//	        os.Exit(exitErr.Code)
//	    }
//	}
package errors
