// Package apierrors classifies the failure modes the solver-submission
// pipeline can raise and settle futures with.
package apierrors

import (
	"errors"
	"fmt"
)

// Kind classifies an Error for callers that need to branch on failure mode
// rather than match message text.
type Kind int

const (
	// Unknown is the zero value; no Error should ever carry it.
	Unknown Kind = iota
	// Auth means the server rejected the request with HTTP 401.
	Auth
	// Timeout means a single HTTP call exceeded its request timeout.
	Timeout
	// PollingTimeout means a future aged past its configured polling_timeout
	// while still in the poll stage.
	PollingTimeout
	// SolverFailure means the server reported FAILED or an immediate
	// error_code on submission.
	SolverFailure
	// SolverOffline means FAILED with a sentinel message indicating the
	// solver is offline.
	SolverOffline
	// SolverNotFound means a named solver fetch 404'd, or a filter query
	// matched nothing.
	SolverNotFound
	// SolverAuth means HTTP 401 on a solver catalog fetch.
	SolverAuth
	// InvalidResponse means a required field was missing from a status
	// record.
	InvalidResponse
	// Cancelled means the server reported CANCELLED.
	Cancelled
	// UnsupportedSolver means a descriptor could not be bound to any known
	// solver class. Propagates to the catalog, never to a future.
	UnsupportedSolver
	// IO is the catch-all for any other transport or parse failure.
	IO
)

// String returns the taxonomy name used in log lines and error messages.
func (k Kind) String() string {
	switch k {
	case Auth:
		return "auth"
	case Timeout:
		return "timeout"
	case PollingTimeout:
		return "polling-timeout"
	case SolverFailure:
		return "solver-failure"
	case SolverOffline:
		return "solver-offline"
	case SolverNotFound:
		return "solver-not-found"
	case SolverAuth:
		return "solver-auth"
	case InvalidResponse:
		return "invalid-response"
	case Cancelled:
		return "cancelled"
	case UnsupportedSolver:
		return "unsupported-solver"
	case IO:
		return "i/o"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned by the client and settled onto
// futures. It always carries a Kind so callers can branch with errors.As
// and Kind comparisons instead of string matching.
type Error struct {
	Kind    Kind
	Message string
	Err     error // underlying cause, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports true only for PollingTimeout. It is informational only:
// the pipeline never retries an Error itself and it does not affect
// settlement, since every Error here is already terminal by the time a
// future sees it.
func (e *Error) Retryable() bool {
	return e.Kind == PollingTimeout
}

// New builds an Error of the given kind with a message and no cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error of the given kind wrapping an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
