package apierrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_MessageFormatting(t *testing.T) {
	err := New(SolverFailure, "qpu rejected problem")
	assert.Equal(t, "solver-failure: qpu rejected problem", err.Error())

	wrapped := Wrap(IO, "reading response", errors.New("connection reset"))
	assert.Equal(t, "i/o: reading response: connection reset", wrapped.Error())
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	wrapped := Wrap(Timeout, "request", cause)

	assert.True(t, errors.Is(wrapped, cause))
	var target error = cause
	assert.ErrorIs(t, wrapped, target)
}

func TestError_Retryable(t *testing.T) {
	assert.True(t, New(PollingTimeout, "aged out").Retryable())
	assert.False(t, New(IO, "transport error").Retryable())
}

func TestIs(t *testing.T) {
	var err error = New(SolverOffline, "solver is offline")
	assert.True(t, Is(err, SolverOffline))
	assert.False(t, Is(err, SolverFailure))

	require.False(t, Is(errors.New("plain error"), IO))
}

func TestKind_String(t *testing.T) {
	cases := map[Kind]string{
		Auth:              "auth",
		Timeout:           "timeout",
		PollingTimeout:    "polling-timeout",
		SolverFailure:     "solver-failure",
		SolverOffline:     "solver-offline",
		SolverNotFound:    "solver-not-found",
		SolverAuth:        "solver-auth",
		InvalidResponse:   "invalid-response",
		Cancelled:         "cancelled",
		UnsupportedSolver: "unsupported-solver",
		IO:                "i/o",
		Unknown:           "unknown",
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.String())
	}
}
