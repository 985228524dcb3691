package service

import (
	"errors"
	"fmt"
)

// Sentinel errors the HTTP layer maps onto status codes.
var (
	// ErrForbidden is an authorization failure, from a handler's policy
	// check or a thread ownership check.
	ErrForbidden = errors.New("forbidden")

	// ErrRateLimited is a pre-flight rejection; no remote resources were
	// consumed for the request.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrRunTimeout means the poll loop hit its wall-clock ceiling while
	// the run was still non-terminal. The run may still complete remotely;
	// the caller retries by sending again.
	ErrRunTimeout = errors.New("run still in progress, timed out waiting for completion")

	// ErrThreadArchived rejects sends against an archived thread.
	ErrThreadArchived = errors.New("thread is archived")

	// ErrInvalidCredentials is returned on login failure.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken is returned when registering an existing email.
	ErrEmailTaken = errors.New("email already registered")
)

// TransportError wraps a failure talking to the remote assistant service.
// It is never retried beyond the poll loop's own backoff.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("assistant %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RunFailedError reports a run that ended in a remote terminal failure
// state. The state is surfaced verbatim.
type RunFailedError struct {
	State  string
	Reason string
}

func (e *RunFailedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("run ended in state %s", e.State)
	}
	return fmt.Sprintf("run ended in state %s: %s", e.State, e.Reason)
}
