package engine

import (
	"errors"
	"fmt"
)

// Sentinel errors for orchestrator setup problems. These indicate caller
// bugs, not runtime conditions, and are returned before any model call.
var (
	// ErrNoClient indicates no model client is configured.
	ErrNoClient = errors.New("no model client configured")

	// ErrNoUserMessage indicates an exchange was started without a user message.
	ErrNoUserMessage = errors.New("user message is required")

	// ErrNoPendingResults indicates a follow-up was started without any
	// resolved tool results to report back to the model.
	ErrNoPendingResults = errors.New("no pending tool results")
)

// TransportError reports a failed model call: a non-success HTTP status or
// a connection-level failure before or during streaming. A transport error
// on the initial model call of an exchange is surfaced to the caller; at
// deeper recursion levels it is logged and the partial aggregate is kept.
type TransportError struct {
	// Status is the HTTP status code, or zero for connection failures.
	Status int

	// Body holds a truncated response body when one was readable.
	Body string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	switch {
	case e.Status != 0 && e.Body != "":
		return fmt.Sprintf("model transport: status %d: %s", e.Status, e.Body)
	case e.Status != 0:
		return fmt.Sprintf("model transport: status %d", e.Status)
	case e.Cause != nil:
		return fmt.Sprintf("model transport: %v", e.Cause)
	default:
		return "model transport error"
	}
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// IsTransportError checks if an error is or wraps a TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
