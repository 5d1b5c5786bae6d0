package engine

import (
	"context"
)

// ModelRequest describes one streaming model call.
type ModelRequest struct {
	// Turns is the transcript so far, alternating model and user roles.
	Turns []Turn

	// Tools declares the functions the model may request. Empty means the
	// model can only answer with text.
	Tools []ToolDeclaration

	// LowEffort asks the backend for a reduced reasoning budget. Set on
	// sequential follow-up calls, which exist only to produce a final
	// natural-language answer.
	LowEffort bool
}

// ToolDeclaration is the wire-facing description of one callable tool.
// Parameters is a JSON-schema object carried as a generic map so unknown
// schema keywords pass through untouched.
type ToolDeclaration struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// FragmentStream is a lazy, finite, non-restartable sequence of decoded
// fragments from one model call. Next returns io.EOF when the stream is
// exhausted. Close releases the underlying transport and must be called
// on every exit path.
type FragmentStream interface {
	Next() (Fragment, error)
	Close() error
}

// ModelClient is the streaming model backend. Implementations must be
// safe for concurrent use; each Stream call owns an independent
// connection.
type ModelClient interface {
	Stream(ctx context.Context, req *ModelRequest) (FragmentStream, error)
}
