// Package engine implements the bounded recursive function-calling
// orchestration that drives one coaching exchange: it streams model output,
// dispatches requested tool calls, feeds results back to the model, and
// aggregates text and structured suggestions across recursion levels.
package engine

// Role identifies the author of a transcript turn.
type Role string

const (
	// RoleUser marks turns authored by the user side, including tool results.
	RoleUser Role = "user"

	// RoleModel marks turns authored by the model.
	RoleModel Role = "model"
)

// Fragment is one decoded piece of a streamed message. It is a closed sum:
// the only implementations are TextFragment, ToolCallRequest, and
// ToolCallResult. Sites that consume fragments switch exhaustively over
// these three.
type Fragment interface {
	fragment()
}

// TextFragment carries a run of natural-language text.
type TextFragment struct {
	Text string
}

// ToolCallRequest is a model-issued request to invoke a named tool.
// Arguments are schema-free; unknown keys pass through untouched.
type ToolCallRequest struct {
	Name string
	Args map[string]any
}

// ToolCallResult carries the response payload for a previously issued
// tool call, to be fed back to the model as part of a user turn.
type ToolCallResult struct {
	Name     string
	Response map[string]any
}

func (TextFragment) fragment()    {}
func (ToolCallRequest) fragment() {}
func (ToolCallResult) fragment()  {}

// Turn is one role-tagged message in the transcript. Turns are immutable
// once appended; the transcript alternates model and user roles.
type Turn struct {
	Role      Role
	Fragments []Fragment
}

// TextTurn builds a turn holding a single text fragment.
func TextTurn(role Role, text string) Turn {
	return Turn{Role: role, Fragments: []Fragment{TextFragment{Text: text}}}
}

// ResultsTurn builds the user turn that answers one or more tool calls.
// All results share a single turn so the model sees them together.
func ResultsTurn(results []ToolCallResult) Turn {
	frags := make([]Fragment, 0, len(results))
	for _, r := range results {
		frags = append(frags, r)
	}
	return Turn{Role: RoleUser, Fragments: frags}
}

// appendTurns returns a new transcript with the given turns appended.
// The input slice is not mutated so sibling recursion levels never see
// each other's turns.
func appendTurns(transcript []Turn, turns ...Turn) []Turn {
	out := make([]Turn, 0, len(transcript)+len(turns))
	out = append(out, transcript...)
	out = append(out, turns...)
	return out
}
