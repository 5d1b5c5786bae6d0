package engine

// shouldContinue is the stop policy for one exchange. It is consulted in
// two places: before dispatching a newly decoded tool call mid-turn, and
// before issuing another recursive model call after a turn completes.
//
// Chaining continues while the aggregate holds only data responses and
// food suggestions. The first terminal suggestion of any kind halts it;
// pending tool calls seen after that point are skipped, not executed.
func shouldContinue(r *ExchangeResult) bool {
	return !r.hasTerminalSuggestion()
}

// allowDispatch reports whether a newly seen tool call may be executed
// given the aggregate so far. The food-suggestion tool stays allowed
// after a terminal suggestion because food suggestions are repeatable;
// every other tool is gated by the stop policy.
func allowDispatch(r *ExchangeResult, toolName string) bool {
	if shouldContinue(r) {
		return true
	}
	return toolName == ToolSuggestFood
}
