package engine

import (
	"context"
	"log/slog"

	"github.com/pulsefit/coach/internal/observability"
)

// Tool names the router special-cases. The executor may register more
// tools under any names; these two carry protocol meaning.
const (
	// ToolSuggestFood is the repeatable food-suggestion tool: its calls
	// remain dispatchable after a terminal suggestion has been recorded.
	ToolSuggestFood = "suggest_food_log"

	// ToolSaveFact is the fact-saving tool: its content argument is
	// captured into the exchange's saved facts regardless of the
	// outcome shape the executor returns.
	ToolSaveFact = "save_user_fact"
)

// Router maps a decoded tool call to an execution outcome through the
// external executor. It never fails a dispatch: executor errors come back
// as DataResponse payloads so the model can react to them.
type Router struct {
	exec    Executor
	log     *slog.Logger
	metrics *observability.Metrics
}

// NewRouter creates a router over the given executor. logger and metrics
// may be nil.
func NewRouter(exec Executor, logger *slog.Logger, metrics *observability.Metrics) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		exec:    exec,
		log:     logger.With(slog.String("component", "router")),
		metrics: metrics,
	}
}

// Dispatch executes one tool call and folds bookkeeping into the
// aggregate: the invoked tool name is recorded for observability, and the
// save-fact tool's content string is appended to the saved facts.
func (r *Router) Dispatch(ctx context.Context, call ToolCallRequest, agg *ExchangeResult) Outcome {
	agg.InvokedTools = append(agg.InvokedTools, call.Name)

	if call.Name == ToolSaveFact {
		if content, ok := call.Args["content"].(string); ok && content != "" {
			agg.SavedFacts = append(agg.SavedFacts, content)
		}
	}

	if r.exec == nil {
		r.log.Warn("no executor configured", slog.String("tool", call.Name))
		r.metrics.ObserveToolDispatch(call.Name, false)
		return DataResponse{Payload: map[string]any{"error": "no executor configured"}}
	}

	out, err := r.exec.Execute(ctx, call.Name, call.Args)
	if err != nil {
		r.log.Warn("tool execution failed",
			slog.String("tool", call.Name),
			slog.String("error", err.Error()))
		r.metrics.ObserveToolDispatch(call.Name, false)
		return DataResponse{Payload: map[string]any{"error": err.Error()}}
	}
	if out == nil {
		r.metrics.ObserveToolDispatch(call.Name, false)
		return DataResponse{Payload: map[string]any{"error": "tool returned no outcome"}}
	}

	r.log.Debug("tool dispatched", slog.String("tool", call.Name))
	r.metrics.ObserveToolDispatch(call.Name, true)
	return out
}
