package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/pulsefit/coach/internal/observability"
)

// maxChainDepth bounds the number of nested model calls one exchange may
// issue. Once reached the chain stops even if tool results are pending.
const maxChainDepth = 5

// TextSink receives the cumulative exchange text after each decoded text
// fragment. Successive invocations never carry less text than earlier
// ones. The sink is not invoked on the sequential follow-up path.
type TextSink func(cumulative string)

// ExchangeRequest starts a fresh exchange from a user message.
type ExchangeRequest struct {
	// History holds prior turns, already alternating model and user.
	History []Turn

	// UserMessage is the new user turn, with any context folded in by the
	// prompt layer. Required.
	UserMessage string

	// Sink optionally receives incremental cumulative text.
	Sink TextSink
}

// FollowUpRequest resumes an exchange whose tool calls were resolved
// outside the engine, typically after the user confirmed a suggestion
// carried over from a previous exchange.
type FollowUpRequest struct {
	// History holds turns preceding the model turn being answered.
	History []Turn

	// PriorModelTurn is the raw fragment list of the model turn that
	// issued the now-resolved tool calls.
	PriorModelTurn []Fragment

	// Results are the resolved tool results, in call order.
	Results []ToolCallResult

	// Sink optionally receives incremental cumulative text. Ignored on
	// the sequential path, which is non-incremental.
	Sink TextSink
}

// runMode selects the chaining protocol for one exchange.
type runMode int

const (
	// modeChained dispatches new tool calls and recurses on pending data
	// responses. Used by fresh exchanges and batch follow-ups.
	modeChained runMode = iota

	// modeDrain ignores new tool calls: the call exists only to obtain a
	// final natural-language answer after one already-resolved call.
	modeDrain
)

// Orchestrator drives the bounded recursive multi-turn loop: model call,
// stream decode, tool dispatch, and recursion on pending data responses.
//
// An Orchestrator is safe for concurrent use; each exchange carries its
// own transcript and aggregate and at most one stream is open per
// exchange at any instant.
type Orchestrator struct {
	client  ModelClient
	router  *Router
	decls   []ToolDeclaration
	model   string
	log     *slog.Logger
	metrics *observability.Metrics
}

// modelNamer is implemented by clients that know their model ID. Used
// only to label metrics.
type modelNamer interface {
	Model() string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.log = logger
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithToolDeclarations sets the tool declaration set sent with chained
// model calls. When the router's executor is a *Registry this defaults to
// its declarations.
func WithToolDeclarations(decls []ToolDeclaration) Option {
	return func(o *Orchestrator) { o.decls = decls }
}

// NewOrchestrator creates an orchestrator over the given model client and
// router.
func NewOrchestrator(client ModelClient, router *Router, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client: client,
		router: router,
		model:  "unknown",
		log:    slog.Default(),
	}
	if namer, ok := client.(modelNamer); ok {
		o.model = namer.Model()
	}
	if router != nil {
		if reg, ok := router.exec.(*Registry); ok {
			o.decls = reg.Declarations()
		}
	}
	for _, opt := range opts {
		opt(o)
	}
	o.log = o.log.With(slog.String("component", "orchestrator"))
	return o
}

// exchangeState is per-exchange bookkeeping threaded through recursion.
type exchangeState struct {
	sink     TextSink
	emitted  strings.Builder
	maxDepth int
}

func (s *exchangeState) emit(text string) {
	s.emitted.WriteString(text)
	if s.sink != nil {
		s.sink(s.emitted.String())
	}
}

// Run executes one fresh exchange: first model call with the full tool
// declaration set, then bounded recursion on pending data responses.
//
// A transport failure on the initial model call is returned as a hard
// error; failures at deeper levels are logged and the partial aggregate
// is returned instead.
func (o *Orchestrator) Run(ctx context.Context, req *ExchangeRequest) (*ExchangeResult, error) {
	if o.client == nil {
		return nil, ErrNoClient
	}
	if req == nil || strings.TrimSpace(req.UserMessage) == "" {
		return nil, ErrNoUserMessage
	}

	transcript := appendTurns(req.History, TextTurn(RoleUser, req.UserMessage))
	st := &exchangeState{sink: req.Sink}

	result, err := o.run(ctx, st, transcript, 0, modeChained)
	o.metrics.ObserveChainDepth(st.maxDepth)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ResumeBatch executes a parallel follow-up: all resolved results are
// reported in a single user turn, the model keeps its full tool
// declaration set, and new data responses chain recursively.
func (o *Orchestrator) ResumeBatch(ctx context.Context, req *FollowUpRequest) (*ExchangeResult, error) {
	if o.client == nil {
		return nil, ErrNoClient
	}
	if req == nil || len(req.Results) == 0 {
		return nil, ErrNoPendingResults
	}

	transcript := appendTurns(req.History,
		Turn{Role: RoleModel, Fragments: req.PriorModelTurn},
		ResultsTurn(req.Results),
	)
	st := &exchangeState{sink: req.Sink}

	result, err := o.run(ctx, st, transcript, 0, modeChained)
	o.metrics.ObserveChainDepth(st.maxDepth)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ResumeOne executes a sequential follow-up: exactly one resolved result
// is reported, the model call runs at reduced reasoning effort, and any
// new tool calls in the response are logged and ignored. The path exists
// to obtain a final natural-language answer, so it is non-incremental.
func (o *Orchestrator) ResumeOne(ctx context.Context, req *FollowUpRequest) (*ExchangeResult, error) {
	if o.client == nil {
		return nil, ErrNoClient
	}
	if req == nil || len(req.Results) != 1 {
		return nil, ErrNoPendingResults
	}

	transcript := appendTurns(req.History,
		Turn{Role: RoleModel, Fragments: req.PriorModelTurn},
		ResultsTurn(req.Results),
	)
	st := &exchangeState{} // no sink on the sequential path

	result, err := o.run(ctx, st, transcript, 0, modeDrain)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// run executes one recursion level: a single model call, stream decode
// with inline tool dispatch, and, in chained mode, recursion on pending
// data responses. It returns the aggregate for this level and below.
func (o *Orchestrator) run(ctx context.Context, st *exchangeState, transcript []Turn, depth int, mode runMode) (*ExchangeResult, error) {
	result := &ExchangeResult{}
	if depth >= maxChainDepth {
		return result, nil
	}
	if depth > st.maxDepth {
		st.maxDepth = depth
	}

	req := &ModelRequest{
		Turns:     transcript,
		Tools:     o.decls,
		LowEffort: mode == modeDrain,
	}

	start := time.Now()
	stream, err := o.client.Stream(ctx, req)
	if err != nil {
		o.metrics.ObserveModelRequest(o.model, false, time.Since(start).Seconds())
		o.log.Warn("model call failed",
			slog.Int("depth", depth),
			slog.String("error", err.Error()))
		return result, err
	}
	defer stream.Close()

	modelTurn, pending, decodeErr := o.consumeStream(ctx, st, stream, depth, mode, result)
	o.metrics.ObserveModelRequest(o.model, decodeErr == nil, time.Since(start).Seconds())
	result.LastModelTurn = modelTurn

	if decodeErr != nil {
		// Mid-stream failure: keep what this level already aggregated.
		o.log.Warn("stream aborted",
			slog.Int("depth", depth),
			slog.String("error", decodeErr.Error()))
		return result, nil
	}

	if mode != modeChained {
		return result, nil
	}

	anyData := false
	for _, p := range pending {
		if p.hasData {
			anyData = true
			break
		}
	}
	if !anyData || !shouldContinue(result) || depth+1 >= maxChainDepth {
		return result, nil
	}

	results := make([]ToolCallResult, 0, len(pending))
	for _, p := range pending {
		results = append(results, p.result)
	}
	next := appendTurns(transcript,
		Turn{Role: RoleModel, Fragments: modelTurn},
		ResultsTurn(results),
	)

	child, err := o.run(ctx, st, next, depth+1, mode)
	if err != nil {
		// Deeper-level transport failure: partial results win over total
		// failure. The child aggregate still carries anything decoded
		// before the failure.
		o.log.Warn("follow-up level failed",
			slog.Int("depth", depth+1),
			slog.String("error", err.Error()))
	}
	result.merge(child)
	return result, nil
}

// pendingResult pairs the result fed back to the model with whether the
// outcome was a raw data response. Only data responses justify another
// recursion level, but every dispatched call must be answered in the
// results turn.
type pendingResult struct {
	result  ToolCallResult
	hasData bool
}

// consumeStream drains one model stream, emitting text to the sink and
// dispatching tool calls as they are decoded. It returns the full
// fragment list of the model turn and the results of dispatched calls.
func (o *Orchestrator) consumeStream(ctx context.Context, st *exchangeState, stream FragmentStream, depth int, mode runMode, result *ExchangeResult) ([]Fragment, []pendingResult, error) {
	var modelTurn []Fragment
	var pending []pendingResult

	for {
		select {
		case <-ctx.Done():
			return modelTurn, pending, ctx.Err()
		default:
		}

		frag, err := stream.Next()
		if errors.Is(err, io.EOF) {
			return modelTurn, pending, nil
		}
		if err != nil {
			return modelTurn, pending, err
		}

		modelTurn = append(modelTurn, frag)

		switch f := frag.(type) {
		case TextFragment:
			result.Text += f.Text
			if mode == modeChained {
				st.emit(f.Text)
			}

		case ToolCallRequest:
			if mode == modeDrain {
				o.log.Info("ignoring tool call on drain path",
					slog.String("tool", f.Name))
				continue
			}
			if !allowDispatch(result, f.Name) {
				o.log.Info("tool call skipped by stop policy",
					slog.String("tool", f.Name),
					slog.Int("depth", depth))
				o.metrics.ObserveToolSkipped(f.Name)
				continue
			}

			out := o.router.Dispatch(ctx, f, result)
			result.record(out)
			pending = append(pending, pendingResult{
				result: ToolCallResult{
					Name:     f.Name,
					Response: outcomeResponse(out),
				},
				hasData: isDataResponse(out),
			})

		case ToolCallResult:
			// The decoder never produces results; tolerate and keep going.
		}
	}
}

// isDataResponse reports whether an outcome is a raw data response.
func isDataResponse(o Outcome) bool {
	_, ok := o.(DataResponse)
	return ok
}

// outcomeResponse builds the payload fed back to the model for one
// outcome. Data responses pass through untouched; suggestion outcomes are
// acknowledged so the transcript stays balanced when the chain continues.
func outcomeResponse(o Outcome) map[string]any {
	switch v := o.(type) {
	case DataResponse:
		return v.Payload
	case NoAction:
		return map[string]any{"status": "ok"}
	case SuggestedFood:
		return map[string]any{"status": "suggestion_presented", "kind": "food", "name": v.Name}
	case SuggestedFoodEdit:
		return map[string]any{"status": "suggestion_presented", "kind": "food_edit"}
	case SuggestedPlanUpdate:
		return map[string]any{"status": "suggestion_presented", "kind": "plan_update"}
	case SuggestedWorkout:
		return map[string]any{"status": "suggestion_presented", "kind": "workout", "name": v.Name}
	case SuggestedWorkoutStart:
		return map[string]any{"status": "suggestion_presented", "kind": "workout_start"}
	case SuggestedWorkoutLog:
		return map[string]any{"status": "suggestion_presented", "kind": "workout_log"}
	case StartedWorkout:
		return map[string]any{"status": "workout_started", "workout_id": v.WorkoutID}
	case SuggestedReminder:
		return map[string]any{"status": "suggestion_presented", "kind": "reminder"}
	default:
		return map[string]any{"status": "ok"}
	}
}
