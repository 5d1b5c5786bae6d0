package engine

// ExchangeResult accumulates everything one exchange produced across all
// recursion levels: concatenated text, zero or more food suggestions, at
// most one of each other suggestion kind, and saved facts. The zero value
// is an empty result.
//
// LastModelTurn holds the raw fragments of the most recent model turn so
// a follow-up call can re-issue them as context.
type ExchangeResult struct {
	Text string

	FoodSuggestions []SuggestedFood
	FoodEdit        *SuggestedFoodEdit
	PlanUpdate      *SuggestedPlanUpdate
	Workout         *SuggestedWorkout
	WorkoutStart    *SuggestedWorkoutStart
	WorkoutLog      *SuggestedWorkoutLog
	StartedWorkout  *StartedWorkout
	Reminder        *SuggestedReminder

	SavedFacts []string

	// InvokedTools records the names of every tool dispatched during the
	// exchange, in call order. Observability bookkeeping only.
	InvokedTools []string

	LastModelTurn []Fragment
}

// Empty reports whether the exchange produced nothing visible to the
// caller. An empty successful exchange is distinguishable from a failure:
// failures are always returned as errors, never as empty results.
func (r *ExchangeResult) Empty() bool {
	return r.Text == "" &&
		len(r.FoodSuggestions) == 0 &&
		len(r.SavedFacts) == 0 &&
		!r.hasTerminalSuggestion()
}

// hasTerminalSuggestion reports whether any terminal-suggestion kind has
// been recorded. Consulted by the stop policy.
func (r *ExchangeResult) hasTerminalSuggestion() bool {
	return r.FoodEdit != nil ||
		r.PlanUpdate != nil ||
		r.Workout != nil ||
		r.WorkoutStart != nil ||
		r.WorkoutLog != nil ||
		r.StartedWorkout != nil ||
		r.Reminder != nil
}

// record folds one tool outcome into the result. Later values of the same
// terminal kind overwrite earlier ones; stop-policy gating makes that rare.
func (r *ExchangeResult) record(o Outcome) {
	switch v := o.(type) {
	case SuggestedFood:
		r.FoodSuggestions = append(r.FoodSuggestions, v)
	case SuggestedFoodEdit:
		r.FoodEdit = &v
	case SuggestedPlanUpdate:
		r.PlanUpdate = &v
	case SuggestedWorkout:
		r.Workout = &v
	case SuggestedWorkoutStart:
		r.WorkoutStart = &v
	case SuggestedWorkoutLog:
		r.WorkoutLog = &v
	case StartedWorkout:
		r.StartedWorkout = &v
	case SuggestedReminder:
		r.Reminder = &v
	case DataResponse, NoAction:
		// Nothing to record; data responses drive the next turn instead.
	}
}

// merge folds a child aggregate produced by a deeper recursion level into
// r. Text appends, food suggestions concatenate in order, the child wins
// for every other suggestion kind it carries, and saved facts concatenate
// with duplicates preserved.
func (r *ExchangeResult) merge(child *ExchangeResult) {
	if child == nil {
		return
	}
	r.Text += child.Text
	r.FoodSuggestions = append(r.FoodSuggestions, child.FoodSuggestions...)
	if child.FoodEdit != nil {
		r.FoodEdit = child.FoodEdit
	}
	if child.PlanUpdate != nil {
		r.PlanUpdate = child.PlanUpdate
	}
	if child.Workout != nil {
		r.Workout = child.Workout
	}
	if child.WorkoutStart != nil {
		r.WorkoutStart = child.WorkoutStart
	}
	if child.WorkoutLog != nil {
		r.WorkoutLog = child.WorkoutLog
	}
	if child.StartedWorkout != nil {
		r.StartedWorkout = child.StartedWorkout
	}
	if child.Reminder != nil {
		r.Reminder = child.Reminder
	}
	r.SavedFacts = append(r.SavedFacts, child.SavedFacts...)
	r.InvokedTools = append(r.InvokedTools, child.InvokedTools...)
	if len(child.LastModelTurn) > 0 {
		r.LastModelTurn = child.LastModelTurn
	}
}
