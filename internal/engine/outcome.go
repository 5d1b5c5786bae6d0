package engine

// Outcome is the result of executing one tool call. It is a closed sum;
// every variant the executor can produce is declared here so that the
// aggregator and stop policy can switch exhaustively.
//
// DataResponse and NoAction never halt chaining. SuggestedFood is
// repeatable: any number may accumulate in one exchange. Every other
// variant is a terminal suggestion: once recorded, no tool call of a
// different kind is dispatched for the rest of the exchange.
type Outcome interface {
	outcome()
}

// DataResponse carries raw tool output for the model to act on, such as a
// food-log query result. Errors during execution are also reported this
// way so the model can react to them.
type DataResponse struct {
	Payload map[string]any
}

// NoAction reports that the tool ran and produced nothing the model or
// caller needs to see beyond an acknowledgement.
type NoAction struct{}

// SuggestedFood proposes logging a food item. Repeatable.
type SuggestedFood struct {
	ID       string
	Name     string
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
	Quantity string
	MealType string
}

// SuggestedFoodEdit proposes changing an existing food-log entry.
type SuggestedFoodEdit struct {
	EntryID string
	Fields  map[string]any
}

// SuggestedPlanUpdate proposes changing the user's nutrition or training
// plan targets.
type SuggestedPlanUpdate struct {
	Fields map[string]any
}

// SuggestedWorkout proposes a workout for the user to review.
type SuggestedWorkout struct {
	ID        string
	Name      string
	Exercises []map[string]any
}

// SuggestedWorkoutStart proposes starting a workout now.
type SuggestedWorkoutStart struct {
	WorkoutID string
	Name      string
}

// SuggestedWorkoutLog proposes recording a completed workout.
type SuggestedWorkoutLog struct {
	Name     string
	Duration string
	Fields   map[string]any
}

// StartedWorkout reports that a workout was started directly.
//
// Deprecated: retained for older executor builds that start workouts
// without user confirmation; new tools return SuggestedWorkoutStart.
type StartedWorkout struct {
	WorkoutID string
}

// SuggestedReminder proposes creating a reminder.
type SuggestedReminder struct {
	ID       string
	Message  string
	At       string
	Schedule string
}

func (DataResponse) outcome()          {}
func (NoAction) outcome()              {}
func (SuggestedFood) outcome()         {}
func (SuggestedFoodEdit) outcome()     {}
func (SuggestedPlanUpdate) outcome()   {}
func (SuggestedWorkout) outcome()      {}
func (SuggestedWorkoutStart) outcome() {}
func (SuggestedWorkoutLog) outcome()   {}
func (StartedWorkout) outcome()        {}
func (SuggestedReminder) outcome()     {}
