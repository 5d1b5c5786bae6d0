// Package workouts provides the workout suggestion tools. All three are
// terminal: the exchange stops chaining so the user can confirm.
package workouts

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pulsefit/coach/internal/engine"
)

// SuggestTool proposes a workout for the user to review.
type SuggestTool struct{}

// NewSuggestTool creates the suggest_workout tool.
func NewSuggestTool() *SuggestTool {
	return &SuggestTool{}
}

func (t *SuggestTool) Name() string { return "suggest_workout" }

func (t *SuggestTool) Description() string {
	return "Suggest a workout with a list of exercises for the user to review."
}

func (t *SuggestTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"name": {"type": "string", "description": "Workout name"},
			"exercises": {
				"type": "array",
				"description": "Exercises with sets, reps, and optional weight",
				"items": {"type": "object"}
			}
		},
		"required": ["name", "exercises"]
	}`)
}

// Execute builds the workout suggestion.
func (t *SuggestTool) Execute(_ context.Context, args map[string]any) (engine.Outcome, error) {
	name, _ := args["name"].(string)
	var exercises []map[string]any
	if raw, ok := args["exercises"].([]any); ok {
		for _, item := range raw {
			if m, ok := item.(map[string]any); ok {
				exercises = append(exercises, m)
			}
		}
	}
	return engine.SuggestedWorkout{
		ID:        uuid.NewString(),
		Name:      name,
		Exercises: exercises,
	}, nil
}

// StartTool proposes starting a workout now.
type StartTool struct{}

// NewStartTool creates the start_workout tool.
func NewStartTool() *StartTool {
	return &StartTool{}
}

func (t *StartTool) Name() string { return "start_workout" }

func (t *StartTool) Description() string {
	return "Suggest starting a workout now."
}

func (t *StartTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"workout_id": {"type": "string", "description": "ID of a previously suggested workout"},
			"name": {"type": "string", "description": "Workout name"}
		},
		"required": ["name"]
	}`)
}

// Execute builds the start suggestion.
func (t *StartTool) Execute(_ context.Context, args map[string]any) (engine.Outcome, error) {
	workoutID, _ := args["workout_id"].(string)
	name, _ := args["name"].(string)
	return engine.SuggestedWorkoutStart{
		WorkoutID: workoutID,
		Name:      name,
	}, nil
}

// LogTool proposes recording a completed workout.
type LogTool struct{}

// NewLogTool creates the log_workout tool.
func NewLogTool() *LogTool {
	return &LogTool{}
}

func (t *LogTool) Name() string { return "log_workout" }

func (t *LogTool) Description() string {
	return "Suggest logging a workout the user already completed."
}

func (t *LogTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"name": {"type": "string", "description": "Workout name"},
			"duration": {"type": "string", "description": "Duration, e.g. '45 minutes'"},
			"fields": {"type": "object", "description": "Additional details such as distance or effort"}
		},
		"required": ["name"]
	}`)
}

// Execute builds the log suggestion.
func (t *LogTool) Execute(_ context.Context, args map[string]any) (engine.Outcome, error) {
	name, _ := args["name"].(string)
	duration, _ := args["duration"].(string)
	fields, _ := args["fields"].(map[string]any)
	return engine.SuggestedWorkoutLog{
		Name:     name,
		Duration: duration,
		Fields:   fields,
	}, nil
}
