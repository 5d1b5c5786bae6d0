package workouts

import (
	"context"
	"testing"

	"github.com/pulsefit/coach/internal/engine"
)

func TestSuggestWorkout(t *testing.T) {
	out, err := NewSuggestTool().Execute(context.Background(), map[string]any{
		"name": "push day",
		"exercises": []any{
			map[string]any{"name": "bench press", "sets": 3.0, "reps": 8.0},
			map[string]any{"name": "overhead press", "sets": 3.0, "reps": 10.0},
		},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	w, ok := out.(engine.SuggestedWorkout)
	if !ok {
		t.Fatalf("outcome = %T, want SuggestedWorkout", out)
	}
	if w.ID == "" || w.Name != "push day" {
		t.Errorf("workout = %+v", w)
	}
	if len(w.Exercises) != 2 || w.Exercises[0]["name"] != "bench press" {
		t.Errorf("exercises = %v", w.Exercises)
	}
}

func TestStartWorkout(t *testing.T) {
	out, err := NewStartTool().Execute(context.Background(), map[string]any{
		"workout_id": "w1",
		"name":       "leg day",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	start, ok := out.(engine.SuggestedWorkoutStart)
	if !ok {
		t.Fatalf("outcome = %T, want SuggestedWorkoutStart", out)
	}
	if start.WorkoutID != "w1" || start.Name != "leg day" {
		t.Errorf("start = %+v", start)
	}
}

func TestLogWorkout(t *testing.T) {
	out, err := NewLogTool().Execute(context.Background(), map[string]any{
		"name":     "morning run",
		"duration": "30 minutes",
		"fields":   map[string]any{"distance_km": 5.0},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	logged, ok := out.(engine.SuggestedWorkoutLog)
	if !ok {
		t.Fatalf("outcome = %T, want SuggestedWorkoutLog", out)
	}
	if logged.Name != "morning run" || logged.Duration != "30 minutes" {
		t.Errorf("log = %+v", logged)
	}
	if logged.Fields["distance_km"] != 5.0 {
		t.Errorf("fields = %v", logged.Fields)
	}
}
