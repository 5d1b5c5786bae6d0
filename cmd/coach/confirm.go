package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pulsefit/coach/internal/engine"
	"github.com/pulsefit/coach/internal/store"
	"github.com/pulsefit/coach/internal/tools/reminders"
)

// hasOpenSuggestions reports whether the result carries suggestions
// awaiting the user's decision. StartedWorkout is excluded: it reports
// an action already taken.
func hasOpenSuggestions(r *engine.ExchangeResult) bool {
	return len(r.FoodSuggestions) > 0 ||
		r.FoodEdit != nil ||
		r.PlanUpdate != nil ||
		r.Workout != nil ||
		r.WorkoutStart != nil ||
		r.WorkoutLog != nil ||
		r.Reminder != nil
}

// applySuggestions persists every suggestion the user accepted and
// builds the tool results reported back to the model, food suggestions
// first, then the terminal kinds in a fixed order.
func applySuggestions(ctx context.Context, db *store.Store, result *engine.ExchangeResult) ([]engine.ToolCallResult, error) {
	var results []engine.ToolCallResult

	for _, food := range result.FoodSuggestions {
		entry := &store.FoodEntry{
			ID:       food.ID,
			Name:     food.Name,
			Calories: food.Calories,
			Protein:  food.Protein,
			Carbs:    food.Carbs,
			Fat:      food.Fat,
			Quantity: food.Quantity,
			MealType: food.MealType,
		}
		if err := db.AddFoodEntry(ctx, entry); err != nil {
			return nil, fmt.Errorf("log food %q: %w", food.Name, err)
		}
		results = append(results, engine.ToolCallResult{
			Name:     engine.ToolSuggestFood,
			Response: map[string]any{"status": "logged", "entry_id": entry.ID},
		})
	}

	if result.FoodEdit != nil {
		if err := db.UpdateFoodEntry(ctx, result.FoodEdit.EntryID, result.FoodEdit.Fields); err != nil {
			return nil, fmt.Errorf("edit food entry: %w", err)
		}
		results = append(results, engine.ToolCallResult{
			Name:     "edit_food_log",
			Response: map[string]any{"status": "updated", "entry_id": result.FoodEdit.EntryID},
		})
	}

	if result.PlanUpdate != nil {
		if err := db.UpdatePlan(ctx, result.PlanUpdate.Fields); err != nil {
			return nil, fmt.Errorf("update plan: %w", err)
		}
		results = append(results, engine.ToolCallResult{
			Name:     "update_user_plan",
			Response: map[string]any{"status": "updated"},
		})
	}

	if result.Workout != nil {
		// Review-only: nothing is recorded until the workout is performed.
		results = append(results, engine.ToolCallResult{
			Name:     "suggest_workout",
			Response: map[string]any{"status": "accepted", "workout_id": result.Workout.ID},
		})
	}

	if result.WorkoutStart != nil {
		results = append(results, engine.ToolCallResult{
			Name:     "start_workout",
			Response: map[string]any{"status": "started", "workout_id": result.WorkoutStart.WorkoutID},
		})
	}

	if result.WorkoutLog != nil {
		w := &store.Workout{
			Name:     result.WorkoutLog.Name,
			Duration: result.WorkoutLog.Duration,
			Details:  result.WorkoutLog.Fields,
		}
		if err := db.LogWorkout(ctx, w); err != nil {
			return nil, fmt.Errorf("log workout: %w", err)
		}
		results = append(results, engine.ToolCallResult{
			Name:     "log_workout",
			Response: map[string]any{"status": "logged", "workout_id": w.ID},
		})
	}

	if result.Reminder != nil {
		rem := &store.Reminder{
			ID:       result.Reminder.ID,
			Message:  result.Reminder.Message,
			Schedule: result.Reminder.Schedule,
		}
		resp := map[string]any{"status": "created"}
		if result.Reminder.At != "" {
			when, err := time.Parse(time.RFC3339, result.Reminder.At)
			if err != nil {
				return nil, fmt.Errorf("parse reminder time: %w", err)
			}
			rem.TriggerAt = when
		}
		if result.Reminder.Schedule != "" {
			next, err := reminders.NextRun(result.Reminder.Schedule, time.Now())
			if err != nil {
				return nil, fmt.Errorf("reminder schedule: %w", err)
			}
			resp["next_run"] = next.Format(time.RFC3339)
		}
		if err := db.CreateReminder(ctx, rem); err != nil {
			return nil, fmt.Errorf("create reminder: %w", err)
		}
		resp["reminder_id"] = rem.ID
		results = append(results, engine.ToolCallResult{
			Name:     "create_reminder",
			Response: resp,
		})
	}

	return results, nil
}

// confirmSuggestions persists accepted suggestions and resumes the
// exchange so the model can phrase a closing answer. A single result
// resumes sequentially; several resume as a batch.
func confirmSuggestions(ctx context.Context, orch *engine.Orchestrator, db *store.Store, history []engine.Turn, result *engine.ExchangeResult) (*engine.ExchangeResult, []engine.ToolCallResult, error) {
	results, err := applySuggestions(ctx, db, result)
	if err != nil {
		return nil, nil, err
	}

	req := &engine.FollowUpRequest{
		History:        history,
		PriorModelTurn: result.LastModelTurn,
		Results:        results,
	}
	if len(results) == 1 {
		followUp, err := orch.ResumeOne(ctx, req)
		return followUp, results, err
	}
	followUp, err := orch.ResumeBatch(ctx, req)
	return followUp, results, err
}

// pendingSummary describes declined-or-deferred suggestions so the next
// exchange can remind the model they are still unresolved.
func pendingSummary(result *engine.ExchangeResult) string {
	var parts []string
	for _, food := range result.FoodSuggestions {
		parts = append(parts, fmt.Sprintf("log %s (%.0f kcal)", food.Name, food.Calories))
	}
	if result.FoodEdit != nil {
		parts = append(parts, fmt.Sprintf("edit food entry %s", result.FoodEdit.EntryID))
	}
	if result.PlanUpdate != nil {
		parts = append(parts, "update the plan targets")
	}
	if result.Workout != nil {
		parts = append(parts, fmt.Sprintf("workout %q", result.Workout.Name))
	}
	if result.WorkoutStart != nil {
		parts = append(parts, fmt.Sprintf("start workout %q", result.WorkoutStart.Name))
	}
	if result.WorkoutLog != nil {
		parts = append(parts, fmt.Sprintf("log workout %q", result.WorkoutLog.Name))
	}
	if result.Reminder != nil {
		parts = append(parts, fmt.Sprintf("reminder %q", result.Reminder.Message))
	}
	if len(parts) == 0 {
		return ""
	}
	return "Not yet accepted: " + strings.Join(parts, "; ")
}
