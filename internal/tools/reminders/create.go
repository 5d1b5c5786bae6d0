// Package reminders provides the reminder-creation tool.
package reminders

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pulsefit/coach/internal/engine"
	"github.com/robfig/cron/v3"
)

// CreateTool proposes creating a reminder, either one-shot at a timestamp
// or recurring on a cron schedule. Terminal: the exchange stops chaining
// so the user can confirm before anything is persisted.
type CreateTool struct{}

// NewCreateTool creates the create_reminder tool.
func NewCreateTool() *CreateTool {
	return &CreateTool{}
}

func (t *CreateTool) Name() string { return "create_reminder" }

func (t *CreateTool) Description() string {
	return "Suggest a reminder, either once at a specific time or recurring on a schedule."
}

func (t *CreateTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"message": {"type": "string", "description": "Reminder message"},
			"at": {"type": "string", "description": "One-shot trigger time, RFC3339"},
			"schedule": {"type": "string", "description": "Recurring cron schedule, e.g. '0 8 * * *' for daily at 8am"}
		},
		"required": ["message"]
	}`)
}

// Execute validates the timing and builds the reminder suggestion.
func (t *CreateTool) Execute(_ context.Context, args map[string]any) (engine.Outcome, error) {
	message, _ := args["message"].(string)
	at, _ := args["at"].(string)
	schedule, _ := args["schedule"].(string)

	if at == "" && schedule == "" {
		return engine.DataResponse{Payload: map[string]any{
			"error": "either at or schedule is required",
		}}, nil
	}

	if at != "" {
		when, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return engine.DataResponse{Payload: map[string]any{
				"error": fmt.Sprintf("invalid at time: %v", err),
			}}, nil
		}
		if when.Before(time.Now()) {
			return engine.DataResponse{Payload: map[string]any{
				"error": "cannot set a reminder in the past",
			}}, nil
		}
	}

	if schedule != "" {
		if _, err := cron.ParseStandard(schedule); err != nil {
			return engine.DataResponse{Payload: map[string]any{
				"error": fmt.Sprintf("invalid schedule: %v", err),
			}}, nil
		}
	}

	return engine.SuggestedReminder{
		ID:       uuid.NewString(),
		Message:  message,
		At:       at,
		Schedule: schedule,
	}, nil
}

// NextRun computes the next trigger of a recurring reminder schedule
// after the given time. Used by the persistence layer once the user
// confirms the suggestion.
func NextRun(schedule string, after time.Time) (time.Time, error) {
	spec, err := cron.ParseStandard(schedule)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse schedule: %w", err)
	}
	return spec.Next(after), nil
}
