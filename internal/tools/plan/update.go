// Package plan provides the plan-update tool.
package plan

import (
	"context"
	"encoding/json"

	"github.com/pulsefit/coach/internal/engine"
)

// UpdateTool proposes changing the user's plan targets. Terminal: the
// exchange stops chaining so the user can confirm.
type UpdateTool struct{}

// NewUpdateTool creates the update_user_plan tool.
func NewUpdateTool() *UpdateTool {
	return &UpdateTool{}
}

func (t *UpdateTool) Name() string { return "update_user_plan" }

func (t *UpdateTool) Description() string {
	return "Suggest an update to the user's nutrition or training plan targets."
}

func (t *UpdateTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"fields": {
				"type": "object",
				"description": "Target changes, e.g. {\"daily_calories\": 2200, \"protein_g\": 150}"
			}
		},
		"required": ["fields"]
	}`)
}

// Execute builds the plan-update suggestion.
func (t *UpdateTool) Execute(_ context.Context, args map[string]any) (engine.Outcome, error) {
	fields, _ := args["fields"].(map[string]any)
	return engine.SuggestedPlanUpdate{Fields: fields}, nil
}
