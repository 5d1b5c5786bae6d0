package plan

import (
	"context"
	"testing"

	"github.com/pulsefit/coach/internal/engine"
)

func TestUpdatePlan(t *testing.T) {
	out, err := NewUpdateTool().Execute(context.Background(), map[string]any{
		"fields": map[string]any{"daily_calories": 2200.0, "protein_g": 150.0},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	update, ok := out.(engine.SuggestedPlanUpdate)
	if !ok {
		t.Fatalf("outcome = %T, want SuggestedPlanUpdate", out)
	}
	if update.Fields["daily_calories"] != 2200.0 || update.Fields["protein_g"] != 150.0 {
		t.Errorf("fields = %v", update.Fields)
	}
}

func TestUpdatePlanMissingFields(t *testing.T) {
	out, err := NewUpdateTool().Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	update, ok := out.(engine.SuggestedPlanUpdate)
	if !ok {
		t.Fatalf("outcome = %T, want SuggestedPlanUpdate", out)
	}
	if len(update.Fields) != 0 {
		t.Errorf("fields = %v, want empty", update.Fields)
	}
}
