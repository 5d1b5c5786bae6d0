// Package foodlog provides the food-logging tools: direct log reads and
// writes plus the suggestion tools that await user confirmation.
package foodlog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pulsefit/coach/internal/engine"
	"github.com/pulsefit/coach/internal/store"
)

// LogTool writes a food entry directly. Used when the user has already
// confirmed what they ate.
type LogTool struct {
	store *store.Store
}

// NewLogTool creates the log_food tool.
func NewLogTool(s *store.Store) *LogTool {
	return &LogTool{store: s}
}

func (t *LogTool) Name() string { return "log_food" }

func (t *LogTool) Description() string {
	return "Log a food item the user confirmed eating, with calories and optional macros."
}

func (t *LogTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"name": {"type": "string", "description": "Food name"},
			"calories": {"type": "number", "description": "Calories for the logged quantity"},
			"protein": {"type": "number", "description": "Protein in grams"},
			"carbs": {"type": "number", "description": "Carbohydrates in grams"},
			"fat": {"type": "number", "description": "Fat in grams"},
			"quantity": {"type": "string", "description": "Quantity description, e.g. '1 cup'"},
			"meal_type": {"type": "string", "description": "breakfast, lunch, dinner, or snack"}
		},
		"required": ["name", "calories"]
	}`)
}

// Execute writes the entry and returns its ID as raw data.
func (t *LogTool) Execute(ctx context.Context, args map[string]any) (engine.Outcome, error) {
	entry := &store.FoodEntry{
		Name:     stringArg(args, "name"),
		Calories: numberArg(args, "calories"),
		Protein:  numberArg(args, "protein"),
		Carbs:    numberArg(args, "carbs"),
		Fat:      numberArg(args, "fat"),
		Quantity: stringArg(args, "quantity"),
		MealType: stringArg(args, "meal_type"),
	}
	if err := t.store.AddFoodEntry(ctx, entry); err != nil {
		return engine.DataResponse{Payload: map[string]any{"error": err.Error()}}, nil
	}
	return engine.DataResponse{Payload: map[string]any{
		"status":   "logged",
		"entry_id": entry.ID,
	}}, nil
}

// GetLogTool reads the food log for a day and returns totals plus entries.
type GetLogTool struct {
	store *store.Store
}

// NewGetLogTool creates the get_food_log tool.
func NewGetLogTool(s *store.Store) *GetLogTool {
	return &GetLogTool{store: s}
}

func (t *GetLogTool) Name() string { return "get_food_log" }

func (t *GetLogTool) Description() string {
	return "Get the user's food log for a day, including calorie and macro totals."
}

func (t *GetLogTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"date": {"type": "string", "description": "Day to read, YYYY-MM-DD. Defaults to today."}
		}
	}`)
}

// Execute reads the day's entries.
func (t *GetLogTool) Execute(ctx context.Context, args map[string]any) (engine.Outcome, error) {
	day := time.Now().UTC()
	if raw := stringArg(args, "date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return engine.DataResponse{Payload: map[string]any{"error": "invalid date, expected YYYY-MM-DD"}}, nil
		}
		day = parsed
	}

	entries, err := t.store.FoodLogForDay(ctx, day)
	if err != nil {
		return engine.DataResponse{Payload: map[string]any{"error": err.Error()}}, nil
	}

	var calories, protein, carbs, fat float64
	items := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		calories += e.Calories
		protein += e.Protein
		carbs += e.Carbs
		fat += e.Fat
		items = append(items, map[string]any{
			"entry_id":  e.ID,
			"name":      e.Name,
			"calories":  e.Calories,
			"protein":   e.Protein,
			"carbs":     e.Carbs,
			"fat":       e.Fat,
			"quantity":  e.Quantity,
			"meal_type": e.MealType,
		})
	}

	return engine.DataResponse{Payload: map[string]any{
		"date":           day.Format("2006-01-02"),
		"total_calories": calories,
		"total_protein":  protein,
		"total_carbs":    carbs,
		"total_fat":      fat,
		"entries":        items,
	}}, nil
}

// SuggestTool proposes a food entry for the user to confirm. No store
// write happens until confirmation re-enters via a follow-up.
type SuggestTool struct{}

// NewSuggestTool creates the suggest_food_log tool.
func NewSuggestTool() *SuggestTool {
	return &SuggestTool{}
}

func (t *SuggestTool) Name() string { return engine.ToolSuggestFood }

func (t *SuggestTool) Description() string {
	return "Suggest a food item for the user to log. May be called several times for a multi-item meal."
}

func (t *SuggestTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"name": {"type": "string", "description": "Food name"},
			"calories": {"type": "number", "description": "Estimated calories"},
			"protein": {"type": "number", "description": "Protein in grams"},
			"carbs": {"type": "number", "description": "Carbohydrates in grams"},
			"fat": {"type": "number", "description": "Fat in grams"},
			"quantity": {"type": "string", "description": "Quantity description"},
			"meal_type": {"type": "string", "description": "breakfast, lunch, dinner, or snack"}
		},
		"required": ["name", "calories"]
	}`)
}

// Execute builds the suggestion.
func (t *SuggestTool) Execute(_ context.Context, args map[string]any) (engine.Outcome, error) {
	return engine.SuggestedFood{
		ID:       uuid.NewString(),
		Name:     stringArg(args, "name"),
		Calories: numberArg(args, "calories"),
		Protein:  numberArg(args, "protein"),
		Carbs:    numberArg(args, "carbs"),
		Fat:      numberArg(args, "fat"),
		Quantity: stringArg(args, "quantity"),
		MealType: stringArg(args, "meal_type"),
	}, nil
}

// EditTool proposes changing an existing entry. Terminal: once suggested,
// the exchange stops chaining so the user can confirm.
type EditTool struct{}

// NewEditTool creates the edit_food_log tool.
func NewEditTool() *EditTool {
	return &EditTool{}
}

func (t *EditTool) Name() string { return "edit_food_log" }

func (t *EditTool) Description() string {
	return "Suggest an edit to an existing food-log entry."
}

func (t *EditTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"entry_id": {"type": "string", "description": "ID of the entry to change"},
			"fields": {"type": "object", "description": "Field changes, e.g. {\"calories\": 250}"}
		},
		"required": ["entry_id", "fields"]
	}`)
}

// Execute builds the edit suggestion.
func (t *EditTool) Execute(_ context.Context, args map[string]any) (engine.Outcome, error) {
	fields, _ := args["fields"].(map[string]any)
	return engine.SuggestedFoodEdit{
		EntryID: stringArg(args, "entry_id"),
		Fields:  fields,
	}, nil
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func numberArg(args map[string]any, key string) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}
