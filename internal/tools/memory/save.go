// Package memory provides the fact-saving tool.
package memory

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pulsefit/coach/internal/engine"
	"github.com/pulsefit/coach/internal/store"
)

// SaveFactTool persists one long-term fact about the user. The router
// also captures the content into the exchange aggregate, so the tool
// itself only needs to acknowledge.
type SaveFactTool struct {
	store *store.Store
}

// NewSaveFactTool creates the save_user_fact tool.
func NewSaveFactTool(s *store.Store) *SaveFactTool {
	return &SaveFactTool{store: s}
}

func (t *SaveFactTool) Name() string { return engine.ToolSaveFact }

func (t *SaveFactTool) Description() string {
	return "Save a long-term fact about the user, such as a preference, allergy, or goal."
}

func (t *SaveFactTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"content": {"type": "string", "description": "The fact to remember, one sentence"}
		},
		"required": ["content"]
	}`)
}

// Execute persists the fact.
func (t *SaveFactTool) Execute(ctx context.Context, args map[string]any) (engine.Outcome, error) {
	content, _ := args["content"].(string)
	if strings.TrimSpace(content) == "" {
		return engine.DataResponse{Payload: map[string]any{"error": "content is required"}}, nil
	}
	if t.store != nil {
		if _, err := t.store.SaveFact(ctx, content); err != nil {
			return engine.DataResponse{Payload: map[string]any{"error": err.Error()}}, nil
		}
	}
	return engine.NoAction{}, nil
}
