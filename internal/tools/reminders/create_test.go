package reminders

import (
	"context"
	"testing"
	"time"

	"github.com/pulsefit/coach/internal/engine"
)

func execute(t *testing.T, args map[string]any) engine.Outcome {
	t.Helper()
	out, err := NewCreateTool().Execute(context.Background(), args)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	return out
}

func TestCreateOneShot(t *testing.T) {
	at := time.Now().Add(2 * time.Hour).Format(time.RFC3339)
	out := execute(t, map[string]any{"message": "drink water", "at": at})

	rem, ok := out.(engine.SuggestedReminder)
	if !ok {
		t.Fatalf("outcome = %T, want SuggestedReminder", out)
	}
	if rem.ID == "" || rem.Message != "drink water" || rem.At != at || rem.Schedule != "" {
		t.Errorf("reminder = %+v", rem)
	}
}

func TestCreateRecurring(t *testing.T) {
	out := execute(t, map[string]any{"message": "log lunch", "schedule": "0 12 * * *"})

	rem, ok := out.(engine.SuggestedReminder)
	if !ok {
		t.Fatalf("outcome = %T, want SuggestedReminder", out)
	}
	if rem.Schedule != "0 12 * * *" {
		t.Errorf("schedule = %q", rem.Schedule)
	}
}

func TestCreateRejections(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
	}{
		{"no timing", map[string]any{"message": "hi"}},
		{"bad timestamp", map[string]any{"message": "hi", "at": "tomorrow at 8"}},
		{"past timestamp", map[string]any{"message": "hi", "at": "2020-01-01T08:00:00Z"}},
		{"bad schedule", map[string]any{"message": "hi", "schedule": "every tuesday"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := execute(t, tt.args)
			data, ok := out.(engine.DataResponse)
			if !ok {
				t.Fatalf("outcome = %T, want DataResponse", out)
			}
			if data.Payload["error"] == nil {
				t.Errorf("payload = %v, want error", data.Payload)
			}
		})
	}
}

func TestNextRun(t *testing.T) {
	after := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	next, err := NextRun("0 12 * * *", after)
	if err != nil {
		t.Fatalf("NextRun() error = %v", err)
	}
	want := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}

	if _, err := NextRun("nope", after); err == nil {
		t.Error("expected error for invalid schedule")
	}
}
