package prompt

import (
	"strings"
	"testing"
)

func TestBuildMessageOnly(t *testing.T) {
	got := Build(Context{}, "  how am I doing?  ")
	if got != "how am I doing?" {
		t.Errorf("Build() = %q", got)
	}
}

func TestBuildSections(t *testing.T) {
	got := Build(Context{
		ProfileSummary:    "32yo, cutting, 2200 kcal target",
		MemoryNotes:       []string{"lactose intolerant", "trains mornings"},
		PendingSuggestion: "log_food: oatmeal, 300 kcal",
		LiveActivity:      "running, 12 min elapsed",
	}, "should I eat now?")

	for _, want := range []string{
		"User profile:",
		"2200 kcal target",
		"lactose intolerant",
		"- trains mornings",
		"Pending suggestion awaiting the user's decision:",
		"Current activity:",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Build() missing %q:\n%s", want, got)
		}
	}
	if !strings.HasSuffix(got, "should I eat now?") {
		t.Errorf("message not last:\n%s", got)
	}
}

func TestBuildSkipsEmptySections(t *testing.T) {
	got := Build(Context{ProfileSummary: "  "}, "hi")
	if strings.Contains(got, "User profile") {
		t.Errorf("blank section rendered:\n%s", got)
	}
}
