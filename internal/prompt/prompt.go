// Package prompt folds conversation context into the first user turn of
// an exchange. The engine treats the produced text as opaque.
package prompt

import (
	"strings"
)

// Context carries the opaque inputs folded ahead of the user's message.
// Empty fields are omitted.
type Context struct {
	// ProfileSummary describes the user: goals, stats, preferences.
	ProfileSummary string

	// MemoryNotes are long-term facts saved in earlier exchanges.
	MemoryNotes []string

	// PendingSuggestion describes a suggestion carried over from a
	// previous exchange that the user has not yet resolved.
	PendingSuggestion string

	// LiveActivity describes an in-progress workout, if any.
	LiveActivity string
}

// Build assembles the first user turn: context sections, then the user's
// message.
func Build(pctx Context, message string) string {
	var b strings.Builder

	writeSection(&b, "User profile", pctx.ProfileSummary)
	if len(pctx.MemoryNotes) > 0 {
		writeSection(&b, "Things to remember about the user", strings.Join(pctx.MemoryNotes, "\n- "))
	}
	writeSection(&b, "Pending suggestion awaiting the user's decision", pctx.PendingSuggestion)
	writeSection(&b, "Current activity", pctx.LiveActivity)

	b.WriteString(strings.TrimSpace(message))
	return b.String()
}

func writeSection(b *strings.Builder, title, body string) {
	body = strings.TrimSpace(body)
	if body == "" {
		return
	}
	b.WriteString(title)
	b.WriteString(":\n")
	if !strings.HasPrefix(body, "- ") {
		b.WriteString("- ")
	}
	b.WriteString(body)
	b.WriteString("\n\n")
}
