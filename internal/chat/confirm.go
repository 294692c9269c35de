package chat

import "strings"

// Classification of a user reply while a confirmation is pending.
type Classification int

const (
	Unrelated Classification = iota
	Affirm
	Reject
)

// affirmWords and rejectWords are matched exactly against the normalized
// reply. Anything else is Unrelated: when in doubt, re-ask instead of
// guessing.
var affirmWords = map[string]bool{
	"yes": true, "y": true, "yes please": true, "yep": true, "yeah": true,
	"sure": true, "ok": true, "okay": true, "confirm": true, "confirmed": true,
	"do it": true, "go ahead": true, "please do": true, "proceed": true,
}

var rejectWords = map[string]bool{
	"no": true, "n": true, "nope": true, "cancel": true, "stop": true,
	"don't": true, "dont": true, "nevermind": true, "never mind": true,
	"no thanks": true, "abort": true,
}

// Classify interprets a user reply to a pending confirmation. This is a
// fixed-vocabulary match, not a language-model pass: the gate for
// destructive actions must not depend on model output.
func Classify(text string) Classification {
	normalized := strings.ToLower(strings.TrimSpace(text))
	normalized = strings.TrimRight(normalized, ".!")
	switch {
	case affirmWords[normalized]:
		return Affirm
	case rejectWords[normalized]:
		return Reject
	default:
		return Unrelated
	}
}

// PendingAction returns the proposed-but-unexecuted tool call awaiting
// confirmation, derived purely from history: the final turn must be an
// assistant turn carrying a Proposed record. Any later turn clears the
// state.
func PendingAction(turns []*Turn) *ToolCallRecord {
	if len(turns) == 0 {
		return nil
	}
	last := turns[len(turns)-1]
	if last.Role != RoleAssistant {
		return nil
	}
	for i := range last.ToolCalls {
		if last.ToolCalls[i].Proposed {
			return &last.ToolCalls[i]
		}
	}
	return nil
}
