package stubserver

import (
	"strings"

	"ticket_desk/pkg/model"
)

// ClassifyFunc suggests a category and priority for a description.
type ClassifyFunc func(description string) model.Suggestion

// minTriageWords is the shortest description the keyword rules trust.
const minTriageWords = 3

var (
	billingWords = []string{"charge", "invoice", "refund", "payment", "subscription", "billing", "pricing", "price", "card", "transaction", "paid"}
	accountWords = []string{"log in", "login", "sign in", "password", "2fa", "permission", "account", "locked out", "profile", "access"}
	techWords    = []string{"error", "bug", "crash", "slow", "api", "broken", "not working", "fails", "failed", "timeout", "integration", "500", "exception"}

	criticalWords = []string{"outage", "is down", "production", "data loss", "lost data", "breach", "security", "all users", "everyone"}
	highWords     = []string{"urgent", "asap", "can't work", "cannot work", "blocked", "stuck", "multiple users", "broken", "immediately"}
	mediumWords   = []string{"error", "issue", "problem", "workaround", "slow", "sometimes", "intermittent", "fails"}
)

// Triage is a keyword classifier following the support desk's triage
// rules: billing beats technical when both apply, the higher priority
// wins on ambiguity, and vague or very short text is general/low.
func Triage(description string) model.Suggestion {
	text := strings.ToLower(description)
	if len(strings.Fields(text)) < minTriageWords {
		return model.DefaultSuggestion
	}

	s := model.DefaultSuggestion
	switch {
	case containsAny(text, billingWords):
		s.Category = model.CategoryBilling
	case containsAny(text, accountWords):
		s.Category = model.CategoryAccount
	case containsAny(text, techWords):
		s.Category = model.CategoryTechnical
	}

	switch {
	case containsAny(text, criticalWords):
		s.Priority = model.PriorityCritical
	case containsAny(text, highWords):
		s.Priority = model.PriorityHigh
	case containsAny(text, mediumWords):
		s.Priority = model.PriorityMedium
	}
	return s
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
