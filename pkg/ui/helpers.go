package ui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"ticket_desk/pkg/model"
)

// previewRunes is how much of a description the list shows.
const previewRunes = 150

// FormatTimeRel returns a relative time string (e.g., "2h ago", "3d ago")
func FormatTimeRel(t, now time.Time) string {
	d := now.Sub(t)
	if d < time.Minute {
		return "just now"
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
	return fmt.Sprintf("%dd ago", int(d.Hours()/24))
}

// truncateRunesHelper cuts s to at most max runes, ending with suffix
// when anything was dropped.
func truncateRunesHelper(s string, max int, suffix string) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	keep := max - utf8.RuneCountInString(suffix)
	if keep < 0 {
		keep = 0
	}
	r := []rune(s)
	return string(r[:keep]) + suffix
}

// Preview flattens a description to one line and cuts it to the list
// preview length.
func Preview(desc string) string {
	flat := strings.Join(strings.Fields(desc), " ")
	if utf8.RuneCountInString(flat) <= previewRunes {
		return flat
	}
	return string([]rune(flat)[:previewRunes]) + "..."
}

func GetStatusIcon(s model.Status) string {
	switch s {
	case model.StatusOpen:
		return "🟢"
	case model.StatusInProgress:
		return "🔵"
	case model.StatusResolved:
		return "🟡"
	case model.StatusClosed:
		return "⚫"
	default:
		return "⚪"
	}
}

// statusLabel is the column heading for s.
func statusLabel(s model.Status) string {
	return strings.ToUpper(strings.ReplaceAll(string(s), "_", " "))
}

// orAny renders an empty facet as "any".
func orAny(s string) string {
	if s == "" {
		return "any"
	}
	return s
}
