// Package query composes the ticket list's search text and facet
// selections into a canonical query, and decides when a change to them
// warrants a refetch.
package query

import (
	"net/url"
	"strings"

	"ticket_desk/pkg/model"
)

// Query is the canonical form of the active list filters. The zero value
// matches every ticket. Query is comparable; two equal queries never
// warrant separate fetches.
type Query struct {
	Search   string
	Category model.Category
	Priority model.Priority
	Status   model.Status
}

// Compose builds the canonical query from raw UI selections. Search text
// is trimmed and inner whitespace collapsed; unknown facet values are
// treated as unconstrained.
func Compose(search string, category model.Category, priority model.Priority, status model.Status) Query {
	q := Query{Search: strings.Join(strings.Fields(search), " ")}
	if category.IsValid() {
		q.Category = category
	}
	if priority.IsValid() {
		q.Priority = priority
	}
	if status.IsValid() {
		q.Status = status
	}
	return q
}

// Canonical re-composes q, so hand-built queries compare correctly.
func (q Query) Canonical() Query {
	return Compose(q.Search, q.Category, q.Priority, q.Status)
}

// Equal reports whether q and other select the same tickets.
func (q Query) Equal(other Query) bool {
	return q.Canonical() == other.Canonical()
}

// IsZero reports whether q is unconstrained.
func (q Query) IsZero() bool {
	return q.Canonical() == Query{}
}

// Values encodes q as URL query parameters. Empty fields are omitted.
func (q Query) Values() url.Values {
	q = q.Canonical()
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Category != "" {
		v.Set("category", string(q.Category))
	}
	if q.Priority != "" {
		v.Set("priority", string(q.Priority))
	}
	if q.Status != "" {
		v.Set("status", string(q.Status))
	}
	return v
}

// String renders q for status lines and logs.
func (q Query) String() string {
	q = q.Canonical()
	var parts []string
	if q.Search != "" {
		parts = append(parts, "search:"+q.Search)
	}
	if q.Category != "" {
		parts = append(parts, "category:"+string(q.Category))
	}
	if q.Priority != "" {
		parts = append(parts, "priority:"+string(q.Priority))
	}
	if q.Status != "" {
		parts = append(parts, "status:"+string(q.Status))
	}
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, " ")
}
