package query

import "ticket_desk/pkg/model"

// Composer tracks the list filter selections. Facet changes take effect
// immediately; search text is held as a draft until SubmitSearch, so
// typing does not produce a request per keystroke.
//
// Every mutating method returns the resulting active query and whether
// it differs from the previous one. Callers refetch only when changed is
// true.
type Composer struct {
	draft  string
	active Query
}

// NewComposer returns a composer starting from q.
func NewComposer(q Query) *Composer {
	q = q.Canonical()
	return &Composer{draft: q.Search, active: q}
}

// Active returns the query currently in effect.
func (c *Composer) Active() Query { return c.active }

// Draft returns the search text as typed, which may not be submitted yet.
func (c *Composer) Draft() string { return c.draft }

// DraftPending reports whether the typed search differs from the active one.
func (c *Composer) DraftPending() bool {
	return Compose(c.draft, "", "", "").Search != c.active.Search
}

// SetSearchDraft records typed search text. It never changes the active query.
func (c *Composer) SetSearchDraft(text string) {
	c.draft = text
}

// SubmitSearch commits the draft search text.
func (c *Composer) SubmitSearch() (Query, bool) {
	next := c.active
	next.Search = c.draft
	return c.set(next)
}

// SetCategory constrains the category facet; "" clears it.
func (c *Composer) SetCategory(v model.Category) (Query, bool) {
	next := c.active
	next.Category = v
	return c.set(next)
}

// SetPriority constrains the priority facet; "" clears it.
func (c *Composer) SetPriority(v model.Priority) (Query, bool) {
	next := c.active
	next.Priority = v
	return c.set(next)
}

// SetStatus constrains the status facet; "" clears it.
func (c *Composer) SetStatus(v model.Status) (Query, bool) {
	next := c.active
	next.Status = v
	return c.set(next)
}

// CycleCategory advances the category facet through unconstrained and
// each category in turn.
func (c *Composer) CycleCategory() (Query, bool) {
	return c.SetCategory(cycle(model.Categories, c.active.Category))
}

// CyclePriority advances the priority facet.
func (c *Composer) CyclePriority() (Query, bool) {
	return c.SetPriority(cycle(model.Priorities, c.active.Priority))
}

// CycleStatus advances the status facet.
func (c *Composer) CycleStatus() (Query, bool) {
	return c.SetStatus(cycle(model.Statuses, c.active.Status))
}

// Apply replaces every selection at once, as when choosing a preset.
// The draft search follows the applied query.
func (c *Composer) Apply(q Query) (Query, bool) {
	c.draft = q.Search
	return c.set(q)
}

// Clear removes every constraint.
func (c *Composer) Clear() (Query, bool) {
	return c.Apply(Query{})
}

func (c *Composer) set(next Query) (Query, bool) {
	next = next.Canonical()
	if next == c.active {
		return c.active, false
	}
	c.active = next
	return c.active, true
}

// cycle returns the value after cur in "", values[0], ..., values[n-1].
func cycle[T comparable](values []T, cur T) T {
	var zero T
	if cur == zero {
		return values[0]
	}
	for i, v := range values {
		if v == cur {
			if i+1 < len(values) {
				return values[i+1]
			}
			return zero
		}
	}
	return zero
}
