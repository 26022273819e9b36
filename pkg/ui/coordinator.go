package ui

// ViewKind is a top-level screen.
type ViewKind int

const (
	ViewTickets ViewKind = iota
	ViewAnalytics
)

func (v ViewKind) String() string {
	if v == ViewAnalytics {
		return "analytics"
	}
	return "tickets"
}

// Coordinator routes between the top-level views and carries the
// mutation generation. Every successful create or status change bumps
// the generation; the tickets view refetches when it sees a generation
// it has not handled yet.
type Coordinator struct {
	view       ViewKind
	generation uint64
}

// Active returns the visible view.
func (c *Coordinator) Active() ViewKind { return c.view }

// Show switches to v and reports whether the view changed.
func (c *Coordinator) Show(v ViewKind) bool {
	if c.view == v {
		return false
	}
	c.view = v
	return true
}

// Toggle flips between the two views and returns the new one.
func (c *Coordinator) Toggle() ViewKind {
	next := ViewAnalytics
	if c.view == ViewAnalytics {
		next = ViewTickets
	}
	c.Show(next)
	return c.view
}

// MutationCompleted bumps the generation and returns it.
func (c *Coordinator) MutationCompleted() uint64 {
	c.generation++
	return c.generation
}

// Generation returns the number of mutations seen so far.
func (c *Coordinator) Generation() uint64 { return c.generation }
