package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// MaxTitleLength bounds Ticket.Title, counted in characters.
const MaxTitleLength = 200

// Ticket represents a support ticket as returned by the ticket store
type Ticket struct {
	ID          TicketID  `json:"id" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description" validate:"required"`
	Category    Category  `json:"category" validate:"required,category"`
	Priority    Priority  `json:"priority" validate:"required,priority"`
	Status      Status    `json:"status" validate:"required,status"`
	CreatedAt   time.Time `json:"created_at" validate:"required"`
}

// TicketID is the opaque, server-assigned ticket identifier. The store
// may encode it as a JSON number or a string; both decode to the same
// textual form.
type TicketID string

// UnmarshalJSON accepts both numeric and string ids.
func (id *TicketID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = TicketID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("ticket id: %w", err)
	}
	*id = TicketID(n.String())
	return nil
}

// MarshalJSON writes integer-looking ids as numbers so they round-trip
// against a store that uses integer primary keys.
func (id TicketID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id TicketID) String() string { return string(id) }

// Category routes a ticket to a team
type Category string

const (
	CategoryBilling   Category = "billing"
	CategoryTechnical Category = "technical"
	CategoryAccount   Category = "account"
	CategoryGeneral   Category = "general"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryBilling, CategoryTechnical, CategoryAccount, CategoryGeneral}

func (c Category) IsValid() bool {
	switch c {
	case CategoryBilling, CategoryTechnical, CategoryAccount, CategoryGeneral:
		return true
	}
	return false
}

// Priority expresses urgency
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Priorities lists every priority from least to most urgent.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Status represents the current state of a ticket. Any status may be set
// from any other; there is no enforced transition graph.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{StatusOpen, StatusInProgress, StatusResolved, StatusClosed}

func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// Next returns the status after s in workflow order, wrapping around.
func (s Status) Next() Status {
	for i, st := range Statuses {
		if st == s {
			return Statuses[(i+1)%len(Statuses)]
		}
	}
	return StatusOpen
}

// Prev returns the status before s in workflow order, wrapping around.
func (s Status) Prev() Status {
	for i, st := range Statuses {
		if st == s {
			return Statuses[(i+len(Statuses)-1)%len(Statuses)]
		}
	}
	return StatusOpen
}

// Suggestion is an advisory classification for one description snapshot.
type Suggestion struct {
	Category Category `json:"suggested_category" validate:"required,category"`
	Priority Priority `json:"suggested_priority" validate:"required,priority"`
}

// DefaultSuggestion is shown when classification is unavailable.
var DefaultSuggestion = Suggestion{Category: CategoryGeneral, Priority: PriorityLow}

// Stats is the externally computed aggregate over all tickets.
type Stats struct {
	TotalTickets      int       `json:"total_tickets"`
	OpenTickets       int       `json:"open_tickets"`
	AvgTicketsPerDay  float64   `json:"avg_tickets_per_day"`
	PriorityBreakdown Breakdown `json:"priority_breakdown"`
	CategoryBreakdown Breakdown `json:"category_breakdown"`
}
