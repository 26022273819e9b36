package ui

import (
	"time"

	"ticket_desk/pkg/collection"
	"ticket_desk/pkg/model"
	"ticket_desk/pkg/query"
)

// DataSnapshot is an immutable rendering of the ticket collection plus
// per-ticket patch state. The list and board are rebuilt from it
// whenever the synchronizer's state changes; nothing in it is edited in
// place.
type DataSnapshot struct {
	Tickets  []model.Ticket
	ByID     map[model.TicketID]int
	Items    []TicketItem
	ByStatus map[model.Status]int

	Query   query.Query
	Loading bool
	Err     error
	Loaded  bool

	CreatedAt time.Time
}

// BuildSnapshot captures the synchronizer's current state.
func BuildSnapshot(s *collection.Synchronizer, now time.Time) *DataSnapshot {
	v := s.View()
	snap := &DataSnapshot{
		Tickets:   v.Tickets,
		ByID:      make(map[model.TicketID]int, len(v.Tickets)),
		Items:     make([]TicketItem, len(v.Tickets)),
		ByStatus:  make(map[model.Status]int, len(model.Statuses)),
		Query:     v.Query,
		Loading:   v.Loading,
		Err:       v.Err,
		Loaded:    v.Loaded,
		CreatedAt: now,
	}
	for i, t := range v.Tickets {
		snap.ByID[t.ID] = i
		snap.ByStatus[t.Status]++

		it := TicketItem{Ticket: t}
		if st, ok := s.Patching(t.ID); ok {
			it.Pending = true
			it.PendingStatus = st
		}
		if err := s.PatchErr(t.ID); err != nil {
			it.PatchErr = err.Error()
		}
		snap.Items[i] = it
	}
	return snap
}

// IsEmpty returns true if the snapshot has no tickets.
func (s *DataSnapshot) IsEmpty() bool {
	return s == nil || len(s.Tickets) == 0
}

// GetTicket returns a ticket by id, or nil if not found.
func (s *DataSnapshot) GetTicket(id model.TicketID) *model.Ticket {
	if s == nil {
		return nil
	}
	i, ok := s.ByID[id]
	if !ok {
		return nil
	}
	return &s.Tickets[i]
}

// Item returns the list item for id.
func (s *DataSnapshot) Item(id model.TicketID) (TicketItem, bool) {
	if s == nil {
		return TicketItem{}, false
	}
	i, ok := s.ByID[id]
	if !ok {
		return TicketItem{}, false
	}
	return s.Items[i], true
}
