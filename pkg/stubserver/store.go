package stubserver

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"ticket_desk/pkg/model"
	"ticket_desk/pkg/query"
)

// ErrNotFound is returned for unknown ticket ids.
var ErrNotFound = errors.New("ticket not found")

// Store is an in-memory ticket table with integer ids.
type Store struct {
	mu      sync.RWMutex
	nextID  int64
	tickets map[int64]model.Ticket
	now     func() time.Time
}

// NewStore returns an empty store. now stamps created_at; nil means
// time.Now.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		tickets: make(map[int64]model.Ticket),
		now:     now,
	}
}

// Create assigns an id and creation time and stores t.
func (s *Store) Create(t model.Ticket) model.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	t.ID = model.TicketID(strconv.FormatInt(s.nextID, 10))
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now().UTC()
	}
	if t.Status == "" {
		t.Status = model.StatusOpen
	}
	s.tickets[s.nextID] = t
	return t
}

// Get returns the ticket with id.
func (s *Store) Get(id int64) (model.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tickets[id]
	if !ok {
		return model.Ticket{}, ErrNotFound
	}
	return t, nil
}

// UpdateStatus changes one ticket's status.
func (s *Store) UpdateStatus(id int64, status model.Status) (model.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[id]
	if !ok {
		return model.Ticket{}, ErrNotFound
	}
	t.Status = status
	s.tickets[id] = t
	return t, nil
}

// List returns the tickets matching q, newest first. Search is split on
// whitespace and every term must occur, case-insensitively, in the title
// or the description; facets match exactly.
func (s *Store) List(q query.Query) []model.Ticket {
	q = q.Canonical()
	terms := strings.Fields(strings.ToLower(q.Search))

	s.mu.RLock()
	out := make([]model.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		if q.Category != "" && t.Category != q.Category {
			continue
		}
		if q.Priority != "" && t.Priority != q.Priority {
			continue
		}
		if q.Status != "" && t.Status != q.Status {
			continue
		}
		if !matchesTerms(t, terms) {
			continue
		}
		out = append(out, t)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		a, _ := strconv.ParseInt(string(out[i].ID), 10, 64)
		b, _ := strconv.ParseInt(string(out[j].ID), 10, 64)
		return a > b
	})
	return out
}

func matchesTerms(t model.Ticket, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	title := strings.ToLower(t.Title)
	desc := strings.ToLower(t.Description)
	for _, term := range terms {
		if !strings.Contains(title, term) && !strings.Contains(desc, term) {
			return false
		}
	}
	return true
}

// Stats aggregates every ticket. Breakdowns list only values that occur,
// in enum order. The daily average divides by the number of distinct
// creation days.
func (s *Store) Stats() model.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st model.Stats
	byPriority := map[model.Priority]int{}
	byCategory := map[model.Category]int{}
	days := map[string]struct{}{}
	for _, t := range s.tickets {
		st.TotalTickets++
		if t.Status == model.StatusOpen {
			st.OpenTickets++
		}
		byPriority[t.Priority]++
		byCategory[t.Category]++
		days[t.CreatedAt.UTC().Format(time.DateOnly)] = struct{}{}
	}
	if len(days) > 0 {
		st.AvgTicketsPerDay = float64(st.TotalTickets) / float64(len(days))
	}
	st.PriorityBreakdown = model.Breakdown{}
	for _, p := range model.Priorities {
		if n := byPriority[p]; n > 0 {
			st.PriorityBreakdown = append(st.PriorityBreakdown, model.Count{Name: string(p), Value: n})
		}
	}
	st.CategoryBreakdown = model.Breakdown{}
	for _, c := range model.Categories {
		if n := byCategory[c]; n > 0 {
			st.CategoryBreakdown = append(st.CategoryBreakdown, model.Count{Name: string(c), Value: n})
		}
	}
	return st
}

// Len returns the number of stored tickets.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tickets)
}

// Seed fills s with a handful of sample tickets spread over recent days.
func Seed(s *Store) {
	now := s.now().UTC()
	samples := []model.Ticket{
		{Title: "Charged twice for March", Description: "My card was charged twice for the **March** subscription. Please refund one charge.", Category: model.CategoryBilling, Priority: model.PriorityHigh, Status: model.StatusOpen},
		{Title: "Cannot log in", Description: "Password reset email never arrives. Been stuck for 2 days.", Category: model.CategoryAccount, Priority: model.PriorityHigh, Status: model.StatusInProgress},
		{Title: "API returns 500", Description: "`POST /v1/orders` fails with a 500 error since this morning's deploy.", Category: model.CategoryTechnical, Priority: model.PriorityCritical, Status: model.StatusOpen},
		{Title: "Dark mode request", Description: "Would love a dark theme for the dashboard.", Category: model.CategoryGeneral, Priority: model.PriorityLow, Status: model.StatusClosed},
		{Title: "Export is slow", Description: "CSV export takes several minutes for large projects; a workaround is filtering first.", Category: model.CategoryTechnical, Priority: model.PriorityMedium, Status: model.StatusResolved},
	}
	for i, t := range samples {
		t.CreatedAt = now.AddDate(0, 0, -(len(samples)-1-i))
		s.Create(t)
	}
}
