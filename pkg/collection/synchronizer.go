// Package collection owns the in-memory ticket collection. The ticket
// store is the source of truth: every refresh replaces the collection
// wholesale, and mutations never patch it locally; they trigger a
// refetch instead.
package collection

import (
	"context"

	"go.uber.org/zap"

	"ticket_desk/pkg/model"
	"ticket_desk/pkg/query"
)

// Outcome reports what Apply did with a list response.
type Outcome int

const (
	// Replaced means the collection now holds the response.
	Replaced Outcome = iota
	// Failed means the request failed; the previous collection is kept.
	Failed
	// Discarded means a newer refresh had been issued; the response was
	// ignored.
	Discarded
)

func (o Outcome) String() string {
	switch o {
	case Replaced:
		return "replaced"
	case Failed:
		return "failed"
	default:
		return "discarded"
	}
}

// Request is one list call to issue, stamped with its generation.
type Request struct {
	Gen   uint64
	Query query.Query
}

// Lister performs a list call. *gateway.Client satisfies it.
type Lister interface {
	ListTickets(ctx context.Context, q query.Query) ([]model.Ticket, error)
}

// Result carries a finished list call back to Apply.
type Result struct {
	Gen     uint64
	Tickets []model.Ticket
	Err     error
}

// Run issues the request against l.
func (r Request) Run(ctx context.Context, l Lister) Result {
	tickets, err := l.ListTickets(ctx, r.Query)
	return Result{Gen: r.Gen, Tickets: tickets, Err: err}
}

// View is the read-only state handed to renderers.
type View struct {
	Tickets []model.Ticket
	Loading bool
	Err     error
	Query   query.Query
	Loaded  bool // at least one refresh has succeeded
}

// Synchronizer is the single owner of the ticket collection and of the
// refresh generation counter. It is not safe for concurrent use; drive
// it from the UI goroutine.
type Synchronizer struct {
	logger *zap.Logger

	gen      uint64
	inflight bool
	active   query.Query
	tickets  []model.Ticket
	index    map[model.TicketID]int
	err      error
	loaded   bool

	patching map[model.TicketID]model.Status
	patchErr map[model.TicketID]error
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithLogger sets the logger for discarded responses and patch failures.
func WithLogger(l *zap.Logger) Option {
	return func(s *Synchronizer) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns an empty synchronizer whose active query is q.
func New(q query.Query, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		logger:   zap.NewNop(),
		active:   q.Canonical(),
		index:    map[model.TicketID]int{},
		patching: map[model.TicketID]model.Status{},
		patchErr: map[model.TicketID]error{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh makes q the active query and returns the list request to
// issue. When an identical query is already in flight the call is
// coalesced and ok is false.
func (s *Synchronizer) Refresh(q query.Query) (req Request, ok bool) {
	q = q.Canonical()
	if s.inflight && q == s.active {
		return Request{}, false
	}
	return s.issue(q), true
}

// NotifyMutated re-issues the active query after a create or status
// change. It never coalesces: the in-flight response may predate the
// mutation.
func (s *Synchronizer) NotifyMutated() Request {
	return s.issue(s.active)
}

func (s *Synchronizer) issue(q query.Query) Request {
	s.gen++
	s.active = q
	s.inflight = true
	return Request{Gen: s.gen, Query: q}
}

// Apply installs a finished list call. Only the latest generation is
// applied. On failure the previous collection stays visible and the
// error is recorded.
func (s *Synchronizer) Apply(res Result) Outcome {
	if res.Gen != s.gen {
		s.logger.Debug("discarding stale ticket list",
			zap.Uint64("gen", res.Gen),
			zap.Uint64("latest", s.gen),
		)
		return Discarded
	}
	s.inflight = false
	if res.Err != nil {
		s.err = res.Err
		s.logger.Warn("ticket list refresh failed",
			zap.Uint64("gen", res.Gen),
			zap.Stringer("query", s.active),
			zap.Error(res.Err),
		)
		return Failed
	}
	s.err = nil
	s.loaded = true
	s.replace(res.Tickets)
	return Replaced
}

// replace installs tickets in server order, dropping repeated ids so
// the collection stays a set.
func (s *Synchronizer) replace(tickets []model.Ticket) {
	out := make([]model.Ticket, 0, len(tickets))
	index := make(map[model.TicketID]int, len(tickets))
	for _, t := range tickets {
		if _, dup := index[t.ID]; dup {
			s.logger.Warn("duplicate ticket id in list response", zap.String("id", string(t.ID)))
			continue
		}
		index[t.ID] = len(out)
		out = append(out, t)
	}
	s.tickets = out
	s.index = index
}

// View returns the current state. The ticket slice must not be modified.
func (s *Synchronizer) View() View {
	return View{
		Tickets: s.tickets,
		Loading: s.inflight,
		Err:     s.err,
		Query:   s.active,
		Loaded:  s.loaded,
	}
}

// Tickets returns the collection in server order.
func (s *Synchronizer) Tickets() []model.Ticket { return s.tickets }

// Get looks a ticket up by id.
func (s *Synchronizer) Get(id model.TicketID) (model.Ticket, bool) {
	i, ok := s.index[id]
	if !ok {
		return model.Ticket{}, false
	}
	return s.tickets[i], true
}

// Loading reports whether a refresh is in flight.
func (s *Synchronizer) Loading() bool { return s.inflight }

// Err returns the last refresh failure, cleared by the next success.
func (s *Synchronizer) Err() error { return s.err }

// Active returns the query of the latest refresh.
func (s *Synchronizer) Active() query.Query { return s.active }

// Generation returns the latest issued refresh generation.
func (s *Synchronizer) Generation() uint64 { return s.gen }
