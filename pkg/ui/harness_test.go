package ui_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"ticket_desk/pkg/debounce"
	"ticket_desk/pkg/model"
	"ticket_desk/pkg/query"
	"ticket_desk/pkg/ui"
)

var baseTime = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

// fakeBackend is an in-memory Backend that records every call.
type fakeBackend struct {
	mu sync.Mutex

	tickets []model.Ticket
	nextID  int

	listCalls     []query.Query
	createCalls   []model.Draft
	patchCalls    []model.TicketID
	classifyCalls []string
	statsCalls    int

	listErr     error
	patchErr    error
	classifyErr error
	suggestion  model.Suggestion
	stats       model.Stats

	// UpdateStatus blocks on patchGate and CreateTicket on createGate
	// when they are non-nil.
	patchGate  chan struct{}
	createGate chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		tickets: []model.Ticket{
			{ID: "1", Title: "Refund not received", Description: "I was charged twice for my plan.", Category: model.CategoryBilling, Priority: model.PriorityHigh, Status: model.StatusOpen, CreatedAt: baseTime},
			{ID: "2", Title: "App crashes on export", Description: "Exporting a report crashes the app.", Category: model.CategoryTechnical, Priority: model.PriorityMedium, Status: model.StatusOpen, CreatedAt: baseTime.Add(-time.Hour)},
		},
		nextID:     3,
		suggestion: model.Suggestion{Category: model.CategoryAccount, Priority: model.PriorityHigh},
	}
}

func (b *fakeBackend) ListTickets(ctx context.Context, q query.Query) ([]model.Ticket, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listCalls = append(b.listCalls, q)
	if b.listErr != nil {
		return nil, b.listErr
	}
	var out []model.Ticket
	for _, t := range b.tickets {
		if q.Category != "" && t.Category != q.Category {
			continue
		}
		if q.Priority != "" && t.Priority != q.Priority {
			continue
		}
		if q.Status != "" && t.Status != q.Status {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(t.Title+" "+t.Description), strings.ToLower(q.Search)) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (b *fakeBackend) CreateTicket(ctx context.Context, d model.Draft) (model.Ticket, error) {
	b.mu.Lock()
	gate := b.createGate
	b.createCalls = append(b.createCalls, d)
	b.mu.Unlock()
	if gate != nil {
		<-gate
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	t := model.Ticket{
		ID:          model.TicketID(fmt.Sprint(b.nextID)),
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		Priority:    d.Priority,
		Status:      d.Status,
		CreatedAt:   baseTime.Add(time.Minute),
	}
	b.nextID++
	b.tickets = append([]model.Ticket{t}, b.tickets...)
	return t, nil
}

func (b *fakeBackend) UpdateStatus(ctx context.Context, id model.TicketID, status model.Status) (model.Ticket, error) {
	b.mu.Lock()
	gate := b.patchGate
	b.patchCalls = append(b.patchCalls, id)
	b.mu.Unlock()
	if gate != nil {
		<-gate
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.patchErr != nil {
		return model.Ticket{}, b.patchErr
	}
	for i := range b.tickets {
		if b.tickets[i].ID == id {
			b.tickets[i].Status = status
			return b.tickets[i], nil
		}
	}
	return model.Ticket{}, errors.New("not found")
}

func (b *fakeBackend) Classify(ctx context.Context, description string) (model.Suggestion, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.classifyCalls = append(b.classifyCalls, description)
	if b.classifyErr != nil {
		return model.Suggestion{}, b.classifyErr
	}
	return b.suggestion, nil
}

func (b *fakeBackend) Stats(ctx context.Context) (model.Stats, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statsCalls++
	return b.stats, nil
}

func (b *fakeBackend) counts() (list, create, patch, classify int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listCalls), len(b.createCalls), len(b.patchCalls), len(b.classifyCalls)
}

func (b *fakeBackend) lastList() query.Query {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.listCalls) == 0 {
		return query.Query{}
	}
	return b.listCalls[len(b.listCalls)-1]
}

func (b *fakeBackend) set(f func(b *fakeBackend)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	f(b)
}

// harness drives a ui.Model without a terminal. Commands run on their
// own goroutines, as they would under tea.Program, and their messages
// are fed back through Update on the test goroutine.
type harness struct {
	t     *testing.T
	m     ui.Model
	msgs  chan tea.Msg
	clock *debounce.ManualClock
}

func newHarness(t *testing.T, opts ui.Options) *harness {
	t.Helper()
	clock := debounce.NewManualClock(baseTime)
	if opts.Clock == nil {
		opts.Clock = clock
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return baseTime.Add(2 * time.Hour) }
	}
	if opts.Debounce == 0 {
		opts.Debounce = 500 * time.Millisecond
	}
	h := &harness{t: t, m: ui.NewModel(opts), msgs: make(chan tea.Msg, 1024), clock: clock}
	h.run(h.m.Init())
	return h
}

func (h *harness) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	go func() { h.deliver(cmd()) }()
}

func (h *harness) deliver(msg tea.Msg) {
	switch msg := msg.(type) {
	case nil:
	case tea.BatchMsg:
		for _, c := range msg {
			h.run(c)
		}
	default:
		h.msgs <- msg
	}
}

func (h *harness) send(msg tea.Msg) {
	next, cmd := h.m.Update(msg)
	h.m = next.(ui.Model)
	h.run(cmd)
}

func (h *harness) press(keys ...string) {
	for _, k := range keys {
		h.send(keyMsg(k))
	}
}

func (h *harness) typeText(s string) {
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// until processes messages until cond holds.
func (h *harness) until(what string, cond func(ui.Model) bool) {
	h.t.Helper()
	deadline := time.After(3 * time.Second)
	for !cond(h.m) {
		select {
		case msg := <-h.msgs:
			h.send(msg)
		case <-deadline:
			h.t.Fatalf("timed out waiting for %s", what)
		}
	}
}

// settle processes messages for d.
func (h *harness) settle(d time.Duration) {
	stop := time.After(d)
	for {
		select {
		case msg := <-h.msgs:
			h.send(msg)
		case <-stop:
			return
		}
	}
}

func (h *harness) loaded() {
	h.t.Helper()
	h.until("initial load", func(m ui.Model) bool {
		return !m.Loading() && len(m.Tickets()) > 0
	})
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+a":
		return tea.KeyMsg{Type: tea.KeyCtrlA}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}
