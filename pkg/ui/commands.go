package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"ticket_desk/pkg/classify"
	"ticket_desk/pkg/collection"
	"ticket_desk/pkg/dashboard"
	"ticket_desk/pkg/debounce"
	"ticket_desk/pkg/model"
)

// Backend is the set of remote operations the UI needs.
// *gateway.Client satisfies it.
type Backend interface {
	collection.Lister
	collection.Patcher
	classify.Service
	dashboard.Fetcher
	CreateTicket(ctx context.Context, d model.Draft) (model.Ticket, error)
}

// TicketsLoadedMsg carries a finished list call.
type TicketsLoadedMsg struct{ Result collection.Result }

// StatsLoadedMsg carries a finished stats call.
type StatsLoadedMsg struct{ Result dashboard.Result }

// ClassifyTimerMsg is sent when the debounce window for edit Seq elapses.
type ClassifyTimerMsg struct{ Seq uint64 }

// ClassifiedMsg carries a finished classification call.
type ClassifiedMsg struct{ Result classify.Result }

// TicketCreatedMsg carries the outcome of a submit.
type TicketCreatedMsg struct {
	Ticket model.Ticket
	Err    error
}

// StatusPatchedMsg carries the outcome of a status change.
type StatusPatchedMsg struct{ Result collection.PatchResult }

// MutationCompletedMsg is emitted after any successful create or status
// change.
type MutationCompletedMsg struct{}

// ClipboardMsg reports a copy to the system clipboard.
type ClipboardMsg struct {
	ID  model.TicketID
	Err error
}

func fetchTicketsCmd(ctx context.Context, b Backend, req collection.Request) tea.Cmd {
	return func() tea.Msg {
		return TicketsLoadedMsg{Result: req.Run(ctx, b)}
	}
}

func fetchStatsCmd(ctx context.Context, b Backend, req dashboard.Request) tea.Cmd {
	return func() tea.Msg {
		return StatsLoadedMsg{Result: req.Run(ctx, b)}
	}
}

func classifyCmd(ctx context.Context, b Backend, req classify.Request) tea.Cmd {
	return func() tea.Msg {
		return ClassifiedMsg{Result: req.Run(ctx, b)}
	}
}

func createTicketCmd(ctx context.Context, b Backend, d model.Draft) tea.Cmd {
	return func() tea.Msg {
		t, err := b.CreateTicket(ctx, d)
		return TicketCreatedMsg{Ticket: t, Err: err}
	}
}

func patchStatusCmd(ctx context.Context, b Backend, req collection.PatchRequest) tea.Cmd {
	return func() tea.Msg {
		return StatusPatchedMsg{Result: req.Run(ctx, b)}
	}
}

func mutationCompletedCmd() tea.Msg { return MutationCompletedMsg{} }

func copyCmd(copyFn func(string) error, id model.TicketID) tea.Cmd {
	return func() tea.Msg {
		return ClipboardMsg{ID: id, Err: copyFn(string(id))}
	}
}

// waitForDebounce blocks until the debouncer fires. Exactly one of these
// is outstanding at a time; the handler for ClassifyTimerMsg re-arms it.
func waitForDebounce(d *debounce.Debouncer) tea.Cmd {
	return func() tea.Msg {
		seq, ok := <-d.C()
		if !ok {
			return nil
		}
		return ClassifyTimerMsg{Seq: seq}
	}
}
