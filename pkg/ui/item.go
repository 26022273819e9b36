package ui

import (
	"fmt"
	"strings"

	"ticket_desk/pkg/model"
)

// TicketItem wraps model.Ticket to implement list.Item
type TicketItem struct {
	Ticket model.Ticket

	// Status change in flight for this ticket, if any.
	Pending       bool
	PendingStatus model.Status
	// Last failed status change, shown until the next attempt.
	PatchErr string
}

func (i TicketItem) Title() string {
	return i.Ticket.Title
}

func (i TicketItem) Description() string {
	return fmt.Sprintf("#%s %s • %s", i.Ticket.ID, i.Ticket.Status, Preview(i.Ticket.Description))
}

func (i TicketItem) FilterValue() string {
	var sb strings.Builder
	sb.WriteString(i.Ticket.Title)
	sb.WriteString(" ")
	sb.WriteString(string(i.Ticket.ID))
	sb.WriteString(" ")
	sb.WriteString(string(i.Ticket.Category))
	sb.WriteString(" ")
	sb.WriteString(string(i.Ticket.Priority))
	sb.WriteString(" ")
	sb.WriteString(string(i.Ticket.Status))
	return sb.String()
}
