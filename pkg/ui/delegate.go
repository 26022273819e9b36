package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Tier represents the width tier of the display
type Tier int

const (
	TierCompact Tier = iota
	TierNormal
	TierWide
)

// tierFor picks the tier for a terminal width.
func tierFor(width int) Tier {
	switch {
	case width >= 140:
		return TierWide
	case width >= 100:
		return TierNormal
	default:
		return TierCompact
	}
}

type TicketDelegate struct {
	Tier Tier
	Now  func() time.Time
}

func (d TicketDelegate) Height() int {
	return 1
}

func (d TicketDelegate) Spacing() int {
	return 0
}

func (d TicketDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

func (d TicketDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(TicketItem)
	if !ok {
		return
	}
	t := i.Ticket

	var baseStyle lipgloss.Style
	if index == m.Index() {
		baseStyle = SelectedItemStyle
	} else {
		baseStyle = ItemStyle
	}

	id := ColIDStyle.Render("#" + string(t.ID))

	iconStr, iconColor := GetCategoryIcon(t.Category)
	catIcon := ColCatStyle.Foreground(iconColor).Render(iconStr)

	prio := ColPrioStyle.Render(GetPriorityIcon(t.Priority))

	var status string
	switch {
	case i.Pending:
		status = ColStatusStyle.Foreground(ColorSubtext).Render("→ " + statusLabel(i.PendingStatus))
	case i.PatchErr != "":
		status = ColStatusStyle.Foreground(ColorError).Render("⚠ " + statusLabel(t.Status))
	default:
		status = ColStatusStyle.Foreground(GetStatusColor(t.Status)).Render(statusLabel(t.Status))
	}

	extraWidth := 0
	age := ""
	if d.Tier >= TierNormal {
		now := time.Now
		if d.Now != nil {
			now = d.Now
		}
		age = ColAgeStyle.Render(FormatTimeRel(t.CreatedAt, now()))
		extraWidth += 8
	}

	// ID(6) + Cat(2) + Prio(3) + Status(13) + gaps
	fixedWidth := 6 + 2 + 3 + 13 + extraWidth + 4
	availableWidth := m.Width() - fixedWidth - 4
	if availableWidth < 10 {
		availableWidth = 10
	}

	titleWidth := availableWidth
	desc := ""
	if d.Tier >= TierWide {
		titleWidth = availableWidth / 2
		descWidth := availableWidth - titleWidth - 1
		desc = ColDescStyle.Width(descWidth).MaxWidth(descWidth).
			Render(truncateRunesHelper(Preview(t.Description), descWidth, "…"))
	}

	titleStyle := ColTitleStyle.Width(titleWidth).MaxWidth(titleWidth)
	if index == m.Index() {
		titleStyle = titleStyle.Foreground(ColorPrimary).Bold(true)
	}
	title := titleStyle.Render(truncateRunesHelper(t.Title, titleWidth, "…"))

	parts := []string{id, catIcon, prio, status, " ", title}
	if desc != "" {
		parts = append(parts, " ", desc)
	}
	if age != "" {
		parts = append(parts, age)
	}

	row := lipgloss.JoinHorizontal(lipgloss.Left, parts...)
	fmt.Fprint(w, baseStyle.Render(strings.TrimRight(row, " ")))
}
