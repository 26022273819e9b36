package ui

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"

	"ticket_desk/pkg/model"
)

// BoardModel represents the Kanban board view with one column per status
type BoardModel struct {
	columns     [4][]TicketItem
	focusedCol  int
	selectedRow [4]int // Store selection for each column
	theme       Theme
}

// Column indices for the Kanban board
const (
	ColOpen       = 0
	ColInProgress = 1
	ColResolved   = 2
	ColClosed     = 3
)

var boardStatuses = [4]model.Status{model.StatusOpen, model.StatusInProgress, model.StatusResolved, model.StatusClosed}

// sortByPriorityAndDate puts the most urgent tickets first, newest first
// within a priority.
func sortByPriorityAndDate(items []TicketItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Ticket, items[j].Ticket
		if ra, rb := priorityRank(a.Priority), priorityRank(b.Priority); ra != rb {
			return ra < rb
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

// NewBoardModel creates a new Kanban board from the given items
func NewBoardModel(items []TicketItem, theme Theme) BoardModel {
	b := BoardModel{theme: theme}
	b.SetItems(items)
	return b
}

// SetItems redistributes the board after the collection changes
func (b *BoardModel) SetItems(items []TicketItem) {
	var cols [4][]TicketItem
	for _, it := range items {
		for c, st := range boardStatuses {
			if it.Ticket.Status == st {
				cols[c] = append(cols[c], it)
				break
			}
		}
	}
	for i := range cols {
		sortByPriorityAndDate(cols[i])
	}
	b.columns = cols

	// Sanitize selection to prevent out-of-bounds
	for i := 0; i < 4; i++ {
		if b.selectedRow[i] >= len(b.columns[i]) {
			if len(b.columns[i]) > 0 {
				b.selectedRow[i] = len(b.columns[i]) - 1
			} else {
				b.selectedRow[i] = 0
			}
		}
	}
}

func (b *BoardModel) MoveDown() {
	count := len(b.columns[b.focusedCol])
	if count == 0 {
		return
	}
	if b.selectedRow[b.focusedCol] < count-1 {
		b.selectedRow[b.focusedCol]++
	}
}

func (b *BoardModel) MoveUp() {
	if b.selectedRow[b.focusedCol] > 0 {
		b.selectedRow[b.focusedCol]--
	}
}

func (b *BoardModel) MoveRight() {
	if b.focusedCol < 3 {
		b.focusedCol++
	}
}

func (b *BoardModel) MoveLeft() {
	if b.focusedCol > 0 {
		b.focusedCol--
	}
}

func (b *BoardModel) MoveToTop() {
	b.selectedRow[b.focusedCol] = 0
}

func (b *BoardModel) MoveToBottom() {
	count := len(b.columns[b.focusedCol])
	if count > 0 {
		b.selectedRow[b.focusedCol] = count - 1
	}
}

// FocusedColumn returns the index of the focused column.
func (b *BoardModel) FocusedColumn() int { return b.focusedCol }

// SelectedTicket returns the currently selected ticket, or nil if none
func (b *BoardModel) SelectedTicket() *model.Ticket {
	col := b.columns[b.focusedCol]
	row := b.selectedRow[b.focusedCol]
	if len(col) > 0 && row < len(col) {
		return &col[row].Ticket
	}
	return nil
}

// ColumnCount returns the number of tickets in a column
func (b *BoardModel) ColumnCount(col int) int {
	if col >= 0 && col < 4 {
		return len(b.columns[col])
	}
	return 0
}

// TotalCount returns the total number of tickets across all columns
func (b *BoardModel) TotalCount() int {
	total := 0
	for i := 0; i < 4; i++ {
		total += len(b.columns[i])
	}
	return total
}

// View renders the Kanban board
func (b BoardModel) View(width, height int) string {
	colWidth := (width - 8) / 4
	if colWidth < 20 {
		colWidth = 20
	}

	colHeight := height - 3
	if colHeight < 5 {
		colHeight = 5
	}

	t := b.theme

	var renderedCols []string
	for colIdx := 0; colIdx < 4; colIdx++ {
		isFocused := b.focusedCol == colIdx
		count := len(b.columns[colIdx])
		color := t.StatusColor(boardStatuses[colIdx])

		headerStyle := t.Renderer.NewStyle().
			Width(colWidth).
			Align(lipgloss.Center).
			Bold(true)
		if isFocused {
			headerStyle = headerStyle.
				Background(color).
				Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"})
		} else {
			headerStyle = headerStyle.
				Background(lipgloss.AdaptiveColor{Light: "#EEEEEE", Dark: "#333333"}).
				Foreground(color)
		}
		header := headerStyle.Render(fmt.Sprintf("%s (%d)", statusLabel(boardStatuses[colIdx]), count))

		// Each card takes three lines including its separator.
		visibleRows := (colHeight - 2) / 3
		if visibleRows < 1 {
			visibleRows = 1
		}

		sel := b.selectedRow[colIdx]
		if sel >= count && count > 0 {
			sel = count - 1
		}
		start := 0
		if sel >= visibleRows {
			start = sel - visibleRows + 1
		}
		end := start + visibleRows
		if end > count {
			end = count
		}

		var rows []string
		for rowIdx := start; rowIdx < end; rowIdx++ {
			it := b.columns[colIdx][rowIdx]

			rowStyle := t.Renderer.NewStyle().
				Width(colWidth).
				Padding(0, 1).
				Border(lipgloss.NormalBorder(), false, false, true, false).
				BorderForeground(t.Border)
			if isFocused && rowIdx == sel {
				rowStyle = rowStyle.
					Background(t.Highlight).
					BorderForeground(t.Primary)
			}

			icon, iconColor := GetCategoryIcon(it.Ticket.Category)
			marker := ""
			switch {
			case it.Pending:
				marker = " → " + string(it.PendingStatus)
			case it.PatchErr != "":
				marker = " ⚠"
			}
			line1 := fmt.Sprintf("%s %s %s%s",
				t.Renderer.NewStyle().Foreground(iconColor).Render(icon),
				t.Renderer.NewStyle().Bold(true).Foreground(t.Secondary).Render("#"+string(it.Ticket.ID)),
				GetPriorityIcon(it.Ticket.Priority),
				marker,
			)

			titleMaxWidth := colWidth - 4
			if titleMaxWidth < 10 {
				titleMaxWidth = 10
			}
			line2 := t.Base.Render(truncateRunesHelper(it.Ticket.Title, titleMaxWidth, "…"))

			rows = append(rows, rowStyle.Render(line1+"\n"+line2))
		}

		if count > visibleRows {
			scrollStyle := t.Renderer.NewStyle().
				Width(colWidth).
				Align(lipgloss.Center).
				Foreground(t.Secondary)
			rows = append(rows, scrollStyle.Render(fmt.Sprintf("↕ %d/%d", sel+1, count)))
		}

		content := lipgloss.JoinVertical(lipgloss.Left, rows...)

		colStyle := t.Renderer.NewStyle().
			Width(colWidth).
			Height(colHeight).
			Border(lipgloss.RoundedBorder())
		if isFocused {
			colStyle = colStyle.BorderForeground(t.Primary)
		} else {
			colStyle = colStyle.BorderForeground(t.Secondary)
		}

		renderedCols = append(renderedCols, lipgloss.JoinVertical(lipgloss.Center, header, colStyle.Render(content)))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, renderedCols...)
}
