package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ticket_desk/pkg/dashboard"
)

// AnalyticsModel renders the stats panel from the aggregator's state.
type AnalyticsModel struct {
	agg    *dashboard.Aggregator
	ready  bool
	width  int
	height int
}

func NewAnalyticsModel(agg *dashboard.Aggregator) AnalyticsModel {
	return AnalyticsModel{agg: agg}
}

func (a *AnalyticsModel) SetSize(w, h int) {
	a.width = w
	a.height = h
	a.ready = true
}

func (a AnalyticsModel) View(spinner string) string {
	if !a.ready {
		return ""
	}

	titleStyle := lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)

	switch a.agg.Phase() {
	case dashboard.Idle:
		return HelpStyle.Render("Stats not loaded yet.")
	case dashboard.Loading:
		return PanelStyle.Render(spinner + " Loading stats…")
	case dashboard.Failed:
		msg := "Failed to load stats"
		if err := a.agg.Err(); err != nil {
			msg += ": " + err.Error()
		}
		return PanelStyle.BorderForeground(ColorError).Render(
			ErrorStyle.Render("✗ "+msg) + "\n\n" + HelpStyle.Render("press r to retry"),
		)
	}

	sum := a.agg.Summary()

	colWidth := (a.width / 3) - 3
	if colWidth < 24 {
		colWidth = 24
	}
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorSecondary).
		Padding(0, 1).
		Width(colWidth)

	card := func(label, value string) string {
		return boxStyle.Render(titleStyle.Render(label) + "\n\n" + lipgloss.NewStyle().Bold(true).Render(value))
	}
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total Tickets", fmt.Sprintf("%d", sum.Total)),
		card("Open Tickets", fmt.Sprintf("%d", sum.Open)),
		card("Avg Tickets / Day", sum.AvgPerDay),
	)

	chartWidth := (a.width / 2) - 4
	if chartWidth < 30 {
		chartWidth = 30
	}
	chartBox := boxStyle.Width(chartWidth)
	charts := lipgloss.JoinHorizontal(lipgloss.Top,
		chartBox.Render(titleStyle.Render("Priority Breakdown")+"\n\n"+renderSeries(sum.Priorities, chartWidth-4)),
		chartBox.Render(titleStyle.Render("Category Breakdown")+"\n\n"+renderSeries(sum.Categories, chartWidth-4)),
	)

	return lipgloss.JoinVertical(lipgloss.Left, cards, charts)
}

// renderSeries draws one bar per point, in the order given, scaled to
// the largest value.
func renderSeries(s dashboard.Series, width int) string {
	if len(s.Points) == 0 {
		return HelpStyle.Render("No data")
	}
	labelWidth := 0
	for _, p := range s.Points {
		if n := len(p.Name); n > labelWidth {
			labelWidth = n
		}
	}
	barWidth := width - labelWidth - 8
	if barWidth < 5 {
		barWidth = 5
	}

	var sb strings.Builder
	for i, p := range s.Points {
		frac := 0.0
		if s.Max > 0 {
			frac = float64(p.Value) / float64(s.Max)
		}
		bar := lipgloss.NewStyle().Foreground(GetHeatmapColor(s.Share(i))).Render(RenderBar(frac, barWidth))
		fmt.Fprintf(&sb, "%-*s %s %d", labelWidth, p.Name, bar, p.Value)
		if i < len(s.Points)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
