package ui

import (
	"github.com/charmbracelet/lipgloss"

	"ticket_desk/pkg/model"
)

var (
	// --- Palette ---
	ColorPrimary     = lipgloss.Color("#BD93F9") // Purple
	ColorSecondary   = lipgloss.Color("#6272A4") // Comment Blue/Gray
	ColorBg          = lipgloss.Color("#282A36") // Background
	ColorBgHighlight = lipgloss.Color("#44475A") // Selection
	ColorText        = lipgloss.Color("#F8F8F2") // Foreground
	ColorSubtext     = lipgloss.Color("#BFBFBF") // Dimmer text
	ColorError       = lipgloss.Color("#FF5555") // Red
	ColorWarn        = lipgloss.Color("#FFB86C") // Orange

	// Status Colors
	ColorStatusOpen       = lipgloss.Color("#50FA7B") // Green
	ColorStatusInProgress = lipgloss.Color("#8BE9FD") // Cyan
	ColorStatusResolved   = lipgloss.Color("#F1FA8C") // Yellow
	ColorStatusClosed     = lipgloss.Color("#6272A4") // Gray/Dim

	// Category Colors
	ColorCatBilling   = lipgloss.Color("#FFB86C")
	ColorCatTechnical = lipgloss.Color("#FF5555")
	ColorCatAccount   = lipgloss.Color("#8BE9FD")
	ColorCatGeneral   = lipgloss.Color("#F8F8F2")

	// --- Styles ---

	AppStyle = lipgloss.NewStyle().Padding(0, 0)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSecondary).
			Padding(0, 1)

	FocusedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary).
				Padding(0, 1)

	ItemStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			PaddingRight(1).
			Border(lipgloss.HiddenBorder(), false, false, false, true).
			BorderForeground(ColorBg)

	SelectedItemStyle = ItemStyle.
				Background(ColorBgHighlight).
				BorderForeground(ColorPrimary).
				Bold(true)

	// Column Styles
	ColIDStyle     = lipgloss.NewStyle().Width(6).Foreground(ColorSecondary).Bold(true)
	ColCatStyle    = lipgloss.NewStyle().Width(2).Align(lipgloss.Center)
	ColPrioStyle   = lipgloss.NewStyle().Width(3).Align(lipgloss.Center)
	ColStatusStyle = lipgloss.NewStyle().Width(13).Align(lipgloss.Center).Bold(true)
	ColTitleStyle  = lipgloss.NewStyle().Foreground(ColorText)
	ColAgeStyle    = lipgloss.NewStyle().Width(8).Foreground(ColorSecondary).Align(lipgloss.Right)
	ColDescStyle   = lipgloss.NewStyle().Foreground(ColorSubtext)

	DetailTitleStyle = lipgloss.NewStyle().
				Foreground(ColorPrimary).
				Background(ColorBgHighlight).
				Bold(true).
				Padding(0, 1).
				MarginBottom(1)

	DetailMetaStyle = lipgloss.NewStyle().
			Foreground(ColorSubtext).
			MarginBottom(1)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorBg).
			Background(ColorPrimary).
			Bold(true).
			Padding(0, 1)

	TabStyle       = lipgloss.NewStyle().Foreground(ColorSubtext).Padding(0, 1)
	ActiveTabStyle = lipgloss.NewStyle().Foreground(ColorBg).Background(ColorStatusInProgress).Bold(true).Padding(0, 1)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	WarnStyle  = lipgloss.NewStyle().Foreground(ColorWarn)
	LabelStyle = lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true)
)

// Theme carries the adaptive colors used by the board and analytics
// panels, bound to one lipgloss renderer.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor

	Open       lipgloss.AdaptiveColor
	InProgress lipgloss.AdaptiveColor
	Resolved   lipgloss.AdaptiveColor
	Closed     lipgloss.AdaptiveColor

	Base lipgloss.Style
}

// DefaultTheme returns the palette bound to r. A nil renderer means the
// default lipgloss renderer.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return Theme{
		Renderer:   r,
		Primary:    lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#BD93F9"},
		Secondary:  lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Border:     lipgloss.AdaptiveColor{Light: "#DDDDDD", Dark: "#44475A"},
		Highlight:  lipgloss.AdaptiveColor{Light: "#EEEEEE", Dark: "#44475A"},
		Open:       lipgloss.AdaptiveColor{Light: "#00A800", Dark: "#50FA7B"},
		InProgress: lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#8BE9FD"},
		Resolved:   lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#F1FA8C"},
		Closed:     lipgloss.AdaptiveColor{Light: "#888888", Dark: "#6272A4"},
		Base:       r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}),
	}
}

// StatusColor returns the column color for s.
func (t Theme) StatusColor(s model.Status) lipgloss.AdaptiveColor {
	switch s {
	case model.StatusOpen:
		return t.Open
	case model.StatusInProgress:
		return t.InProgress
	case model.StatusResolved:
		return t.Resolved
	default:
		return t.Closed
	}
}

func GetStatusColor(s model.Status) lipgloss.Color {
	switch s {
	case model.StatusOpen:
		return ColorStatusOpen
	case model.StatusInProgress:
		return ColorStatusInProgress
	case model.StatusResolved:
		return ColorStatusResolved
	case model.StatusClosed:
		return ColorStatusClosed
	default:
		return ColorText
	}
}

func GetCategoryIcon(c model.Category) (string, lipgloss.Color) {
	switch c {
	case model.CategoryBilling:
		return "💳", ColorCatBilling
	case model.CategoryTechnical:
		return "🛠", ColorCatTechnical
	case model.CategoryAccount:
		return "👤", ColorCatAccount
	case model.CategoryGeneral:
		return "💬", ColorCatGeneral
	default:
		return "•", ColorText
	}
}

func GetPriorityIcon(p model.Priority) string {
	switch p {
	case model.PriorityCritical:
		return "🔥"
	case model.PriorityHigh:
		return "⚡"
	case model.PriorityMedium:
		return "🔹"
	case model.PriorityLow:
		return "☕"
	default:
		return ""
	}
}

// priorityRank orders priorities from most to least urgent.
func priorityRank(p model.Priority) int {
	switch p {
	case model.PriorityCritical:
		return 0
	case model.PriorityHigh:
		return 1
	case model.PriorityMedium:
		return 2
	case model.PriorityLow:
		return 3
	default:
		return 4
	}
}
