package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Gradients
	GradientLow  = lipgloss.Color("#44475A")
	GradientMid  = lipgloss.Color("#6272A4")
	GradientHigh = lipgloss.Color("#BD93F9")
	GradientPeak = lipgloss.Color("#FF79C6")
)

// RenderBar draws val (0.0 - 1.0) as a horizontal bar of width cells,
// using eighth blocks for the partial cell.
func RenderBar(val float64, width int) string {
	if width <= 0 {
		return ""
	}
	chars := []string{" ", "▏", "▎", "▍", "▌", "▋", "▊", "▉"}

	if val < 0 {
		val = 0
	}
	if val > 1 {
		val = 1
	}

	cells := val * float64(width)
	fullChars := int(cells)
	remainder := cells - float64(fullChars)

	var sb strings.Builder
	sb.WriteString(strings.Repeat("█", fullChars))

	if fullChars < width {
		idx := int(remainder * float64(len(chars)))
		if idx >= len(chars) {
			idx = len(chars) - 1
		}
		sb.WriteString(chars[idx])
		if pad := width - fullChars - 1; pad > 0 {
			sb.WriteString(strings.Repeat(" ", pad))
		}
	}
	return sb.String()
}

// GetHeatmapColor returns a color based on score (0-1)
func GetHeatmapColor(score float64) lipgloss.Color {
	if score > 0.8 {
		return GradientPeak
	} else if score > 0.5 {
		return GradientHigh
	} else if score > 0.2 {
		return GradientMid
	}
	return GradientLow
}
