package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Palette.
var (
	colorPrimary = lipgloss.Color("#7C3AED") // Purple
	colorMuted   = lipgloss.Color("#6C7086") // Medium gray
	colorSuccess = lipgloss.Color("#A6E3A1") // Green
	colorWarning = lipgloss.Color("#F9E2AF") // Yellow
	colorError   = lipgloss.Color("#F38BA8") // Red
	colorBorder  = lipgloss.Color("#45475A") // Border gray
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorError)
	boxStyle     = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)
)

// numbers formats counts with thousands separators.
var numbers = message.NewPrinter(language.English)

func formatCount(n int64) string {
	return numbers.Sprintf("%d", n)
}

// progressStyle colours a percentage: done, started or untouched.
func progressStyle(pct int) lipgloss.Style {
	switch {
	case pct >= 100:
		return successStyle
	case pct > 0:
		return warningStyle
	default:
		return mutedStyle
	}
}

// formatProgress renders "processed/total (pct%)".
func formatProgress(processed, total, pct int) string {
	return progressStyle(pct).Render(fmt.Sprintf("%d/%d (%d%%)", processed, total, pct))
}
