package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Colour palette for terminal output.
var (
	colourPrimary   = lipgloss.Color("#7C3AED") // Purple
	colourSecondary = lipgloss.Color("#06B6D4") // Cyan
	colourMuted     = lipgloss.Color("#6C7086") // Medium gray
	colourSuccess   = lipgloss.Color("#A6E3A1") // Green
	colourWarning   = lipgloss.Color("#F9E2AF") // Yellow
	colourError     = lipgloss.Color("#F38BA8") // Red
	colourBorder    = lipgloss.Color("#45475A") // Border gray
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colourPrimary)

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colourSecondary)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colourMuted)

	successStyle = lipgloss.NewStyle().
			Foreground(colourSuccess)

	warningStyle = lipgloss.NewStyle().
			Foreground(colourWarning)

	errorStyle = lipgloss.NewStyle().
			Foreground(colourError)

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colourBorder).
			Padding(0, 1)
)

// scoreStyle colours a 0-100 score.
func scoreStyle(score int) lipgloss.Style {
	switch {
	case score >= 70:
		return successStyle
	case score >= 40:
		return warningStyle
	default:
		return errorStyle
	}
}
