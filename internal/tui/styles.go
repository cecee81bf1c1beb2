package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	primary = lipgloss.Color("63")  // Purple/blue
	success = lipgloss.Color("78")  // Green
	errcol  = lipgloss.Color("196") // Red
	subtle  = lipgloss.Color("241") // Gray
	textDim = lipgloss.Color("245") // Dimmer text

	titleStyle = lipgloss.NewStyle().
			Foreground(primary).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(textDim)

	connectedStyle = lipgloss.NewStyle().
			Foreground(success).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errcol)

	outputStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(subtle).
			Padding(0, 1)
)
