package cli

import "github.com/charmbracelet/lipgloss"

var (
	markerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	staleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("203"))

	docStyle = lipgloss.NewStyle().
			Faint(true)

	fileStyle = lipgloss.NewStyle().
			Faint(true).
			Italic(true)

	taskStyle = lipgloss.NewStyle().
			Bold(true)
)
