package main

import "github.com/charmbracelet/lipgloss"

var (
	successColor = lipgloss.Color("#8BC34A")
	warningColor = lipgloss.Color("#FFC107")
	errorColor   = lipgloss.Color("#e53935")
	mutedColor   = lipgloss.Color("#6b7280")
	accentColor  = lipgloss.Color("#2196F3")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	successStyle = lipgloss.NewStyle().Foreground(successColor)
	warningStyle = lipgloss.NewStyle().Foreground(warningColor)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	labelStyle   = lipgloss.NewStyle().Bold(true)
)

// resultStyle colors an item or attempt verdict.
func resultStyle(result string) lipgloss.Style {
	switch result {
	case "sent", "success":
		return successStyle
	case "skipped", "skip_item":
		return warningStyle
	case "pool_exhausted", "failure":
		return errorStyle
	}
	return mutedStyle
}
