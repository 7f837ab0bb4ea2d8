package ui

import "github.com/charmbracelet/lipgloss"

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3E8EED")).
			MarginTop(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			MarginBottom(1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CFCFCF"))

	FocusedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3E8EED")).
			Bold(true)

	BlurredStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E0E0E0"))

	StageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7FB3F5"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF4757")).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#2ED573")).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			MarginTop(1)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3E8EED")).
			Padding(1, 2)

	ErrorBoxStyle = BoxStyle.
			BorderForeground(lipgloss.Color("#FF4757"))
)
