package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary   = lipgloss.Color("39")
	colorSecondary = lipgloss.Color("86")
	colorWarning   = lipgloss.Color("220")
	colorDim       = lipgloss.Color("241")

	entryBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 2).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	systemStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	followStyle = lipgloss.NewStyle().
			Foreground(colorSecondary)

	runningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true).
			Align(lipgloss.Center)
)
