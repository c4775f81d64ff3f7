package tui

import "github.com/charmbracelet/lipgloss"

// View composes the scrollable feed and the status bar.
func (m *Model) View() string {
	if !m.ready || m.feed == nil {
		return "Initializing..."
	}

	status := m.statusBar.View(m.width, m.spinnerFrame())
	return lipgloss.JoinVertical(lipgloss.Left, m.feed.View(), status)
}

func (m *Model) spinnerFrame() string {
	if m.statusBar.running == 0 {
		return ""
	}
	return m.spinner.View()
}
