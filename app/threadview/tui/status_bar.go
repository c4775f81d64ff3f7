package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// StatusBar summarizes the session under the feed.
type StatusBar struct {
	session string
	entries int
	running int
	live    bool
}

func (s StatusBar) View(width int, spinnerFrame string) string {
	left := fmt.Sprintf("🧵 %s | %d entries", s.session, s.entries)
	if s.live {
		left += " | " + followStyle.Render("live")
	}

	right := "idle"
	if s.running > 0 {
		right = runningStyle.Render(fmt.Sprintf("%s %d tool(s) running", spinnerFrame, s.running))
	}
	right += dimStyle.Render("  q quit | f follow | g/G jump")

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}
	return statusStyle.Render(left + strings.Repeat(" ", padding) + right)
}
