package tui

import (
	"fmt"
	"strings"

	"github.com/lexcodex/threadview/render"
	"github.com/lexcodex/threadview/transcript"
)

// RenderEntry converts one transcript entry into a styled feed block.
func RenderEntry(entry transcript.Entry, renderer *render.Renderer, width int) string {
	var b strings.Builder
	b.WriteString(renderEntryHeader(entry))
	b.WriteString("\n")

	body := renderer.Payload(transcript.DecodePayload(entry.Payload))
	if entry.Role == transcript.RoleSystem {
		body = systemStyle.Render(body)
	}
	b.WriteString(body)

	boxWidth := max(0, width-4)
	return entryBoxStyle.Width(boxWidth).Render(b.String())
}

func renderEntryHeader(entry transcript.Entry) string {
	icon := "💬"
	roleText := "Unknown"
	switch entry.Role {
	case transcript.RoleUser:
		icon = "👤"
		roleText = "You"
	case transcript.RoleAssistant:
		icon = "🤖"
		roleText = "Assistant"
	case transcript.RoleSystem:
		icon = "⚙️"
		roleText = "System"
	}
	stamp := ""
	if !entry.CreatedAt.IsZero() {
		stamp = entry.CreatedAt.Format("15:04:05")
	}
	return headerStyle.Render(strings.TrimSpace(fmt.Sprintf("%s [%s] %s", icon, stamp, roleText)))
}

func (m *Model) renderEntries() string {
	if len(m.entries) == 0 {
		return welcomeStyle.Render("Transcript is empty. Waiting for entries...")
	}
	rendered := make([]string, 0, len(m.entries))
	for _, entry := range m.entries {
		if cached, ok := m.cache[entry.Payload]; ok {
			rendered = append(rendered, cached)
			continue
		}
		out := RenderEntry(entry, m.renderer, m.width)
		m.cache[entry.Payload] = out
		rendered = append(rendered, out)
	}
	return strings.Join(rendered, "\n")
}
