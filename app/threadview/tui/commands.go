package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lexcodex/threadview/server"
)

type feedUpdateMsg struct {
	update server.UpdateParams
}

type feedClosedMsg struct{}

// listenFeed waits for the next pushed entry revision.
func listenFeed(client *server.FeedClient) tea.Cmd {
	if client == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case update, ok := <-client.Updates:
			if !ok {
				return feedClosedMsg{}
			}
			return feedUpdateMsg{update: update}
		case <-client.Disconnected():
			return feedClosedMsg{}
		}
	}
}
