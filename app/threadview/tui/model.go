// Package tui is the Bubble Tea transcript viewer: a scrollable feed of
// rendered entries with an optional live feed subscription.
package tui

import (
	"context"
	"fmt"
	"log"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lexcodex/threadview/render"
	"github.com/lexcodex/threadview/server"
	"github.com/lexcodex/threadview/transcript"
)

// Options configures a viewer run.
type Options struct {
	SessionID string
	Entries   []transcript.Entry
	FeedAddr  string
	MaxDepth  int
	Logger    *log.Logger
}

// Run opens the viewer and blocks until the user quits or the context ends.
func Run(ctx context.Context, opts Options) error {
	model, err := NewModel(ctx, opts)
	if err != nil {
		return err
	}
	defer model.closeFeed()
	program := tea.NewProgram(
		model,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err = program.Run()
	return err
}

// Model holds the feed viewport, renderer, and live subscription state.
type Model struct {
	opts    Options
	entries []transcript.Entry

	feed     *viewport.Model
	spinner  spinner.Model
	renderer *render.Renderer

	client *server.FeedClient

	statusBar StatusBar

	// Rendered entries keyed on payload, recomputed when the payload or
	// the terminal width changes.
	cache      map[string]string
	cacheWidth int

	width  int
	height int
	ready  bool

	following  bool
	autoFollow bool
}

// NewModel builds the viewer model and, when a feed address is set, dials
// the live subscription.
func NewModel(ctx context.Context, opts Options) (*Model, error) {
	v := viewport.New(0, 0)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := &Model{
		opts:       opts,
		entries:    append([]transcript.Entry(nil), opts.Entries...),
		feed:       &v,
		spinner:    sp,
		cache:      map[string]string{},
		autoFollow: true,
		statusBar: StatusBar{
			session: opts.SessionID,
			entries: len(opts.Entries),
		},
	}

	if opts.FeedAddr != "" {
		client, err := server.DialFeed(ctx, opts.FeedAddr, opts.SessionID)
		if err != nil {
			return nil, fmt.Errorf("dial feed %s: %w", opts.FeedAddr, err)
		}
		m.client = client
		m.following = true
		m.statusBar.live = true
	}
	return m, nil
}

func (m *Model) closeFeed() {
	if m.client != nil {
		m.client.Close()
		m.client = nil
	}
}

// Init starts the spinner and, when live, the feed listener.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.client != nil {
		cmds = append(cmds, listenFeed(m.client))
	}
	return tea.Batch(cmds...)
}

// Update routes Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "f":
			m.autoFollow = !m.autoFollow
			return m, nil
		case "g":
			m.feed.GotoTop()
			return m, nil
		case "G":
			m.feed.GotoBottom()
			return m, nil
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case feedUpdateMsg:
		m.applyUpdate(msg.update)
		m.refreshFeed()
		return m, listenFeed(m.client)

	case feedClosedMsg:
		m.following = false
		m.statusBar.live = false
		return m, nil
	}

	if m.feed != nil {
		updated, cmd := m.feed.Update(msg)
		m.feed = &updated
		return m, cmd
	}
	return m, nil
}

func (m *Model) resize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	feedHeight := max(1, msg.Height-1)
	if !m.ready {
		v := viewport.New(msg.Width, feedHeight)
		m.feed = &v
		m.ready = true
	} else {
		m.feed.Width = msg.Width
		m.feed.Height = feedHeight
	}

	renderWidth := max(20, msg.Width-6)
	if m.renderer == nil || m.cacheWidth != renderWidth {
		opts := []render.Option{}
		if m.opts.Logger != nil {
			opts = append(opts, render.WithLogger(m.opts.Logger))
		}
		if m.opts.MaxDepth > 0 {
			opts = append(opts, render.WithMaxDepth(m.opts.MaxDepth))
		}
		renderer, err := render.New(renderWidth, opts...)
		if err == nil {
			m.renderer = renderer
			m.cache = map[string]string{}
			m.cacheWidth = renderWidth
		}
	}
	m.refreshFeed()
	return m, nil
}

// applyUpdate replaces the entry with the same id, or appends a new one.
// Producers re-send whole payloads as tool statuses change.
func (m *Model) applyUpdate(update server.UpdateParams) {
	for i := range m.entries {
		if m.entries[i].ID == update.Entry.ID {
			delete(m.cache, m.entries[i].Payload)
			m.entries[i] = update.Entry
			m.statusBar.entries = len(m.entries)
			return
		}
	}
	m.entries = append(m.entries, update.Entry)
	m.statusBar.entries = len(m.entries)
}

// runningRecords counts tool executions still pending or running across the
// visible entries.
func (m *Model) runningRecords() int {
	count := 0
	for _, entry := range m.entries {
		_, records, _ := transcript.Extract(entry.Payload)
		for _, rec := range records {
			if rec.Status == transcript.StatusPending || rec.Status == transcript.StatusRunning {
				count++
			}
		}
	}
	return count
}

func (m *Model) refreshFeed() {
	if !m.ready || m.feed == nil || m.renderer == nil {
		return
	}
	m.statusBar.running = m.runningRecords()
	m.feed.SetContent(m.renderEntries())
	if m.autoFollow {
		m.feed.GotoBottom()
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
