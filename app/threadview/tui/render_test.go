package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lexcodex/threadview/render"
	"github.com/lexcodex/threadview/server"
	"github.com/lexcodex/threadview/transcript"
)

func testRenderer(t *testing.T) *render.Renderer {
	t.Helper()
	r, err := render.New(80)
	require.NoError(t, err)
	return r
}

func TestRenderEntryHeaderAndBody(t *testing.T) {
	entry := transcript.Entry{
		ID:        "e1",
		Role:      transcript.RoleAssistant,
		Payload:   `done <view>{"name":"Search","status":"completed","result":"Found it"}</view>`,
		CreatedAt: time.Date(2026, 8, 23, 9, 30, 0, 0, time.UTC),
	}
	out := RenderEntry(entry, testRenderer(t), 100)
	require.Contains(t, out, "Assistant")
	require.Contains(t, out, "09:30:00")
	require.Contains(t, out, "Search")
	require.Contains(t, out, "Found it")
}

func TestApplyUpdateReplacesByID(t *testing.T) {
	m := &Model{
		cache: map[string]string{},
		entries: []transcript.Entry{
			{ID: "e1", Payload: "old"},
			{ID: "e2", Payload: "other"},
		},
	}
	m.cache["old"] = "rendered-old"

	m.applyUpdate(server.UpdateParams{Entry: transcript.Entry{ID: "e1", Payload: "new"}})
	require.Len(t, m.entries, 2)
	require.Equal(t, "new", m.entries[0].Payload)
	require.NotContains(t, m.cache, "old")

	m.applyUpdate(server.UpdateParams{Entry: transcript.Entry{ID: "e3", Payload: "appended"}})
	require.Len(t, m.entries, 3)
	require.Equal(t, "e3", m.entries[2].ID)
}

func TestRunningRecordsCount(t *testing.T) {
	m := &Model{entries: []transcript.Entry{
		{ID: "e1", Payload: `<view>{"name":"a","status":"running"}</view>`},
		{ID: "e2", Payload: `<view>{"name":"b","status":"pending"}</view> <view>{"name":"c","status":"completed"}</view>`},
		{ID: "e3", Payload: "plain text"},
	}}
	require.Equal(t, 2, m.runningRecords())
}

func TestRenderEntriesUsesCache(t *testing.T) {
	m := &Model{
		cache:    map[string]string{},
		renderer: testRenderer(t),
		width:    100,
		entries:  []transcript.Entry{{ID: "e1", Role: transcript.RoleUser, Payload: "hello"}},
	}
	first := m.renderEntries()
	require.Contains(t, first, "hello")

	// Poison the cache entry: a second render must reuse it untouched.
	m.cache["hello"] = "cached"
	require.Equal(t, "cached", m.renderEntries())
}
