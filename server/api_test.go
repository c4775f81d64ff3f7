package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lexcodex/threadview/persistence"
	"github.com/lexcodex/threadview/transcript"
)

func newTestServer(t *testing.T) (*APIServer, *httptest.Server) {
	t.Helper()
	store, err := persistence.NewFileTranscriptStore(t.TempDir())
	require.NoError(t, err)
	api := &APIServer{Store: store}
	ts := httptest.NewServer(api.Handler())
	t.Cleanup(ts.Close)
	return api, ts
}

func postEntry(t *testing.T, ts *httptest.Server, session string, entry transcript.Entry) *http.Response {
	t.Helper()
	body, err := json.Marshal(AppendRequest{SessionID: session, Entry: entry})
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+"/api/entries", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestAppendAndFetchTranscript(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postEntry(t, ts, "s1", transcript.Entry{
		ID:      "e1",
		Role:    transcript.RoleAssistant,
		Payload: `hi <view>{"name":"Search","status":"running"}</view>`,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ack AppendResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ack))
	require.Equal(t, "e1", ack.EntryID)

	got, err := http.Get(ts.URL + "/api/transcript?session=s1")
	require.NoError(t, err)
	defer got.Body.Close()
	require.Equal(t, http.StatusOK, got.StatusCode)

	var tr TranscriptResponse
	require.NoError(t, json.NewDecoder(got.Body).Decode(&tr))
	require.Equal(t, "s1", tr.SessionID)
	require.Len(t, tr.Entries, 1)
	require.Equal(t, "e1", tr.Entries[0].ID)
	require.False(t, tr.Entries[0].CreatedAt.IsZero())
}

func TestAppendValidation(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postEntry(t, ts, "", transcript.Entry{ID: "e1"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postEntry(t, ts, "s1", transcript.Entry{})
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTranscriptRequiresSession(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/transcript")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMethodGuards(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/entries")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
