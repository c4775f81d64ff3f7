package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lexcodex/threadview/transcript"
)

func attachPair(t *testing.T, sessionID string) (*Feed, *FeedClient) {
	t.Helper()
	ctx := context.Background()

	feed := NewFeed(nil)
	serverSide, clientSide := net.Pipe()
	feed.Attach(ctx, serverSide)

	client, err := NewFeedClient(ctx, clientSide, sessionID)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return feed, client
}

func waitUpdate(t *testing.T, client *FeedClient) UpdateParams {
	t.Helper()
	select {
	case update := <-client.Updates:
		return update
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for feed update")
		return UpdateParams{}
	}
}

func TestFeedPublishReachesSubscriber(t *testing.T) {
	feed, client := attachPair(t, "s1")

	entry := transcript.Entry{ID: "e1", Role: transcript.RoleAssistant, Payload: "hello"}
	feed.Publish(context.Background(), "s1", entry)

	update := waitUpdate(t, client)
	require.Equal(t, "s1", update.SessionID)
	require.Equal(t, "e1", update.Entry.ID)
	require.Equal(t, "hello", update.Entry.Payload)
}

func TestFeedSessionFilter(t *testing.T) {
	feed, client := attachPair(t, "s1")

	feed.Publish(context.Background(), "other", transcript.Entry{ID: "skip"})
	feed.Publish(context.Background(), "s1", transcript.Entry{ID: "keep"})

	update := waitUpdate(t, client)
	require.Equal(t, "keep", update.Entry.ID)
}

func TestFeedWildcardSubscription(t *testing.T) {
	feed, client := attachPair(t, "")

	feed.Publish(context.Background(), "any-session", transcript.Entry{ID: "e1"})
	update := waitUpdate(t, client)
	require.Equal(t, "any-session", update.SessionID)
}

func TestFeedStatusResend(t *testing.T) {
	feed, client := attachPair(t, "s1")
	ctx := context.Background()

	running := transcript.Entry{ID: "e1", Payload: `<view>{"name":"Search","status":"running"}</view>`}
	done := transcript.Entry{ID: "e1", Payload: `<view>{"name":"Search","status":"completed","result":"ok"}</view>`}
	feed.Publish(ctx, "s1", running)
	feed.Publish(ctx, "s1", done)

	first := waitUpdate(t, client)
	second := waitUpdate(t, client)

	_, records, _ := transcript.Extract(first.Entry.Payload)
	require.Len(t, records, 1)
	require.Equal(t, transcript.StatusRunning, records[0].Status)

	_, records, _ = transcript.Extract(second.Entry.Payload)
	require.Len(t, records, 1)
	require.Equal(t, transcript.StatusCompleted, records[0].Status)
}
