package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net"
	"sync"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/lexcodex/threadview/transcript"
)

// Feed wire methods. Producers re-send a whole entry payload whenever a
// tool status inside it changes; subscribers re-extract on every update.
const (
	MethodSubscribe = "transcript/subscribe"
	MethodUpdate    = "transcript/update"
)

// UpdateParams carries one pushed entry revision.
type UpdateParams struct {
	SessionID string           `json:"session_id"`
	Entry     transcript.Entry `json:"entry"`
}

// SubscribeParams names the session a client wants updates for. An empty
// session subscribes to everything.
type SubscribeParams struct {
	SessionID string `json:"session_id"`
}

// Feed pushes transcript updates to connected JSON-RPC subscribers.
type Feed struct {
	Logger *log.Logger

	mu    sync.Mutex
	conns map[*jsonrpc2.Conn]string
}

// NewFeed builds an empty feed hub.
func NewFeed(logger *log.Logger) *Feed {
	return &Feed{
		Logger: logger,
		conns:  make(map[*jsonrpc2.Conn]string),
	}
}

// Serve accepts TCP subscribers until the context is cancelled.
func (f *Feed) Serve(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		listener.Close()
	}()
	if f.Logger != nil {
		f.Logger.Printf("feed listening on %s", addr)
	}
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		f.Attach(ctx, conn)
	}
}

// Attach registers a subscriber on an arbitrary byte stream. The connection
// deregisters itself when it drops.
func (f *Feed) Attach(ctx context.Context, rwc io.ReadWriteCloser) *jsonrpc2.Conn {
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(f.handle))
	f.mu.Lock()
	f.conns[conn] = ""
	f.mu.Unlock()
	go func() {
		<-conn.DisconnectNotify()
		f.mu.Lock()
		delete(f.conns, conn)
		f.mu.Unlock()
	}()
	return conn
}

func (f *Feed) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	switch req.Method {
	case MethodSubscribe:
		var params SubscribeParams
		if req.Params != nil {
			if err := json.Unmarshal(*req.Params, &params); err != nil {
				return nil, err
			}
		}
		f.mu.Lock()
		f.conns[conn] = params.SessionID
		f.mu.Unlock()
		return map[string]bool{"subscribed": true}, nil
	default:
		if req.Notif {
			return nil, nil
		}
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "method not handled"}
	}
}

// Publish notifies every subscriber interested in the entry's session.
func (f *Feed) Publish(ctx context.Context, sessionID string, entry transcript.Entry) {
	params := UpdateParams{SessionID: sessionID, Entry: entry}
	f.mu.Lock()
	targets := make([]*jsonrpc2.Conn, 0, len(f.conns))
	for conn, filter := range f.conns {
		if filter == "" || filter == sessionID {
			targets = append(targets, conn)
		}
	}
	f.mu.Unlock()
	for _, conn := range targets {
		if err := conn.Notify(ctx, MethodUpdate, params); err != nil && f.Logger != nil {
			f.Logger.Printf("feed notify: %v", err)
		}
	}
}

// FeedClient subscribes to a Feed and surfaces updates on a channel.
type FeedClient struct {
	conn    *jsonrpc2.Conn
	Updates chan UpdateParams
}

// DialFeed connects to a feed address and subscribes to a session.
func DialFeed(ctx context.Context, addr, sessionID string) (*FeedClient, error) {
	netConn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewFeedClient(ctx, netConn, sessionID)
}

// NewFeedClient subscribes over an existing byte stream.
func NewFeedClient(ctx context.Context, rwc io.ReadWriteCloser, sessionID string) (*FeedClient, error) {
	client := &FeedClient{Updates: make(chan UpdateParams, 16)}
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	client.conn = jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(client.handle))

	var ack map[string]bool
	if err := client.conn.Call(ctx, MethodSubscribe, SubscribeParams{SessionID: sessionID}, &ack); err != nil {
		client.conn.Close()
		return nil, err
	}
	return client, nil
}

func (c *FeedClient) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	if req.Method != MethodUpdate || !req.Notif {
		if req.Notif {
			return nil, nil
		}
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "method not handled"}
	}
	if req.Params == nil {
		return nil, errors.New("update without params")
	}
	var params UpdateParams
	if err := json.Unmarshal(*req.Params, &params); err != nil {
		return nil, err
	}
	select {
	case c.Updates <- params:
	default:
		// Drop when the consumer lags; the next full payload supersedes this one.
	}
	return nil, nil
}

// Close tears down the subscription.
func (c *FeedClient) Close() error {
	return c.conn.Close()
}

// Disconnected reports connection shutdown.
func (c *FeedClient) Disconnected() <-chan struct{} {
	return c.conn.DisconnectNotify()
}
