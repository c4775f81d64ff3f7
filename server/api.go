// Package server exposes stored transcripts over HTTP and pushes live
// payload updates to subscribers over JSON-RPC.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/lexcodex/threadview/persistence"
	"github.com/lexcodex/threadview/transcript"
)

// APIServer exposes HTTP endpoints for appending and fetching transcripts.
type APIServer struct {
	Store   persistence.TranscriptStore
	History *persistence.SQLiteHistory
	Feed    *Feed
	Logger  *log.Logger
}

// AppendRequest describes the incoming entry payload.
type AppendRequest struct {
	SessionID string           `json:"session_id"`
	Entry     transcript.Entry `json:"entry"`
}

// AppendResponse acknowledges a stored entry.
type AppendResponse struct {
	SessionID string `json:"session_id"`
	EntryID   string `json:"entry_id"`
	Error     string `json:"error,omitempty"`
}

// TranscriptResponse wraps a fetched session history.
type TranscriptResponse struct {
	SessionID string             `json:"session_id"`
	Entries   []transcript.Entry `json:"entries"`
}

// Serve starts listening on the provided address.
func (s *APIServer) Serve(addr string) error {
	return s.ServeContext(context.Background(), addr)
}

// ServeContext allows the caller to control shutdown via context cancellation.
func (s *APIServer) ServeContext(ctx context.Context, addr string) error {
	server := &http.Server{Addr: addr, Handler: s.Handler()}
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	if s.Logger != nil {
		s.Logger.Printf("API listening on %s", addr)
	}
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Handler builds the route table.
func (s *APIServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/entries", s.handleAppend)
	mux.HandleFunc("/api/transcript", s.handleTranscript)
	return mux
}

func (s *APIServer) handleAppend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req AppendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.SessionID == "" || req.Entry.ID == "" {
		http.Error(w, "session_id and entry.id are required", http.StatusBadRequest)
		return
	}
	if req.Entry.CreatedAt.IsZero() {
		req.Entry.CreatedAt = time.Now().UTC()
	}
	if err := s.Store.Append(r.Context(), req.SessionID, req.Entry); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if s.History != nil {
		if err := s.History.RecordRevision(req.SessionID, req.Entry); err != nil && s.Logger != nil {
			s.Logger.Printf("history revision for %s: %v", req.Entry.ID, err)
		}
	}
	if s.Feed != nil {
		s.Feed.Publish(r.Context(), req.SessionID, req.Entry)
	}
	writeJSON(w, AppendResponse{SessionID: req.SessionID, EntryID: req.Entry.ID})
}

func (s *APIServer) handleTranscript(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session query parameter required", http.StatusBadRequest)
		return
	}
	entries, err := s.Store.History(r.Context(), sessionID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, TranscriptResponse{SessionID: sessionID, Entries: entries})
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
