// Package persistence stores transcripts: a JSON file store for whole
// sessions and a SQLite history of payload revisions.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/lexcodex/threadview/transcript"
)

// TranscriptStore persists entry histories per session.
type TranscriptStore interface {
	Append(ctx context.Context, sessionID string, entries ...transcript.Entry) error
	History(ctx context.Context, sessionID string) ([]transcript.Entry, error)
	Sessions(ctx context.Context) ([]string, error)
	Clear(ctx context.Context, sessionID string) error
}

const transcriptSuffix = ".transcript.json"

// FileTranscriptStore keeps one JSON file per session.
type FileTranscriptStore struct {
	root string
	mu   sync.RWMutex
}

// NewFileTranscriptStore builds a store in the provided root directory.
func NewFileTranscriptStore(root string) (*FileTranscriptStore, error) {
	if root == "" {
		return nil, errors.New("transcript store root required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &FileTranscriptStore{root: root}, nil
}

func (s *FileTranscriptStore) pathFor(sessionID string) string {
	return filepath.Join(s.root, sessionID+transcriptSuffix)
}

// Append adds entries to a session's transcript.
func (s *FileTranscriptStore) Append(ctx context.Context, sessionID string, entries ...transcript.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if sessionID == "" {
		return errors.New("session id required")
	}
	if len(entries) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, err := s.read(sessionID)
	if err != nil {
		return err
	}
	existing = append(existing, entries...)
	data, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.pathFor(sessionID), data, 0o644)
}

// History returns the stored transcript for a session, oldest first.
func (s *FileTranscriptStore) History(ctx context.Context, sessionID string) ([]transcript.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(sessionID)
}

// Sessions lists the session ids present in the store.
func (s *FileTranscriptStore) Sessions(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	names, err := filepath.Glob(filepath.Join(s.root, "*"+transcriptSuffix))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(names))
	for _, name := range names {
		base := filepath.Base(name)
		ids = append(ids, base[:len(base)-len(transcriptSuffix)])
	}
	return ids, nil
}

// Clear removes a session's transcript file.
func (s *FileTranscriptStore) Clear(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.pathFor(sessionID))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (s *FileTranscriptStore) read(sessionID string) ([]transcript.Entry, error) {
	data, err := os.ReadFile(s.pathFor(sessionID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var entries []transcript.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
