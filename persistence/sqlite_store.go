package persistence

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lexcodex/threadview/transcript"
)

// SQLiteHistory records every payload revision an entry goes through.
// Producers re-send a whole payload as tool statuses change; keeping the
// revisions makes a session replayable after the fact.
type SQLiteHistory struct {
	db *sql.DB
}

// NewSQLiteHistory opens/creates the database at dbPath.
func NewSQLiteHistory(dbPath string) (*SQLiteHistory, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, err
	}
	store := &SQLiteHistory{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteHistory) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_entries_session ON entries(session_id);
	CREATE TABLE IF NOT EXISTS revisions (
		entry_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		payload TEXT NOT NULL,
		recorded_at TIMESTAMP,
		PRIMARY KEY(entry_id, seq),
		FOREIGN KEY(entry_id) REFERENCES entries(id) ON DELETE CASCADE
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the underlying database handle.
func (s *SQLiteHistory) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordRevision upserts the entry row and appends its next payload
// revision.
func (s *SQLiteHistory) RecordRevision(sessionID string, entry transcript.Entry) error {
	if entry.ID == "" {
		return errors.New("entry id required")
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
	INSERT INTO entries (id, session_id, role, created_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		session_id=excluded.session_id,
		role=excluded.role
	`, entry.ID, sessionID, string(entry.Role), entry.CreatedAt)
	if err != nil {
		return err
	}

	var next sql.NullInt64
	if err := tx.QueryRow(
		`SELECT MAX(seq) FROM revisions WHERE entry_id = ?`, entry.ID,
	).Scan(&next); err != nil {
		return err
	}
	seq := int64(0)
	if next.Valid {
		seq = next.Int64 + 1
	}
	if _, err := tx.Exec(
		`INSERT INTO revisions (entry_id, seq, payload, recorded_at) VALUES (?, ?, ?, ?)`,
		entry.ID, seq, entry.Payload, time.Now().UTC(),
	); err != nil {
		return err
	}
	return tx.Commit()
}

// Latest returns each entry of a session with its newest payload revision,
// in creation order.
func (s *SQLiteHistory) Latest(sessionID string) ([]transcript.Entry, error) {
	rows, err := s.db.Query(`
	SELECT e.id, e.role, e.created_at, r.payload
	FROM entries e
	JOIN revisions r ON r.entry_id = e.id
	WHERE e.session_id = ?
	  AND r.seq = (SELECT MAX(seq) FROM revisions WHERE entry_id = e.id)
	ORDER BY e.created_at, e.id
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []transcript.Entry
	for rows.Next() {
		var e transcript.Entry
		var role string
		if err := rows.Scan(&e.ID, &role, &e.CreatedAt, &e.Payload); err != nil {
			return nil, err
		}
		e.Role = transcript.Role(role)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Revisions returns every payload revision for one entry, oldest first.
func (s *SQLiteHistory) Revisions(entryID string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT payload FROM revisions WHERE entry_id = ? ORDER BY seq`, entryID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payloads []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		payloads = append(payloads, p)
	}
	return payloads, rows.Err()
}
