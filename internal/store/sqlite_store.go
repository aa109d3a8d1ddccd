// SQLite-backed persistence using ncruces/go-sqlite3's database/sql driver.
// The sqlite-vec extension provides the vec0 virtual table for embeddings.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/asg017/sqlite-vec-go-bindings/ncruces"
	_ "github.com/ncruces/go-sqlite3/driver"
)

// SQLiteStore is the SQLite-backed data store.
// Thread-safe for concurrent WASM callbacks.
type SQLiteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS notes (
    note_id TEXT PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    lexical_state TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS chat_messages (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    thread_id TEXT NOT NULL,
    role TEXT NOT NULL,
    content TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_thread ON chat_messages(thread_id, seq);

-- Maps note ids to vec0 rowids; vec0 tables key on integer rowid only.
CREATE TABLE IF NOT EXISTS note_vec_ids (
    note_id TEXT PRIMARY KEY,
    vec_rowid INTEGER NOT NULL
);

CREATE VIRTUAL TABLE IF NOT EXISTS note_vectors USING vec0(
    embedding float[384] distance_metric=cosine
);
`

// NewSQLiteStore creates a new in-memory SQLite store.
func NewSQLiteStore() (*SQLiteStore, error) {
	return NewSQLiteStoreWithDSN(":memory:")
}

// NewSQLiteStoreWithDSN creates a store with a specific data source name.
// Use ":memory:" for in-memory or a file path for persistent storage.
func NewSQLiteStoreWithDSN(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) UpsertNote(note *Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO notes (note_id, title, lexical_state, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(note_id) DO UPDATE SET
			title = excluded.title,
			lexical_state = excluded.lexical_state,
			updated_at = excluded.updated_at
	`, note.NoteID, note.Title, note.LexicalState, note.CreatedAt, note.UpdatedAt)
	return err
}

func (s *SQLiteStore) GetNote(noteID string) (*Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	note := &Note{}
	err := s.db.QueryRow(`
		SELECT note_id, title, lexical_state, created_at, updated_at
		FROM notes WHERE note_id = ?
	`, noteID).Scan(&note.NoteID, &note.Title, &note.LexicalState, &note.CreatedAt, &note.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return note, nil
}

func (s *SQLiteStore) DeleteNote(noteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.deleteEmbeddingLocked(noteID); err != nil {
		return err
	}
	_, err := s.db.Exec(`DELETE FROM notes WHERE note_id = ?`, noteID)
	return err
}

func (s *SQLiteStore) ListNotes() ([]*Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT note_id, title, lexical_state, created_at, updated_at
		FROM notes ORDER BY note_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []*Note
	for rows.Next() {
		note := &Note{}
		if err := rows.Scan(&note.NoteID, &note.Title, &note.LexicalState, &note.CreatedAt, &note.UpdatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

func (s *SQLiteStore) CountNotes() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM notes`).Scan(&count)
	return count, err
}

func (s *SQLiteStore) AddMessage(msg *ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec(`
		INSERT INTO chat_messages (thread_id, role, content, created_at)
		VALUES (?, ?, ?, ?)
	`, msg.ThreadID, msg.Role, msg.Content, msg.CreatedAt)
	if err != nil {
		return err
	}
	seq, err := result.LastInsertId()
	if err != nil {
		return err
	}
	msg.Seq = seq
	return nil
}

func (s *SQLiteStore) GetThreadMessages(threadID string) ([]*ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT seq, thread_id, role, content, created_at
		FROM chat_messages WHERE thread_id = ? ORDER BY seq
	`, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*ChatMessage
	for rows.Next() {
		msg := &ChatMessage{}
		if err := rows.Scan(&msg.Seq, &msg.ThreadID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func (s *SQLiteStore) DeleteThread(threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`DELETE FROM chat_messages WHERE thread_id = ?`, threadID)
	return err
}

func (s *SQLiteStore) UpsertNoteEmbedding(noteID string, embedding []float32) error {
	if len(embedding) != EmbeddingDim {
		return fmt.Errorf("store: embedding dimension mismatch: expected %d, got %d", EmbeddingDim, len(embedding))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	vecJSON, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("store: encode embedding: %w", err)
	}

	var rowid int64
	err = s.db.QueryRow(`SELECT vec_rowid FROM note_vec_ids WHERE note_id = ?`, noteID).Scan(&rowid)
	if err == sql.ErrNoRows {
		result, err := s.db.Exec(`INSERT INTO note_vectors (embedding) VALUES (?)`, string(vecJSON))
		if err != nil {
			return fmt.Errorf("store: insert embedding: %w", err)
		}
		rowid, err = result.LastInsertId()
		if err != nil {
			return err
		}
		_, err = s.db.Exec(`INSERT INTO note_vec_ids (note_id, vec_rowid) VALUES (?, ?)`, noteID, rowid)
		return err
	}
	if err != nil {
		return err
	}

	// vec0 has no UPDATE; replace the row.
	if _, err := s.db.Exec(`DELETE FROM note_vectors WHERE rowid = ?`, rowid); err != nil {
		return fmt.Errorf("store: replace embedding: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO note_vectors (rowid, embedding) VALUES (?, ?)`, rowid, string(vecJSON))
	return err
}

func (s *SQLiteStore) SearchNoteEmbeddings(query []float32, k int) ([]NoteMatch, error) {
	if len(query) != EmbeddingDim {
		return nil, fmt.Errorf("store: query dimension mismatch: expected %d, got %d", EmbeddingDim, len(query))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	vecJSON, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("store: encode query: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT ids.note_id, v.distance
		FROM note_vectors v
		JOIN note_vec_ids ids ON ids.vec_rowid = v.rowid
		WHERE v.embedding MATCH ? AND v.k = ?
		ORDER BY v.distance
	`, string(vecJSON), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []NoteMatch
	for rows.Next() {
		var m NoteMatch
		if err := rows.Scan(&m.NoteID, &m.Distance); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *SQLiteStore) deleteEmbeddingLocked(noteID string) error {
	var rowid int64
	err := s.db.QueryRow(`SELECT vec_rowid FROM note_vec_ids WHERE note_id = ?`, noteID).Scan(&rowid)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(`DELETE FROM note_vectors WHERE rowid = ?`, rowid); err != nil {
		return err
	}
	_, err = s.db.Exec(`DELETE FROM note_vec_ids WHERE note_id = ?`, noteID)
	return err
}
