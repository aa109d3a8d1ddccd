// Package store provides persistence for the note agent.
// Notes hold the serialized editor state; chat threads hold conversation
// history; note embeddings back semantic recall.
package store

// Note is a persisted note row. LexicalState is the serialized document
// JSON exactly as the editor produced it; the store never re-encodes it.
type Note struct {
	NoteID       string `json:"noteId"`
	Title        string `json:"title"`
	LexicalState string `json:"lexicalState"`
	CreatedAt    int64  `json:"createdAt"`
	UpdatedAt    int64  `json:"updatedAt"`
}

// ChatMessage is one persisted conversation turn. Seq is assigned by the
// store and orders messages within a thread.
type ChatMessage struct {
	Seq       int64  `json:"seq"`
	ThreadID  string `json:"threadId"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"createdAt"`
}

// NoteMatch is one nearest-neighbour result from embedding search.
type NoteMatch struct {
	NoteID   string  `json:"noteId"`
	Distance float64 `json:"distance"`
}

// EmbeddingDim is the fixed dimensionality of stored note embeddings.
// The vec0 virtual table requires it at schema time.
const EmbeddingDim = 384

// Storer defines the interface for data persistence.
// MemStore backs tests; SQLiteStore is the production implementation.
type Storer interface {
	// Notes
	UpsertNote(note *Note) error
	GetNote(noteID string) (*Note, error)
	DeleteNote(noteID string) error
	ListNotes() ([]*Note, error)
	CountNotes() (int, error)

	// Chat threads
	AddMessage(msg *ChatMessage) error
	GetThreadMessages(threadID string) ([]*ChatMessage, error)
	DeleteThread(threadID string) error

	// Note embeddings
	UpsertNoteEmbedding(noteID string, embedding []float32) error
	SearchNoteEmbeddings(query []float32, k int) ([]NoteMatch, error)

	// Lifecycle
	Close() error
}
