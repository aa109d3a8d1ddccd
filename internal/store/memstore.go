package store

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemStore is an in-memory implementation of Storer for testing.
// Embedding search is brute-force cosine distance.
type MemStore struct {
	mu         sync.RWMutex
	notes      map[string]*Note
	messages   map[string][]*ChatMessage
	embeddings map[string][]float32
	nextSeq    int64
}

// NewMemStore creates a new in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		notes:      make(map[string]*Note),
		messages:   make(map[string][]*ChatMessage),
		embeddings: make(map[string][]float32),
	}
}

// Close is a no-op for MemStore.
func (s *MemStore) Close() error {
	return nil
}

func (s *MemStore) UpsertNote(note *Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *note
	s.notes[note.NoteID] = &copied
	return nil
}

func (s *MemStore) GetNote(noteID string) (*Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	note, ok := s.notes[noteID]
	if !ok {
		return nil, nil
	}
	copied := *note
	return &copied, nil
}

func (s *MemStore) DeleteNote(noteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.notes, noteID)
	delete(s.embeddings, noteID)
	return nil
}

func (s *MemStore) ListNotes() ([]*Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Note, 0, len(s.notes))
	for _, note := range s.notes {
		copied := *note
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NoteID < out[j].NoteID })
	return out, nil
}

func (s *MemStore) CountNotes() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notes), nil
}

func (s *MemStore) AddMessage(msg *ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSeq++
	copied := *msg
	copied.Seq = s.nextSeq
	msg.Seq = s.nextSeq
	s.messages[msg.ThreadID] = append(s.messages[msg.ThreadID], &copied)
	return nil
}

func (s *MemStore) GetThreadMessages(threadID string) ([]*ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.messages[threadID]
	out := make([]*ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		copied := *m
		out = append(out, &copied)
	}
	return out, nil
}

func (s *MemStore) DeleteThread(threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.messages, threadID)
	return nil
}

func (s *MemStore) UpsertNoteEmbedding(noteID string, embedding []float32) error {
	if len(embedding) != EmbeddingDim {
		return fmt.Errorf("store: embedding dimension mismatch: expected %d, got %d", EmbeddingDim, len(embedding))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]float32, len(embedding))
	copy(copied, embedding)
	s.embeddings[noteID] = copied
	return nil
}

func (s *MemStore) SearchNoteEmbeddings(query []float32, k int) ([]NoteMatch, error) {
	if len(query) != EmbeddingDim {
		return nil, fmt.Errorf("store: query dimension mismatch: expected %d, got %d", EmbeddingDim, len(query))
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]NoteMatch, 0, len(s.embeddings))
	for noteID, emb := range s.embeddings {
		matches = append(matches, NoteMatch{NoteID: noteID, Distance: cosineDistance(query, emb)})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance == matches[j].Distance {
			return matches[i].NoteID < matches[j].NoteID
		}
		return matches[i].Distance < matches[j].Distance
	})
	if k < len(matches) {
		matches = matches[:k]
	}
	return matches, nil
}

// cosineDistance is 1 - cosine similarity, matching sqlite-vec's
// vec_distance_cosine so both implementations rank identically.
func cosineDistance(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
