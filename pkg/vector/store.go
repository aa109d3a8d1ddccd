// Package vector keeps an HNSW similarity index over note embeddings,
// persisted to a hackpadfs filesystem so it survives page reloads when
// backed by IndexedDB.
package vector

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sync"

	"github.com/fogfish/hnsw"
	"github.com/fogfish/hnsw/vector"
	"github.com/hack-pad/hackpadfs"
	kvector "github.com/kshard/vector"
)

// Store maps note IDs to embedding vectors and answers nearest-neighbor
// queries. The HNSW graph keys on uint32, so the store carries a note-ID
// translation table alongside the index and persists both together.
type Store struct {
	index *hnsw.HNSW[vector.VF32]
	fs    hackpadfs.FS
	path  string

	// keys holds the CURRENT graph key per note. Re-adding a note assigns
	// a fresh key; the old graph node stays behind but is filtered out of
	// search results because no note points at it anymore.
	keys    map[string]uint32
	notes   map[uint32]string
	nextKey uint32

	mu sync.RWMutex
}

// snapshot is the persisted form: graph nodes plus the translation table.
type snapshot struct {
	Nodes   hnsw.Nodes[vector.VF32]
	Keys    map[string]uint32
	NextKey uint32
}

// NewStore opens the index at path, loading a prior snapshot when one
// exists and starting empty otherwise.
func NewStore(fs hackpadfs.FS, path string) (*Store, error) {
	s := &Store{
		fs:    fs,
		path:  path,
		keys:  make(map[string]uint32),
		notes: make(map[uint32]string),
	}

	if err := s.Load(); err != nil {
		s.index = hnsw.New[vector.VF32](vector.SurfaceVF32(kvector.Cosine()))
	}

	return s, nil
}

// Add indexes an embedding under a note ID, replacing any prior vector
// for that note.
func (s *Store) Add(noteID string, vec []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index == nil {
		return fmt.Errorf("vector: index not initialized")
	}
	if s.index.Size() > 0 {
		dim := len(s.index.Head().Vec)
		if len(vec) != dim {
			return fmt.Errorf("vector: dimension mismatch: expected %d, got %d", dim, len(vec))
		}
	}

	if old, ok := s.keys[noteID]; ok {
		delete(s.notes, old)
	}

	s.nextKey++
	key := s.nextKey
	s.keys[noteID] = key
	s.notes[key] = noteID

	s.index.Insert(vector.VF32{Key: key, Vec: vec})
	return nil
}

// Has reports whether a note currently has an indexed embedding.
func (s *Store) Has(noteID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.keys[noteID]
	return ok
}

// Size returns the number of indexed notes.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}

// Search returns up to k note IDs nearest to the query vector, best first.
func (s *Store) Search(vec []float32, k int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.index == nil {
		return nil, fmt.Errorf("vector: index not initialized")
	}
	if s.index.Size() == 0 {
		return nil, nil
	}

	dim := len(s.index.Head().Vec)
	if len(vec) != dim {
		return nil, fmt.Errorf("vector: dimension mismatch: expected %d, got %d", dim, len(vec))
	}

	ef := k * 2
	if ef < 100 {
		ef = 100
	}

	// Over-fetch to survive stale graph nodes left by re-adds.
	results := s.index.Search(vector.VF32{Vec: vec}, k+len(s.notes), ef)

	ids := make([]string, 0, k)
	for _, r := range results {
		noteID, live := s.notes[r.Key]
		if !live {
			continue
		}
		ids = append(ids, noteID)
		if len(ids) == k {
			break
		}
	}
	return ids, nil
}

// Save writes the index and translation table to the filesystem.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index == nil {
		return nil
	}

	snap := snapshot{
		Nodes:   s.index.Nodes(),
		Keys:    s.keys,
		NextKey: s.nextKey,
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return fmt.Errorf("vector: failed to encode index: %w", err)
	}

	if err := hackpadfs.WriteFullFile(s.fs, s.path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("vector: failed to write index file: %w", err)
	}

	return nil
}

// Load reads a snapshot from the filesystem and rehydrates the graph.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := hackpadfs.ReadFile(s.fs, s.path)
	if err != nil {
		return err
	}

	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(content)).Decode(&snap); err != nil {
		return fmt.Errorf("vector: failed to decode index: %w", err)
	}

	s.index = hnsw.FromNodes[vector.VF32](
		vector.SurfaceVF32(kvector.Cosine()),
		snap.Nodes,
	)
	s.keys = snap.Keys
	if s.keys == nil {
		s.keys = make(map[string]uint32)
	}
	s.nextKey = snap.NextKey

	s.notes = make(map[uint32]string, len(s.keys))
	for noteID, key := range s.keys {
		s.notes[key] = noteID
	}

	return nil
}
