package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Store Factory for Testing Both Implementations
// =============================================================================

type storeFactory func() (Storer, error)

func memStoreFactory() (Storer, error) {
	return NewMemStore(), nil
}

func sqliteStoreFactory() (Storer, error) {
	return NewSQLiteStore()
}

// runTestsForAllStores runs a test function against both store implementations.
func runTestsForAllStores(t *testing.T, testName string, testFn func(t *testing.T, store Storer)) {
	factories := map[string]storeFactory{
		"MemStore":    memStoreFactory,
		"SQLiteStore": sqliteStoreFactory,
	}

	for name, factory := range factories {
		t.Run(name+"/"+testName, func(t *testing.T) {
			store, err := factory()
			require.NoError(t, err, "Failed to create store")
			defer store.Close()
			testFn(t, store)
		})
	}
}

// =============================================================================
// Note CRUD Tests
// =============================================================================

func TestNoteUpsertAndGet(t *testing.T) {
	runTestsForAllStores(t, "UpsertAndGet", func(t *testing.T, store Storer) {
		now := time.Now().Unix()
		note := &Note{
			NoteID:       "note-1",
			Title:        "Trip planning",
			LexicalState: `{"root":{"type":"root","version":1,"children":[]}}`,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		require.NoError(t, store.UpsertNote(note))

		retrieved, err := store.GetNote("note-1")
		require.NoError(t, err)
		require.NotNil(t, retrieved)
		assert.Equal(t, note.Title, retrieved.Title)
		assert.Equal(t, note.LexicalState, retrieved.LexicalState)

		// Update
		note.Title = "Trip planning v2"
		note.UpdatedAt = now + 10
		require.NoError(t, store.UpsertNote(note))

		retrieved, err = store.GetNote("note-1")
		require.NoError(t, err)
		assert.Equal(t, "Trip planning v2", retrieved.Title)
		assert.Equal(t, now+10, retrieved.UpdatedAt)
	})
}

func TestNoteGetNotFound(t *testing.T) {
	runTestsForAllStores(t, "GetNotFound", func(t *testing.T, store Storer) {
		note, err := store.GetNote("nonexistent")
		require.NoError(t, err, "missing note is nil, not an error")
		assert.Nil(t, note)
	})
}

func TestNoteDeleteAndCount(t *testing.T) {
	runTestsForAllStores(t, "DeleteAndCount", func(t *testing.T, store Storer) {
		for _, id := range []string{"a", "b", "c"} {
			require.NoError(t, store.UpsertNote(&Note{NoteID: id, LexicalState: "{}"}))
		}

		count, err := store.CountNotes()
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		require.NoError(t, store.DeleteNote("b"))

		count, err = store.CountNotes()
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		notes, err := store.ListNotes()
		require.NoError(t, err)
		require.Len(t, notes, 2)
		assert.Equal(t, "a", notes[0].NoteID)
		assert.Equal(t, "c", notes[1].NoteID)
	})
}

// =============================================================================
// Chat Thread Tests
// =============================================================================

func TestThreadMessagesOrdered(t *testing.T) {
	runTestsForAllStores(t, "MessagesOrdered", func(t *testing.T, store Storer) {
		now := time.Now().Unix()
		for i, content := range []string{"first", "second", "third"} {
			require.NoError(t, store.AddMessage(&ChatMessage{
				ThreadID:  "thread-1",
				Role:      "user",
				Content:   content,
				CreatedAt: now + int64(i),
			}))
		}
		require.NoError(t, store.AddMessage(&ChatMessage{
			ThreadID: "thread-2", Role: "user", Content: "other", CreatedAt: now,
		}))

		msgs, err := store.GetThreadMessages("thread-1")
		require.NoError(t, err)
		require.Len(t, msgs, 3)
		assert.Equal(t, "first", msgs[0].Content)
		assert.Equal(t, "third", msgs[2].Content)
		assert.Less(t, msgs[0].Seq, msgs[1].Seq)
		assert.Less(t, msgs[1].Seq, msgs[2].Seq)
	})
}

func TestThreadDelete(t *testing.T) {
	runTestsForAllStores(t, "ThreadDelete", func(t *testing.T, store Storer) {
		require.NoError(t, store.AddMessage(&ChatMessage{ThreadID: "t", Role: "user", Content: "x"}))
		require.NoError(t, store.DeleteThread("t"))

		msgs, err := store.GetThreadMessages("t")
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})
}

// =============================================================================
// Embedding Tests
// =============================================================================

// unitEmbedding builds a normalized test vector pointing mostly at axis.
func unitEmbedding(axis int) []float32 {
	vec := make([]float32, EmbeddingDim)
	vec[axis] = 1.0
	return vec
}

func TestEmbeddingSearchNearest(t *testing.T) {
	runTestsForAllStores(t, "SearchNearest", func(t *testing.T, store Storer) {
		require.NoError(t, store.UpsertNoteEmbedding("note-x", unitEmbedding(0)))
		require.NoError(t, store.UpsertNoteEmbedding("note-y", unitEmbedding(1)))

		matches, err := store.SearchNoteEmbeddings(unitEmbedding(0), 1)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "note-x", matches[0].NoteID)
		assert.InDelta(t, 0.0, matches[0].Distance, 1e-5)
	})
}

func TestEmbeddingUpsertReplaces(t *testing.T) {
	runTestsForAllStores(t, "UpsertReplaces", func(t *testing.T, store Storer) {
		require.NoError(t, store.UpsertNoteEmbedding("note-x", unitEmbedding(0)))
		require.NoError(t, store.UpsertNoteEmbedding("note-x", unitEmbedding(2)))

		matches, err := store.SearchNoteEmbeddings(unitEmbedding(2), 1)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "note-x", matches[0].NoteID)
		assert.InDelta(t, 0.0, matches[0].Distance, 1e-5)
	})
}

func TestEmbeddingDimensionMismatch(t *testing.T) {
	runTestsForAllStores(t, "DimensionMismatch", func(t *testing.T, store Storer) {
		err := store.UpsertNoteEmbedding("note-x", []float32{1, 2, 3})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dimension mismatch")

		_, err = store.SearchNoteEmbeddings([]float32{1}, 1)
		require.Error(t, err)
	})
}
