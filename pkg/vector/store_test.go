package vector

import (
	"testing"

	"github.com/hack-pad/hackpadfs/mem"
)

func TestStoreRoundTrip(t *testing.T) {
	fs, err := mem.NewFS()
	if err != nil {
		t.Fatal(err)
	}

	// 1. Create and record
	{
		s, err := NewStore(fs, "index.bin")
		if err != nil {
			t.Fatal(err)
		}

		if err := s.Add("note-a", []float32{0.1, 0.2, 0.3, 0.0}); err != nil {
			t.Fatal(err)
		}
		if err := s.Add("note-b", []float32{0.9, 0.8, 0.9, 0.0}); err != nil {
			t.Fatal(err)
		}
		if err := s.Add("note-c", []float32{0.1, 0.21, 0.31, 0.0}); err != nil {
			t.Fatal(err)
		}

		if err := s.Save(); err != nil {
			t.Fatal(err)
		}
	}

	// 2. Load and query
	{
		s2, err := NewStore(fs, "index.bin")
		if err != nil {
			t.Fatal(err)
		}

		if s2.Size() != 3 {
			t.Fatalf("expected 3 indexed notes after reload, got %d", s2.Size())
		}

		results, err := s2.Search([]float32{0.1, 0.2, 0.3, 0.0}, 2)
		if err != nil {
			t.Fatal(err)
		}
		if len(results) < 2 {
			t.Fatalf("expected at least 2 results, got %d", len(results))
		}

		// note-a is an exact match, note-c is nearly parallel to it.
		if results[0] != "note-a" {
			t.Errorf("expected top result note-a, got %s", results[0])
		}
		if results[1] != "note-c" {
			t.Errorf("expected second result note-c, got %s", results[1])
		}
	}
}

func TestStoreReAddReplacesVector(t *testing.T) {
	fs, err := mem.NewFS()
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewStore(fs, "index.bin")
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Add("note-a", []float32{1, 0, 0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := s.Add("note-b", []float32{0, 1, 0, 0}); err != nil {
		t.Fatal(err)
	}

	// Move note-a next to note-b's direction.
	if err := s.Add("note-a", []float32{0, 0.9, 0.1, 0}); err != nil {
		t.Fatal(err)
	}

	if s.Size() != 2 {
		t.Fatalf("expected size 2 after re-add, got %d", s.Size())
	}

	results, err := s.Search([]float32{0, 1, 0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	found := false
	for _, id := range results {
		if id == "note-a" {
			found = true
		}
	}
	if !found {
		t.Errorf("re-added note-a missing from results: %v", results)
	}
	// No duplicate IDs from the stale graph node.
	if results[0] == results[1] {
		t.Errorf("duplicate note ID in results: %v", results)
	}
}

func TestStoreDimensionMismatch(t *testing.T) {
	fs, err := mem.NewFS()
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewStore(fs, "index.bin")
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Add("note-a", []float32{1, 0, 0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := s.Add("note-b", []float32{1, 0}); err == nil {
		t.Fatal("expected dimension mismatch error on Add")
	}
	if _, err := s.Search([]float32{1, 0}, 1); err == nil {
		t.Fatal("expected dimension mismatch error on Search")
	}
}

func TestStoreEmptySearch(t *testing.T) {
	fs, err := mem.NewFS()
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewStore(fs, "index.bin")
	if err != nil {
		t.Fatal(err)
	}

	results, err := s.Search([]float32{1, 0, 0, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results from empty index, got %v", results)
	}

	if s.Has("note-a") {
		t.Error("empty store should not know note-a")
	}
}
