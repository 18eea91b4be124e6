package vectordb

import (
	"context"
	"sync"
	"testing"

	"github.com/teknokeras/perso/internal/domain/entities"
)

func storeWith(t *testing.T, embeddings ...[]float32) *InMemoryStore {
	t.Helper()
	store := NewInMemoryStore()
	chunks := make([]entities.Chunk, len(embeddings))
	for i, emb := range embeddings {
		chunks[i] = entities.Chunk{
			ID:         string(rune('a' + i)),
			DocumentID: "doc1",
			Index:      i,
			Embedding:  emb,
		}
	}
	if err := store.Store(context.Background(), chunks); err != nil {
		t.Fatalf("store failed: %v", err)
	}
	return store
}

func TestInMemoryStore_SelfSimilarityIsTopMatch(t *testing.T) {
	query := []float32{0.3, 0.7, 0.1}
	store := storeWith(t,
		[]float32{0.9, 0.1, 0.0},
		query,
		[]float32{0.0, 0.0, 1.0},
	)

	results, err := store.Search(context.Background(), query, 1)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Chunk.ID != "b" {
		t.Errorf("expected self-match b on top, got %s", results[0].Chunk.ID)
	}
}

func TestInMemoryStore_OrderedByDescendingScore(t *testing.T) {
	store := storeWith(t,
		[]float32{0, 1},  // orthogonal to query
		[]float32{1, 0},  // identical to query
		[]float32{1, 1},  // in between
	)

	results, err := store.Search(context.Background(), []float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("result %d score %f exceeds previous %f", i, results[i].Score, results[i-1].Score)
		}
	}
	if results[0].Chunk.ID != "b" {
		t.Errorf("expected b first, got %s", results[0].Chunk.ID)
	}
}

func TestInMemoryStore_TiesKeepInsertionOrder(t *testing.T) {
	// Same vector three times: all scores tie, insertion order must hold.
	v := []float32{0.5, 0.5}
	store := storeWith(t, v, v, v)

	results, _ := store.Search(context.Background(), v, 3)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, want := range []string{"a", "b", "c"} {
		if results[i].Chunk.ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, results[i].Chunk.ID)
		}
	}
}

func TestInMemoryStore_TopKClamping(t *testing.T) {
	store := storeWith(t, []float32{1, 0}, []float32{0, 1})

	results, _ := store.Search(context.Background(), []float32{1, 0}, 10)
	if len(results) != 2 {
		t.Errorf("k larger than store should return all entries, got %d", len(results))
	}

	results, _ = store.Search(context.Background(), []float32{1, 0}, 0)
	if len(results) != 0 {
		t.Errorf("k=0 should return empty, got %d", len(results))
	}
}

func TestInMemoryStore_EmptyStore(t *testing.T) {
	store := NewInMemoryStore()

	results, err := store.Search(context.Background(), []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("search on empty store failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("empty store should return no results, got %d", len(results))
	}
}

func TestInMemoryStore_ReplaceSwapsContents(t *testing.T) {
	store := storeWith(t, []float32{1, 0}, []float32{0, 1})

	fresh := []entities.Chunk{
		{ID: "x", DocumentID: "doc2", Index: 0, Embedding: []float32{1, 1}},
	}
	if err := store.Replace(context.Background(), fresh); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	n, _ := store.Count(context.Background())
	if n != 1 {
		t.Fatalf("expected 1 chunk after replace, got %d", n)
	}
	results, _ := store.Search(context.Background(), []float32{1, 1}, 5)
	if len(results) != 1 || results[0].Chunk.ID != "x" {
		t.Errorf("old contents survived replace: %+v", results)
	}

	if err := store.Replace(context.Background(), nil); err != nil {
		t.Fatalf("replace with nil failed: %v", err)
	}
	n, _ = store.Count(context.Background())
	if n != 0 {
		t.Errorf("expected empty store after nil replace, got %d", n)
	}
}

func TestInMemoryStore_ClearAndCount(t *testing.T) {
	store := storeWith(t, []float32{1, 0}, []float32{0, 1})

	n, _ := store.Count(context.Background())
	if n != 2 {
		t.Errorf("expected 2 chunks, got %d", n)
	}

	if err := store.Clear(context.Background()); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	n, _ = store.Count(context.Background())
	if n != 0 {
		t.Errorf("expected empty store after clear, got %d", n)
	}
}

func TestInMemoryStore_ConcurrentSearch(t *testing.T) {
	store := storeWith(t, []float32{1, 0}, []float32{0, 1}, []float32{1, 1})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Search(context.Background(), []float32{1, 0}, 2); err != nil {
				t.Errorf("concurrent search failed: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0.0},
		{"length mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("cosineSimilarity = %f, want %f", got, tt.want)
			}
		})
	}
}
