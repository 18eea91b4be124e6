// Package vectordb provides the vector store adapter.
// Adapter implementing ports.VectorStore. A brute-force in-memory index is
// enough at this scale (one document's chunks); the port lets an
// approximate-nearest-neighbor store be swapped in later.
package vectordb

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/teknokeras/perso/internal/domain/entities"
)

// InMemoryStore holds chunks in insertion order and answers queries by a
// linear cosine-similarity scan, O(n·d) per query. Reads may run
// concurrently; the build phase is single-writer.
type InMemoryStore struct {
	mu     sync.RWMutex
	chunks []entities.Chunk
}

// NewInMemoryStore creates an empty in-memory vector store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Store appends chunks with their embeddings, preserving order.
func (s *InMemoryStore) Store(ctx context.Context, chunks []entities.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chunks = append(s.chunks, chunks...)
	return nil
}

// Search returns up to topK chunks ranked by cosine similarity to the query
// embedding, highest score first. Ties keep insertion order (stable sort).
// topK <= 0 returns nothing; topK larger than the store returns everything.
func (s *InMemoryStore) Search(ctx context.Context, embedding []float32, topK int) ([]entities.QueryResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if topK <= 0 || len(s.chunks) == 0 {
		return nil, nil
	}

	results := make([]entities.QueryResult, len(s.chunks))
	for i, chunk := range s.chunks {
		results[i] = entities.QueryResult{
			Chunk:     chunk,
			Score:     cosineSimilarity(embedding, chunk.Embedding),
			SourceDoc: chunk.DocumentID,
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Replace swaps the store's contents for the given chunks under one write
// lock; a query never sees the index half-rebuilt.
func (s *InMemoryStore) Replace(ctx context.Context, chunks []entities.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chunks = append([]entities.Chunk(nil), chunks...)
	return nil
}

// Clear removes all data from the store.
func (s *InMemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chunks = nil
	return nil
}

// Count reports the number of stored chunks.
func (s *InMemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.chunks), nil
}

// cosineSimilarity computes the normalized dot product of a and b.
// This is the retrieval metric: 1 for identical direction, 0 for orthogonal.
// Mismatched lengths or zero vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
