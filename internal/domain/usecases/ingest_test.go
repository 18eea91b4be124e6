package usecases

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/teknokeras/perso/internal/domain/entities"
)

// mockEmbedder implements ports.EmbeddingService for testing
type mockEmbedder struct {
	embedFn func(text string) ([]float32, error)
	calls   []string
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.calls = append(m.calls, text)
	if m.embedFn != nil {
		return m.embedFn(text)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i := range texts {
		emb, err := m.Embed(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		result[i] = emb
	}
	return result, nil
}

// mockVectorStore implements ports.VectorStore for testing
type mockVectorStore struct {
	chunks  []entities.Chunk
	cleared bool
}

func (m *mockVectorStore) Store(ctx context.Context, chunks []entities.Chunk) error {
	m.chunks = append(m.chunks, chunks...)
	return nil
}

func (m *mockVectorStore) Search(ctx context.Context, embedding []float32, topK int) ([]entities.QueryResult, error) {
	n := len(m.chunks)
	if topK < n {
		n = topK
	}
	results := make([]entities.QueryResult, n)
	for i := 0; i < n; i++ {
		results[i] = entities.QueryResult{Chunk: m.chunks[i], Score: 1.0 - float64(i)*0.1, SourceDoc: m.chunks[i].DocumentID}
	}
	return results, nil
}

func (m *mockVectorStore) Replace(ctx context.Context, chunks []entities.Chunk) error {
	m.chunks = append([]entities.Chunk(nil), chunks...)
	return nil
}

func (m *mockVectorStore) Clear(ctx context.Context) error {
	m.cleared = true
	m.chunks = nil
	return nil
}

func (m *mockVectorStore) Count(ctx context.Context) (int, error) {
	return len(m.chunks), nil
}

func TestIngestUseCase_StoresEmbeddedChunks(t *testing.T) {
	embedder := &mockEmbedder{}
	store := &mockVectorStore{}
	uc := NewIngestUseCase(embedder, store, 50, 5)

	doc := &entities.Document{
		ID:      "doc1",
		Content: strings.Repeat("the quick brown fox jumps over the lazy dog ", 5),
	}
	if err := uc.Ingest(context.Background(), doc); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	if len(store.chunks) == 0 {
		t.Fatal("expected chunks to be stored")
	}
	for _, chunk := range store.chunks {
		if len(chunk.Embedding) == 0 {
			t.Errorf("chunk %s stored without embedding", chunk.ID)
		}
		if chunk.DocumentID != "doc1" {
			t.Errorf("chunk %s has wrong document ID %s", chunk.ID, chunk.DocumentID)
		}
	}
}

func TestIngestUseCase_SmallDocumentIsSingleChunk(t *testing.T) {
	embedder := &mockEmbedder{}
	store := &mockVectorStore{}
	uc := NewIngestUseCase(embedder, store, 1000, 100)

	doc := &entities.Document{ID: "doc1", Content: "The sky is blue."}
	if err := uc.Ingest(context.Background(), doc); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	if len(store.chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(store.chunks))
	}
	if store.chunks[0].Content != "The sky is blue." {
		t.Errorf("chunk content altered: %q", store.chunks[0].Content)
	}
}

func TestIngestUseCase_EmptyDocumentIsNoop(t *testing.T) {
	embedder := &mockEmbedder{}
	store := &mockVectorStore{}
	uc := NewIngestUseCase(embedder, store, 500, 50)

	doc := &entities.Document{ID: "doc1", Content: "   \n\t  "}
	if err := uc.Ingest(context.Background(), doc); err != nil {
		t.Fatalf("empty document should not fail: %v", err)
	}
	if len(store.chunks) != 0 {
		t.Errorf("expected no chunks, got %d", len(store.chunks))
	}
	if len(embedder.calls) != 0 {
		t.Errorf("embedder should not be called for empty document")
	}
}

func TestIngestUseCase_ChunkIndicesAreSequential(t *testing.T) {
	embedder := &mockEmbedder{}
	store := &mockVectorStore{}
	uc := NewIngestUseCase(embedder, store, 30, 0)

	doc := &entities.Document{
		ID:      "doc1",
		Content: strings.Repeat("alpha beta gamma delta epsilon ", 10),
	}
	if err := uc.Ingest(context.Background(), doc); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	for i, chunk := range store.chunks {
		if chunk.Index != i {
			t.Errorf("chunk %d has index %d", i, chunk.Index)
		}
	}
}

func TestIngestUseCase_EmbeddingFailureSurfaced(t *testing.T) {
	embedder := &mockEmbedder{
		embedFn: func(string) ([]float32, error) {
			return nil, errors.New("model not found")
		},
	}
	store := &mockVectorStore{}
	uc := NewIngestUseCase(embedder, store, 500, 50)

	doc := &entities.Document{ID: "doc1", Content: "some text"}
	err := uc.Ingest(context.Background(), doc)
	if err == nil {
		t.Fatal("expected embedding failure to propagate")
	}
	if len(store.chunks) != 0 {
		t.Error("nothing should be stored when embedding fails")
	}
}

func TestIngestUseCase_ReingestReplacesStore(t *testing.T) {
	embedder := &mockEmbedder{}
	store := &mockVectorStore{chunks: []entities.Chunk{{ID: "stale", DocumentID: "doc1"}}}
	uc := NewIngestUseCase(embedder, store, 500, 50)

	doc := &entities.Document{ID: "doc2", Content: "fresh content"}
	if err := uc.Reingest(context.Background(), doc); err != nil {
		t.Fatalf("reingest failed: %v", err)
	}

	if len(store.chunks) == 0 {
		t.Fatal("expected fresh chunks after reingest")
	}
	for _, chunk := range store.chunks {
		if chunk.ID == "stale" {
			t.Error("stale chunk survived reingest")
		}
		if chunk.DocumentID != "doc2" {
			t.Errorf("chunk %s belongs to %s, want doc2", chunk.ID, chunk.DocumentID)
		}
	}
}

func TestIngestUseCase_FailedReingestKeepsPreviousIndex(t *testing.T) {
	embedder := &mockEmbedder{
		embedFn: func(string) ([]float32, error) {
			return nil, errors.New("service unreachable")
		},
	}
	store := &mockVectorStore{chunks: []entities.Chunk{
		{ID: "c1", DocumentID: "doc1", Content: "old passage"},
		{ID: "c2", DocumentID: "doc1", Content: "another old passage"},
	}}
	uc := NewIngestUseCase(embedder, store, 500, 50)

	doc := &entities.Document{ID: "doc2", Content: "new content that cannot be embedded"}
	if err := uc.Reingest(context.Background(), doc); err == nil {
		t.Fatal("expected reingest to fail when embedding fails")
	}

	// The previous index must keep serving queries after a failed reload.
	n, _ := store.Count(context.Background())
	if n != 2 {
		t.Fatalf("previous index lost: %d chunks left, want 2", n)
	}
	if store.cleared {
		t.Error("store must not be cleared before the new document embeds")
	}
}
