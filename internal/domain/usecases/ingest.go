// Package usecases contains application business rules.
// Usecases orchestrate entities and depend on port interfaces only - no
// framework code, no provider specifics.
package usecases

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/teknokeras/perso/internal/domain/entities"
	"github.com/teknokeras/perso/internal/domain/ports"
)

// IngestUseCase turns a document into embedded chunks in the vector store.
type IngestUseCase struct {
	embedder     ports.EmbeddingService
	vectorStore  ports.VectorStore
	chunkSize    int
	chunkOverlap int
}

// NewIngestUseCase creates an IngestUseCase with injected dependencies.
func NewIngestUseCase(
	embedder ports.EmbeddingService,
	vectorStore ports.VectorStore,
	chunkSize, chunkOverlap int,
) *IngestUseCase {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 100
	}
	return &IngestUseCase{
		embedder:     embedder,
		vectorStore:  vectorStore,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Ingest chunks the document, embeds the chunks, and stores them.
// A whitespace-only document is a no-op, not an error.
func (uc *IngestUseCase) Ingest(ctx context.Context, doc *entities.Document) error {
	chunks, err := uc.embedChunks(ctx, doc)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	if err := uc.vectorStore.Store(ctx, chunks); err != nil {
		return fmt.Errorf("storing chunks: %w", err)
	}
	return nil
}

// Reingest replaces the store's contents with the given document. Used when
// the watched source file changes on disk. The new chunks are fully embedded
// before the store is touched, so a failed reload leaves the previous index
// serving queries.
func (uc *IngestUseCase) Reingest(ctx context.Context, doc *entities.Document) error {
	chunks, err := uc.embedChunks(ctx, doc)
	if err != nil {
		return err
	}

	if err := uc.vectorStore.Replace(ctx, chunks); err != nil {
		return fmt.Errorf("replacing chunks: %w", err)
	}
	return nil
}

// embedChunks chunks the document and attaches embeddings.
func (uc *IngestUseCase) embedChunks(ctx context.Context, doc *entities.Document) ([]entities.Chunk, error) {
	chunks := uc.chunkDocument(doc)
	if len(chunks) == 0 {
		return nil, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	embeddings, err := uc.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding document: %w", err)
	}

	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}
	return chunks, nil
}

// chunkDocument splits the document content into overlapping chunks,
// breaking at word boundaries where possible.
func (uc *IngestUseCase) chunkDocument(doc *entities.Document) []entities.Chunk {
	content := strings.TrimSpace(doc.Content)
	if len(content) == 0 {
		return nil
	}

	var chunks []entities.Chunk
	start := 0
	index := 0

	for start < len(content) {
		end := start + uc.chunkSize
		if end > len(content) {
			end = len(content)
		}

		if end < len(content) {
			lastSpace := strings.LastIndex(content[start:end], " ")
			if lastSpace > 0 {
				end = start + lastSpace
			}
		}

		chunkContent := strings.TrimSpace(content[start:end])
		if len(chunkContent) > 0 {
			chunks = append(chunks, entities.Chunk{
				ID:         chunkID(doc.ID, index),
				DocumentID: doc.ID,
				Content:    chunkContent,
				Index:      index,
			})
			index++
		}

		if end >= len(content) {
			break
		}
		next := end - uc.chunkOverlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// chunkID creates a deterministic ID for a chunk within a document.
func chunkID(docID string, index int) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", docID, index)))
	return hex.EncodeToString(hash[:8])
}
