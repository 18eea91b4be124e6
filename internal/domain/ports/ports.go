// Package ports defines interfaces for external dependencies.
// Usecases depend on these abstractions, not concrete implementations;
// adapters implement them. This keeps the retrieval pipeline testable with
// deterministic fakes and decoupled from any specific provider.
package ports

import (
	"context"

	"github.com/teknokeras/perso/internal/domain/entities"
)

// EmbeddingService maps text to a fixed-size numeric vector.
// All vectors produced for one index share the same dimension; that is a
// configuration agreement between embedder and index, not a runtime case.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts. Implementations
	// may embed concurrently, bounded by their configured limit.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// CompletionService produces a natural-language answer from a prompt.
// The caller composes retrieved context and the user query into the prompt;
// the service is an opaque black box (local or remote).
type CompletionService interface {
	// Complete generates an answer given the system preamble and prompt.
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// VectorStore stores embedded chunks and answers nearest-neighbor queries.
type VectorStore interface {
	// Store saves chunks with their embeddings, preserving order.
	Store(ctx context.Context, chunks []entities.Chunk) error

	// Search returns up to topK chunks ranked by similarity to the query
	// embedding, highest first.
	Search(ctx context.Context, embedding []float32, topK int) ([]entities.QueryResult, error)

	// Replace swaps the store's contents for the given chunks in a single
	// write, so concurrent readers never observe a partially rebuilt index.
	Replace(ctx context.Context, chunks []entities.Chunk) error

	// Clear removes all data from the store.
	Clear(ctx context.Context) error

	// Count reports the number of stored chunks.
	Count(ctx context.Context) (int, error)
}

// DocumentLoader reads and parses a document from a path.
type DocumentLoader interface {
	// Load reads the document at path. Returns an error wrapping
	// entities.ErrDocumentNotFound when the file is missing and
	// entities.ErrExtractionFailed when its text cannot be extracted.
	Load(ctx context.Context, path string) (*entities.Document, error)

	// SupportedExtensions returns file extensions this loader handles.
	SupportedExtensions() []string
}

// DocumentParser extracts text from binary document formats (PDF).
// All-or-nothing: either the full text or an error, never partial output.
type DocumentParser interface {
	// Parse extracts text content from document bytes.
	Parse(ctx context.Context, data []byte, filename string) (string, error)

	// SupportedFormats returns formats this parser handles (e.g., "pdf").
	SupportedFormats() []string
}

// FileWatcher monitors the source document for changes so the index can be
// rebuilt while a session is running.
type FileWatcher interface {
	// Watch starts monitoring the file at path and emits events.
	Watch(ctx context.Context, path string) (<-chan FileEvent, error)

	// Stop stops the watcher.
	Stop() error
}

// FileEvent represents a file system change.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileOperation is the type of file change.
type FileOperation int

const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
)
