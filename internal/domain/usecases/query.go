// Package usecases - query.go handles retrieval and answer generation.
package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/teknokeras/perso/internal/domain/entities"
	"github.com/teknokeras/perso/internal/domain/ports"
)

// QueryUseCase answers a single question: embed the query, retrieve the
// top-k most similar passages, compose the prompt, and complete. Context is
// recomputed every turn; nothing carries over between questions.
type QueryUseCase struct {
	embedder    ports.EmbeddingService
	vectorStore ports.VectorStore
	completer   ports.CompletionService
	preamble    string
	topK        int
}

// NewQueryUseCase creates a QueryUseCase with injected dependencies.
func NewQueryUseCase(
	embedder ports.EmbeddingService,
	vectorStore ports.VectorStore,
	completer ports.CompletionService,
	preamble string,
	topK int,
) *QueryUseCase {
	if topK <= 0 {
		topK = 3
	}
	return &QueryUseCase{
		embedder:    embedder,
		vectorStore: vectorStore,
		completer:   completer,
		preamble:    preamble,
		topK:        topK,
	}
}

// Answer runs one retrieval-augmented turn for the given query.
func (uc *QueryUseCase) Answer(ctx context.Context, query string) (*entities.ChatResponse, error) {
	queryEmbedding, err := uc.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results, err := uc.vectorStore.Search(ctx, queryEmbedding, uc.topK)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	passages := make([]string, len(results))
	for i, r := range results {
		passages[i] = r.Chunk.Content
	}

	answer, err := uc.completer.Complete(ctx, uc.preamble, buildPrompt(query, passages))
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	return &entities.ChatResponse{
		Answer:  answer,
		Sources: results,
	}, nil
}

// Retrieve returns the top-k passages for a query without calling the
// completion model.
func (uc *QueryUseCase) Retrieve(ctx context.Context, query string) ([]entities.QueryResult, error) {
	embedding, err := uc.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	return uc.vectorStore.Search(ctx, embedding, uc.topK)
}

// buildPrompt assembles the retrieved passages and the question into a
// single prompt for the completion model.
func buildPrompt(query string, passages []string) string {
	var sb strings.Builder
	if len(passages) > 0 {
		sb.WriteString("Context:\n")
		sb.WriteString(strings.Join(passages, "\n\n"))
		sb.WriteString("\n\n")
	}
	sb.WriteString("Question: ")
	sb.WriteString(query)
	sb.WriteString("\n\nAnswer:")
	return sb.String()
}
